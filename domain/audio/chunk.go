package audio

import "time"

// DefaultChunkLength is the default chunk duration used when splitting audio
// for transcription.
const DefaultChunkLength = 5 * time.Minute

// Chunk represents one piece of a split audio file
type Chunk struct {
	Index  int
	Path   string
	Offset time.Duration // position of the chunk's start within the source audio
}
