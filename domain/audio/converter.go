package audio

import (
	"context"
	"time"
)

// Converter defines the interface for video-to-MP3 conversion operations
// This is a port that can be implemented by different infrastructure adapters
type Converter interface {
	// Convert converts the video's audio track according to the request and saves to outputPath
	Convert(ctx context.Context, req *ConversionRequest, outputPath string) error
}

// FileChecker defines the interface for checking file existence
type FileChecker interface {
	// Exists returns true if the file exists
	Exists(path string) bool
}

// Prober defines the interface for reading media durations
type Prober interface {
	// Duration returns the playback duration of the media file
	Duration(ctx context.Context, path string) (time.Duration, error)
}

// Splitter defines the interface for splitting audio into fixed-length chunks
type Splitter interface {
	// Split cuts the source audio into chunks of chunkLength, written under chunksDir.
	// It returns the chunks in playback order; the list may be empty.
	Split(ctx context.Context, sourcePath, chunksDir string, chunkLength time.Duration) ([]Chunk, error)
}
