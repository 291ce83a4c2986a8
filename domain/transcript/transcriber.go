package transcript

import "context"

// Transcriber defines the interface for speech-to-text transcription
// This is a port that can be implemented by different infrastructure adapters
type Transcriber interface {
	// Transcribe transcribes a single audio file. The returned transcript
	// may have no word timestamps when the backing model did not produce
	// usable ones; callers decide how to fill them in.
	Transcribe(ctx context.Context, audioPath string) (*Transcript, error)
}
