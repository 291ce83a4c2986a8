package transcribe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"vid2mp3/domain/audio"
	"vid2mp3/domain/transcript"
)

// FileSizer provides file size information
type FileSizer interface {
	Size(path string) int64
}

// Settings tunes how audio is split and sent for transcription.
// Zero values fall back to the defaults used by the CLI.
type Settings struct {
	ChunkLength    time.Duration // length of each chunk (default 5m)
	SplitThreshold int64         // files above this size are chunked (default 5MB)
	Concurrency    int           // chunks transcribed at once (default 1)
}

func (s Settings) withDefaults() Settings {
	if s.ChunkLength <= 0 {
		s.ChunkLength = audio.DefaultChunkLength
	}
	if s.SplitThreshold <= 0 {
		s.SplitThreshold = 5 * 1024 * 1024
	}
	if s.Concurrency <= 0 {
		s.Concurrency = 1
	}
	return s
}

// Result contains the result of a transcription operation
type Result struct {
	JSONPath   string
	WordCount  int
	TextLength int
}

// Service coordinates transcription: splitting large files into chunks,
// transcribing each, filling in timestamps, merging, and writing JSON.
type Service struct {
	transcriber transcript.Transcriber
	prober      audio.Prober
	splitter    audio.Splitter
	sizer       FileSizer
	settings    Settings
	output      io.Writer
}

// NewService creates a new transcription Service
func NewService(transcriber transcript.Transcriber, prober audio.Prober, splitter audio.Splitter, sizer FileSizer, settings Settings, output io.Writer) *Service {
	if output == nil {
		output = io.Discard
	}
	return &Service{
		transcriber: transcriber,
		prober:      prober,
		splitter:    splitter,
		sizer:       sizer,
		settings:    settings.withDefaults(),
		output:      output,
	}
}

// Transcribe transcribes an MP3 file and writes the result JSON next to it
func (s *Service) Transcribe(ctx context.Context, mp3Path string) (*Result, error) {
	size := s.sizer.Size(mp3Path)
	fmt.Fprintf(s.output, "File size: %.1f MB\n", float64(size)/1024/1024)

	var merged *transcript.Transcript
	if size > s.settings.SplitThreshold {
		fmt.Fprintf(s.output, "File too large for a single request, splitting into chunks...\n")
		var err error
		merged, err = s.transcribeChunked(ctx, mp3Path)
		if err != nil {
			return nil, err
		}
	} else {
		var err error
		merged, err = s.transcribeOne(ctx, mp3Path, 0)
		if err != nil {
			return nil, err
		}
	}

	jsonPath := transcript.JSONPath(mp3Path)
	data, err := json.MarshalIndent(merged, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode transcription: %w", err)
	}
	if err := os.WriteFile(jsonPath, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write transcription file: %w", err)
	}

	return &Result{
		JSONPath:   jsonPath,
		WordCount:  len(merged.Words),
		TextLength: len(merged.Text),
	}, nil
}

// transcribeChunked splits the audio and transcribes every chunk, tolerating
// individual chunk failures; the merged transcript preserves chunk order.
func (s *Service) transcribeChunked(ctx context.Context, mp3Path string) (*transcript.Transcript, error) {
	chunksDir := filepath.Join(filepath.Dir(mp3Path), "chunks")
	chunks, err := s.splitter.Split(ctx, mp3Path, chunksDir, s.settings.ChunkLength)
	if err != nil {
		return nil, fmt.Errorf("failed to split audio: %w", err)
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("splitting produced no chunks")
	}
	fmt.Fprintf(s.output, "Created %d chunks\n", len(chunks))

	parts := make([]*transcript.Transcript, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.settings.Concurrency)
	for i, chunk := range chunks {
		g.Go(func() error {
			fmt.Fprintf(s.output, "Transcribing chunk %d/%d (offset %.0fs)...\n", i+1, len(chunks), chunk.Offset.Seconds())
			part, err := s.transcribeOne(gctx, chunk.Path, chunk.Offset.Seconds())
			if err != nil {
				// One bad chunk must not sink the rest of the recording
				fmt.Fprintf(s.output, "Warning: chunk %d failed: %v\n", i+1, err)
				return nil
			}
			parts[i] = part
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := transcript.Merge(parts)
	if merged.Text == "" && len(merged.Words) == 0 {
		return nil, fmt.Errorf("transcription produced no output")
	}
	return merged, nil
}

// transcribeOne transcribes a single file or chunk and places its words on
// the full recording's timeline. When the model returned text without usable
// word timestamps, approximate ones are generated from the audio duration.
func (s *Service) transcribeOne(ctx context.Context, path string, offset float64) (*transcript.Transcript, error) {
	tr, err := s.transcriber.Transcribe(ctx, path)
	if err != nil {
		return nil, err
	}

	if len(tr.Words) == 0 && tr.Text != "" {
		fmt.Fprintf(s.output, "Warning: no word timestamps returned, generating approximate ones...\n")
		if d, err := s.prober.Duration(ctx, path); err == nil {
			tr.Words = transcript.SyntheticWords(tr.Text, d.Seconds(), offset)
		}
	} else {
		tr.Shift(offset)
	}

	return tr, nil
}
