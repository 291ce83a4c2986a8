package pipeline

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"vid2mp3/application/convert"
	"vid2mp3/application/transcribe"
)

// ConvertService converts a video's audio track to MP3
type ConvertService interface {
	Convert(ctx context.Context, input convert.Input) (*convert.Result, error)
}

// TranscribeService transcribes an MP3 and writes the result JSON
type TranscribeService interface {
	Transcribe(ctx context.Context, mp3Path string) (*transcribe.Result, error)
}

// Tagger writes ID3 metadata onto an MP3 file
type Tagger interface {
	Tag(path, title string, recordedAt time.Time) error
}

// Result contains the artifacts produced by one pipeline run
type Result struct {
	OutputDir      string
	OutputPath     string
	TranscriptPath string // empty when transcription was skipped or failed
}

// Service runs the full conversion pipeline. Conversion is mandatory;
// tagging and transcription are best effort and never fail the run.
type Service struct {
	converter   ConvertService
	transcriber TranscribeService // nil disables transcription
	tagger      Tagger            // nil disables tagging
	output      io.Writer
}

// NewService creates a new pipeline Service
func NewService(converter ConvertService, transcriber TranscribeService, tagger Tagger, output io.Writer) *Service {
	if output == nil {
		output = io.Discard
	}
	return &Service{
		converter:   converter,
		transcriber: transcriber,
		tagger:      tagger,
		output:      output,
	}
}

// Input represents the input for a pipeline run
type Input struct {
	SourcePath string
	Bitrate    string // Optional, uses the configured default if empty
}

// Run converts the source video and then applies the optional
// post-processing steps.
func (s *Service) Run(ctx context.Context, input Input) (*Result, error) {
	fmt.Fprintf(s.output, "Converting %s to MP3...\n", input.SourcePath)

	converted, err := s.converter.Convert(ctx, convert.Input{
		SourcePath: input.SourcePath,
		Bitrate:    input.Bitrate,
		StartedAt:  time.Now(),
	})
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(s.output, "Conversion complete!\n")
	fmt.Fprintf(s.output, "Output file: %s\n", converted.OutputPath)

	result := &Result{
		OutputDir:  converted.OutputDir,
		OutputPath: converted.OutputPath,
	}

	if s.tagger != nil {
		title := strings.TrimSuffix(filepath.Base(converted.OutputPath), ".mp3")
		if err := s.tagger.Tag(converted.OutputPath, title, time.Now()); err != nil {
			fmt.Fprintf(s.output, "Warning: failed to tag MP3: %v\n", err)
		}
	}

	if s.transcriber == nil {
		fmt.Fprintf(s.output, "Skipping transcription (set OPENROUTER_API_KEY to enable it)\n")
		return result, nil
	}

	fmt.Fprintf(s.output, "Transcribing audio...\n")
	transcribed, err := s.transcriber.Transcribe(ctx, converted.OutputPath)
	if err != nil {
		// The MP3 is already on disk; a transcription failure must not
		// turn a successful conversion into a failed run.
		fmt.Fprintf(s.output, "Warning: transcription failed: %v\n", err)
		return result, nil
	}

	fmt.Fprintf(s.output, "Transcription saved: %s (%d words)\n", transcribed.JSONPath, transcribed.WordCount)
	result.TranscriptPath = transcribed.JSONPath
	return result, nil
}
