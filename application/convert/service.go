package convert

import (
	"context"
	"fmt"
	"os"
	"time"

	"vid2mp3/domain/audio"
)

// Result contains the result of a conversion operation
type Result struct {
	OutputDir  string
	OutputPath string
}

// Service coordinates video-to-MP3 conversion operations
type Service struct {
	converter   audio.Converter
	fileChecker audio.FileChecker
	baseDir     string
	bitrate     string
}

// NewService creates a new conversion Service
func NewService(converter audio.Converter, fileChecker audio.FileChecker, baseDir string, bitrate string) *Service {
	if baseDir == "" {
		baseDir = "output"
	}
	if bitrate == "" {
		bitrate = audio.DefaultBitrate
	}
	return &Service{
		converter:   converter,
		fileChecker: fileChecker,
		baseDir:     baseDir,
		bitrate:     bitrate,
	}
}

// Input represents the input for a conversion operation
type Input struct {
	SourcePath string
	Bitrate    string    // Optional, uses service default if empty
	StartedAt  time.Time // Invocation start, names the output directory
}

// Convert converts the source video's audio track to MP3.
// The source is validated before the output directory is created, so a
// bad input never leaves an empty timestamped directory behind.
func (s *Service) Convert(ctx context.Context, input Input) (*Result, error) {
	if !s.fileChecker.Exists(input.SourcePath) {
		return nil, fmt.Errorf("source video does not exist: %s", input.SourcePath)
	}

	bitrate := input.Bitrate
	if bitrate == "" {
		bitrate = s.bitrate
	}

	startedAt := input.StartedAt
	if startedAt.IsZero() {
		startedAt = time.Now()
	}

	req, err := audio.NewConversionRequest(input.SourcePath, bitrate, startedAt)
	if err != nil {
		return nil, err
	}

	outputDir := req.OutputDir(s.baseDir)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	outputPath := req.OutputPath(s.baseDir)
	if err := s.converter.Convert(ctx, req, outputPath); err != nil {
		return nil, err
	}

	return &Result{
		OutputDir:  outputDir,
		OutputPath: outputPath,
	}, nil
}
