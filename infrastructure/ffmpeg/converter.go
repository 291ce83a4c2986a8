package ffmpeg

import (
	"context"
	"fmt"

	"vid2mp3/domain/audio"
)

// Converter implements audio.Converter using ffmpeg
type Converter struct {
	ffmpegPath string
	runner     CommandRunner
}

// ConverterOption is a functional option for configuring Converter
type ConverterOption func(*Converter)

// WithConverterFFmpegPath sets a custom ffmpeg executable path
func WithConverterFFmpegPath(path string) ConverterOption {
	return func(c *Converter) {
		c.ffmpegPath = path
	}
}

// WithConverterCommandRunner sets a custom command runner (for testing)
func WithConverterCommandRunner(runner CommandRunner) ConverterOption {
	return func(c *Converter) {
		c.runner = runner
	}
}

// NewConverter creates a new FFmpeg-based MP3 converter
func NewConverter(opts ...ConverterOption) *Converter {
	c := &Converter{
		ffmpegPath: "ffmpeg",
		runner:     &ExecCommandRunner{},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Convert implements audio.Converter
func (c *Converter) Convert(ctx context.Context, req *audio.ConversionRequest, outputPath string) error {
	args := []string{
		"-i", req.SourcePath,
		"-vn",                   // No video
		"-acodec", "libmp3lame", // MP3 codec
		"-ab", req.Bitrate,      // Audio bitrate
		"-ar", audio.SampleRate, // Sample rate
		"-y",                    // Overwrite output file if it exists
		outputPath,
	}

	if err := c.runner.Run(ctx, c.ffmpegPath, args...); err != nil {
		return fmt.Errorf("ffmpeg conversion failed: %w", err)
	}

	return nil
}

// VerifyInstalled checks that ffmpeg is available
func (c *Converter) VerifyInstalled(ctx context.Context) error {
	_, err := c.runner.Output(ctx, c.ffmpegPath, "-version")
	if err != nil {
		return fmt.Errorf("ffmpeg not found or not executable: %w", err)
	}
	return nil
}

// Ensure Converter implements audio.Converter
var _ audio.Converter = (*Converter)(nil)
