package audio

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// DefaultBitrate is the default bitrate for MP3 conversion
const DefaultBitrate = "128k"

// SampleRate is the fixed output sample rate in Hz
const SampleRate = "44100"

// TimestampLayout is the layout used for output directory and file names
const TimestampLayout = "20060102_150405"

// ConversionRequest represents a request to convert a video's audio track to MP3
type ConversionRequest struct {
	SourcePath string
	Bitrate    string
	StartedAt  time.Time
}

// NewConversionRequest creates a new ConversionRequest with validation
func NewConversionRequest(sourcePath, bitrate string, startedAt time.Time) (*ConversionRequest, error) {
	if sourcePath == "" {
		return nil, fmt.Errorf("source video path is required")
	}

	if bitrate == "" {
		bitrate = DefaultBitrate
	}

	return &ConversionRequest{
		SourcePath: sourcePath,
		Bitrate:    bitrate,
		StartedAt:  startedAt,
	}, nil
}

// Stem returns the source filename without directory or extension
func (r *ConversionRequest) Stem() string {
	base := filepath.Base(r.SourcePath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// OutputDirName returns the timestamped directory name for this invocation
func (r *ConversionRequest) OutputDirName() string {
	return r.StartedAt.Format(TimestampLayout)
}

// OutputDir returns the full output directory path under baseDir
func (r *ConversionRequest) OutputDir(baseDir string) string {
	return filepath.Join(baseDir, r.OutputDirName())
}

// OutputFilename returns the output filename in <stem>_<timestamp>.mp3 format
func (r *ConversionRequest) OutputFilename() string {
	return r.Stem() + "_" + r.StartedAt.Format(TimestampLayout) + ".mp3"
}

// OutputPath returns the full output path including the timestamped directory
func (r *ConversionRequest) OutputPath(baseDir string) string {
	return filepath.Join(r.OutputDir(baseDir), r.OutputFilename())
}
