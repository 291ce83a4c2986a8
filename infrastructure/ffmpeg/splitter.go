package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"vid2mp3/domain/audio"
)

// Splitter implements audio.Splitter using ffmpeg stream copy
type Splitter struct {
	ffmpegPath string
	runner     CommandRunner
}

// SplitterOption is a functional option for configuring Splitter
type SplitterOption func(*Splitter)

// WithSplitterFFmpegPath sets a custom ffmpeg executable path
func WithSplitterFFmpegPath(path string) SplitterOption {
	return func(s *Splitter) {
		s.ffmpegPath = path
	}
}

// WithSplitterCommandRunner sets a custom command runner (for testing)
func WithSplitterCommandRunner(runner CommandRunner) SplitterOption {
	return func(s *Splitter) {
		s.runner = runner
	}
}

// NewSplitter creates a new FFmpeg-based audio splitter
func NewSplitter(opts ...SplitterOption) *Splitter {
	s := &Splitter{
		ffmpegPath: "ffmpeg",
		runner:     &ExecCommandRunner{},
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Split implements audio.Splitter. It cuts fixed-length chunks off the
// source with -ss/-t and codec copy until ffmpeg produces an empty or
// missing chunk, which marks the end of the source.
func (s *Splitter) Split(ctx context.Context, sourcePath, chunksDir string, chunkLength time.Duration) ([]audio.Chunk, error) {
	if chunkLength <= 0 {
		chunkLength = audio.DefaultChunkLength
	}

	if err := os.MkdirAll(chunksDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create chunks directory: %w", err)
	}

	base := filepath.Base(sourcePath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	var chunks []audio.Chunk
	offset := time.Duration(0)

	for index := 0; ; index++ {
		chunkPath := filepath.Join(chunksDir, fmt.Sprintf("%s_chunk_%03d.mp3", stem, index))

		args := []string{
			"-i", sourcePath,
			"-ss", strconv.FormatInt(int64(offset.Seconds()), 10),
			"-t", strconv.FormatInt(int64(chunkLength.Seconds()), 10),
			"-acodec", "copy",
			"-y",
			chunkPath,
		}

		if err := s.runner.Run(ctx, s.ffmpegPath, args...); err != nil {
			// Past the end of the source, or a real failure; either way a
			// partial chunk file must not survive.
			os.Remove(chunkPath)
			break
		}

		info, err := os.Stat(chunkPath)
		if err != nil || info.Size() == 0 {
			os.Remove(chunkPath)
			break
		}

		chunks = append(chunks, audio.Chunk{
			Index:  index,
			Path:   chunkPath,
			Offset: offset,
		})
		offset += chunkLength
	}

	return chunks, nil
}

// Ensure Splitter implements audio.Splitter
var _ audio.Splitter = (*Splitter)(nil)
