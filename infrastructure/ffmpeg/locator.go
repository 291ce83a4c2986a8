package ffmpeg

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no working ffmpeg binary could be located
var ErrNotFound = errors.New("ffmpeg not found on this system")

// candidatePaths are checked in order: PATH first, then the usual
// Homebrew and system locations.
var candidatePaths = []string{
	"ffmpeg",
	"/opt/homebrew/bin/ffmpeg",
	"/usr/local/bin/ffmpeg",
	"/usr/bin/ffmpeg",
}

// Find locates a working ffmpeg executable by probing the candidate
// paths with -version. It returns the first path that responds.
func Find(ctx context.Context, runner CommandRunner) (string, error) {
	if runner == nil {
		runner = &ExecCommandRunner{}
	}

	for _, path := range candidatePaths {
		if _, err := runner.Output(ctx, path, "-version"); err == nil {
			return path, nil
		}
	}

	return "", ErrNotFound
}
