package ffmpeg

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"vid2mp3/domain/audio"
)

// Prober implements audio.Prober using ffmpeg
type Prober struct {
	ffmpegPath string
	runner     CommandRunner
}

// ProberOption is a functional option for configuring Prober
type ProberOption func(*Prober)

// WithProberFFmpegPath sets a custom ffmpeg executable path
func WithProberFFmpegPath(path string) ProberOption {
	return func(p *Prober) {
		p.ffmpegPath = path
	}
}

// WithProberCommandRunner sets a custom command runner (for testing)
func WithProberCommandRunner(runner CommandRunner) ProberOption {
	return func(p *Prober) {
		p.runner = runner
	}
}

// NewProber creates a new FFmpeg-based duration prober
func NewProber(opts ...ProberOption) *Prober {
	p := &Prober{
		ffmpegPath: "ffmpeg",
		runner:     &ExecCommandRunner{},
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Duration implements audio.Prober. It decodes the file to the null muxer
// and reads the Duration line ffmpeg prints for the input.
func (p *Prober) Duration(ctx context.Context, path string) (time.Duration, error) {
	// ffmpeg exits non-zero for -f null on some inputs; the Duration line
	// is printed either way, so the exit status is ignored.
	out, _ := p.runner.CombinedOutput(ctx, p.ffmpegPath, "-i", path, "-f", "null", "-")

	d, ok := parseDuration(string(out))
	if !ok {
		return 0, fmt.Errorf("could not determine duration of %s", path)
	}
	return d, nil
}

// parseDuration extracts the duration from ffmpeg's informational output,
// e.g. "  Duration: 00:05:30.25, start: 0.000000, bitrate: 128 kb/s"
func parseDuration(output string) (time.Duration, bool) {
	for _, line := range strings.Split(output, "\n") {
		idx := strings.Index(line, "Duration:")
		if idx == -1 {
			continue
		}

		clock := line[idx+len("Duration:"):]
		if comma := strings.Index(clock, ","); comma != -1 {
			clock = clock[:comma]
		}
		clock = strings.TrimSpace(clock)

		parts := strings.Split(clock, ":")
		if len(parts) != 3 {
			continue
		}

		hours, err1 := strconv.ParseFloat(parts[0], 64)
		minutes, err2 := strconv.ParseFloat(parts[1], 64)
		seconds, err3 := strconv.ParseFloat(parts[2], 64)
		if err1 != nil || err2 != nil || err3 != nil {
			continue
		}

		total := hours*3600 + minutes*60 + seconds
		return time.Duration(total * float64(time.Second)), true
	}
	return 0, false
}

// Ensure Prober implements audio.Prober
var _ audio.Prober = (*Prober)(nil)
