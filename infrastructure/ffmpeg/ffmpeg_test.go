package ffmpeg

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"vid2mp3/domain/audio"
)

// mockRunner records commands and returns scripted results
type mockRunner struct {
	runCalls    [][]string
	runErr      func(call []string) error
	outputErr   func(name string) error
	combinedOut []byte
	onRun       func(call []string) // side effects, e.g. creating chunk files
}

func (m *mockRunner) Run(ctx context.Context, name string, args ...string) error {
	call := append([]string{name}, args...)
	m.runCalls = append(m.runCalls, call)
	if m.onRun != nil {
		m.onRun(call)
	}
	if m.runErr != nil {
		return m.runErr(call)
	}
	return nil
}

func (m *mockRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	if m.outputErr != nil {
		return nil, m.outputErr(name)
	}
	return []byte("ffmpeg version 7.0"), nil
}

func (m *mockRunner) CombinedOutput(ctx context.Context, name string, args ...string) ([]byte, error) {
	return m.combinedOut, nil
}

func TestConverter_Convert(t *testing.T) {
	runner := &mockRunner{}
	conv := NewConverter(WithConverterCommandRunner(runner))

	req, err := audio.NewConversionRequest("/videos/lecture.mp4", "192k", time.Date(2025, 12, 28, 10, 6, 16, 0, time.UTC))
	if err != nil {
		t.Fatalf("NewConversionRequest() error: %v", err)
	}

	if err := conv.Convert(context.Background(), req, "/out/lecture_20251228_100616.mp3"); err != nil {
		t.Fatalf("Convert() error: %v", err)
	}

	if len(runner.runCalls) != 1 {
		t.Fatalf("expected 1 command, got %d", len(runner.runCalls))
	}

	want := []string{
		"ffmpeg",
		"-i", "/videos/lecture.mp4",
		"-vn",
		"-acodec", "libmp3lame",
		"-ab", "192k",
		"-ar", "44100",
		"-y",
		"/out/lecture_20251228_100616.mp3",
	}

	got := runner.runCalls[0]
	if len(got) != len(want) {
		t.Fatalf("command = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("arg[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestConverter_ConvertFailure(t *testing.T) {
	runner := &mockRunner{
		runErr: func([]string) error { return errors.New("exit status 1") },
	}
	conv := NewConverter(WithConverterCommandRunner(runner))

	req, _ := audio.NewConversionRequest("broken.mp4", "", time.Now())
	err := conv.Convert(context.Background(), req, "out.mp3")
	if err == nil {
		t.Fatal("Convert() expected error for failing ffmpeg")
	}
}

func TestFind(t *testing.T) {
	t.Run("first candidate works", func(t *testing.T) {
		runner := &mockRunner{}
		path, err := Find(context.Background(), runner)
		if err != nil {
			t.Fatalf("Find() error: %v", err)
		}
		if path != "ffmpeg" {
			t.Errorf("Find() = %q, want %q", path, "ffmpeg")
		}
	})

	t.Run("falls back to homebrew path", func(t *testing.T) {
		runner := &mockRunner{
			outputErr: func(name string) error {
				if name == "ffmpeg" {
					return errors.New("executable file not found")
				}
				return nil
			},
		}
		path, err := Find(context.Background(), runner)
		if err != nil {
			t.Fatalf("Find() error: %v", err)
		}
		if path != "/opt/homebrew/bin/ffmpeg" {
			t.Errorf("Find() = %q, want homebrew path", path)
		}
	})

	t.Run("nothing installed", func(t *testing.T) {
		runner := &mockRunner{
			outputErr: func(string) error { return errors.New("not found") },
		}
		_, err := Find(context.Background(), runner)
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("Find() error = %v, want ErrNotFound", err)
		}
	})
}

func TestProber_Duration(t *testing.T) {
	tests := []struct {
		name    string
		output  string
		want    time.Duration
		wantErr bool
	}{
		{
			name: "standard duration line",
			output: "Input #0, mp3, from 'talk.mp3':\n" +
				"  Duration: 00:05:30.25, start: 0.000000, bitrate: 128 kb/s\n",
			want: 5*time.Minute + 30*time.Second + 250*time.Millisecond,
		},
		{
			name:   "hours present",
			output: "  Duration: 01:02:03.00, start: 0.000000, bitrate: 192 kb/s\n",
			want:   time.Hour + 2*time.Minute + 3*time.Second,
		},
		{
			name:    "no duration line",
			output:  "some unrelated output\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &mockRunner{combinedOut: []byte(tt.output)}
			prober := NewProber(WithProberCommandRunner(runner))

			got, err := prober.Duration(context.Background(), "talk.mp3")
			if tt.wantErr {
				if err == nil {
					t.Fatal("Duration() expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Duration() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Duration() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSplitter_Split(t *testing.T) {
	dir := t.TempDir()
	chunksDir := filepath.Join(dir, "chunks")

	// The runner writes non-empty chunk files for the first two cuts, then
	// fails, which marks the end of the source.
	cuts := 0
	runner := &mockRunner{}
	runner.onRun = func(call []string) {
		if cuts < 2 {
			os.WriteFile(call[len(call)-1], []byte("mp3data"), 0644)
		}
	}
	runner.runErr = func(call []string) error {
		cuts++
		if cuts > 2 {
			return errors.New("exit status 1")
		}
		return nil
	}

	splitter := NewSplitter(WithSplitterCommandRunner(runner))
	chunks, err := splitter.Split(context.Background(), filepath.Join(dir, "talk.mp3"), chunksDir, 5*time.Minute)
	if err != nil {
		t.Fatalf("Split() error: %v", err)
	}

	if len(chunks) != 2 {
		t.Fatalf("Split() produced %d chunks, want 2", len(chunks))
	}

	if chunks[0].Offset != 0 {
		t.Errorf("chunk 0 offset = %v, want 0", chunks[0].Offset)
	}
	if chunks[1].Offset != 5*time.Minute {
		t.Errorf("chunk 1 offset = %v, want 5m", chunks[1].Offset)
	}

	wantPath := filepath.Join(chunksDir, "talk_chunk_000.mp3")
	if chunks[0].Path != wantPath {
		t.Errorf("chunk 0 path = %q, want %q", chunks[0].Path, wantPath)
	}

	// The split command must use stream copy, not re-encoding
	first := runner.runCalls[0]
	foundCopy := false
	for i, arg := range first {
		if arg == "-acodec" && i+1 < len(first) && first[i+1] == "copy" {
			foundCopy = true
		}
	}
	if !foundCopy {
		t.Errorf("split command %v does not stream-copy audio", first)
	}
}

func TestSplitter_EmptyChunkEndsSplit(t *testing.T) {
	dir := t.TempDir()
	chunksDir := filepath.Join(dir, "chunks")

	// First cut succeeds with content, second succeeds but writes an empty
	// file (ffmpeg seeked past the end).
	count := 0
	runner := &mockRunner{}
	runner.onRun = func(call []string) {
		count++
		if count == 1 {
			os.WriteFile(call[len(call)-1], []byte("mp3data"), 0644)
		} else {
			os.WriteFile(call[len(call)-1], nil, 0644)
		}
	}

	splitter := NewSplitter(WithSplitterCommandRunner(runner))
	chunks, err := splitter.Split(context.Background(), filepath.Join(dir, "talk.mp3"), chunksDir, time.Minute)
	if err != nil {
		t.Fatalf("Split() error: %v", err)
	}

	if len(chunks) != 1 {
		t.Fatalf("Split() produced %d chunks, want 1", len(chunks))
	}

	// The empty trailing chunk file must be cleaned up
	if _, err := os.Stat(filepath.Join(chunksDir, "talk_chunk_001.mp3")); !os.IsNotExist(err) {
		t.Error("empty trailing chunk file was not removed")
	}
}
