//go:build integration

package steps

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"vid2mp3/application/transcribe"
	"vid2mp3/domain/audio"
	"vid2mp3/domain/transcript"

	"github.com/cucumber/godog"
)

// scriptedTranscriber returns canned transcripts per path
type scriptedTranscriber struct {
	fallback *transcript.Transcript
	perPath  map[string]*transcript.Transcript
}

func (s *scriptedTranscriber) Transcribe(ctx context.Context, audioPath string) (*transcript.Transcript, error) {
	tr := s.fallback
	if scripted, ok := s.perPath[audioPath]; ok {
		tr = scripted
	}
	if tr == nil {
		return nil, fmt.Errorf("no scripted transcript for %s", audioPath)
	}
	return &transcript.Transcript{
		Text:  tr.Text,
		Words: append([]transcript.Word(nil), tr.Words...),
	}, nil
}

type fixedProber struct {
	duration time.Duration
}

func (p *fixedProber) Duration(ctx context.Context, path string) (time.Duration, error) {
	return p.duration, nil
}

type scriptedSplitter struct {
	chunks []audio.Chunk
}

func (s *scriptedSplitter) Split(ctx context.Context, sourcePath, chunksDir string, chunkLength time.Duration) ([]audio.Chunk, error) {
	return s.chunks, nil
}

type fixedSizer struct {
	size int64
}

func (s *fixedSizer) Size(path string) int64 { return s.size }

// transcribeContext holds test state for transcribe scenarios
type transcribeContext struct {
	dir         string
	mp3Path     string
	transcriber *scriptedTranscriber
	prober      *fixedProber
	splitter    *scriptedSplitter
	sizer       *fixedSizer
	output      *bytes.Buffer
	result      *transcribe.Result
	written     *transcript.Transcript
	err         error
}

// SharedTranscribeContext is reset before each scenario via Before hook
var SharedTranscribeContext *transcribeContext

func getTranscribeContext() *transcribeContext {
	return SharedTranscribeContext
}

func InitializeTranscribeScenario(ctx *godog.ScenarioContext) {
	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		dir, err := os.MkdirTemp("", "vid2mp3-features-*")
		if err != nil {
			return c, err
		}
		SharedTranscribeContext = &transcribeContext{
			dir:         dir,
			mp3Path:     filepath.Join(dir, "recording.mp3"),
			transcriber: &scriptedTranscriber{perPath: make(map[string]*transcript.Transcript)},
			prober:      &fixedProber{},
			splitter:    &scriptedSplitter{},
			sizer:       &fixedSizer{},
			output:      &bytes.Buffer{},
		}
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		SharedTranscribeContext = nil
		return c, nil
	})

	ctx.Step(`^an MP3 file of (\d+) MB$`, anMP3FileOfMB)
	ctx.Step(`^an MP3 file of (\d+) MB lasting (\d+) seconds$`, anMP3FileOfMBLastingSeconds)
	ctx.Step(`^the transcription service returns "([^"]*)" with word timestamps$`, theTranscriptionServiceReturnsWithWordTimestamps)
	ctx.Step(`^the transcription service returns "([^"]*)" without timestamps$`, theTranscriptionServiceReturnsWithoutTimestamps)
	ctx.Step(`^the audio splits into (\d+) chunks of (\d+) seconds$`, theAudioSplitsIntoChunksOfSeconds)
	ctx.Step(`^each chunk transcribes to its own text$`, eachChunkTranscribesToItsOwnText)
	ctx.Step(`^I transcribe the file$`, iTranscribeTheFile)
	ctx.Step(`^a transcription JSON should be written next to the MP3$`, aTranscriptionJSONShouldBeWrittenNextToTheMP3)
	ctx.Step(`^the transcription text should be "([^"]*)"$`, theTranscriptionTextShouldBe)
	ctx.Step(`^the transcription should merge the chunk texts in order$`, theTranscriptionShouldMergeTheChunkTextsInOrder)
	ctx.Step(`^words from the second chunk should start after (\d+) seconds$`, wordsFromTheSecondChunkShouldStartAfterSeconds)
	ctx.Step(`^every transcribed word should carry start and end times$`, everyTranscribedWordShouldCarryStartAndEndTimes)
}

func anMP3FileOfMB(sizeMB int) error {
	tc := getTranscribeContext()
	tc.sizer.size = int64(sizeMB) * 1024 * 1024
	return nil
}

func anMP3FileOfMBLastingSeconds(sizeMB, seconds int) error {
	tc := getTranscribeContext()
	tc.sizer.size = int64(sizeMB) * 1024 * 1024
	tc.prober.duration = time.Duration(seconds) * time.Second
	return nil
}

func theTranscriptionServiceReturnsWithWordTimestamps(text string) error {
	tc := getTranscribeContext()
	words := []transcript.Word{{Word: "hello", Start: 0, End: 0.4}, {Word: "world", Start: 0.4, End: 0.8}}
	tc.transcriber.fallback = &transcript.Transcript{Text: text, Words: words}
	return nil
}

func theTranscriptionServiceReturnsWithoutTimestamps(text string) error {
	tc := getTranscribeContext()
	tc.transcriber.fallback = &transcript.Transcript{Text: text}
	return nil
}

func theAudioSplitsIntoChunksOfSeconds(count, seconds int) error {
	tc := getTranscribeContext()
	for i := 0; i < count; i++ {
		tc.splitter.chunks = append(tc.splitter.chunks, audio.Chunk{
			Index:  i,
			Path:   filepath.Join(tc.dir, "chunks", fmt.Sprintf("recording_chunk_%03d.mp3", i)),
			Offset: time.Duration(i*seconds) * time.Second,
		})
	}
	return nil
}

func eachChunkTranscribesToItsOwnText() error {
	tc := getTranscribeContext()
	for i, chunk := range tc.splitter.chunks {
		tc.transcriber.perPath[chunk.Path] = &transcript.Transcript{
			Text:  fmt.Sprintf("chunk %d text", i),
			Words: []transcript.Word{{Word: "chunk", Start: 0.5, End: 0.9}},
		}
	}
	return nil
}

func iTranscribeTheFile() error {
	tc := getTranscribeContext()

	svc := transcribe.NewService(tc.transcriber, tc.prober, tc.splitter, tc.sizer, transcribe.Settings{}, tc.output)
	tc.result, tc.err = svc.Transcribe(context.Background(), tc.mp3Path)
	if tc.err != nil {
		return fmt.Errorf("unexpected error: %v", tc.err)
	}

	data, err := os.ReadFile(tc.result.JSONPath)
	if err != nil {
		return fmt.Errorf("cannot read written JSON: %w", err)
	}
	tc.written = &transcript.Transcript{}
	if err := json.Unmarshal(data, tc.written); err != nil {
		return fmt.Errorf("written JSON invalid: %w", err)
	}
	return nil
}

func aTranscriptionJSONShouldBeWrittenNextToTheMP3() error {
	tc := getTranscribeContext()
	want := filepath.Join(tc.dir, "recording_transcription.json")
	if tc.result.JSONPath != want {
		return fmt.Errorf("expected JSON at %q, got %q", want, tc.result.JSONPath)
	}
	return nil
}

func theTranscriptionTextShouldBe(expected string) error {
	tc := getTranscribeContext()
	if tc.written.Text != expected {
		return fmt.Errorf("expected text %q, got %q", expected, tc.written.Text)
	}
	return nil
}

func theTranscriptionShouldMergeTheChunkTextsInOrder() error {
	tc := getTranscribeContext()
	want := ""
	for i := range tc.splitter.chunks {
		if i > 0 {
			want += " "
		}
		want += fmt.Sprintf("chunk %d text", i)
	}
	if tc.written.Text != want {
		return fmt.Errorf("expected merged text %q, got %q", want, tc.written.Text)
	}
	return nil
}

func wordsFromTheSecondChunkShouldStartAfterSeconds(seconds int) error {
	tc := getTranscribeContext()
	if len(tc.written.Words) < 2 {
		return fmt.Errorf("expected words from both chunks, got %d", len(tc.written.Words))
	}
	last := tc.written.Words[len(tc.written.Words)-1]
	if last.Start < float64(seconds) {
		return fmt.Errorf("expected second chunk words after %ds, got start %.2f", seconds, last.Start)
	}
	return nil
}

func everyTranscribedWordShouldCarryStartAndEndTimes() error {
	tc := getTranscribeContext()
	if len(tc.written.Words) == 0 {
		return fmt.Errorf("no words were written")
	}
	for _, w := range tc.written.Words {
		if w.End <= w.Start {
			return fmt.Errorf("word %q has invalid times: start %.2f end %.2f", w.Word, w.Start, w.End)
		}
	}
	return nil
}
