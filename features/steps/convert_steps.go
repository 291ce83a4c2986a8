//go:build integration

package steps

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"vid2mp3/application/convert"
	"vid2mp3/cmd"
	"vid2mp3/domain/audio"

	"github.com/cucumber/godog"
)

// mockConverter records calls to Convert for verification
type mockConverter struct {
	calls []convertCall
}

type convertCall struct {
	req        *audio.ConversionRequest
	outputPath string
}

func (m *mockConverter) Convert(ctx context.Context, req *audio.ConversionRequest, outputPath string) error {
	m.calls = append(m.calls, convertCall{req: req, outputPath: outputPath})
	return nil
}

// mockFileChecker reports file existence from a scripted map
type mockFileChecker struct {
	existingFiles map[string]bool
}

func (m *mockFileChecker) Exists(path string) bool {
	return m.existingFiles[path]
}

// convertContext holds test state for convert scenarios
type convertContext struct {
	baseDir     string
	sourcePath  string
	converter   *mockConverter
	fileChecker *mockFileChecker
	output      *bytes.Buffer
	result      *convert.Result
	err         error
}

// SharedConvertContext is reset before each scenario via Before hook
var SharedConvertContext *convertContext

func getConvertContext() *convertContext {
	return SharedConvertContext
}

func InitializeConvertScenario(ctx *godog.ScenarioContext) {
	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		SharedConvertContext = &convertContext{
			converter: &mockConverter{},
			fileChecker: &mockFileChecker{
				existingFiles: make(map[string]bool),
			},
			output: &bytes.Buffer{},
		}
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		SharedConvertContext = nil
		return c, nil
	})

	ctx.Step(`^the output base directory is a temporary directory$`, theOutputBaseDirectoryIsATemporaryDirectory)
	ctx.Step(`^a source video at "([^"]*)"$`, aSourceVideoAt)
	ctx.Step(`^no source video exists at "([^"]*)"$`, noSourceVideoExistsAt)
	ctx.Step(`^I convert the video at "([^"]*)"$`, iConvertTheVideoAt)
	ctx.Step(`^I convert the video with bitrate "([^"]*)" at "([^"]*)"$`, iConvertTheVideoWithBitrateAt)
	ctx.Step(`^I attempt to convert the video$`, iAttemptToConvertTheVideo)
	ctx.Step(`^the output file should be named "([^"]*)"$`, theOutputFileShouldBeNamed)
	ctx.Step(`^the output directory should be named "([^"]*)"$`, theOutputDirectoryShouldBeNamed)
	ctx.Step(`^the conversion bitrate should be "([^"]*)"$`, theConversionBitrateShouldBe)
	ctx.Step(`^I should receive an error about a missing source video$`, iShouldReceiveAnErrorAboutAMissingSourceVideo)
	ctx.Step(`^no output directory should have been created$`, noOutputDirectoryShouldHaveBeenCreated)
}

func theOutputBaseDirectoryIsATemporaryDirectory() error {
	cc := getConvertContext()
	dir, err := os.MkdirTemp("", "vid2mp3-features-*")
	if err != nil {
		return err
	}
	// Create the base one level down so its absence can be asserted
	cc.baseDir = filepath.Join(dir, "output")
	return nil
}

func aSourceVideoAt(path string) error {
	cc := getConvertContext()
	cc.sourcePath = path
	cc.fileChecker.existingFiles[path] = true
	return nil
}

func noSourceVideoExistsAt(path string) error {
	cc := getConvertContext()
	cc.sourcePath = path
	cc.fileChecker.existingFiles[path] = false
	return nil
}

func convertAt(timestamp, bitrate string) error {
	cc := getConvertContext()

	startedAt, err := time.Parse("2006-01-02 15:04:05", timestamp)
	if err != nil {
		return fmt.Errorf("invalid timestamp format: %w", err)
	}

	cc.result, cc.err = cmd.RunConvertWithDependencies(
		context.Background(),
		cc.converter,
		cc.fileChecker,
		cc.baseDir,
		bitrate,
		cc.sourcePath,
		startedAt,
		cc.output,
	)
	if cc.err != nil {
		return fmt.Errorf("unexpected error: %v", cc.err)
	}
	return nil
}

func iConvertTheVideoAt(timestamp string) error {
	return convertAt(timestamp, "")
}

func iConvertTheVideoWithBitrateAt(bitrate, timestamp string) error {
	return convertAt(timestamp, bitrate)
}

func iAttemptToConvertTheVideo() error {
	cc := getConvertContext()
	cc.result, cc.err = cmd.RunConvertWithDependencies(
		context.Background(),
		cc.converter,
		cc.fileChecker,
		cc.baseDir,
		"",
		cc.sourcePath,
		time.Now(),
		cc.output,
	)
	return nil
}

func theOutputFileShouldBeNamed(expected string) error {
	cc := getConvertContext()
	if cc.result == nil {
		return fmt.Errorf("no conversion result")
	}
	if got := filepath.Base(cc.result.OutputPath); got != expected {
		return fmt.Errorf("expected output file %q, got %q", expected, got)
	}
	return nil
}

func theOutputDirectoryShouldBeNamed(expected string) error {
	cc := getConvertContext()
	if cc.result == nil {
		return fmt.Errorf("no conversion result")
	}
	if got := filepath.Base(cc.result.OutputDir); got != expected {
		return fmt.Errorf("expected output directory %q, got %q", expected, got)
	}
	if info, err := os.Stat(cc.result.OutputDir); err != nil || !info.IsDir() {
		return fmt.Errorf("output directory was not created: %v", err)
	}
	return nil
}

func theConversionBitrateShouldBe(expected string) error {
	cc := getConvertContext()
	if len(cc.converter.calls) == 0 {
		return fmt.Errorf("ffmpeg was not called")
	}
	if got := cc.converter.calls[0].req.Bitrate; got != expected {
		return fmt.Errorf("expected bitrate %q, got %q", expected, got)
	}
	return nil
}

func iShouldReceiveAnErrorAboutAMissingSourceVideo() error {
	cc := getConvertContext()
	if cc.err == nil {
		return fmt.Errorf("expected an error but got none")
	}
	if !strings.Contains(cc.err.Error(), "does not exist") {
		return fmt.Errorf("expected error about missing source video, got: %v", cc.err)
	}
	return nil
}

func noOutputDirectoryShouldHaveBeenCreated() error {
	cc := getConvertContext()
	if _, err := os.Stat(cc.baseDir); !os.IsNotExist(err) {
		return fmt.Errorf("output base directory exists despite failed conversion")
	}
	return nil
}
