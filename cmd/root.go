package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"vid2mp3/application/convert"
	"vid2mp3/application/pipeline"
	"vid2mp3/application/transcribe"
	"vid2mp3/domain/audio"
	"vid2mp3/infrastructure/config"
	"vid2mp3/infrastructure/ffmpeg"
	"vid2mp3/infrastructure/filesystem"
	"vid2mp3/infrastructure/id3"
	"vid2mp3/infrastructure/openrouter"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	cfg     *config.Config

	noTranscribe bool
	tagMP3       bool
	modelName    string
	outputDir    string
)

// OutputWriter allows capturing output in tests
type OutputWriter interface {
	io.Writer
}

var rootCmd = &cobra.Command{
	Use:   "vid2mp3 <input_video_path> [bitrate]",
	Short: "Convert a video's audio track to MP3",
	Long: `vid2mp3 extracts the audio track of a video file and converts it to MP3
using ffmpeg. The result is written to a timestamped directory so repeated
runs never overwrite each other.

When an OpenRouter API key is available, the MP3 is also transcribed to
JSON with per-word timestamps.

Example:
  vid2mp3 recording.mp4
  vid2mp3 recording.mp4 192k`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runConvert,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config/config.yaml)")
	rootCmd.Flags().BoolVar(&noTranscribe, "no-transcribe", false, "skip transcription even when an API key is set")
	rootCmd.Flags().BoolVar(&tagMP3, "tag", false, "write ID3 tags onto the resulting MP3")
	rootCmd.Flags().StringVar(&modelName, "model", "", "transcription model (default from config)")
	rootCmd.Flags().StringVar(&outputDir, "output", "", "base output directory (default from config or \"output\")")
}

func initConfig() {
	config.LoadDotEnv()

	if cfgFile == "" {
		cfgFile = config.DefaultPath
	}

	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		// The config file is optional; defaults cover every setting
		cfg = config.Default()
	}
}

// GetConfig returns the loaded configuration
func GetConfig() *config.Config {
	return cfg
}

func runConvert(cmd *cobra.Command, args []string) error {
	input := pipeline.Input{SourcePath: args[0]}
	if len(args) > 1 {
		input.Bitrate = args[1]
	}

	svc, err := buildPipeline(cmd.Context(), os.Stdout)
	if err != nil {
		return err
	}

	_, err = svc.Run(cmd.Context(), input)
	return err
}

// buildPipeline assembles the production pipeline from the loaded config.
func buildPipeline(ctx context.Context, out OutputWriter) (*pipeline.Service, error) {
	ffmpegPath, err := locateFFmpeg(ctx)
	if err != nil {
		return nil, err
	}

	converter := ffmpeg.NewConverter(ffmpeg.WithConverterFFmpegPath(ffmpegPath))
	checker := filesystem.NewChecker()

	baseDir := outputDir
	if baseDir == "" {
		baseDir = cfg.Paths.OutputDirectory
	}

	convertSvc := convert.NewService(converter, checker, baseDir, cfg.Audio.Bitrate)

	var tagger pipeline.Tagger
	if tagMP3 || cfg.Audio.Tag {
		tagger = id3.NewTagger()
	}

	var transcriber pipeline.TranscribeService
	if !noTranscribe && !cfg.Transcription.Disabled {
		if apiKey := config.APIKey(); apiKey != "" {
			transcriber = buildTranscribeService(apiKey, ffmpegPath, out)
		}
	}

	return pipeline.NewService(convertSvc, transcriber, tagger, out), nil
}

// buildTranscribeService wires the OpenRouter client and ffmpeg helpers
// into a transcription service.
func buildTranscribeService(apiKey, ffmpegPath string, out OutputWriter) *transcribe.Service {
	model := modelName
	if model == "" {
		model = cfg.Transcription.Model
	}

	client := openrouter.NewClient(apiKey,
		openrouter.WithModel(model),
		openrouter.WithMaxUploadBytes(int64(cfg.Transcription.MaxChunkMB)*1024*1024),
	)
	prober := ffmpeg.NewProber(ffmpeg.WithProberFFmpegPath(ffmpegPath))
	splitter := ffmpeg.NewSplitter(ffmpeg.WithSplitterFFmpegPath(ffmpegPath))

	settings := transcribe.Settings{
		ChunkLength:    time.Duration(cfg.Transcription.ChunkSeconds) * time.Second,
		SplitThreshold: int64(cfg.Transcription.SplitThresholdMB) * 1024 * 1024,
		Concurrency:    cfg.Transcription.Concurrency,
	}

	return transcribe.NewService(client, prober, splitter, filesystem.NewChecker(), settings, out)
}

// RunConvertWithDependencies runs the conversion with injected dependencies (for testing)
func RunConvertWithDependencies(
	ctx context.Context,
	converter audio.Converter,
	fileChecker audio.FileChecker,
	baseDir string,
	bitrate string,
	sourcePath string,
	startedAt time.Time,
	output OutputWriter,
) (*convert.Result, error) {
	service := convert.NewService(converter, fileChecker, baseDir, bitrate)

	fmt.Fprintf(output, "Converting %s to MP3...\n", sourcePath)

	result, err := service.Convert(ctx, convert.Input{
		SourcePath: sourcePath,
		Bitrate:    bitrate,
		StartedAt:  startedAt,
	})
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(output, "Output file: %s\n", result.OutputPath)
	return result, nil
}

// locateFFmpeg finds a working ffmpeg binary or explains how to get one.
func locateFFmpeg(ctx context.Context) (string, error) {
	probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	path, err := ffmpeg.Find(probeCtx, &ffmpeg.ExecCommandRunner{})
	if err != nil {
		return "", fmt.Errorf("ffmpeg is not installed or not on PATH; install it with your package manager (e.g. brew install ffmpeg, apt install ffmpeg): %w", err)
	}
	return path, nil
}
