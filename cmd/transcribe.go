package cmd

import (
	"fmt"
	"os"

	"vid2mp3/infrastructure/config"

	"github.com/spf13/cobra"
)

var transcribeCmd = &cobra.Command{
	Use:   "transcribe <mp3_path>",
	Short: "Transcribe an existing MP3 file",
	Long: `Transcribe an MP3 file to JSON with per-word timestamps.

The result is written next to the input as <name>_transcription.json.
Large files are split into chunks and transcribed piece by piece.

Requires OPENROUTER_API_KEY in the environment or a .env file.

Example:
  vid2mp3 transcribe output/20251228_100616/talk_20251228_100616.mp3`,
	Args: cobra.ExactArgs(1),
	RunE: runTranscribe,
}

func init() {
	rootCmd.AddCommand(transcribeCmd)
	transcribeCmd.Flags().StringVar(&modelName, "model", "", "transcription model (default from config)")
}

func runTranscribe(cmd *cobra.Command, args []string) error {
	mp3Path := args[0]
	if _, err := os.Stat(mp3Path); err != nil {
		return fmt.Errorf("audio file does not exist: %s", mp3Path)
	}

	apiKey := config.APIKey()
	if apiKey == "" {
		return fmt.Errorf("%s is not set; add it to the environment or a .env file", config.APIKeyEnv)
	}

	ffmpegPath, err := locateFFmpeg(cmd.Context())
	if err != nil {
		return err
	}

	svc := buildTranscribeService(apiKey, ffmpegPath, os.Stdout)

	result, err := svc.Transcribe(cmd.Context(), mp3Path)
	if err != nil {
		return err
	}

	fmt.Printf("Transcription saved: %s (%d words)\n", result.JSONPath, result.WordCount)
	return nil
}
