package cmd

import (
	"vid2mp3/application/pipeline"
	"vid2mp3/infrastructure/tui"

	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Convert videos from an interactive terminal UI",
	Long: `Run vid2mp3 as a full-screen terminal application.

Enter a video path, optionally a bitrate, and watch the conversion
progress live. Transcription runs automatically when an OpenRouter
API key is available.`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	factory := func(logs *tui.LogBuffer) (tui.Runner, error) {
		return buildPipeline(cmd.Context(), logs)
	}
	return tui.Run(factory)
}

var _ tui.Runner = (*pipeline.Service)(nil)
