package cmd

import (
	"context"
	"fmt"
	"os"

	appdist "vid2mp3/application/distribution"
	"vid2mp3/domain/distribution"
	"vid2mp3/domain/transcript"
	"vid2mp3/infrastructure/drive"

	"github.com/spf13/cobra"
)

var uploadAudioOnly bool

var uploadCmd = &cobra.Command{
	Use:   "upload <mp3_path>",
	Short: "Upload an MP3 and its transcript to Google Drive",
	Long: `Upload an MP3 file to Google Drive and set public sharing.

When a transcription JSON exists next to the MP3, it is uploaded too.
A Drive file with the same name is replaced, so re-running an upload
never leaves duplicates behind.

Requires Google credentials configured via "vid2mp3 setup".

Example:
  vid2mp3 upload output/20251228_100616/talk_20251228_100616.mp3
  vid2mp3 upload --audio-only output/20251228_100616/talk_20251228_100616.mp3`,
	Args: cobra.ExactArgs(1),
	RunE: runUpload,
}

func init() {
	rootCmd.AddCommand(uploadCmd)
	uploadCmd.Flags().BoolVar(&uploadAudioOnly, "audio-only", false, "skip the transcript even when present")
}

func runUpload(cmd *cobra.Command, args []string) error {
	if cfg.Google.CredentialsFile == "" {
		return fmt.Errorf("Google Drive is not configured; run \"vid2mp3 setup\" first")
	}

	audioPath := args[0]
	if _, err := os.Stat(audioPath); err != nil {
		return fmt.Errorf("audio file does not exist: %s", audioPath)
	}

	transcriptPath := ""
	if !uploadAudioOnly {
		candidate := transcript.JSONPath(audioPath)
		if _, err := os.Stat(candidate); err == nil {
			transcriptPath = candidate
		}
	}

	ctx := cmd.Context()
	client, err := drive.NewClientWithOAuth(ctx, cfg.Google.CredentialsFile, cfg.Google.TokenFile)
	if err != nil {
		return fmt.Errorf("failed to create Google Drive client: %w", err)
	}

	return RunUploadWithDependencies(ctx, client, cfg.Google.FolderID, audioPath, transcriptPath, os.Stdout)
}

// RunUploadWithDependencies runs the upload with injected dependencies (for testing)
func RunUploadWithDependencies(
	ctx context.Context,
	client distribution.DriveClient,
	folderID string,
	audioPath string,
	transcriptPath string,
	output OutputWriter,
) error {
	svc := appdist.NewUploadService(client, folderID, output)

	result, err := svc.Distribute(ctx, audioPath, transcriptPath)
	if err != nil {
		return err
	}

	fmt.Fprintf(output, "Audio: %s\n", result.AudioURL)
	if result.TranscriptURL != "" {
		fmt.Fprintf(output, "Transcript: %s\n", result.TranscriptURL)
	}
	return nil
}
