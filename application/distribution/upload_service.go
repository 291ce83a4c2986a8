package distribution

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"vid2mp3/domain/distribution"
)

// UploadService handles file upload operations to Google Drive
type UploadService struct {
	driveClient distribution.DriveClient
	folderID    string
	output      io.Writer
}

// NewUploadService creates a new upload service
func NewUploadService(client distribution.DriveClient, folderID string, output io.Writer) *UploadService {
	if output == nil {
		output = io.Discard
	}
	return &UploadService{
		driveClient: client,
		folderID:    folderID,
		output:      output,
	}
}

// DistributionResult contains URLs for the uploaded MP3 and its transcript
type DistributionResult struct {
	AudioURL       string
	AudioID        string
	AudioSize      int64
	TranscriptURL  string
	TranscriptID   string
	TranscriptSize int64
}

// UploadAudio uploads an MP3 file to Google Drive and sets public sharing
func (s *UploadService) UploadAudio(ctx context.Context, audioPath string) (*distribution.UploadResult, error) {
	return s.uploadAndShare(ctx, audioPath, distribution.MimeTypeMP3)
}

// UploadTranscript uploads a transcription JSON file to Google Drive and
// sets public sharing
func (s *UploadService) UploadTranscript(ctx context.Context, jsonPath string) (*distribution.UploadResult, error) {
	return s.uploadAndShare(ctx, jsonPath, distribution.MimeTypeJSON)
}

// uploadAndShare uploads a file and sets public sharing permissions.
// An existing Drive file with the same name is replaced.
func (s *UploadService) uploadAndShare(ctx context.Context, filePath, mimeType string) (*distribution.UploadResult, error) {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("file does not exist: %s", filePath)
	}

	fileName := filepath.Base(filePath)

	existing, err := s.driveClient.FindFileByName(ctx, s.folderID, fileName)
	if err != nil {
		return nil, fmt.Errorf("failed to check for existing file: %w", err)
	}
	if existing != nil {
		fmt.Fprintf(s.output, "Replacing existing %s (%.1f MB)\n", existing.FileName, float64(existing.Size)/1024/1024)
		if err := s.driveClient.DeletePermanently(ctx, existing.FileID); err != nil {
			return nil, fmt.Errorf("failed to delete existing file %s: %w", existing.FileName, err)
		}
	}

	req := distribution.UploadRequest{
		LocalPath: filePath,
		FileName:  fileName,
		FolderID:  s.folderID,
		MimeType:  mimeType,
	}

	result, err := s.driveClient.UploadAndShare(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to upload and share %s: %w", fileName, err)
	}

	return result, nil
}

// Distribute uploads the MP3 and, when present, its transcription JSON.
// The transcript path may be empty.
func (s *UploadService) Distribute(ctx context.Context, audioPath, transcriptPath string) (*DistributionResult, error) {
	audioResult, err := s.UploadAudio(ctx, audioPath)
	if err != nil {
		return nil, fmt.Errorf("audio upload failed: %w", err)
	}
	fmt.Fprintf(s.output, "Uploaded %s: %s\n", audioResult.FileName, audioResult.ShareableURL)

	result := &DistributionResult{
		AudioURL:  audioResult.ShareableURL,
		AudioID:   audioResult.FileID,
		AudioSize: audioResult.Size,
	}

	if transcriptPath == "" {
		return result, nil
	}

	transcriptResult, err := s.UploadTranscript(ctx, transcriptPath)
	if err != nil {
		return nil, fmt.Errorf("transcript upload failed: %w", err)
	}
	fmt.Fprintf(s.output, "Uploaded %s: %s\n", transcriptResult.FileName, transcriptResult.ShareableURL)

	result.TranscriptURL = transcriptResult.ShareableURL
	result.TranscriptID = transcriptResult.FileID
	result.TranscriptSize = transcriptResult.Size
	return result, nil
}
