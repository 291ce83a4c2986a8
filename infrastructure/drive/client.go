package drive

import (
	"context"
	"fmt"
	"io"
	"os"

	"vid2mp3/domain/distribution"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
)

// DriveService defines the interface for Google Drive API operations
// This allows mocking the Google Drive API in tests
type DriveService interface {
	CreateFile(ctx context.Context, name, folderID, mimeType string, content io.Reader) (*drive.File, error)
	ShareWithAnyone(ctx context.Context, fileID string) error
	FindByName(ctx context.Context, folderID, name string) (*drive.File, error)
	DeleteFile(ctx context.Context, fileID string) error
}

// GoogleDriveService is the production implementation using the Google Drive API
type GoogleDriveService struct {
	service *drive.Service
}

// CreateFile uploads content as a new file in the given folder
func (s *GoogleDriveService) CreateFile(ctx context.Context, name, folderID, mimeType string, content io.Reader) (*drive.File, error) {
	meta := &drive.File{
		Name:     name,
		MimeType: mimeType,
	}
	if folderID != "" {
		meta.Parents = []string{folderID}
	}

	return s.service.Files.Create(meta).
		Media(content).
		Fields("id, name, size, webViewLink").
		Context(ctx).
		Do()
}

// ShareWithAnyone grants link-based read access to the file
func (s *GoogleDriveService) ShareWithAnyone(ctx context.Context, fileID string) error {
	_, err := s.service.Permissions.Create(fileID, &drive.Permission{
		Role: "reader",
		Type: "anyone",
	}).Context(ctx).Do()
	return err
}

// FindByName returns the first file with the given name in the folder, or nil
func (s *GoogleDriveService) FindByName(ctx context.Context, folderID, name string) (*drive.File, error) {
	query := fmt.Sprintf("name = '%s' and '%s' in parents and trashed = false", name, folderID)
	r, err := s.service.Files.List().
		Q(query).
		Fields(googleapi.Field("files(id, name, size, webViewLink)")).
		PageSize(1).
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	if len(r.Files) == 0 {
		return nil, nil
	}
	return r.Files[0], nil
}

// DeleteFile deletes a file permanently
func (s *GoogleDriveService) DeleteFile(ctx context.Context, fileID string) error {
	return s.service.Files.Delete(fileID).Context(ctx).Do()
}

// Client implements distribution.DriveClient using the Google Drive API
type Client struct {
	driveService DriveService
}

// ClientOption is a functional option for configuring Client
type ClientOption func(*Client)

// WithDriveService sets a custom drive service (for testing)
func WithDriveService(svc DriveService) ClientOption {
	return func(c *Client) {
		c.driveService = svc
	}
}

// UploadAndShare implements distribution.DriveClient
func (c *Client) UploadAndShare(ctx context.Context, req distribution.UploadRequest) (*distribution.UploadResult, error) {
	f, err := os.Open(req.LocalPath)
	if err != nil {
		return nil, fmt.Errorf("unable to open %s: %w", req.LocalPath, err)
	}
	defer f.Close()

	created, err := c.driveService.CreateFile(ctx, req.FileName, req.FolderID, req.MimeType, f)
	if err != nil {
		return nil, fmt.Errorf("upload failed for %s: %w", req.FileName, err)
	}

	if err := c.driveService.ShareWithAnyone(ctx, created.Id); err != nil {
		return nil, fmt.Errorf("failed to share %s: %w", req.FileName, err)
	}

	url := created.WebViewLink
	if url == "" {
		url = fmt.Sprintf("https://drive.google.com/file/d/%s/view", created.Id)
	}

	return &distribution.UploadResult{
		FileID:       created.Id,
		FileName:     created.Name,
		ShareableURL: url,
		Size:         created.Size,
	}, nil
}

// FindFileByName implements distribution.DriveClient
func (c *Client) FindFileByName(ctx context.Context, folderID, name string) (*distribution.UploadResult, error) {
	f, err := c.driveService.FindByName(ctx, folderID, name)
	if err != nil {
		return nil, fmt.Errorf("failed to look up %s: %w", name, err)
	}
	if f == nil {
		return nil, nil
	}
	return &distribution.UploadResult{
		FileID:       f.Id,
		FileName:     f.Name,
		ShareableURL: f.WebViewLink,
		Size:         f.Size,
	}, nil
}

// DeletePermanently implements distribution.DriveClient
func (c *Client) DeletePermanently(ctx context.Context, fileID string) error {
	if err := c.driveService.DeleteFile(ctx, fileID); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// Ensure Client implements distribution.DriveClient
var _ distribution.DriveClient = (*Client)(nil)
