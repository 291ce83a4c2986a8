package distribution

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"vid2mp3/domain/distribution"
)

type mockDriveClient struct {
	uploaded  []distribution.UploadRequest
	deleted   []string
	existing  map[string]*distribution.UploadResult
	uploadErr error
	findErr   error
}

func (m *mockDriveClient) UploadAndShare(ctx context.Context, req distribution.UploadRequest) (*distribution.UploadResult, error) {
	if m.uploadErr != nil {
		return nil, m.uploadErr
	}
	m.uploaded = append(m.uploaded, req)
	return &distribution.UploadResult{
		FileID:       "id-" + req.FileName,
		FileName:     req.FileName,
		ShareableURL: "https://drive.google.com/file/d/id-" + req.FileName + "/view",
		Size:         100,
	}, nil
}

func (m *mockDriveClient) FindFileByName(ctx context.Context, folderID, name string) (*distribution.UploadResult, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	return m.existing[name], nil
}

func (m *mockDriveClient) DeletePermanently(ctx context.Context, fileID string) error {
	m.deleted = append(m.deleted, fileID)
	return nil
}

func writeFixture(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("data"), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestUploadService_Distribute(t *testing.T) {
	dir := t.TempDir()
	mp3 := writeFixture(t, dir, "talk_20251228_100616.mp3")
	jsonPath := writeFixture(t, dir, "talk_20251228_100616_transcription.json")

	client := &mockDriveClient{}
	var out bytes.Buffer
	svc := NewUploadService(client, "folder1", &out)

	result, err := svc.Distribute(context.Background(), mp3, jsonPath)
	if err != nil {
		t.Fatalf("Distribute() error: %v", err)
	}

	if len(client.uploaded) != 2 {
		t.Fatalf("uploaded %d files, want 2", len(client.uploaded))
	}
	if client.uploaded[0].MimeType != distribution.MimeTypeMP3 {
		t.Errorf("audio mime type = %q", client.uploaded[0].MimeType)
	}
	if client.uploaded[1].MimeType != distribution.MimeTypeJSON {
		t.Errorf("transcript mime type = %q", client.uploaded[1].MimeType)
	}
	if client.uploaded[0].FolderID != "folder1" {
		t.Errorf("folder ID = %q", client.uploaded[0].FolderID)
	}

	if result.AudioURL == "" || result.TranscriptURL == "" {
		t.Errorf("result URLs incomplete: %+v", result)
	}
}

func TestUploadService_Distribute_AudioOnly(t *testing.T) {
	mp3 := writeFixture(t, t.TempDir(), "a.mp3")

	client := &mockDriveClient{}
	svc := NewUploadService(client, "", nil)

	result, err := svc.Distribute(context.Background(), mp3, "")
	if err != nil {
		t.Fatalf("Distribute() error: %v", err)
	}
	if len(client.uploaded) != 1 {
		t.Fatalf("uploaded %d files, want 1", len(client.uploaded))
	}
	if result.TranscriptURL != "" {
		t.Errorf("TranscriptURL = %q, want empty", result.TranscriptURL)
	}
}

func TestUploadService_ReplacesExistingFile(t *testing.T) {
	mp3 := writeFixture(t, t.TempDir(), "a.mp3")

	client := &mockDriveClient{
		existing: map[string]*distribution.UploadResult{
			"a.mp3": {FileID: "stale-id", FileName: "a.mp3", Size: 99},
		},
	}
	var out bytes.Buffer
	svc := NewUploadService(client, "folder1", &out)

	if _, err := svc.UploadAudio(context.Background(), mp3); err != nil {
		t.Fatalf("UploadAudio() error: %v", err)
	}

	if len(client.deleted) != 1 || client.deleted[0] != "stale-id" {
		t.Errorf("deleted = %v, want the stale file", client.deleted)
	}
	if !bytes.Contains(out.Bytes(), []byte("Replacing existing a.mp3")) {
		t.Errorf("output missing replace message: %s", out.String())
	}
}

func TestUploadService_MissingLocalFile(t *testing.T) {
	svc := NewUploadService(&mockDriveClient{}, "", nil)

	_, err := svc.UploadAudio(context.Background(), filepath.Join(t.TempDir(), "nope.mp3"))
	if err == nil {
		t.Fatal("UploadAudio() expected error for missing file")
	}
}

func TestUploadService_UploadFailure(t *testing.T) {
	mp3 := writeFixture(t, t.TempDir(), "a.mp3")

	client := &mockDriveClient{uploadErr: errors.New("quota exceeded")}
	svc := NewUploadService(client, "", nil)

	if _, err := svc.Distribute(context.Background(), mp3, ""); err == nil {
		t.Fatal("Distribute() expected error when upload fails")
	}
}
