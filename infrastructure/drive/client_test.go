package drive

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"vid2mp3/domain/distribution"

	"google.golang.org/api/drive/v3"
)

// mockDriveService records API calls without touching the network
type mockDriveService struct {
	created   []string
	shared    []string
	deleted   []string
	existing  map[string]*drive.File
	createErr error
	shareErr  error
}

func (m *mockDriveService) CreateFile(ctx context.Context, name, folderID, mimeType string, content io.Reader) (*drive.File, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	data, _ := io.ReadAll(content)
	m.created = append(m.created, name)
	return &drive.File{
		Id:          "id-" + name,
		Name:        name,
		Size:        int64(len(data)),
		WebViewLink: "https://drive.google.com/file/d/id-" + name + "/view",
	}, nil
}

func (m *mockDriveService) ShareWithAnyone(ctx context.Context, fileID string) error {
	if m.shareErr != nil {
		return m.shareErr
	}
	m.shared = append(m.shared, fileID)
	return nil
}

func (m *mockDriveService) FindByName(ctx context.Context, folderID, name string) (*drive.File, error) {
	if f, ok := m.existing[name]; ok {
		return f, nil
	}
	return nil, nil
}

func (m *mockDriveService) DeleteFile(ctx context.Context, fileID string) error {
	m.deleted = append(m.deleted, fileID)
	return nil
}

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestClient_UploadAndShare(t *testing.T) {
	svc := &mockDriveService{}
	client := &Client{}
	WithDriveService(svc)(client)

	path := writeFixture(t, "talk_20251228_100616.mp3", "mp3 bytes")

	result, err := client.UploadAndShare(context.Background(), distribution.UploadRequest{
		LocalPath: path,
		FileName:  "talk_20251228_100616.mp3",
		FolderID:  "folder1",
		MimeType:  distribution.MimeTypeMP3,
	})
	if err != nil {
		t.Fatalf("UploadAndShare() error: %v", err)
	}

	if result.FileID != "id-talk_20251228_100616.mp3" {
		t.Errorf("FileID = %q", result.FileID)
	}
	if result.ShareableURL == "" {
		t.Error("ShareableURL is empty")
	}
	if result.Size != int64(len("mp3 bytes")) {
		t.Errorf("Size = %d", result.Size)
	}

	if len(svc.shared) != 1 || svc.shared[0] != result.FileID {
		t.Errorf("shared = %v, want the uploaded file", svc.shared)
	}
}

func TestClient_UploadAndShare_MissingLocalFile(t *testing.T) {
	client := &Client{}
	WithDriveService(&mockDriveService{})(client)

	_, err := client.UploadAndShare(context.Background(), distribution.UploadRequest{
		LocalPath: filepath.Join(t.TempDir(), "nope.mp3"),
		FileName:  "nope.mp3",
	})
	if err == nil {
		t.Fatal("UploadAndShare() expected error for missing local file")
	}
}

func TestClient_UploadAndShare_ShareFailure(t *testing.T) {
	svc := &mockDriveService{shareErr: errors.New("permission denied")}
	client := &Client{}
	WithDriveService(svc)(client)

	path := writeFixture(t, "a.mp3", "x")
	_, err := client.UploadAndShare(context.Background(), distribution.UploadRequest{
		LocalPath: path,
		FileName:  "a.mp3",
	})
	if err == nil {
		t.Fatal("UploadAndShare() expected error when sharing fails")
	}
}

func TestClient_FindFileByName(t *testing.T) {
	svc := &mockDriveService{
		existing: map[string]*drive.File{
			"old.mp3": {Id: "old-id", Name: "old.mp3", Size: 42},
		},
	}
	client := &Client{}
	WithDriveService(svc)(client)

	found, err := client.FindFileByName(context.Background(), "folder1", "old.mp3")
	if err != nil {
		t.Fatalf("FindFileByName() error: %v", err)
	}
	if found == nil || found.FileID != "old-id" {
		t.Errorf("FindFileByName() = %+v", found)
	}

	missing, err := client.FindFileByName(context.Background(), "folder1", "new.mp3")
	if err != nil {
		t.Fatalf("FindFileByName() error: %v", err)
	}
	if missing != nil {
		t.Errorf("FindFileByName() for absent file = %+v, want nil", missing)
	}
}
