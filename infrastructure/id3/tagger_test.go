package id3

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bogem/id3v2"
)

func TestTagger_Tag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lecture_20251228_100616.mp3")
	// A few frames of silence-like bytes; the tag is prepended by id3v2
	if err := os.WriteFile(path, []byte{0xFF, 0xFB, 0x90, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}, 0644); err != nil {
		t.Fatal(err)
	}

	tagger := NewTagger()
	recordedAt := time.Date(2025, 12, 28, 10, 6, 16, 0, time.UTC)
	if err := tagger.Tag(path, "lecture", recordedAt); err != nil {
		t.Fatalf("Tag() error: %v", err)
	}

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		t.Fatalf("reopening tagged file: %v", err)
	}
	defer tag.Close()

	if got := tag.Title(); got != "lecture" {
		t.Errorf("Title = %q, want %q", got, "lecture")
	}
	if got := tag.GetTextFrame("TDRC").Text; got != "2025-12-28" {
		t.Errorf("TDRC = %q, want %q", got, "2025-12-28")
	}
	if got := tag.GetTextFrame("TENC").Text; got != "vid2mp3" {
		t.Errorf("TENC = %q, want %q", got, "vid2mp3")
	}
}

func TestTagger_Tag_MissingFile(t *testing.T) {
	tagger := NewTagger()
	err := tagger.Tag(filepath.Join(t.TempDir(), "nope.mp3"), "x", time.Now())
	if err == nil {
		t.Fatal("Tag() expected error for missing file")
	}
}
