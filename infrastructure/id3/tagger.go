package id3

import (
	"fmt"
	"time"

	"github.com/bogem/id3v2"
)

// Tagger writes ID3v2 tags to converted MP3 files
type Tagger struct{}

// NewTagger creates a new Tagger
func NewTagger() *Tagger {
	return &Tagger{}
}

// Tag writes the source video's name as the title and the invocation time
// as the recording date.
func (t *Tagger) Tag(path, title string, recordedAt time.Time) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("failed to open mp3 for tagging: %w", err)
	}
	defer tag.Close()

	tag.SetTitle(title)
	tag.AddTextFrame("TDRC", id3v2.EncodingUTF8, recordedAt.Format("2006-01-02"))
	tag.AddTextFrame("TENC", id3v2.EncodingUTF8, "vid2mp3")

	if err := tag.Save(); err != nil {
		return fmt.Errorf("failed to save tags: %w", err)
	}
	return nil
}
