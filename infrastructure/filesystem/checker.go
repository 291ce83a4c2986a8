package filesystem

import (
	"os"

	"vid2mp3/domain/audio"
)

// Checker implements audio.FileChecker using the os package
type Checker struct{}

// NewChecker creates a new filesystem checker
func NewChecker() *Checker {
	return &Checker{}
}

// Exists returns true if the file exists
func (c *Checker) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Size returns the file size in bytes, or 0 if the file cannot be read
func (c *Checker) Size(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}

// Ensure Checker implements audio.FileChecker
var _ audio.FileChecker = (*Checker)(nil)
