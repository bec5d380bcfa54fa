package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	appErrors "github.com/noah-isme/edusmart/pkg/errors"
)

var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// FileSlot stores one named value as a file. Writes go through a temp file and a rename
// so a crash mid-write never leaves a truncated slot behind.
type FileSlot struct {
	path string
}

// NewFileSlot prepares dir and returns the slot for key.
func NewFileSlot(dir, key string) (*FileSlot, error) {
	if dir == "" {
		dir = "./data"
	}
	if key == "" {
		return nil, fmt.Errorf("slot key required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create slot directory: %w", err)
	}
	name := unsafeKeyChars.ReplaceAllString(key, "_") + ".json"
	return &FileSlot{path: filepath.Join(dir, name)}, nil
}

// Read returns the raw slot content, or ErrSlotEmpty when nothing was stored.
func (s *FileSlot) Read(ctx context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, appErrors.ErrSlotEmpty
		}
		return nil, fmt.Errorf("read slot file: %w", err)
	}
	return data, nil
}

// Write replaces the slot content.
func (s *FileSlot) Write(ctx context.Context, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create slot temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write slot temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close slot temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace slot file: %w", err)
	}
	return nil
}

// Remove deletes the slot; removing an absent slot is not an error.
func (s *FileSlot) Remove(ctx context.Context) error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove slot file: %w", err)
	}
	return nil
}

// Path returns the backing file path.
func (s *FileSlot) Path() string {
	return s.path
}
