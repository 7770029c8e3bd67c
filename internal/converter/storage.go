package converter

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Storage writes finished PDFs into a single output directory and removes
// them again. The directory is the only piece of the file system the
// pipeline touches.
type Storage struct {
	dir string
}

// NewStorage creates the output directory if necessary.
func NewStorage(dir string) (*Storage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("could not create output directory %s: %w", dir, err)
	}
	return &Storage{dir: dir}, nil
}

// Dir returns the output directory path.
func (s *Storage) Dir() string {
	return s.dir
}

// Save writes pdf under the output directory, overwriting any existing file
// with the same name, and returns the full path. Concurrent writers racing
// to the same explicit filename are last-writer-wins.
func (s *Storage) Save(pdf []byte, filename string) (string, error) {
	path := filepath.Join(s.dir, filename)
	if err := os.WriteFile(path, pdf, 0o644); err != nil {
		return "", fmt.Errorf("could not save PDF %s: %w", filename, err)
	}
	slog.Debug("Saved PDF", "path", path, "size", len(pdf))
	return path, nil
}

// Delete removes the file at path if it exists. Errors are logged and
// swallowed: cleanup must never fail a user-facing operation.
func (s *Storage) Delete(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("Could not delete file", "path", path, "error", err)
	}
}

// StoredFile describes one PDF in the output directory.
type StoredFile struct {
	Name    string
	Size    int64
	ModTime time.Time
}

// List returns the PDFs currently in the output directory, in directory
// order. Other file types are ignored.
func (s *Storage) List() ([]StoredFile, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("could not scan output directory %s: %w", s.dir, err)
	}

	files := make([]StoredFile, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, StoredFile{Name: entry.Name(), Size: info.Size(), ModTime: info.ModTime()})
	}
	return files, nil
}

// PurgeOlderThan removes PDFs in the output directory whose modification
// time is older than age. Intended for startup housekeeping; errors are
// logged only.
func (s *Storage) PurgeOlderThan(age time.Duration) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		slog.Warn("Could not scan output directory for cleanup", "dir", s.dir, "error", err)
		return
	}

	cutoff := time.Now().Add(-age)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		s.Delete(filepath.Join(s.dir, entry.Name()))
		removed++
	}
	if removed > 0 {
		slog.Info("Purged stale PDFs", "dir", s.dir, "count", removed)
	}
}
