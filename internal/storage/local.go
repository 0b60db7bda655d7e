package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore writes files under a directory on the workstation and serves them
// from baseURL (e.g. "/files").
type LocalStore struct {
	dir     string
	baseURL string
}

// NewLocalStore creates dir if needed.
func NewLocalStore(dir, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}
	return &LocalStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Dir is the root directory files are served from.
func (s *LocalStore) Dir() string {
	return s.dir
}

func (s *LocalStore) Save(_ context.Context, path string, data []byte, contentType string) (*FileInfo, error) {
	rel, err := cleanPath(path)
	if err != nil {
		return nil, err
	}

	full := filepath.Join(s.dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o750); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}
	if err := os.WriteFile(full, data, 0o640); err != nil {
		return nil, fmt.Errorf("write export file: %w", err)
	}

	return &FileInfo{
		URL:      s.URL(rel),
		Path:     rel,
		FileName: baseName(rel),
		FileSize: int64(len(data)),
		FileType: contentType,
	}, nil
}

// Delete removes a file. A missing file is not an error.
func (s *LocalStore) Delete(_ context.Context, path string) error {
	rel, err := cleanPath(path)
	if err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(s.dir, filepath.FromSlash(rel))); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove export file: %w", err)
	}
	return nil
}

func (s *LocalStore) URL(path string) string {
	return s.baseURL + "/" + strings.TrimLeft(path, "/")
}
