// Package storage keeps generated export files, either on local disk or in an
// S3-compatible bucket (Cloudflare R2).
package storage

import (
	"context"
	"errors"
	"path"
	"strings"
)

// ErrInvalidPath is returned for empty paths or paths that climb out of the store root.
var ErrInvalidPath = errors.New("invalid storage path")

// FileInfo describes a stored file.
type FileInfo struct {
	URL      string `json:"url"`
	Path     string `json:"path"`
	FileName string `json:"fileName"`
	FileSize int64  `json:"fileSize"`
	FileType string `json:"fileType"`
}

// Store persists export files. Handlers depend on this, never on a backend.
type Store interface {
	Save(ctx context.Context, path string, data []byte, contentType string) (*FileInfo, error)
	Delete(ctx context.Context, path string) error
	URL(path string) string
}

// cleanPath normalises p to a relative slash path inside the store.
func cleanPath(p string) (string, error) {
	p = path.Clean("/" + strings.ReplaceAll(p, "\\", "/"))
	p = strings.TrimPrefix(p, "/")
	if p == "" || p == "." {
		return "", ErrInvalidPath
	}
	return p, nil
}

func baseName(p string) string {
	return p[strings.LastIndex(p, "/")+1:]
}
