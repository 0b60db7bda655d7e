package session

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/crypto/nacl/secretbox"
)

// ErrNoSnapshot is returned by Storage.Load when nothing has been persisted.
var ErrNoSnapshot = errors.New("no stored session")

// Snapshot is what survives a portal restart.
type Snapshot struct {
	Token string `json:"access_token"`
	User  User   `json:"user"`
}

// Storage persists the session snapshot. Only Login and Logout write to it.
type Storage interface {
	Load(ctx context.Context) (*Snapshot, error)
	Save(ctx context.Context, snap Snapshot) error
	Clear(ctx context.Context) error
}

// ── File storage ────────────────────────────────────────────

const nonceSize = 24

// FileStorage keeps the snapshot in a single file readable only by the portal user.
// When a secret is configured the JSON is sealed with NaCl secretbox.
type FileStorage struct {
	path string
	key  *[32]byte
}

// NewFileStorage returns file-backed storage at path. An empty secret stores plain JSON.
func NewFileStorage(path, secret string) *FileStorage {
	fs := &FileStorage{path: path}
	if secret != "" {
		key := sha256.Sum256([]byte(secret))
		fs.key = &key
	}
	return fs
}

func (f *FileStorage) Load(_ context.Context) (*Snapshot, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("read session file: %w", err)
	}

	if f.key != nil {
		if len(data) < nonceSize {
			return nil, errors.New("session file too short")
		}
		var nonce [nonceSize]byte
		copy(nonce[:], data[:nonceSize])
		plain, ok := secretbox.Open(nil, data[nonceSize:], &nonce, f.key)
		if !ok {
			return nil, errors.New("session file could not be unsealed")
		}
		data = plain
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode session file: %w", err)
	}
	if snap.Token == "" {
		return nil, ErrNoSnapshot
	}
	return &snap, nil
}

func (f *FileStorage) Save(_ context.Context, snap Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	if f.key != nil {
		var nonce [nonceSize]byte
		if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
			return fmt.Errorf("generate nonce: %w", err)
		}
		data = secretbox.Seal(nonce[:], data, &nonce, f.key)
	}

	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace session file: %w", err)
	}
	return nil
}

// Clear removes the file. A missing file is not an error.
func (f *FileStorage) Clear(_ context.Context) error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}
