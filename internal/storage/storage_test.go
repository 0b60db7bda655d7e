package storage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanPath(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"exports/ward1/2025.xlsx", "exports/ward1/2025.xlsx", false},
		{"/exports//ward1/./2025.xlsx", "exports/ward1/2025.xlsx", false},
		{"../../etc/passwd", "etc/passwd", false},
		{`exports\ward1\a.xlsx`, "exports/ward1/a.xlsx", false},
		{"", "", true},
		{"/", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := cleanPath(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPath)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLocalStore_SaveAndDelete(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStore(dir, "/files/")
	require.NoError(t, err)
	ctx := context.Background()

	info, err := s.Save(ctx, "exports/ward1/ward1_2025.xlsx", []byte("xlsx-bytes"), "application/octet-stream")
	require.NoError(t, err)

	assert.Equal(t, "/files/exports/ward1/ward1_2025.xlsx", info.URL)
	assert.Equal(t, "ward1_2025.xlsx", info.FileName)
	assert.Equal(t, int64(10), info.FileSize)

	data, err := os.ReadFile(filepath.Join(dir, "exports", "ward1", "ward1_2025.xlsx"))
	require.NoError(t, err)
	assert.Equal(t, "xlsx-bytes", string(data))

	require.NoError(t, s.Delete(ctx, info.Path))
	require.NoError(t, s.Delete(ctx, info.Path))
	_, err = os.Stat(filepath.Join(dir, "exports", "ward1", "ward1_2025.xlsx"))
	assert.True(t, os.IsNotExist(err))
}

func TestLocalStore_StaysInsideRoot(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "exports")
	s, err := NewLocalStore(dir, "/files")
	require.NoError(t, err)

	info, err := s.Save(context.Background(), "../escape.xlsx", []byte("x"), "text/plain")
	require.NoError(t, err)
	assert.Equal(t, "escape.xlsx", info.Path)

	_, err = os.Stat(filepath.Join(root, "escape.xlsx"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(dir, "escape.xlsx"))
	assert.NoError(t, err)
}

func TestR2Store_SaveUsesBucketKey(t *testing.T) {
	var mu sync.Mutex
	var method, path, contentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		method, path, contentType = r.Method, r.URL.Path, r.Header.Get("Content-Type")
		mu.Unlock()
		w.Header().Set("ETag", `"abc"`)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s, err := NewR2Store(context.Background(), R2Options{
		AccessKey: "key",
		SecretKey: "secret",
		Bucket:    "ward-exports",
		PublicURL: "https://pub-test.r2.dev/",
		Endpoint:  srv.URL,
	})
	require.NoError(t, err)

	info, err := s.Save(context.Background(), "exports/ward1/ward1_2025.xlsx", []byte("data"), "application/octet-stream")
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, http.MethodPut, method)
	assert.Equal(t, "/ward-exports/exports/ward1/ward1_2025.xlsx", path)
	assert.Equal(t, "application/octet-stream", contentType)
	assert.Equal(t, "https://pub-test.r2.dev/exports/ward1/ward1_2025.xlsx", info.URL)
	assert.Equal(t, int64(4), info.FileSize)
}
