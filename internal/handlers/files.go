package handlers

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"hospital-portal/internal/storage"
)

// FileHandler serves stored exports.
type FileHandler struct {
	store storage.Store
	dir   string
}

// NewFileHandler serves files from store; dir is the local root when the
// store writes to disk and is ignored otherwise.
func NewFileHandler(store storage.Store, dir string) *FileHandler {
	return &FileHandler{store: store, dir: dir}
}

// ServeFile redirects to the public URL for bucket storage and serves from
// disk otherwise. Mounted at /files/*.
func (h *FileHandler) ServeFile(w http.ResponseWriter, r *http.Request) {
	filePath := chi.URLParam(r, "*")
	if filePath == "" {
		JSONError(w, http.StatusBadRequest, "File path required.")
		return
	}

	if url := h.store.URL(filePath); strings.HasPrefix(url, "https://") {
		http.Redirect(w, r, url, http.StatusTemporaryRedirect)
		return
	}

	clean := filepath.Clean("/" + filePath)
	http.ServeFile(w, r, filepath.Join(h.dir, clean))
}
