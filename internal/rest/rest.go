package rest

import (
	"net/http"
	"os"
	"path/filepath"
)

// ErrorResponse is the JSON error envelope of all API endpoints.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
	// NeedsLogin tells the frontend to show the login screen instead of an
	// error state.
	NeedsLogin bool `json:"needsLogin,omitempty"`
}

// FrontendHandler serves the static panel frontend, falling back to the
// index file for unknown paths.
type FrontendHandler struct {
	dir   string
	index string
	files http.Handler
}

func NewFrontendHandler(dir string, index string) *FrontendHandler {
	return &FrontendHandler{
		dir:   dir,
		index: index,
		files: http.FileServer(http.Dir(dir)),
	}
}

func (h *FrontendHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := filepath.Join(h.dir, filepath.Clean(r.URL.Path))
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		http.ServeFile(w, r, filepath.Join(h.dir, h.index))
		return
	}
	h.files.ServeHTTP(w, r)
}
