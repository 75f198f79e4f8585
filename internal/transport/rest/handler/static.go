package handler

import (
	"net/http"
	"os"
	"path/filepath"
)

// StaticHandler serves the public questionnaire page
type StaticHandler struct {
	dir string
}

// NewStaticHandler creates a handler serving files from dir
func NewStaticHandler(dir string) *StaticHandler {
	return &StaticHandler{dir: dir}
}

// Index handles GET /
func (h *StaticHandler) Index(w http.ResponseWriter, r *http.Request) {
	path := filepath.Join(h.dir, "index.html")
	if _, err := os.Stat(path); err != nil {
		writeText(w, http.StatusNotFound, "Questionnaire page not found.")
		return
	}
	http.ServeFile(w, r, path)
}

// Health handles GET /health
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
