package handlers

import (
	"errors"
	"io/fs"
	"net/http"
	"path"
)

const indexFile = "index.html"

// StaticHandler serves the voting page. Unknown paths fall back to
// index.html so client-side routes load the app.
type StaticHandler struct {
	root  http.FileSystem
	files http.Handler
}

// NewStaticHandler serves files from fsys
func NewStaticHandler(fsys fs.FS) *StaticHandler {
	root := http.FS(fsys)
	return &StaticHandler{root: root, files: http.FileServer(root)}
}

func (h *StaticHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		respondJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	name := path.Clean("/" + r.URL.Path)
	if name != "/" && h.isFile(name) {
		h.files.ServeHTTP(w, r)
		return
	}

	h.serveIndex(w, r)
}

func (h *StaticHandler) isFile(name string) bool {
	f, err := h.root.Open(name)
	if err != nil {
		return false
	}
	defer func() { _ = f.Close() }()
	info, err := f.Stat()
	return err == nil && info.Mode().IsRegular()
}

func (h *StaticHandler) serveIndex(w http.ResponseWriter, r *http.Request) {
	f, err := h.root.Open("/" + indexFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			respondJSONError(w, http.StatusNotFound, "Not found")
			return
		}
		respondJSONError(w, http.StatusInternalServerError, "Failed to open index")
		return
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Failed to open index")
		return
	}
	http.ServeContent(w, r, indexFile, info.ModTime(), f)
}
