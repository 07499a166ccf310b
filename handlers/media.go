package handlers

import (
	"net/http"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gorilla/mux"
	"github.com/spf13/afero"
)

// MediaHandler serves local library files and redirects remote streams.
type MediaHandler struct {
	Catalog contentLookup
	Fs      afero.Fs
	Root    string
}

func NewMediaHandler(cat contentLookup, fsys afero.Fs, root string) *MediaHandler {
	return &MediaHandler{Catalog: cat, Fs: fsys, Root: root}
}

// ServeMedia streams the file behind a catalog item. Remote URLs get a
// redirect; local paths are served with a sniffed Content-Type and full
// range support via http.ServeContent.
func (h *MediaHandler) ServeMedia(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(mux.Vars(r)["id"])
	item, ok := h.Catalog.ByID(id)
	if !ok {
		http.Error(w, "content not found", http.StatusNotFound)
		return
	}
	if item.VideoURL == "" {
		http.Error(w, "content has no stream", http.StatusNotFound)
		return
	}

	if strings.HasPrefix(item.VideoURL, "http://") || strings.HasPrefix(item.VideoURL, "https://") {
		http.Redirect(w, r, item.VideoURL, http.StatusFound)
		return
	}

	// Local path, relative to the media root. path.Clean keeps traversal
	// out of the library directory.
	rel := strings.TrimPrefix(item.VideoURL, "/media/")
	rel = path.Clean("/" + rel)
	full := filepath.Join(h.Root, filepath.FromSlash(rel))

	info, err := h.Fs.Stat(full)
	if err != nil || info.IsDir() {
		http.Error(w, "media file not found", http.StatusNotFound)
		return
	}

	file, err := h.Fs.Open(full)
	if err != nil {
		http.Error(w, "open media file: "+err.Error(), http.StatusInternalServerError)
		return
	}
	defer file.Close()

	kind, err := mimetype.DetectReader(file)
	if err == nil {
		w.Header().Set("Content-Type", kind.String())
	}
	if _, err := file.Seek(0, 0); err != nil {
		http.Error(w, "seek media file: "+err.Error(), http.StatusInternalServerError)
		return
	}

	http.ServeContent(w, r, info.Name(), info.ModTime(), file)
}
