package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"movieshows/models"
	"movieshows/services/session"

	"github.com/gorilla/mux"
)

// LibraryHandler covers the per-user collections: favorites, liked videos
// and the watch history.
type LibraryHandler struct {
	Sessions sessionStore
}

func NewLibraryHandler(sessions sessionStore) *LibraryHandler {
	return &LibraryHandler{Sessions: sessions}
}

// ToggleFavorite flips membership; the response carries the new value.
func (h *LibraryHandler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(mux.Vars(r)["id"])
	if id == "" {
		http.Error(w, "content id is required", http.StatusBadRequest)
		return
	}

	state := h.Sessions.Dispatch(session.ToggleFavorite{ID: id})
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"id": id, "favorite": state.IsFavorite(id)})
}

func (h *LibraryHandler) ToggleLiked(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(mux.Vars(r)["id"])
	if id == "" {
		http.Error(w, "content id is required", http.StatusBadRequest)
		return
	}

	state := h.Sessions.Dispatch(session.ToggleLiked{ID: id})
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"id": id, "liked": state.IsLiked(id)})
}

// History lists watched videos, most recent first.
func (h *LibraryHandler) History(w http.ResponseWriter, r *http.Request) {
	entries := h.Sessions.Snapshot().WatchHistory
	if entries == nil {
		entries = []models.WatchHistoryEntry{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(entries)
}
