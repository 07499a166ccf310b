package handlers

import (
	"encoding/json"
	"net/http"

	"movieshows/services/sharelink"
)

// ShareHandler encodes the current session into a shareable query string
// and restores sessions from one.
type ShareHandler struct {
	Catalog    contentLookup
	Sessions   sessionStore
	Controller playbackController
	// LoadSource fetches and installs the catalog from an override URL
	// carried by a share link. Optional.
	LoadSource func(r *http.Request, url string) error
}

func NewShareHandler(cat contentLookup, sessions sessionStore, controller playbackController) *ShareHandler {
	return &ShareHandler{Catalog: cat, Sessions: sessions, Controller: controller}
}

// GetShare returns the query string describing the current session.
func (h *ShareHandler) GetShare(w http.ResponseWriter, r *http.Request) {
	query := sharelink.Encode(h.Sessions.Snapshot())
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"query": query})
}

// Resume applies a share link: restores queue membership and playback
// flags, then starts the linked video when it resolves in the catalog.
func (h *ShareHandler) Resume(w http.ResponseWriter, r *http.Request) {
	link, err := sharelink.Decode(r.URL.RawQuery)
	if err != nil {
		http.Error(w, "invalid share link", http.StatusBadRequest)
		return
	}

	if link.SourceURL != "" && h.LoadSource != nil {
		if err := h.LoadSource(r, link.SourceURL); err != nil {
			http.Error(w, "load shared source: "+err.Error(), http.StatusBadGateway)
			return
		}
	}

	resp := map[string]any{"resumed": false}
	if item, ok := sharelink.Apply(link, h.Catalog, h.Sessions); ok {
		intent := h.Controller.Play(item)
		resp["resumed"] = true
		resp["intent"] = intent
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
