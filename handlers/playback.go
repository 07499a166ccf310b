package handlers

import (
	"encoding/json"
	"net/http"

	"movieshows/models"
	"movieshows/services/catalog"
	"movieshows/services/playback"
)

// contentLookup resolves catalog ids to items.
type contentLookup interface {
	ByID(id string) (models.ContentItem, bool)
}

var _ contentLookup = (*catalog.Service)(nil)

// playbackController is the slice of the playback machine the handler
// drives.
type playbackController interface {
	Play(item models.ContentItem) playback.Intent
	ReportStarted(sessionID string)
	ReportPaused(sessionID string)
	ReportResumed(sessionID string)
	ReportProgress(sessionID string, position, duration float64)
	ReportEnded(sessionID string)
	ReportError(sessionID string, code int)
	Retry() (playback.Intent, bool)
	Skip() (playback.Intent, bool)
	Next() (playback.Intent, bool)
	Status() playback.Status
}

var _ playbackController = (*playback.Controller)(nil)

type PlaybackHandler struct {
	Catalog    contentLookup
	Controller playbackController
}

func NewPlaybackHandler(cat contentLookup, controller playbackController) *PlaybackHandler {
	return &PlaybackHandler{Catalog: cat, Controller: controller}
}

// Play starts playback of a catalog item and returns the load intent
// (stream URL, session id, resume offset).
func (h *PlaybackHandler) Play(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.ID == "" {
		http.Error(w, "content id is required", http.StatusBadRequest)
		return
	}

	item, ok := h.Catalog.ByID(payload.ID)
	if !ok {
		http.Error(w, "content not found", http.StatusNotFound)
		return
	}

	intent := h.Controller.Play(item)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(intent)
}

type playbackEvent struct {
	SessionID string  `json:"sessionId"`
	Event     string  `json:"event"`
	Position  float64 `json:"position"`
	Duration  float64 `json:"duration"`
	Code      int     `json:"code"`
}

// Events receives media element lifecycle reports from the client and
// drives the playback state machine.
func (h *PlaybackHandler) Events(w http.ResponseWriter, r *http.Request) {
	var event playbackEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		http.Error(w, "invalid event payload", http.StatusBadRequest)
		return
	}
	if event.SessionID == "" {
		http.Error(w, "session id is required", http.StatusBadRequest)
		return
	}

	switch event.Event {
	case "started":
		h.Controller.ReportStarted(event.SessionID)
	case "paused":
		h.Controller.ReportPaused(event.SessionID)
	case "resumed":
		h.Controller.ReportResumed(event.SessionID)
	case "progress":
		h.Controller.ReportProgress(event.SessionID, event.Position, event.Duration)
	case "ended":
		h.Controller.ReportEnded(event.SessionID)
	case "error":
		h.Controller.ReportError(event.SessionID, event.Code)
	default:
		http.Error(w, "unknown event "+event.Event, http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.Controller.Status())
}

func (h *PlaybackHandler) respondAdvance(w http.ResponseWriter, intent playback.Intent, ok bool) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"advanced": ok, "intent": intent})
}

// Retry reloads the current video after a playback error.
func (h *PlaybackHandler) Retry(w http.ResponseWriter, r *http.Request) {
	intent, ok := h.Controller.Retry()
	if !ok {
		http.Error(w, "nothing to retry", http.StatusConflict)
		return
	}
	h.respondAdvance(w, intent, ok)
}

// Skip abandons a failed video and advances to the next queue entry.
func (h *PlaybackHandler) Skip(w http.ResponseWriter, r *http.Request) {
	intent, ok := h.Controller.Skip()
	h.respondAdvance(w, intent, ok)
}

// Next is the explicit user-triggered advance.
func (h *PlaybackHandler) Next(w http.ResponseWriter, r *http.Request) {
	intent, ok := h.Controller.Next()
	h.respondAdvance(w, intent, ok)
}

func (h *PlaybackHandler) Status(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.Controller.Status())
}
