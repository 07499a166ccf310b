package handlers

import (
	"encoding/json"
	"errors"
	"math/rand"
	"net/http"
	"strconv"
	"sync"
	"time"

	"movieshows/models"
	"movieshows/services/catalog"
	"movieshows/services/queue"
	"movieshows/services/session"

	"github.com/gorilla/mux"
)

// catalogResolver is the slice of the catalog queue operations need:
// lookups for adds, plus the title+year fallback used by imports.
type catalogResolver interface {
	ByID(id string) (models.ContentItem, bool)
	ByTitleYear(title string, year int) (models.ContentItem, bool)
}

var _ catalogResolver = (*catalog.Service)(nil)

type QueueHandler struct {
	Catalog  catalogResolver
	Sessions sessionStore

	randMu sync.Mutex
	rand   *rand.Rand
}

func NewQueueHandler(cat catalogResolver, sessions sessionStore) *QueueHandler {
	return &QueueHandler{
		Catalog:  cat,
		Sessions: sessions,
		rand:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (h *QueueHandler) respondQueue(w http.ResponseWriter, state session.State) {
	items := state.Queue
	if items == nil {
		items = []models.ContentItem{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"queue": items})
}

// AddToQueue enqueues a catalog item by id. Re-adding an already queued id
// is a no-op, not an error.
func (h *QueueHandler) AddToQueue(w http.ResponseWriter, r *http.Request) {
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

	state := h.Sessions.Dispatch(session.EnqueueItem{Item: item})
	h.respondQueue(w, state)
}

func (h *QueueHandler) RemoveFromQueue(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	index, err := strconv.Atoi(vars["index"])
	if err != nil || index < 0 {
		http.Error(w, "queue index must be a non-negative integer", http.StatusBadRequest)
		return
	}
	if index >= len(h.Sessions.Snapshot().Queue) {
		http.Error(w, "queue index out of range", http.StatusNotFound)
		return
	}

	state := h.Sessions.Dispatch(session.RemoveQueueIndex{Index: index})
	h.respondQueue(w, state)
}

func (h *QueueHandler) ReorderQueue(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		From int `json:"from"`
		To   int `json:"to"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid reorder payload", http.StatusBadRequest)
		return
	}

	length := len(h.Sessions.Snapshot().Queue)
	if payload.From < 0 || payload.From >= length || payload.To < 0 || payload.To >= length {
		http.Error(w, "reorder indices out of range", http.StatusBadRequest)
		return
	}

	state := h.Sessions.Dispatch(session.ReorderQueue{From: payload.From, To: payload.To})
	h.respondQueue(w, state)
}

func (h *QueueHandler) ShuffleQueue(w http.ResponseWriter, r *http.Request) {
	h.randMu.Lock()
	state := h.Sessions.Dispatch(session.ShuffleQueue{Rand: h.rand})
	h.randMu.Unlock()
	h.respondQueue(w, state)
}

func (h *QueueHandler) ClearQueue(w http.ResponseWriter, r *http.Request) {
	state := h.Sessions.Dispatch(session.ClearQueue{})
	h.respondQueue(w, state)
}

// ExportQueue emits a portable snapshot of the queue and playback modes.
func (h *QueueHandler) ExportQueue(w http.ResponseWriter, r *http.Request) {
	state := h.Sessions.Snapshot()
	doc := queue.ExportSnapshot(state.Queue, state.Modes(), time.Now())

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="movieshows-queue.json"`)
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.Encode(doc)
}

// ImportQueue replaces the queue from a previously exported snapshot.
// Entries are resolved against the current catalog; unresolvable entries
// are skipped.
func (h *QueueHandler) ImportQueue(w http.ResponseWriter, r *http.Request) {
	var doc models.QueueExport
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		http.Error(w, "invalid queue file", http.StatusBadRequest)
		return
	}

	items, modes, err := queue.ImportSnapshot(doc, h.Catalog)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, queue.ErrImportEmpty) {
			status = http.StatusUnprocessableEntity
		}
		http.Error(w, err.Error(), status)
		return
	}

	state := h.Sessions.Dispatch(session.ReplaceQueue{Items: items, Modes: modes})
	h.respondQueue(w, state)
}
