package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"movieshows/models"
	"movieshows/services/catalog"
	"movieshows/services/session"

	"github.com/gorilla/mux"
)

// catalogService is the slice of the catalog the handler needs.
type catalogService interface {
	SetContent(items []models.ContentItem)
	Len() int
	ByID(id string) (models.ContentItem, bool)
	SetFilter(filter string)
	SetSearch(query string)
	SetSort(mode string)
	ViewParams() (filter, search, sortMode string)
	View() []models.ContentItem
}

var _ catalogService = (*catalog.Service)(nil)

type CatalogHandler struct {
	Catalog  catalogService
	Sessions sessionStore
	Reload   func(r *http.Request) ([]models.ContentItem, error)
}

func NewCatalogHandler(cat catalogService, sessions sessionStore, reload func(r *http.Request) ([]models.ContentItem, error)) *CatalogHandler {
	return &CatalogHandler{Catalog: cat, Sessions: sessions, Reload: reload}
}

type catalogResponse struct {
	Items  []models.ContentItem `json:"items"`
	Total  int                  `json:"total"`
	Empty  bool                 `json:"empty"`
	Filter string               `json:"filter"`
	Search string               `json:"search"`
	Sort   string               `json:"sort"`
}

// GetCatalog returns the current filtered view. Optional query parameters
// update the view settings first, so a single request can both change and
// read the view.
func (h *CatalogHandler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	if query.Has("filter") {
		h.Sessions.Dispatch(session.SetFilter{Filter: query.Get("filter")})
	}
	if query.Has("search") {
		h.Sessions.Dispatch(session.SetSearch{Query: query.Get("search")})
	}
	if query.Has("sort") {
		h.Sessions.Dispatch(session.SetSort{Mode: query.Get("sort")})
	}

	// The session state is authoritative for view parameters; mirror it onto
	// the catalog before computing the view so settings changes made through
	// other endpoints show up here too.
	state := h.Sessions.Snapshot()
	h.Catalog.SetFilter(state.CurrentFilter)
	h.Catalog.SetSearch(state.SearchQuery)
	h.Catalog.SetSort(state.SortMode)

	items := h.Catalog.View()
	filter, search, sortMode := h.Catalog.ViewParams()
	resp := catalogResponse{
		Items:  items,
		Total:  h.Catalog.Len(),
		Empty:  h.Catalog.Len() == 0,
		Filter: filter,
		Search: search,
		Sort:   sortMode,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (h *CatalogHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := strings.TrimSpace(vars["id"])
	if id == "" {
		http.Error(w, "content id is required", http.StatusBadRequest)
		return
	}

	item, ok := h.Catalog.ByID(id)
	if !ok {
		http.Error(w, "content not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(item)
}

// ReloadCatalog re-runs the source loader and replaces the catalog wholesale.
func (h *CatalogHandler) ReloadCatalog(w http.ResponseWriter, r *http.Request) {
	if h.Reload == nil {
		http.Error(w, "no source loader configured", http.StatusServiceUnavailable)
		return
	}

	items, err := h.Reload(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	h.Catalog.SetContent(items)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"loaded": len(items), "empty": len(items) == 0})
}
