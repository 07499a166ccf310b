package handlers

import (
	"encoding/json"
	"net/http"

	"movieshows/models"
	"movieshows/services/session"
)

// sessionStore is the slice of the session store the handlers need.
type sessionStore interface {
	Dispatch(action session.Action) session.State
	Snapshot() session.State
}

var _ sessionStore = (*session.Store)(nil)

type StateHandler struct {
	Sessions sessionStore
}

func NewStateHandler(sessions sessionStore) *StateHandler {
	return &StateHandler{Sessions: sessions}
}

type stateResponse struct {
	CurrentVideo  *models.ContentItem        `json:"currentVideo"`
	Queue         []models.ContentItem       `json:"queue"`
	Favorites     []string                   `json:"favorites"`
	Liked         []string                   `json:"liked"`
	WatchHistory  []models.WatchHistoryEntry `json:"watchHistory"`
	Filter        string                     `json:"filter"`
	Search        string                     `json:"search"`
	Sort          string                     `json:"sort"`
	RepeatMode    models.RepeatMode          `json:"repeatMode"`
	ShuffleMode   bool                       `json:"shuffleMode"`
	AutoPlayNext  bool                       `json:"autoPlayNext"`
	CompactQueue  bool                       `json:"compactQueue"`
	TheaterMode   bool                       `json:"theaterMode"`
	PlaybackSpeed float64                    `json:"playbackSpeed"`
	Theme         string                     `json:"theme"`
}

// GetState projects the session snapshot into the client view model.
func (h *StateHandler) GetState(w http.ResponseWriter, r *http.Request) {
	state := h.Sessions.Snapshot()
	resp := stateResponse{
		CurrentVideo:  state.CurrentVideo,
		Queue:         state.Queue,
		Favorites:     state.FavoriteIDs(),
		Liked:         state.LikedIDs(),
		WatchHistory:  state.WatchHistory,
		Filter:        state.CurrentFilter,
		Search:        state.SearchQuery,
		Sort:          state.SortMode,
		RepeatMode:    state.RepeatMode,
		ShuffleMode:   state.ShuffleMode,
		AutoPlayNext:  state.AutoPlayNext,
		CompactQueue:  state.CompactQueue,
		TheaterMode:   state.TheaterMode,
		PlaybackSpeed: state.PlaybackSpeed,
		Theme:         state.Theme,
	}
	if resp.Queue == nil {
		resp.Queue = []models.ContentItem{}
	}
	if resp.WatchHistory == nil {
		resp.WatchHistory = []models.WatchHistoryEntry{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
