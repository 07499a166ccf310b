package handlers

import (
	"encoding/json"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"movieshows/models"
	"movieshows/services/session"
)

type SettingsHandler struct {
	Sessions sessionStore

	randMu sync.Mutex
	rand   *rand.Rand
}

func NewSettingsHandler(sessions sessionStore) *SettingsHandler {
	return &SettingsHandler{
		Sessions: sessions,
		rand:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// settingsPatch is a partial update; only present fields are applied.
type settingsPatch struct {
	RepeatMode    *string  `json:"repeatMode"`
	ShuffleMode   *bool    `json:"shuffleMode"`
	AutoPlayNext  *bool    `json:"autoPlayNext"`
	CompactQueue  *bool    `json:"compactQueue"`
	TheaterMode   *bool    `json:"theaterMode"`
	Filter        *string  `json:"filter"`
	Search        *string  `json:"search"`
	Sort          *string  `json:"sort"`
	Theme         *string  `json:"theme"`
	PlaybackSpeed *float64 `json:"playbackSpeed"`
}

// UpdateSettings applies a partial settings update. Each applied field is a
// separate action, so persistence sees every change individually.
func (h *SettingsHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var patch settingsPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, "invalid settings payload", http.StatusBadRequest)
		return
	}

	if patch.RepeatMode != nil {
		h.Sessions.Dispatch(session.SetRepeatMode{Mode: models.ParseRepeatMode(*patch.RepeatMode)})
	}
	if patch.ShuffleMode != nil {
		h.randMu.Lock()
		h.Sessions.Dispatch(session.SetShuffleMode{Enabled: *patch.ShuffleMode, Rand: h.rand})
		h.randMu.Unlock()
	}
	if patch.AutoPlayNext != nil {
		h.Sessions.Dispatch(session.SetAutoPlay{Enabled: *patch.AutoPlayNext})
	}
	if patch.CompactQueue != nil {
		h.Sessions.Dispatch(session.SetCompactQueue{Enabled: *patch.CompactQueue})
	}
	if patch.TheaterMode != nil {
		h.Sessions.Dispatch(session.SetTheaterMode{Enabled: *patch.TheaterMode})
	}
	if patch.Filter != nil {
		h.Sessions.Dispatch(session.SetFilter{Filter: *patch.Filter})
	}
	if patch.Search != nil {
		h.Sessions.Dispatch(session.SetSearch{Query: *patch.Search})
	}
	if patch.Sort != nil {
		h.Sessions.Dispatch(session.SetSort{Mode: *patch.Sort})
	}
	if patch.Theme != nil {
		h.Sessions.Dispatch(session.SetTheme{Theme: *patch.Theme})
	}
	if patch.PlaybackSpeed != nil {
		h.Sessions.Dispatch(session.SetPlaybackSpeed{Speed: *patch.PlaybackSpeed})
	}

	state := h.Sessions.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"repeatMode":    state.RepeatMode,
		"shuffleMode":   state.ShuffleMode,
		"autoPlayNext":  state.AutoPlayNext,
		"compactQueue":  state.CompactQueue,
		"theaterMode":   state.TheaterMode,
		"filter":        state.CurrentFilter,
		"search":        state.SearchQuery,
		"sort":          state.SortMode,
		"theme":         state.Theme,
		"playbackSpeed": state.PlaybackSpeed,
	})
}
