// Package session owns the application state. Every mutation flows through a
// pure reducer applied by the Store, which then notifies subscribers (the
// persistence layer and the share-link synchronizer) synchronously in the
// same turn. Nothing outside this package mutates State directly.
package session

import (
	"sort"
	"sync"

	"movieshows/models"
	"movieshows/services/catalog"
)

// State is the single application-state record. It is treated as a value:
// the reducer works on deep copies and the Store hands out copies only.
type State struct {
	CurrentVideo *models.ContentItem
	Queue        []models.ContentItem
	Favorites    map[string]struct{}
	Liked        map[string]struct{}
	WatchHistory []models.WatchHistoryEntry

	CurrentFilter string
	SearchQuery   string
	SortMode      string

	RepeatMode    models.RepeatMode
	ShuffleMode   bool
	AutoPlayNext  bool
	CompactQueue  bool
	TheaterMode   bool
	PlaybackSpeed float64
	Theme         string
}

// NewState returns the defaults used before any persisted state is restored.
func NewState() State {
	return State{
		Favorites:     make(map[string]struct{}),
		Liked:         make(map[string]struct{}),
		CurrentFilter: catalog.FilterAll,
		SortMode:      catalog.SortTitleAsc,
		RepeatMode:    models.RepeatOff,
		AutoPlayNext:  true,
		PlaybackSpeed: 1.0,
		Theme:         "dark",
	}
}

// Modes bundles the three playback-advance toggles.
func (s State) Modes() models.PlaybackModes {
	return models.PlaybackModes{
		RepeatMode:   s.RepeatMode,
		ShuffleMode:  s.ShuffleMode,
		AutoPlayNext: s.AutoPlayNext,
	}
}

// FavoriteIDs returns the favorites set as a sorted slice.
func (s State) FavoriteIDs() []string {
	return sortedIDs(s.Favorites)
}

// LikedIDs returns the liked set as a sorted slice.
func (s State) LikedIDs() []string {
	return sortedIDs(s.Liked)
}

// IsFavorite reports membership in the favorites set.
func (s State) IsFavorite(id string) bool {
	_, ok := s.Favorites[id]
	return ok
}

// IsLiked reports membership in the liked set.
func (s State) IsLiked(id string) bool {
	_, ok := s.Liked[id]
	return ok
}

func sortedIDs(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (s State) clone() State {
	out := s

	if s.CurrentVideo != nil {
		video := *s.CurrentVideo
		out.CurrentVideo = &video
	}

	out.Queue = make([]models.ContentItem, len(s.Queue))
	copy(out.Queue, s.Queue)

	out.Favorites = make(map[string]struct{}, len(s.Favorites))
	for id := range s.Favorites {
		out.Favorites[id] = struct{}{}
	}

	out.Liked = make(map[string]struct{}, len(s.Liked))
	for id := range s.Liked {
		out.Liked[id] = struct{}{}
	}

	out.WatchHistory = make([]models.WatchHistoryEntry, len(s.WatchHistory))
	copy(out.WatchHistory, s.WatchHistory)

	return out
}

// Subscriber observes applied transitions. Subscribers run synchronously
// inside Dispatch, after the state has been swapped.
type Subscriber func(next State, action Action)

// Store serializes dispatches and fans transitions out to subscribers.
type Store struct {
	mu    sync.Mutex
	state State
	subs  []Subscriber
}

// NewStore returns a store seeded with default state.
func NewStore() *Store {
	return &Store{state: NewState()}
}

// Subscribe registers an observer. Call during wiring, before traffic.
func (st *Store) Subscribe(fn Subscriber) {
	st.mu.Lock()
	st.subs = append(st.subs, fn)
	st.mu.Unlock()
}

// Dispatch applies the action through the reducer, swaps the state, and
// notifies subscribers with a copy of the result.
func (st *Store) Dispatch(action Action) State {
	st.mu.Lock()
	next := reduce(st.state.clone(), action)
	st.state = next
	snapshot := next.clone()
	subs := st.subs
	st.mu.Unlock()

	for _, fn := range subs {
		fn(snapshot, action)
	}
	return snapshot
}

// Snapshot returns a deep copy of the current state.
func (st *Store) Snapshot() State {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.state.clone()
}
