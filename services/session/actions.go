package session

import (
	"math/rand"

	"movieshows/models"
	"movieshows/services/catalog"
	"movieshows/services/queue"
)

// Action is a description of one state transition. Concrete actions are
// plain structs; the reducer below is the only place they take effect.
type Action interface {
	actionName() string
}

// SetCurrentVideo assigns (or clears, with nil) the current video.
type SetCurrentVideo struct{ Item *models.ContentItem }

// EnqueueItem appends an item to the queue; a no-op when the id is queued.
type EnqueueItem struct{ Item models.ContentItem }

// RemoveQueueIndex removes exactly one queue entry.
type RemoveQueueIndex struct{ Index int }

// ReorderQueue moves one queue entry, preserving the order of the rest.
type ReorderQueue struct{ From, To int }

// ShuffleQueue permutes the queue with the supplied source.
type ShuffleQueue struct{ Rand *rand.Rand }

// ClearQueue empties the queue.
type ClearQueue struct{}

// ReplaceQueue swaps the queue and mode flags wholesale (snapshot import).
type ReplaceQueue struct {
	Items []models.ContentItem
	Modes models.PlaybackModes
}

// ConsumeQueueHead pops the first queue entry and makes it current.
// RequeueFinished carries repeat-all semantics: when set, the video that was
// current before the pop is re-appended at the tail.
type ConsumeQueueHead struct{ RequeueFinished bool }

// ToggleFavorite flips membership in the favorites set.
type ToggleFavorite struct{ ID string }

// ToggleLiked flips membership in the liked set.
type ToggleLiked struct{ ID string }

// RecordHistory inserts (or moves) a watch-history entry at the front.
type RecordHistory struct{ Entry models.WatchHistoryEntry }

// SetFilter, SetSearch, and SetSort update the catalog view parameters.
type SetFilter struct{ Filter string }
type SetSearch struct{ Query string }
type SetSort struct{ Mode string }

// SetRepeatMode updates the repeat policy.
type SetRepeatMode struct{ Mode models.RepeatMode }

// SetShuffleMode toggles shuffle; enabling it on a non-empty queue also
// permutes the queue in place.
type SetShuffleMode struct {
	Enabled bool
	Rand    *rand.Rand
}

// Remaining toggles and scalar settings.
type SetAutoPlay struct{ Enabled bool }
type SetCompactQueue struct{ Enabled bool }
type SetTheaterMode struct{ Enabled bool }
type SetPlaybackSpeed struct{ Speed float64 }
type SetTheme struct{ Theme string }

// RestoreSnapshot replaces the state wholesale from persisted storage.
type RestoreSnapshot struct{ State State }

func (SetCurrentVideo) actionName() string  { return "set-current-video" }
func (EnqueueItem) actionName() string      { return "enqueue-item" }
func (RemoveQueueIndex) actionName() string { return "remove-queue-index" }
func (ReorderQueue) actionName() string     { return "reorder-queue" }
func (ShuffleQueue) actionName() string     { return "shuffle-queue" }
func (ClearQueue) actionName() string       { return "clear-queue" }
func (ReplaceQueue) actionName() string     { return "replace-queue" }
func (ConsumeQueueHead) actionName() string { return "consume-queue-head" }
func (ToggleFavorite) actionName() string   { return "toggle-favorite" }
func (ToggleLiked) actionName() string      { return "toggle-liked" }
func (RecordHistory) actionName() string    { return "record-history" }
func (SetFilter) actionName() string        { return "set-filter" }
func (SetSearch) actionName() string        { return "set-search" }
func (SetSort) actionName() string          { return "set-sort" }
func (SetRepeatMode) actionName() string    { return "set-repeat-mode" }
func (SetShuffleMode) actionName() string   { return "set-shuffle-mode" }
func (SetAutoPlay) actionName() string      { return "set-autoplay" }
func (SetCompactQueue) actionName() string  { return "set-compact-queue" }
func (SetTheaterMode) actionName() string   { return "set-theater-mode" }
func (SetPlaybackSpeed) actionName() string { return "set-playback-speed" }
func (SetTheme) actionName() string         { return "set-theme" }
func (RestoreSnapshot) actionName() string  { return "restore-snapshot" }

// reduce is the single pure transition function. The incoming state is
// already a private copy, so in-place edits are safe.
func reduce(s State, action Action) State {
	switch a := action.(type) {
	case SetCurrentVideo:
		if a.Item == nil {
			s.CurrentVideo = nil
		} else {
			video := *a.Item
			s.CurrentVideo = &video
		}

	case EnqueueItem:
		s.Queue = queue.Add(s.Queue, a.Item)

	case RemoveQueueIndex:
		s.Queue = queue.RemoveAt(s.Queue, a.Index)

	case ReorderQueue:
		s.Queue = queue.Reorder(s.Queue, a.From, a.To)

	case ShuffleQueue:
		if a.Rand != nil && len(s.Queue) > 0 {
			s.Queue = queue.Shuffle(s.Queue, a.Rand)
		}

	case ClearQueue:
		s.Queue = nil

	case ReplaceQueue:
		s.Queue = make([]models.ContentItem, len(a.Items))
		copy(s.Queue, a.Items)
		s.RepeatMode = models.ParseRepeatMode(string(a.Modes.RepeatMode))
		s.ShuffleMode = a.Modes.ShuffleMode
		s.AutoPlayNext = a.Modes.AutoPlayNext

	case ConsumeQueueHead:
		if len(s.Queue) == 0 {
			break
		}
		finished := s.CurrentVideo
		head := s.Queue[0]
		s.Queue = s.Queue[1:]
		s.CurrentVideo = &head
		if a.RequeueFinished && finished != nil {
			s.Queue = queue.Add(s.Queue, *finished)
		}

	case ToggleFavorite:
		toggle(s.Favorites, a.ID)

	case ToggleLiked:
		toggle(s.Liked, a.ID)

	case RecordHistory:
		s.WatchHistory = recordHistory(s.WatchHistory, a.Entry)

	case SetFilter:
		s.CurrentFilter = a.Filter
		if s.CurrentFilter == "" {
			s.CurrentFilter = catalog.FilterAll
		}

	case SetSearch:
		s.SearchQuery = a.Query

	case SetSort:
		s.SortMode = a.Mode

	case SetRepeatMode:
		s.RepeatMode = models.ParseRepeatMode(string(a.Mode))

	case SetShuffleMode:
		s.ShuffleMode = a.Enabled
		if a.Enabled && a.Rand != nil && len(s.Queue) > 0 {
			s.Queue = queue.Shuffle(s.Queue, a.Rand)
		}

	case SetAutoPlay:
		s.AutoPlayNext = a.Enabled

	case SetCompactQueue:
		s.CompactQueue = a.Enabled

	case SetTheaterMode:
		s.TheaterMode = a.Enabled

	case SetPlaybackSpeed:
		if a.Speed > 0 {
			s.PlaybackSpeed = a.Speed
		}

	case SetTheme:
		if a.Theme != "" {
			s.Theme = a.Theme
		}

	case RestoreSnapshot:
		s = a.State.clone()
		if s.Favorites == nil {
			s.Favorites = make(map[string]struct{})
		}
		if s.Liked == nil {
			s.Liked = make(map[string]struct{})
		}
		if s.CurrentFilter == "" {
			s.CurrentFilter = catalog.FilterAll
		}
		if s.SortMode == "" {
			s.SortMode = catalog.SortTitleAsc
		}
		if s.PlaybackSpeed <= 0 {
			s.PlaybackSpeed = 1.0
		}
		if s.Theme == "" {
			s.Theme = "dark"
		}
		s.RepeatMode = models.ParseRepeatMode(string(s.RepeatMode))
	}

	return s
}

func toggle(set map[string]struct{}, id string) {
	if id == "" {
		return
	}
	if _, ok := set[id]; ok {
		delete(set, id)
		return
	}
	set[id] = struct{}{}
}

// recordHistory keeps the log most-recent-first, one entry per id, capped.
func recordHistory(history []models.WatchHistoryEntry, entry models.WatchHistoryEntry) []models.WatchHistoryEntry {
	if entry.ID == "" {
		return history
	}

	out := make([]models.WatchHistoryEntry, 0, len(history)+1)
	out = append(out, entry)
	for _, existing := range history {
		if existing.ID == entry.ID {
			continue
		}
		out = append(out, existing)
	}

	if len(out) > models.WatchHistoryLimit {
		out = out[:models.WatchHistoryLimit]
	}
	return out
}
