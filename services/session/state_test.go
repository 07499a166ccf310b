package session

import (
	"math/rand"
	"testing"

	"movieshows/models"
)

func item(id string) models.ContentItem {
	return models.ContentItem{ID: id, Title: "Title " + id, Type: models.MediaTypeMovies}
}

func queueIDs(s State) []string {
	out := make([]string, 0, len(s.Queue))
	for _, it := range s.Queue {
		out = append(out, it.ID)
	}
	return out
}

func expectQueue(t *testing.T, s State, want ...string) {
	t.Helper()
	got := queueIDs(s)
	if len(got) != len(want) {
		t.Fatalf("queue %v, want %v", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("queue %v, want %v", got, want)
		}
	}
}

func TestEnqueueIsIdempotent(t *testing.T) {
	st := NewStore()
	st.Dispatch(EnqueueItem{Item: item("a")})
	st.Dispatch(EnqueueItem{Item: item("b")})
	state := st.Dispatch(EnqueueItem{Item: item("a")})

	expectQueue(t, state, "a", "b")
}

func TestConsumeQueueHead(t *testing.T) {
	st := NewStore()
	current := item("playing")
	st.Dispatch(SetCurrentVideo{Item: &current})
	st.Dispatch(EnqueueItem{Item: item("a")})
	st.Dispatch(EnqueueItem{Item: item("b")})

	state := st.Dispatch(ConsumeQueueHead{})
	if state.CurrentVideo == nil || state.CurrentVideo.ID != "a" {
		t.Fatalf("expected head to become current, got %+v", state.CurrentVideo)
	}
	expectQueue(t, state, "b")
}

func TestConsumeQueueHeadRequeuesFinishedOnRepeatAll(t *testing.T) {
	st := NewStore()
	current := item("finished")
	st.Dispatch(SetCurrentVideo{Item: &current})
	st.Dispatch(EnqueueItem{Item: item("a")})
	st.Dispatch(EnqueueItem{Item: item("b")})

	state := st.Dispatch(ConsumeQueueHead{RequeueFinished: true})
	if state.CurrentVideo.ID != "a" {
		t.Fatalf("expected head to become current, got %s", state.CurrentVideo.ID)
	}
	// The item that just finished loops to the tail, keeping the cycle stable.
	expectQueue(t, state, "b", "finished")
}

func TestShuffleRequiresSourceAndItems(t *testing.T) {
	st := NewStore()
	st.Dispatch(EnqueueItem{Item: item("a")})

	state := st.Dispatch(ShuffleQueue{})
	expectQueue(t, state, "a")

	state = st.Dispatch(ShuffleQueue{Rand: rand.New(rand.NewSource(1))})
	expectQueue(t, state, "a")
}

func TestToggleFavoriteAndLiked(t *testing.T) {
	st := NewStore()

	state := st.Dispatch(ToggleFavorite{ID: "x"})
	if !state.IsFavorite("x") {
		t.Fatalf("expected x favorited")
	}
	state = st.Dispatch(ToggleFavorite{ID: "x"})
	if state.IsFavorite("x") {
		t.Fatalf("expected x unfavorited after second toggle")
	}

	state = st.Dispatch(ToggleLiked{ID: "y"})
	if !state.IsLiked("y") || state.IsFavorite("y") {
		t.Fatalf("liked and favorites sets must stay independent")
	}
}

func TestRecordHistoryDedupesAndCaps(t *testing.T) {
	st := NewStore()
	for i := 0; i < models.WatchHistoryLimit+10; i++ {
		st.Dispatch(RecordHistory{Entry: models.WatchHistoryEntry{
			ID:        string(rune('A' + i%60)),
			WatchedAt: int64(i),
		}})
	}

	state := st.Snapshot()
	if len(state.WatchHistory) > models.WatchHistoryLimit {
		t.Fatalf("history exceeds cap: %d", len(state.WatchHistory))
	}

	st.Dispatch(RecordHistory{Entry: models.WatchHistoryEntry{ID: "special", CompletionPercent: 80}})
	state = st.Dispatch(RecordHistory{Entry: models.WatchHistoryEntry{ID: "special", CompletionPercent: 100}})

	if state.WatchHistory[0].ID != "special" {
		t.Fatalf("re-added entry should move to front, got %q", state.WatchHistory[0].ID)
	}
	count := 0
	for _, entry := range state.WatchHistory {
		if entry.ID == "special" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected one entry per id, got %d", count)
	}
	if state.WatchHistory[0].CompletionPercent != 100 {
		t.Fatalf("re-entry should replace, got %.0f", state.WatchHistory[0].CompletionPercent)
	}
}

func TestSubscribersSeeTransitionSynchronously(t *testing.T) {
	st := NewStore()

	var seen []string
	st.Subscribe(func(next State, action Action) {
		seen = append(seen, action.actionName())
	})

	st.Dispatch(EnqueueItem{Item: item("a")})
	st.Dispatch(SetTheme{Theme: "light"})

	if len(seen) != 2 || seen[0] != "enqueue-item" || seen[1] != "set-theme" {
		t.Fatalf("unexpected notifications %v", seen)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	st := NewStore()
	st.Dispatch(EnqueueItem{Item: item("a")})

	snap := st.Snapshot()
	snap.Queue[0].ID = "mutated"
	snap.Favorites["sneaky"] = struct{}{}

	fresh := st.Snapshot()
	if fresh.Queue[0].ID != "a" {
		t.Fatalf("snapshot mutation leaked into store")
	}
	if fresh.IsFavorite("sneaky") {
		t.Fatalf("snapshot map mutation leaked into store")
	}
}

func TestRestoreSnapshotFillsDefaults(t *testing.T) {
	st := NewStore()
	state := st.Dispatch(RestoreSnapshot{State: State{RepeatMode: "bogus"}})

	if state.RepeatMode != models.RepeatOff {
		t.Fatalf("invalid repeat mode should normalize to off, got %q", state.RepeatMode)
	}
	if state.PlaybackSpeed != 1.0 || state.Theme == "" {
		t.Fatalf("defaults not filled: %+v", state)
	}
	if state.Favorites == nil || state.Liked == nil {
		t.Fatalf("sets not initialized")
	}
}
