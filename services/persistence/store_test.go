package persistence

import (
	"path/filepath"
	"testing"

	"movieshows/models"
	"movieshows/services/session"

	"github.com/spf13/afero"
)

func newTestStore(t *testing.T) (*Store, afero.Fs) {
	t.Helper()
	fsys := afero.NewMemMapFs()
	store, err := NewStore(fsys, "storage")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return store, fsys
}

func TestSaveLoadRoundTrips(t *testing.T) {
	store, _ := newTestStore(t)

	if err := store.SaveFavorites([]string{"a", "b"}); err != nil {
		t.Fatalf("save favorites: %v", err)
	}
	if got := store.LoadFavorites(); len(got) != 2 || got[0] != "a" {
		t.Fatalf("unexpected favorites %v", got)
	}

	queue := []models.ContentItem{{ID: "q1", Title: "Q1"}, {ID: "q2", Title: "Q2"}}
	if err := store.SaveQueue(queue); err != nil {
		t.Fatalf("save queue: %v", err)
	}
	if got := store.LoadQueue(); len(got) != 2 || got[1].ID != "q2" {
		t.Fatalf("unexpected queue %v", got)
	}

	history := []models.WatchHistoryEntry{{ID: "h1", CompletionPercent: 100, WatchedAt: 5}}
	if err := store.SaveHistory(history); err != nil {
		t.Fatalf("save history: %v", err)
	}
	if got := store.LoadHistory(); len(got) != 1 || got[0].ID != "h1" {
		t.Fatalf("unexpected history %v", got)
	}
}

func TestLoadMissingCollectionsAreEmpty(t *testing.T) {
	store, _ := newTestStore(t)

	if got := store.LoadFavorites(); len(got) != 0 {
		t.Fatalf("expected empty favorites, got %v", got)
	}
	if got := store.LoadQueue(); len(got) != 0 {
		t.Fatalf("expected empty queue, got %v", got)
	}
	if _, ok := store.LoadSettings(); ok {
		t.Fatalf("expected no settings document")
	}
}

func TestCorruptDocumentOnlyResetsItself(t *testing.T) {
	store, fsys := newTestStore(t)

	if err := store.SaveLiked([]string{"keep"}); err != nil {
		t.Fatalf("save liked: %v", err)
	}
	if err := afero.WriteFile(fsys, filepath.Join("storage", "favorites.json"), []byte("{nope"), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}

	if got := store.LoadFavorites(); len(got) != 0 {
		t.Fatalf("corrupt favorites should reset to empty, got %v", got)
	}
	if got := store.LoadLiked(); len(got) != 1 || got[0] != "keep" {
		t.Fatalf("corruption leaked across collections: %v", got)
	}
}

func TestProgressRecordsPerVideo(t *testing.T) {
	store, _ := newTestStore(t)

	record := models.ProgressRecord{VideoID: "tt001/weird id", CurrentTime: 120, Duration: 3600, Timestamp: 99}
	if err := store.SaveProgress(record); err != nil {
		t.Fatalf("save progress: %v", err)
	}

	got, ok := store.LoadProgress("tt001/weird id")
	if !ok || got.CurrentTime != 120 {
		t.Fatalf("unexpected progress %+v ok=%t", got, ok)
	}

	if _, ok := store.LoadProgress("other"); ok {
		t.Fatalf("unexpected progress for unknown video")
	}

	store.ClearProgress("tt001/weird id")
	if _, ok := store.LoadProgress("tt001/weird id"); ok {
		t.Fatalf("progress should be gone after clear")
	}
}

func TestLoadStateAssemblesSnapshot(t *testing.T) {
	store, _ := newTestStore(t)

	store.SaveFavorites([]string{"f1"})
	store.SaveLiked([]string{"l1"})
	store.SaveQueue([]models.ContentItem{{ID: "q1", Title: "Q1"}})
	store.SaveHistory([]models.WatchHistoryEntry{{ID: "h1"}})
	store.SaveSettings(SettingsDoc{
		Theme:         "light",
		PlaybackSpeed: 1.5,
		RepeatMode:    models.RepeatAll,
		ShuffleMode:   true,
		AutoPlayNext:  true,
		Filter:        "tv",
		SortMode:      "year-desc",
	})

	state := store.LoadState()
	if !state.IsFavorite("f1") || !state.IsLiked("l1") {
		t.Fatalf("sets not restored: %+v", state)
	}
	if len(state.Queue) != 1 || state.Queue[0].ID != "q1" {
		t.Fatalf("queue not restored: %v", state.Queue)
	}
	if state.RepeatMode != models.RepeatAll || !state.ShuffleMode || !state.AutoPlayNext {
		t.Fatalf("modes not restored: %+v", state.Modes())
	}
	if state.Theme != "light" || state.PlaybackSpeed != 1.5 {
		t.Fatalf("scalar settings not restored")
	}
	if state.CurrentFilter != "tv" || state.SortMode != "year-desc" {
		t.Fatalf("view settings not restored")
	}
}

func TestObserverPersistsAffectedCollections(t *testing.T) {
	store, _ := newTestStore(t)
	sessions := session.NewStore()
	sessions.Subscribe(store.Observer())

	sessions.Dispatch(session.EnqueueItem{Item: models.ContentItem{ID: "a", Title: "A"}})
	sessions.Dispatch(session.ToggleFavorite{ID: "a"})
	sessions.Dispatch(session.SetRepeatMode{Mode: models.RepeatOne})

	if got := store.LoadQueue(); len(got) != 1 {
		t.Fatalf("queue not persisted by observer: %v", got)
	}
	if got := store.LoadFavorites(); len(got) != 1 || got[0] != "a" {
		t.Fatalf("favorites not persisted by observer: %v", got)
	}
	doc, ok := store.LoadSettings()
	if !ok || doc.RepeatMode != models.RepeatOne {
		t.Fatalf("settings not persisted by observer: %+v ok=%t", doc, ok)
	}
}
