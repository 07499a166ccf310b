package queue

import (
	"errors"
	"math/rand"
	"sort"
	"testing"
	"time"

	"movieshows/models"
)

func item(id string) models.ContentItem {
	return models.ContentItem{ID: id, Title: "Title " + id, Type: models.MediaTypeMovies}
}

func ids(items []models.ContentItem) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestAddIsIdempotentByID(t *testing.T) {
	q := Add(nil, item("a"))
	q = Add(q, item("b"))
	q = Add(q, item("a"))

	if !equalIDs(ids(q), []string{"a", "b"}) {
		t.Fatalf("unexpected queue %v", ids(q))
	}
}

func TestRemoveAtShiftsSubsequent(t *testing.T) {
	q := []models.ContentItem{item("a"), item("b"), item("c")}
	q = RemoveAt(q, 1)
	if !equalIDs(ids(q), []string{"a", "c"}) {
		t.Fatalf("unexpected queue %v", ids(q))
	}

	if got := RemoveAt(q, 9); !equalIDs(ids(got), []string{"a", "c"}) {
		t.Fatalf("out-of-range remove mutated queue: %v", ids(got))
	}
}

func TestReorderPreservesOthers(t *testing.T) {
	q := []models.ContentItem{item("a"), item("b"), item("c"), item("d")}

	moved := Reorder(q, 0, 2)
	if !equalIDs(ids(moved), []string{"b", "c", "a", "d"}) {
		t.Fatalf("unexpected order %v", ids(moved))
	}

	moved = Reorder(q, 3, 0)
	if !equalIDs(ids(moved), []string{"d", "a", "b", "c"}) {
		t.Fatalf("unexpected order %v", ids(moved))
	}

	if got := Reorder(q, 1, 9); !equalIDs(ids(got), ids(q)) {
		t.Fatalf("invalid reorder mutated queue: %v", ids(got))
	}
}

func TestShuffleIsAPermutation(t *testing.T) {
	q := []models.ContentItem{item("a"), item("b"), item("c"), item("d"), item("e")}
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 25; i++ {
		shuffled := Shuffle(q, rng)
		if len(shuffled) != len(q) {
			t.Fatalf("shuffle changed length: %d", len(shuffled))
		}
		before := ids(q)
		after := ids(shuffled)
		sort.Strings(before)
		sort.Strings(after)
		if !equalIDs(before, after) {
			t.Fatalf("shuffle is not a permutation: %v", after)
		}
	}
}

type mapResolver map[string]models.ContentItem

func (m mapResolver) ByID(id string) (models.ContentItem, bool) {
	it, ok := m[id]
	return it, ok
}

func (m mapResolver) ByTitleYear(title string, year int) (models.ContentItem, bool) {
	for _, it := range m {
		if it.Title == title && it.Year == year {
			return it, true
		}
	}
	return models.ContentItem{}, false
}

func TestExportImportRoundTrip(t *testing.T) {
	q := []models.ContentItem{item("a"), item("b"), item("c")}
	modes := models.PlaybackModes{RepeatMode: models.RepeatAll, ShuffleMode: true, AutoPlayNext: true}

	doc := ExportSnapshot(q, modes, time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
	if doc.Version != models.QueueExportVersion {
		t.Fatalf("unexpected version %q", doc.Version)
	}

	catalog := mapResolver{}
	for _, it := range q {
		catalog[it.ID] = it
	}

	restored, restoredModes, err := ImportSnapshot(doc, catalog)
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if !equalIDs(ids(restored), []string{"a", "b", "c"}) {
		t.Fatalf("round trip lost order: %v", ids(restored))
	}
	if restoredModes != modes {
		t.Fatalf("round trip lost modes: %+v", restoredModes)
	}
}

func TestImportFallsBackToTitleYear(t *testing.T) {
	doc := models.QueueExport{
		Version: models.QueueExportVersion,
		Queue: []models.QueueExportEntry{
			{ID: "stale-id", Title: "Title b", Year: 1999},
		},
		Settings: models.PlaybackModes{RepeatMode: models.RepeatOff},
	}

	target := models.ContentItem{ID: "b", Title: "Title b", Year: 1999}
	restored, _, err := ImportSnapshot(doc, mapResolver{"b": target})
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if len(restored) != 1 || restored[0].ID != "b" {
		t.Fatalf("title/year fallback failed: %v", ids(restored))
	}
}

func TestImportSkipsUnresolvedEntries(t *testing.T) {
	doc := models.QueueExport{
		Version: models.QueueExportVersion,
		Queue: []models.QueueExportEntry{
			{ID: "known", Title: "Known"},
			{ID: "ghost", Title: "Ghost"},
		},
	}

	restored, _, err := ImportSnapshot(doc, mapResolver{"known": item("known")})
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if !equalIDs(ids(restored), []string{"known"}) {
		t.Fatalf("expected only resolved entries, got %v", ids(restored))
	}
}

func TestImportRejectedWhenNothingResolves(t *testing.T) {
	doc := models.QueueExport{
		Version: models.QueueExportVersion,
		Queue:   []models.QueueExportEntry{{ID: "ghost"}},
	}

	if _, _, err := ImportSnapshot(doc, mapResolver{}); !errors.Is(err, ErrImportEmpty) {
		t.Fatalf("expected ErrImportEmpty, got %v", err)
	}
}

func TestImportRejectsMalformedDocument(t *testing.T) {
	if _, _, err := ImportSnapshot(models.QueueExport{}, mapResolver{}); !errors.Is(err, ErrImportInvalid) {
		t.Fatalf("expected ErrImportInvalid, got %v", err)
	}
}
