// Package queue implements the ordered mutation operations over the playback
// queue plus its portable snapshot format. The functions are pure over slices
// so the session reducer can apply them without side effects.
package queue

import (
	"errors"
	"math/rand"
	"time"

	"movieshows/models"
)

var (
	// ErrImportInvalid marks an export document that does not match the
	// expected shape.
	ErrImportInvalid = errors.New("queue import document is invalid")
	// ErrImportEmpty marks an import whose entries all failed to resolve
	// against the catalog.
	ErrImportEmpty = errors.New("queue import resolved no items")
)

// Contains reports whether an item with the given id is already queued.
func Contains(items []models.ContentItem, id string) bool {
	for _, item := range items {
		if item.ID == id {
			return true
		}
	}
	return false
}

// Add appends the item unless one with the same id is already queued.
func Add(items []models.ContentItem, item models.ContentItem) []models.ContentItem {
	if Contains(items, item.ID) {
		return items
	}
	out := make([]models.ContentItem, 0, len(items)+1)
	out = append(out, items...)
	return append(out, item)
}

// RemoveAt removes exactly one entry; out-of-range indices leave the queue
// untouched.
func RemoveAt(items []models.ContentItem, index int) []models.ContentItem {
	if index < 0 || index >= len(items) {
		return items
	}
	out := make([]models.ContentItem, 0, len(items)-1)
	out = append(out, items[:index]...)
	return append(out, items[index+1:]...)
}

// Reorder moves the entry at from to position to, preserving the relative
// order of everything else.
func Reorder(items []models.ContentItem, from, to int) []models.ContentItem {
	if from < 0 || from >= len(items) || to < 0 || to >= len(items) || from == to {
		return items
	}
	out := make([]models.ContentItem, len(items))
	copy(out, items)
	moved := out[from]
	out = append(out[:from], out[from+1:]...)
	out = append(out[:to], append([]models.ContentItem{moved}, out[to:]...)...)
	return out
}

// Shuffle returns a uniform Fisher-Yates permutation of the queue using the
// supplied source. The result is always the same multiset of items.
func Shuffle(items []models.ContentItem, rng *rand.Rand) []models.ContentItem {
	out := make([]models.ContentItem, len(items))
	copy(out, items)
	for i := len(out) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// ExportSnapshot captures the queue item identities and the three
// playback-mode toggles as a portable document.
func ExportSnapshot(items []models.ContentItem, modes models.PlaybackModes, exportedAt time.Time) models.QueueExport {
	entries := make([]models.QueueExportEntry, 0, len(items))
	for _, item := range items {
		entries = append(entries, models.QueueExportEntry{
			ID:    item.ID,
			Title: item.Title,
			Type:  item.Type,
			Year:  item.Year,
		})
	}
	return models.QueueExport{
		Version:    models.QueueExportVersion,
		ExportedAt: exportedAt.UTC(),
		Queue:      entries,
		Settings:   modes,
	}
}

// Resolver looks items up in the current catalog during an import.
type Resolver interface {
	ByID(id string) (models.ContentItem, bool)
	ByTitleYear(title string, year int) (models.ContentItem, bool)
}

// ImportSnapshot resolves an export document against the catalog. Entries
// that no longer resolve are skipped silently; when nothing resolves the
// import is rejected wholesale so the caller's queue stays untouched.
func ImportSnapshot(doc models.QueueExport, catalog Resolver) ([]models.ContentItem, models.PlaybackModes, error) {
	if doc.Version == "" || doc.Queue == nil {
		return nil, models.PlaybackModes{}, ErrImportInvalid
	}

	items := make([]models.ContentItem, 0, len(doc.Queue))
	seen := make(map[string]struct{}, len(doc.Queue))
	for _, entry := range doc.Queue {
		item, ok := catalog.ByID(entry.ID)
		if !ok {
			item, ok = catalog.ByTitleYear(entry.Title, entry.Year)
		}
		if !ok {
			continue
		}
		if _, dup := seen[item.ID]; dup {
			continue
		}
		seen[item.ID] = struct{}{}
		items = append(items, item)
	}

	if len(items) == 0 {
		return nil, models.PlaybackModes{}, ErrImportEmpty
	}

	modes := doc.Settings
	modes.RepeatMode = models.ParseRepeatMode(string(modes.RepeatMode))
	return items, modes, nil
}
