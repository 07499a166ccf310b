// Package sharelink encodes a compact subset of application state into a
// query string usable as a shareable resume pointer, and applies such links
// back onto a session. The link is deliberately not a full snapshot: just
// the current video, the first few queue ids, and the two playback flags.
package sharelink

import (
	"fmt"
	"net/url"
	"strings"

	"movieshows/models"
	"movieshows/services/queue"
	"movieshows/services/session"
)

// MaxQueueIDs caps how many queue entries a link carries.
const MaxQueueIDs = 10

// Query parameter names.
const (
	ParamVideo   = "v"
	ParamQueue   = "q"
	ParamRepeat  = "repeat"
	ParamShuffle = "shuffle"
	ParamSource  = "source"
)

// Link is the decoded form of a share query string.
type Link struct {
	VideoID   string
	QueueIDs  []string
	Repeat    models.RepeatMode
	Shuffle   bool
	SourceURL string
}

// Encode renders the shareable query string for a state. Defaults (repeat
// off, shuffle disabled, empty queue, no current video) are omitted.
func Encode(state session.State) string {
	values := url.Values{}

	if state.CurrentVideo != nil && state.CurrentVideo.ID != "" {
		values.Set(ParamVideo, state.CurrentVideo.ID)
	}

	if len(state.Queue) > 0 {
		limit := len(state.Queue)
		if limit > MaxQueueIDs {
			limit = MaxQueueIDs
		}
		ids := make([]string, 0, limit)
		for _, item := range state.Queue[:limit] {
			ids = append(ids, item.ID)
		}
		values.Set(ParamQueue, strings.Join(ids, ","))
	}

	if state.RepeatMode != models.RepeatOff {
		values.Set(ParamRepeat, string(state.RepeatMode))
	}
	if state.ShuffleMode {
		values.Set(ParamShuffle, "1")
	}

	return values.Encode()
}

// Decode parses a raw query string into a Link.
func Decode(rawQuery string) (Link, error) {
	values, err := url.ParseQuery(strings.TrimPrefix(rawQuery, "?"))
	if err != nil {
		return Link{}, fmt.Errorf("parse share link: %w", err)
	}

	link := Link{
		VideoID:   strings.TrimSpace(values.Get(ParamVideo)),
		Repeat:    models.ParseRepeatMode(values.Get(ParamRepeat)),
		Shuffle:   values.Get(ParamShuffle) == "1",
		SourceURL: strings.TrimSpace(values.Get(ParamSource)),
	}

	if raw := values.Get(ParamQueue); raw != "" {
		for _, id := range strings.Split(raw, ",") {
			id = strings.TrimSpace(id)
			if id == "" {
				continue
			}
			link.QueueIDs = append(link.QueueIDs, id)
			if len(link.QueueIDs) == MaxQueueIDs {
				break
			}
		}
	}

	return link, nil
}

// Catalog resolves ids against the loaded content.
type Catalog interface {
	ByID(id string) (models.ContentItem, bool)
}

// Store is the slice of the session store Apply drives.
type Store interface {
	Snapshot() session.State
	Dispatch(action session.Action) session.State
}

// Apply is idempotent and additive: referenced queue ids not already queued
// are appended after the existing entries, the playback flags are set, and
// the referenced video is resolved and returned for the caller to play.
// Ids missing from the catalog are skipped silently.
func Apply(link Link, cat Catalog, store Store) (models.ContentItem, bool) {
	state := store.Snapshot()

	for _, id := range link.QueueIDs {
		if queue.Contains(state.Queue, id) {
			continue
		}
		item, ok := cat.ByID(id)
		if !ok {
			continue
		}
		state = store.Dispatch(session.EnqueueItem{Item: item})
	}

	// Encoding omits default flag values, so absence is indistinguishable
	// from "off" — only non-default flags are applied, keeping Apply additive.
	if link.Repeat != models.RepeatOff {
		store.Dispatch(session.SetRepeatMode{Mode: link.Repeat})
	}
	if link.Shuffle && !state.ShuffleMode {
		// Restoring the flag must not reshuffle the restored queue order.
		store.Dispatch(session.SetShuffleMode{Enabled: true})
	}

	if link.VideoID == "" {
		return models.ContentItem{}, false
	}
	return cat.ByID(link.VideoID)
}
