package models

import "time"

// MediaType distinguishes the two catalog categories.
type MediaType string

const (
	MediaTypeMovies MediaType = "movies"
	MediaTypeTV     MediaType = "tv"
)

// NewWindow is how long after being added an item is still flagged as new.
const NewWindow = 7 * 24 * time.Hour

// ContentItem is the canonical representation of a single movie or show.
// Instances are produced only by the normalizer; within a catalog the ID is
// unique and the Title is never empty.
type ContentItem struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Type        MediaType      `json:"type"`
	Year        int            `json:"year,omitempty"` // 0 = unknown
	Thumbnail   string         `json:"thumbnail,omitempty"`
	VideoURL    string         `json:"videoUrl,omitempty"`
	Description string         `json:"description,omitempty"`
	ComingSoon  bool           `json:"comingSoon,omitempty"`
	AddedDate   int64          `json:"addedDate,omitempty"` // epoch milliseconds
	IsNew       bool           `json:"isNew,omitempty"`
	Raw         map[string]any `json:"-"` // original record, not part of identity
}

// RepeatMode controls what happens when playback of the current video ends.
type RepeatMode string

const (
	RepeatOff RepeatMode = "off"
	RepeatOne RepeatMode = "one"
	RepeatAll RepeatMode = "all"
)

// ParseRepeatMode maps arbitrary input to a valid repeat mode, defaulting to off.
func ParseRepeatMode(value string) RepeatMode {
	switch RepeatMode(value) {
	case RepeatOne:
		return RepeatOne
	case RepeatAll:
		return RepeatAll
	default:
		return RepeatOff
	}
}

// PlaybackModes groups the three playback-advance toggles that travel
// together through queue exports and share links.
type PlaybackModes struct {
	RepeatMode   RepeatMode `json:"repeatMode"`
	ShuffleMode  bool       `json:"shuffleMode"`
	AutoPlayNext bool       `json:"autoPlayNext"`
}
