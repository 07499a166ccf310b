package models

// WatchHistoryLimit caps the watch history at the most recent entries.
const WatchHistoryLimit = 50

// WatchHistoryEntry is one row of the most-recent-first watch log.
// The history holds at most one entry per video id; re-watching moves the
// entry back to the front.
type WatchHistoryEntry struct {
	ID                string    `json:"id"`
	Title             string    `json:"title"`
	Thumbnail         string    `json:"thumbnail,omitempty"`
	Type              MediaType `json:"type"`
	Year              int       `json:"year,omitempty"`
	CompletionPercent float64   `json:"completionPercent"`
	WatchedAt         int64     `json:"watchedAt"` // epoch milliseconds
}

// ProgressRecord stores the saved playback position for a single video.
// Records are written while playing (throttled) and cleared once the video
// is marked complete.
type ProgressRecord struct {
	VideoID     string  `json:"videoId"`
	CurrentTime float64 `json:"currentTime"` // seconds
	Duration    float64 `json:"duration"`    // seconds
	Timestamp   int64   `json:"timestamp"`   // epoch milliseconds
}
