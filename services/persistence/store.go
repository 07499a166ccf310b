// Package persistence serializes application-state collections to JSON
// documents under a storage directory, one fixed versionless file per
// collection plus one progress file per video. Writes are whole-document
// overwrites; reads fall back to the collection's zero default when a file
// is missing or corrupt, so damage to one document never blocks the others.
package persistence

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"path/filepath"
	"strings"
	"sync"

	"movieshows/models"
	"movieshows/services/session"

	"github.com/mozillazg/go-unidecode"
	"github.com/spf13/afero"
)

// ErrStorageDirRequired is returned when no storage directory is provided.
var ErrStorageDirRequired = errors.New("storage directory not provided")

const (
	favoritesFile = "favorites.json"
	likedFile     = "liked.json"
	queueFile     = "queue.json"
	historyFile   = "watch_history.json"
	settingsFile  = "settings.json"
	progressDir   = "progress"
)

// SettingsDoc is the persisted form of the view and playback toggles.
type SettingsDoc struct {
	Theme         string            `json:"theme,omitempty"`
	PlaybackSpeed float64           `json:"playbackSpeed,omitempty"`
	RepeatMode    models.RepeatMode `json:"repeatMode,omitempty"`
	ShuffleMode   bool              `json:"shuffleMode"`
	AutoPlayNext  bool              `json:"autoPlayNext"`
	CompactQueue  bool              `json:"compactQueue"`
	TheaterMode   bool              `json:"theaterMode"`
	Filter        string            `json:"filter,omitempty"`
	SortMode      string            `json:"sortMode,omitempty"`
}

// Store persists state collections on the provided filesystem.
type Store struct {
	mu  sync.Mutex
	fs  afero.Fs
	dir string
}

// NewStore creates the storage directory (and its progress subdirectory)
// if needed and returns a store rooted there.
func NewStore(fsys afero.Fs, dir string) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, ErrStorageDirRequired
	}
	if err := fsys.MkdirAll(filepath.Join(dir, progressDir), 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &Store{fs: fsys, dir: dir}, nil
}

// SaveFavorites overwrites the favorites collection.
func (s *Store) SaveFavorites(ids []string) error { return s.write(favoritesFile, ids) }

// LoadFavorites reads the favorites id list, empty on any failure.
func (s *Store) LoadFavorites() []string {
	var ids []string
	s.read(favoritesFile, &ids)
	return ids
}

// SaveLiked overwrites the liked collection.
func (s *Store) SaveLiked(ids []string) error { return s.write(likedFile, ids) }

// LoadLiked reads the liked id list, empty on any failure.
func (s *Store) LoadLiked() []string {
	var ids []string
	s.read(likedFile, &ids)
	return ids
}

// SaveQueue overwrites the queue with full item snapshots.
func (s *Store) SaveQueue(items []models.ContentItem) error { return s.write(queueFile, items) }

// LoadQueue reads the persisted queue, empty on any failure.
func (s *Store) LoadQueue() []models.ContentItem {
	var items []models.ContentItem
	s.read(queueFile, &items)
	return items
}

// SaveHistory overwrites the watch history.
func (s *Store) SaveHistory(entries []models.WatchHistoryEntry) error {
	return s.write(historyFile, entries)
}

// LoadHistory reads the watch history, empty on any failure.
func (s *Store) LoadHistory() []models.WatchHistoryEntry {
	var entries []models.WatchHistoryEntry
	s.read(historyFile, &entries)
	return entries
}

// SaveSettings overwrites the settings document.
func (s *Store) SaveSettings(doc SettingsDoc) error { return s.write(settingsFile, doc) }

// LoadSettings reads the settings document; ok is false when it is missing
// or unreadable and the caller should keep defaults.
func (s *Store) LoadSettings() (SettingsDoc, bool) {
	var doc SettingsDoc
	ok := s.read(settingsFile, &doc)
	return doc, ok
}

// SaveProgress overwrites the per-video progress record.
func (s *Store) SaveProgress(record models.ProgressRecord) error {
	if record.VideoID == "" {
		return nil
	}
	return s.write(progressPath(record.VideoID), record)
}

// LoadProgress reads the progress record for one video.
func (s *Store) LoadProgress(videoID string) (models.ProgressRecord, bool) {
	var record models.ProgressRecord
	ok := s.read(progressPath(videoID), &record)
	return record, ok && record.VideoID != ""
}

// ClearProgress removes the progress record for one video.
func (s *Store) ClearProgress(videoID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fs.Remove(filepath.Join(s.dir, progressPath(videoID))); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("[persistence] clear progress %s: %v", videoID, err)
	}
}

// LoadState assembles a restore snapshot from every persisted collection.
func (s *Store) LoadState() session.State {
	state := session.NewState()

	for _, id := range s.LoadFavorites() {
		state.Favorites[id] = struct{}{}
	}
	for _, id := range s.LoadLiked() {
		state.Liked[id] = struct{}{}
	}
	state.Queue = s.LoadQueue()
	state.WatchHistory = s.LoadHistory()

	if doc, ok := s.LoadSettings(); ok {
		state.RepeatMode = models.ParseRepeatMode(string(doc.RepeatMode))
		state.ShuffleMode = doc.ShuffleMode
		state.AutoPlayNext = doc.AutoPlayNext
		state.CompactQueue = doc.CompactQueue
		state.TheaterMode = doc.TheaterMode
		if doc.Theme != "" {
			state.Theme = doc.Theme
		}
		if doc.PlaybackSpeed > 0 {
			state.PlaybackSpeed = doc.PlaybackSpeed
		}
		if doc.Filter != "" {
			state.CurrentFilter = doc.Filter
		}
		if doc.SortMode != "" {
			state.SortMode = doc.SortMode
		}
	}

	return state
}

// Observer returns a session subscriber that persists the collections a
// transition touched. Failures are logged, never propagated: persistence
// must not break user actions.
func (s *Store) Observer() session.Subscriber {
	return func(next session.State, action session.Action) {
		switch action.(type) {
		case session.EnqueueItem, session.RemoveQueueIndex, session.ReorderQueue,
			session.ShuffleQueue, session.ClearQueue, session.ConsumeQueueHead:
			s.logged(s.SaveQueue(next.Queue), "queue")

		case session.ReplaceQueue:
			s.logged(s.SaveQueue(next.Queue), "queue")
			s.logged(s.SaveSettings(settingsFrom(next)), "settings")

		case session.ToggleFavorite:
			s.logged(s.SaveFavorites(next.FavoriteIDs()), "favorites")

		case session.ToggleLiked:
			s.logged(s.SaveLiked(next.LikedIDs()), "liked")

		case session.RecordHistory:
			s.logged(s.SaveHistory(next.WatchHistory), "history")

		case session.SetRepeatMode, session.SetShuffleMode, session.SetAutoPlay,
			session.SetCompactQueue, session.SetTheaterMode, session.SetPlaybackSpeed,
			session.SetTheme, session.SetFilter, session.SetSort:
			s.logged(s.SaveSettings(settingsFrom(next)), "settings")
			if _, shuffled := action.(session.SetShuffleMode); shuffled {
				s.logged(s.SaveQueue(next.Queue), "queue")
			}
		}
	}
}

func (s *Store) logged(err error, collection string) {
	if err != nil {
		log.Printf("[persistence] save %s: %v", collection, err)
	}
}

func settingsFrom(state session.State) SettingsDoc {
	return SettingsDoc{
		Theme:         state.Theme,
		PlaybackSpeed: state.PlaybackSpeed,
		RepeatMode:    state.RepeatMode,
		ShuffleMode:   state.ShuffleMode,
		AutoPlayNext:  state.AutoPlayNext,
		CompactQueue:  state.CompactQueue,
		TheaterMode:   state.TheaterMode,
		Filter:        state.CurrentFilter,
		SortMode:      state.SortMode,
	}
}

func (s *Store) write(name string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dir, name)
	tmp := path + ".tmp"

	file, err := s.fs.Create(tmp)
	if err != nil {
		return fmt.Errorf("create %s temp file: %w", name, err)
	}

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(value); err != nil {
		file.Close()
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("encode %s: %w", name, err)
	}

	if err := file.Sync(); err != nil {
		file.Close()
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("sync %s: %w", name, err)
	}

	if err := file.Close(); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("close %s temp file: %w", name, err)
	}

	if err := s.fs.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace %s: %w", name, err)
	}
	return nil
}

// read decodes one document into out, reporting false (and leaving out at
// its zero value) for missing or malformed files.
func (s *Store) read(name string, out any) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := afero.ReadFile(s.fs, filepath.Join(s.dir, name))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Printf("[persistence] read %s: %v", name, err)
		}
		return false
	}
	if len(data) == 0 {
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		log.Printf("[persistence] decode %s: %v (collection reset to default)", name, err)
		return false
	}
	return true
}

func progressPath(videoID string) string {
	return filepath.Join(progressDir, fileSlug(videoID)+".json")
}

// fileSlug makes an arbitrary video id safe as a file name.
func fileSlug(id string) string {
	ascii := strings.ToLower(unidecode.Unidecode(id))
	var b strings.Builder
	b.Grow(len(ascii))
	for _, r := range ascii {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			b.WriteRune(r)
			continue
		}
		b.WriteByte('_')
	}
	if b.Len() == 0 {
		return "_"
	}
	return b.String()
}
