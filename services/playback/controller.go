// Package playback drives the server-side playback state machine. The media
// element itself lives in the client; the controller is the authority on
// what is playing, consumes the queue on completion according to the
// repeat/shuffle/autoplay rules, and guards against re-entrant transitions
// (a duplicate ended or error event for a session is a no-op).
package playback

import (
	"log"
	"sync"
	"time"

	"movieshows/models"
	"movieshows/services/session"

	"github.com/google/uuid"
)

// State enumerates the playback machine states.
type State int

const (
	StateIdle State = iota
	StateLoading
	StatePlaying
	StatePaused
	StateEnded
	StateError
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateEnded:
		return "ended"
	case StateError:
		return "error"
	default:
		return "idle"
	}
}

const (
	// Resume is skipped near the very start and inside the final stretch.
	resumeMinSeconds  = 5.0
	resumeTailSeconds = 30.0

	// Completion at or past this percentage counts as watched.
	completeThresholdPercent = 80.0

	// Progress records are persisted at most once per interval
	// (leading-edge throttle; requests inside the window are coalesced).
	progressSaveInterval = 2 * time.Second
)

// ErrorClass buckets media element failures into the four user-facing kinds.
type ErrorClass string

const (
	ErrorAborted     ErrorClass = "aborted"
	ErrorNetwork     ErrorClass = "network"
	ErrorDecode      ErrorClass = "decode"
	ErrorUnsupported ErrorClass = "unsupported-format"
)

// classifyMediaError maps HTMLMediaElement error codes onto a class and a
// user-facing message.
func classifyMediaError(code int) (ErrorClass, string) {
	switch code {
	case 1:
		return ErrorAborted, "Playback was aborted."
	case 2:
		return ErrorNetwork, "A network error interrupted playback."
	case 3:
		return ErrorDecode, "The video could not be decoded."
	default:
		return ErrorUnsupported, "This video format is not supported."
	}
}

// ProgressStore is the slice of the persistence layer the controller needs.
type ProgressStore interface {
	SaveProgress(record models.ProgressRecord) error
	LoadProgress(videoID string) (models.ProgressRecord, bool)
	ClearProgress(videoID string)
}

// Intent tells the client what to load and where to start.
type Intent struct {
	SessionID  string             `json:"sessionId"`
	Item       models.ContentItem `json:"item"`
	StreamURL  string             `json:"streamUrl"`
	ResumeFrom float64            `json:"resumeFrom,omitempty"`
	Autoplay   bool               `json:"autoplay"`
}

// Status is the externally visible machine state.
type Status struct {
	State        string              `json:"state"`
	SessionID    string              `json:"sessionId,omitempty"`
	Current      *models.ContentItem `json:"current,omitempty"`
	ErrorClass   ErrorClass          `json:"errorClass,omitempty"`
	ErrorMessage string              `json:"errorMessage,omitempty"`
	CanRetry     bool                `json:"canRetry"`
	CanSkip      bool                `json:"canSkip"`
	Prequeue     map[string]string   `json:"prequeue,omitempty"`
}

// Controller owns the playback state machine.
type Controller struct {
	mu       sync.Mutex
	sessions *session.Store
	progress ProgressStore
	prequeue *Prequeue

	state        State
	sessionID    string
	errClass     ErrorClass
	errMessage   string
	lastSave     time.Time
	lastComplete float64

	now func() time.Time
}

// NewController wires the machine to the session store and progress
// persistence. The prequeue is optional.
func NewController(sessions *session.Store, progress ProgressStore, prequeue *Prequeue) *Controller {
	return &Controller{
		sessions: sessions,
		progress: progress,
		prequeue: prequeue,
		state:    StateIdle,
		now:      time.Now,
	}
}

// SetNow replaces the clock (tests).
func (c *Controller) SetNow(now func() time.Time) { c.now = now }

// Play makes the item current and moves the machine to Loading. The session
// state (and with it the share link) is updated regardless of whether the
// client later manages to start the media.
func (c *Controller) Play(item models.ContentItem) Intent {
	c.mu.Lock()
	c.state = StateLoading
	c.sessionID = uuid.NewString()
	c.errClass = ""
	c.errMessage = ""
	c.lastComplete = 0
	sessionID := c.sessionID
	c.mu.Unlock()

	c.sessions.Dispatch(session.SetCurrentVideo{Item: &item})

	intent := Intent{
		SessionID:  sessionID,
		Item:       item,
		StreamURL:  item.VideoURL,
		ResumeFrom: c.resumePoint(item.ID),
		Autoplay:   true,
	}

	log.Printf("[playback] play id=%s title=%q resume=%.1fs", item.ID, item.Title, intent.ResumeFrom)
	c.refreshPrequeue()
	return intent
}

// resumePoint restores saved progress when it is far enough from both ends.
func (c *Controller) resumePoint(videoID string) float64 {
	record, ok := c.progress.LoadProgress(videoID)
	if !ok || record.Duration <= 0 {
		return 0
	}
	if record.CurrentTime > resumeMinSeconds && record.CurrentTime < record.Duration-resumeTailSeconds {
		return record.CurrentTime
	}
	return 0
}

// ReportStarted moves Loading to Playing. A client whose autoplay attempt
// was refused simply never reports it; the machine parks in Loading.
func (c *Controller) ReportStarted(sessionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if sessionID != c.sessionID || c.state != StateLoading {
		return
	}
	c.state = StatePlaying
}

// ReportPaused moves Playing to Paused.
func (c *Controller) ReportPaused(sessionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if sessionID != c.sessionID || c.state != StatePlaying {
		return
	}
	c.state = StatePaused
}

// ReportResumed moves Paused back to Playing.
func (c *Controller) ReportResumed(sessionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if sessionID != c.sessionID || c.state != StatePaused {
		return
	}
	c.state = StatePlaying
}

// ReportProgress records a time update: recomputes completion, writes watch
// history once the threshold is crossed, and persists the progress record
// under the save throttle.
func (c *Controller) ReportProgress(sessionID string, position, duration float64) {
	c.mu.Lock()
	if sessionID != c.sessionID || (c.state != StatePlaying && c.state != StatePaused && c.state != StateLoading) {
		c.mu.Unlock()
		return
	}

	var completion float64
	if duration > 0 {
		completion = position / duration * 100
	}
	c.lastComplete = completion

	saveDue := c.lastSave.IsZero() || c.now().Sub(c.lastSave) >= progressSaveInterval
	if saveDue {
		c.lastSave = c.now()
	}
	c.mu.Unlock()

	state := c.sessions.Snapshot()
	if state.CurrentVideo == nil {
		return
	}
	current := *state.CurrentVideo

	if completion >= completeThresholdPercent {
		c.recordHistory(current, completion)
	}

	if saveDue {
		record := models.ProgressRecord{
			VideoID:     current.ID,
			CurrentTime: position,
			Duration:    duration,
			Timestamp:   c.now().UnixMilli(),
		}
		if err := c.progress.SaveProgress(record); err != nil {
			log.Printf("[playback] save progress %s: %v", current.ID, err)
		}
	}
}

// ReportEnded handles completion. The transition is guarded: it only fires
// once per session, so stacked ended handlers cannot double-advance.
func (c *Controller) ReportEnded(sessionID string) {
	c.mu.Lock()
	if sessionID != c.sessionID || (c.state != StatePlaying && c.state != StatePaused && c.state != StateLoading) {
		c.mu.Unlock()
		return
	}
	c.state = StateEnded
	c.mu.Unlock()

	state := c.sessions.Snapshot()
	if state.CurrentVideo == nil {
		return
	}
	current := *state.CurrentVideo

	// Completion is recorded on end no matter what happens next.
	c.recordHistory(current, 100)
	c.progress.ClearProgress(current.ID)

	if !state.AutoPlayNext {
		log.Printf("[playback] ended id=%s, autoplay off, waiting", current.ID)
		return
	}

	c.advance(state, current)
}

// Next is the explicit user-triggered advance (used when autoplay is off or
// to jump ahead mid-video).
func (c *Controller) Next() (Intent, bool) {
	state := c.sessions.Snapshot()
	var current models.ContentItem
	if state.CurrentVideo != nil {
		current = *state.CurrentVideo
	}
	return c.advance(state, current)
}

// advance applies the end-of-video policy. Repeat-all re-enqueues the item
// that just finished, so the queue stays a stable cycle over its membership
// at the moment repeat-all was engaged.
func (c *Controller) advance(state session.State, finished models.ContentItem) (Intent, bool) {
	switch {
	case state.RepeatMode == models.RepeatOne && finished.ID != "":
		return c.Play(finished), true

	case len(state.Queue) > 0:
		next := c.sessions.Dispatch(session.ConsumeQueueHead{
			RequeueFinished: state.RepeatMode == models.RepeatAll,
		})
		if next.CurrentVideo == nil {
			break
		}
		return c.Play(*next.CurrentVideo), true

	case state.RepeatMode == models.RepeatAll && finished.ID != "":
		// Empty queue: the current video cycles on its own.
		return c.Play(finished), true
	}

	c.mu.Lock()
	c.state = StateIdle
	c.sessionID = ""
	c.mu.Unlock()
	c.sessions.Dispatch(session.SetCurrentVideo{Item: nil})
	return Intent{}, false
}

// ReportError moves the machine to Error with a user-facing message. The
// controller never retries on its own; the only recoveries are Retry and
// Skip.
func (c *Controller) ReportError(sessionID string, code int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if sessionID != c.sessionID || (c.state != StateLoading && c.state != StatePlaying && c.state != StatePaused) {
		return
	}
	c.state = StateError
	c.errClass, c.errMessage = classifyMediaError(code)
	log.Printf("[playback] media error class=%s code=%d", c.errClass, code)
}

// Retry reloads the same video from the Error state.
func (c *Controller) Retry() (Intent, bool) {
	c.mu.Lock()
	if c.state != StateError {
		c.mu.Unlock()
		return Intent{}, false
	}
	c.mu.Unlock()

	state := c.sessions.Snapshot()
	if state.CurrentVideo == nil {
		return Intent{}, false
	}
	return c.Play(*state.CurrentVideo), true
}

// Skip advances past a failed video as if it had ended, without marking it
// watched and without touching its progress record.
func (c *Controller) Skip() (Intent, bool) {
	c.mu.Lock()
	if c.state != StateError {
		c.mu.Unlock()
		return Intent{}, false
	}
	c.mu.Unlock()

	state := c.sessions.Snapshot()
	var failed models.ContentItem
	if state.CurrentVideo != nil {
		failed = *state.CurrentVideo
	}
	return c.advance(state, failed)
}

// Status reports the current machine state.
func (c *Controller) Status() Status {
	c.mu.Lock()
	status := Status{
		State:        c.state.String(),
		SessionID:    c.sessionID,
		ErrorClass:   c.errClass,
		ErrorMessage: c.errMessage,
		CanRetry:     c.state == StateError,
		CanSkip:      c.state == StateError,
	}
	c.mu.Unlock()

	state := c.sessions.Snapshot()
	status.Current = state.CurrentVideo
	if c.prequeue != nil {
		status.Prequeue = c.prequeue.StatusMap()
	}
	return status
}

func (c *Controller) recordHistory(item models.ContentItem, completion float64) {
	c.sessions.Dispatch(session.RecordHistory{Entry: models.WatchHistoryEntry{
		ID:                item.ID,
		Title:             item.Title,
		Thumbnail:         item.Thumbnail,
		Type:              item.Type,
		Year:              item.Year,
		CompletionPercent: completion,
		WatchedAt:         c.now().UnixMilli(),
	}})
}

func (c *Controller) refreshPrequeue() {
	if c.prequeue == nil {
		return
	}
	state := c.sessions.Snapshot()
	c.prequeue.RefreshAsync(state.Queue)
}
