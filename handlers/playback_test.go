package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"movieshows/models"
	"movieshows/services/playback"
	"movieshows/services/session"
)

type memProgress struct {
	records map[string]models.ProgressRecord
}

func (m *memProgress) SaveProgress(record models.ProgressRecord) error {
	m.records[record.VideoID] = record
	return nil
}

func (m *memProgress) LoadProgress(videoID string) (models.ProgressRecord, bool) {
	record, ok := m.records[videoID]
	return record, ok
}

func (m *memProgress) ClearProgress(videoID string) { delete(m.records, videoID) }

func newPlaybackHandler(t *testing.T) (*PlaybackHandler, *session.Store) {
	t.Helper()
	sessions := session.NewStore()
	controller := playback.NewController(sessions, &memProgress{records: map[string]models.ProgressRecord{}}, nil)
	return NewPlaybackHandler(seededCatalog(t), controller), sessions
}

func TestPlayReturnsIntent(t *testing.T) {
	handler, sessions := newPlaybackHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/playback/play", strings.NewReader(`{"id":"alpha"}`))
	rec := httptest.NewRecorder()
	handler.Play(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var intent playback.Intent
	if err := json.NewDecoder(rec.Body).Decode(&intent); err != nil {
		t.Fatalf("decode intent: %v", err)
	}
	if intent.SessionID == "" || intent.Item.ID != "alpha" || intent.StreamURL != "/media/alpha" {
		t.Fatalf("unexpected intent %+v", intent)
	}
	if current := sessions.Snapshot().CurrentVideo; current == nil || current.ID != "alpha" {
		t.Fatalf("play should set the current video")
	}
}

func TestPlayUnknownID(t *testing.T) {
	handler, _ := newPlaybackHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/playback/play", strings.NewReader(`{"id":"nope"}`))
	rec := httptest.NewRecorder()
	handler.Play(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func postEvent(t *testing.T, handler *PlaybackHandler, body string) playback.Status {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/playback/events", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.Events(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("event request failed with %d: %s", rec.Code, rec.Body.String())
	}
	var status playback.Status
	if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	return status
}

func TestEventsDriveTheStateMachine(t *testing.T) {
	handler, _ := newPlaybackHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/playback/play", strings.NewReader(`{"id":"alpha"}`))
	rec := httptest.NewRecorder()
	handler.Play(rec, req)
	var intent playback.Intent
	json.NewDecoder(rec.Body).Decode(&intent)

	status := postEvent(t, handler, fmt.Sprintf(`{"sessionId":%q,"event":"started"}`, intent.SessionID))
	if status.State != "playing" {
		t.Fatalf("expected playing, got %s", status.State)
	}

	status = postEvent(t, handler, fmt.Sprintf(`{"sessionId":%q,"event":"error","code":2}`, intent.SessionID))
	if status.State != "error" || status.ErrorClass != playback.ErrorNetwork {
		t.Fatalf("unexpected error status %+v", status)
	}
	if !status.CanRetry {
		t.Fatalf("error status should offer retry")
	}
}

func TestEventsRejectMalformedPayloads(t *testing.T) {
	handler, _ := newPlaybackHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/playback/events", strings.NewReader(`{"event":"started"}`))
	rec := httptest.NewRecorder()
	handler.Events(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing session id should 400, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/playback/events", strings.NewReader(`{"sessionId":"s","event":"teleported"}`))
	rec = httptest.NewRecorder()
	handler.Events(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown event should 400, got %d", rec.Code)
	}
}

func TestRetryWithoutErrorConflicts(t *testing.T) {
	handler, _ := newPlaybackHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/playback/retry", nil)
	rec := httptest.NewRecorder()
	handler.Retry(rec, req)
	if rec.Code != http.StatusConflict {
		t.Fatalf("retry with nothing playing should 409, got %d", rec.Code)
	}
}

func TestNextAdvancesIntoQueue(t *testing.T) {
	handler, sessions := newPlaybackHandler(t)
	item, _ := handler.Catalog.ByID("beta")
	sessions.Dispatch(session.EnqueueItem{Item: item})

	req := httptest.NewRequest(http.MethodPost, "/api/playback/next", nil)
	rec := httptest.NewRecorder()
	handler.Next(rec, req)

	var resp struct {
		Advanced bool            `json:"advanced"`
		Intent   playback.Intent `json:"intent"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Advanced || resp.Intent.Item.ID != "beta" {
		t.Fatalf("expected advance into the queue, got %+v", resp)
	}
}

func TestStatusEndpoint(t *testing.T) {
	handler, _ := newPlaybackHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/playback/status", nil)
	rec := httptest.NewRecorder()
	handler.Status(rec, req)

	var status playback.Status
	if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if status.State != "idle" {
		t.Fatalf("fresh controller should be idle, got %s", status.State)
	}
}
