package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/spf13/afero"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestLoader(fsys afero.Fs, candidates []string) *Loader {
	l := NewLoader(fsys, candidates)
	l.SetNow(func() time.Time { return testNow })
	return l
}

func TestLoadFromFirstWorkingCandidate(t *testing.T) {
	fsys := afero.NewMemMapFs()
	afero.WriteFile(fsys, "broken.json", []byte("{not json"), 0o644)
	afero.WriteFile(fsys, "empty.json", []byte("[]"), 0o644)
	afero.WriteFile(fsys, "good.json", []byte(`[{"title":"Alpha","id":"1"}]`), 0o644)
	afero.WriteFile(fsys, "later.json", []byte(`[{"title":"Beta","id":"2"}]`), 0o644)

	l := newTestLoader(fsys, []string{"missing.json", "broken.json", "empty.json", "good.json", "later.json"})
	items, err := l.Load(context.Background())
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(items) != 1 || items[0].ID != "1" {
		t.Fatalf("expected first working candidate to win, got %v", items)
	}
}

func TestLoadAllCandidatesFailYieldsEmptyList(t *testing.T) {
	l := newTestLoader(afero.NewMemMapFs(), []string{"a.json", "b.json"})

	items, err := l.Load(context.Background())
	if err != nil {
		t.Fatalf("exhausted candidates must not error: %v", err)
	}
	if items == nil || len(items) != 0 {
		t.Fatalf("expected explicit empty list, got %v", items)
	}
}

func TestInlinePayloadOutranksEverything(t *testing.T) {
	fsys := afero.NewMemMapFs()
	afero.WriteFile(fsys, "good.json", []byte(`[{"title":"File","id":"f"}]`), 0o644)

	l := newTestLoader(fsys, []string{"good.json"})
	l.SetInline([]any{map[string]any{"title": "Inline", "id": "i"}})

	items, err := l.Load(context.Background())
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(items) != 1 || items[0].ID != "i" {
		t.Fatalf("inline payload should win, got %v", items)
	}
}

func TestEmptyInlineFallsThrough(t *testing.T) {
	fsys := afero.NewMemMapFs()
	afero.WriteFile(fsys, "good.json", []byte(`[{"title":"File","id":"f"}]`), 0o644)

	l := newTestLoader(fsys, []string{"good.json"})
	l.SetInline([]any{})

	items, err := l.Load(context.Background())
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(items) != 1 || items[0].ID != "f" {
		t.Fatalf("empty inline should fall through to candidates, got %v", items)
	}
}

func TestOverrideURLOutranksCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items":[{"title":"Remote","id":"r"}]}`))
	}))
	defer srv.Close()

	fsys := afero.NewMemMapFs()
	afero.WriteFile(fsys, "good.json", []byte(`[{"title":"File","id":"f"}]`), 0o644)

	l := newTestLoader(fsys, []string{"good.json"})
	l.SetOverrideURL(srv.URL)

	items, err := l.Load(context.Background())
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(items) != 1 || items[0].ID != "r" {
		t.Fatalf("override URL should win, got %v", items)
	}
}

func TestHTTPFailureFallsThrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	fsys := afero.NewMemMapFs()
	afero.WriteFile(fsys, "good.json", []byte(`[{"title":"File","id":"f"}]`), 0o644)

	l := newTestLoader(fsys, []string{srv.URL, "good.json"})
	items, err := l.Load(context.Background())
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(items) != 1 || items[0].ID != "f" {
		t.Fatalf("failed HTTP candidate should fall through, got %v", items)
	}
}

func TestHTTPTransientFailureRetriesOnce(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			http.Error(w, "flaky", http.StatusBadGateway)
			return
		}
		w.Write([]byte(`[{"title":"Flaky","id":"x"}]`))
	}))
	defer srv.Close()

	l := newTestLoader(afero.NewMemMapFs(), []string{srv.URL})
	items, err := l.Load(context.Background())
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(items) != 1 || items[0].ID != "x" {
		t.Fatalf("expected retry to recover, got %v", items)
	}
	if calls != 2 {
		t.Fatalf("expected exactly 2 attempts, got %d", calls)
	}
}

func TestLoadHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	l := newTestLoader(afero.NewMemMapFs(), []string{"a.json"})
	if _, err := l.Load(ctx); err == nil {
		t.Fatalf("expected context error")
	}
}
