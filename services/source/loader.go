// Package source resolves the catalog from an ordered list of candidate
// locations. Resolution is deliberately sequential: precedence (inline
// payload, then override URL, then the configured candidates) must be
// deterministic, and racing fetches would not be.
package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"movieshows/models"
	"movieshows/services/normalizer"

	"github.com/avast/retry-go/v4"
	"github.com/spf13/afero"
)

const (
	fetchTimeout  = 15 * time.Second
	fetchAttempts = 2
	maxBodyBytes  = 32 << 20 // refuse absurd catalog payloads
)

// Loader tries candidate catalog locations until one yields a non-empty
// normalized list.
type Loader struct {
	fs         afero.Fs
	client     *http.Client
	candidates []string
	inline     any
	override   string
	now        func() time.Time
}

// NewLoader returns a loader over the given filesystem and ordered
// candidate list. Candidates may be file paths or http(s) URLs.
func NewLoader(fsys afero.Fs, candidates []string) *Loader {
	return &Loader{
		fs:         fsys,
		client:     &http.Client{Timeout: fetchTimeout},
		candidates: candidates,
		now:        time.Now,
	}
}

// SetInline injects an in-memory payload that takes precedence over all
// fetched candidates.
func (l *Loader) SetInline(payload any) { l.inline = payload }

// SetOverrideURL sets a catalog URL that outranks the configured candidates.
func (l *Loader) SetOverrideURL(u string) { l.override = strings.TrimSpace(u) }

// SetHTTPClient replaces the HTTP client (tests).
func (l *Loader) SetHTTPClient(client *http.Client) { l.client = client }

// SetNow replaces the clock used for normalization (tests).
func (l *Loader) SetNow(now func() time.Time) { l.now = now }

// Load resolves the catalog. The returned error is non-nil only for context
// cancellation; exhausting every candidate yields an empty (non-nil) list,
// which the API surfaces as an explicit no-content state.
func (l *Loader) Load(ctx context.Context) ([]models.ContentItem, error) {
	now := l.now()

	if l.inline != nil {
		if items := normalizer.Payload(l.inline, now); len(items) > 0 {
			log.Printf("[source] using injected payload (%d items)", len(items))
			return items, nil
		}
		log.Printf("[source] injected payload normalized to empty, falling through")
	}

	if l.override != "" {
		if items, ok := l.tryCandidate(ctx, l.override, now); ok {
			log.Printf("[source] using override %q (%d items)", l.override, len(items))
			return items, nil
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	for _, candidate := range l.candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if items, ok := l.tryCandidate(ctx, candidate, now); ok {
			log.Printf("[source] using %q (%d items)", candidate, len(items))
			return items, nil
		}
	}

	log.Printf("[source] every candidate failed or was empty")
	return []models.ContentItem{}, nil
}

// tryCandidate fetches, decodes, and normalizes one location. Every failure
// mode is swallowed so the caller can move on to the next candidate.
func (l *Loader) tryCandidate(ctx context.Context, candidate string, now time.Time) ([]models.ContentItem, bool) {
	data, err := l.fetch(ctx, candidate)
	if err != nil {
		log.Printf("[source] candidate %q failed: %v", candidate, err)
		return nil, false
	}

	var payload any
	if err := json.Unmarshal(data, &payload); err != nil {
		log.Printf("[source] candidate %q is not valid JSON: %v", candidate, err)
		return nil, false
	}

	items := normalizer.Payload(payload, now)
	if len(items) == 0 {
		log.Printf("[source] candidate %q normalized to an empty catalog", candidate)
		return nil, false
	}
	return items, true
}

func (l *Loader) fetch(ctx context.Context, candidate string) ([]byte, error) {
	if strings.HasPrefix(candidate, "http://") || strings.HasPrefix(candidate, "https://") {
		return l.fetchHTTP(ctx, candidate)
	}
	data, err := afero.ReadFile(l.fs, candidate)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", candidate, err)
	}
	return data, nil
}

// fetchHTTP retries transient failures a fixed number of times; a candidate
// that still fails is skipped, never fatal.
func (l *Loader) fetchHTTP(ctx context.Context, rawURL string) ([]byte, error) {
	var body []byte
	err := retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			req.Header.Set("Accept", "application/json")

			resp, err := l.client.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				return fmt.Errorf("unexpected status %d", resp.StatusCode)
			}

			body, err = io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
			return err
		},
		retry.Attempts(fetchAttempts),
		retry.Context(ctx),
		retry.Delay(200*time.Millisecond),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	return body, nil
}
