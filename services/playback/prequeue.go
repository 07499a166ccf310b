package playback

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"movieshows/models"

	"github.com/gabriel-vasile/mimetype"
	"github.com/sourcegraph/conc/pool"
)

// Prequeue readiness verdicts per probed item.
const (
	PrequeueReady  = "ready"
	PrequeueFailed = "failed"
)

const (
	prequeueDepth   = 3
	prequeueTimeout = 10 * time.Second
	sniffBytes      = 512
)

// Prequeue probes the stream URLs of the upcoming queue entries so the
// client knows whether the next video is likely to start cleanly. Verdicts
// are advisory only; a failed probe never mutates the queue.
type Prequeue struct {
	mu     sync.Mutex
	client *http.Client
	status map[string]string
}

// NewPrequeue returns a prequeue with a default HTTP client.
func NewPrequeue() *Prequeue {
	return &Prequeue{
		client: &http.Client{Timeout: prequeueTimeout},
		status: make(map[string]string),
	}
}

// SetHTTPClient replaces the HTTP client (tests).
func (p *Prequeue) SetHTTPClient(client *http.Client) { p.client = client }

// RefreshAsync probes the first entries of the queue in the background.
func (p *Prequeue) RefreshAsync(queue []models.ContentItem) {
	items := make([]models.ContentItem, len(queue))
	copy(items, queue)
	go p.Refresh(context.Background(), items)
}

// Refresh probes up to prequeueDepth entries concurrently and records a
// verdict per item id.
func (p *Prequeue) Refresh(ctx context.Context, queue []models.ContentItem) {
	depth := len(queue)
	if depth > prequeueDepth {
		depth = prequeueDepth
	}

	workers := pool.New().WithMaxGoroutines(prequeueDepth)
	for _, item := range queue[:depth] {
		item := item
		workers.Go(func() {
			verdict := PrequeueReady
			if err := p.probe(ctx, item.VideoURL); err != nil {
				log.Printf("[prequeue] probe id=%s: %v", item.ID, err)
				verdict = PrequeueFailed
			}
			p.mu.Lock()
			p.status[item.ID] = verdict
			p.mu.Unlock()
		})
	}
	workers.Wait()
}

// StatusMap returns a copy of the per-item verdicts.
func (p *Prequeue) StatusMap() map[string]string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make(map[string]string, len(p.status))
	for id, verdict := range p.status {
		out[id] = verdict
	}
	return out
}

// probe checks that the URL answers and looks like media. Non-HTTP URLs
// (local library paths served by the media handler) are assumed reachable.
func (p *Prequeue) probe(ctx context.Context, rawURL string) error {
	if rawURL == "" {
		return fmt.Errorf("no stream url")
	}
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return err
	}
	resp, err := p.client.Do(req)
	if err == nil {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		if resp.StatusCode >= 200 && resp.StatusCode < 400 {
			return nil
		}
		if resp.StatusCode != http.StatusMethodNotAllowed {
			return fmt.Errorf("unexpected status %d", resp.StatusCode)
		}
	}

	// Some hosts refuse HEAD; sniff the first bytes instead.
	req, err = http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Range", fmt.Sprintf("bytes=0-%d", sniffBytes-1))
	resp, err = p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 400 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	kind, err := mimetype.DetectReader(io.LimitReader(resp.Body, sniffBytes))
	if err != nil {
		return fmt.Errorf("sniff content: %w", err)
	}
	if !looksLikeMedia(kind.String()) {
		return fmt.Errorf("unexpected content type %s", kind)
	}
	return nil
}

func looksLikeMedia(contentType string) bool {
	return strings.HasPrefix(contentType, "video/") ||
		strings.HasPrefix(contentType, "audio/") ||
		contentType == "application/octet-stream"
}
