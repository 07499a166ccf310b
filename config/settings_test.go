package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadCreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	manager := NewManager(path)

	s, err := manager.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.Server.Port != 8085 {
		t.Fatalf("unexpected default port %d", s.Server.Port)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("defaults should be written to disk: %v", err)
	}
}

func TestLoadBackfillsMissingFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte(`{"server":{"port":9000}}`), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	s, err := NewManager(path).Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.Server.Port != 9000 {
		t.Fatalf("explicit port lost: %d", s.Server.Port)
	}
	if s.Server.Host == "" || s.Storage.Directory == "" || s.Log.File == "" {
		t.Fatalf("missing fields not backfilled: %+v", s)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	manager := NewManager(path)

	s := DefaultSettings()
	s.Sources.Candidates = []string{"https://example.com/catalog.json"}
	if err := manager.Save(s); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := manager.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded.Sources.Candidates) != 1 || loaded.Sources.Candidates[0] != "https://example.com/catalog.json" {
		t.Fatalf("round trip lost sources: %v", loaded.Sources.Candidates)
	}
}
