package testsupport

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"tunecast/internal/config"
	"tunecast/internal/library"
	"tunecast/internal/logging"
)

// MustOpenStore opens a library.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *library.Store {
	t.Helper()

	store, err := library.Open(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("library.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

// NewAudio adds a catalog entry backed by a real file of the given size.
func NewAudio(t testing.TB, store *library.Store, id, title, category string, size int) library.AudioAsset {
	t.Helper()

	filename := id + ".mp3"
	path := filepath.Join(store.Dir(), filename)
	if err := os.WriteFile(path, make([]byte, size), 0o644); err != nil {
		t.Fatalf("write audio file: %v", err)
	}

	asset := library.AudioAsset{
		ID:        id,
		SourceID:  "src-" + id,
		Title:     title,
		Filename:  filename,
		SourceURL: fmt.Sprintf("https://www.youtube.com/watch?v=%s", id),
		Category:  library.NormalizeCategory(category),
		Duration:  float64(size),
		FileSize:  int64(size),
		CreatedAt: time.Now().UTC(),
	}
	if err := store.AddAudio(asset); err != nil {
		t.Fatalf("AddAudio: %v", err)
	}
	return asset
}
