package library

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"tunecast/internal/config"
	"tunecast/internal/logging"
	"tunecast/internal/services"
)

// Store owns the audio catalog. All reads and mutations go through its mutex,
// so concurrent requests observe linearizable updates instead of last-write-wins
// file overwrites. A file lock additionally keeps a second daemon process from
// interleaving whole-file rewrites.
type Store struct {
	mu      sync.RWMutex
	catalog Catalog

	path   string
	dir    string
	lock   *flock.Flock
	logger *slog.Logger
}

// Open loads the catalog from disk, creating directories as needed. A missing
// or unparseable catalog file yields an empty catalog rather than an error;
// corruption is logged and the damaged file is set aside for the operator.
func Open(cfg *config.Config, logger *slog.Logger) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	path := cfg.CatalogPath()
	store := &Store{
		path:   path,
		dir:    cfg.Paths.LibraryDir,
		lock:   flock.New(path + ".lock"),
		logger: logging.WithComponent(logger, "catalog"),
	}

	ok, err := store.lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire catalog lock: %w", err)
	}
	if !ok {
		return nil, errors.New("another tunecast instance owns the catalog")
	}

	store.catalog = store.loadCatalog()
	return store, nil
}

// Close releases the catalog file lock.
func (s *Store) Close() error {
	if s == nil || s.lock == nil {
		return nil
	}
	return s.lock.Unlock()
}

// Dir returns the directory holding the stored audio files.
func (s *Store) Dir() string {
	return s.dir
}

// AssetPath returns the absolute path of an asset's backing file.
func (s *Store) AssetPath(asset AudioAsset) string {
	return filepath.Join(s.dir, asset.Filename)
}

func (s *Store) loadCatalog() Catalog {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("catalog unreadable, starting empty", logging.Error(err))
		}
		return Catalog{}
	}

	var catalog Catalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		quarantine := fmt.Sprintf("%s.corrupt-%d", s.path, time.Now().Unix())
		if renameErr := os.Rename(s.path, quarantine); renameErr == nil {
			s.logger.Warn("catalog unparseable, starting empty",
				logging.Error(err), logging.String("preserved", quarantine))
		} else {
			s.logger.Warn("catalog unparseable, starting empty", logging.Error(err))
		}
		return Catalog{}
	}
	return catalog
}

// save persists the whole catalog. Callers must hold the write lock. The write
// goes through a temp file and rename so readers never see a torn file.
func (s *Store) save() error {
	data, err := json.MarshalIndent(s.catalog, "", "  ")
	if err != nil {
		return services.Wrap(services.ErrIO, "catalog", "save", "marshal catalog", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return services.Wrap(services.ErrIO, "catalog", "save", "write catalog", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return services.Wrap(services.ErrIO, "catalog", "save", "replace catalog", err)
	}
	return nil
}

// ListAudios returns assets filtered by exact category match and sorted. An
// empty filter or the CategoryAll sentinel disables filtering.
func (s *Store) ListAudios(category string, key SortKey, order Order) []AudioAsset {
	s.mu.RLock()
	defer s.mu.RUnlock()

	filter := strings.TrimSpace(category)
	applyFilter := filter != "" && filter != CategoryAll

	audios := make([]AudioAsset, 0, len(s.catalog.Audios))
	for _, audio := range s.catalog.Audios {
		if applyFilter && audio.Category != filter {
			continue
		}
		audios = append(audios, audio)
	}

	sortAudios(audios, key, order)
	return audios
}

// ListCategories returns distinct category values in first-seen order.
func (s *Store) ListCategories() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{}, len(s.catalog.Audios))
	categories := make([]string, 0, len(s.catalog.Audios))
	for _, audio := range s.catalog.Audios {
		if _, ok := seen[audio.Category]; ok {
			continue
		}
		seen[audio.Category] = struct{}{}
		categories = append(categories, audio.Category)
	}
	return categories
}

// GetAudio looks up an asset by id.
func (s *Store) GetAudio(id string) (AudioAsset, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, audio := range s.catalog.Audios {
		if audio.ID == id {
			return audio, true
		}
	}
	return AudioAsset{}, false
}

// AddAudio appends a new asset to the catalog and persists it.
func (s *Store) AddAudio(asset AudioAsset) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.catalog.Audios {
		if existing.ID == asset.ID {
			return services.Wrap(services.ErrValidation, "catalog", "add audio",
				fmt.Sprintf("duplicate asset id %s", asset.ID), nil)
		}
	}

	s.catalog.Audios = append(s.catalog.Audios, asset)
	if err := s.save(); err != nil {
		s.catalog.Audios = s.catalog.Audios[:len(s.catalog.Audios)-1]
		return err
	}
	return nil
}

// UpdateAudioCategory relabels an asset.
func (s *Store) UpdateAudioCategory(id, category string) (AudioAsset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.catalog.Audios {
		if s.catalog.Audios[i].ID != id {
			continue
		}
		previous := s.catalog.Audios[i].Category
		s.catalog.Audios[i].Category = NormalizeCategory(category)
		if err := s.save(); err != nil {
			s.catalog.Audios[i].Category = previous
			return AudioAsset{}, err
		}
		return s.catalog.Audios[i], nil
	}
	return AudioAsset{}, services.Wrap(services.ErrNotFound, "catalog", "patch audio",
		fmt.Sprintf("audio %s", id), nil)
}

// DeleteAudio removes an asset, scrubs its id from every playlist, and deletes
// the backing file. The file removal is best-effort: a missing file is already
// the desired end state.
func (s *Store) DeleteAudio(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	index := -1
	for i := range s.catalog.Audios {
		if s.catalog.Audios[i].ID == id {
			index = i
			break
		}
	}
	if index < 0 {
		return services.Wrap(services.ErrNotFound, "catalog", "delete audio",
			fmt.Sprintf("audio %s", id), nil)
	}

	asset := s.catalog.Audios[index]
	previous := s.catalog
	s.catalog.Audios = slices.Delete(slices.Clone(s.catalog.Audios), index, index+1)

	playlists := make([]Playlist, len(previous.Playlists))
	for i, playlist := range previous.Playlists {
		playlists[i] = playlist
		playlists[i].AudioIDs = slices.DeleteFunc(slices.Clone(playlist.AudioIDs), func(audioID string) bool {
			return audioID == id
		})
	}
	s.catalog.Playlists = playlists

	if err := s.save(); err != nil {
		s.catalog = previous
		return err
	}

	if err := os.Remove(filepath.Join(s.dir, asset.Filename)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.logger.Warn("delete backing file", logging.String("id", id), logging.Error(err))
	}
	return nil
}

// Counts reports catalog sizes for status output and metrics gauges.
func (s *Store) Counts() (audios, playlists int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.catalog.Audios), len(s.catalog.Playlists)
}
