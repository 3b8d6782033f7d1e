package library

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"tunecast/internal/services"
)

// ListPlaylists returns all playlists in creation order.
func (s *Store) ListPlaylists() []Playlist {
	s.mu.RLock()
	defer s.mu.RUnlock()

	playlists := make([]Playlist, len(s.catalog.Playlists))
	for i, playlist := range s.catalog.Playlists {
		playlists[i] = playlist
		playlists[i].AudioIDs = slices.Clone(playlist.AudioIDs)
	}
	return playlists
}

// CreatePlaylist adds an empty playlist. The name is required; the description
// defaults to empty.
func (s *Store) CreatePlaylist(name, description string) (Playlist, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Playlist{}, services.Wrap(services.ErrValidation, "catalog", "create playlist",
			"name must not be empty", nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	playlist := Playlist{
		ID:          "playlist_" + uuid.NewString(),
		Name:        name,
		Description: description,
		AudioIDs:    []string{},
		CreatedAt:   time.Now().UTC(),
	}

	s.catalog.Playlists = append(s.catalog.Playlists, playlist)
	if err := s.save(); err != nil {
		s.catalog.Playlists = s.catalog.Playlists[:len(s.catalog.Playlists)-1]
		return Playlist{}, err
	}
	return playlist, nil
}

// GetPlaylist looks up a playlist by id.
func (s *Store) GetPlaylist(id string) (Playlist, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, playlist := range s.catalog.Playlists {
		if playlist.ID == id {
			playlist.AudioIDs = slices.Clone(playlist.AudioIDs)
			return playlist, true
		}
	}
	return Playlist{}, false
}

// PatchPlaylist applies a partial update. A provided AudioIDs list replaces the
// stored list wholesale, never merges.
func (s *Store) PatchPlaylist(id string, patch PlaylistPatch) (Playlist, error) {
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return Playlist{}, services.Wrap(services.ErrValidation, "catalog", "patch playlist",
			"name must not be empty", nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.catalog.Playlists {
		if s.catalog.Playlists[i].ID != id {
			continue
		}
		previous := s.catalog.Playlists[i]
		updated := previous
		if patch.Name != nil {
			updated.Name = strings.TrimSpace(*patch.Name)
		}
		if patch.Description != nil {
			updated.Description = *patch.Description
		}
		if patch.AudioIDs != nil {
			updated.AudioIDs = slices.Clone(*patch.AudioIDs)
		}
		s.catalog.Playlists[i] = updated
		if err := s.save(); err != nil {
			s.catalog.Playlists[i] = previous
			return Playlist{}, err
		}
		return updated, nil
	}
	return Playlist{}, services.Wrap(services.ErrNotFound, "catalog", "patch playlist",
		fmt.Sprintf("playlist %s", id), nil)
}

// DeletePlaylist removes a playlist. Assets it referenced are untouched.
func (s *Store) DeletePlaylist(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.catalog.Playlists {
		if s.catalog.Playlists[i].ID != id {
			continue
		}
		previous := s.catalog.Playlists
		s.catalog.Playlists = slices.Delete(slices.Clone(previous), i, i+1)
		if err := s.save(); err != nil {
			s.catalog.Playlists = previous
			return err
		}
		return nil
	}
	return services.Wrap(services.ErrNotFound, "catalog", "delete playlist",
		fmt.Sprintf("playlist %s", id), nil)
}

// ResolvePlaylist joins a playlist's ordered id list against the asset catalog,
// silently dropping dangling ids. Cascade delete keeps the persisted lists
// clean, but a read must still tolerate references it cannot satisfy.
func (s *Store) ResolvePlaylist(id string) (ResolvedPlaylist, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, playlist := range s.catalog.Playlists {
		if playlist.ID != id {
			continue
		}

		byID := make(map[string]AudioAsset, len(s.catalog.Audios))
		for _, audio := range s.catalog.Audios {
			byID[audio.ID] = audio
		}

		resolved := ResolvedPlaylist{Playlist: playlist, Audios: make([]AudioAsset, 0, len(playlist.AudioIDs))}
		resolved.AudioIDs = slices.Clone(playlist.AudioIDs)
		for _, audioID := range playlist.AudioIDs {
			if audio, ok := byID[audioID]; ok {
				resolved.Audios = append(resolved.Audios, audio)
			}
		}
		return resolved, nil
	}
	return ResolvedPlaylist{}, services.Wrap(services.ErrNotFound, "catalog", "resolve playlist",
		fmt.Sprintf("playlist %s", id), nil)
}
