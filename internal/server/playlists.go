package server

import (
	"net/http"

	"tunecast/internal/library"
)

type createPlaylistRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type patchPlaylistRequest struct {
	Name        *string   `json:"name"`
	Description *string   `json:"description"`
	AudioIDs    *[]string `json:"audioIds"`
}

func (s *Server) handleListPlaylists(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.ListPlaylists())
}

func (s *Server) handleCreatePlaylist(w http.ResponseWriter, r *http.Request) {
	var req createPlaylistRequest
	if !decodeBody(w, r, &req) {
		return
	}

	playlist, err := s.store.CreatePlaylist(req.Name, req.Description)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	s.refreshCatalogGauges()
	writeJSON(w, http.StatusOK, playlist)
}

func (s *Server) handlePatchPlaylist(w http.ResponseWriter, r *http.Request) {
	var req patchPlaylistRequest
	if !decodeBody(w, r, &req) {
		return
	}

	playlist, err := s.store.PatchPlaylist(r.PathValue("id"), library.PlaylistPatch{
		Name:        req.Name,
		Description: req.Description,
		AudioIDs:    req.AudioIDs,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, playlist)
}

func (s *Server) handleDeletePlaylist(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeletePlaylist(r.PathValue("id")); err != nil {
		writeServiceError(w, err)
		return
	}
	s.refreshCatalogGauges()
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// handleResolvePlaylist returns the playlist with its audio ids materialized
// into asset records. Ids that no longer resolve are silently dropped.
func (s *Server) handleResolvePlaylist(w http.ResponseWriter, r *http.Request) {
	resolved, err := s.store.ResolvePlaylist(r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resolved)
}
