package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"

	"tunecast/internal/library"
	"tunecast/internal/logging"
	"tunecast/internal/services"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError maps the service error taxonomy onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		status = http.StatusNotFound
	}
	writeError(w, status, err.Error())
}

func decodeBody(w http.ResponseWriter, r *http.Request, target any) bool {
	defer r.Body.Close()
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(target); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

type convertRequest struct {
	URL      string `json:"url"`
	Category string `json:"category"`
}

// handleConvert runs the conversion pipeline synchronously and answers with
// the converted file bytes. The pipeline runs detached from the request
// context so a client hangup mid-download cannot abort a conversion that will
// be committed to the catalog either way.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	if !s.limiter.Allow() {
		writeError(w, http.StatusTooManyRequests, "conversion rate limit exceeded, retry later")
		return
	}

	var req convertRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}

	asset, err := s.converter.Convert(context.WithoutCancel(r.Context()), req.URL, req.Category)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	s.refreshCatalogGauges()

	file, err := os.Open(s.store.AssetPath(asset))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "converted file unavailable")
		return
	}
	defer file.Close()

	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Content-Length", fmt.Sprintf("%d", asset.FileSize))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", asset.Filename))
	w.Header().Set("X-Audio-Id", asset.ID)
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, file); err != nil {
		s.logger.Warn("convert response interrupted", logging.String("id", asset.ID), logging.Error(err))
	}
}

func (s *Server) handleListAudios(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	key := library.ParseSortKey(query.Get("sortBy"))
	order := library.ParseOrder(query.Get("order"))
	audios := s.store.ListAudios(query.Get("category"), key, order)
	writeJSON(w, http.StatusOK, audios)
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.ListCategories())
}

// handleStreamAudio serves asset bytes with single-span range support.
func (s *Server) handleStreamAudio(w http.ResponseWriter, r *http.Request) {
	asset, ok := s.store.GetAudio(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "audio not found")
		return
	}

	path := s.store.AssetPath(asset)
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// Catalog and library directory disagree. Surface it in the log
			// so the operator knows the catalog needs repair.
			s.logger.Warn("asset file missing",
				logging.String("id", asset.ID), logging.String("path", path))
			writeError(w, http.StatusNotFound, "audio file not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "open audio file")
		return
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "stat audio file")
		return
	}
	size := stat.Size()

	header := w.Header()
	header.Set("Content-Type", "audio/mpeg")
	header.Set("Accept-Ranges", "bytes")
	header.Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", asset.Filename))

	span, present, ok := parseRange(r.Header.Get("Range"), size)
	if present && !ok {
		header.Set("Content-Range", fmt.Sprintf("bytes */%d", size))
		writeError(w, http.StatusRequestedRangeNotSatisfiable, "range not satisfiable")
		return
	}

	if !present {
		header.Set("Content-Length", fmt.Sprintf("%d", size))
		w.WriteHeader(http.StatusOK)
		if _, err := io.Copy(w, file); err != nil {
			s.logger.Debug("stream interrupted", logging.String("id", asset.ID), logging.Error(err))
		}
		return
	}

	if _, err := file.Seek(span.start, io.SeekStart); err != nil {
		writeError(w, http.StatusInternalServerError, "seek audio file")
		return
	}
	header.Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", span.start, span.end, size))
	header.Set("Content-Length", fmt.Sprintf("%d", span.length()))
	w.WriteHeader(http.StatusPartialContent)
	if _, err := io.CopyN(w, file, span.length()); err != nil {
		s.logger.Debug("stream interrupted", logging.String("id", asset.ID), logging.Error(err))
	}
}

type patchAudioRequest struct {
	Category string `json:"category"`
}

func (s *Server) handlePatchAudio(w http.ResponseWriter, r *http.Request) {
	var req patchAudioRequest
	if !decodeBody(w, r, &req) {
		return
	}

	asset, err := s.store.UpdateAudioCategory(r.PathValue("id"), req.Category)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	s.refreshCatalogGauges()
	writeJSON(w, http.StatusOK, asset)
}

func (s *Server) handleDeleteAudio(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteAudio(r.PathValue("id")); err != nil {
		writeServiceError(w, err)
		return
	}
	s.refreshCatalogGauges()
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type healthResponse struct {
	Status     string `json:"status"`
	Extractor  string `json:"extractor"`
	Transcoder bool   `json:"ffmpeg"`
	Ready      bool   `json:"ready"`
}

// handleHealth reports process liveness plus tooling readiness. Both binaries
// are probed on every call, so installing them after startup flips Ready
// without a restart. The endpoint always answers 200; Ready tells callers
// whether conversions can succeed.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	extractor, extractorOK := s.gate.Extractor()
	_, transcoderOK := s.gate.Transcoder()
	if !extractorOK {
		extractor = ""
	}
	writeJSON(w, http.StatusOK, healthResponse{
		Status:     "ok",
		Extractor:  extractor,
		Transcoder: transcoderOK,
		Ready:      extractorOK && transcoderOK,
	})
}

func (s *Server) refreshCatalogGauges() {
	if s.metrics == nil {
		return
	}
	audios, playlists := s.store.Counts()
	s.metrics.SetCatalogCounts(audios, playlists)
}
