package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"tunecast/internal/library"
)

// apiClient talks to a running tunecastd over HTTP. Conversions stream the
// converted file, so the client carries no overall request timeout; every
// other call is expected to answer quickly.
type apiClient struct {
	base string
	http *http.Client
}

func newAPIClient(base string) *apiClient {
	return &apiClient{
		base: base,
		http: &http.Client{},
	}
}

type healthInfo struct {
	Status     string `json:"status"`
	Extractor  string `json:"extractor"`
	Transcoder bool   `json:"ffmpeg"`
	Ready      bool   `json:"ready"`
}

type apiError struct {
	Status  int
	Message string
}

func (e *apiError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("daemon responded %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("daemon responded %d", e.Status)
}

func (c *apiClient) do(method, path string, body any, target any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.base+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("reach daemon at %s: %w", c.base, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeAPIError(resp)
	}
	if target == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	var body struct {
		Error string `json:"error"`
	}
	_ = json.NewDecoder(io.LimitReader(resp.Body, 64*1024)).Decode(&body)
	return &apiError{Status: resp.StatusCode, Message: body.Error}
}

func (c *apiClient) health() (healthInfo, error) {
	var info healthInfo
	err := c.do(http.MethodGet, "/api/health", nil, &info)
	return info, err
}

func (c *apiClient) listAudios(category, sortBy, order string) ([]library.AudioAsset, error) {
	query := url.Values{}
	if category != "" {
		query.Set("category", category)
	}
	if sortBy != "" {
		query.Set("sortBy", sortBy)
	}
	if order != "" {
		query.Set("order", order)
	}
	path := "/api/audios"
	if encoded := query.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var audios []library.AudioAsset
	err := c.do(http.MethodGet, path, nil, &audios)
	return audios, err
}

func (c *apiClient) listCategories() ([]string, error) {
	var categories []string
	err := c.do(http.MethodGet, "/api/categories", nil, &categories)
	return categories, err
}

type convertResult struct {
	ID       string
	Filename string
	Path     string
	Size     int64
	Elapsed  time.Duration
}

// convert submits a conversion and saves the returned file. outputDir empty
// means the current directory; the filename comes from the daemon's
// Content-Disposition header.
func (c *apiClient) convert(sourceURL, category, outputDir string) (convertResult, error) {
	started := time.Now()

	payload, err := json.Marshal(map[string]string{"url": sourceURL, "category": category})
	if err != nil {
		return convertResult{}, fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequest(http.MethodPost, c.base+"/api/convert", bytes.NewReader(payload))
	if err != nil {
		return convertResult{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return convertResult{}, fmt.Errorf("reach daemon at %s: %w", c.base, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return convertResult{}, decodeAPIError(resp)
	}

	filename := dispositionFilename(resp.Header.Get("Content-Disposition"))
	if filename == "" {
		filename = fmt.Sprintf("tunecast-%d.mp3", started.UnixMilli())
	}
	target := filename
	if outputDir != "" {
		target = filepath.Join(outputDir, filename)
	}

	file, err := os.Create(target)
	if err != nil {
		return convertResult{}, fmt.Errorf("create output file: %w", err)
	}
	defer file.Close()

	size, err := io.Copy(file, resp.Body)
	if err != nil {
		return convertResult{}, fmt.Errorf("save converted audio: %w", err)
	}

	return convertResult{
		ID:       resp.Header.Get("X-Audio-Id"),
		Filename: filename,
		Path:     target,
		Size:     size,
		Elapsed:  time.Since(started),
	}, nil
}

func dispositionFilename(header string) string {
	if header == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(header)
	if err != nil {
		return ""
	}
	return params["filename"]
}

func (c *apiClient) patchAudioCategory(id, category string) (library.AudioAsset, error) {
	var asset library.AudioAsset
	err := c.do(http.MethodPatch, "/api/audio/"+url.PathEscape(id),
		map[string]string{"category": category}, &asset)
	return asset, err
}

func (c *apiClient) deleteAudio(id string) error {
	return c.do(http.MethodDelete, "/api/audio/"+url.PathEscape(id), nil, nil)
}

func (c *apiClient) listPlaylists() ([]library.Playlist, error) {
	var playlists []library.Playlist
	err := c.do(http.MethodGet, "/api/playlists", nil, &playlists)
	return playlists, err
}

func (c *apiClient) createPlaylist(name, description string) (library.Playlist, error) {
	var playlist library.Playlist
	err := c.do(http.MethodPost, "/api/playlists",
		map[string]string{"name": name, "description": description}, &playlist)
	return playlist, err
}

func (c *apiClient) setPlaylistAudios(id string, audioIDs []string) (library.Playlist, error) {
	var playlist library.Playlist
	err := c.do(http.MethodPatch, "/api/playlist/"+url.PathEscape(id),
		map[string]any{"audioIds": audioIDs}, &playlist)
	return playlist, err
}

func (c *apiClient) deletePlaylist(id string) error {
	return c.do(http.MethodDelete, "/api/playlist/"+url.PathEscape(id), nil, nil)
}

func (c *apiClient) resolvePlaylist(id string) (library.ResolvedPlaylist, error) {
	var resolved library.ResolvedPlaylist
	err := c.do(http.MethodGet, "/api/playlist/"+url.PathEscape(id), nil, &resolved)
	return resolved, err
}
