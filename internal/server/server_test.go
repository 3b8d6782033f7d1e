package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"testing"

	"tunecast/internal/config"
	"tunecast/internal/converter"
	"tunecast/internal/library"
	"tunecast/internal/logging"
	"tunecast/internal/metrics"
	"tunecast/internal/server"
	"tunecast/internal/services/ytdlp"
	"tunecast/internal/testsupport"
)

type fakeExtractor struct {
	info     ytdlp.SourceInfo
	probeErr error
	output   []byte
	err      error
}

func (f *fakeExtractor) Probe(ctx context.Context, url string) (ytdlp.SourceInfo, error) {
	return f.info, f.probeErr
}

func (f *fakeExtractor) Extract(ctx context.Context, url, outputPath string) error {
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(outputPath, f.output, 0o644)
}

// gateStub is a mutable tool gate so tests can flip availability while the
// server is running.
type gateStub struct {
	mu         sync.Mutex
	extractor  string
	transcoder bool
}

func (g *gateStub) set(extractor string, transcoder bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.extractor = extractor
	g.transcoder = transcoder
}

func (g *gateStub) Extractor() (string, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.extractor, g.extractor != ""
}

func (g *gateStub) Transcoder() (string, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return "ffmpeg", g.transcoder
}

type fixture struct {
	cfg    *config.Config
	store  *library.Store
	server *server.Server
	gate   *gateStub
	base   string
	client *http.Client
}

type fixtureOption func(*fixtureParams)

type fixtureParams struct {
	extractor converter.Extractor
	gate      *gateStub
	rate      int
	burst     int
}

func withExtractor(e converter.Extractor) fixtureOption {
	return func(p *fixtureParams) {
		p.extractor = e
		p.gate.set("yt-dlp", true)
	}
}

func withGate(extractor string, transcoder bool) fixtureOption {
	return func(p *fixtureParams) {
		p.gate.set(extractor, transcoder)
	}
}

func withConvertRate(perMinute, burst int) fixtureOption {
	return func(p *fixtureParams) {
		p.rate = perMinute
		p.burst = burst
	}
}

func newFixture(t *testing.T, opts ...fixtureOption) *fixture {
	t.Helper()

	params := fixtureParams{rate: 600, burst: 100, gate: &gateStub{}}
	for _, opt := range opts {
		opt(&params)
	}

	cfg := testsupport.NewConfig(t)
	cfg.Server.ConvertRatePerMinute = params.rate
	cfg.Server.ConvertBurst = params.burst
	store := testsupport.MustOpenStore(t, cfg)

	orch := converter.New(store, params.gate, ytdlp.Params{AudioFormat: "mp3"}, logging.NewNop(),
		converter.WithExtractorFactory(func(string) (converter.Extractor, error) {
			return params.extractor, nil
		}))
	srv := server.New(cfg, store, orch, params.gate, metrics.New(), logging.NewNop())
	if err := srv.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() {
		_ = srv.Shutdown(context.Background())
	})

	return &fixture{
		cfg:    cfg,
		store:  store,
		server: srv,
		gate:   params.gate,
		base:   "http://" + srv.Addr(),
		client: &http.Client{},
	}
}

func (f *fixture) request(t *testing.T, method, path string, body any, headers map[string]string) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, f.base+path, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeInto(t *testing.T, resp *http.Response, target any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestHealthReady(t *testing.T) {
	f := newFixture(t, withExtractor(&fakeExtractor{}))

	resp := f.request(t, http.MethodGet, "/api/health", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}

	var health struct {
		Status     string `json:"status"`
		Extractor  string `json:"extractor"`
		Transcoder bool   `json:"ffmpeg"`
		Ready      bool   `json:"ready"`
	}
	decodeInto(t, resp, &health)
	if health.Status != "ok" || health.Extractor != "yt-dlp" || !health.Transcoder || !health.Ready {
		t.Fatalf("unexpected health: %#v", health)
	}
}

func TestHealthNotReadyWithoutTools(t *testing.T) {
	f := newFixture(t)

	resp := f.request(t, http.MethodGet, "/api/health", nil, nil)
	var health struct {
		Ready bool `json:"ready"`
	}
	decodeInto(t, resp, &health)
	if health.Ready {
		t.Fatal("expected not ready without tooling")
	}
}

func TestConvertSuccessStreamsFile(t *testing.T) {
	payload := []byte("converted-audio-bytes")
	f := newFixture(t, withExtractor(&fakeExtractor{
		info:   ytdlp.SourceInfo{ID: "abc123", Title: "A Song", Duration: 42},
		output: payload,
	}))

	resp := f.request(t, http.MethodPost, "/api/convert",
		map[string]string{"url": "https://youtu.be/abc123", "category": "Jazz"}, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Content-Disposition"); !strings.HasPrefix(got, "attachment") {
		t.Fatalf("unexpected disposition %q", got)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if !bytes.Equal(body, payload) {
		t.Fatalf("unexpected body %q", body)
	}

	id := resp.Header.Get("X-Audio-Id")
	if id == "" {
		t.Fatal("expected asset id header")
	}
	asset, ok := f.store.GetAudio(id)
	if !ok {
		t.Fatal("expected asset in catalog")
	}
	if asset.Title != "A Song" || asset.Category != "Jazz" {
		t.Fatalf("unexpected asset %#v", asset)
	}
}

func TestConvertRequiresURL(t *testing.T) {
	f := newFixture(t, withExtractor(&fakeExtractor{}))

	resp := f.request(t, http.MethodPost, "/api/convert", map[string]string{"category": "x"}, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status %d", resp.StatusCode)
	}
	var body struct {
		Error string `json:"error"`
	}
	decodeInto(t, resp, &body)
	if body.Error == "" {
		t.Fatal("expected error message")
	}
}

func TestConvertWithoutToolingFails(t *testing.T) {
	f := newFixture(t)

	resp := f.request(t, http.MethodPost, "/api/convert", map[string]string{"url": "https://youtu.be/x"}, nil)
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status %d", resp.StatusCode)
	}
}

func TestConvertWithoutTranscoderFails(t *testing.T) {
	f := newFixture(t, withExtractor(&fakeExtractor{output: []byte("x")}), withGate("yt-dlp", false))

	resp := f.request(t, http.MethodPost, "/api/convert", map[string]string{"url": "https://youtu.be/x"}, nil)
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status %d", resp.StatusCode)
	}
	var body struct {
		Error string `json:"error"`
	}
	decodeInto(t, resp, &body)
	if !strings.Contains(body.Error, "ffmpeg") {
		t.Fatalf("expected missing tool named in error, got %q", body.Error)
	}
	if audios, _ := f.store.Counts(); audios != 0 {
		t.Fatalf("expected catalog unchanged, got %d assets", audios)
	}
}

func TestHealthFlipsWhenToolsAppear(t *testing.T) {
	f := newFixture(t)

	var health struct {
		Extractor string `json:"extractor"`
		Ready     bool   `json:"ready"`
	}
	resp := f.request(t, http.MethodGet, "/api/health", nil, nil)
	decodeInto(t, resp, &health)
	if health.Ready {
		t.Fatal("expected not ready before tools are installed")
	}

	f.gate.set("yt-dlp", true)
	resp = f.request(t, http.MethodGet, "/api/health", nil, nil)
	decodeInto(t, resp, &health)
	if !health.Ready || health.Extractor != "yt-dlp" {
		t.Fatalf("expected readiness to flip without restart, got %#v", health)
	}
}

func TestConvertRateLimited(t *testing.T) {
	f := newFixture(t, withExtractor(&fakeExtractor{output: []byte("x")}), withConvertRate(1, 1))

	first := f.request(t, http.MethodPost, "/api/convert", map[string]string{"url": "https://youtu.be/a"}, nil)
	if first.StatusCode != http.StatusOK {
		t.Fatalf("first status %d", first.StatusCode)
	}
	second := f.request(t, http.MethodPost, "/api/convert", map[string]string{"url": "https://youtu.be/b"}, nil)
	if second.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("second status %d", second.StatusCode)
	}
}

func TestListAudiosFilterAndSort(t *testing.T) {
	f := newFixture(t)
	testsupport.NewAudio(t, f.store, "a1", "Charlie", "Jazz", 10)
	testsupport.NewAudio(t, f.store, "a2", "alpha", "Jazz", 20)
	testsupport.NewAudio(t, f.store, "a3", "Bravo", "Rock", 30)

	resp := f.request(t, http.MethodGet, "/api/audios?category=Jazz&sortBy=title&order=asc", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	var audios []library.AudioAsset
	decodeInto(t, resp, &audios)
	if len(audios) != 2 {
		t.Fatalf("expected 2 audios, got %d", len(audios))
	}
	if audios[0].Title != "alpha" || audios[1].Title != "Charlie" {
		t.Fatalf("unexpected order: %q, %q", audios[0].Title, audios[1].Title)
	}
}

func TestListCategories(t *testing.T) {
	f := newFixture(t)
	testsupport.NewAudio(t, f.store, "a1", "One", "Jazz", 1)
	testsupport.NewAudio(t, f.store, "a2", "Two", "", 1)
	testsupport.NewAudio(t, f.store, "a3", "Three", "Jazz", 1)

	resp := f.request(t, http.MethodGet, "/api/categories", nil, nil)
	var categories []string
	decodeInto(t, resp, &categories)
	if len(categories) != 2 || categories[0] != "Jazz" || categories[1] != "Uncategorized" {
		t.Fatalf("unexpected categories %v", categories)
	}
}

func TestStreamAudioFull(t *testing.T) {
	f := newFixture(t)
	asset := testsupport.NewAudio(t, f.store, "a1", "One", "Jazz", 1000)

	resp := f.request(t, http.MethodGet, "/api/audio/"+asset.ID, nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Accept-Ranges"); got != "bytes" {
		t.Fatalf("Accept-Ranges %q", got)
	}
	if got := resp.Header.Get("Content-Type"); got != "audio/mpeg" {
		t.Fatalf("Content-Type %q", got)
	}
	body, _ := io.ReadAll(resp.Body)
	if len(body) != 1000 {
		t.Fatalf("expected 1000 bytes, got %d", len(body))
	}
}

func TestStreamAudioBoundedRange(t *testing.T) {
	f := newFixture(t)
	asset := testsupport.NewAudio(t, f.store, "a1", "One", "Jazz", 1000)

	resp := f.request(t, http.MethodGet, "/api/audio/"+asset.ID, nil,
		map[string]string{"Range": "bytes=100-199"})
	if resp.StatusCode != http.StatusPartialContent {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Content-Range"); got != "bytes 100-199/1000" {
		t.Fatalf("Content-Range %q", got)
	}
	body, _ := io.ReadAll(resp.Body)
	if len(body) != 100 {
		t.Fatalf("expected 100 bytes, got %d", len(body))
	}
}

func TestStreamAudioOpenEndedRange(t *testing.T) {
	f := newFixture(t)
	asset := testsupport.NewAudio(t, f.store, "a1", "One", "Jazz", 1000)

	resp := f.request(t, http.MethodGet, "/api/audio/"+asset.ID, nil,
		map[string]string{"Range": "bytes=900-"})
	if resp.StatusCode != http.StatusPartialContent {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Content-Range"); got != "bytes 900-999/1000" {
		t.Fatalf("Content-Range %q", got)
	}
	body, _ := io.ReadAll(resp.Body)
	if len(body) != 100 {
		t.Fatalf("expected 100 bytes, got %d", len(body))
	}
}

func TestStreamAudioUnsatisfiableRange(t *testing.T) {
	f := newFixture(t)
	asset := testsupport.NewAudio(t, f.store, "a1", "One", "Jazz", 1000)

	resp := f.request(t, http.MethodGet, "/api/audio/"+asset.ID, nil,
		map[string]string{"Range": "bytes=5000-"})
	if resp.StatusCode != http.StatusRequestedRangeNotSatisfiable {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Content-Range"); got != "bytes */1000" {
		t.Fatalf("Content-Range %q", got)
	}
}

func TestStreamAudioUnknownID(t *testing.T) {
	f := newFixture(t)

	resp := f.request(t, http.MethodGet, "/api/audio/missing", nil, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status %d", resp.StatusCode)
	}
}

func TestStreamAudioBackingFileMissing(t *testing.T) {
	f := newFixture(t)
	asset := testsupport.NewAudio(t, f.store, "a1", "One", "Jazz", 10)
	if err := os.Remove(f.store.AssetPath(asset)); err != nil {
		t.Fatalf("remove backing file: %v", err)
	}

	resp := f.request(t, http.MethodGet, "/api/audio/"+asset.ID, nil, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status %d", resp.StatusCode)
	}
}

func TestPatchAudioCategory(t *testing.T) {
	f := newFixture(t)
	asset := testsupport.NewAudio(t, f.store, "a1", "One", "Jazz", 10)

	resp := f.request(t, http.MethodPatch, "/api/audio/"+asset.ID,
		map[string]string{"category": "Blues"}, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	var updated library.AudioAsset
	decodeInto(t, resp, &updated)
	if updated.Category != "Blues" {
		t.Fatalf("unexpected category %q", updated.Category)
	}
}

func TestDeleteAudioCascades(t *testing.T) {
	f := newFixture(t)
	asset := testsupport.NewAudio(t, f.store, "a1", "One", "Jazz", 10)
	playlist, err := f.store.CreatePlaylist("Mix", "")
	if err != nil {
		t.Fatalf("CreatePlaylist: %v", err)
	}
	ids := []string{asset.ID}
	if _, err := f.store.PatchPlaylist(playlist.ID, library.PlaylistPatch{AudioIDs: &ids}); err != nil {
		t.Fatalf("PatchPlaylist: %v", err)
	}

	resp := f.request(t, http.MethodDelete, "/api/audio/"+asset.ID, nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}

	if _, ok := f.store.GetAudio(asset.ID); ok {
		t.Fatal("expected asset removed")
	}
	if _, err := os.Stat(f.store.AssetPath(asset)); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected backing file removed, got %v", err)
	}
	remaining, ok := f.store.GetPlaylist(playlist.ID)
	if !ok {
		t.Fatal("expected playlist to survive")
	}
	if len(remaining.AudioIDs) != 0 {
		t.Fatalf("expected id scrubbed from playlist, got %v", remaining.AudioIDs)
	}
}

func TestPlaylistLifecycle(t *testing.T) {
	f := newFixture(t)
	first := testsupport.NewAudio(t, f.store, "a1", "One", "Jazz", 10)
	second := testsupport.NewAudio(t, f.store, "a2", "Two", "Jazz", 20)

	resp := f.request(t, http.MethodPost, "/api/playlists",
		map[string]string{"name": "Morning", "description": "wake up"}, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("create status %d", resp.StatusCode)
	}
	var playlist library.Playlist
	decodeInto(t, resp, &playlist)

	resp = f.request(t, http.MethodPatch, "/api/playlist/"+playlist.ID,
		map[string]any{"audioIds": []string{second.ID, "ghost", first.ID}}, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("patch status %d", resp.StatusCode)
	}

	resp = f.request(t, http.MethodGet, "/api/playlist/"+playlist.ID, nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("resolve status %d", resp.StatusCode)
	}
	var resolved library.ResolvedPlaylist
	decodeInto(t, resp, &resolved)
	if len(resolved.Audios) != 2 {
		t.Fatalf("expected ghost id dropped, got %d audios", len(resolved.Audios))
	}
	if resolved.Audios[0].ID != second.ID || resolved.Audios[1].ID != first.ID {
		t.Fatal("expected playlist order preserved")
	}

	resp = f.request(t, http.MethodGet, "/api/playlists", nil, nil)
	var playlists []library.Playlist
	decodeInto(t, resp, &playlists)
	if len(playlists) != 1 {
		t.Fatalf("expected 1 playlist, got %d", len(playlists))
	}

	resp = f.request(t, http.MethodDelete, "/api/playlist/"+playlist.ID, nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete status %d", resp.StatusCode)
	}
	var deleted struct {
		Success bool `json:"success"`
	}
	decodeInto(t, resp, &deleted)
	if !deleted.Success {
		t.Fatal("expected success body")
	}
	resp = f.request(t, http.MethodGet, "/api/playlist/"+playlist.ID, nil, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("resolve after delete status %d", resp.StatusCode)
	}
}

func TestCreatePlaylistRequiresName(t *testing.T) {
	f := newFixture(t)

	resp := f.request(t, http.MethodPost, "/api/playlists", map[string]string{"name": "  "}, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status %d", resp.StatusCode)
	}
}

func TestCORSPreflight(t *testing.T) {
	f := newFixture(t)

	resp := f.request(t, http.MethodOptions, "/api/audios", nil, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("allow origin %q", got)
	}
	expose := resp.Header.Get("Access-Control-Expose-Headers")
	if !strings.Contains(expose, "Content-Range") || !strings.Contains(expose, "X-Audio-Id") {
		t.Fatalf("expose headers %q", expose)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t)
	testsupport.NewAudio(t, f.store, "a1", "One", "Jazz", 10)

	if resp := f.request(t, http.MethodGet, "/api/audios", nil, nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("warmup status %d", resp.StatusCode)
	}

	resp := f.request(t, http.MethodGet, "/metrics", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read metrics: %v", err)
	}
	if !strings.Contains(string(body), "tunecast_http_requests_total") {
		t.Fatal("expected request counter in exposition")
	}
}

func TestInvalidJSONBody(t *testing.T) {
	f := newFixture(t, withExtractor(&fakeExtractor{}))

	req, err := http.NewRequest(http.MethodPost, f.base+"/api/convert", strings.NewReader("{not json"))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := f.client.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status %d", resp.StatusCode)
	}
}

func TestUnmatchedRouteIs404(t *testing.T) {
	f := newFixture(t)

	resp := f.request(t, http.MethodGet, "/api/nope", nil, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status %d", resp.StatusCode)
	}
}
