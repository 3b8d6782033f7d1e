// Package server exposes the HTTP API: the conversion endpoint, catalog and
// playlist CRUD, ranged audio delivery, health, and Prometheus metrics.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"tunecast/internal/config"
	"tunecast/internal/converter"
	"tunecast/internal/deps"
	"tunecast/internal/library"
	"tunecast/internal/logging"
	"tunecast/internal/metrics"
)

// Server hosts the API over a single listener. Start is non-blocking;
// Shutdown drains in-flight requests.
type Server struct {
	store     *library.Store
	converter *converter.Orchestrator
	logger    *slog.Logger
	metrics   *metrics.Metrics
	limiter   *rate.Limiter
	gate      deps.Gate

	httpServer *http.Server
	listener   net.Listener
	bind       string
	done       chan struct{}
}

// New assembles the server with its routes and middleware chain.
func New(cfg *config.Config, store *library.Store, orch *converter.Orchestrator, gate deps.Gate, m *metrics.Metrics, logger *slog.Logger) *Server {
	perMinute := cfg.Server.ConvertRatePerMinute
	if perMinute <= 0 {
		perMinute = 6
	}
	burst := cfg.Server.ConvertBurst
	if burst <= 0 {
		burst = 1
	}

	s := &Server{
		store:     store,
		converter: orch,
		logger:    logging.WithComponent(logger, "api"),
		metrics:   m,
		limiter:   rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), burst),
		gate:      gate,
		bind:      cfg.Paths.APIBind,
		done:      make(chan struct{}),
	}

	mux := http.NewServeMux()
	s.routes(mux)

	s.httpServer = &http.Server{
		Handler:           s.recoverMiddleware(s.corsMiddleware(s.observeMiddleware(mux))),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/convert", s.handleConvert)

	mux.HandleFunc("GET /api/audios", s.handleListAudios)
	mux.HandleFunc("GET /api/categories", s.handleListCategories)
	mux.HandleFunc("GET /api/audio/{id}", s.handleStreamAudio)
	mux.HandleFunc("PATCH /api/audio/{id}", s.handlePatchAudio)
	mux.HandleFunc("DELETE /api/audio/{id}", s.handleDeleteAudio)

	mux.HandleFunc("GET /api/playlists", s.handleListPlaylists)
	mux.HandleFunc("POST /api/playlists", s.handleCreatePlaylist)
	mux.HandleFunc("GET /api/playlist/{id}", s.handleResolvePlaylist)
	mux.HandleFunc("PATCH /api/playlist/{id}", s.handlePatchPlaylist)
	mux.HandleFunc("DELETE /api/playlist/{id}", s.handleDeletePlaylist)

	mux.HandleFunc("GET /api/health", s.handleHealth)

	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics.Handler())
	}
}

// Start binds the listener and serves in the background.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("bind %s: %w", s.bind, err)
	}
	s.listener = listener
	s.logger.Info("api listening", logging.String("addr", listener.Addr().String()))

	go func() {
		defer close(s.done)
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api serve", logging.Error(err))
		}
	}()
	return nil
}

// Addr returns the bound address, valid after Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.bind
	}
	return s.listener.Addr().String()
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.listener == nil {
		return nil
	}
	err := s.httpServer.Shutdown(ctx)
	select {
	case <-s.done:
	case <-ctx.Done():
	}
	return err
}
