package main

import (
	"context"
	"log"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"tunecast/internal/config"
	"tunecast/internal/converter"
	"tunecast/internal/deps"
	"tunecast/internal/library"
	"tunecast/internal/logging"
	"tunecast/internal/metrics"
	"tunecast/internal/server"
	"tunecast/internal/services/ytdlp"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	store, err := library.Open(cfg, logger)
	if err != nil {
		logger.Error("open catalog", logging.Error(err))
		return
	}
	defer store.Close()

	gate := deps.Checker{
		ExtractorCandidates: cfg.Tools.ExtractorCandidates,
		TranscoderBinary:    cfg.Tools.Transcoder,
	}
	warnMissingTools(gate, logger)

	m := metrics.New()
	audios, playlists := store.Counts()
	m.SetCatalogCounts(audios, playlists)

	orch := converter.New(store, gate, ytdlp.Params{
		InfoTimeout:     time.Duration(cfg.Conversion.InfoTimeout) * time.Second,
		ConvertTimeout:  time.Duration(cfg.Conversion.ConvertTimeout) * time.Second,
		MaxCaptureBytes: cfg.Conversion.MaxCaptureBytes,
		AudioFormat:     cfg.Conversion.AudioFormat,
		AudioQuality:    cfg.Conversion.AudioQuality,
	}, logger, converter.WithMetrics(m))

	srv := server.New(cfg, store, orch, gate, m, logger)
	if err := srv.Start(); err != nil {
		logger.Error("start api server", logging.Error(err))
		return
	}

	<-ctx.Done()
	logger.Info("tunecastd shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("api shutdown", logging.Error(err))
	}
}

// warnMissingTools logs tooling gaps at startup. The daemon still serves the
// catalog without them, and the gate re-probes on every conversion and health
// check, so installing a tool later needs no restart.
func warnMissingTools(gate deps.Checker, logger *slog.Logger) {
	if _, ok := gate.Extractor(); !ok {
		logger.Warn("no extractor binary found, conversions disabled until one is installed",
			logging.Any("candidates", gate.ExtractorCandidates))
	}
	if transcoder, ok := gate.Transcoder(); !ok {
		logger.Warn("transcoder binary not found, conversions disabled until it is installed",
			logging.String("binary", transcoder))
	}
}
