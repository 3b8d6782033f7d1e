// Package converter orchestrates the conversion pipeline: gate on external
// tool availability, probe source metadata, run the extraction/transcode
// tools, verify the output, and commit the resulting asset to the catalog.
package converter

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"tunecast/internal/deps"
	"tunecast/internal/library"
	"tunecast/internal/logging"
	"tunecast/internal/metrics"
	"tunecast/internal/services"
	"tunecast/internal/services/ytdlp"
)

// Extractor is the tool surface the pipeline drives. Satisfied by
// *ytdlp.Client; tests substitute fakes.
type Extractor interface {
	Probe(ctx context.Context, url string) (ytdlp.SourceInfo, error)
	Extract(ctx context.Context, url, outputPath string) error
}

// Orchestrator runs conversions end to end. Tool availability is consulted
// through the gate on every call, never cached, so both binaries must resolve
// at the moment a conversion starts and installing them later requires no
// restart.
type Orchestrator struct {
	store       *library.Store
	gate        deps.Gate
	audioFormat string
	logger      *slog.Logger
	metrics     *metrics.Metrics

	now          func() time.Time
	newID        func() string
	newExtractor func(binary string) (Extractor, error)

	mu      sync.Mutex
	clients map[string]Extractor
}

// Option configures the orchestrator.
type Option func(*Orchestrator)

// WithMetrics wires conversion outcome instrumentation.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *Orchestrator) {
		o.metrics = m
	}
}

// WithClock overrides the time source (tests only).
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

// WithExtractorFactory overrides extractor client construction (tests only).
func WithExtractorFactory(factory func(binary string) (Extractor, error)) Option {
	return func(o *Orchestrator) {
		if factory != nil {
			o.newExtractor = factory
		}
	}
}

// New constructs the orchestrator. params configures the extractor clients
// built for whichever binary the gate detects; params.AudioFormat also decides
// the output file extension.
func New(store *library.Store, gate deps.Gate, params ytdlp.Params, logger *slog.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:       store,
		gate:        gate,
		audioFormat: strings.TrimSpace(params.AudioFormat),
		logger:      logging.WithComponent(logger, "converter"),
		now:         time.Now,
		newID:       uuid.NewString,
		clients:     make(map[string]Extractor),
	}
	o.newExtractor = func(binary string) (Extractor, error) {
		return ytdlp.New(binary, params)
	}
	if o.audioFormat == "" {
		o.audioFormat = "mp3"
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Available reports whether both external tools currently resolve.
func (o *Orchestrator) Available() bool {
	_, extractorOK := o.gate.Extractor()
	_, transcoderOK := o.gate.Transcoder()
	return extractorOK && transcoderOK
}

// Convert runs the full pipeline for one source URL and returns the committed
// asset. Both tools are re-checked before anything is invoked; a missing one
// fails fast without touching the catalog. Probe failures degrade to
// placeholder metadata rather than aborting; every later failure leaves the
// catalog unchanged.
func (o *Orchestrator) Convert(ctx context.Context, url, category string) (library.AudioAsset, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return library.AudioAsset{}, services.Wrap(services.ErrValidation, "converter", "convert",
			"url is required", nil)
	}

	binary, ok := o.gate.Extractor()
	if !ok {
		return library.AudioAsset{}, services.Wrap(services.ErrToolUnavailable, "converter", "convert",
			"no extractor binary available", nil)
	}
	if transcoder, ok := o.gate.Transcoder(); !ok {
		return library.AudioAsset{}, services.Wrap(services.ErrToolUnavailable, "converter", "convert",
			fmt.Sprintf("transcoder %s not available", transcoder), nil)
	}

	client, err := o.extractorClient(binary)
	if err != nil {
		return library.AudioAsset{}, services.Wrap(services.ErrToolUnavailable, "converter", "convert",
			fmt.Sprintf("init extractor %s", binary), err)
	}

	started := o.now()
	asset, err := o.run(ctx, client, url, category, started)
	if o.metrics != nil {
		o.metrics.ObserveConversion(err == nil, o.now().Sub(started))
	}
	if err != nil {
		o.logger.Error("conversion failed", logging.String("url", url), logging.Error(err))
		return library.AudioAsset{}, err
	}

	o.logger.Info("conversion complete",
		logging.String("id", asset.ID),
		logging.String("title", asset.Title),
		logging.Int64("size", asset.FileSize))
	return asset, nil
}

// extractorClient reuses one client per detected binary so a stable host
// builds the client once while a changed PATH still picks up the new tool.
func (o *Orchestrator) extractorClient(binary string) (Extractor, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if client, ok := o.clients[binary]; ok {
		return client, nil
	}
	client, err := o.newExtractor(binary)
	if err != nil {
		return nil, err
	}
	o.clients[binary] = client
	return client, nil
}

func (o *Orchestrator) run(ctx context.Context, client Extractor, url, category string, started time.Time) (library.AudioAsset, error) {
	info, err := client.Probe(ctx, url)
	if err != nil {
		o.logger.Warn("metadata probe failed, using placeholders",
			logging.String("url", url), logging.Error(err))
		info = ytdlp.SourceInfo{Title: "Unknown"}
	}
	if strings.TrimSpace(info.Title) == "" {
		info.Title = "Unknown"
	}

	sourceID := ytdlp.SourceID(url)
	token := sourceID
	if token == "" {
		token = fmt.Sprintf("%d", started.UnixMilli())
	}
	filename := fmt.Sprintf("%s_%s_%d.%s", sanitizeTitle(info.Title), token, started.UnixMilli(), o.audioFormat)

	asset := library.AudioAsset{
		ID:        o.newID(),
		SourceID:  sourceID,
		Title:     info.Title,
		Filename:  filename,
		SourceURL: url,
		Category:  library.NormalizeCategory(category),
		Duration:  info.Duration,
		CreatedAt: started.UTC(),
		Thumbnail: info.Thumbnail,
	}

	outputPath := o.store.AssetPath(asset)

	// The extractor refuses to overwrite existing output. The name embeds a
	// millisecond timestamp so collisions shouldn't happen, but clear stale
	// leftovers anyway.
	if err := os.Remove(outputPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return library.AudioAsset{}, services.Wrap(services.ErrIO, "converter", "convert",
			fmt.Sprintf("clear stale output %s", filename), err)
	}

	if err := client.Extract(ctx, url, outputPath); err != nil {
		return library.AudioAsset{}, err
	}

	stat, err := os.Stat(outputPath)
	if err != nil {
		return library.AudioAsset{}, services.Wrap(services.ErrConversionFailed, "converter", "convert",
			"extractor reported success but produced no output", err)
	}
	asset.FileSize = stat.Size()

	if err := o.store.AddAudio(asset); err != nil {
		if removeErr := os.Remove(outputPath); removeErr != nil {
			o.logger.Warn("orphaned conversion output", logging.String("path", outputPath), logging.Error(removeErr))
		}
		return library.AudioAsset{}, err
	}
	return asset, nil
}
