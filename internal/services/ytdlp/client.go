package ytdlp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"tunecast/internal/services"
)

// SourceInfo captures the metadata the extractor reports for a source reference.
type SourceInfo struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Duration  float64 `json:"duration"`
	Thumbnail string  `json:"thumbnail"`
}

// Executor abstracts command execution for testability. Implementations must
// honor the context deadline and cap captured output at maxCapture bytes.
type Executor interface {
	Run(ctx context.Context, binary string, args []string, maxCapture int64) ([]byte, error)
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// Client wraps extractor CLI interactions. The extractor delegates the actual
// audio transcode to the configured transcoder binary, which must be on PATH.
type Client struct {
	binary         string
	infoTimeout    time.Duration
	convertTimeout time.Duration
	maxCapture     int64
	audioFormat    string
	audioQuality   string
	exec           Executor
}

// Params bundles the pipeline tunables the client needs.
type Params struct {
	InfoTimeout     time.Duration
	ConvertTimeout  time.Duration
	MaxCaptureBytes int64
	AudioFormat     string
	AudioQuality    string
}

// New constructs an extractor client.
func New(binary string, params Params, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("extractor binary required")
	}
	client := &Client{
		binary:         binary,
		infoTimeout:    params.InfoTimeout,
		convertTimeout: params.ConvertTimeout,
		maxCapture:     params.MaxCaptureBytes,
		audioFormat:    params.AudioFormat,
		audioQuality:   params.AudioQuality,
		exec:           commandExecutor{},
	}
	if client.infoTimeout <= 0 {
		client.infoTimeout = 30 * time.Second
	}
	if client.convertTimeout <= 0 {
		client.convertTimeout = 5 * time.Minute
	}
	if client.maxCapture <= 0 {
		client.maxCapture = 10 * 1024 * 1024
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Probe fetches source metadata without downloading content. The call is
// bounded by the info timeout; callers are expected to degrade to placeholder
// metadata when it fails.
func (c *Client) Probe(ctx context.Context, url string) (SourceInfo, error) {
	probeCtx, cancel := context.WithTimeout(ctx, c.infoTimeout)
	defer cancel()

	output, err := c.exec.Run(probeCtx, c.binary, []string{"--dump-json", "--no-playlist", url}, c.maxCapture)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return SourceInfo{}, services.Wrap(services.ErrTimeout, "extractor", "probe", url, err)
		}
		return SourceInfo{}, services.Wrap(services.ErrConversionFailed, "extractor", "probe",
			firstLine(output), err)
	}

	var info SourceInfo
	if err := json.Unmarshal(output, &info); err != nil {
		return SourceInfo{}, services.Wrap(services.ErrConversionFailed, "extractor", "probe",
			"parse metadata", err)
	}
	return info, nil
}

// Extract runs the full extraction/transcode pipeline, writing the converted
// audio to outputPath. Bounded by the convert timeout and the output capture cap.
func (c *Client) Extract(ctx context.Context, url, outputPath string) error {
	extractCtx, cancel := context.WithTimeout(ctx, c.convertTimeout)
	defer cancel()

	args := []string{
		"-x",
		"--audio-format", c.audioFormat,
		"--audio-quality", c.audioQuality,
		"-o", outputPath,
		url,
	}

	output, err := c.exec.Run(extractCtx, c.binary, args, c.maxCapture)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return services.Wrap(services.ErrTimeout, "extractor", "extract", url, err)
		}
		return services.Wrap(services.ErrConversionFailed, "extractor", "extract",
			firstLine(output), err)
	}
	return nil
}

var sourceIDPattern = regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/)([^&\n?#]+)`)

// SourceID extracts the video id from a source URL. Returns empty when the
// reference doesn't match a known form; the id is provenance only and never
// contributes to asset identity.
func SourceID(url string) string {
	match := sourceIDPattern.FindStringSubmatch(url)
	if len(match) < 2 {
		return ""
	}
	return match[1]
}

func firstLine(output []byte) string {
	text := strings.TrimSpace(string(output))
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		text = text[:idx]
	}
	if len(text) > 200 {
		text = text[:200]
	}
	return text
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string, maxCapture int64) ([]byte, error) {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	buf := newBoundedBuffer(maxCapture)
	cmd.Stdout = buf
	cmd.Stderr = buf

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return buf.Bytes(), fmt.Errorf("run %s: %w", binary, ctxErr)
		}
		return buf.Bytes(), fmt.Errorf("run %s: %w", binary, err)
	}
	return buf.Bytes(), nil
}
