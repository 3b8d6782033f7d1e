package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func newBufferLogger(t *testing.T, format string, buf *bytes.Buffer) *slog.Logger {
	t.Helper()
	levelVar := new(slog.LevelVar)
	levelVar.Set(slog.LevelDebug)

	var handler slog.Handler
	switch format {
	case "json":
		handler = newJSONHandler(buf, levelVar)
	default:
		handler = newConsoleHandler(buf, levelVar)
	}
	return slog.New(handler)
}

func TestConsoleHandlerRendersComponentPrefix(t *testing.T) {
	var buf bytes.Buffer
	logger := WithComponent(newBufferLogger(t, "console", &buf), "catalog")

	logger.Info("catalog loaded", Int("audios", 3))

	line := buf.String()
	if !strings.Contains(line, "INFO catalog: catalog loaded") {
		t.Fatalf("unexpected line: %q", line)
	}
	if !strings.Contains(line, "audios=3") {
		t.Fatalf("expected attr in line: %q", line)
	}
}

func TestConsoleHandlerQuotesValuesWithSpaces(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(t, "console", &buf)

	logger.Warn("probe degraded", String("title", "Unknown Title"))

	if !strings.Contains(buf.String(), `title="Unknown Title"`) {
		t.Fatalf("expected quoted value: %q", buf.String())
	}
}

func TestJSONHandlerLowercasesLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(t, "json", &buf)

	logger.Error("conversion failed", Error(errors.New("boom")))

	out := buf.String()
	if !strings.Contains(out, `"level":"error"`) {
		t.Fatalf("unexpected json output: %q", out)
	}
	if !strings.Contains(out, `"error":"boom"`) {
		t.Fatalf("expected error attr: %q", out)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := NewNop()
	logger.Info("dropped")
	if handler, ok := logger.Handler().(NoopHandler); !ok {
		t.Fatalf("unexpected handler type %T", handler)
	}
}
