package deps

import (
	"os"
	"path/filepath"
	"testing"
)

func writeStub(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write stub %s: %v", name, err)
	}
	return path
}

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := writeStub(t, binDir, "present")

	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Unset", Command: "  "},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}
	if !results[0].Available {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}
	if results[1].Available {
		t.Fatal("expected missing binary to be unavailable")
	}
	if results[1].Detail == "" {
		t.Fatal("expected detail message for missing binary")
	}
	if results[2].Detail != "command not configured" {
		t.Fatalf("unexpected detail for unset command: %q", results[2].Detail)
	}
}

func TestDetectExtractorPriorityOrder(t *testing.T) {
	binDir := t.TempDir()
	writeStub(t, binDir, "youtube-dl")
	t.Setenv("PATH", binDir)

	name, ok := DetectExtractor([]string{"yt-dlp", "youtube-dl"})
	if !ok {
		t.Fatal("expected an extractor to be detected")
	}
	if name != "youtube-dl" {
		t.Fatalf("expected fallback candidate, got %s", name)
	}

	writeStub(t, binDir, "yt-dlp")
	name, ok = DetectExtractor([]string{"yt-dlp", "youtube-dl"})
	if !ok || name != "yt-dlp" {
		t.Fatalf("expected first candidate to win, got %s ok=%v", name, ok)
	}
}

func TestDetectExtractorNoneAvailable(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	if name, ok := DetectExtractor([]string{"yt-dlp", "youtube-dl"}); ok {
		t.Fatalf("expected no extractor, got %s", name)
	}
}

func TestDetectTranscoder(t *testing.T) {
	binDir := t.TempDir()
	writeStub(t, binDir, "ffmpeg")
	t.Setenv("PATH", binDir)

	if !DetectTranscoder("ffmpeg") {
		t.Fatal("expected ffmpeg stub to be detected")
	}
	if DetectTranscoder("not-a-transcoder") {
		t.Fatal("expected unknown transcoder to be absent")
	}
	if DetectTranscoder("") {
		t.Fatal("expected empty binary name to be absent")
	}
}
