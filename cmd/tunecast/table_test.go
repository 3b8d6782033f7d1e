package main

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestListTablePadsShortRows(t *testing.T) {
	tbl := newListTable([]string{"ID", "Title", "Size"}, 3)
	tbl.addRow("a1", "First", "10 B")
	tbl.addRow("a2")

	out := tbl.render()
	for _, want := range []string{"ID", "Title", "Size", "a1", "First", "a2"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in rendered table:\n%s", want, out)
		}
	}

	lines := strings.Split(out, "\n")
	width := utf8.RuneCountInString(lines[0])
	for _, line := range lines {
		if utf8.RuneCountInString(line) != width {
			t.Fatalf("expected uniform line width, got:\n%s", out)
		}
	}
}

func TestListTableRightAlignsNumericColumns(t *testing.T) {
	tbl := newListTable([]string{"Name", "Tracks"}, 2)
	tbl.addRow("Morning", "3")

	out := tbl.render()
	if !strings.Contains(out, " 3 ") {
		t.Fatalf("expected numeric cell in output:\n%s", out)
	}
	for _, line := range strings.Split(out, "\n") {
		if !strings.Contains(line, "Morning") {
			continue
		}
		trimmed := strings.TrimRight(line, " ")
		if !strings.HasSuffix(trimmed, "3 │") && !strings.HasSuffix(trimmed, "3│") {
			t.Fatalf("expected track count right-aligned, got %q", line)
		}
	}
}
