package converter

import (
	"regexp"
	"strings"
)

var (
	unsafeChars = regexp.MustCompile(`[^\w\s-]`)
	whitespace  = regexp.MustCompile(`\s+`)
)

const maxTitleLen = 50

// sanitizeTitle reduces a source title to a filesystem-safe fragment: strip
// everything outside word characters, whitespace, and hyphens, then collapse
// whitespace runs to underscores and cap the length.
func sanitizeTitle(title string) string {
	cleaned := unsafeChars.ReplaceAllString(title, "")
	cleaned = whitespace.ReplaceAllString(strings.TrimSpace(cleaned), "_")
	if len(cleaned) > maxTitleLen {
		cleaned = cleaned[:maxTitleLen]
	}
	if cleaned == "" {
		return "audio"
	}
	return cleaned
}
