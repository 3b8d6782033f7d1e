package server

import (
	"strconv"
	"strings"
)

// byteRange is an inclusive byte span within a file of known size.
type byteRange struct {
	start int64
	end   int64
}

func (r byteRange) length() int64 {
	return r.end - r.start + 1
}

// parseRange interprets a single-span Range header against the given file
// size. The second return distinguishes "no range requested" from a present
// header; ok reports whether a present header was satisfiable. Multi-span
// requests and suffix ranges are rejected, matching the delivery contract of
// one span with a mandatory start offset. An end past the file is clamped.
func parseRange(header string, size int64) (r byteRange, present, ok bool) {
	header = strings.TrimSpace(header)
	if header == "" {
		return byteRange{}, false, false
	}
	present = true

	spec, found := strings.CutPrefix(header, "bytes=")
	if !found || strings.Contains(spec, ",") {
		return byteRange{}, present, false
	}

	startText, endText, found := strings.Cut(spec, "-")
	if !found {
		return byteRange{}, present, false
	}

	start, err := strconv.ParseInt(strings.TrimSpace(startText), 10, 64)
	if err != nil || start < 0 || start >= size {
		return byteRange{}, present, false
	}

	end := size - 1
	if trimmed := strings.TrimSpace(endText); trimmed != "" {
		end, err = strconv.ParseInt(trimmed, 10, 64)
		if err != nil || end < start {
			return byteRange{}, present, false
		}
		if end >= size {
			end = size - 1
		}
	}

	return byteRange{start: start, end: end}, present, true
}
