// Package ytdlp shells out to a yt-dlp compatible extractor binary for source
// metadata probing and audio extraction. Every invocation is bounded by an
// explicit timeout and a cap on captured tool output, and command execution is
// injectable so tests can simulate success, timeout, and failure without
// touching the host.
package ytdlp
