package ytdlp

import (
	"bytes"
	"sync"
)

// boundedBuffer retains at most max bytes of tool output. Writes past the cap
// are counted but discarded, so a chatty pipeline cannot grow process memory
// while its pipes keep draining.
type boundedBuffer struct {
	mu      sync.Mutex
	buf     bytes.Buffer
	max     int64
	dropped int64
}

func newBoundedBuffer(max int64) *boundedBuffer {
	return &boundedBuffer{max: max}
}

func (b *boundedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	length := len(p)
	remaining := b.max - int64(b.buf.Len())
	if remaining <= 0 {
		b.dropped += int64(length)
		return length, nil
	}
	if int64(length) > remaining {
		b.dropped += int64(length) - remaining
		p = p[:remaining]
	}
	b.buf.Write(p)
	return length, nil
}

func (b *boundedBuffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return bytes.Clone(b.buf.Bytes())
}

// Dropped reports how many bytes were discarded past the cap.
func (b *boundedBuffer) Dropped() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropped
}
