package infrastructure

import (
	"strings"
	"sync"
)

// headBuffer keeps the first limit bytes written to it and discards the
// rest. The browser writes from its own goroutine while the renderer reads,
// so access is locked.
type headBuffer struct {
	mu    sync.Mutex
	buf   []byte
	limit int
}

func newHeadBuffer(limit int) *headBuffer {
	return &headBuffer{limit: limit}
}

// Write always reports the full length so the writer never sees a short write.
func (b *headBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	room := b.limit - len(b.buf)
	switch {
	case b.limit <= 0:
		b.buf = append(b.buf, p...)
	case room >= len(p):
		b.buf = append(b.buf, p...)
	default:
		if room > 0 {
			b.buf = append(b.buf, p[:room]...)
		}
	}
	return len(p), nil
}

func (b *headBuffer) WriteLine(s string) {
	if !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	_, _ = b.Write([]byte(s))
}

func (b *headBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return string(b.buf)
}
