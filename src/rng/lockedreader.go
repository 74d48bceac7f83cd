package rng

import (
	"io"
	"sync"
)

// LockedReader serializes Read calls on a shared entropy source so that
// concurrent requests (and the background health check) never interleave
// partial reads of each other's seed bytes.
type LockedReader struct {
	r  io.Reader
	mu sync.Mutex
}

func (lr *LockedReader) Read(p []byte) (int, error) {
	lr.mu.Lock()
	defer lr.mu.Unlock()
	return io.ReadFull(lr.r, p)
}

// NewLockedReader returns an io.Reader that is safe for concurrent use.
// If r is already a *LockedReader, it is returned as-is.
func NewLockedReader(r io.Reader) io.Reader {
	if r == nil {
		return nil
	}
	if _, ok := r.(*LockedReader); ok {
		return r
	}
	return &LockedReader{r: r}
}
