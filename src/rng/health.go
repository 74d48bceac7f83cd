package rng

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"
)

// stuckRepeats is the number of identical consecutive 32-bit samples after
// which the periodic check declares the source stuck.
const stuckRepeats = 20

// Health tracks whether the entropy source can be trusted for new seeds.
// Requests that carry their own seed do not depend on it.
type Health struct {
	mu            sync.RWMutex
	ok            bool
	lastErr       string
	lastCheckedAt time.Time
	lastSample32  uint32
	repeatCount32 int
}

func NewHealth() *Health { return &Health{ok: false} }

func (h *Health) Set(ok bool, errMsg string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ok = ok
	h.lastErr = errMsg
	h.lastCheckedAt = time.Now()
}

func (h *Health) Snapshot() (ok bool, errMsg string, t time.Time) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.ok, h.lastErr, h.lastCheckedAt
}

// HealthCheckRNG reads a 256-byte sample and rejects obviously broken output:
// a disconnected device, constant bytes, repeating words or a tiny alphabet.
// It cannot prove randomness.
func HealthCheckRNG(r io.Reader, h *Health) error {
	buf := make([]byte, 256)
	if _, err := io.ReadFull(r, buf); err != nil {
		return fmt.Errorf("entropy source read failed: %w", err)
	}

	allSame := true
	for i := 1; i < len(buf); i++ {
		if buf[i] != buf[0] {
			allSame = false
			break
		}
	}
	if allSame {
		return errors.New("entropy source appears stuck (all sampled bytes identical)")
	}

	var prev uint32
	repeats, words := 0, 0
	for i := 0; i+4 <= len(buf); i += 4 {
		w := binary.BigEndian.Uint32(buf[i : i+4])
		if words > 0 && w == prev {
			repeats++
		}
		prev = w
		words++
	}
	if repeats > (words-1)*3/4 {
		return errors.New("entropy source appears stuck (32-bit words repeating excessively)")
	}
	if h != nil {
		h.mu.Lock()
		h.lastSample32 = prev
		h.repeatCount32 = 0
		h.mu.Unlock()
	}

	distinct := make(map[byte]struct{}, 256)
	for _, b := range buf {
		distinct[b] = struct{}{}
	}
	if len(distinct) < 8 {
		return fmt.Errorf("entropy sample has too few distinct byte values (%d); suspicious", len(distinct))
	}

	return nil
}

// PeriodicHealthCheck samples one word from r every interval until ctx is
// done, updating h and logging every change of state.
func PeriodicHealthCheck(ctx context.Context, r io.Reader, h *Health, every time.Duration, log *zap.SugaredLogger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		wasOK, _, _ := h.Snapshot()
		ok, msg := sampleOnce(r, h)
		if ok != wasOK && log != nil {
			if ok {
				log.Infow("entropy source healthy again")
			} else {
				log.Warnw("entropy source unhealthy", "reason", msg)
			}
		}
	}
}

func sampleOnce(r io.Reader, h *Health) (bool, string) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		msg := "entropy source read failed: " + err.Error()
		h.Set(false, msg)
		return false, msg
	}
	w := binary.BigEndian.Uint32(buf[:])

	h.mu.Lock()
	defer h.mu.Unlock()
	if w == h.lastSample32 {
		h.repeatCount32++
	} else {
		h.repeatCount32 = 0
	}
	h.lastSample32 = w
	h.lastCheckedAt = time.Now()

	if h.repeatCount32 >= stuckRepeats {
		h.ok = false
		h.lastErr = "entropy source appears stuck (repeating identical 32-bit outputs)"
		return false, h.lastErr
	}
	h.ok = true
	h.lastErr = ""
	return true, ""
}
