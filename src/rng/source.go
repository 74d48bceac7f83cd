package rng

import (
	"crypto/rand"
	"fmt"
	"io"

	"github.com/tarm/serial"

	"github.com/lost-woods/variates/src/config"
)

// NewSource opens the entropy source used to pick fresh request seeds and
// request ids, then runs an initial health check on it. A configured serial
// TRNG is preferred; otherwise the operating system's entropy is used.
// The returned reader is safe for concurrent use.
func NewSource(cfg config.SerialConfig) (io.Reader, *Health, error) {
	var raw io.Reader = rand.Reader
	if cfg.Enabled() {
		p, err := serial.OpenPort(&serial.Config{
			Name:        cfg.Device,
			Baud:        cfg.Baud,
			Size:        8,
			ReadTimeout: cfg.ReadTimeout,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("opening serial entropy source %s: %w", cfg.Device, err)
		}
		raw = p
	}

	r := NewLockedReader(raw)
	h := NewHealth()
	if err := HealthCheckRNG(r, h); err != nil {
		h.Set(false, err.Error())
		return nil, h, err
	}
	h.Set(true, "")

	return r, h, nil
}
