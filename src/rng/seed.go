package rng

import (
	"encoding/binary"
	"errors"
	"io"
)

// SeedBits is the width of generated seeds. 53 bits survive a round trip
// through a JSON number (an IEEE-754 double) without loss, so clients in any
// language can echo the seed back unchanged.
const SeedBits = 53

const seedMask = uint64(1)<<SeedBits - 1

// NewSeed reads a fresh request seed from r. A failed read marks h unhealthy.
func NewSeed(r io.Reader, h *Health) (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		if h != nil {
			h.Set(false, "error fetching random bytes: "+err.Error())
		}
		return 0, errors.New("error fetching random bytes for seed")
	}
	return binary.BigEndian.Uint64(buf[:]) & seedMask, nil
}
