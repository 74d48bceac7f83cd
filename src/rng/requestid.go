package rng

import (
	"io"

	"github.com/google/uuid"
)

// NewRequestID generates a UUIDv4 from the same entropy stream as seeds.
// Callers draw it only after the response has been computed.
func NewRequestID(r io.Reader) (string, error) {
	id, err := uuid.NewRandomFromReader(r)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
