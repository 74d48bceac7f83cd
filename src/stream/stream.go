// Package stream provides seeded uniform(0,1) draws addressable by index.
//
// Draw i of a seed is the i-th 64-bit little-endian word of a ChaCha20
// keystream keyed with BLAKE2b-256(seed). Word i lives in block i/8; the low
// 32 bits of the block number go to the ChaCha20 counter and the high bits to
// the nonce, so every uint64 index is reachable in constant time and reading
// a range [skip, skip+n) never touches indices below skip.
package stream

import (
	"encoding/binary"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/chacha20"
)

const (
	blockSize     = 64
	wordsPerBlock = blockSize / 8
	keyTag        = "variates/stream/v1"
)

// Draw returns the uniform draw in [0,1) at index for seed. It is a pure
// function of its arguments and safe for concurrent use.
func Draw(seed, index uint64) float64 {
	return NewCursor(seed, index).Next()
}

// Cursor yields consecutive draws of one seed starting at an arbitrary index.
// A Cursor is not safe for concurrent use; create one per goroutine.
type Cursor struct {
	key    [chacha20.KeySize]byte
	cipher *chacha20.Cipher
	block  uint64
	buf    [blockSize]byte
	pos    int
}

// NewCursor positions a cursor so that its first Next returns Draw(seed, start).
func NewCursor(seed, start uint64) *Cursor {
	c := &Cursor{key: deriveKey(seed), block: start / wordsPerBlock}
	c.rekey()
	c.fill()
	c.pos = int(start % wordsPerBlock)
	return c
}

// Next returns the current draw and advances by one index.
func (c *Cursor) Next() float64 {
	if c.pos == wordsPerBlock {
		c.block++
		if uint32(c.block) == 0 {
			c.rekey()
		}
		c.fill()
		c.pos = 0
	}
	w := binary.LittleEndian.Uint64(c.buf[c.pos*8:])
	c.pos++
	// top 53 bits give an exactly representable value in [0,1)
	return float64(w>>11) * 0x1p-53
}

func (c *Cursor) rekey() {
	var nonce [chacha20.NonceSize]byte
	binary.LittleEndian.PutUint32(nonce[:4], uint32(c.block>>32))
	ciph, err := chacha20.NewUnauthenticatedCipher(c.key[:], nonce[:])
	if err != nil {
		// only reachable with a malformed key or nonce length
		panic(err)
	}
	ciph.SetCounter(uint32(c.block))
	c.cipher = ciph
}

func (c *Cursor) fill() {
	clear(c.buf[:])
	c.cipher.XORKeyStream(c.buf[:], c.buf[:])
}

func deriveKey(seed uint64) [chacha20.KeySize]byte {
	msg := make([]byte, len(keyTag)+8)
	copy(msg, keyTag)
	binary.LittleEndian.PutUint64(msg[len(keyTag):], seed)
	return blake2b.Sum256(msg)
}
