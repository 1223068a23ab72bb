package oram

import (
	"crypto/rand"
	"encoding/binary"
)

// LeafSource supplies the randomness used to draw position-map leaves.
// Implementations need not be safe for concurrent use.
type LeafSource interface {
	Uint64() uint64
}

// Xorshift64 is a deterministic, seedable bit-mixing generator. Use it when
// access sequences must be reproducible; it is not cryptographically secure.
type Xorshift64 struct {
	state uint64
}

// NewXorshift64 creates a generator from seed. A zero seed is a fixed point
// of the xorshift mix and is replaced with a nonzero constant.
func NewXorshift64(seed uint64) *Xorshift64 {
	if seed == 0 {
		seed = 0x9e3779b97f4a7c15
	}
	return &Xorshift64{state: seed}
}

// Uint64 advances the generator and returns the next value.
func (x *Xorshift64) Uint64() uint64 {
	v := x.state
	v ^= v << 13
	v ^= v >> 7
	v ^= v << 17
	x.state = v
	return v
}

// CryptoSource draws from crypto/rand. It is the default leaf source.
type CryptoSource struct{}

// Uint64 returns a cryptographically random value.
func (CryptoSource) Uint64() uint64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		panic("crypto/rand failed: " + err.Error())
	}
	return binary.LittleEndian.Uint64(buf[:])
}
