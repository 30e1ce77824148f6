package engine

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand/v2"
)

// Source is the randomness behind every roll. *rand.Rand satisfies it.
// Implementations need not be safe for concurrent use; give each goroutine
// its own.
type Source interface {
	// IntN returns a value in [0, n). n > 0.
	IntN(n int) int
}

// D6 rolls one six-sided die.
func D6(src Source) int { return 1 + src.IntN(6) }

// NewRNG returns a reproducible generator for seed.
func NewRNG(seed uint64) *rand.Rand { return NewStream(seed, 0) }

// NewStream returns the stream-th independent generator derived from seed.
func NewStream(seed, stream uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, stream))
}

// NewSeed draws a seed from crypto/rand.
func NewSeed() (uint64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}
