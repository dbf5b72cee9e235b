// Package random provides the uniform random source used by primality
// testing and key generation.
//
// Consumers only depend on [Source]. Any *math/rand.Rand satisfies it, so
// a seeded generator makes key generation fully reproducible.
package random

import (
	"math"
	"math/rand"
	"time"
)

// Source produces uniformly distributed 64 bit values.
type Source interface {
	Uint64() uint64
}

// New returns a generator seeded with seed.
func New(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// NewTimeSeeded returns a generator seeded from the wall clock, along with
// the seed that was used so a run can be repeated.
func NewTimeSeeded() (*rand.Rand, int64) {
	seed := time.Now().UnixNano()
	return New(seed), seed
}

// Between returns a uniformly distributed value in [lo, hi].
// It panics if lo > hi.
func Between(src Source, lo, hi uint64) uint64 {
	if lo > hi {
		panic("random: empty range")
	}

	span := hi - lo
	if span == math.MaxUint64 {
		return src.Uint64()
	}
	span++

	// reject the uneven tail so every residue is equally likely
	limit := math.MaxUint64 - math.MaxUint64%span
	for {
		v := src.Uint64()
		if v < limit {
			return lo + v%span
		}
	}
}
