package utils

import (
	"math/rand"
	"time"
)

// RandSource is a seedable random number generator passed explicitly to
// everything that draws random values. A zero seed picks a time-based seed.
type RandSource struct {
	seed int64
	rng  *rand.Rand
}

// NewRandSource creates a new random source with the given seed
func NewRandSource(seed int64) *RandSource {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &RandSource{
		seed: seed,
		rng:  rand.New(rand.NewSource(seed)),
	}
}

// Seed returns the effective seed the source was created with
func (r *RandSource) Seed() int64 {
	return r.seed
}

// Float64 returns a random float64 in [0.0, 1.0)
func (r *RandSource) Float64() float64 {
	return r.rng.Float64()
}

// Float64s fills dst with random float64 values in [0.0, 1.0).
// This is the bulk-draw entry point: one call fills an entire buffer
// instead of paying per-value call overhead at the caller.
func (r *RandSource) Float64s(dst []float64) {
	for i := range dst {
		dst[i] = r.rng.Float64()
	}
}

// Fork derives an independent source for partition i, deterministically
// from this source's seed. Forking the same source with the same index
// always yields an identical stream.
func (r *RandSource) Fork(i int) *RandSource {
	// Mix in unsigned space; the odd multiplier does not fit in int64.
	derived := int64(uint64(r.seed) ^ (0x9E3779B97F4A7C15 * uint64(i+1)))
	if derived == 0 {
		derived = 1
	}
	return NewRandSource(derived)
}
