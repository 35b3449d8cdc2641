// Package rng provides the seeded random source used for action sampling.
//
// Sampling must be reproducible across hosts and runs: the same explicit
// seed always yields the same sample stream. Raw seeds are first passed
// through a fixed splitmix64 finalizer so that correlated inputs (0, 1, 2...)
// still produce well spread generator states.
package rng

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"

	exprand "golang.org/x/exp/rand"
)

// Mix maps a raw 64-bit seed to the effective seed via the splitmix64
// finalizer. The constants are fixed; changing them breaks recorded
// sample streams.
func Mix(seed uint64) uint64 {
	z := seed + 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

// Source is a deterministic random source backed by a PCG generator.
// It is not safe for concurrent use.
type Source struct {
	rand *exprand.Rand
	seed uint64
}

// New creates a Source from an explicit seed. Two sources created with the
// same seed produce identical sample streams.
func New(seed uint64) *Source {
	effective := Mix(seed)
	return &Source{
		rand: exprand.New(exprand.NewSource(effective)),
		seed: effective,
	}
}

// NewFromEntropy creates a Source seeded from process entropy and returns
// the effective seed, which can be fed back to New to reproduce the stream.
func NewFromEntropy() (*Source, error) {
	var buf [8]byte
	if _, err := crand.Read(buf[:]); err != nil {
		return nil, fmt.Errorf("failed to draw entropy: %w", err)
	}
	return New(binary.LittleEndian.Uint64(buf[:])), nil
}

// EffectiveSeed returns the mixed seed currently driving the source.
func (s *Source) EffectiveSeed() uint64 {
	return s.seed
}

// Reseed replaces the generator state. Samples already drawn are unaffected.
func (s *Source) Reseed(seed uint64) {
	s.seed = Mix(seed)
	s.rand = exprand.New(exprand.NewSource(s.seed))
}

// Uint64 draws the next 64-bit value and advances the source.
func (s *Source) Uint64() uint64 {
	return s.rand.Uint64()
}

// Intn draws a uniform value in [0, n). Panics if n <= 0.
func (s *Source) Intn(n int) int {
	return s.rand.Intn(n)
}

// Bit draws a single uniform bit as 0 or 1.
func (s *Source) Bit() int {
	return int(s.rand.Uint64() >> 63)
}
