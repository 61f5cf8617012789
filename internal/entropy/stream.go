// Package entropy provides the seeded random stream behind every stochastic
// decision in the simulation. The stream's complete internal state can be
// captured and restored, so a resumed game continues draw-for-draw.
package entropy

import (
	"crypto/rand"
	"encoding"
	"encoding/binary"
	"fmt"
	mrand "math/rand/v2"
)

// streamSalt decorrelates the second PCG word from the seed.
const streamSalt = 0x9e3779b97f4a7c15

// Source is the draw surface consumed by the engine.
type Source interface {
	// Float returns a uniform float64 in [0, 1).
	Float() float64
	// Uniform returns a uniform float64 in [lo, hi).
	Uniform(lo, hi float64) float64
	// IntN returns a uniform int in [0, n). Panics if n <= 0.
	IntN(n int) int
}

// StatefulSource is a Source whose state survives a save/load cycle.
type StatefulSource interface {
	Source
	encoding.BinaryMarshaler
}

// Stream is a PCG-backed Source. It is not safe for concurrent use; the
// owning simulation serializes access.
type Stream struct {
	pcg *mrand.PCG
	rng *mrand.Rand
}

// New creates a stream seeded deterministically from seed.
func New(seed int64) *Stream {
	pcg := mrand.NewPCG(uint64(seed), uint64(seed)^streamSalt)
	return &Stream{pcg: pcg, rng: mrand.New(pcg)}
}

// NewUnseeded creates a stream seeded from crypto/rand. Only top-level
// construction should use this; the resulting trajectory is still replayable
// from its saved state.
func NewUnseeded() *Stream {
	return New(CryptoSeed())
}

// Restore rebuilds a stream from bytes produced by MarshalBinary.
func Restore(state []byte) (*Stream, error) {
	s := New(0)
	if err := s.UnmarshalBinary(state); err != nil {
		return nil, err
	}
	return s, nil
}

// Float returns a uniform float64 in [0, 1).
func (s *Stream) Float() float64 {
	return s.rng.Float64()
}

// Uniform returns a uniform float64 in [lo, hi).
func (s *Stream) Uniform(lo, hi float64) float64 {
	return lo + (hi-lo)*s.rng.Float64()
}

// IntN returns a uniform int in [0, n).
func (s *Stream) IntN(n int) int {
	return s.rng.IntN(n)
}

// MarshalBinary captures the full generator state.
func (s *Stream) MarshalBinary() ([]byte, error) {
	return s.pcg.MarshalBinary()
}

// UnmarshalBinary replaces the generator state with a captured one.
func (s *Stream) UnmarshalBinary(data []byte) error {
	if err := s.pcg.UnmarshalBinary(data); err != nil {
		return fmt.Errorf("restore stream: %w", err)
	}
	return nil
}

// CryptoSeed returns a seed drawn from crypto/rand.
func CryptoSeed() int64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// crypto/rand does not fail on supported platforms.
		panic(fmt.Sprintf("entropy: crypto seed: %v", err))
	}
	return int64(binary.LittleEndian.Uint64(buf[:]) >> 1)
}
