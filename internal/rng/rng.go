// Package rng provides explicitly owned random sources for the thermostat.
//
// A run never touches a process-wide generator. Each [Stream] is created
// from a (seed, stream) pair, so independent streams can run side by side,
// for example in parallel tests or ensemble replicas, without influencing
// each other:
//
//	src := rng.New(123, 0)
//	replica := rng.New(123, 1)
//
// The same pair always yields the same sequence of draws.
package rng

import "math/rand/v2"

// Source produces standard-normal variates. Implementations are not safe
// for concurrent use; each run owns its source.
type Source interface {
	NormFloat64() float64
}

// Stream is a deterministic PCG-backed Source.
type Stream struct {
	seed   uint64
	stream uint64
	r      *rand.Rand
	draws  uint64
}

func New(seed, stream uint64) *Stream {
	return &Stream{
		seed:   seed,
		stream: stream,
		r:      rand.New(rand.NewPCG(seed, stream)),
	}
}

func (s *Stream) NormFloat64() float64 {
	s.draws++
	return s.r.NormFloat64()
}

// Fill writes len(dst) consecutive draws into dst.
func (s *Stream) Fill(dst []float64) {
	for i := range dst {
		dst[i] = s.NormFloat64()
	}
}

// Draws reports how many variates have been consumed.
func (s *Stream) Draws() uint64 { return s.draws }

// Identity returns the (seed, stream) pair for logging and run metadata.
func (s *Stream) Identity() (seed, stream uint64) { return s.seed, s.stream }

// Split derives the i-th child stream sharing this stream's seed. Children
// are independent of the parent and of each other.
func (s *Stream) Split(i uint64) *Stream {
	return New(s.seed, s.stream+1+i)
}
