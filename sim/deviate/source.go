// Package deviate supplies the stochastic draws the simulator consumes:
// exponential and uniform deviates from a seedable generator, and
// constructors that turn them into the distribution callables entities take.
package deviate

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/iti/rngstream"
)

// Source produces independent exponential and uniform draws.
type Source interface {
	// Exponential returns a draw from Exp(rate), mean 1/rate.
	Exponential(rate float64) float64
	// Uniform returns a draw from U[lo, hi).
	Uniform(lo, hi float64) float64
}

// Stream is a Source backed by math/rand.
//
// Thread-safety: NOT thread-safe. Must be called from single goroutine.
type Stream struct {
	rng *rand.Rand
}

// NewStream returns a Stream seeded with seed.
func NewStream(seed int64) *Stream {
	return &Stream{rng: rand.New(rand.NewSource(seed))}
}

func (s *Stream) Exponential(rate float64) float64 {
	return s.rng.ExpFloat64() / rate
}

func (s *Stream) Uniform(lo, hi float64) float64 {
	return lo + (hi-lo)*s.rng.Float64()
}

// MRGStream is a Source backed by an MRG32k3a stream.
type MRGStream struct {
	strm *rngstream.RngStream
}

// NewMRGStream creates the next MRG32k3a stream, labelled name. Unseeded
// streams follow the package-wide creation order: the n-th stream created
// in a process always yields the same sequence.
func NewMRGStream(name string) *MRGStream {
	return &MRGStream{strm: rngstream.New(name)}
}

// NewSeededMRGStream creates an MRG32k3a stream whose state is derived from
// seed alone, independent of how many streams the process created before.
func NewSeededMRGStream(name string, seed int64) *MRGStream {
	s := NewMRGStream(name)
	if !s.strm.SetSeed(mrgSeed(seed)) {
		panic(fmt.Sprintf("deviate: invalid MRG32k3a seed derived for %q", name))
	}
	return s
}

// MRG32k3a component moduli; seed words must lie in [1, m) for their half.
const (
	mrgM1 = 4294967087
	mrgM2 = 4294944443
)

// mrgSeed expands seed into six MRG32k3a state words with splitmix64.
// Every word is non-zero and below its component modulus.
func mrgSeed(seed int64) []uint64 {
	x := uint64(seed)
	words := make([]uint64, 6)
	for i := range words {
		x += 0x9e3779b97f4a7c15
		z := x
		z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
		z = (z ^ (z >> 27)) * 0x94d049bb133111eb
		z ^= z >> 31
		m := uint64(mrgM1)
		if i >= 3 {
			m = mrgM2
		}
		words[i] = z%(m-1) + 1
	}
	return words
}

func (s *MRGStream) Exponential(rate float64) float64 {
	// RandU01 lies in (0,1), so the log is finite.
	return -math.Log(s.strm.RandU01()) / rate
}

func (s *MRGStream) Uniform(lo, hi float64) float64 {
	return lo + (hi-lo)*s.strm.RandU01()
}
