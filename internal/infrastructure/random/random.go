// Package random provides the injectable randomness used by the emulators for
// latency, outcomes and synthetic identifiers.
package random

import (
	"fmt"
	"sync"

	"github.com/brianvoe/gofakeit/v7"
)

// Source is the randomness the emulators draw from
type Source interface {
	// Float64 returns a value in [0, 1)
	Float64() float64
	// IntRange returns a value in [min, max]
	IntRange(min, max int) int
	// DigitN returns n random decimal digits
	DigitN(n uint) string
}

// FakerSource is a goroutine-safe Source backed by gofakeit
type FakerSource struct {
	mu    sync.Mutex
	faker *gofakeit.Faker
}

// NewSource creates a Source. A zero seed picks a random seed.
func NewSource(seed uint64) *FakerSource {
	return &FakerSource{faker: gofakeit.New(seed)}
}

// Float64 implements Source
func (s *FakerSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	// Faker.Float64 spans the whole float64 range
	return s.faker.Float64Range(0, 1)
}

// IntRange implements Source
func (s *FakerSource) IntRange(min, max int) int {
	if max <= min {
		return min
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.faker.IntRange(min, max)
}

// DigitN implements Source
func (s *FakerSource) DigitN(n uint) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.faker.DigitN(n)
}

// Fixed is a deterministic Source for tests. Float64 always returns Roll,
// IntRange returns min+Offset clamped to max, and DigitN yields a counter
// left-padded with zeros so successive identifiers stay unique.
type Fixed struct {
	Roll   float64
	Offset int

	mu      sync.Mutex
	counter uint64
}

// Float64 implements Source
func (f *Fixed) Float64() float64 {
	return f.Roll
}

// IntRange implements Source
func (f *Fixed) IntRange(min, max int) int {
	v := min + f.Offset
	if v > max {
		return max
	}
	return v
}

// DigitN implements Source
func (f *Fixed) DigitN(n uint) string {
	f.mu.Lock()
	f.counter++
	c := f.counter
	f.mu.Unlock()

	s := fmt.Sprintf("%0*d", int(n), c)
	return s[len(s)-int(n):]
}
