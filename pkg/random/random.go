// Package random isolates the engine's randomness (confidence noise,
// probabilistic execution outcomes) behind an interface so tests can
// supply deterministic sequences.
package random

import (
	"math/rand"
	"sync"
	"time"
)

// Source yields values in [0,1).
type Source interface {
	Float64() float64
}

type lockedSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New returns a time-seeded Source safe for concurrent use.
func New() Source {
	return &lockedSource{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// NewSeeded returns a deterministic Source for reproducible runs.
func NewSeeded(seed int64) Source {
	return &lockedSource{rng: rand.New(rand.NewSource(seed))}
}

func (s *lockedSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}

// Fixed cycles through the given values. Test helper.
type Fixed struct {
	mu     sync.Mutex
	values []float64
	idx    int
}

func NewFixed(values ...float64) *Fixed {
	if len(values) == 0 {
		values = []float64{0.5}
	}
	return &Fixed{values: values}
}

func (f *Fixed) Float64() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	v := f.values[f.idx%len(f.values)]
	f.idx++
	return v
}
