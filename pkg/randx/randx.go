// Package randx provides the injectable random source used by the synthetic
// parts of the analysis pipeline (fallback quotes, seasonality, history jitter).
package randx

import (
	"math/rand/v2"
	"sync"
	"time"
)

// Source is the subset of *rand.Rand the pipeline needs.
type Source interface {
	Float64() float64
	IntN(n int) int
}

// Locked serialises access to a *rand.Rand so it can be shared between
// concurrent requests.
type Locked struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewLocked wraps rnd. A nil rnd is seeded from the clock.
func NewLocked(rnd *rand.Rand) *Locked {
	if rnd == nil {
		now := uint64(time.Now().UnixNano())
		rnd = rand.New(rand.NewPCG(now, now>>1|1))
	}
	return &Locked{rnd: rnd}
}

// NewSeeded returns a deterministic source, used by tests.
func NewSeeded(seed uint64) *Locked {
	return NewLocked(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}

func (l *Locked) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rnd.Float64()
}

func (l *Locked) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rnd.IntN(n)
}

// Uniform draws from [lo, hi).
func Uniform(src Source, lo, hi float64) float64 {
	return lo + src.Float64()*(hi-lo)
}

// IntRange draws an integer from [lo, hi] inclusive.
func IntRange(src Source, lo, hi int) int {
	return lo + src.IntN(hi-lo+1)
}

// Fixed is a Source returning a constant, for exact-output tests.
type Fixed struct {
	Value float64
	Int   int
}

func (f Fixed) Float64() float64 { return f.Value }

func (f Fixed) IntN(n int) int {
	if f.Int >= n {
		return n - 1
	}
	return f.Int
}
