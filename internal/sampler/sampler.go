// Package sampler draws one option from a weighted candidate set.
package sampler

import (
	"errors"
	"math/rand/v2"
	"sync"

	"github.com/dusk-indust/traitgen/internal/catalog"
)

// ErrEmpty is returned when Select is called without candidates.
var ErrEmpty = errors.New("sampler: no candidates")

// Source supplies uniform floats in [0, 1).
type Source interface {
	Float64() float64
}

// Candidate pairs an option with its working weight for one attempt. The
// working weight may differ from the option's catalog weight when a
// conditional rarity override applies.
type Candidate struct {
	Option catalog.Option
	Weight float64
}

// Default is a Source backed by the runtime's goroutine-safe generator.
var Default Source = globalSource{}

type globalSource struct{}

func (globalSource) Float64() float64 { return rand.Float64() }

// Seeded is a reproducible Source that is safe for concurrent use. Draw
// order across goroutines still follows scheduling, so only single-threaded
// callers get a fully repeatable sequence.
type Seeded struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewSeeded returns a PCG-backed Seeded source.
func NewSeeded(seed uint64) *Seeded {
	return &Seeded{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *Seeded) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Float64()
}

// Select draws one candidate with probability proportional to its weight,
// scanning in slice order. A single candidate is returned without consuming
// randomness. When every weight is zero the last candidate is returned; this
// is a safety fallback, not a selection policy.
func Select(candidates []Candidate, src Source) (Candidate, error) {
	switch len(candidates) {
	case 0:
		return Candidate{}, ErrEmpty
	case 1:
		return candidates[0], nil
	}

	var total float64
	for _, c := range candidates {
		if c.Weight > 0 {
			total += c.Weight
		}
	}
	if total <= 0 {
		return candidates[len(candidates)-1], nil
	}

	if src == nil {
		src = Default
	}
	remaining := src.Float64() * total
	last := -1
	for i, c := range candidates {
		if c.Weight <= 0 {
			continue
		}
		last = i
		remaining -= c.Weight
		if remaining <= 0 {
			return c, nil
		}
	}
	// Floating point drift can leave a sliver of remainder after the scan.
	return candidates[last], nil
}
