// Package rarity scores generated combinations by how common their options
// are across the collection.
package rarity

import (
	"math"
	"sort"

	"github.com/dusk-indust/traitgen/internal/catalog"
	"github.com/dusk-indust/traitgen/internal/collection"
)

// Scorer accumulates option and combination frequencies. It is owned by a
// single generation run and is not safe for concurrent use.
type Scorer struct {
	optionFreq map[string]int
	comboFreq  map[string]int
	total      int
}

// NewScorer returns an empty Scorer.
func NewScorer() *Scorer {
	return &Scorer{
		optionFreq: make(map[string]int),
		comboFreq:  make(map[string]int),
	}
}

// Record counts every option of c and its signature. Call once per
// accepted combination.
func (s *Scorer) Record(c *collection.Combination) {
	for _, o := range c.Options {
		s.optionFreq[o.Key()]++
	}
	s.comboFreq[c.Signature()]++
	s.total++
}

// Total returns the number of recorded combinations.
func (s *Scorer) Total() int {
	return s.total
}

// OptionFrequency returns how many recorded combinations contain key.
func (s *Scorer) OptionFrequency(key string) int {
	return s.optionFreq[key]
}

// SignatureFrequency returns how many recorded combinations share sig.
func (s *Scorer) SignatureFrequency(sig string) int {
	return s.comboFreq[sig]
}

// Calculate scores options against the frequencies recorded so far. Each
// option scores frequency/total; the overall score is the geometric mean of
// the option scores.
func (s *Scorer) Calculate(options []catalog.Option) collection.Rarity {
	r := collection.Rarity{PerOption: make([]collection.OptionRarity, len(options))}
	if len(options) == 0 {
		return r
	}

	logSum := 0.0
	zero := false
	for i, o := range options {
		var v float64
		if s.total > 0 {
			v = float64(s.optionFreq[o.Key()]) / float64(s.total)
		}
		r.PerOption[i] = collection.OptionRarity{Key: o.Key(), Rarity: v}
		if v == 0 {
			zero = true
			continue
		}
		logSum += math.Log(v)
	}
	if !zero {
		r.Overall = math.Exp(logSum / float64(len(options)))
	}
	return r
}

// Finalize assigns rank and percentile across the complete collection,
// ordering by overall score descending and by id on ties. combos is not
// reordered.
func Finalize(combos []*collection.Combination) {
	ordered := make([]*collection.Combination, len(combos))
	copy(ordered, combos)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.Rarity.Overall != b.Rarity.Overall {
			return a.Rarity.Overall > b.Rarity.Overall
		}
		return a.ID < b.ID
	})

	total := float64(len(ordered))
	for i, c := range ordered {
		c.Rarity.Rank = i + 1
		c.Rarity.Percentile = math.Round(float64(i+1)/total*100*100) / 100
	}
}

// ScoreAll scores every combination with the scorer's final frequencies and
// then ranks them. Every combination is measured against the whole
// collection, not against the counts recorded up to its own acceptance;
// Calculate gives the running score when called between Record calls.
func (s *Scorer) ScoreAll(combos []*collection.Combination) {
	for _, c := range combos {
		c.Rarity = s.Calculate(c.Options)
	}
	Finalize(combos)
}
