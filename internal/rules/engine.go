package rules

import (
	"errors"
	"fmt"

	"github.com/dusk-indust/traitgen/internal/catalog"
	"github.com/dusk-indust/traitgen/internal/sampler"
)

// ErrNoCandidates means every option of a category was filtered out for the
// current attempt. The attempt should be discarded and retried.
var ErrNoCandidates = errors.New("rules: no candidates remain")

// ResolutionError reports a rule target that could not be resolved against
// the catalog.
type ResolutionError struct {
	Rule string
	Key  Key
	Err  error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("rules: resolve %s target %s: %v", e.Rule, e.Key, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// Resolver looks options up in the trait catalog. *catalog.Catalog
// satisfies it.
type Resolver interface {
	Options(category string) ([]catalog.Option, error)
	Lookup(category, name string) (catalog.Option, error)
	Find(order []string, name string) (catalog.Option, error)
}

// Selection is the set of options chosen so far in one attempt, with at most
// one option per category.
type Selection struct {
	options []catalog.Option
	filled  map[string]bool
}

// NewSelection returns an empty selection sized for n categories.
func NewSelection(n int) *Selection {
	return &Selection{
		options: make([]catalog.Option, 0, n),
		filled:  make(map[string]bool, n),
	}
}

// Add records o. It reports false, leaving the selection unchanged, when o's
// category is already filled.
func (s *Selection) Add(o catalog.Option) bool {
	if s.filled[o.Category] {
		return false
	}
	s.filled[o.Category] = true
	s.options = append(s.options, o)
	return true
}

// Filled reports whether category already has an option.
func (s *Selection) Filled(category string) bool {
	return s.filled[category]
}

// Has reports whether any selected option matches k.
func (s *Selection) Has(k Key) bool {
	for _, o := range s.options {
		if k.Matches(o) {
			return true
		}
	}
	return false
}

// Len returns the number of selected options.
func (s *Selection) Len() int {
	return len(s.options)
}

// Ordered returns the selected options sorted into the given category order.
// Options whose category is not listed are dropped.
func (s *Selection) Ordered(order []string) []catalog.Option {
	byCat := make(map[string]catalog.Option, len(s.options))
	for _, o := range s.options {
		byCat[o.Category] = o
	}
	out := make([]catalog.Option, 0, len(order))
	for _, cat := range order {
		if o, ok := byCat[cat]; ok {
			out = append(out, o)
		}
	}
	return out
}

// Resolution is the outcome of resolving one category.
type Resolution struct {
	// Filled is set when the category was satisfied without sampling: by a
	// forced pairing, a dependent trait, or an earlier dependent addition.
	Filled bool
	// Candidates is the filtered, re-weighted working set to sample from.
	Candidates []sampler.Candidate
}

// Engine applies the rule set to one category at a time.
type Engine struct {
	rules   *RuleSet
	catalog Resolver
}

// NewEngine returns an Engine evaluating rs against cat.
func NewEngine(rs *RuleSet, cat Resolver) *Engine {
	return &Engine{rules: rs, catalog: cat}
}

// Rules returns the compiled rule set.
func (e *Engine) Rules() *RuleSet {
	return e.rules
}

// Resolve runs the rule pipeline for category against sel: forced pairing,
// dependent traits, incompatibility, exclusive groups, then conditional
// rarity. Forced and dependent additions are written into sel directly.
// ErrNoCandidates is returned when filtering leaves nothing to sample.
func (e *Engine) Resolve(sel *Selection, category string) (Resolution, error) {
	if sel.Filled(category) {
		return Resolution{Filled: true}, nil
	}

	if e.applyForced(sel, category) {
		return Resolution{Filled: true}, nil
	}

	satisfied, err := e.applyDependents(sel, category)
	if err != nil {
		return Resolution{}, err
	}
	if satisfied {
		return Resolution{Filled: true}, nil
	}

	opts, err := e.catalog.Options(category)
	if err != nil {
		return Resolution{}, fmt.Errorf("rules: options for %s: %w", category, err)
	}
	candidates := make([]sampler.Candidate, 0, len(opts))
	for _, o := range opts {
		candidates = append(candidates, sampler.Candidate{Option: o, Weight: float64(o.Weight)})
	}

	candidates = e.filterIncompatible(sel, candidates)
	candidates = e.filterExclusive(sel, candidates)
	e.applyOverrides(sel, candidates)

	if len(candidates) == 0 {
		return Resolution{}, fmt.Errorf("%w for %s", ErrNoCandidates, category)
	}
	return Resolution{Candidates: candidates}, nil
}

// lookup resolves k, searching the processing order for bare keys.
func (e *Engine) lookup(k Key) (catalog.Option, error) {
	if k.Bare() {
		return e.catalog.Find(e.rules.Order, k.Name)
	}
	return e.catalog.Lookup(k.Category, k.Name)
}

// applyForced selects the first forced target for category whose trigger is
// selected. A bare target is looked up in category itself, so the same name
// in another category never shadows it. Targets that cannot be resolved are
// skipped.
func (e *Engine) applyForced(sel *Selection, category string) bool {
	for _, p := range e.rules.Forced {
		if !sel.Has(p.Trigger) {
			continue
		}
		if !p.Target.Bare() && p.Target.Category != category {
			continue
		}
		o, err := e.catalog.Lookup(category, p.Target.Name)
		if err != nil {
			continue
		}
		return sel.Add(o)
	}
	return false
}

// applyDependents adds every dependent option whose trigger is selected. A
// dependent landing on a category that is already filled is dropped.
// Dependents are not checked against incompatibility or exclusive groups.
func (e *Engine) applyDependents(sel *Selection, category string) (bool, error) {
	satisfied := false
	for _, p := range e.rules.Dependent {
		if !sel.Has(p.Trigger) || sel.Has(p.Target) {
			continue
		}
		o, err := e.lookup(p.Target)
		if err != nil {
			return false, &ResolutionError{Rule: "dependent_traits", Key: p.Target, Err: err}
		}
		if !e.rules.HasCategory(o.Category) {
			return false, &ResolutionError{Rule: "dependent_traits", Key: p.Target, Err: fmt.Errorf("category %q is not processed", o.Category)}
		}
		if sel.Add(o) && o.Category == category {
			satisfied = true
		}
	}
	return satisfied, nil
}

// conflicts reports whether a and b are declared incompatible in either
// direction.
func (e *Engine) conflicts(a, b catalog.Option) bool {
	for _, c := range e.rules.Incompatible {
		if c.From.Matches(a) && matchesAny(c.With, b) {
			return true
		}
		if c.From.Matches(b) && matchesAny(c.With, a) {
			return true
		}
	}
	return false
}

func (e *Engine) filterIncompatible(sel *Selection, candidates []sampler.Candidate) []sampler.Candidate {
	if len(e.rules.Incompatible) == 0 {
		return candidates
	}
	out := candidates[:0]
	for _, c := range candidates {
		ok := true
		for _, s := range sel.options {
			if e.conflicts(s, c.Option) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, c)
		}
	}
	return out
}

// filterExclusive removes candidates sharing a group with any selected
// option.
func (e *Engine) filterExclusive(sel *Selection, candidates []sampler.Candidate) []sampler.Candidate {
	for _, g := range e.rules.Groups {
		active := false
		for _, s := range sel.options {
			if matchesAny(g.Members, s) {
				active = true
				break
			}
		}
		if !active {
			continue
		}
		out := candidates[:0]
		for _, c := range candidates {
			if !matchesAny(g.Members, c.Option) {
				out = append(out, c)
			}
		}
		candidates = out
	}
	return candidates
}

// applyOverrides rewrites working weights in place. Catalog weights are
// never touched.
func (e *Engine) applyOverrides(sel *Selection, candidates []sampler.Candidate) {
	for _, o := range e.rules.Overrides {
		if !sel.Has(o.Trigger) {
			continue
		}
		for _, t := range o.Targets {
			for i := range candidates {
				if t.Target.Matches(candidates[i].Option) {
					candidates[i].Weight = t.Weight
				}
			}
		}
	}
}
