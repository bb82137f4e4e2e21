package rules

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/dusk-indust/traitgen/internal/catalog"
)

// Config is the rule table as written in the project file. Every key is
// "Category:Name" or a bare "Name".
type Config struct {
	ProcessingOrder    []string                      `yaml:"processing_order" json:"processing_order"`
	IncompatibleTraits map[string][]string           `yaml:"incompatible_traits,omitempty" json:"incompatible_traits,omitempty"`
	ForcedPairings     map[string]string             `yaml:"forced_pairings,omitempty" json:"forced_pairings,omitempty"`
	DependentTraits    map[string]string             `yaml:"dependent_traits,omitempty" json:"dependent_traits,omitempty"`
	ExclusiveGroups    map[string][]string           `yaml:"exclusive_groups,omitempty" json:"exclusive_groups,omitempty"`
	ConditionalRarity  map[string]map[string]float64 `yaml:"conditional_rarity,omitempty" json:"conditional_rarity,omitempty"`
}

// ConfigError describes a malformed rule table entry. It is fatal before
// generation starts.
type ConfigError struct {
	Field  string
	Key    string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("rules: %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("rules: %s[%q]: %s", e.Field, e.Key, e.Reason)
}

// Conflict declares that From may not appear alongside any of With. The
// relation is checked in both directions.
type Conflict struct {
	From Key
	With []Key
}

// Pair links a trigger to the option it forces or depends on.
type Pair struct {
	Trigger Key
	Target  Key
}

// Group is a named set of mutually exclusive options.
type Group struct {
	Name    string
	Members []Key
}

// WeightOverride replaces the working weight of Target.
type WeightOverride struct {
	Target Key
	Weight float64
}

// Override applies its weight overrides whenever Trigger is selected.
type Override struct {
	Trigger Key
	Targets []WeightOverride
}

// RuleSet is the compiled, read-only form of Config. Each table is sorted
// by trigger so evaluation order does not depend on map iteration.
type RuleSet struct {
	Order        []string
	Incompatible []Conflict
	Forced       []Pair
	Dependent    []Pair
	Groups       []Group
	Overrides    []Override
}

// Compile validates cfg and normalizes every key once.
func Compile(cfg Config) (*RuleSet, error) {
	c := &compiler{categories: make(map[string]bool), position: make(map[string]int)}
	rs := &RuleSet{}

	if len(cfg.ProcessingOrder) == 0 {
		c.fail("processing_order", "", "at least one category is required")
	}
	for _, cat := range cfg.ProcessingOrder {
		cat = strings.TrimSpace(cat)
		switch {
		case cat == "":
			c.fail("processing_order", "", "empty category name")
		case c.categories[cat]:
			c.fail("processing_order", cat, "duplicate category")
		default:
			c.categories[cat] = true
			c.position[cat] = len(rs.Order)
			rs.Order = append(rs.Order, cat)
		}
	}

	for _, from := range sortedKeys(cfg.IncompatibleTraits) {
		fk := c.key("incompatible_traits", from)
		conflict := Conflict{From: fk}
		for _, with := range cfg.IncompatibleTraits[from] {
			wk := c.key("incompatible_traits", with)
			if wk == fk {
				c.fail("incompatible_traits", from, "option conflicts with itself")
				continue
			}
			conflict.With = append(conflict.With, wk)
		}
		if len(conflict.With) > 0 {
			rs.Incompatible = append(rs.Incompatible, conflict)
		}
	}

	rs.Forced = c.pairs("forced_pairings", cfg.ForcedPairings)
	for _, p := range rs.Forced {
		c.checkForcedOrder(p)
	}
	rs.Dependent = c.pairs("dependent_traits", cfg.DependentTraits)

	for _, name := range sortedKeys(cfg.ExclusiveGroups) {
		members := cfg.ExclusiveGroups[name]
		if len(members) == 0 {
			c.fail("exclusive_groups", name, "group has no members")
			continue
		}
		g := Group{Name: name}
		for _, m := range members {
			g.Members = append(g.Members, c.key("exclusive_groups", m))
		}
		rs.Groups = append(rs.Groups, g)
	}

	for _, trigger := range sortedKeys(cfg.ConditionalRarity) {
		o := Override{Trigger: c.key("conditional_rarity", trigger)}
		targets := cfg.ConditionalRarity[trigger]
		for _, target := range sortedKeys(targets) {
			w := targets[target]
			if w < 0 || w > catalog.MaxWeight {
				c.fail("conditional_rarity", trigger, fmt.Sprintf("override %v for %q outside [0,%d]", w, target, catalog.MaxWeight))
				continue
			}
			o.Targets = append(o.Targets, WeightOverride{Target: c.key("conditional_rarity", target), Weight: w})
		}
		if len(o.Targets) > 0 {
			rs.Overrides = append(rs.Overrides, o)
		}
	}

	if len(c.errs) > 0 {
		return nil, errors.Join(c.errs...)
	}
	return rs, nil
}

// HasCategory reports whether category is part of the processing order.
func (rs *RuleSet) HasCategory(category string) bool {
	for _, c := range rs.Order {
		if c == category {
			return true
		}
	}
	return false
}

type compiler struct {
	categories map[string]bool
	position   map[string]int
	errs       []error
}

func (c *compiler) fail(field, key, reason string) {
	c.errs = append(c.errs, &ConfigError{Field: field, Key: key, Reason: reason})
}

// key parses s and checks that a compound key names a known category.
func (c *compiler) key(field, s string) Key {
	k := ParseKey(s)
	switch {
	case k.Name == "":
		c.fail(field, s, "empty option name")
	case !k.Bare() && !c.categories[k.Category]:
		c.fail(field, s, fmt.Sprintf("category %q is not in processing_order", k.Category))
	}
	return k
}

// checkForcedOrder rejects a forced pairing that can never fire. A forced
// option is only placed while its own category is resolved, so that
// category must come after the trigger's. Bare keys are checked by lint
// once the catalog is known.
func (c *compiler) checkForcedOrder(p Pair) {
	if p.Target.Bare() || !c.categories[p.Target.Category] {
		return
	}
	target := c.position[p.Target.Category]
	switch {
	case p.Trigger.Bare():
		if target == 0 {
			c.fail("forced_pairings", p.Trigger.String(), fmt.Sprintf("target category %q is processed first, before any trigger", p.Target.Category))
		}
	case c.categories[p.Trigger.Category] && target <= c.position[p.Trigger.Category]:
		c.fail("forced_pairings", p.Trigger.String(), fmt.Sprintf("target category %q must come after trigger category %q in processing_order", p.Target.Category, p.Trigger.Category))
	}
}

func (c *compiler) pairs(field string, m map[string]string) []Pair {
	var out []Pair
	for _, trigger := range sortedKeys(m) {
		p := Pair{Trigger: c.key(field, trigger), Target: c.key(field, m[trigger])}
		if p.Trigger == p.Target {
			c.fail(field, trigger, "option targets itself")
			continue
		}
		out = append(out, p)
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
