package graph

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/dusk-indust/traitgen/internal/rules"
)

// FindingKind classifies a lint finding.
type FindingKind string

const (
	FindingCycle     FindingKind = "cycle"
	FindingConflict  FindingKind = "conflict"
	FindingExclusive FindingKind = "exclusive"
	FindingOrder     FindingKind = "order"
)

// Finding is a rule-table smell. Findings are warnings; they never block
// generation.
type Finding struct {
	Kind    FindingKind `json:"kind"`
	Nodes   []string    `json:"nodes"`
	Message string      `json:"message"`
}

// Lint inspects the rule graph for contradictions: forced or dependent
// cycles, a pull whose target is declared incompatible with its trigger, and
// a pull whose trigger and target share an exclusive group.
func Lint(ctx context.Context, store Store) ([]Finding, error) {
	edges, err := store.GetAllEdges(ctx)
	if err != nil {
		return nil, fmt.Errorf("graph: lint edges: %w", err)
	}
	groups, err := store.GetGroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("graph: lint groups: %w", err)
	}

	var pulls, conflicts []Edge
	for _, e := range edges {
		switch {
		case isChainKind(e.Kind):
			pulls = append(pulls, e)
		case e.Kind == EdgeKindIncompatible:
			conflicts = append(conflicts, e)
		}
	}

	var findings []Finding
	findings = append(findings, findCycles(pulls)...)

	for _, p := range pulls {
		for _, c := range conflicts {
			if (sameOption(c.SourceID, p.SourceID) && sameOption(c.TargetID, p.TargetID)) ||
				(sameOption(c.SourceID, p.TargetID) && sameOption(c.TargetID, p.SourceID)) {
				findings = append(findings, Finding{
					Kind:    FindingConflict,
					Nodes:   []string{p.SourceID, p.TargetID},
					Message: fmt.Sprintf("%s %s %s, but they are declared incompatible", p.SourceID, verb(p.Kind), p.TargetID),
				})
				break
			}
		}
		for _, g := range groups {
			if memberOf(g, p.SourceID) && memberOf(g, p.TargetID) {
				findings = append(findings, Finding{
					Kind:    FindingExclusive,
					Nodes:   []string{p.SourceID, p.TargetID},
					Message: fmt.Sprintf("%s %s %s, but both are in exclusive group %q", p.SourceID, verb(p.Kind), p.TargetID, g.Name),
				})
			}
		}
	}

	sort.SliceStable(findings, func(i, j int) bool {
		if findings[i].Kind != findings[j].Kind {
			return findings[i].Kind < findings[j].Kind
		}
		return findings[i].Message < findings[j].Message
	})
	return findings, nil
}

func verb(k EdgeKind) string {
	if k == EdgeKindForces {
		return "forces"
	}
	return "depends on"
}

// sameOption reports whether two rule keys can refer to the same option. A
// bare key matches any category.
func sameOption(a, b string) bool {
	if a == b {
		return true
	}
	ka, kb := rules.ParseKey(a), rules.ParseKey(b)
	if ka.Name != kb.Name {
		return false
	}
	return ka.Bare() || kb.Bare() || ka.Category == kb.Category
}

func memberOf(g GroupNode, id string) bool {
	for _, m := range g.Members {
		if sameOption(m, id) {
			return true
		}
	}
	return false
}

// findCycles reports each forced or dependent cycle once.
func findCycles(pulls []Edge) []Finding {
	var nodes []string
	seenNode := make(map[string]bool)
	for _, e := range pulls {
		for _, id := range []string{e.SourceID, e.TargetID} {
			if !seenNode[id] {
				seenNode[id] = true
				nodes = append(nodes, id)
			}
		}
	}
	sort.Strings(nodes)

	// Successors of n include edges leaving any key that can name the same
	// option.
	succ := func(n string) []string {
		var out []string
		for _, e := range pulls {
			if sameOption(e.SourceID, n) {
				out = append(out, e.TargetID)
			}
		}
		return out
	}

	const (
		white = iota
		grey
		black
	)
	color := make(map[string]int, len(nodes))
	reported := make(map[string]bool)
	var stack []string
	var findings []Finding

	var visit func(n string)
	visit = func(n string) {
		color[n] = grey
		stack = append(stack, n)
		for _, next := range succ(n) {
			switch color[next] {
			case white:
				visit(next)
			case grey:
				start := 0
				for i, s := range stack {
					if s == next {
						start = i
					}
				}
				cycle := append([]string(nil), stack[start:]...)
				sig := cycleSignature(cycle)
				if reported[sig] {
					continue
				}
				reported[sig] = true
				findings = append(findings, Finding{
					Kind:    FindingCycle,
					Nodes:   cycle,
					Message: "pull cycle: " + strings.Join(append(cycle, next), " -> "),
				})
			}
		}
		stack = stack[:len(stack)-1]
		color[n] = black
	}
	for _, n := range nodes {
		if color[n] == white {
			visit(n)
		}
	}
	return findings
}

func cycleSignature(cycle []string) string {
	s := append([]string(nil), cycle...)
	sort.Strings(s)
	return strings.Join(s, "|")
}

// LintForcedOrder reports forced pairings that can never fire because no
// matching target is processed after the trigger's category. categoriesOf
// lists the categories holding an option of a given name and is used for
// bare keys; names it does not know are skipped.
func LintForcedOrder(rs *rules.RuleSet, categoriesOf func(name string) []string) []Finding {
	pos := make(map[string]int, len(rs.Order))
	for i, c := range rs.Order {
		pos[c] = i
	}
	cats := func(k rules.Key) []string {
		if !k.Bare() {
			return []string{k.Category}
		}
		if categoriesOf == nil {
			return nil
		}
		return categoriesOf(k.Name)
	}

	var findings []Finding
	for _, p := range rs.Forced {
		targets := cats(p.Target)
		if len(targets) == 0 {
			continue
		}
		for _, tc := range cats(p.Trigger) {
			ti, ok := pos[tc]
			if !ok {
				continue
			}
			reachable := false
			for _, gc := range targets {
				if gi, ok := pos[gc]; ok && gi > ti {
					reachable = true
					break
				}
			}
			if reachable {
				continue
			}
			findings = append(findings, Finding{
				Kind:    FindingOrder,
				Nodes:   []string{p.Trigger.String(), p.Target.String()},
				Message: fmt.Sprintf("%s forces %s, but no %q is processed after category %q", p.Trigger, p.Target, p.Target.Name, tc),
			})
			break
		}
	}
	sort.SliceStable(findings, func(i, j int) bool { return findings[i].Message < findings[j].Message })
	return findings
}
