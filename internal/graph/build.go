package graph

import (
	"context"
	"fmt"
	"sort"

	"github.com/dusk-indust/traitgen/internal/rules"
)

// BuildRuleGraph loads a compiled rule set into store. Every key referenced
// by a rule becomes an option node. Bare and compound keys stay distinct
// nodes; Lint treats a bare key as matching any option of that name.
func BuildRuleGraph(ctx context.Context, store Store, rs *rules.RuleSet) error {
	if err := store.InitSchema(ctx); err != nil {
		return fmt.Errorf("graph: init schema: %w", err)
	}

	keys := make(map[string]rules.Key)
	note := func(k rules.Key) string {
		keys[k.String()] = k
		return k.String()
	}

	var edges []Edge
	for _, c := range rs.Incompatible {
		from := note(c.From)
		for _, w := range c.With {
			edges = append(edges, Edge{SourceID: from, TargetID: note(w), Kind: EdgeKindIncompatible})
		}
	}
	for _, p := range rs.Forced {
		edges = append(edges, Edge{SourceID: note(p.Trigger), TargetID: note(p.Target), Kind: EdgeKindForces})
	}
	for _, p := range rs.Dependent {
		edges = append(edges, Edge{SourceID: note(p.Trigger), TargetID: note(p.Target), Kind: EdgeKindDependsOn})
	}
	for _, o := range rs.Overrides {
		trigger := note(o.Trigger)
		for _, t := range o.Targets {
			edges = append(edges, Edge{SourceID: trigger, TargetID: note(t.Target), Kind: EdgeKindOverrides, Weight: t.Weight})
		}
	}
	for _, g := range rs.Groups {
		for _, m := range g.Members {
			edges = append(edges, Edge{SourceID: note(m), TargetID: g.Name, Kind: EdgeKindMemberOf})
		}
	}

	ids := make([]string, 0, len(keys))
	for id := range keys {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		k := keys[id]
		if err := store.AddOption(ctx, OptionNode{ID: id, Category: k.Category, Name: k.Name}); err != nil {
			return fmt.Errorf("graph: add option %s: %w", id, err)
		}
	}
	for _, g := range rs.Groups {
		if err := store.AddGroup(ctx, GroupNode{Name: g.Name}); err != nil {
			return fmt.Errorf("graph: add group %s: %w", g.Name, err)
		}
	}
	for _, e := range edges {
		if err := store.AddEdge(ctx, e); err != nil {
			return fmt.Errorf("graph: add edge %s->%s: %w", e.SourceID, e.TargetID, err)
		}
	}
	return nil
}
