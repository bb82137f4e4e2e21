package export

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dusk-indust/traitgen/internal/graph"
)

// GenerateMermaid produces a Mermaid graph LR diagram from a rule graph.
// Exclusive groups become subgraphs; each rule kind has its own arrow style.
func GenerateMermaid(ctx context.Context, store graph.Store) (string, error) {
	options, err := store.GetOptions(ctx)
	if err != nil {
		return "", fmt.Errorf("get options: %w", err)
	}
	groups, err := store.GetGroups(ctx)
	if err != nil {
		return "", fmt.Errorf("get groups: %w", err)
	}
	edges, err := store.GetAllEdges(ctx)
	if err != nil {
		return "", fmt.Errorf("get edges: %w", err)
	}

	// Build node → ID mapping for Mermaid (alphanumeric only).
	nodeIDs := make(map[string]string)
	nextID := 0
	getID := func(key string) string {
		if id, ok := nodeIDs[key]; ok {
			return id
		}
		id := fmt.Sprintf("N%d", nextID)
		nextID++
		nodeIDs[key] = id
		return id
	}

	var sb strings.Builder
	sb.WriteString("graph LR\n")

	// A node listed in several groups is drawn in the first one.
	placed := make(map[string]bool)
	for _, g := range groups {
		if len(g.Members) == 0 {
			continue
		}
		sb.WriteString(fmt.Sprintf("  subgraph %s[\"%.40s\"]\n", getID("group:"+g.Name), g.Name))
		for _, m := range g.Members {
			if placed[m] {
				continue
			}
			placed[m] = true
			sb.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", getID(m), label(m)))
		}
		sb.WriteString("  end\n")
	}

	for _, o := range options {
		if placed[o.ID] {
			continue
		}
		sb.WriteString(fmt.Sprintf("  %s[\"%s\"]\n", getID(o.ID), label(o.ID)))
	}

	for _, e := range edges {
		src, dst := getID(e.SourceID), getID(e.TargetID)
		switch e.Kind {
		case graph.EdgeKindForces:
			sb.WriteString(fmt.Sprintf("  %s ==>|forces| %s\n", src, dst))
		case graph.EdgeKindDependsOn:
			sb.WriteString(fmt.Sprintf("  %s -->|depends on| %s\n", src, dst))
		case graph.EdgeKindIncompatible:
			sb.WriteString(fmt.Sprintf("  %s x--x %s\n", src, dst))
		case graph.EdgeKindOverrides:
			sb.WriteString(fmt.Sprintf("  %s -.->|weight %s| %s\n", src, strconv.FormatFloat(e.Weight, 'f', -1, 64), dst))
		}
	}

	return sb.String(), nil
}

// label escapes characters Mermaid treats specially inside quoted labels.
func label(s string) string {
	return strings.ReplaceAll(s, `"`, "#quot;")
}
