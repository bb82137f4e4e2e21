package graph

// --- Enums ---

// NodeKind classifies nodes in the rule graph.
type NodeKind string

const (
	NodeKindOption NodeKind = "option"
	NodeKindGroup  NodeKind = "group"
)

// EdgeKind classifies relationships between nodes.
type EdgeKind string

const (
	EdgeKindIncompatible EdgeKind = "INCOMPATIBLE"
	EdgeKindForces       EdgeKind = "FORCES"
	EdgeKindDependsOn    EdgeKind = "DEPENDS_ON"
	EdgeKindOverrides    EdgeKind = "OVERRIDES"
	EdgeKindMemberOf     EdgeKind = "MEMBER_OF"
)

// chainKinds are the edge kinds that pull another option into a
// combination. Dependency traversal follows only these.
var chainKinds = []EdgeKind{EdgeKindForces, EdgeKindDependsOn}

func isChainKind(k EdgeKind) bool {
	for _, c := range chainKinds {
		if c == k {
			return true
		}
	}
	return false
}

// --- Models ---

// OptionNode is an option referenced by at least one rule. ID is the rule
// key as written: "Category:Name", or a bare "Name" with an empty Category.
type OptionNode struct {
	ID       string `json:"id"`
	Category string `json:"category,omitempty"`
	Name     string `json:"name"`
}

// GroupNode is an exclusive group. Members are option ids.
type GroupNode struct {
	Name    string   `json:"name"`
	Members []string `json:"members"`
}

// Edge represents a relationship between two nodes. MEMBER_OF edges point
// from an option id to a group name. Weight is set on OVERRIDES only.
type Edge struct {
	SourceID string   `json:"sourceId"`
	TargetID string   `json:"targetId"`
	Kind     EdgeKind `json:"kind"`
	Weight   float64  `json:"weight,omitempty"`
}

// GraphStats summarizes a rule graph.
type GraphStats struct {
	OptionCount int `json:"optionCount"`
	GroupCount  int `json:"groupCount"`
	EdgeCount   int `json:"edgeCount"`
}

// DependencyChain is an ordered sequence of nodes forming a forced or
// dependent path.
type DependencyChain struct {
	Nodes []string `json:"nodes"` // node IDs in order
	Depth int      `json:"depth"`
}
