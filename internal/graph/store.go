package graph

import (
	"context"
	"io"
)

// Store is the interface for the rule graph backend.
// Implementations: KuzuStore (cgo builds), MemStore.
type Store interface {
	io.Closer

	// Schema setup, called once before any data is inserted.
	InitSchema(ctx context.Context) error

	// Write operations.
	AddOption(ctx context.Context, node OptionNode) error
	AddGroup(ctx context.Context, node GroupNode) error
	AddEdge(ctx context.Context, edge Edge) error

	// Read operations.
	GetOption(ctx context.Context, id string) (*OptionNode, error)
	GetOptions(ctx context.Context) ([]OptionNode, error)
	GetGroups(ctx context.Context) ([]GroupNode, error)
	GetAllEdges(ctx context.Context) ([]Edge, error)

	// Graph traversal over FORCES and DEPENDS_ON edges.
	GetDependencies(ctx context.Context, nodeID string, direction Direction, maxDepth int) ([]DependencyChain, error)

	// Stats.
	Stats(ctx context.Context) (*GraphStats, error)
}

// Direction controls dependency traversal direction.
type Direction string

const (
	DirectionUpstream   Direction = "upstream"   // what pulls this option in?
	DirectionDownstream Direction = "downstream" // what does this option pull in?
)
