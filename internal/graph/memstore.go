package graph

import (
	"context"
	"sort"
	"sync"
)

// Compile-time assertion: *MemStore satisfies Store.
var _ Store = (*MemStore)(nil)

// MemStore implements Store using Go maps. Thread-safe via sync.RWMutex.
type MemStore struct {
	mu      sync.RWMutex
	options map[string]OptionNode
	groups  map[string]bool
	edges   []Edge
}

// NewMemStore returns an initialized MemStore ready for use.
func NewMemStore() *MemStore {
	return &MemStore{
		options: make(map[string]OptionNode),
		groups:  make(map[string]bool),
	}
}

// InitSchema is a no-op for the in-memory store.
func (m *MemStore) InitSchema(_ context.Context) error {
	return nil
}

// AddOption stores an option node keyed by its id.
func (m *MemStore) AddOption(_ context.Context, node OptionNode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.options[node.ID] = node
	return nil
}

// AddGroup registers a group. Members are attached with MEMBER_OF edges.
func (m *MemStore) AddGroup(_ context.Context, node GroupNode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.groups[node.Name] = true
	return nil
}

// AddEdge appends an edge to the internal slice.
func (m *MemStore) AddEdge(_ context.Context, edge Edge) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.edges = append(m.edges, edge)
	return nil
}

// GetOption returns the option with the given id, or nil if not found.
func (m *MemStore) GetOption(_ context.Context, id string) (*OptionNode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.options[id]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

// GetOptions returns every option sorted by id.
func (m *MemStore) GetOptions(_ context.Context) ([]OptionNode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]OptionNode, 0, len(m.options))
	for _, o := range m.options {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// GetGroups returns every group with its members, sorted by name.
func (m *MemStore) GetGroups(_ context.Context) ([]GroupNode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]GroupNode, 0, len(m.groups))
	for name := range m.groups {
		g := GroupNode{Name: name, Members: []string{}}
		for _, e := range m.edges {
			if e.Kind == EdgeKindMemberOf && e.TargetID == name {
				g.Members = append(g.Members, e.SourceID)
			}
		}
		sort.Strings(g.Members)
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// GetDependencies performs a BFS on FORCES and DEPENDS_ON edges from nodeID
// in the given direction, up to maxDepth hops. It returns one
// DependencyChain per reachable node.
func (m *MemStore) GetDependencies(_ context.Context, nodeID string, direction Direction, maxDepth int) ([]DependencyChain, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if maxDepth <= 0 {
		return nil, nil
	}

	// BFS state: each entry tracks the path from nodeID to the current node.
	type bfsEntry struct {
		id   string
		path []string
	}

	visited := map[string]bool{nodeID: true}
	queue := []bfsEntry{{id: nodeID, path: []string{nodeID}}}
	var chains []DependencyChain

	for depth := 0; depth < maxDepth && len(queue) > 0; depth++ {
		var nextQueue []bfsEntry
		for _, entry := range queue {
			for _, nb := range m.neighbors(entry.id, direction) {
				if visited[nb] {
					continue
				}
				visited[nb] = true
				newPath := make([]string, len(entry.path), len(entry.path)+1)
				copy(newPath, entry.path)
				newPath = append(newPath, nb)
				chains = append(chains, DependencyChain{
					Nodes: newPath,
					Depth: len(newPath) - 1,
				})
				nextQueue = append(nextQueue, bfsEntry{id: nb, path: newPath})
			}
		}
		queue = nextQueue
	}

	return chains, nil
}

// neighbors returns IDs reachable from id in one chain hop along the given
// direction.
func (m *MemStore) neighbors(id string, direction Direction) []string {
	var result []string
	for _, e := range m.edges {
		if !isChainKind(e.Kind) {
			continue
		}
		switch direction {
		case DirectionDownstream:
			if e.SourceID == id {
				result = append(result, e.TargetID)
			}
		case DirectionUpstream:
			if e.TargetID == id {
				result = append(result, e.SourceID)
			}
		}
	}
	return result
}

// GetAllEdges returns a copy of all edges in the store.
func (m *MemStore) GetAllEdges(_ context.Context) ([]Edge, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Edge, len(m.edges))
	copy(out, m.edges)
	return out, nil
}

// Stats returns counts of all node and edge types in the graph.
func (m *MemStore) Stats(_ context.Context) (*GraphStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return &GraphStats{
		OptionCount: len(m.options),
		GroupCount:  len(m.groups),
		EdgeCount:   len(m.edges),
	}, nil
}

// Close is a no-op for the in-memory store.
func (m *MemStore) Close() error {
	return nil
}
