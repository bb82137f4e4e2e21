//go:build cgo

package graph

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	kuzu "github.com/kuzudb/go-kuzu"
)

// KuzuStore implements the Store interface using KuzuDB as the graph backend.
// It requires CGO because the go-kuzu driver wraps KuzuDB's C library.
type KuzuStore struct {
	db   *kuzu.Database
	conn *kuzu.Connection
}

// Compile-time check that KuzuStore satisfies Store.
var _ Store = (*KuzuStore)(nil)

// NewKuzuStore creates a KuzuStore backed by an in-memory KuzuDB instance.
func NewKuzuStore() (*KuzuStore, error) {
	return openKuzu(":memory:")
}

// NewKuzuFileStore creates a KuzuStore backed by a file-based KuzuDB at the
// given path. KuzuDB creates the leaf directory itself.
func NewKuzuFileStore(dbPath string) (*KuzuStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("kuzu: create parent directory: %w", err)
	}
	return openKuzu(dbPath)
}

func openKuzu(path string) (*KuzuStore, error) {
	cfg := kuzu.DefaultSystemConfig()
	db, err := kuzu.OpenDatabase(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("kuzu: open database: %w", err)
	}
	conn, err := kuzu.OpenConnection(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("kuzu: open connection: %w", err)
	}
	return &KuzuStore{db: db, conn: conn}, nil
}

// Close releases the KuzuDB connection and database.
func (s *KuzuStore) Close() error {
	if s.conn != nil {
		s.conn.Close()
	}
	if s.db != nil {
		s.db.Close()
	}
	return nil
}

// ---------- Schema setup ----------

// ddlStatements defines the Cypher DDL executed by InitSchema.
// Order matters: node tables must precede relationship tables.
var ddlStatements = []string{
	`CREATE NODE TABLE IF NOT EXISTS Trait(
		id STRING,
		category STRING,
		name STRING,
		PRIMARY KEY(id)
	)`,
	`CREATE NODE TABLE IF NOT EXISTS ExclusiveGroup(
		name STRING,
		PRIMARY KEY(name)
	)`,
	`CREATE REL TABLE IF NOT EXISTS INCOMPATIBLE(FROM Trait TO Trait)`,
	`CREATE REL TABLE IF NOT EXISTS FORCES(FROM Trait TO Trait)`,
	`CREATE REL TABLE IF NOT EXISTS DEPENDS_ON(FROM Trait TO Trait)`,
	`CREATE REL TABLE IF NOT EXISTS OVERRIDES(FROM Trait TO Trait, weight DOUBLE)`,
	`CREATE REL TABLE IF NOT EXISTS MEMBER_OF(FROM Trait TO ExclusiveGroup)`,
}

// relTables lists every relationship table with the kind it stores.
var relTables = []struct {
	table string
	kind  EdgeKind
}{
	{"INCOMPATIBLE", EdgeKindIncompatible},
	{"FORCES", EdgeKindForces},
	{"DEPENDS_ON", EdgeKindDependsOn},
	{"OVERRIDES", EdgeKindOverrides},
	{"MEMBER_OF", EdgeKindMemberOf},
}

// InitSchema creates all node and relationship tables if they do not exist.
func (s *KuzuStore) InitSchema(_ context.Context) error {
	for _, stmt := range ddlStatements {
		res, err := s.conn.Query(stmt)
		if err != nil {
			return fmt.Errorf("kuzu: init schema: %w", err)
		}
		res.Close()
	}
	return nil
}

// ---------- Write operations ----------

// AddOption inserts an Option node.
func (s *KuzuStore) AddOption(_ context.Context, node OptionNode) error {
	return s.exec(
		"CREATE (o:Trait {id: $id, category: $cat, name: $name})",
		map[string]any{
			"id":   node.ID,
			"cat":  node.Category,
			"name": node.Name,
		},
	)
}

// AddGroup inserts an ExclusiveGroup node. Members are attached with
// MEMBER_OF edges.
func (s *KuzuStore) AddGroup(_ context.Context, node GroupNode) error {
	return s.exec(
		"CREATE (g:ExclusiveGroup {name: $name})",
		map[string]any{"name": node.Name},
	)
}

// AddEdge inserts a relationship edge between two nodes.
// The Cypher statement is chosen based on the EdgeKind.
func (s *KuzuStore) AddEdge(_ context.Context, edge Edge) error {
	cypher, err := edgeCypher(edge.Kind)
	if err != nil {
		return err
	}
	params := map[string]any{
		"src": edge.SourceID,
		"dst": edge.TargetID,
	}
	if edge.Kind == EdgeKindOverrides {
		params["w"] = edge.Weight
	}
	return s.exec(cypher, params)
}

// edgeCypher returns the MATCH-CREATE Cypher for the given edge kind.
func edgeCypher(kind EdgeKind) (string, error) {
	switch kind {
	case EdgeKindIncompatible, EdgeKindForces, EdgeKindDependsOn:
		return fmt.Sprintf(`MATCH (a:Trait {id: $src}), (b:Trait {id: $dst})
				CREATE (a)-[:%s]->(b)`, kind), nil
	case EdgeKindOverrides:
		return `MATCH (a:Trait {id: $src}), (b:Trait {id: $dst})
				CREATE (a)-[:OVERRIDES {weight: $w}]->(b)`, nil
	case EdgeKindMemberOf:
		return `MATCH (a:Trait {id: $src}), (b:ExclusiveGroup {name: $dst})
				CREATE (a)-[:MEMBER_OF]->(b)`, nil
	default:
		return "", fmt.Errorf("kuzu: unsupported edge kind: %s", kind)
	}
}

// ---------- Read operations ----------

// GetOption retrieves a single Option node by id, or returns nil if not found.
func (s *KuzuStore) GetOption(_ context.Context, id string) (*OptionNode, error) {
	rows, err := s.query(
		"MATCH (o:Trait {id: $id}) RETURN o.id, o.category, o.name",
		map[string]any{"id": id},
	)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	o := rowToOption(rows[0])
	return &o, nil
}

// GetOptions returns every Option node sorted by id.
func (s *KuzuStore) GetOptions(_ context.Context) ([]OptionNode, error) {
	rows, err := s.query("MATCH (o:Trait) RETURN o.id, o.category, o.name ORDER BY o.id", nil)
	if err != nil {
		return nil, err
	}
	out := make([]OptionNode, 0, len(rows))
	for _, r := range rows {
		out = append(out, rowToOption(r))
	}
	return out, nil
}

// GetGroups returns all ExclusiveGroup nodes with their members.
func (s *KuzuStore) GetGroups(_ context.Context) ([]GroupNode, error) {
	rows, err := s.query("MATCH (g:ExclusiveGroup) RETURN g.name ORDER BY g.name", nil)
	if err != nil {
		return nil, err
	}
	out := make([]GroupNode, 0, len(rows))
	for _, r := range rows {
		name := toString(r[0])

		memberRows, err := s.query(
			"MATCH (o:Trait)-[:MEMBER_OF]->(g:ExclusiveGroup {name: $name}) RETURN o.id ORDER BY o.id",
			map[string]any{"name": name},
		)
		if err != nil {
			return nil, err
		}
		members := make([]string, 0, len(memberRows))
		for _, mr := range memberRows {
			members = append(members, toString(mr[0]))
		}
		out = append(out, GroupNode{Name: name, Members: members})
	}
	return out, nil
}

// ---------- Graph traversal ----------

// GetDependencies performs a BFS over FORCES and DEPENDS_ON edges starting
// from the given option id. It returns one DependencyChain per reachable
// option.
func (s *KuzuStore) GetDependencies(_ context.Context, nodeID string, dir Direction, maxDepth int) ([]DependencyChain, error) {
	if maxDepth <= 0 {
		return nil, nil
	}

	type bfsEntry struct {
		path  []string
		depth int
	}
	visited := map[string]bool{nodeID: true}
	queue := []bfsEntry{{path: []string{nodeID}, depth: 0}}
	var chains []DependencyChain

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.depth >= maxDepth {
			continue
		}
		tip := cur.path[len(cur.path)-1]
		neighbors, err := s.chainNeighbors(tip, dir)
		if err != nil {
			return nil, err
		}
		for _, nb := range neighbors {
			if visited[nb] {
				continue
			}
			visited[nb] = true
			newPath := make([]string, len(cur.path)+1)
			copy(newPath, cur.path)
			newPath[len(cur.path)] = nb
			chains = append(chains, DependencyChain{
				Nodes: newPath,
				Depth: cur.depth + 1,
			})
			queue = append(queue, bfsEntry{path: newPath, depth: cur.depth + 1})
		}
	}
	return chains, nil
}

// chainNeighbors returns immediate option neighbors along FORCES and
// DEPENDS_ON edges.
func (s *KuzuStore) chainNeighbors(id string, dir Direction) ([]string, error) {
	var out []string
	for _, kind := range chainKinds {
		var cypher string
		switch dir {
		case DirectionDownstream:
			cypher = fmt.Sprintf("MATCH (a:Trait {id: $id})-[:%s]->(b:Trait) RETURN b.id", kind)
		case DirectionUpstream:
			cypher = fmt.Sprintf("MATCH (a:Trait)-[:%s]->(b:Trait {id: $id}) RETURN a.id", kind)
		default:
			return nil, fmt.Errorf("kuzu: unknown direction: %s", dir)
		}
		rows, err := s.query(cypher, map[string]any{"id": id})
		if err != nil {
			return nil, err
		}
		for _, r := range rows {
			out = append(out, toString(r[0]))
		}
	}
	return out, nil
}

// ---------- Edge enumeration ----------

// GetAllEdges returns all edges across all relationship tables.
func (s *KuzuStore) GetAllEdges(_ context.Context) ([]Edge, error) {
	var edges []Edge
	for _, rt := range relTables {
		var cypher string
		switch rt.kind {
		case EdgeKindOverrides:
			cypher = "MATCH (a:Trait)-[r:OVERRIDES]->(b:Trait) RETURN a.id, b.id, r.weight"
		case EdgeKindMemberOf:
			cypher = "MATCH (a:Trait)-[:MEMBER_OF]->(b:ExclusiveGroup) RETURN a.id, b.name"
		default:
			cypher = fmt.Sprintf("MATCH (a:Trait)-[:%s]->(b:Trait) RETURN a.id, b.id", rt.table)
		}
		rows, err := s.query(cypher, nil)
		if err != nil {
			// Table may not exist yet; skip.
			continue
		}
		for _, r := range rows {
			e := Edge{
				SourceID: toString(r[0]),
				TargetID: toString(r[1]),
				Kind:     rt.kind,
			}
			if len(r) > 2 {
				e.Weight = toFloat64(r[2])
			}
			edges = append(edges, e)
		}
	}
	return edges, nil
}

// ---------- Stats ----------

// Stats returns counts of all node and edge tables.
func (s *KuzuStore) Stats(_ context.Context) (*GraphStats, error) {
	options, err := s.countTable("Trait")
	if err != nil {
		return nil, err
	}
	groups, err := s.countTable("ExclusiveGroup")
	if err != nil {
		return nil, err
	}
	edges, err := s.countEdges()
	if err != nil {
		return nil, err
	}
	return &GraphStats{
		OptionCount: options,
		GroupCount:  groups,
		EdgeCount:   edges,
	}, nil
}

// ---------- Internal helpers ----------

// exec runs a parameterized Cypher statement that produces no result rows.
func (s *KuzuStore) exec(cypher string, params map[string]any) error {
	stmt, err := s.conn.Prepare(cypher)
	if err != nil {
		return fmt.Errorf("kuzu: prepare: %w", err)
	}
	defer stmt.Close()

	res, err := s.conn.Execute(stmt, params)
	if err != nil {
		return fmt.Errorf("kuzu: execute: %w", err)
	}
	res.Close()
	return nil
}

// query runs a parameterized Cypher statement and collects all result rows.
// Each row is a []any slice with values in column order.
func (s *KuzuStore) query(cypher string, params map[string]any) ([][]any, error) {
	var res *kuzu.QueryResult
	var err error

	if len(params) == 0 {
		res, err = s.conn.Query(cypher)
	} else {
		var stmt *kuzu.PreparedStatement
		stmt, err = s.conn.Prepare(cypher)
		if err != nil {
			return nil, fmt.Errorf("kuzu: prepare: %w", err)
		}
		defer stmt.Close()
		res, err = s.conn.Execute(stmt, params)
	}
	if err != nil {
		return nil, fmt.Errorf("kuzu: query: %w", err)
	}
	defer res.Close()

	var rows [][]any
	for res.HasNext() {
		tuple, err := res.Next()
		if err != nil {
			return nil, fmt.Errorf("kuzu: next: %w", err)
		}
		vals, err := tuple.GetAsSlice()
		if err != nil {
			return nil, fmt.Errorf("kuzu: row values: %w", err)
		}
		rows = append(rows, vals)
	}
	return rows, nil
}

// countTable returns the number of rows in a node table.
func (s *KuzuStore) countTable(table string) (int, error) {
	// Table name is a fixed internal constant, not user input.
	cypher := fmt.Sprintf("MATCH (n:%s) RETURN count(n)", table)
	rows, err := s.query(cypher, nil)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return 0, nil
	}
	return toInt(rows[0][0]), nil
}

// countEdges returns the total number of edges across all relationship tables.
func (s *KuzuStore) countEdges() (int, error) {
	total := 0
	for _, rt := range relTables {
		cypher := fmt.Sprintf("MATCH ()-[r:%s]->() RETURN count(r)", rt.table)
		rows, err := s.query(cypher, nil)
		if err != nil {
			// Table may not exist yet; treat as zero.
			continue
		}
		if len(rows) > 0 && len(rows[0]) > 0 {
			total += toInt(rows[0][0])
		}
	}
	return total, nil
}

// rowToOption converts a 3-column result row into an OptionNode.
// Column order: id, category, name.
func rowToOption(r []any) OptionNode {
	return OptionNode{
		ID:       toString(r[0]),
		Category: toString(r[1]),
		Name:     toString(r[2]),
	}
}

// ---------- Type coercion helpers ----------
// KuzuDB returns typed Go values (int64, float64, string).
// These helpers safely coerce any -> concrete type.

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}

func toInt(v any) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case int:
		return n
	case int32:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}

func toFloat64(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}
