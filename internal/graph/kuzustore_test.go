//go:build cgo

package graph

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestStore creates a fresh in-memory KuzuStore with an initialized schema.
// It registers a cleanup function to close the store when the test finishes.
func newTestStore(t *testing.T) *KuzuStore {
	t.Helper()
	s, err := NewKuzuStore()
	require.NoError(t, err, "NewKuzuStore should not fail")
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.InitSchema(context.Background()), "InitSchema should not fail")
	return s
}

func TestKuzuStore_InitSchema(t *testing.T) {
	s, err := NewKuzuStore()
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	ctx := context.Background()

	// First call creates the tables.
	require.NoError(t, s.InitSchema(ctx))

	// Second call should be idempotent (IF NOT EXISTS).
	require.NoError(t, s.InitSchema(ctx))
}

func TestKuzuStore_OptionRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	node := OptionNode{ID: "Hat:Crown", Category: "Hat", Name: "Crown"}
	require.NoError(t, s.AddOption(ctx, node))

	got, err := s.GetOption(ctx, node.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, node, *got)

	missing, err := s.GetOption(ctx, "Hat:Nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestKuzuStore_MatchesMemStore(t *testing.T) {
	ctx := context.Background()
	rs := sampleRules(t)

	mem := NewMemStore()
	require.NoError(t, BuildRuleGraph(ctx, mem, rs))
	kz := newTestStore(t)
	require.NoError(t, BuildRuleGraph(ctx, kz, rs))

	memStats, err := mem.Stats(ctx)
	require.NoError(t, err)
	kzStats, err := kz.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, memStats, kzStats)

	memOpts, err := mem.GetOptions(ctx)
	require.NoError(t, err)
	kzOpts, err := kz.GetOptions(ctx)
	require.NoError(t, err)
	assert.Equal(t, memOpts, kzOpts)

	memGroups, err := mem.GetGroups(ctx)
	require.NoError(t, err)
	kzGroups, err := kz.GetGroups(ctx)
	require.NoError(t, err)
	assert.Equal(t, memGroups, kzGroups)

	memEdges, err := mem.GetAllEdges(ctx)
	require.NoError(t, err)
	kzEdges, err := kz.GetAllEdges(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, memEdges, kzEdges)

	chains, err := kz.GetDependencies(ctx, "Hat:Crown", DirectionDownstream, 5)
	require.NoError(t, err)
	require.Len(t, chains, 2)
	assert.Equal(t, []string{"Hat:Crown", "Body:King", "Background:Gold"}, chains[1].Nodes)

	up, err := kz.GetDependencies(ctx, "Body:King", DirectionUpstream, 1)
	require.NoError(t, err)
	require.Len(t, up, 1)
	assert.Equal(t, []string{"Body:King", "Hat:Crown"}, up[0].Nodes)

	findings, err := Lint(ctx, kz)
	require.NoError(t, err)
	assert.Empty(t, findings)
}

func TestKuzuStore_UnsupportedEdgeKind(t *testing.T) {
	s := newTestStore(t)
	err := s.AddEdge(context.Background(), Edge{SourceID: "a", TargetID: "b", Kind: "LIKES"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported edge kind")
}

func TestKuzuStore_FileStorePersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "rules", "graph.kuzu")

	s, err := NewKuzuFileStore(path)
	require.NoError(t, err)
	require.NoError(t, s.InitSchema(ctx))
	require.NoError(t, s.AddOption(ctx, OptionNode{ID: "Cap", Name: "Cap"}))
	require.NoError(t, s.Close())

	reopened, err := NewKuzuFileStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	got, err := reopened.GetOption(ctx, "Cap")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Cap", got.Name)
}
