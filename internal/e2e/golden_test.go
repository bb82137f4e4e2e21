//go:build e2e

package e2e

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/dusk-indust/traitgen/internal/export"
	"github.com/dusk-indust/traitgen/internal/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var update = flag.Bool("update", false, "update golden files")

// goldenPath returns the path to the rule diagram golden file.
func goldenPath() string {
	return filepath.Join("..", "..", "testdata", "golden", "rules.mmd")
}

func renderRules(t *testing.T) string {
	t.Helper()

	p := openFixture(t)
	store := graph.NewMemStore()
	ctx := context.Background()
	require.NoError(t, graph.BuildRuleGraph(ctx, store, p.Rules))

	out, err := export.GenerateMermaid(ctx, store)
	require.NoError(t, err)
	return out
}

// TestGolden compares the fixture's rule diagram against the golden file.
func TestGolden(t *testing.T) {
	golden, err := os.ReadFile(goldenPath())
	if os.IsNotExist(err) {
		t.Skip("golden file not found; run with -update to generate")
		return
	}
	require.NoError(t, err)

	assert.Equal(t, string(golden), renderRules(t), "rule diagram does not match golden file")
}

// TestUpdateGolden regenerates the golden file.
// Run with: go test -tags e2e -run TestUpdateGolden ./internal/e2e/ -update
func TestUpdateGolden(t *testing.T) {
	if !*update {
		t.Skip("skipping golden file update; run with -update flag")
	}

	require.NoError(t, os.MkdirAll(filepath.Dir(goldenPath()), 0o755))
	require.NoError(t, os.WriteFile(goldenPath(), []byte(renderRules(t)), 0o644))
	t.Logf("updated %s", goldenPath())
}
