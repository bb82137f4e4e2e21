package project

import (
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/dusk-indust/traitgen/internal/graph"
	"github.com/dusk-indust/traitgen/internal/status"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const projectYAML = `
assetsDir: layers
outputDir: build
count: 4
rules:
  processing_order: [Background, Body]
  incompatible_traits:
    "Background:Red": ["Body:Robot"]
`

// writeProject lays out a two-category project under a temp directory.
func writeProject(t *testing.T, yml string, layers map[string][]string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "traitgen.yml"), []byte(yml), 0o644))
	for category, options := range layers {
		for _, opt := range options {
			path := filepath.Join(dir, "layers", category, opt, "0.png")
			require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
			f, err := os.Create(path)
			require.NoError(t, err)
			require.NoError(t, png.Encode(f, image.NewRGBA(image.Rect(0, 0, 2, 2))))
			require.NoError(t, f.Close())
		}
	}
	return dir
}

func defaultLayers() map[string][]string {
	return map[string][]string{
		"Background": {"Red", "Blue", "Green(3)"},
		"Body":       {"Human", "Robot"},
	}
}

func TestLoadConfig(t *testing.T) {
	dir := writeProject(t, projectYAML, defaultLayers())

	cfg, err := LoadConfig(dir, map[string]string{"TRAITGEN_COUNT": "2"})
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Count)
	assert.Equal(t, filepath.Join(dir, "layers"), cfg.AssetsDir)
	assert.Equal(t, 50, cfg.BatchWidth)

	byFile, err := LoadConfig(filepath.Join(dir, "traitgen.yml"), map[string]string{})
	require.NoError(t, err)
	assert.Equal(t, 4, byFile.Count)

	_, err = LoadConfig(filepath.Join(dir, "missing"), nil)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestOpenGenerateExport(t *testing.T) {
	dir := writeProject(t, projectYAML, defaultLayers())
	cfg, err := LoadConfig(dir, map[string]string{})
	require.NoError(t, err)

	p, err := Open(cfg, nil)
	require.NoError(t, err)
	require.True(t, p.Catalog.Validation().IsValid)

	ctx := context.Background()
	report, err := p.Validate(ctx, graph.NewMemStore())
	require.NoError(t, err)
	assert.True(t, report.IsValid())
	assert.Empty(t, report.Findings)
	assert.Equal(t, 5, report.Catalog.Stats.Options)

	res, rep, err := p.Generate(ctx, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, rep.Requested)
	assert.Equal(t, 4, rep.Generated)
	for _, c := range res.Combinations {
		assert.NotEqual(t, "Background:Red|Body:Robot", c.Signature())
	}

	path, err := p.Export(res)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "build", "collection-"+res.RunID+".json"), path)

	runs, err := status.ListRuns(filepath.Join(dir, "build"))
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, rep, runs[0].Report)
}

func TestOpen_RuleErrorsAreFatal(t *testing.T) {
	dir := writeProject(t, "assetsDir: layers\nrules:\n  processing_order: []\n", defaultLayers())
	cfg, err := LoadConfig(dir, map[string]string{})
	require.NoError(t, err)

	_, err = Open(cfg, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "processing_order")
}

func TestOpen_MissingCategoryDirectory(t *testing.T) {
	dir := writeProject(t, projectYAML, map[string][]string{"Background": {"Red"}})
	cfg, err := LoadConfig(dir, map[string]string{})
	require.NoError(t, err)

	_, err = Open(cfg, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `category "Body"`)
}

func TestOpen_InvalidCatalogBlocksGeneration(t *testing.T) {
	dir := writeProject(t, projectYAML, defaultLayers())
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "layers", "Body", "Empty"), 0o755))
	cfg, err := LoadConfig(dir, map[string]string{})
	require.NoError(t, err)

	p, err := Open(cfg, nil)
	require.NoError(t, err)
	report, err := p.Validate(context.Background(), graph.NewMemStore())
	require.NoError(t, err)
	assert.False(t, report.IsValid())
	assert.NotEmpty(t, report.Errors)

	_, _, err = p.Generate(context.Background(), 2, nil)
	assert.Error(t, err)
}

func TestOpen_ForcedPairingIntoEarlierCategoryIsFatal(t *testing.T) {
	yml := projectYAML + "  forced_pairings:\n    \"Body:Robot\": \"Background:Red\"\n"
	dir := writeProject(t, yml, defaultLayers())
	cfg, err := LoadConfig(dir, map[string]string{})
	require.NoError(t, err)

	_, err = Open(cfg, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "forced_pairings")
}

func TestValidate_ReportsUnreachableBareForcedPairing(t *testing.T) {
	yml := projectYAML + "  forced_pairings:\n    \"Body:Robot\": \"Blue\"\n"
	dir := writeProject(t, yml, defaultLayers())
	cfg, err := LoadConfig(dir, map[string]string{})
	require.NoError(t, err)

	p, err := Open(cfg, nil)
	require.NoError(t, err)
	report, err := p.Validate(context.Background(), graph.NewMemStore())
	require.NoError(t, err)
	require.Len(t, report.Findings, 1)
	assert.Equal(t, graph.FindingOrder, report.Findings[0].Kind)
	assert.Equal(t, []string{"Body:Robot", "Blue"}, report.Findings[0].Nodes)
}
