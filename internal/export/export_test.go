package export

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dusk-indust/traitgen/internal/catalog"
	"github.com/dusk-indust/traitgen/internal/collection"
	"github.com/dusk-indust/traitgen/internal/graph"
	"github.com/dusk-indust/traitgen/internal/rules"
	"github.com/dusk-indust/traitgen/internal/status"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleCombos() []*collection.Combination {
	created := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	return []*collection.Combination{
		{
			ID: 1,
			Options: []catalog.Option{
				{Category: "Background", Name: "Red", Weight: 5, Frames: []catalog.Frame{{Ref: "bg/red.png", Width: 4, Height: 4}}},
				{Category: "Body", Name: "Robot", Weight: 1, Frames: []catalog.Frame{{Ref: "body/robot.png"}}, Location: "body/robot"},
			},
			Rarity: collection.Rarity{
				Overall:   0.5,
				PerOption: []collection.OptionRarity{{Key: "Background:Red", Rarity: 0.5}, {Key: "Body:Robot", Rarity: 0.5}},
				Rank:      1, Percentile: 50,
			},
			CreatedAt: created,
		},
		{
			ID:        2,
			Options:   []catalog.Option{{Category: "Background", Name: "Blue", Weight: 1}, {Category: "Body", Name: "Robot", Weight: 1}},
			Rarity:    collection.Rarity{Overall: 0.5, Rank: 2, Percentile: 100},
			CreatedAt: created,
		},
	}
}

func TestBuildExport(t *testing.T) {
	report := status.Report{RunID: "run-1", Requested: 2, Generated: 2, Attempts: 3, Duplicates: 1}
	exp := BuildExport("run-1", report, sampleCombos())

	assert.Equal(t, "run-1", exp.RunID)
	assert.Equal(t, report, exp.Report)
	_, err := time.Parse(time.RFC3339, exp.ExportedAt)
	require.NoError(t, err)

	require.Len(t, exp.Combinations, 2)
	first := exp.Combinations[0]
	assert.Equal(t, 1, first.ID)
	assert.Equal(t, "Background:Red|Body:Robot", first.Signature)
	assert.Equal(t, "2026-03-04T05:06:07Z", first.CreatedAt)
	assert.Equal(t, OptionExport{
		Category: "Body", Name: "Robot", Weight: 1,
		Frames: []catalog.Frame{{Ref: "body/robot.png"}}, Location: "body/robot",
	}, first.Options[1])
	assert.Equal(t, 1, first.Rarity.Rank)
	assert.Len(t, first.Rarity.PerOption, 2)
	assert.Equal(t, 100.0, exp.Combinations[1].Rarity.Percentile)
}

func TestWriteJSON_RoundTripsThroughStatus(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	report := status.Report{RunID: "run-7", Requested: 3, Generated: 2, Shortfall: 1}
	path := Path(dir, "run-7")
	require.NoError(t, WriteJSON(path, BuildExport("run-7", report, sampleCombos())))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "run-7", decoded["runId"])
	combos := decoded["combinations"].([]any)
	require.Len(t, combos, 2)
	opt := combos[0].(map[string]any)["options"].([]any)[0].(map[string]any)
	assert.Equal(t, "Background", opt["category"])
	assert.EqualValues(t, 5, opt["weight"])

	runs, err := status.ListRuns(dir)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, report, runs[0].Report)
}

func TestGenerateMermaid(t *testing.T) {
	ctx := context.Background()
	rs, err := rules.Compile(rules.Config{
		ProcessingOrder:    []string{"Background", "Hat", "Body"},
		IncompatibleTraits: map[string][]string{"Background:Red": {"Body:Robot"}},
		ForcedPairings:     map[string]string{"Hat:Crown": "Body:King"},
		DependentTraits:    map[string]string{"Body:King": "Background:Gold"},
		ExclusiveGroups:    map[string][]string{"headwear": {"Hat:Crown", "Cap"}},
		ConditionalRarity:  map[string]map[string]float64{"Body:Robot": {"Hat:Antenna": 2.5}},
	})
	require.NoError(t, err)
	store := graph.NewMemStore()
	require.NoError(t, graph.BuildRuleGraph(ctx, store, rs))

	out, err := GenerateMermaid(ctx, store)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Equal(t, "graph LR", lines[0])
	assert.Equal(t, `  subgraph N0["headwear"]`, lines[1])
	assert.Equal(t, `    N1["Cap"]`, lines[2])
	assert.Equal(t, `    N2["Hat:Crown"]`, lines[3])
	assert.Equal(t, "  end", lines[4])

	assert.Contains(t, out, `["Background:Gold"]`)
	assert.Contains(t, out, "x--x")
	assert.Contains(t, out, "==>|forces|")
	assert.Contains(t, out, "-->|depends on|")
	assert.Contains(t, out, "-.->|weight 2.5|")
	// Grouped options are drawn once.
	assert.Equal(t, 1, strings.Count(out, `["Hat:Crown"]`))
}

func TestGenerateMermaid_EmptyGraph(t *testing.T) {
	out, err := GenerateMermaid(context.Background(), graph.NewMemStore())
	require.NoError(t, err)
	assert.Equal(t, "graph LR\n", out)
}
