package status

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dusk-indust/traitgen/internal/catalog"
	"github.com/dusk-indust/traitgen/internal/graph"
	"github.com/dusk-indust/traitgen/internal/orchestrator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReport(t *testing.T) {
	res := &orchestrator.Result{
		RunID: "run-1",
		Stats: orchestrator.Stats{Requested: 5, Generated: 3, Attempts: 50, Duplicates: 40, Discarded: 6, Failed: 1},
	}
	r := NewReport(res)
	assert.Equal(t, Report{
		RunID: "run-1", Requested: 5, Generated: 3, Attempts: 50,
		Duplicates: 40, Discarded: 6, Failed: 1, Shortfall: 2,
	}, r)
}

func TestFormat(t *testing.T) {
	out := Format(Report{RunID: "abc", Requested: 3, Generated: 3, Attempts: 4, Duplicates: 1})
	assert.Contains(t, out, "run abc")
	assert.Contains(t, out, "generated  3/3")
	assert.NotContains(t, out, "shortfall")

	out = Format(Report{RunID: "abc", Requested: 3, Generated: 2, Attempts: 30, Shortfall: 1})
	assert.Contains(t, out, "warning: shortfall of 1")
}

func TestFormatValidation(t *testing.T) {
	res := catalog.ValidationResult{
		IsValid:  false,
		Errors:   catalog.ValidationErrors{{Path: "Hat/Cap", Reason: "node is empty"}},
		Warnings: []string{"frame size differs"},
		Stats: catalog.Stats{
			Categories: 2, Options: 5, Containers: 1, Frames: 9,
			OptionsByCategory: map[string]int{"Hat": 2, "Body": 3},
		},
	}
	v := NewValidationReport(res, []graph.Finding{{Kind: graph.FindingCycle, Message: "pull cycle: a -> b -> a"}})
	assert.False(t, v.IsValid())
	assert.Equal(t, []string{"catalog: Hat/Cap: node is empty"}, v.Errors)

	out := FormatValidation(v)
	assert.Contains(t, out, "2 categories, 5 options, 1 containers, 9 frames")
	assert.Less(t, strings.Index(out, "Body"), strings.Index(out, "Hat "))
	assert.Contains(t, out, "\u2717 catalog: Hat/Cap: node is empty")
	assert.Contains(t, out, "! frame size differs")
	assert.Contains(t, out, "! rules (cycle): pull cycle")
	assert.NotContains(t, out, "valid\n")

	res.IsValid = true
	res.Errors = nil
	out = FormatValidation(NewValidationReport(res, nil))
	assert.Contains(t, out, "\u2713 valid")
}

func TestListRuns(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	write("collection-b.json", `{"exportedAt":"2026-02-01T00:00:00Z","report":{"runId":"b","requested":2,"generated":2}}`)
	write("collection-a.json", `{"exportedAt":"2026-01-01T00:00:00Z","report":{"runId":"a","requested":3,"generated":1,"shortfall":2}}`)
	write("collection-bad.json", `{not json`)
	write("notes.json", `{}`)

	runs, err := ListRuns(dir)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "a", runs[0].Report.RunID)
	assert.Equal(t, 2, runs[0].Report.Shortfall)
	assert.Equal(t, "b", runs[1].Report.RunID)
	assert.Equal(t, filepath.Join(dir, "collection-b.json"), runs[1].Path)

	none, err := ListRuns(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.Empty(t, none)
}
