package status

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dusk-indust/traitgen/internal/catalog"
	"github.com/dusk-indust/traitgen/internal/graph"
	"github.com/dusk-indust/traitgen/internal/orchestrator"
)

// ExportPattern matches collection files written by the export package.
const ExportPattern = "collection-*.json"

// Report summarizes one generation run.
type Report struct {
	RunID      string `json:"runId"`
	Requested  int    `json:"requested"`
	Generated  int    `json:"generated"`
	Attempts   int    `json:"attempts"`
	Duplicates int    `json:"duplicates"`
	Discarded  int    `json:"discarded"`
	Failed     int    `json:"failed"`
	Shortfall  int    `json:"shortfall"`
}

// NewReport builds a Report from a generation result.
func NewReport(res *orchestrator.Result) Report {
	return Report{
		RunID:      res.RunID,
		Requested:  res.Stats.Requested,
		Generated:  res.Stats.Generated,
		Attempts:   res.Stats.Attempts,
		Duplicates: res.Stats.Duplicates,
		Discarded:  res.Stats.Discarded,
		Failed:     res.Stats.Failed,
		Shortfall:  res.Stats.Shortfall(),
	}
}

// Format renders r as a short multi-line summary. A shortfall is flagged
// as a warning.
func Format(r Report) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "run %s\n", r.RunID)
	fmt.Fprintf(&sb, "  generated  %d/%d\n", r.Generated, r.Requested)
	fmt.Fprintf(&sb, "  attempts   %d (%d duplicates, %d discarded, %d failed)\n",
		r.Attempts, r.Duplicates, r.Discarded, r.Failed)
	if r.Shortfall > 0 {
		fmt.Fprintf(&sb, "  warning: shortfall of %d; the rules may not allow %d unique combinations\n",
			r.Shortfall, r.Requested)
	}
	return sb.String()
}

// ValidationReport pairs catalog validation with rule-graph lint findings.
type ValidationReport struct {
	Catalog  catalog.ValidationResult `json:"catalog"`
	Errors   []string                 `json:"errors,omitempty"`
	Findings []graph.Finding          `json:"findings,omitempty"`
}

// NewValidationReport copies the catalog error messages so the report
// serializes on its own.
func NewValidationReport(res catalog.ValidationResult, findings []graph.Finding) ValidationReport {
	return ValidationReport{
		Catalog:  res,
		Errors:   res.ErrorMessages(),
		Findings: findings,
	}
}

// IsValid reports whether generation may run. Lint findings never block.
func (v ValidationReport) IsValid() bool {
	return v.Catalog.IsValid
}

// FormatValidation renders a validation report with catalog stats first.
func FormatValidation(v ValidationReport) string {
	var sb strings.Builder
	st := v.Catalog.Stats
	fmt.Fprintf(&sb, "catalog: %d categories, %d options, %d containers, %d frames\n",
		st.Categories, st.Options, st.Containers, st.Frames)

	cats := make([]string, 0, len(st.OptionsByCategory))
	for c := range st.OptionsByCategory {
		cats = append(cats, c)
	}
	sort.Strings(cats)
	for _, c := range cats {
		fmt.Fprintf(&sb, "  %-16s %d\n", c, st.OptionsByCategory[c])
	}

	for _, e := range v.Errors {
		fmt.Fprintf(&sb, "  \u2717 %s\n", e)
	}
	for _, w := range v.Catalog.Warnings {
		fmt.Fprintf(&sb, "  ! %s\n", w)
	}
	for _, f := range v.Findings {
		fmt.Fprintf(&sb, "  ! rules (%s): %s\n", f.Kind, f.Message)
	}
	if v.IsValid() {
		sb.WriteString("  \u2713 valid\n")
	}
	return sb.String()
}

// RunSummary is the report stored in one export file.
type RunSummary struct {
	Path       string `json:"path"`
	ExportedAt string `json:"exportedAt"`
	Report     Report `json:"report"`
}

// ListRuns reads the report of every export file in outputDir, oldest
// first. Unreadable files are skipped. A missing directory yields no runs.
func ListRuns(outputDir string) ([]RunSummary, error) {
	paths, err := filepath.Glob(filepath.Join(outputDir, ExportPattern))
	if err != nil {
		return nil, fmt.Errorf("status: list exports: %w", err)
	}

	var runs []RunSummary
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			continue
		}
		var head struct {
			ExportedAt string `json:"exportedAt"`
			Report     Report `json:"report"`
		}
		if err := json.Unmarshal(data, &head); err != nil {
			continue
		}
		runs = append(runs, RunSummary{Path: p, ExportedAt: head.ExportedAt, Report: head.Report})
	}
	sort.SliceStable(runs, func(i, j int) bool { return runs[i].ExportedAt < runs[j].ExportedAt })
	return runs, nil
}
