package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dusk-indust/traitgen/internal/catalog"
	"github.com/dusk-indust/traitgen/internal/collection"
	"github.com/dusk-indust/traitgen/internal/status"
)

// CollectionExport is the top-level JSON export structure.
type CollectionExport struct {
	RunID        string              `json:"runId"`
	ExportedAt   string              `json:"exportedAt"`
	Report       status.Report       `json:"report"`
	Combinations []CombinationExport `json:"combinations"`
}

// CombinationExport describes one generated item.
type CombinationExport struct {
	ID        int            `json:"id"`
	Options   []OptionExport `json:"options"`
	Rarity    RarityExport   `json:"rarity"`
	CreatedAt string         `json:"createdAt"`
	Signature string         `json:"signature"`
}

// OptionExport is one selected option with its asset frames.
type OptionExport struct {
	Category string          `json:"category"`
	Name     string          `json:"name"`
	Weight   int             `json:"weight"`
	Frames   []catalog.Frame `json:"frames"`
	Location string          `json:"location,omitempty"`
}

// RarityExport mirrors collection.Rarity.
type RarityExport struct {
	Overall    float64                   `json:"overall"`
	PerOption  []collection.OptionRarity `json:"perOption"`
	Rank       int                       `json:"rank"`
	Percentile float64                   `json:"percentile"`
}

// BuildExport assembles the export for one run. Combinations keep their id
// order.
func BuildExport(runID string, report status.Report, combos []*collection.Combination) *CollectionExport {
	export := &CollectionExport{
		RunID:        runID,
		ExportedAt:   time.Now().UTC().Format(time.RFC3339),
		Report:       report,
		Combinations: make([]CombinationExport, 0, len(combos)),
	}

	for _, c := range combos {
		ce := CombinationExport{
			ID:        c.ID,
			Options:   make([]OptionExport, 0, len(c.Options)),
			CreatedAt: c.CreatedAt.UTC().Format(time.RFC3339Nano),
			Signature: c.Signature(),
			Rarity: RarityExport{
				Overall:    c.Rarity.Overall,
				PerOption:  c.Rarity.PerOption,
				Rank:       c.Rarity.Rank,
				Percentile: c.Rarity.Percentile,
			},
		}
		for _, o := range c.Options {
			ce.Options = append(ce.Options, OptionExport{
				Category: o.Category,
				Name:     o.Name,
				Weight:   o.Weight,
				Frames:   o.Frames,
				Location: o.Location,
			})
		}
		export.Combinations = append(export.Combinations, ce)
	}

	return export
}

// Path returns the export file path for a run, matching status.ExportPattern.
func Path(outputDir, runID string) string {
	return filepath.Join(outputDir, "collection-"+runID+".json")
}

// WriteJSON writes export as indented JSON, creating parent directories.
func WriteJSON(path string, export *CollectionExport) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("export: create directory: %w", err)
	}
	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("export: marshal: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("export: write %s: %w", path, err)
	}
	return nil
}
