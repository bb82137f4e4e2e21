package orchestrator

import (
	"context"
	"fmt"

	"github.com/dusk-indust/traitgen/internal/collection"
)

// ProcessingError is the failure of a single generation attempt. Recoverable
// errors mean the rules left no candidates for a category; anything else is
// an unexpected resolution failure. Neither aborts the batch.
type ProcessingError struct {
	Attempt     int
	Category    string
	Option      string
	Recoverable bool
	Err         error
}

func (e *ProcessingError) Error() string {
	kind := "non-recoverable"
	if e.Recoverable {
		kind = "recoverable"
	}
	if e.Option != "" {
		return fmt.Sprintf("attempt %d: %s (%s) %s: %v", e.Attempt, e.Category, e.Option, kind, e.Err)
	}
	return fmt.Sprintf("attempt %d: %s %s: %v", e.Attempt, e.Category, kind, e.Err)
}

func (e *ProcessingError) Unwrap() error {
	return e.Err
}

// Stats are the aggregate counters of one Generate call.
type Stats struct {
	Requested  int `json:"requested"`
	Generated  int `json:"generated"`
	Attempts   int `json:"attempts"`
	Duplicates int `json:"duplicates"`
	// Discarded counts attempts that hit a recoverable rule dead end.
	Discarded int `json:"discarded"`
	// Failed counts attempts that hit a non-recoverable error.
	Failed int `json:"failed"`
	Rounds int `json:"rounds"`
}

// Shortfall is how many requested combinations were not produced.
func (s Stats) Shortfall() int {
	if s.Generated >= s.Requested {
		return 0
	}
	return s.Requested - s.Generated
}

// Result is the output of one Generate call. Combinations are in id order
// with rarity rank and percentile already assigned.
type Result struct {
	RunID        string                    `json:"runId"`
	Combinations []*collection.Combination `json:"combinations"`
	Stats        Stats                     `json:"stats"`
}

// Generator produces unique combinations.
type Generator interface {
	// Generate returns up to count unique combinations. A result shorter
	// than count is a shortfall, not an error.
	Generate(ctx context.Context, count int) (*Result, error)

	// Progress returns a channel that emits one event per round.
	Progress() <-chan ProgressEvent
}
