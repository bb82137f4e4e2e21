package orchestrator

import (
	"time"

	"github.com/dusk-indust/traitgen/internal/sampler"
	"go.uber.org/zap"
)

// Defaults for Config.
const (
	DefaultBatchWidth        = 50
	DefaultAttemptMultiplier = 10
)

// Config holds runtime settings for a generation run.
type Config struct {
	// BatchWidth caps how many attempts run concurrently in one round.
	BatchWidth int

	// AttemptMultiplier sets the attempt budget to count*AttemptMultiplier.
	AttemptMultiplier int

	// Source feeds the weighted sampler and must be safe for concurrent use.
	// Nil uses sampler.Default.
	Source sampler.Source

	// Logger receives attempt failures and shortfall warnings. Nil disables logging.
	Logger *zap.Logger

	// Now stamps accepted combinations. Nil uses time.Now.
	Now func() time.Time
}

func (c Config) withDefaults() Config {
	if c.BatchWidth <= 0 {
		c.BatchWidth = DefaultBatchWidth
	}
	if c.AttemptMultiplier <= 0 {
		c.AttemptMultiplier = DefaultAttemptMultiplier
	}
	if c.Source == nil {
		c.Source = sampler.Default
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}
