package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/dusk-indust/traitgen/internal/catalog"
	"github.com/dusk-indust/traitgen/internal/collection"
	"github.com/dusk-indust/traitgen/internal/rarity"
	"github.com/dusk-indust/traitgen/internal/rules"
	"github.com/dusk-indust/traitgen/internal/sampler"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Compile-time interface check.
var _ Generator = (*Orchestrator)(nil)

// Catalog is the read-only trait catalog the orchestrator draws from.
// *catalog.Catalog satisfies it.
type Catalog interface {
	rules.Resolver
	Validation() catalog.ValidationResult
}

// Orchestrator drives batches of concurrent generation attempts. Run state
// (accepted list, seen signatures, counters) lives in a run value owned by
// the goroutine calling Generate; attempts only read the catalog and rules.
type Orchestrator struct {
	cfg      Config
	catalog  Catalog
	engine   *rules.Engine
	progress *ProgressReporter
	logger   *zap.Logger
}

// New creates an Orchestrator generating from cat under rs.
func New(cat Catalog, rs *rules.RuleSet, cfg Config) *Orchestrator {
	cfg = cfg.withDefaults()
	return &Orchestrator{
		cfg:      cfg,
		catalog:  cat,
		engine:   rules.NewEngine(rs, cat),
		progress: NewProgressReporter(),
		logger:   cfg.Logger,
	}
}

// Progress returns a channel that emits one event per round.
func (o *Orchestrator) Progress() <-chan ProgressEvent {
	return o.progress.Subscribe()
}

// Close shuts down the progress reporter.
func (o *Orchestrator) Close() {
	o.progress.Close()
}

// run is the mutable state of one Generate call. Only the settling loop
// touches it.
type run struct {
	id       string
	accepted []*collection.Combination
	seen     map[string]bool
	scorer   *rarity.Scorer
	stats    Stats
}

// Generate produces up to count unique combinations in rounds of at most
// BatchWidth concurrent attempts, stopping once count are accepted or the
// attempt budget of count*AttemptMultiplier is spent. Catalog validation
// errors block generation. Cancelling ctx stops between rounds and returns
// what was accepted so far together with ctx.Err().
func (o *Orchestrator) Generate(ctx context.Context, count int) (*Result, error) {
	v := o.catalog.Validation()
	if !v.IsValid {
		if len(v.Errors) > 0 {
			return nil, v.Errors
		}
		return nil, catalog.ErrNotBuilt
	}
	if count < 0 {
		return nil, fmt.Errorf("orchestrator: count must not be negative, got %d", count)
	}

	r := &run{
		id:     uuid.NewString(),
		seen:   make(map[string]bool, count),
		scorer: rarity.NewScorer(),
		stats:  Stats{Requested: count},
	}
	log := o.logger.With(zap.String("run_id", r.id))
	maxAttempts := count * o.cfg.AttemptMultiplier

	var runErr error
	for len(r.accepted) < count && r.stats.Attempts < maxAttempts {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		width := min(o.cfg.BatchWidth, count-len(r.accepted), maxAttempts-r.stats.Attempts)
		r.stats.Rounds++

		for s := range o.fanOut(width, r.stats.Attempts) {
			o.settle(r, s, log)
		}

		o.progress.Emit(ProgressEvent{
			RunID:      r.id,
			Round:      r.stats.Rounds,
			Requested:  count,
			Accepted:   len(r.accepted),
			Attempts:   r.stats.Attempts,
			Duplicates: r.stats.Duplicates,
			Status:     ProgressWorking,
		})
	}

	r.scorer.ScoreAll(r.accepted)
	r.stats.Generated = len(r.accepted)

	final := ProgressEvent{
		RunID:      r.id,
		Round:      r.stats.Rounds,
		Requested:  count,
		Accepted:   len(r.accepted),
		Attempts:   r.stats.Attempts,
		Duplicates: r.stats.Duplicates,
		Status:     ProgressComplete,
	}
	switch {
	case runErr != nil:
		final.Status = ProgressCancelled
		final.Message = runErr.Error()
	case r.stats.Shortfall() > 0:
		final.Status = ProgressShortfall
		log.Warn("generation shortfall",
			zap.Int("requested", count),
			zap.Int("generated", r.stats.Generated),
			zap.Int("attempts", r.stats.Attempts),
			zap.Int("duplicates", r.stats.Duplicates))
	default:
		log.Debug("generation complete",
			zap.Int("generated", r.stats.Generated),
			zap.Int("attempts", r.stats.Attempts))
	}
	o.progress.Emit(final)

	return &Result{
		RunID:        r.id,
		Combinations: r.accepted,
		Stats:        r.stats,
	}, runErr
}

// settle folds one attempt outcome into the run. Ids are assigned here, in
// settlement order.
func (o *Orchestrator) settle(r *run, s settlement, log *zap.Logger) {
	r.stats.Attempts++

	if s.err != nil {
		var perr *ProcessingError
		if errors.As(s.err, &perr) && perr.Recoverable {
			r.stats.Discarded++
			return
		}
		r.stats.Failed++
		fields := []zap.Field{zap.Int("attempt", s.attempt), zap.Error(s.err)}
		if perr != nil {
			fields = append(fields, zap.String("category", perr.Category), zap.String("option", perr.Option))
		}
		log.Warn("generation attempt failed", fields...)
		return
	}

	sig := collection.Signature(s.options)
	if r.seen[sig] {
		r.stats.Duplicates++
		return
	}
	r.seen[sig] = true
	c := &collection.Combination{
		ID:        len(r.accepted) + 1,
		Options:   s.options,
		CreatedAt: o.cfg.Now(),
	}
	r.accepted = append(r.accepted, c)
	r.scorer.Record(c)
}

// attempt builds one full combination, walking every category in processing
// order through the rule engine and the sampler.
func (o *Orchestrator) attempt(n int) ([]catalog.Option, error) {
	order := o.engine.Rules().Order
	sel := rules.NewSelection(len(order))

	for _, category := range order {
		res, err := o.engine.Resolve(sel, category)
		if err != nil {
			perr := &ProcessingError{
				Attempt:     n,
				Category:    category,
				Recoverable: errors.Is(err, rules.ErrNoCandidates),
				Err:         err,
			}
			var rerr *rules.ResolutionError
			if errors.As(err, &rerr) {
				perr.Option = rerr.Key.String()
			}
			return nil, perr
		}
		if res.Filled {
			continue
		}
		pick, err := sampler.Select(res.Candidates, o.cfg.Source)
		if err != nil {
			return nil, &ProcessingError{Attempt: n, Category: category, Recoverable: true, Err: err}
		}
		sel.Add(pick.Option)
	}

	opts := sel.Ordered(order)
	if len(opts) != len(order) {
		return nil, &ProcessingError{
			Attempt: n,
			Err:     fmt.Errorf("assembled %d of %d categories", len(opts), len(order)),
		}
	}
	return opts, nil
}
