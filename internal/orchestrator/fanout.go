package orchestrator

import (
	"github.com/dusk-indust/traitgen/internal/catalog"
	"golang.org/x/sync/errgroup"
)

// settlement is the outcome of one attempt as seen by the settling loop.
type settlement struct {
	attempt int
	options []catalog.Option
	err     error
}

// fanOut launches width independent attempts numbered first+1..first+width
// and streams their settlements in completion order. The channel is closed
// once every attempt has finished. Attempt failures travel inside the
// settlement; they never cancel sibling attempts.
func (o *Orchestrator) fanOut(width, first int) <-chan settlement {
	out := make(chan settlement, width)
	var g errgroup.Group

	for i := 0; i < width; i++ {
		attempt := first + i + 1
		g.Go(func() error {
			opts, err := o.attempt(attempt)
			out <- settlement{attempt: attempt, options: opts, err: err}
			return nil
		})
	}

	go func() {
		_ = g.Wait()
		close(out)
	}()
	return out
}
