package orchestrator

import "fmt"

// ProgressStatus is the state of a generation run after a round.
type ProgressStatus string

const (
	ProgressWorking   ProgressStatus = "working"
	ProgressComplete  ProgressStatus = "complete"
	ProgressShortfall ProgressStatus = "shortfall"
	ProgressCancelled ProgressStatus = "cancelled"
)

// ProgressEvent is emitted after every round of attempts.
type ProgressEvent struct {
	RunID      string
	Round      int
	Requested  int
	Accepted   int
	Attempts   int
	Duplicates int
	Status     ProgressStatus
	Message    string
}

// ProgressReporter emits progress events through a buffered channel.
type ProgressReporter struct {
	ch chan ProgressEvent
}

// NewProgressReporter creates a ProgressReporter with a buffered channel of size 64.
func NewProgressReporter() *ProgressReporter {
	return &ProgressReporter{
		ch: make(chan ProgressEvent, 64),
	}
}

// Emit sends a progress event in a non-blocking fashion.
// If the channel is full, the event is silently dropped.
func (pr *ProgressReporter) Emit(event ProgressEvent) {
	select {
	case pr.ch <- event:
	default:
	}
}

// Subscribe returns a read-only channel for consuming progress events.
func (pr *ProgressReporter) Subscribe() <-chan ProgressEvent {
	return pr.ch
}

// Close closes the progress event channel.
func (pr *ProgressReporter) Close() {
	close(pr.ch)
}

// FormatProgress formats a ProgressEvent as a human-readable status line.
func FormatProgress(event ProgressEvent) string {
	switch event.Status {
	case ProgressWorking:
		return fmt.Sprintf("  \u25cf round %d: %d/%d accepted (%d attempts, %d duplicates)",
			event.Round, event.Accepted, event.Requested, event.Attempts, event.Duplicates)
	case ProgressComplete:
		return fmt.Sprintf("  \u2713 %d/%d generated in %d attempts", event.Accepted, event.Requested, event.Attempts)
	case ProgressShortfall:
		return fmt.Sprintf("  \u2717 shortfall: %d/%d generated in %d attempts", event.Accepted, event.Requested, event.Attempts)
	case ProgressCancelled:
		return fmt.Sprintf("  \u2717 cancelled after round %d: %s", event.Round, event.Message)
	default:
		return fmt.Sprintf("  ? round %d (unknown status)", event.Round)
	}
}
