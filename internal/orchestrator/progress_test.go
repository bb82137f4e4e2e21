package orchestrator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressReporter_EmitAndSubscribe(t *testing.T) {
	pr := NewProgressReporter()
	defer pr.Close()

	ch := pr.Subscribe()
	want := ProgressEvent{
		RunID:     "run-1",
		Round:     2,
		Requested: 10,
		Accepted:  4,
		Attempts:  7,
		Status:    ProgressWorking,
	}

	pr.Emit(want)

	select {
	case got := <-ch:
		assert.Equal(t, want, got)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for progress event")
	}
}

func TestProgressReporter_EmitWhenFull_DoesNotBlock(t *testing.T) {
	pr := NewProgressReporter()
	defer pr.Close()

	// The internal channel buffer is 64. Emitting 100 events must never block.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			pr.Emit(ProgressEvent{Round: i, Status: ProgressWorking})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Emit blocked when the channel was full")
	}
}

func TestProgressReporter_Close_ChannelClosed(t *testing.T) {
	pr := NewProgressReporter()
	ch := pr.Subscribe()

	pr.Emit(ProgressEvent{Round: 1, Status: ProgressComplete})
	pr.Close()

	var received []ProgressEvent
	for ev := range ch {
		received = append(received, ev)
	}
	require.Len(t, received, 1)
	assert.Equal(t, ProgressComplete, received[0].Status)
}

func TestFormatProgress_AllStatuses(t *testing.T) {
	tests := []struct {
		name   string
		event  ProgressEvent
		expect string
	}{
		{
			name:   "working",
			event:  ProgressEvent{Round: 3, Requested: 10, Accepted: 6, Attempts: 9, Duplicates: 2, Status: ProgressWorking},
			expect: "  \u25cf round 3: 6/10 accepted (9 attempts, 2 duplicates)",
		},
		{
			name:   "complete",
			event:  ProgressEvent{Requested: 10, Accepted: 10, Attempts: 12, Status: ProgressComplete},
			expect: "  \u2713 10/10 generated in 12 attempts",
		},
		{
			name:   "shortfall",
			event:  ProgressEvent{Requested: 3, Accepted: 2, Attempts: 30, Status: ProgressShortfall},
			expect: "  \u2717 shortfall: 2/3 generated in 30 attempts",
		},
		{
			name:   "cancelled",
			event:  ProgressEvent{Round: 4, Status: ProgressCancelled, Message: "context canceled"},
			expect: "  \u2717 cancelled after round 4: context canceled",
		},
		{
			name:   "unknown",
			event:  ProgressEvent{Round: 1, Status: "bogus"},
			expect: "  ? round 1 (unknown status)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, FormatProgress(tt.event))
		})
	}
}
