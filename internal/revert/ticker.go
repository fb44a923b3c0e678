package revert

import (
	"context"
	"time"
)

// DefaultTickInterval is used when the configured interval is not positive
const DefaultTickInterval = 100 * time.Millisecond

// RunUntilDone drives a workflow at a fixed interval until it reaches a
// terminal state. Cancelling the context cancels the workflow. Returns
// the terminal outcome.
func RunUntilDone(ctx context.Context, w *Workflow, interval time.Duration) *Outcome {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			w.Cancel()
			return w.Outcome()
		case <-w.Done():
			return w.Outcome()
		case <-t.C:
			if w.Tick(ctx) == TickTerminal {
				return w.Outcome()
			}
		}
	}
}
