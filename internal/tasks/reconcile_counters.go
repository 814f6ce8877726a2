package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/mymotiv/internal/logging"
)

// CounterReconciler recomputes denormalized counters from their source rows
// and returns how many rows it corrected.
type CounterReconciler interface {
	ReconcileCounters(ctx context.Context) (int, error)
}

// ReconcileCountersTask recomputes favorite and quote counters.
type ReconcileCountersTask struct {
	Reason string `json:"reason,omitempty"`
}

// Config returns the queue configuration for counter reconciliation.
func (t ReconcileCountersTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "reconcile_counters",
		MaxAttempts: 3,
		Backoff:     5 * time.Minute,
		Timeout:     10 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   7 * 24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// ReconcileCountersProcessor creates a processor function for ReconcileCountersTask.
func ReconcileCountersProcessor(reconciler CounterReconciler) backlite.QueueProcessor[ReconcileCountersTask] {
	return func(ctx context.Context, task ReconcileCountersTask) error {
		if reconciler == nil {
			return fmt.Errorf("counter reconciler not configured")
		}

		fixed, err := reconciler.ReconcileCounters(ctx)
		if err != nil {
			return fmt.Errorf("reconcile counters: %w", err)
		}

		logging.Info().Str("reason", task.Reason).Int("fixed", fixed).Msg("counters reconciled")
		return nil
	}
}

// NewReconcileCountersQueue creates a backlite queue for counter reconciliation.
func NewReconcileCountersQueue(reconciler CounterReconciler) backlite.Queue {
	return backlite.NewQueue(ReconcileCountersProcessor(reconciler))
}
