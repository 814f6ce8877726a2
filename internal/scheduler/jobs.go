package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/mymotiv/internal/database"
	"github.com/mrlokans/mymotiv/internal/logging"
	"github.com/mrlokans/mymotiv/internal/tasks"
)

// DispatchDue claims due notifications and queues a delivery for each. It
// returns how many were handed off.
func (s *Scheduler) DispatchDue(ctx context.Context) (int, error) {
	ids, err := s.deps.Notifications.ClaimDue(ctx, dispatchLease, dispatchBatch)
	if err != nil {
		return 0, fmt.Errorf("claim due notifications: %w", err)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	if s.deps.Queue != nil {
		batch := make([]backlite.Task, 0, len(ids))
		for _, id := range ids {
			batch = append(batch, tasks.SendNotificationTask{NotificationID: id})
		}
		if _, err := s.deps.Queue.Enqueue(ctx, batch...); err != nil {
			return 0, fmt.Errorf("enqueue deliveries: %w", err)
		}
		logging.Info().Int("count", len(ids)).Msg("scheduler: notifications queued for delivery")
		return len(ids), nil
	}

	var errs []error
	for _, id := range ids {
		if err := s.deps.Notifications.Deliver(ctx, id); err != nil {
			errs = append(errs, err)
		}
	}
	return len(ids), errors.Join(errs...)
}

func (s *Scheduler) dispatch(ctx context.Context) error {
	_, err := s.DispatchDue(ctx)
	return err
}

func (s *Scheduler) planReminders(ctx context.Context) error {
	planned, err := s.deps.Notifications.PlanReminders(ctx)
	if planned > 0 {
		logging.Info().Int("planned", planned).Msg("scheduler: daily reminders planned")
	}
	return err
}

func (s *Scheduler) reconcile(ctx context.Context) error {
	if s.deps.Queue != nil {
		_, err := s.deps.Queue.Enqueue(ctx, tasks.ReconcileCountersTask{Reason: "scheduled"})
		return err
	}
	_, err := s.deps.Reconciler.ReconcileCounters(ctx)
	return err
}

func (s *Scheduler) purgeTokens(ctx context.Context) error {
	if s.deps.Queue != nil {
		_, err := s.deps.Queue.Enqueue(ctx, tasks.PurgeRefreshTokensTask{})
		return err
	}
	_, err := s.deps.Tokens.PurgeExpired(ctx, time.Now())
	return err
}

// Reconnect checks every supervised domain and re-acquires the ones that
// are down. It returns the domains that are still unavailable.
func (s *Scheduler) Reconnect(ctx context.Context) []database.Domain {
	var down []database.Domain
	for _, domain := range s.deps.Supervised {
		if s.deps.Connections.State(domain) == database.StateReady {
			if err := s.deps.Connections.Ping(ctx, domain); err == nil {
				continue
			}
		}
		if _, err := s.deps.Connections.Acquire(ctx, domain); err != nil {
			logging.Warn().Err(err).Str("domain", string(domain)).Msg("scheduler: reconnect failed")
			down = append(down, domain)
			continue
		}
		logging.Info().Str("domain", string(domain)).Msg("scheduler: database reconnected")
	}
	return down
}

func (s *Scheduler) reconnect(ctx context.Context) error {
	if down := s.Reconnect(ctx); len(down) > 0 {
		return fmt.Errorf("%d database(s) still unavailable: %v", len(down), down)
	}
	return nil
}
