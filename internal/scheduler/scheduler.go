// Package scheduler runs the periodic jobs: due-notification dispatch,
// daily-reminder planning, counter reconciliation and the reconnect
// supervisor for eagerly acquired databases.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/robfig/cron/v3"

	"github.com/mrlokans/mymotiv/internal/config"
	"github.com/mrlokans/mymotiv/internal/database"
	"github.com/mrlokans/mymotiv/internal/logging"
	"github.com/mrlokans/mymotiv/internal/tasks"
)

const (
	// dispatchLease is how long a claimed notification stays hidden from
	// the next dispatch run while its delivery task is pending.
	dispatchLease = 5 * time.Minute
	dispatchBatch = 100
)

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// NotificationJobs is the notification work the scheduler drives.
type NotificationJobs interface {
	ClaimDue(ctx context.Context, lease time.Duration, limit int) ([]string, error)
	PlanReminders(ctx context.Context) (int, error)
	tasks.NotificationSender
}

// ConnectionSupervisor is the part of the connection registry the
// reconnect job needs.
type ConnectionSupervisor interface {
	State(domain database.Domain) database.ConnState
	Ping(ctx context.Context, domain database.Domain) error
	Acquire(ctx context.Context, domain database.Domain) (*database.Connection, error)
}

// Enqueuer hands work to the task queue.
type Enqueuer interface {
	Enqueue(ctx context.Context, tasks ...backlite.Task) ([]string, error)
}

// Dependencies are the collaborators of the jobs. Queue is optional: with
// no queue, deliveries and reconciliation run inline.
type Dependencies struct {
	Notifications NotificationJobs
	Reconciler    tasks.CounterReconciler
	Tokens        tasks.ExpiredTokenPurger
	Connections   ConnectionSupervisor
	Supervised    []database.Domain
	Queue         Enqueuer
}

// Scheduler owns one cron instance with a job per periodic concern.
type Scheduler struct {
	cfg  config.Notifications
	deps Dependencies

	cron       *cron.Cron
	entries    map[string]cron.EntryID
	busy       map[string]*atomic.Bool
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

func New(cfg config.Notifications, deps Dependencies) *Scheduler {
	return &Scheduler{
		cfg:     cfg,
		deps:    deps,
		cron:    cron.New(cron.WithParser(parser)),
		entries: make(map[string]cron.EntryID),
		busy:    make(map[string]*atomic.Bool),
	}
}

// ValidateSchedule checks a five-field cron expression.
func ValidateSchedule(spec string) error {
	_, err := parser.Parse(spec)
	return err
}

// Start registers the jobs and starts the cron loop. It stops when ctx is
// cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	jobs := []struct {
		name     string
		schedule string
		enabled  bool
		run      func(ctx context.Context) error
	}{
		{"dispatch_notifications", s.cfg.DispatchSchedule, s.cfg.Enabled && s.deps.Notifications != nil, s.dispatch},
		{"plan_reminders", s.cfg.ReminderSchedule, s.cfg.Enabled && s.deps.Notifications != nil, s.planReminders},
		{"reconcile_counters", s.cfg.ReconcileSchedule, s.deps.Reconciler != nil, s.reconcile},
		{"purge_refresh_tokens", s.cfg.ReconcileSchedule, s.deps.Tokens != nil, s.purgeTokens},
		{"reconnect_databases", s.cfg.ReconnectSchedule, s.deps.Connections != nil, s.reconnect},
	}

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	for _, job := range jobs {
		if !job.enabled || job.schedule == "" {
			logging.Info().Str("job", job.name).Msg("scheduler: job disabled")
			continue
		}
		if err := ValidateSchedule(job.schedule); err != nil {
			s.cancelFunc()
			return fmt.Errorf("invalid cron schedule '%s' for %s: %w", job.schedule, job.name, err)
		}

		name, run := job.name, job.run
		busy := s.busyFlag(name)
		id, err := s.cron.AddFunc(job.schedule, func() {
			s.runJob(cancelCtx, name, busy, run)
		})
		if err != nil {
			s.cancelFunc()
			return fmt.Errorf("failed to schedule %s: %w", name, err)
		}
		s.entries[name] = id
		logging.Info().Str("job", name).Str("schedule", job.schedule).Msg("scheduler: job registered")
	}

	s.cron.Start()
	s.isRunning = true

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()
	return nil
}

// Stop stops accepting new runs and waits for running jobs.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	if s.cancelFunc != nil {
		s.cancelFunc()
	}
	s.isRunning = false
	s.cancelFunc = nil
	logging.Info().Msg("scheduler: stopped")
}

func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRun returns when job runs next, or nil when it is not scheduled.
func (s *Scheduler) NextRun(job string) *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.entries[job]
	if !ok || !s.isRunning {
		return nil
	}
	next := s.cron.Entry(id).Next
	return &next
}

func (s *Scheduler) busyFlag(job string) *atomic.Bool {
	flag, ok := s.busy[job]
	if !ok {
		flag = &atomic.Bool{}
		s.busy[job] = flag
	}
	return flag
}

// runJob skips a run while the previous run of the same job is still going.
func (s *Scheduler) runJob(ctx context.Context, name string, busy *atomic.Bool, run func(ctx context.Context) error) {
	if !busy.CompareAndSwap(false, true) {
		logging.Debug().Str("job", name).Msg("scheduler: previous run still in progress, skipping")
		return
	}
	defer busy.Store(false)

	start := time.Now()
	if err := run(ctx); err != nil {
		logging.Error().Err(err).Str("job", name).Dur("took", time.Since(start)).Msg("scheduler: job failed")
		return
	}
	logging.Debug().Str("job", name).Dur("took", time.Since(start)).Msg("scheduler: job finished")
}
