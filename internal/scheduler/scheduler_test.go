package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/mymotiv/internal/config"
	"github.com/mrlokans/mymotiv/internal/database"
	"github.com/mrlokans/mymotiv/internal/tasks"
)

type fakeNotifications struct {
	mu        sync.Mutex
	due       []string
	claimErr  error
	delivered []string
	failOn    string
	planned   int
}

func (f *fakeNotifications) ClaimDue(ctx context.Context, lease time.Duration, limit int) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.claimErr != nil {
		return nil, f.claimErr
	}
	ids := f.due
	f.due = nil
	return ids, nil
}

func (f *fakeNotifications) PlanReminders(ctx context.Context) (int, error) {
	return f.planned, nil
}

func (f *fakeNotifications) Deliver(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if id == f.failOn {
		return errors.New("provider down")
	}
	f.delivered = append(f.delivered, id)
	return nil
}

type fakeQueue struct {
	queued []backlite.Task
}

func (f *fakeQueue) Enqueue(ctx context.Context, batch ...backlite.Task) ([]string, error) {
	f.queued = append(f.queued, batch...)
	ids := make([]string, len(batch))
	return ids, nil
}

type fakeReconciler struct{ calls int }

func (f *fakeReconciler) ReconcileCounters(ctx context.Context) (int, error) {
	f.calls++
	return 0, nil
}

type fakeConnections struct {
	states   map[database.Domain]database.ConnState
	pingErr  map[database.Domain]error
	failing  map[database.Domain]bool
	acquired []database.Domain
}

func (f *fakeConnections) State(domain database.Domain) database.ConnState {
	return f.states[domain]
}

func (f *fakeConnections) Ping(ctx context.Context, domain database.Domain) error {
	return f.pingErr[domain]
}

func (f *fakeConnections) Acquire(ctx context.Context, domain database.Domain) (*database.Connection, error) {
	if f.failing[domain] {
		return nil, errors.New("refused")
	}
	f.acquired = append(f.acquired, domain)
	f.states[domain] = database.StateReady
	return &database.Connection{Domain: domain}, nil
}

func TestDispatchDue_QueuesDeliveries(t *testing.T) {
	notifications := &fakeNotifications{due: []string{"n1", "n2"}}
	queue := &fakeQueue{}
	s := New(config.Notifications{}, Dependencies{Notifications: notifications, Queue: queue})

	n, err := s.DispatchDue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []backlite.Task{
		tasks.SendNotificationTask{NotificationID: "n1"},
		tasks.SendNotificationTask{NotificationID: "n2"},
	}, queue.queued)
	assert.Empty(t, notifications.delivered)
}

func TestDispatchDue_DeliversInlineWithoutQueue(t *testing.T) {
	notifications := &fakeNotifications{due: []string{"n1", "n2", "n3"}, failOn: "n2"}
	s := New(config.Notifications{}, Dependencies{Notifications: notifications})

	n, err := s.DispatchDue(context.Background())
	assert.Error(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []string{"n1", "n3"}, notifications.delivered)
}

func TestDispatchDue_NothingDue(t *testing.T) {
	queue := &fakeQueue{}
	s := New(config.Notifications{}, Dependencies{Notifications: &fakeNotifications{}, Queue: queue})

	n, err := s.DispatchDue(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, queue.queued)
}

func TestDispatchDue_ClaimError(t *testing.T) {
	s := New(config.Notifications{}, Dependencies{
		Notifications: &fakeNotifications{claimErr: errors.New("locked")},
	})

	_, err := s.DispatchDue(context.Background())
	assert.Error(t, err)
}

func TestReconcile_QueuedOrInline(t *testing.T) {
	reconciler := &fakeReconciler{}
	queue := &fakeQueue{}

	queued := New(config.Notifications{}, Dependencies{Reconciler: reconciler, Queue: queue})
	require.NoError(t, queued.reconcile(context.Background()))
	assert.Equal(t, []backlite.Task{tasks.ReconcileCountersTask{Reason: "scheduled"}}, queue.queued)
	assert.Zero(t, reconciler.calls)

	inline := New(config.Notifications{}, Dependencies{Reconciler: reconciler})
	require.NoError(t, inline.reconcile(context.Background()))
	assert.Equal(t, 1, reconciler.calls)
}

func TestReconnect(t *testing.T) {
	connections := &fakeConnections{
		states: map[database.Domain]database.ConnState{
			database.DomainAuth:       database.StateReady,
			database.DomainCategories: database.StateReady,
			database.DomainQuotes:     database.StateDisconnected,
		},
		pingErr: map[database.Domain]error{
			database.DomainCategories: errors.New("gone"),
		},
		failing: map[database.Domain]bool{},
	}
	s := New(config.Notifications{}, Dependencies{
		Connections: connections,
		Supervised:  database.EagerDomains,
	})

	down := s.Reconnect(context.Background())
	assert.Empty(t, down)
	assert.ElementsMatch(t, []database.Domain{database.DomainCategories, database.DomainQuotes}, connections.acquired)

	connections.states[database.DomainQuotes] = database.StateDisconnected
	connections.failing[database.DomainQuotes] = true
	down = s.Reconnect(context.Background())
	assert.Equal(t, []database.Domain{database.DomainQuotes}, down)
	assert.Error(t, s.reconnect(context.Background()))
}

func TestStartStop(t *testing.T) {
	s := New(config.Notifications{
		Enabled:           true,
		DispatchSchedule:  "* * * * *",
		ReminderSchedule:  "* * * * *",
		ReconcileSchedule: "0 3 * * *",
		ReconnectSchedule: "*/5 * * * *",
	}, Dependencies{
		Notifications: &fakeNotifications{},
		Reconciler:    &fakeReconciler{},
	})

	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.IsRunning())
	assert.NotNil(t, s.NextRun("dispatch_notifications"))
	assert.NotNil(t, s.NextRun("reconcile_counters"))
	assert.Nil(t, s.NextRun("reconnect_databases"))
	assert.Nil(t, s.NextRun("purge_refresh_tokens"))

	s.Stop()
	assert.False(t, s.IsRunning())
	assert.Nil(t, s.NextRun("dispatch_notifications"))
}

func TestStart_StopsWithContext(t *testing.T) {
	s := New(config.Notifications{Enabled: true, DispatchSchedule: "* * * * *"}, Dependencies{
		Notifications: &fakeNotifications{},
	})

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.Start(ctx))
	cancel()

	assert.Eventually(t, func() bool { return !s.IsRunning() }, time.Second, 10*time.Millisecond)
}

func TestStart_InvalidSchedule(t *testing.T) {
	s := New(config.Notifications{Enabled: true, DispatchSchedule: "every minute"}, Dependencies{
		Notifications: &fakeNotifications{},
	})

	err := s.Start(context.Background())
	assert.Error(t, err)
	assert.False(t, s.IsRunning())
}

func TestValidateSchedule(t *testing.T) {
	assert.NoError(t, ValidateSchedule("*/5 * * * *"))
	assert.Error(t, ValidateSchedule("* * * * * *"))
	assert.Error(t, ValidateSchedule(""))
}

func TestRunJob_SkipsOverlappingRun(t *testing.T) {
	s := New(config.Notifications{}, Dependencies{})
	busy := s.busyFlag("job")
	busy.Store(true)

	called := false
	s.runJob(context.Background(), "job", busy, func(ctx context.Context) error {
		called = true
		return nil
	})
	assert.False(t, called)

	busy.Store(false)
	s.runJob(context.Background(), "job", busy, func(ctx context.Context) error {
		called = true
		return nil
	})
	assert.True(t, called)
	assert.False(t, busy.Load())
}
