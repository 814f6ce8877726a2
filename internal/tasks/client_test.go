package tasks

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*Client, string) {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Workers = 1
	cfg.DBPath = filepath.Join(t.TempDir(), "data", "my-motiv-tasks.db")

	client, err := NewClient(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client, cfg.DBPath
}

func TestNewClient(t *testing.T) {
	client, path := newTestClient(t)
	require.NotNil(t, client)

	_, err := os.Stat(path)
	assert.NoError(t, err, "tasks database should be created")
}

func TestClientStartStop(t *testing.T) {
	client, _ := newTestClient(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go client.Start(ctx)
	time.Sleep(50 * time.Millisecond)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer stopCancel()

	assert.True(t, client.Stop(stopCtx), "stop should succeed gracefully")
}

func TestClientStopWithoutStart(t *testing.T) {
	client, _ := newTestClient(t)
	assert.True(t, client.Stop(context.Background()))
}

type fakeSender struct {
	delivered chan string
	err       error
}

func (f *fakeSender) Deliver(ctx context.Context, id string) error {
	f.delivered <- id
	return f.err
}

func TestSendNotificationQueueRunsEnqueuedTask(t *testing.T) {
	client, _ := newTestClient(t)

	sender := &fakeSender{delivered: make(chan string, 1)}
	client.Register(NewSendNotificationQueue(sender))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Start(ctx)

	ids, err := client.Enqueue(ctx, SendNotificationTask{NotificationID: "n-1"})
	require.NoError(t, err)
	assert.Len(t, ids, 1)

	select {
	case id := <-sender.delivered:
		assert.Equal(t, "n-1", id)
	case <-time.After(5 * time.Second):
		t.Fatal("task was not executed within timeout")
	}
}

func TestSendNotificationProcessor(t *testing.T) {
	ctx := context.Background()

	err := SendNotificationProcessor(nil)(ctx, SendNotificationTask{NotificationID: "n-1"})
	assert.Error(t, err)

	sender := &fakeSender{delivered: make(chan string, 1)}
	err = SendNotificationProcessor(sender)(ctx, SendNotificationTask{})
	assert.Error(t, err)

	sender.err = errors.New("push gateway down")
	err = SendNotificationProcessor(sender)(ctx, SendNotificationTask{NotificationID: "n-2"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "n-2")
	assert.True(t, errors.Is(err, sender.err))
}

type fakeReconciler struct {
	fixed int
	err   error
	calls int
}

func (f *fakeReconciler) ReconcileCounters(ctx context.Context) (int, error) {
	f.calls++
	return f.fixed, f.err
}

func TestReconcileCountersProcessor(t *testing.T) {
	ctx := context.Background()
	r := &fakeReconciler{fixed: 2}

	require.NoError(t, ReconcileCountersProcessor(r)(ctx, ReconcileCountersTask{Reason: "test"}))
	assert.Equal(t, 1, r.calls)

	r.err = errors.New("quotes database is not connected")
	assert.Error(t, ReconcileCountersProcessor(r)(ctx, ReconcileCountersTask{}))
	assert.Error(t, ReconcileCountersProcessor(nil)(ctx, ReconcileCountersTask{}))
}

type fakePurger struct {
	before time.Time
}

func (f *fakePurger) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	f.before = now
	return 3, nil
}

func TestPurgeRefreshTokensProcessor(t *testing.T) {
	p := &fakePurger{}
	require.NoError(t, PurgeRefreshTokensProcessor(p)(context.Background(), PurgeRefreshTokensTask{}))
	assert.WithinDuration(t, time.Now(), p.before, time.Second)

	assert.Error(t, PurgeRefreshTokensProcessor(nil)(context.Background(), PurgeRefreshTokensTask{}))
}

func TestQueueConfigs(t *testing.T) {
	configs := []backlite.QueueConfig{
		SendNotificationTask{}.Config(),
		ReconcileCountersTask{}.Config(),
		PurgeRefreshTokensTask{}.Config(),
	}

	names := map[string]bool{}
	for _, cfg := range configs {
		assert.NotEmpty(t, cfg.Name)
		assert.False(t, names[cfg.Name], "queue names must be unique")
		names[cfg.Name] = true
		assert.Positive(t, cfg.MaxAttempts)
		assert.Positive(t, cfg.Timeout)
		assert.NotNil(t, cfg.Retention)
	}
	assert.Equal(t, 1, SendNotificationTask{}.Config().MaxAttempts)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.True(t, cfg.Enabled)
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, time.Minute, cfg.RetryDelay)
	assert.Equal(t, 5*time.Minute, cfg.TaskTimeout)
	assert.Equal(t, 15*time.Minute, cfg.ReleaseAfter)
	assert.Equal(t, time.Hour, cfg.CleanupInterval)
	assert.Equal(t, 24*time.Hour, cfg.RetentionDuration)
}
