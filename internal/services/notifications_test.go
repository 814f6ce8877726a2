package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/mymotiv/internal/apperrors"
	"github.com/mrlokans/mymotiv/internal/database"
	"github.com/mrlokans/mymotiv/internal/entities"
)

type recordingNotifier struct {
	sent []string
	err  error
}

func (n *recordingNotifier) Notify(ctx context.Context, sn *entities.ScheduledNotification) error {
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, sn.ID)
	return nil
}

type fixedQuote struct{}

func (fixedQuote) Random(ctx context.Context, categoryRef, viewerID string) (*entities.Quote, error) {
	return &entities.Quote{Model: entities.Model{ID: "q-1"}, Text: "Sigue adelante", Author: "Anónimo", CategoryID: "c-1"}, nil
}

func setupNotifications(t *testing.T, now time.Time) (*fixture, *NotificationService, *recordingNotifier) {
	t.Helper()
	f := setup(t)
	notifier := &recordingNotifier{}
	svc := NewNotificationService(f.models, notifier, fixedQuote{})
	svc.now = func() time.Time { return now }
	return f, svc, notifier
}

func TestNotificationService_SettingsDefaults(t *testing.T) {
	f, svc, _ := setupNotifications(t, time.Now().UTC())

	s, err := svc.Settings(f.ctx, "u1")
	require.NoError(t, err)
	assert.False(t, s.DailyReminder.Enabled)
	assert.Equal(t, "09:00", s.DailyReminder.Time)
	assert.Equal(t, "UTC", s.DailyReminder.Timezone)
	assert.True(t, s.EmailNotifications.Enabled)
	assert.False(t, s.EmailNotifications.WeeklyDigest)

	again, err := svc.Settings(f.ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, s.ID, again.ID)
}

func TestNotificationService_UpdateSettings(t *testing.T) {
	f, svc, _ := setupNotifications(t, time.Now().UTC())

	updated, err := svc.UpdateSettings(f.ctx, "u1", SettingsUpdate{
		DailyReminder:     &DailyReminderUpdate{Enabled: ptr(true), Time: ptr("07:30")},
		PushNotifications: &entities.PushNotificationSetting{Enabled: false},
	})
	require.NoError(t, err)
	assert.True(t, updated.DailyReminder.Enabled)
	assert.Equal(t, "07:30", updated.DailyReminder.Time)
	assert.False(t, updated.PushNotifications.Enabled)
	assert.True(t, updated.EmailNotifications.Enabled, "untouched sections keep their values")

	_, err = svc.UpdateSettings(f.ctx, "u1", SettingsUpdate{DailyReminder: &DailyReminderUpdate{Time: ptr("25:00")}})
	assert.True(t, errors.Is(err, apperrors.ErrValidationFailed))

	_, err = svc.UpdateSettings(f.ctx, "u1", SettingsUpdate{DailyReminder: &DailyReminderUpdate{Timezone: ptr("Mars/Olympus")}})
	assert.True(t, errors.Is(err, apperrors.ErrValidationFailed))
}

func TestNotificationService_ScheduleValidates(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f, svc, _ := setupNotifications(t, now)

	valid := ScheduleInput{
		Type:         entities.NotificationNewQuote,
		Title:        "Nueva cita",
		Message:      "Hay una cita nueva para ti",
		ScheduledFor: now.Add(time.Hour),
	}

	tests := []struct {
		name   string
		mutate func(in *ScheduleInput)
	}{
		{"bad type", func(in *ScheduleInput) { in.Type = "sms" }},
		{"empty title", func(in *ScheduleInput) { in.Title = " " }},
		{"empty message", func(in *ScheduleInput) { in.Message = "" }},
		{"missing time", func(in *ScheduleInput) { in.ScheduledFor = time.Time{} }},
		{"past time", func(in *ScheduleInput) { in.ScheduledFor = now.Add(-time.Hour) }},
		{"bad custom data", func(in *ScheduleInput) { in.CustomData = []byte("{") }},
		{"long title", func(in *ScheduleInput) { in.Title = strings.Repeat("é", entities.MaxNotificationTitleLen+1) }},
		{"long message", func(in *ScheduleInput) { in.Message = strings.Repeat("ñ", entities.MaxNotificationMessageLen+1) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			_, err := svc.Schedule(f.ctx, "u1", in)
			assert.True(t, errors.Is(err, apperrors.ErrValidationFailed), "got %v", err)
		})
	}

	accented := valid
	accented.Title = strings.Repeat("é", entities.MaxNotificationTitleLen)
	accented.Message = strings.Repeat("ñ", entities.MaxNotificationMessageLen)
	_, err := svc.Schedule(f.ctx, "u1", accented)
	require.NoError(t, err)

	n, err := svc.Schedule(f.ctx, "u1", valid)
	require.NoError(t, err)
	assert.Equal(t, entities.DefaultMaxRetries, n.MaxRetries)
	assert.True(t, n.IsActive)
	assert.False(t, n.IsSent)
}

func TestNotificationService_ClaimAndDeliver(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f, svc, notifier := setupNotifications(t, now)

	due, err := svc.Schedule(f.ctx, "u1", ScheduleInput{Type: entities.NotificationNewQuote, Title: "t", Message: "m", ScheduledFor: now})
	require.NoError(t, err)
	_, err = svc.Schedule(f.ctx, "u1", ScheduleInput{Type: entities.NotificationNewQuote, Title: "later", Message: "m", ScheduledFor: now.Add(time.Hour)})
	require.NoError(t, err)

	ids, err := svc.ClaimDue(f.ctx, time.Minute, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{due.ID}, ids)

	again, err := svc.ClaimDue(f.ctx, time.Minute, 10)
	require.NoError(t, err)
	assert.Empty(t, again, "a claimed notification is not dispatched twice")

	require.NoError(t, svc.Deliver(f.ctx, due.ID))
	require.NoError(t, svc.Deliver(f.ctx, due.ID))
	assert.Equal(t, []string{due.ID}, notifier.sent, "delivering a sent notification is a no-op")

	page, err := svc.ListScheduled(f.ctx, "u1", true, database.NewPage(1, 20))
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
}

func TestNotificationService_DeliverGivesUpAfterMaxRetries(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f, svc, notifier := setupNotifications(t, now)
	notifier.err = errors.New("gateway timeout")

	n, err := svc.Schedule(f.ctx, "u1", ScheduleInput{Type: entities.NotificationNewQuote, Title: "t", Message: "m", ScheduledFor: now})
	require.NoError(t, err)

	for i := 0; i < entities.DefaultMaxRetries; i++ {
		ids, err := svc.ClaimDue(f.ctx, time.Minute, 10)
		require.NoError(t, err)
		require.Equal(t, []string{n.ID}, ids, "attempt %d", i+1)
		assert.Error(t, svc.Deliver(f.ctx, n.ID))
	}

	ids, err := svc.ClaimDue(f.ctx, time.Minute, 10)
	require.NoError(t, err)
	assert.Empty(t, ids)

	var stored entities.ScheduledNotification
	require.NoError(t, f.db(t, database.DomainNotifications).First(&stored, "id = ?", n.ID).Error)
	assert.False(t, stored.IsActive)
	assert.Equal(t, entities.DefaultMaxRetries, stored.RetryCount)
	assert.Equal(t, "gateway timeout", stored.LastError)
}

func TestNotificationService_CancelOnlyOwnPending(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f, svc, _ := setupNotifications(t, now)

	n, err := svc.Schedule(f.ctx, "u1", ScheduleInput{Type: entities.NotificationNewQuote, Title: "t", Message: "m", ScheduledFor: now.Add(time.Hour)})
	require.NoError(t, err)

	err = svc.Cancel(f.ctx, "u2", n.ID)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	require.NoError(t, svc.Cancel(f.ctx, "u1", n.ID))
	err = svc.Cancel(f.ctx, "u1", n.ID)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestNotificationService_PlanRemindersOncePerDay(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	f, svc, _ := setupNotifications(t, now)

	_, err := svc.UpdateSettings(f.ctx, "early", SettingsUpdate{DailyReminder: &DailyReminderUpdate{Enabled: ptr(true), Time: ptr("09:00")}})
	require.NoError(t, err)
	_, err = svc.UpdateSettings(f.ctx, "late", SettingsUpdate{DailyReminder: &DailyReminderUpdate{Enabled: ptr(true), Time: ptr("21:00")}})
	require.NoError(t, err)
	_, err = svc.Settings(f.ctx, "off")
	require.NoError(t, err)

	planned, err := svc.PlanReminders(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, planned)

	planned, err = svc.PlanReminders(f.ctx)
	require.NoError(t, err)
	assert.Zero(t, planned)

	page, err := svc.ListScheduled(f.ctx, "early", false, database.NewPage(1, 20))
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	reminder := page.Items[0]
	assert.Equal(t, entities.NotificationDailyReminder, reminder.Type)
	assert.Equal(t, "Sigue adelante - Anónimo", reminder.Message)
	assert.Equal(t, "q-1", reminder.Metadata.QuoteID)

	svc.now = func() time.Time { return now.Add(24 * time.Hour) }
	planned, err = svc.PlanReminders(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, planned, "the next local day plans again")
}

func TestTruncateKeepsWholeCharacters(t *testing.T) {
	assert.Equal(t, "corto", truncate("corto", 10))
	assert.Equal(t, "ñññ", truncate("ñññññ", 3))
	assert.Equal(t, strings.Repeat("é", entities.MaxNotificationMessageLen),
		truncate(strings.Repeat("é", entities.MaxNotificationMessageLen+20), entities.MaxNotificationMessageLen))
}
