package services

import (
	"context"
	"encoding/json"
	"strings"
	"unicode/utf8"
	"time"
	_ "time/tzdata" // reminder timezones resolve without a system zoneinfo

	"gorm.io/datatypes"

	"github.com/mrlokans/mymotiv/internal/apperrors"
	"github.com/mrlokans/mymotiv/internal/auth"
	"github.com/mrlokans/mymotiv/internal/database"
	"github.com/mrlokans/mymotiv/internal/database/notifications"
	"github.com/mrlokans/mymotiv/internal/entities"
	"github.com/mrlokans/mymotiv/internal/logging"
)

// Notifier hands a notification to whatever channel reaches the user.
type Notifier interface {
	Notify(ctx context.Context, n *entities.ScheduledNotification) error
}

// LogNotifier writes notifications to the log. It is the only channel
// until push and email delivery exist.
type LogNotifier struct{}

func (LogNotifier) Notify(ctx context.Context, n *entities.ScheduledNotification) error {
	logging.Info().
		Str("notification_id", n.ID).
		Str("user_id", n.UserID).
		Str("type", string(n.Type)).
		Str("title", n.Title).
		Msg("notification delivered")
	return nil
}

// QuotePicker supplies the quote a reminder shows.
type QuotePicker interface {
	Random(ctx context.Context, categoryRef, viewerID string) (*entities.Quote, error)
}

// SettingsUpdate carries notification setting changes. Nil sections are
// left unchanged.
type SettingsUpdate struct {
	DailyReminder      *DailyReminderUpdate                `json:"dailyReminder"`
	EmailNotifications *entities.EmailNotificationSetting `json:"emailNotifications"`
	PushNotifications  *entities.PushNotificationSetting  `json:"pushNotifications"`
	InAppNotifications *entities.InAppNotificationSetting `json:"inAppNotifications"`
}

type DailyReminderUpdate struct {
	Enabled  *bool   `json:"enabled"`
	Time     *string `json:"time"`
	Timezone *string `json:"timezone"`
}

// ScheduleInput describes a notification to deliver later.
type ScheduleInput struct {
	Type         entities.NotificationType `json:"type"`
	Title        string                    `json:"title"`
	Message      string                    `json:"message"`
	ScheduledFor time.Time                 `json:"scheduledFor"`
	QuoteID      string                    `json:"quoteId"`
	CategoryID   string                    `json:"categoryId"`
	CustomData   json.RawMessage           `json:"customData"`
}

type NotificationService struct {
	models   database.Resolver
	notifier Notifier
	quotes   QuotePicker
	now      func() time.Time
}

func NewNotificationService(models database.Resolver, notifier Notifier, quotes QuotePicker) *NotificationService {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &NotificationService{
		models:   models,
		notifier: notifier,
		quotes:   quotes,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *NotificationService) repo(ctx context.Context) (*notifications.Repository, error) {
	db, err := s.models.DB(ctx, database.DomainNotifications)
	if err != nil {
		return nil, err
	}
	return notifications.NewRepository(db), nil
}

// Settings returns the user's settings, created with defaults on first read.
func (s *NotificationService) Settings(ctx context.Context, userID string) (*entities.NotificationSetting, error) {
	repo, err := s.repo(ctx)
	if err != nil {
		return nil, err
	}
	return repo.GetOrCreateSetting(userID)
}

func (s *NotificationService) UpdateSettings(ctx context.Context, userID string, update SettingsUpdate) (*entities.NotificationSetting, error) {
	repo, err := s.repo(ctx)
	if err != nil {
		return nil, err
	}
	setting, err := repo.GetOrCreateSetting(userID)
	if err != nil {
		return nil, err
	}

	if r := update.DailyReminder; r != nil {
		if r.Enabled != nil {
			setting.DailyReminder.Enabled = *r.Enabled
		}
		if r.Time != nil {
			if !auth.ValidClock(*r.Time) {
				return nil, apperrors.Validation("Reminder time must be HH:MM")
			}
			setting.DailyReminder.Time = *r.Time
		}
		if r.Timezone != nil {
			tz := strings.TrimSpace(*r.Timezone)
			if _, err := time.LoadLocation(tz); err != nil || tz == "" {
				return nil, apperrors.Validation("Unknown timezone %q", tz)
			}
			setting.DailyReminder.Timezone = tz
		}
	}
	if update.EmailNotifications != nil {
		setting.EmailNotifications = *update.EmailNotifications
	}
	if update.PushNotifications != nil {
		setting.PushNotifications = *update.PushNotifications
	}
	if update.InAppNotifications != nil {
		setting.InAppNotifications = *update.InAppNotifications
	}

	if err := repo.SaveSetting(setting); err != nil {
		return nil, err
	}
	return setting, nil
}

func (s *NotificationService) ListScheduled(ctx context.Context, userID string, pendingOnly bool, page database.Page) (database.Paginated[entities.ScheduledNotification], error) {
	repo, err := s.repo(ctx)
	if err != nil {
		return database.Paginated[entities.ScheduledNotification]{}, err
	}
	return repo.ListScheduled(userID, pendingOnly, page)
}

// Schedule queues a notification for userID.
func (s *NotificationService) Schedule(ctx context.Context, userID string, in ScheduleInput) (*entities.ScheduledNotification, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Message = strings.TrimSpace(in.Message)
	switch {
	case !in.Type.Valid():
		return nil, apperrors.Validation("Type must be daily_reminder, weekly_digest, new_quote or favorite_quote")
	case in.Title == "" || utf8.RuneCountInString(in.Title) > entities.MaxNotificationTitleLen:
		return nil, apperrors.Validation("Title must be 1 to %d characters", entities.MaxNotificationTitleLen)
	case in.Message == "" || utf8.RuneCountInString(in.Message) > entities.MaxNotificationMessageLen:
		return nil, apperrors.Validation("Message must be 1 to %d characters", entities.MaxNotificationMessageLen)
	case in.ScheduledFor.IsZero():
		return nil, apperrors.Validation("Scheduled time is required")
	case in.ScheduledFor.Before(s.now().Add(-time.Minute)):
		return nil, apperrors.Validation("Scheduled time must be in the future")
	}
	if len(in.CustomData) > 0 && !json.Valid(in.CustomData) {
		return nil, apperrors.Validation("Custom data must be valid JSON")
	}

	n := &entities.ScheduledNotification{
		UserID:       userID,
		Type:         in.Type,
		Title:        in.Title,
		Message:      in.Message,
		ScheduledFor: in.ScheduledFor.UTC(),
		MaxRetries:   entities.DefaultMaxRetries,
		IsActive:     true,
		Metadata: entities.NotificationMetadata{
			QuoteID:    in.QuoteID,
			CategoryID: in.CategoryID,
			CustomData: datatypes.JSON(in.CustomData),
		},
	}

	repo, err := s.repo(ctx)
	if err != nil {
		return nil, err
	}
	if err := repo.Schedule(n); err != nil {
		return nil, err
	}
	return n, nil
}

// Cancel deactivates one of the user's pending notifications.
func (s *NotificationService) Cancel(ctx context.Context, userID, id string) error {
	repo, err := s.repo(ctx)
	if err != nil {
		return err
	}
	return repo.Cancel(userID, id)
}

// ClaimDue claims up to limit due notifications for delivery and returns
// their ids. A claimed notification is not returned again until lease
// passes or the delivery fails.
func (s *NotificationService) ClaimDue(ctx context.Context, lease time.Duration, limit int) ([]string, error) {
	repo, err := s.repo(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	due, err := repo.ListDue(now, lease, limit)
	if err != nil {
		return nil, err
	}

	claimed := make([]string, 0, len(due))
	for _, n := range due {
		ok, err := repo.Claim(n.ID, now, lease)
		if err != nil {
			return claimed, err
		}
		if ok {
			claimed = append(claimed, n.ID)
		}
	}
	return claimed, nil
}

// Deliver sends one notification and records the outcome. A notification
// that is already sent or cancelled is skipped.
func (s *NotificationService) Deliver(ctx context.Context, id string) error {
	repo, err := s.repo(ctx)
	if err != nil {
		return err
	}
	n, err := repo.GetScheduled(id)
	if err != nil {
		return err
	}
	if n.IsSent || !n.IsActive {
		return nil
	}

	if err := s.notifier.Notify(ctx, n); err != nil {
		failed, recErr := repo.RecordFailure(id, err.Error())
		if recErr != nil {
			logging.Error().Err(recErr).Str("notification_id", id).Msg("failed to record delivery failure")
		} else if !failed.IsActive {
			logging.Warn().Str("notification_id", id).Int("retries", failed.RetryCount).Msg("notification abandoned after max retries")
		}
		return err
	}
	return repo.MarkSent(id, s.now())
}

// PlanReminders schedules today's daily reminder for every user whose
// local reminder time is now. Each user gets at most one per local day.
func (s *NotificationService) PlanReminders(ctx context.Context) (int, error) {
	repo, err := s.repo(ctx)
	if err != nil {
		return 0, err
	}
	settings, err := repo.ListReminderSettings()
	if err != nil {
		return 0, err
	}

	now := s.now()
	planned := 0
	for _, setting := range settings {
		loc, err := time.LoadLocation(setting.DailyReminder.Timezone)
		if err != nil {
			loc = time.UTC
		}
		local := now.In(loc)
		if local.Format("15:04") != setting.DailyReminder.Time {
			continue
		}

		ok, err := repo.MarkReminderPlanned(setting.ID, local.Format("2006-01-02"))
		if err != nil {
			return planned, err
		}
		if !ok {
			continue
		}

		n := &entities.ScheduledNotification{
			UserID:       setting.UserID,
			Type:         entities.NotificationDailyReminder,
			Title:        "Your daily motivation",
			Message:      "Take a moment for today's quote.",
			ScheduledFor: now,
			MaxRetries:   entities.DefaultMaxRetries,
			IsActive:     true,
		}
		if s.quotes != nil {
			if quote, err := s.quotes.Random(ctx, "", ""); err == nil {
				n.Message = truncate(quote.Text+" - "+quote.Author, entities.MaxNotificationMessageLen)
				n.Metadata.QuoteID = quote.ID
				n.Metadata.CategoryID = quote.CategoryID
			}
		}
		if err := repo.Schedule(n); err != nil {
			return planned, err
		}
		planned++
	}
	return planned, nil
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}
