// Package notifications provides database operations for notification
// settings and scheduled notifications.
package notifications

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/mymotiv/internal/database"
	"github.com/mrlokans/mymotiv/internal/entities"
)

const (
	settingResource      = "Notification settings"
	notificationResource = "Scheduled notification"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetOrCreateSetting returns the user's settings, creating the defaults on
// first access. A concurrent first access loses the insert race and reads
// the winner's row.
func (r *Repository) GetOrCreateSetting(userID string) (*entities.NotificationSetting, error) {
	var setting entities.NotificationSetting
	err := r.db.Where("user_id = ?", userID).First(&setting).Error
	if err == nil {
		return &setting, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, database.Translate(err, settingResource)
	}

	created := entities.DefaultNotificationSetting(userID)
	if err := r.db.Create(created).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return r.GetOrCreateSetting(userID)
		}
		return nil, database.Translate(err, settingResource)
	}
	return created, nil
}

// SaveSetting writes every settings column.
func (r *Repository) SaveSetting(setting *entities.NotificationSetting) error {
	return database.Translate(r.db.Save(setting).Error, settingResource)
}

// ListReminderSettings returns active settings with the daily reminder on.
func (r *Repository) ListReminderSettings() ([]entities.NotificationSetting, error) {
	var settings []entities.NotificationSetting
	err := r.db.Where("is_active = ? AND daily_reminder_enabled = ?", true, true).Find(&settings).Error
	return settings, database.Translate(err, settingResource)
}

// MarkReminderPlanned records the local day a reminder was planned for.
// It reports false when that day was already planned.
func (r *Repository) MarkReminderPlanned(settingID, day string) (bool, error) {
	result := r.db.Model(&entities.NotificationSetting{}).
		Where("id = ? AND (last_reminder_on IS NULL OR last_reminder_on <> ?)", settingID, day).
		Update("last_reminder_on", day)
	return result.RowsAffected > 0, database.Translate(result.Error, settingResource)
}

func (r *Repository) Schedule(n *entities.ScheduledNotification) error {
	return database.Translate(r.db.Create(n).Error, notificationResource)
}

func (r *Repository) GetScheduled(id string) (*entities.ScheduledNotification, error) {
	var n entities.ScheduledNotification
	if err := r.db.Where("id = ?", id).First(&n).Error; err != nil {
		return nil, database.Translate(err, notificationResource)
	}
	return &n, nil
}

// ListScheduled returns a user's active notifications, soonest first.
func (r *Repository) ListScheduled(userID string, pendingOnly bool, page database.Page) (database.Paginated[entities.ScheduledNotification], error) {
	result := database.Paginated[entities.ScheduledNotification]{Page: page}
	query := r.db.Model(&entities.ScheduledNotification{}).Where("user_id = ? AND is_active = ?", userID, true)
	if pendingOnly {
		query = query.Where("is_sent = ?", false)
	}
	if err := query.Session(&gorm.Session{}).Count(&result.Total).Error; err != nil {
		return result, database.Translate(err, notificationResource)
	}
	err := query.Order("scheduled_for ASC").Limit(page.Size).Offset(page.Offset()).Find(&result.Items).Error
	return result, database.Translate(err, notificationResource)
}

// Cancel deactivates an unsent notification owned by userID.
func (r *Repository) Cancel(userID, id string) error {
	result := r.db.Model(&entities.ScheduledNotification{}).
		Where("id = ? AND user_id = ? AND is_active = ? AND is_sent = ?", id, userID, true, false).
		Update("is_active", false)
	if result.Error != nil {
		return database.Translate(result.Error, notificationResource)
	}
	if result.RowsAffected == 0 {
		return database.Translate(gorm.ErrRecordNotFound, notificationResource)
	}
	return nil
}

// ListDue returns active unsent notifications scheduled at or before now
// that no delivery task has claimed within the last lease.
func (r *Repository) ListDue(now time.Time, lease time.Duration, limit int) ([]entities.ScheduledNotification, error) {
	var due []entities.ScheduledNotification
	now = now.UTC()
	err := r.db.Where("is_sent = ? AND is_active = ? AND scheduled_for <= ?", false, true, now).
		Where("dispatched_at IS NULL OR dispatched_at < ?", now.Add(-lease)).
		Order("scheduled_for ASC").
		Limit(limit).
		Find(&due).Error
	return due, database.Translate(err, notificationResource)
}

// Claim marks a due notification as handed to a delivery task. It reports
// false when another dispatcher claimed it within the lease.
func (r *Repository) Claim(id string, now time.Time, lease time.Duration) (bool, error) {
	now = now.UTC()
	result := r.db.Model(&entities.ScheduledNotification{}).
		Where("id = ? AND is_sent = ? AND is_active = ?", id, false, true).
		Where("dispatched_at IS NULL OR dispatched_at < ?", now.Add(-lease)).
		Update("dispatched_at", now)
	return result.RowsAffected > 0, database.Translate(result.Error, notificationResource)
}

// MarkSent flags a notification delivered.
func (r *Repository) MarkSent(id string, at time.Time) error {
	err := r.db.Model(&entities.ScheduledNotification{}).Where("id = ?", id).Updates(map[string]any{
		"is_sent":    true,
		"sent_at":    at.UTC(),
		"last_error": "",
	}).Error
	return database.Translate(err, notificationResource)
}

// RecordFailure counts a failed delivery and deactivates the notification
// once it has used up its retries. It returns the updated row.
func (r *Repository) RecordFailure(id string, cause string) (*entities.ScheduledNotification, error) {
	if len(cause) > 500 {
		cause = cause[:500]
	}
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&entities.ScheduledNotification{}).Where("id = ?", id).Updates(map[string]any{
			"retry_count":   gorm.Expr("retry_count + 1"),
			"last_error":    cause,
			"dispatched_at": nil,
		}).Error; err != nil {
			return err
		}
		return tx.Model(&entities.ScheduledNotification{}).
			Where("id = ? AND retry_count >= max_retries", id).
			Update("is_active", false).Error
	})
	if err != nil {
		return nil, database.Translate(err, notificationResource)
	}
	return r.GetScheduled(id)
}
