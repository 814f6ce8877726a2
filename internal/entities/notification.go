package entities

import (
	"time"

	"gorm.io/datatypes"
)

const (
	DefaultReminderTime       = "09:00"
	DefaultReminderTimezone   = "UTC"
	DefaultMaxRetries         = 3
	MaxNotificationTitleLen   = 200
	MaxNotificationMessageLen = 500
)

type NotificationSetting struct {
	Model
	UserID             string                   `gorm:"uniqueIndex;size:36;not null" json:"userId"`
	DailyReminder      DailyReminderSetting     `gorm:"embedded;embeddedPrefix:daily_reminder_" json:"dailyReminder"`
	EmailNotifications EmailNotificationSetting `gorm:"embedded;embeddedPrefix:email_" json:"emailNotifications"`
	PushNotifications  PushNotificationSetting  `gorm:"embedded;embeddedPrefix:push_" json:"pushNotifications"`
	InAppNotifications InAppNotificationSetting `gorm:"embedded;embeddedPrefix:in_app_" json:"inAppNotifications"`
	IsActive           bool                     `gorm:"not null;index" json:"isActive"`
	LastReminderOn     string                   `gorm:"size:10" json:"-"` // local YYYY-MM-DD of the last planned reminder
}

type DailyReminderSetting struct {
	Enabled  bool   `gorm:"index" json:"enabled"`
	Time     string `gorm:"size:5" json:"time"`
	Timezone string `gorm:"size:64" json:"timezone"`
}

type EmailNotificationSetting struct {
	Enabled      bool `json:"enabled"`
	NewQuotes    bool `json:"newQuotes"`
	WeeklyDigest bool `json:"weeklyDigest"`
}

type PushNotificationSetting struct {
	Enabled   bool `json:"enabled"`
	NewQuotes bool `json:"newQuotes"`
	Favorites bool `json:"favorites"`
}

type InAppNotificationSetting struct {
	Enabled   bool `json:"enabled"`
	NewQuotes bool `json:"newQuotes"`
	Favorites bool `json:"favorites"`
	Comments  bool `json:"comments"`
}

// DefaultNotificationSetting is what a user gets on first read.
func DefaultNotificationSetting(userID string) *NotificationSetting {
	return &NotificationSetting{
		UserID: userID,
		DailyReminder: DailyReminderSetting{
			Enabled:  false,
			Time:     DefaultReminderTime,
			Timezone: DefaultReminderTimezone,
		},
		EmailNotifications: EmailNotificationSetting{Enabled: true, NewQuotes: true, WeeklyDigest: false},
		PushNotifications:  PushNotificationSetting{Enabled: true, NewQuotes: true, Favorites: true},
		InAppNotifications: InAppNotificationSetting{Enabled: true, NewQuotes: true, Favorites: true, Comments: true},
		IsActive:           true,
	}
}

type NotificationType string

const (
	NotificationDailyReminder NotificationType = "daily_reminder"
	NotificationWeeklyDigest  NotificationType = "weekly_digest"
	NotificationNewQuote      NotificationType = "new_quote"
	NotificationFavoriteQuote NotificationType = "favorite_quote"
)

func (t NotificationType) Valid() bool {
	switch t {
	case NotificationDailyReminder, NotificationWeeklyDigest, NotificationNewQuote, NotificationFavoriteQuote:
		return true
	}
	return false
}

type ScheduledNotification struct {
	Model
	UserID       string               `gorm:"size:36;not null;index" json:"userId"`
	Type         NotificationType     `gorm:"size:20;not null;index" json:"type"`
	Title        string               `gorm:"size:200;not null" json:"title"`
	Message      string               `gorm:"size:500;not null" json:"message"`
	ScheduledFor time.Time            `gorm:"not null;index:idx_notifications_due,priority:3" json:"scheduledFor"`
	IsSent       bool                 `gorm:"not null;index:idx_notifications_due,priority:1" json:"isSent"`
	SentAt       *time.Time           `json:"sentAt,omitempty"`
	RetryCount   int                  `gorm:"not null;default:0" json:"retryCount"`
	MaxRetries   int                  `gorm:"not null;default:3" json:"maxRetries"`
	Metadata     NotificationMetadata `gorm:"embedded;embeddedPrefix:meta_" json:"metadata"`
	IsActive     bool                 `gorm:"not null;index:idx_notifications_due,priority:2" json:"isActive"`
	LastError    string               `gorm:"size:500" json:"lastError,omitempty"`
	DispatchedAt *time.Time           `gorm:"index" json:"-"` // set while a delivery task holds the notification
}

type NotificationMetadata struct {
	QuoteID    string         `gorm:"size:36" json:"quoteId,omitempty"`
	CategoryID string         `gorm:"size:36" json:"categoryId,omitempty"`
	CustomData datatypes.JSON `json:"customData,omitempty"`
}
