package entities

import (
	"time"

	"gorm.io/datatypes"
)

const (
	MinUsernameLength = 3
	MaxUsernameLength = 30
	MaxNameLength     = 50
)

type User struct {
	Model
	Username     string          `gorm:"uniqueIndex;size:30;not null" json:"username"`
	Email        string          `gorm:"uniqueIndex;size:255;not null" json:"email"` // always lowercased
	PasswordHash string          `gorm:"size:60;not null" json:"-"`
	FirstName    string          `gorm:"size:50" json:"firstName,omitempty"`
	LastName     string          `gorm:"size:50" json:"lastName,omitempty"`
	Avatar       string          `gorm:"size:1024" json:"avatar,omitempty"`
	Preferences  UserPreferences `gorm:"embedded;embeddedPrefix:pref_" json:"preferences"`
	Stats        UserStats       `gorm:"embedded;embeddedPrefix:stats_" json:"stats"`
	IsActive     bool            `gorm:"not null;index" json:"isActive"`
	LastLogin    *time.Time      `json:"lastLogin,omitempty"`
}

type UserPreferences struct {
	FavoriteCategories datatypes.JSON `json:"favoriteCategories"` // JSON array of category ids
	DailyReminder      DailyReminder  `gorm:"embedded;embeddedPrefix:daily_reminder_" json:"dailyReminder"`
	Theme              Theme          `gorm:"size:10" json:"theme"`
}

type DailyReminder struct {
	Enabled bool   `json:"enabled"`
	Time    string `gorm:"size:5" json:"time"` // HH:MM
}

type UserStats struct {
	QuotesRead      int64      `gorm:"not null;default:0" json:"quotesRead"`
	QuotesFavorited int64      `gorm:"not null;default:0" json:"quotesFavorited"`
	Streak          int        `gorm:"not null;default:0" json:"streak"`
	LastActive      *time.Time `json:"lastActive,omitempty"`
}

// UserSummary is the public subset of a user embedded in other domains' responses.
type UserSummary struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Avatar    string `json:"avatar,omitempty"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Avatar:    u.Avatar,
	}
}

// NewUser returns a user with the default preferences applied.
func NewUser(username, email, passwordHash string) *User {
	return &User{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		IsActive:     true,
		Preferences: UserPreferences{
			FavoriteCategories: datatypes.JSON("[]"),
			DailyReminder:      DailyReminder{Enabled: false, Time: DefaultReminderTime},
			Theme:              ThemeAuto,
		},
	}
}
