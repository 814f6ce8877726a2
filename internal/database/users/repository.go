// Package users provides database operations for the auth domain's users.
//
// # Usage
//
//	repo := users.NewRepository(db)
//	user, err := repo.GetByEmail("someone@example.com")
package users

import (
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/mymotiv/internal/database"
	"github.com/mrlokans/mymotiv/internal/entities"
)

const resource = "User"

// Repository handles all user database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new users repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// NormalizeEmail case-folds an email address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create inserts a user. Duplicate usernames or emails surface as Conflict.
func (r *Repository) Create(user *entities.User) error {
	user.Email = NormalizeEmail(user.Email)
	return database.Translate(r.db.Create(user).Error, resource)
}

// Exists reports whether a user holds the username or the email.
func (r *Repository) Exists(username, email string) (bool, error) {
	var count int64
	err := r.db.Model(&entities.User{}).
		Where("username = ? OR email = ?", username, NormalizeEmail(email)).
		Count(&count).Error
	if err != nil {
		return false, database.Translate(err, resource)
	}
	return count > 0, nil
}

// Count returns the number of stored users.
func (r *Repository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&entities.User{}).Count(&count).Error
	return count, database.Translate(err, resource)
}

func (r *Repository) GetByID(id string) (*entities.User, error) {
	var user entities.User
	if err := r.db.Where("id = ?", id).First(&user).Error; err != nil {
		return nil, database.Translate(err, resource)
	}
	return &user, nil
}

func (r *Repository) GetByEmail(email string) (*entities.User, error) {
	var user entities.User
	if err := r.db.Where("email = ?", NormalizeEmail(email)).First(&user).Error; err != nil {
		return nil, database.Translate(err, resource)
	}
	return &user, nil
}

// GetSummaries returns public summaries keyed by user id. Unknown ids are
// simply absent from the result.
func (r *Repository) GetSummaries(ids []string) (map[string]entities.UserSummary, error) {
	result := make(map[string]entities.UserSummary, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var users []entities.User
	if err := r.db.Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, database.Translate(err, resource)
	}
	for i := range users {
		result[users[i].ID] = users[i].Summary()
	}
	return result, nil
}

// UpdateProfile writes the editable profile fields.
func (r *Repository) UpdateProfile(user *entities.User) error {
	err := r.db.Model(user).Select(
		"first_name", "last_name", "avatar",
		"pref_favorite_categories", "pref_daily_reminder_enabled", "pref_daily_reminder_time", "pref_theme",
	).Updates(user).Error
	return database.Translate(err, resource)
}

func (r *Repository) UpdatePasswordHash(id, hash string) error {
	result := r.db.Model(&entities.User{}).Where("id = ?", id).Update("password_hash", hash)
	if result.Error != nil {
		return database.Translate(result.Error, resource)
	}
	if result.RowsAffected == 0 {
		return database.Translate(gorm.ErrRecordNotFound, resource)
	}
	return nil
}

// RecordLogin stamps the login time and marks the user active for streaks.
func (r *Repository) RecordLogin(id string, at time.Time) error {
	err := r.db.Model(&entities.User{}).Where("id = ?", id).Updates(map[string]any{
		"last_login":        at,
		"stats_last_active": at,
	}).Error
	return database.Translate(err, resource)
}

// IncrementQuotesFavorited adjusts the favorites statistic by delta, never
// below zero.
func (r *Repository) IncrementQuotesFavorited(id string, delta int) error {
	err := r.db.Model(&entities.User{}).Where("id = ?", id).Update("stats_quotes_favorited",
		gorm.Expr("CASE WHEN stats_quotes_favorited + ? < 0 THEN 0 ELSE stats_quotes_favorited + ? END", delta, delta),
	).Error
	return database.Translate(err, resource)
}

// IncrementQuotesRead bumps the read statistic.
func (r *Repository) IncrementQuotesRead(id string) error {
	err := r.db.Model(&entities.User{}).Where("id = ?", id).
		Update("stats_quotes_read", gorm.Expr("stats_quotes_read + 1")).Error
	return database.Translate(err, resource)
}
