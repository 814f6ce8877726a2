// Package themes provides database operations for theme preferences.
package themes

import (
	"errors"

	"gorm.io/gorm"

	"github.com/mrlokans/mymotiv/internal/database"
	"github.com/mrlokans/mymotiv/internal/entities"
)

const resource = "Theme preference"

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetOrCreate returns the user's preference, creating the defaults on first
// access.
func (r *Repository) GetOrCreate(userID string) (*entities.UserThemePreference, error) {
	var pref entities.UserThemePreference
	err := r.db.Where("user_id = ?", userID).First(&pref).Error
	if err == nil {
		return &pref, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, database.Translate(err, resource)
	}

	created := entities.DefaultThemePreference(userID)
	if err := r.db.Create(created).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return r.GetOrCreate(userID)
		}
		return nil, database.Translate(err, resource)
	}
	return created, nil
}

func (r *Repository) Save(pref *entities.UserThemePreference) error {
	return database.Translate(r.db.Save(pref).Error, resource)
}
