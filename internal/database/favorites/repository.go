// Package favorites provides database operations on Favorite rows. The
// Favorite table exists in every domain that owns favoritable targets, so a
// Repository is always bound to one of those domain databases.
//
// # Usage
//
//	repo := favorites.NewRepository(tx)
//	fav, err := repo.FindActive(userID, mediaID)
package favorites

import (
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/mymotiv/internal/database"
	"github.com/mrlokans/mymotiv/internal/entities"
)

const resource = "Favorite"

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindActive returns the active favorite for (userID, targetID).
func (r *Repository) FindActive(userID, targetID string) (*entities.Favorite, error) {
	var fav entities.Favorite
	err := r.db.Where("user_id = ? AND target_id = ? AND is_active = ?", userID, targetID, true).
		Take(&fav).Error
	if err != nil {
		return nil, database.Translate(err, resource)
	}
	return &fav, nil
}

// Activate inserts a new active favorite. A concurrent duplicate fails on
// the partial unique index and surfaces as Conflict.
func (r *Repository) Activate(userID, targetID string, contentType entities.ContentType, at time.Time) (*entities.Favorite, error) {
	fav := &entities.Favorite{
		UserID:      userID,
		TargetID:    targetID,
		ContentType: contentType,
		IsActive:    true,
		FavoritedAt: at,
	}
	if err := r.db.Create(fav).Error; err != nil {
		return nil, database.Translate(err, resource)
	}
	return fav, nil
}

// Deactivate flags one favorite inactive. It reports whether a row changed.
func (r *Repository) Deactivate(id string) (bool, error) {
	result := r.db.Model(&entities.Favorite{}).
		Where("id = ? AND is_active = ?", id, true).
		Update("is_active", false)
	return result.RowsAffected > 0, database.Translate(result.Error, resource)
}

// DeactivateForTarget flags every active favorite of a target inactive.
func (r *Repository) DeactivateForTarget(targetID string) (int64, error) {
	result := r.db.Model(&entities.Favorite{}).
		Where("target_id = ? AND is_active = ?", targetID, true).
		Update("is_active", false)
	return result.RowsAffected, database.Translate(result.Error, resource)
}

// CountActive counts the active favorites of one target.
func (r *Repository) CountActive(targetID string) (int64, error) {
	var count int64
	err := r.db.Model(&entities.Favorite{}).
		Where("target_id = ? AND is_active = ?", targetID, true).
		Count(&count).Error
	return count, database.Translate(err, resource)
}

// CountActiveByTarget counts active favorites grouped by target.
func (r *Repository) CountActiveByTarget() (map[string]int64, error) {
	var rows []struct {
		TargetID string
		Total    int64
	}
	err := r.db.Model(&entities.Favorite{}).
		Select("target_id, COUNT(*) AS total").
		Where("is_active = ?", true).
		Group("target_id").
		Scan(&rows).Error
	if err != nil {
		return nil, database.Translate(err, resource)
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.TargetID] = row.Total
	}
	return counts, nil
}

// ListActiveByUser returns a user's active favorites, newest first.
// contentType filters when non-empty.
func (r *Repository) ListActiveByUser(userID string, contentType entities.ContentType) ([]entities.Favorite, error) {
	var favs []entities.Favorite
	query := r.db.Where("user_id = ? AND is_active = ?", userID, true)
	if contentType != "" {
		query = query.Where("content_type = ?", contentType)
	}
	if err := query.Order("favorited_at DESC").Find(&favs).Error; err != nil {
		return nil, database.Translate(err, resource)
	}
	return favs, nil
}
