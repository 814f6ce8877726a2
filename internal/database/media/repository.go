// Package media provides database operations for uploaded media.
package media

import (
	"gorm.io/gorm"

	"github.com/mrlokans/mymotiv/internal/database"
	"github.com/mrlokans/mymotiv/internal/entities"
)

const resource = "Media"

// SortFields maps accepted sortBy values to columns.
var SortFields = map[string]string{
	"createdAt":      "created_at",
	"favoritesCount": "favorites_count",
	"size":           "size",
	"originalName":   "original_name",
}

// ListOptions controls media listings. Sort must be a key of SortFields.
type ListOptions struct {
	Type      entities.MediaType
	SortBy    string
	Ascending bool
	Page      database.Page
}

func (o ListOptions) order() string {
	column, ok := SortFields[o.SortBy]
	if !ok {
		column = "created_at"
	}
	if o.Ascending {
		return column + " ASC"
	}
	return column + " DESC"
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(m *entities.Media) error {
	return database.Translate(r.db.Create(m).Error, resource)
}

// GetByID returns an active media item.
func (r *Repository) GetByID(id string) (*entities.Media, error) {
	var m entities.Media
	if err := r.db.Where("id = ? AND is_active = ?", id, true).First(&m).Error; err != nil {
		return nil, database.Translate(err, resource)
	}
	return &m, nil
}

// GetByStorageKey returns the active media item stored under key.
func (r *Repository) GetByStorageKey(key string) (*entities.Media, error) {
	var m entities.Media
	if err := r.db.Where("storage_key = ? AND is_active = ?", key, true).First(&m).Error; err != nil {
		return nil, database.Translate(err, resource)
	}
	return &m, nil
}

// GetByIDs returns active media keyed by id.
func (r *Repository) GetByIDs(ids []string) (map[string]entities.Media, error) {
	result := make(map[string]entities.Media, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var items []entities.Media
	if err := r.db.Where("id IN ? AND is_active = ?", ids, true).Find(&items).Error; err != nil {
		return nil, database.Translate(err, resource)
	}
	for _, m := range items {
		result[m.ID] = m
	}
	return result, nil
}

func (r *Repository) list(query *gorm.DB, opts ListOptions) (database.Paginated[entities.Media], error) {
	result := database.Paginated[entities.Media]{Page: opts.Page}
	query = query.Where("is_active = ?", true)
	if opts.Type != "" {
		query = query.Where("type = ?", opts.Type)
	}
	if err := query.Session(&gorm.Session{}).Count(&result.Total).Error; err != nil {
		return result, database.Translate(err, resource)
	}
	err := query.Order(opts.order()).
		Limit(opts.Page.Size).
		Offset(opts.Page.Offset()).
		Find(&result.Items).Error
	return result, database.Translate(err, resource)
}

// ListByUser returns a user's own active media, public or not.
func (r *Repository) ListByUser(userID string, opts ListOptions) (database.Paginated[entities.Media], error) {
	return r.list(r.db.Model(&entities.Media{}).Where("user_id = ?", userID), opts)
}

// ListPublic returns active public media.
func (r *Repository) ListPublic(opts ListOptions) (database.Paginated[entities.Media], error) {
	return r.list(r.db.Model(&entities.Media{}).Where("is_public = ?", true), opts)
}

// ListPopular returns public media with at least minFavorites favorites,
// most favorited first.
func (r *Repository) ListPopular(minFavorites int64, limit int) ([]entities.Media, error) {
	var items []entities.Media
	err := r.db.Where("is_active = ? AND is_public = ? AND favorites_count >= ?", true, true, minFavorites).
		Order("favorites_count DESC, created_at DESC").
		Limit(limit).
		Find(&items).Error
	return items, database.Translate(err, resource)
}
