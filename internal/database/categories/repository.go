// Package categories provides database operations for the categories domain.
package categories

import (
	"gorm.io/gorm"

	"github.com/mrlokans/mymotiv/internal/database"
	"github.com/mrlokans/mymotiv/internal/entities"
)

const resource = "Category"

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// List returns categories ordered by their display order, then name.
func (r *Repository) List(activeOnly bool) ([]entities.Category, error) {
	var categories []entities.Category
	query := r.db.Order("sort_order ASC, name ASC")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	if err := query.Find(&categories).Error; err != nil {
		return nil, database.Translate(err, resource)
	}
	return categories, nil
}

func (r *Repository) GetByID(id string) (*entities.Category, error) {
	var category entities.Category
	if err := r.db.Where("id = ?", id).First(&category).Error; err != nil {
		return nil, database.Translate(err, resource)
	}
	return &category, nil
}

func (r *Repository) GetByName(name string) (*entities.Category, error) {
	var category entities.Category
	if err := r.db.Where("name = ?", name).First(&category).Error; err != nil {
		return nil, database.Translate(err, resource)
	}
	return &category, nil
}

// GetByIDs returns categories keyed by id.
func (r *Repository) GetByIDs(ids []string) (map[string]entities.Category, error) {
	result := make(map[string]entities.Category, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var categories []entities.Category
	if err := r.db.Where("id IN ?", ids).Find(&categories).Error; err != nil {
		return nil, database.Translate(err, resource)
	}
	for _, c := range categories {
		result[c.ID] = c
	}
	return result, nil
}

func (r *Repository) Create(category *entities.Category) error {
	return database.Translate(r.db.Create(category).Error, resource)
}

// Update writes the given columns of a category.
func (r *Repository) Update(id string, fields map[string]any) (*entities.Category, error) {
	result := r.db.Model(&entities.Category{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return nil, database.Translate(result.Error, resource)
	}
	if result.RowsAffected == 0 {
		return nil, database.Translate(gorm.ErrRecordNotFound, resource)
	}
	return r.GetByID(id)
}

// Deactivate soft-deletes a category.
func (r *Repository) Deactivate(id string) error {
	result := r.db.Model(&entities.Category{}).Where("id = ? AND is_active = ?", id, true).Update("is_active", false)
	if result.Error != nil {
		return database.Translate(result.Error, resource)
	}
	if result.RowsAffected == 0 {
		return database.Translate(gorm.ErrRecordNotFound, resource)
	}
	return nil
}

// IncrementQuoteCount adds one to the denormalized quote counter.
func (r *Repository) IncrementQuoteCount(id string) error {
	return r.adjustQuoteCount(id, gorm.Expr("quote_count + 1"))
}

// DecrementQuoteCount subtracts one, clamping at zero.
func (r *Repository) DecrementQuoteCount(id string) error {
	return r.adjustQuoteCount(id, gorm.Expr("CASE WHEN quote_count > 0 THEN quote_count - 1 ELSE 0 END"))
}

// SetQuoteCount overwrites the counter with a recomputed value.
func (r *Repository) SetQuoteCount(id string, count int64) error {
	if count < 0 {
		count = 0
	}
	return r.adjustQuoteCount(id, count)
}

func (r *Repository) adjustQuoteCount(id string, value any) error {
	result := r.db.Model(&entities.Category{}).Where("id = ?", id).Update("quote_count", value)
	if result.Error != nil {
		return database.Translate(result.Error, resource)
	}
	if result.RowsAffected == 0 {
		return database.Translate(gorm.ErrRecordNotFound, resource)
	}
	return nil
}
