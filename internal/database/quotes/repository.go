// Package quotes provides database operations for quotes and their likes.
package quotes

import (
	"strings"

	"gorm.io/gorm"

	"github.com/mrlokans/mymotiv/internal/database"
	"github.com/mrlokans/mymotiv/internal/entities"
)

const resource = "Quote"

// Filter narrows quote listings. Zero values do not filter.
type Filter struct {
	CategoryID string
	UserID     string
	PublicOnly bool
	Search     string // case-insensitive match on text or author
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) scoped(f Filter) *gorm.DB {
	query := r.db.Model(&entities.Quote{}).Where("is_active = ?", true)
	if f.PublicOnly {
		query = query.Where("is_public = ?", true)
	}
	if f.CategoryID != "" {
		query = query.Where("category_id = ?", f.CategoryID)
	}
	if f.UserID != "" {
		query = query.Where("user_id = ?", f.UserID)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		pattern := "%" + escapeLike(strings.ToLower(s)) + "%"
		query = query.Where("(LOWER(text) LIKE ? ESCAPE '\\' OR LOWER(author) LIKE ? ESCAPE '\\')", pattern, pattern)
	}
	return query
}

// List returns one page of quotes, newest first.
func (r *Repository) List(f Filter, page database.Page) (database.Paginated[entities.Quote], error) {
	result := database.Paginated[entities.Quote]{Page: page}
	if err := r.scoped(f).Count(&result.Total).Error; err != nil {
		return result, database.Translate(err, resource)
	}
	err := r.scoped(f).
		Order("created_at DESC").
		Limit(page.Size).
		Offset(page.Offset()).
		Find(&result.Items).Error
	return result, database.Translate(err, resource)
}

// Count returns how many quotes match f.
func (r *Repository) Count(f Filter) (int64, error) {
	var total int64
	err := r.scoped(f).Count(&total).Error
	return total, database.Translate(err, resource)
}

// At returns the quote at offset in id order. Paired with Count it gives a
// uniform random pick as long as ids are stable.
func (r *Repository) At(f Filter, offset int) (*entities.Quote, error) {
	var quote entities.Quote
	err := r.scoped(f).Order("id ASC").Offset(offset).Limit(1).Take(&quote).Error
	if err != nil {
		return nil, database.Translate(err, resource)
	}
	return &quote, nil
}

// GetByID returns an active quote.
func (r *Repository) GetByID(id string) (*entities.Quote, error) {
	var quote entities.Quote
	if err := r.db.Where("id = ? AND is_active = ?", id, true).First(&quote).Error; err != nil {
		return nil, database.Translate(err, resource)
	}
	return &quote, nil
}

// GetByIDs returns active quotes keyed by id.
func (r *Repository) GetByIDs(ids []string) (map[string]entities.Quote, error) {
	result := make(map[string]entities.Quote, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var quotes []entities.Quote
	if err := r.db.Where("id IN ? AND is_active = ?", ids, true).Find(&quotes).Error; err != nil {
		return nil, database.Translate(err, resource)
	}
	for _, q := range quotes {
		result[q.ID] = q
	}
	return result, nil
}

// ExistsByText reports whether an active quote with exactly this text and
// author is stored.
func (r *Repository) ExistsByText(text, author string) (bool, error) {
	var total int64
	err := r.db.Model(&entities.Quote{}).
		Where("text = ? AND author = ? AND is_active = ?", text, author, true).
		Count(&total).Error
	return total > 0, database.Translate(err, resource)
}

func (r *Repository) Create(quote *entities.Quote) error {
	return database.Translate(r.db.Create(quote).Error, resource)
}

// Update writes the given columns of an active quote.
func (r *Repository) Update(id string, fields map[string]any) (*entities.Quote, error) {
	result := r.db.Model(&entities.Quote{}).Where("id = ? AND is_active = ?", id, true).Updates(fields)
	if result.Error != nil {
		return nil, database.Translate(result.Error, resource)
	}
	if result.RowsAffected == 0 {
		return nil, database.Translate(gorm.ErrRecordNotFound, resource)
	}
	return r.GetByID(id)
}

// Delete removes a quote and its likes, and deactivates its favorites, in
// one transaction. Quotes are the only hard-deleted entity.
func (r *Repository) Delete(id string) (*entities.Quote, error) {
	var deleted entities.Quote
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&deleted).Error; err != nil {
			return err
		}
		if err := tx.Where("quote_id = ?", id).Delete(&entities.QuoteLike{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&entities.Favorite{}).
			Where("target_id = ? AND is_active = ?", id, true).
			Update("is_active", false).Error; err != nil {
			return err
		}
		return tx.Delete(&entities.Quote{}, "id = ?", id).Error
	})
	if err != nil {
		return nil, database.Translate(err, resource)
	}
	return &deleted, nil
}

// IncrementViews bumps the view counter atomically.
func (r *Repository) IncrementViews(id string) error {
	err := r.db.Model(&entities.Quote{}).Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + 1")).Error
	return database.Translate(err, resource)
}

// ToggleLike adds the user's like or removes it if present, keeping
// likes_count equal to the number of like rows.
func (r *Repository) ToggleLike(quoteID, userID string) (liked bool, likes int64, err error) {
	err = r.db.Transaction(func(tx *gorm.DB) error {
		var quote entities.Quote
		if err := tx.Select("id").Where("id = ? AND is_active = ?", quoteID, true).First(&quote).Error; err != nil {
			return err
		}

		removed := tx.Where("quote_id = ? AND user_id = ?", quoteID, userID).Delete(&entities.QuoteLike{})
		if removed.Error != nil {
			return removed.Error
		}

		if removed.RowsAffected > 0 {
			liked = false
			if err := tx.Model(&entities.Quote{}).Where("id = ?", quoteID).
				UpdateColumn("likes_count", gorm.Expr("CASE WHEN likes_count > 0 THEN likes_count - 1 ELSE 0 END")).Error; err != nil {
				return err
			}
		} else {
			liked = true
			if err := tx.Create(&entities.QuoteLike{QuoteID: quoteID, UserID: userID}).Error; err != nil {
				return err
			}
			if err := tx.Model(&entities.Quote{}).Where("id = ?", quoteID).
				UpdateColumn("likes_count", gorm.Expr("likes_count + 1")).Error; err != nil {
				return err
			}
		}

		return tx.Model(&entities.Quote{}).Select("likes_count").Where("id = ?", quoteID).Scan(&likes).Error
	})
	if err != nil {
		return false, 0, database.Translate(err, resource)
	}
	return liked, likes, nil
}

// CountActiveByCategory counts active quotes grouped by category.
func (r *Repository) CountActiveByCategory() (map[string]int64, error) {
	var rows []struct {
		CategoryID string
		Total      int64
	}
	err := r.db.Model(&entities.Quote{}).
		Select("category_id, COUNT(*) AS total").
		Where("is_active = ?", true).
		Group("category_id").
		Scan(&rows).Error
	if err != nil {
		return nil, database.Translate(err, resource)
	}
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.CategoryID] = row.Total
	}
	return counts, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
