// Package favorites keeps Favorite rows and the favoritesCount of their
// targets consistent.
//
// A toggle runs as one transaction on the target's domain database: the
// Favorite row and the counter change together or not at all. The partial
// unique index on active (user, target) pairs settles concurrent toggles;
// Reconcile recomputes counters from the Favorite rows when they drift.
package favorites

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/mymotiv/internal/apperrors"
	"github.com/mrlokans/mymotiv/internal/database"
	favoritesrepo "github.com/mrlokans/mymotiv/internal/database/favorites"
	"github.com/mrlokans/mymotiv/internal/database/quotes"
	"github.com/mrlokans/mymotiv/internal/database/users"
	"github.com/mrlokans/mymotiv/internal/entities"
	"github.com/mrlokans/mymotiv/internal/logging"
)

// Kind is a family of favoritable targets.
type Kind string

const (
	KindMedia Kind = "media"
	KindQuote Kind = "quote"
)

// Kinds lists every favoritable kind.
var Kinds = []Kind{KindMedia, KindQuote}

type target struct {
	domain   database.Domain
	model    any
	resource string
}

var targets = map[Kind]target{
	KindMedia: {domain: database.DomainMedia, model: &entities.Media{}, resource: "Media"},
	KindQuote: {domain: database.DomainQuotes, model: &entities.Quote{}, resource: "Quote"},
}

// Result is the outcome of a toggle.
type Result struct {
	Favorited      bool  `json:"favorited"`
	FavoritesCount int64 `json:"favoritesCount"`
}

// Engine toggles favorites and maintains target counters.
type Engine struct {
	models database.Resolver
	now    func() time.Time
}

func NewEngine(models database.Resolver) *Engine {
	return &Engine{
		models: models,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (e *Engine) lookup(ctx context.Context, kind Kind) (target, *gorm.DB, error) {
	t, ok := targets[kind]
	if !ok {
		return target{}, nil, apperrors.Validation("unsupported favorite kind %q", kind)
	}
	db, err := e.models.DB(ctx, t.domain)
	if err != nil {
		return target{}, nil, err
	}
	return t, db, nil
}

// Toggle favorites targetID for userID, or unfavorites it when an active
// favorite exists. The counter moves in the same transaction.
func (e *Engine) Toggle(ctx context.Context, kind Kind, userID, targetID string) (Result, error) {
	t, db, err := e.lookup(ctx, kind)
	if err != nil {
		return Result{}, err
	}

	var result Result
	err = db.Transaction(func(tx *gorm.DB) error {
		contentType, err := loadTarget(tx, kind, targetID)
		if err != nil {
			return err
		}

		repo := favoritesrepo.NewRepository(tx)
		existing, err := repo.FindActive(userID, targetID)
		switch {
		case err == nil:
			changed, err := repo.Deactivate(existing.ID)
			if err != nil {
				return err
			}
			if changed {
				if err := adjustCounter(tx, t.model, targetID, -1); err != nil {
					return err
				}
			}
			result.Favorited = false
		case errors.Is(err, apperrors.ErrNotFound):
			_, err := repo.Activate(userID, targetID, contentType, e.now())
			switch {
			case err == nil:
				if err := adjustCounter(tx, t.model, targetID, 1); err != nil {
					return err
				}
			case errors.Is(err, apperrors.ErrConflict):
				// Another toggle activated the pair first; its increment stands.
			default:
				return err
			}
			result.Favorited = true
		default:
			return err
		}

		return tx.Model(t.model).Select("favorites_count").Where("id = ?", targetID).Scan(&result.FavoritesCount).Error
	})
	if err != nil {
		return Result{}, database.Translate(err, t.resource)
	}

	if kind == KindQuote {
		e.recordStat(ctx, userID, result.Favorited)
	}
	return result, nil
}

// IsFavorite reports whether userID has an active favorite on targetID.
// Lookup failures read as false.
func (e *Engine) IsFavorite(ctx context.Context, kind Kind, userID, targetID string) bool {
	_, db, err := e.lookup(ctx, kind)
	if err != nil {
		return false
	}
	_, err = favoritesrepo.NewRepository(db).FindActive(userID, targetID)
	return err == nil
}

// DeleteTarget removes a target and deactivates every favorite pointing at
// it in one transaction. Media is soft-deleted with its counter zeroed;
// quotes are hard-deleted. A non-empty ownerID must own the target.
func (e *Engine) DeleteTarget(ctx context.Context, kind Kind, ownerID, targetID string) error {
	t, db, err := e.lookup(ctx, kind)
	if err != nil {
		return err
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		var owner struct{ UserID string }
		if err := tx.Model(t.model).Select("user_id").
			Where("id = ? AND is_active = ?", targetID, true).
			Take(&owner).Error; err != nil {
			return err
		}
		if ownerID != "" && owner.UserID != "" && owner.UserID != ownerID {
			return apperrors.Forbidden("Access denied")
		}

		if kind == KindQuote {
			_, err := quotes.NewRepository(tx).Delete(targetID)
			return err
		}

		if _, err := favoritesrepo.NewRepository(tx).DeactivateForTarget(targetID); err != nil {
			return err
		}
		return tx.Model(t.model).Where("id = ?", targetID).Updates(map[string]any{
			"is_active":       false,
			"favorites_count": 0,
		}).Error
	})
	return database.Translate(err, t.resource)
}

// List returns a user's active favorites of one kind, newest first, with
// their targets attached. Favorites whose target is gone are skipped.
func (e *Engine) List(ctx context.Context, kind Kind, userID string, contentType entities.ContentType) ([]entities.Favorite, error) {
	_, db, err := e.lookup(ctx, kind)
	if err != nil {
		return nil, err
	}

	favs, err := favoritesrepo.NewRepository(db).ListActiveByUser(userID, contentType)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(favs))
	for _, f := range favs {
		ids = append(ids, f.TargetID)
	}

	result := make([]entities.Favorite, 0, len(favs))
	switch kind {
	case KindMedia:
		var items []entities.Media
		if err := db.Where("id IN ? AND is_active = ?", ids, true).Find(&items).Error; err != nil {
			return nil, database.Translate(err, "Media")
		}
		byID := make(map[string]*entities.Media, len(items))
		for i := range items {
			byID[items[i].ID] = &items[i]
		}
		for _, f := range favs {
			if m, ok := byID[f.TargetID]; ok {
				f.Media = m
				result = append(result, f)
			}
		}
	case KindQuote:
		var items []entities.Quote
		if err := db.Where("id IN ? AND is_active = ?", ids, true).Find(&items).Error; err != nil {
			return nil, database.Translate(err, "Quote")
		}
		byID := make(map[string]*entities.Quote, len(items))
		for i := range items {
			items[i].IsFavorite = true
			byID[items[i].ID] = &items[i]
		}
		for _, f := range favs {
			if q, ok := byID[f.TargetID]; ok {
				f.Quote = q
				result = append(result, f)
			}
		}
	}
	return result, nil
}

// Recount sets one target's counter to its number of active favorites.
func (e *Engine) Recount(ctx context.Context, kind Kind, targetID string) (int64, error) {
	t, db, err := e.lookup(ctx, kind)
	if err != nil {
		return 0, err
	}

	var count int64
	err = db.Transaction(func(tx *gorm.DB) error {
		n, err := favoritesrepo.NewRepository(tx).CountActive(targetID)
		if err != nil {
			return err
		}
		count = n
		result := tx.Model(t.model).Where("id = ?", targetID).UpdateColumn("favorites_count", n)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	return count, database.Translate(err, t.resource)
}

// Reconcile recomputes every counter of one kind from the active Favorite
// rows and returns how many targets were corrected.
func (e *Engine) Reconcile(ctx context.Context, kind Kind) (int, error) {
	t, db, err := e.lookup(ctx, kind)
	if err != nil {
		return 0, err
	}

	fixed := 0
	err = db.Transaction(func(tx *gorm.DB) error {
		counts, err := favoritesrepo.NewRepository(tx).CountActiveByTarget()
		if err != nil {
			return err
		}

		var rows []struct {
			ID             string
			FavoritesCount int64
		}
		if err := tx.Model(t.model).Select("id, favorites_count").Scan(&rows).Error; err != nil {
			return err
		}

		for _, row := range rows {
			want := counts[row.ID]
			if row.FavoritesCount == want {
				continue
			}
			if err := tx.Model(t.model).Where("id = ?", row.ID).UpdateColumn("favorites_count", want).Error; err != nil {
				return err
			}
			fixed++
		}
		return nil
	})
	if err != nil {
		return 0, database.Translate(err, t.resource)
	}

	if fixed > 0 {
		logging.Warn().Str("kind", string(kind)).Int("fixed", fixed).Msg("favorite counters reconciled")
	}
	return fixed, nil
}

// ReconcileAll reconciles every kind.
func (e *Engine) ReconcileAll(ctx context.Context) (map[Kind]int, error) {
	report := make(map[Kind]int, len(Kinds))
	var errs []error
	for _, kind := range Kinds {
		fixed, err := e.Reconcile(ctx, kind)
		if err != nil {
			errs = append(errs, fmt.Errorf("reconcile %s favorites: %w", kind, err))
			continue
		}
		report[kind] = fixed
	}
	return report, errors.Join(errs...)
}

// recordStat updates the user's favorited quotes statistic. The statistic
// lives in the auth database and is not part of the toggle transaction.
func (e *Engine) recordStat(ctx context.Context, userID string, favorited bool) {
	db, err := e.models.DB(ctx, database.DomainAuth)
	if err == nil {
		delta := -1
		if favorited {
			delta = 1
		}
		err = users.NewRepository(db).IncrementQuotesFavorited(userID, delta)
	}
	if err != nil {
		logging.Warn().Err(err).Str("user_id", userID).Msg("failed to update favorites statistic")
	}
}

func loadTarget(tx *gorm.DB, kind Kind, targetID string) (entities.ContentType, error) {
	switch kind {
	case KindMedia:
		var m entities.Media
		if err := tx.Select("id", "type").Where("id = ? AND is_active = ?", targetID, true).Take(&m).Error; err != nil {
			return "", err
		}
		return entities.ContentType(m.Type), nil
	default:
		var q entities.Quote
		if err := tx.Select("id").Where("id = ? AND is_active = ?", targetID, true).Take(&q).Error; err != nil {
			return "", err
		}
		return entities.ContentTypeQuote, nil
	}
}

func adjustCounter(tx *gorm.DB, model any, targetID string, delta int) error {
	expr := gorm.Expr("favorites_count + 1")
	if delta < 0 {
		expr = gorm.Expr("CASE WHEN favorites_count > 0 THEN favorites_count - 1 ELSE 0 END")
	}
	return tx.Model(model).Where("id = ?", targetID).UpdateColumn("favorites_count", expr).Error
}
