package services

import (
	"context"
	"errors"

	"github.com/mrlokans/mymotiv/internal/database"
	"github.com/mrlokans/mymotiv/internal/database/categories"
	"github.com/mrlokans/mymotiv/internal/database/quotes"
	"github.com/mrlokans/mymotiv/internal/favorites"
	"github.com/mrlokans/mymotiv/internal/logging"
)

// ReconcileReport counts the rows each pass corrected.
type ReconcileReport struct {
	MediaFavorites int `json:"mediaFavorites"`
	QuoteFavorites int `json:"quoteFavorites"`
	CategoryQuotes int `json:"categoryQuotes"`
}

func (r ReconcileReport) Total() int {
	return r.MediaFavorites + r.QuoteFavorites + r.CategoryQuotes
}

// Maintenance recomputes denormalized counters from their source rows.
type Maintenance struct {
	models    database.Resolver
	favorites *favorites.Engine
}

func NewMaintenance(models database.Resolver, engine *favorites.Engine) *Maintenance {
	return &Maintenance{models: models, favorites: engine}
}

// Reconcile runs every pass. A failing pass does not stop the others; the
// errors are joined.
func (m *Maintenance) Reconcile(ctx context.Context) (ReconcileReport, error) {
	var report ReconcileReport
	var errs []error

	fixed, err := m.favorites.ReconcileAll(ctx)
	if err != nil {
		errs = append(errs, err)
	}
	report.MediaFavorites = fixed[favorites.KindMedia]
	report.QuoteFavorites = fixed[favorites.KindQuote]

	report.CategoryQuotes, err = m.reconcileCategories(ctx)
	if err != nil {
		errs = append(errs, err)
	}

	logging.Info().
		Int("media_favorites", report.MediaFavorites).
		Int("quote_favorites", report.QuoteFavorites).
		Int("category_quotes", report.CategoryQuotes).
		Msg("reconciliation finished")
	return report, errors.Join(errs...)
}

// ReconcileCounters runs Reconcile for the task queue.
func (m *Maintenance) ReconcileCounters(ctx context.Context) (int, error) {
	report, err := m.Reconcile(ctx)
	return report.Total(), err
}

func (m *Maintenance) reconcileCategories(ctx context.Context) (int, error) {
	quotesDB, err := m.models.DB(ctx, database.DomainQuotes)
	if err != nil {
		return 0, err
	}
	categoriesDB, err := m.models.DB(ctx, database.DomainCategories)
	if err != nil {
		return 0, err
	}

	counts, err := quotes.NewRepository(quotesDB).CountActiveByCategory()
	if err != nil {
		return 0, err
	}
	repo := categories.NewRepository(categoriesDB)
	all, err := repo.List(false)
	if err != nil {
		return 0, err
	}

	fixed := 0
	for _, c := range all {
		if want := counts[c.ID]; c.QuoteCount != want {
			if err := repo.SetQuoteCount(c.ID, want); err != nil {
				return fixed, err
			}
			fixed++
		}
	}
	return fixed, nil
}
