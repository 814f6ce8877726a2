package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/mymotiv/internal/database"
	"github.com/mrlokans/mymotiv/internal/entities"
)

func TestMaintenance_ReconcileRepairsDrift(t *testing.T) {
	f := setup(t)
	c := f.category(t, "Vida")
	empty := f.category(t, "Vacía")
	q := f.quote(t, "author", c.ID, "una")
	f.quote(t, "author", c.ID, "dos")

	_, err := f.quotes.ToggleFavorite(f.ctx, "fan", q.ID)
	require.NoError(t, err)

	require.NoError(t, f.db(t, database.DomainCategories).Model(&entities.Category{}).
		Where("id = ?", c.ID).Update("quote_count", 9).Error)
	require.NoError(t, f.db(t, database.DomainCategories).Model(&entities.Category{}).
		Where("id = ?", empty.ID).Update("quote_count", 4).Error)
	require.NoError(t, f.db(t, database.DomainQuotes).Model(&entities.Quote{}).
		Where("id = ?", q.ID).Update("favorites_count", 5).Error)

	m := NewMaintenance(f.models, f.engine)
	report, err := m.Reconcile(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, report.CategoryQuotes)
	assert.Equal(t, 1, report.QuoteFavorites)
	assert.Zero(t, report.MediaFavorites)
	assert.Equal(t, 3, report.Total())

	c, err = f.categories.Get(f.ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), c.QuoteCount)

	var stored entities.Quote
	require.NoError(t, f.db(t, database.DomainQuotes).First(&stored, "id = ?", q.ID).Error)
	assert.Equal(t, int64(1), stored.FavoritesCount)

	fixed, err := m.ReconcileCounters(f.ctx)
	require.NoError(t, err)
	assert.Zero(t, fixed, "a second pass finds nothing to fix")
}
