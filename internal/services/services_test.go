package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mrlokans/mymotiv/internal/database"
	"github.com/mrlokans/mymotiv/internal/database/dbtest"
	"github.com/mrlokans/mymotiv/internal/entities"
	"github.com/mrlokans/mymotiv/internal/favorites"
)

type fixture struct {
	ctx        context.Context
	models     *database.Models
	engine     *favorites.Engine
	categories *CategoryService
	quotes     *QuoteService
}

func setup(t *testing.T) *fixture {
	t.Helper()
	_, models := dbtest.Models(t)
	engine := favorites.NewEngine(models)
	return &fixture{
		ctx:        context.Background(),
		models:     models,
		engine:     engine,
		categories: NewCategoryService(models),
		quotes:     NewQuoteService(models, engine),
	}
}

func (f *fixture) db(t *testing.T, domain database.Domain) *gorm.DB {
	t.Helper()
	db, err := f.models.DB(f.ctx, domain)
	require.NoError(t, err)
	return db
}

func (f *fixture) category(t *testing.T, name string) *entities.Category {
	t.Helper()
	c, err := f.categories.Create(f.ctx, CategoryInput{Name: ptr(name)})
	require.NoError(t, err)
	return c
}

func (f *fixture) user(t *testing.T, username string) *entities.User {
	t.Helper()
	u := entities.NewUser(username, username+"@example.com", "hash")
	require.NoError(t, f.db(t, database.DomainAuth).Create(u).Error)
	return u
}

func (f *fixture) quote(t *testing.T, userID, categoryID, text string) *entities.Quote {
	t.Helper()
	q, err := f.quotes.Create(f.ctx, userID, QuoteInput{
		Text:       ptr(text),
		Author:     ptr("Anónimo"),
		CategoryID: ptr(categoryID),
	})
	require.NoError(t, err)
	return q
}

func ptr[T any](v T) *T {
	return &v
}
