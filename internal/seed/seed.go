// Package seed loads the default categories, quotes and administrator
// account. Running it again only fills in what is missing.
package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/mrlokans/mymotiv/internal/apperrors"
	"github.com/mrlokans/mymotiv/internal/config"
	"github.com/mrlokans/mymotiv/internal/database"
	"github.com/mrlokans/mymotiv/internal/database/quotes"
	"github.com/mrlokans/mymotiv/internal/entities"
	"github.com/mrlokans/mymotiv/internal/logging"
	"github.com/mrlokans/mymotiv/internal/services"
)

// Registrar creates user accounts.
type Registrar interface {
	Register(ctx context.Context, username, email, password string) (*entities.User, error)
}

// Report counts what a run created.
type Report struct {
	Categories   int
	Quotes       int
	AdminCreated bool
}

type Seeder struct {
	models     database.Resolver
	categories *services.CategoryService
	quotes     *services.QuoteService
	accounts   Registrar
	admin      config.Seed

	Categories []CategorySeed
	Quotes     []QuoteSeed
}

func New(models database.Resolver, categories *services.CategoryService, quotes *services.QuoteService, accounts Registrar, admin config.Seed) *Seeder {
	return &Seeder{
		models:     models,
		categories: categories,
		quotes:     quotes,
		accounts:   accounts,
		admin:      admin,
		Categories: DefaultCategories,
		Quotes:     DefaultQuotes,
	}
}

func (s *Seeder) Run(ctx context.Context) (Report, error) {
	var report Report

	ids, created, err := s.seedCategories(ctx)
	if err != nil {
		return report, err
	}
	report.Categories = created

	if report.Quotes, err = s.seedQuotes(ctx, ids); err != nil {
		return report, err
	}

	if s.accounts != nil && s.admin.AdminEmail != "" {
		if report.AdminCreated, err = s.seedAdmin(ctx); err != nil {
			return report, err
		}
	}

	logging.Info().
		Int("categories", report.Categories).
		Int("quotes", report.Quotes).
		Bool("admin_created", report.AdminCreated).
		Msg("seed completed")
	return report, nil
}

// seedCategories returns category ids keyed by name.
func (s *Seeder) seedCategories(ctx context.Context) (map[string]string, int, error) {
	ids := make(map[string]string, len(s.Categories))
	created := 0
	for _, c := range s.Categories {
		existing, err := s.categories.Resolve(ctx, c.Name)
		if err == nil {
			ids[c.Name] = existing.ID
			continue
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, created, fmt.Errorf("resolve category %q: %w", c.Name, err)
		}

		name, description, color, icon, order := c.Name, c.Description, c.Color, c.Icon, c.Order
		category, err := s.categories.Create(ctx, services.CategoryInput{
			Name:        &name,
			Description: &description,
			Color:       &color,
			Icon:        &icon,
			Order:       &order,
		})
		if err != nil {
			return nil, created, fmt.Errorf("create category %q: %w", c.Name, err)
		}
		ids[c.Name] = category.ID
		created++
	}
	return ids, created, nil
}

func (s *Seeder) seedQuotes(ctx context.Context, categoryIDs map[string]string) (int, error) {
	db, err := s.models.DB(ctx, database.DomainQuotes)
	if err != nil {
		return 0, err
	}
	repo := quotes.NewRepository(db)

	created := 0
	for _, q := range s.Quotes {
		categoryID, ok := categoryIDs[q.Category]
		if !ok {
			return created, fmt.Errorf("quote %q references unknown category %q", q.Text, q.Category)
		}
		exists, err := repo.ExistsByText(q.Text, q.Author)
		if err != nil {
			return created, err
		}
		if exists {
			continue
		}

		text, author := q.Text, q.Author
		// Create bumps the category quote counter.
		if _, err := s.quotes.Create(ctx, "", services.QuoteInput{
			Text:       &text,
			Author:     &author,
			CategoryID: &categoryID,
		}); err != nil {
			return created, fmt.Errorf("create quote by %s: %w", q.Author, err)
		}
		created++
	}
	return created, nil
}

func (s *Seeder) seedAdmin(ctx context.Context) (bool, error) {
	_, err := s.accounts.Register(ctx, s.admin.AdminUsername, s.admin.AdminEmail, s.admin.AdminPassword)
	if errors.Is(err, apperrors.ErrConflict) {
		logging.Debug().Str("email", s.admin.AdminEmail).Msg("admin account already present")
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("create admin account: %w", err)
	}
	return true, nil
}
