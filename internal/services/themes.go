package services

import (
	"context"

	"github.com/mrlokans/mymotiv/internal/apperrors"
	"github.com/mrlokans/mymotiv/internal/database"
	"github.com/mrlokans/mymotiv/internal/database/themes"
	"github.com/mrlokans/mymotiv/internal/entities"
	"github.com/mrlokans/mymotiv/internal/utils"
)

// ThemeUpdate carries theme changes. Nil fields are left unchanged.
type ThemeUpdate struct {
	Theme          *entities.Theme      `json:"theme"`
	CustomSettings *CustomSettingsUpdate `json:"customSettings"`
}

type CustomSettingsUpdate struct {
	PrimaryColor    *string            `json:"primaryColor"`
	SecondaryColor  *string            `json:"secondaryColor"`
	BackgroundColor *string            `json:"backgroundColor"`
	TextColor       *string            `json:"textColor"`
	FontSize        *entities.FontSize `json:"fontSize"`
}

type ThemeService struct {
	models database.Resolver
}

func NewThemeService(models database.Resolver) *ThemeService {
	return &ThemeService{models: models}
}

func (s *ThemeService) repo(ctx context.Context) (*themes.Repository, error) {
	db, err := s.models.DB(ctx, database.DomainThemes)
	if err != nil {
		return nil, err
	}
	return themes.NewRepository(db), nil
}

// Preference returns the user's theme, created with defaults on first read.
func (s *ThemeService) Preference(ctx context.Context, userID string) (*entities.UserThemePreference, error) {
	repo, err := s.repo(ctx)
	if err != nil {
		return nil, err
	}
	return repo.GetOrCreate(userID)
}

func (s *ThemeService) UpdatePreference(ctx context.Context, userID string, update ThemeUpdate) (*entities.UserThemePreference, error) {
	repo, err := s.repo(ctx)
	if err != nil {
		return nil, err
	}
	pref, err := repo.GetOrCreate(userID)
	if err != nil {
		return nil, err
	}

	if update.Theme != nil {
		if !update.Theme.Valid() {
			return nil, apperrors.Validation("Theme must be light, dark or auto")
		}
		pref.Theme = *update.Theme
	}
	if cs := update.CustomSettings; cs != nil {
		colors := []struct {
			value *string
			dest  *string
			name  string
		}{
			{cs.PrimaryColor, &pref.CustomSettings.PrimaryColor, "Primary color"},
			{cs.SecondaryColor, &pref.CustomSettings.SecondaryColor, "Secondary color"},
			{cs.BackgroundColor, &pref.CustomSettings.BackgroundColor, "Background color"},
			{cs.TextColor, &pref.CustomSettings.TextColor, "Text color"},
		}
		for _, c := range colors {
			if c.value == nil {
				continue
			}
			normalized := utils.NormalizeHexColor(*c.value)
			if normalized == "" {
				return nil, apperrors.Validation("%s must be a hex color like #6366f1", c.name)
			}
			*c.dest = normalized
		}
		if cs.FontSize != nil {
			if !cs.FontSize.Valid() {
				return nil, apperrors.Validation("Font size must be small, medium or large")
			}
			pref.CustomSettings.FontSize = *cs.FontSize
		}
	}

	if err := repo.Save(pref); err != nil {
		return nil, err
	}
	return pref, nil
}
