package services

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/mrlokans/mymotiv/internal/apperrors"
	"github.com/mrlokans/mymotiv/internal/database"
	"github.com/mrlokans/mymotiv/internal/database/categories"
	"github.com/mrlokans/mymotiv/internal/entities"
	"github.com/mrlokans/mymotiv/internal/utils"
)

// CategoryInput carries category fields. Nil fields are left unchanged on
// update.
type CategoryInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Color       *string `json:"color"`
	Icon        *string `json:"icon"`
	Order       *int    `json:"order"`
}

type CategoryService struct {
	models database.Resolver
}

func NewCategoryService(models database.Resolver) *CategoryService {
	return &CategoryService{models: models}
}

func (s *CategoryService) repo(ctx context.Context) (*categories.Repository, error) {
	db, err := s.models.DB(ctx, database.DomainCategories)
	if err != nil {
		return nil, err
	}
	return categories.NewRepository(db), nil
}

// List returns active categories in display order.
func (s *CategoryService) List(ctx context.Context) ([]entities.Category, error) {
	repo, err := s.repo(ctx)
	if err != nil {
		return nil, err
	}
	return repo.List(true)
}

func (s *CategoryService) Get(ctx context.Context, id string) (*entities.Category, error) {
	repo, err := s.repo(ctx)
	if err != nil {
		return nil, err
	}
	category, err := repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !category.IsActive {
		return nil, apperrors.NotFound("Category")
	}
	return category, nil
}

// Resolve finds an active category by id or, failing that, by name.
func (s *CategoryService) Resolve(ctx context.Context, ref string) (*entities.Category, error) {
	repo, err := s.repo(ctx)
	if err != nil {
		return nil, err
	}
	category, err := repo.GetByID(ref)
	if err != nil {
		category, err = repo.GetByName(strings.TrimSpace(ref))
	}
	if err != nil {
		return nil, err
	}
	if !category.IsActive {
		return nil, apperrors.NotFound("Category")
	}
	return category, nil
}

func (s *CategoryService) Create(ctx context.Context, in CategoryInput) (*entities.Category, error) {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return nil, apperrors.Validation("Category name is required")
	}
	fields, err := categoryFields(in)
	if err != nil {
		return nil, err
	}

	category := &entities.Category{
		Name:     fields["name"].(string),
		Color:    entities.DefaultCategoryColor,
		IsActive: true,
	}
	if v, ok := fields["description"].(string); ok {
		category.Description = v
	}
	if v, ok := fields["color"].(string); ok {
		category.Color = v
	}
	if v, ok := fields["icon"].(string); ok {
		category.Icon = v
	}
	if v, ok := fields["sort_order"].(int); ok {
		category.Order = v
	}

	repo, err := s.repo(ctx)
	if err != nil {
		return nil, err
	}
	if err := repo.Create(category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *CategoryService) Update(ctx context.Context, id string, in CategoryInput) (*entities.Category, error) {
	fields, err := categoryFields(in)
	if err != nil {
		return nil, err
	}
	repo, err := s.repo(ctx)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return repo.GetByID(id)
	}
	return repo.Update(id, fields)
}

// Delete soft-deletes a category. Its quotes keep their category id.
func (s *CategoryService) Delete(ctx context.Context, id string) error {
	repo, err := s.repo(ctx)
	if err != nil {
		return err
	}
	return repo.Deactivate(id)
}

func categoryFields(in CategoryInput) (map[string]any, error) {
	fields := make(map[string]any)
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" || utf8.RuneCountInString(name) > entities.MaxCategoryNameLength {
			return nil, apperrors.Validation("Category name must be 1 to %d characters", entities.MaxCategoryNameLength)
		}
		fields["name"] = name
	}
	if in.Description != nil {
		description := strings.TrimSpace(*in.Description)
		if utf8.RuneCountInString(description) > entities.MaxCategoryDescriptionLength {
			return nil, apperrors.Validation("Description must be at most %d characters", entities.MaxCategoryDescriptionLength)
		}
		fields["description"] = description
	}
	if in.Color != nil {
		if !utils.IsHexColor(*in.Color) {
			return nil, apperrors.Validation("Color must be a hex color like #6366f1")
		}
		fields["color"] = utils.NormalizeHexColor(*in.Color)
	}
	if in.Icon != nil {
		icon := strings.TrimSpace(*in.Icon)
		if utf8.RuneCountInString(icon) > entities.MaxCategoryIconLength {
			return nil, apperrors.Validation("Icon must be at most %d characters", entities.MaxCategoryIconLength)
		}
		fields["icon"] = icon
	}
	if in.Order != nil {
		fields["sort_order"] = *in.Order
	}
	return fields, nil
}
