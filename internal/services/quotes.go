package services

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"strings"
	"unicode/utf8"

	"gorm.io/datatypes"

	"github.com/mrlokans/mymotiv/internal/apperrors"
	"github.com/mrlokans/mymotiv/internal/database"
	"github.com/mrlokans/mymotiv/internal/database/categories"
	"github.com/mrlokans/mymotiv/internal/database/quotes"
	"github.com/mrlokans/mymotiv/internal/database/users"
	"github.com/mrlokans/mymotiv/internal/entities"
	"github.com/mrlokans/mymotiv/internal/favorites"
	"github.com/mrlokans/mymotiv/internal/logging"
)

// QuoteInput carries quote fields. Nil fields are left unchanged on update.
type QuoteInput struct {
	Text        *string                    `json:"text"`
	Author      *string                    `json:"author"`
	CategoryID  *string                    `json:"categoryId"`
	MediaID     *string                    `json:"mediaId"`
	ContentType *entities.QuoteContentType `json:"contentType"`
	IsPublic    *bool                      `json:"isPublic"`
	Tags        []string                   `json:"tags"`
}

// LikeResult is the outcome of a like toggle.
type LikeResult struct {
	Liked bool  `json:"liked"`
	Likes int64 `json:"likes"`
}

type QuoteService struct {
	models     database.Resolver
	favorites  *favorites.Engine
	categories *CategoryService
	intn       func(n int) int
}

func NewQuoteService(models database.Resolver, engine *favorites.Engine) *QuoteService {
	return &QuoteService{
		models:     models,
		favorites:  engine,
		categories: NewCategoryService(models),
		intn:       rand.IntN,
	}
}

func (s *QuoteService) repo(ctx context.Context) (*quotes.Repository, error) {
	db, err := s.models.DB(ctx, database.DomainQuotes)
	if err != nil {
		return nil, err
	}
	return quotes.NewRepository(db), nil
}

// List returns public quotes, newest first. categoryRef is an id or a
// name; an unknown category yields an empty page.
func (s *QuoteService) List(ctx context.Context, categoryRef string, page database.Page, viewerID string) (database.Paginated[entities.Quote], error) {
	filter := quotes.Filter{PublicOnly: true}
	if categoryRef != "" {
		category, err := s.categories.Resolve(ctx, categoryRef)
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			return database.Paginated[entities.Quote]{Page: page, Items: []entities.Quote{}}, nil
		case err != nil:
			return database.Paginated[entities.Quote]{}, err
		}
		filter.CategoryID = category.ID
	}
	return s.list(ctx, filter, page, viewerID)
}

// ByCategory lists a category's public quotes; the category must exist.
func (s *QuoteService) ByCategory(ctx context.Context, categoryRef string, page database.Page, viewerID string) (database.Paginated[entities.Quote], error) {
	category, err := s.categories.Resolve(ctx, categoryRef)
	if err != nil {
		return database.Paginated[entities.Quote]{}, err
	}
	return s.list(ctx, quotes.Filter{PublicOnly: true, CategoryID: category.ID}, page, viewerID)
}

// Search matches text or author case-insensitively.
func (s *QuoteService) Search(ctx context.Context, term string, page database.Page, viewerID string) (database.Paginated[entities.Quote], error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return database.Paginated[entities.Quote]{}, apperrors.Validation("Search term is required")
	}
	return s.list(ctx, quotes.Filter{PublicOnly: true, Search: term}, page, viewerID)
}

func (s *QuoteService) list(ctx context.Context, filter quotes.Filter, page database.Page, viewerID string) (database.Paginated[entities.Quote], error) {
	repo, err := s.repo(ctx)
	if err != nil {
		return database.Paginated[entities.Quote]{}, err
	}
	result, err := repo.List(filter, page)
	if err != nil {
		return result, err
	}
	s.decorate(ctx, result.Items, viewerID)
	return result, nil
}

// Random picks a uniformly random public quote with a count and an offset
// scan, which costs O(n) in the number of matching quotes.
func (s *QuoteService) Random(ctx context.Context, categoryRef string, viewerID string) (*entities.Quote, error) {
	filter := quotes.Filter{PublicOnly: true}
	if categoryRef != "" {
		category, err := s.categories.Resolve(ctx, categoryRef)
		if err != nil {
			return nil, err
		}
		filter.CategoryID = category.ID
	}

	repo, err := s.repo(ctx)
	if err != nil {
		return nil, err
	}
	total, err := repo.Count(filter)
	if err != nil {
		return nil, err
	}
	if total == 0 {
		return nil, apperrors.New(apperrors.ErrNotFound, "No quotes available")
	}

	quote, err := repo.At(filter, s.intn(int(total)))
	if err != nil {
		return nil, err
	}
	items := []entities.Quote{*quote}
	s.decorate(ctx, items, viewerID)
	return &items[0], nil
}

// Get returns a quote and counts the view. A private quote is only visible
// to its author.
func (s *QuoteService) Get(ctx context.Context, id, viewerID string) (*entities.Quote, error) {
	repo, err := s.repo(ctx)
	if err != nil {
		return nil, err
	}
	quote, err := repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !quote.IsPublic && quote.UserID != viewerID {
		return nil, apperrors.Forbidden("Access denied")
	}

	if err := repo.IncrementViews(id); err != nil {
		return nil, err
	}
	quote.Views++
	if viewerID != "" {
		s.recordRead(ctx, viewerID)
	}

	items := []entities.Quote{*quote}
	s.decorate(ctx, items, viewerID)
	return &items[0], nil
}

// Create stores a quote authored by userID and bumps its category counter.
func (s *QuoteService) Create(ctx context.Context, userID string, in QuoteInput) (*entities.Quote, error) {
	if in.Text == nil || in.Author == nil || in.CategoryID == nil {
		return nil, apperrors.Validation("Text, author and category are required")
	}
	fields, err := quoteFields(in)
	if err != nil {
		return nil, err
	}
	category, err := s.activeCategory(ctx, *in.CategoryID)
	if err != nil {
		return nil, err
	}

	quote := &entities.Quote{
		Text:        fields["text"].(string),
		Author:      fields["author"].(string),
		CategoryID:  category.ID,
		UserID:      userID,
		ContentType: entities.QuoteContentText,
		IsPublic:    true,
		Tags:        datatypes.JSON("[]"),
		IsActive:    true,
	}
	if v, ok := fields["media_id"].(string); ok {
		quote.MediaID = v
	}
	if v, ok := fields["content_type"].(entities.QuoteContentType); ok {
		quote.ContentType = v
	}
	if v, ok := fields["is_public"].(bool); ok {
		quote.IsPublic = v
	}
	if v, ok := fields["tags"].(datatypes.JSON); ok {
		quote.Tags = v
	}

	repo, err := s.repo(ctx)
	if err != nil {
		return nil, err
	}
	if err := repo.Create(quote); err != nil {
		return nil, err
	}
	s.adjustCategoryCount(ctx, category.ID, 1)

	summary := category.Summary()
	quote.Category = &summary
	return quote, nil
}

// Update edits a quote. Quotes with an author may only be edited by them.
func (s *QuoteService) Update(ctx context.Context, userID, id string, in QuoteInput) (*entities.Quote, error) {
	fields, err := quoteFields(in)
	if err != nil {
		return nil, err
	}
	repo, err := s.repo(ctx)
	if err != nil {
		return nil, err
	}
	current, err := repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if current.UserID != "" && current.UserID != userID {
		return nil, apperrors.Forbidden("Access denied")
	}

	if in.CategoryID != nil {
		category, err := s.activeCategory(ctx, *in.CategoryID)
		if err != nil {
			return nil, err
		}
		fields["category_id"] = category.ID
	}
	if len(fields) == 0 {
		return current, nil
	}

	updated, err := repo.Update(id, fields)
	if err != nil {
		return nil, err
	}
	if updated.CategoryID != current.CategoryID {
		s.adjustCategoryCount(ctx, current.CategoryID, -1)
		s.adjustCategoryCount(ctx, updated.CategoryID, 1)
	}

	items := []entities.Quote{*updated}
	s.decorate(ctx, items, userID)
	return &items[0], nil
}

// Delete hard-deletes a quote, deactivating its favorites in the same
// transaction.
func (s *QuoteService) Delete(ctx context.Context, userID, id string) error {
	repo, err := s.repo(ctx)
	if err != nil {
		return err
	}
	quote, err := repo.GetByID(id)
	if err != nil {
		return err
	}
	if err := s.favorites.DeleteTarget(ctx, favorites.KindQuote, userID, id); err != nil {
		return err
	}
	s.adjustCategoryCount(ctx, quote.CategoryID, -1)
	return nil
}

func (s *QuoteService) ToggleLike(ctx context.Context, userID, id string) (LikeResult, error) {
	repo, err := s.repo(ctx)
	if err != nil {
		return LikeResult{}, err
	}
	liked, likes, err := repo.ToggleLike(id, userID)
	if err != nil {
		return LikeResult{}, err
	}
	return LikeResult{Liked: liked, Likes: likes}, nil
}

func (s *QuoteService) ToggleFavorite(ctx context.Context, userID, id string) (favorites.Result, error) {
	return s.favorites.Toggle(ctx, favorites.KindQuote, userID, id)
}

func (s *QuoteService) IsFavorite(ctx context.Context, userID, id string) bool {
	return s.favorites.IsFavorite(ctx, favorites.KindQuote, userID, id)
}

// Favorites lists the user's favorited quotes, newest favorite first.
func (s *QuoteService) Favorites(ctx context.Context, userID string) ([]entities.Favorite, error) {
	return s.favorites.List(ctx, favorites.KindQuote, userID, "")
}

func (s *QuoteService) activeCategory(ctx context.Context, id string) (*entities.Category, error) {
	category, err := s.categories.Get(ctx, id)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, apperrors.Validation("Category does not exist or is inactive")
	}
	return category, err
}

// adjustCategoryCount keeps the category counter in step on a best-effort
// basis; the categories database is separate, and reconciliation repairs
// any drift.
func (s *QuoteService) adjustCategoryCount(ctx context.Context, categoryID string, delta int) {
	db, err := s.models.DB(ctx, database.DomainCategories)
	if err == nil {
		repo := categories.NewRepository(db)
		if delta > 0 {
			err = repo.IncrementQuoteCount(categoryID)
		} else {
			err = repo.DecrementQuoteCount(categoryID)
		}
	}
	if err != nil {
		logging.Warn().Err(err).Str("category_id", categoryID).Int("delta", delta).Msg("category quote count not updated")
	}
}

func (s *QuoteService) recordRead(ctx context.Context, userID string) {
	db, err := s.models.DB(ctx, database.DomainAuth)
	if err == nil {
		err = users.NewRepository(db).IncrementQuotesRead(userID)
	}
	if err != nil {
		logging.Debug().Err(err).Str("user_id", userID).Msg("quotes read stat not updated")
	}
}

// decorate attaches category summaries and the viewer's favorite flag.
// Both are cosmetic, so lookup failures leave the fields empty.
func (s *QuoteService) decorate(ctx context.Context, items []entities.Quote, viewerID string) {
	if len(items) == 0 {
		return
	}
	ids := make([]string, 0, len(items))
	for _, q := range items {
		ids = append(ids, q.CategoryID)
	}

	if db, err := s.models.DB(ctx, database.DomainCategories); err == nil {
		if byID, err := categories.NewRepository(db).GetByIDs(ids); err == nil {
			for i := range items {
				if c, ok := byID[items[i].CategoryID]; ok {
					summary := c.Summary()
					items[i].Category = &summary
				}
			}
		}
	}

	if viewerID == "" {
		return
	}
	for i := range items {
		items[i].IsFavorite = s.favorites.IsFavorite(ctx, favorites.KindQuote, viewerID, items[i].ID)
	}
}

func quoteFields(in QuoteInput) (map[string]any, error) {
	fields := make(map[string]any)
	if in.Text != nil {
		text := strings.TrimSpace(*in.Text)
		if text == "" || utf8.RuneCountInString(text) > entities.MaxQuoteTextLength {
			return nil, apperrors.Validation("Text must be 1 to %d characters", entities.MaxQuoteTextLength)
		}
		fields["text"] = text
	}
	if in.Author != nil {
		author := strings.TrimSpace(*in.Author)
		if author == "" || utf8.RuneCountInString(author) > entities.MaxQuoteAuthorLength {
			return nil, apperrors.Validation("Author must be 1 to %d characters", entities.MaxQuoteAuthorLength)
		}
		fields["author"] = author
	}
	if in.MediaID != nil {
		fields["media_id"] = strings.TrimSpace(*in.MediaID)
	}
	if in.ContentType != nil {
		if !in.ContentType.Valid() {
			return nil, apperrors.Validation("Content type must be text, image, video or audio")
		}
		fields["content_type"] = *in.ContentType
	}
	if in.IsPublic != nil {
		fields["is_public"] = *in.IsPublic
	}
	if in.Tags != nil {
		tags := make([]string, 0, len(in.Tags))
		for _, tag := range in.Tags {
			tag = strings.TrimSpace(tag)
			if tag == "" {
				continue
			}
			if utf8.RuneCountInString(tag) > entities.MaxTagLength {
				return nil, apperrors.Validation("Tags must be at most %d characters", entities.MaxTagLength)
			}
			tags = append(tags, tag)
		}
		encoded, err := json.Marshal(tags)
		if err != nil {
			return nil, apperrors.Internal("encode tags", err)
		}
		fields["tags"] = datatypes.JSON(encoded)
	}
	return fields, nil
}
