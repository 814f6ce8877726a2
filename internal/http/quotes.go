package http

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/mymotiv/internal/auth"
	"github.com/mrlokans/mymotiv/internal/database"
	"github.com/mrlokans/mymotiv/internal/entities"
	"github.com/mrlokans/mymotiv/internal/favorites"
	"github.com/mrlokans/mymotiv/internal/services"
)

// QuoteService defines the quote operations exposed over HTTP.
type QuoteService interface {
	List(ctx context.Context, categoryRef string, page database.Page, viewerID string) (database.Paginated[entities.Quote], error)
	ByCategory(ctx context.Context, categoryRef string, page database.Page, viewerID string) (database.Paginated[entities.Quote], error)
	Search(ctx context.Context, term string, page database.Page, viewerID string) (database.Paginated[entities.Quote], error)
	Random(ctx context.Context, categoryRef string, viewerID string) (*entities.Quote, error)
	Get(ctx context.Context, id, viewerID string) (*entities.Quote, error)
	Create(ctx context.Context, userID string, in services.QuoteInput) (*entities.Quote, error)
	Update(ctx context.Context, userID, id string, in services.QuoteInput) (*entities.Quote, error)
	Delete(ctx context.Context, userID, id string) error
	ToggleLike(ctx context.Context, userID, id string) (services.LikeResult, error)
	ToggleFavorite(ctx context.Context, userID, id string) (favorites.Result, error)
	IsFavorite(ctx context.Context, userID, id string) bool
}

type QuotesController struct {
	service QuoteService
}

func NewQuotesController(service QuoteService) *QuotesController {
	return &QuotesController{service: service}
}

// List returns public quotes, optionally filtered by category
// GET /api/quotes
func (qc *QuotesController) List(c *gin.Context) {
	page, ok := parsePage(c)
	if !ok {
		return
	}
	result, err := qc.service.List(c.Request.Context(), c.Query("category"), page, auth.UserID(c))
	if err != nil {
		respondError(c, err, "list quotes")
		return
	}
	respondPage(c, result)
}

// GET /api/quotes/random
func (qc *QuotesController) Random(c *gin.Context) {
	quote, err := qc.service.Random(c.Request.Context(), c.Query("category"), auth.UserID(c))
	if err != nil {
		respondError(c, err, "random quote")
		return
	}
	respondOK(c, quote)
}

// Search matches the term against text and author
// GET /api/quotes/search?q=
func (qc *QuotesController) Search(c *gin.Context) {
	page, ok := parsePage(c)
	if !ok {
		return
	}
	result, err := qc.service.Search(c.Request.Context(), c.Query("q"), page, auth.UserID(c))
	if err != nil {
		respondError(c, err, "search quotes")
		return
	}
	respondPage(c, result)
}

// GET /api/quotes/category/:category
func (qc *QuotesController) ByCategory(c *gin.Context) {
	page, ok := parsePage(c)
	if !ok {
		return
	}
	result, err := qc.service.ByCategory(c.Request.Context(), c.Param("category"), page, auth.UserID(c))
	if err != nil {
		respondError(c, err, "quotes by category")
		return
	}
	respondPage(c, result)
}

// Get returns one quote and counts the view
// GET /api/quotes/:id
func (qc *QuotesController) Get(c *gin.Context) {
	quote, err := qc.service.Get(c.Request.Context(), c.Param("id"), auth.UserID(c))
	if err != nil {
		respondError(c, err, "get quote")
		return
	}
	respondOK(c, quote)
}

// POST /api/quotes
func (qc *QuotesController) Create(c *gin.Context) {
	var in services.QuoteInput
	if !bindJSON(c, &in) {
		return
	}
	quote, err := qc.service.Create(c.Request.Context(), auth.UserID(c), in)
	if err != nil {
		respondError(c, err, "create quote")
		return
	}
	respondCreated(c, "Quote created successfully", quote)
}

// PUT /api/quotes/:id
func (qc *QuotesController) Update(c *gin.Context) {
	var in services.QuoteInput
	if !bindJSON(c, &in) {
		return
	}
	quote, err := qc.service.Update(c.Request.Context(), auth.UserID(c), c.Param("id"), in)
	if err != nil {
		respondError(c, err, "update quote")
		return
	}
	respondMessage(c, "Quote updated successfully", quote)
}

// DELETE /api/quotes/:id
func (qc *QuotesController) Delete(c *gin.Context) {
	if err := qc.service.Delete(c.Request.Context(), auth.UserID(c), c.Param("id")); err != nil {
		respondError(c, err, "delete quote")
		return
	}
	respondMessage(c, "Quote deleted successfully", nil)
}

// POST /api/quotes/:id/like
func (qc *QuotesController) ToggleLike(c *gin.Context) {
	result, err := qc.service.ToggleLike(c.Request.Context(), auth.UserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err, "toggle like")
		return
	}
	message := "Quote unliked"
	if result.Liked {
		message = "Quote liked"
	}
	respondMessage(c, message, result)
}

// POST /api/quotes/:id/favorite
func (qc *QuotesController) ToggleFavorite(c *gin.Context) {
	result, err := qc.service.ToggleFavorite(c.Request.Context(), auth.UserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err, "toggle quote favorite")
		return
	}
	respondMessage(c, favoriteMessage(result), result)
}

// GET /api/quotes/:id/favorite/check
func (qc *QuotesController) CheckFavorite(c *gin.Context) {
	favorited := qc.service.IsFavorite(c.Request.Context(), auth.UserID(c), c.Param("id"))
	respondOK(c, gin.H{"isFavorite": favorited})
}

func favoriteMessage(r favorites.Result) string {
	if r.Favorited {
		return "Added to favorites"
	}
	return "Removed from favorites"
}
