package http

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/mymotiv/internal/entities"
	"github.com/mrlokans/mymotiv/internal/services"
)

// CategoryService defines the category operations exposed over HTTP.
type CategoryService interface {
	List(ctx context.Context) ([]entities.Category, error)
	Get(ctx context.Context, id string) (*entities.Category, error)
	Create(ctx context.Context, in services.CategoryInput) (*entities.Category, error)
	Update(ctx context.Context, id string, in services.CategoryInput) (*entities.Category, error)
	Delete(ctx context.Context, id string) error
}

type CategoriesController struct {
	service CategoryService
}

func NewCategoriesController(service CategoryService) *CategoriesController {
	return &CategoriesController{service: service}
}

// GET /api/categories
func (cc *CategoriesController) List(c *gin.Context) {
	items, err := cc.service.List(c.Request.Context())
	if err != nil {
		respondError(c, err, "list categories")
		return
	}
	if items == nil {
		items = []entities.Category{}
	}
	respondOK(c, items)
}

// GET /api/categories/:id
func (cc *CategoriesController) Get(c *gin.Context) {
	category, err := cc.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "get category")
		return
	}
	respondOK(c, category)
}

// POST /api/categories
func (cc *CategoriesController) Create(c *gin.Context) {
	var in services.CategoryInput
	if !bindJSON(c, &in) {
		return
	}
	category, err := cc.service.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, err, "create category")
		return
	}
	respondCreated(c, "Category created successfully", category)
}

// PUT /api/categories/:id
func (cc *CategoriesController) Update(c *gin.Context) {
	var in services.CategoryInput
	if !bindJSON(c, &in) {
		return
	}
	category, err := cc.service.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		respondError(c, err, "update category")
		return
	}
	respondMessage(c, "Category updated successfully", category)
}

// Delete hides the category; its quotes keep their reference
// DELETE /api/categories/:id
func (cc *CategoriesController) Delete(c *gin.Context) {
	if err := cc.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err, "delete category")
		return
	}
	respondMessage(c, "Category deleted successfully", nil)
}
