package http

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/mymotiv/internal/entities"
	"github.com/mrlokans/mymotiv/internal/services"
)

func (s *testServer) category(t *testing.T, name string) *entities.Category {
	t.Helper()
	c, err := s.categories.Create(context.Background(), services.CategoryInput{Name: ptr(name)})
	require.NoError(t, err)
	return c
}

func (s *testServer) createQuote(t *testing.T, token, categoryID, text string, public bool) entities.Quote {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/quotes", token, gin.H{
		"text":       text,
		"author":     "Anónimo",
		"categoryId": categoryID,
		"isPublic":   public,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var q entities.Quote
	decodeData(t, w, &q)
	return q
}

func TestQuotesController_CreateRequiresAuth(t *testing.T) {
	s := setupServer(t)
	category := s.category(t, "Motivación")

	w := s.do(t, http.MethodPost, "/api/quotes", "", gin.H{
		"text":       "Sigue adelante",
		"author":     "Anónimo",
		"categoryId": category.ID,
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestQuotesController_ListAndPaginate(t *testing.T) {
	s := setupServer(t)
	token, _, _ := s.signup(t, "alice")
	category := s.category(t, "Motivación")
	other := s.category(t, "Éxito")

	for _, text := range []string{"uno", "dos", "tres"} {
		s.createQuote(t, token, category.ID, text, true)
	}
	s.createQuote(t, token, other.ID, "cuatro", true)
	s.createQuote(t, token, category.ID, "privada", false)

	w := s.do(t, http.MethodGet, "/api/quotes?limit=2", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var items []entities.Quote
	env := decodeData(t, w, &items)
	assert.Len(t, items, 2)
	require.NotNil(t, env.Pagination)
	assert.Equal(t, int64(4), env.Pagination.Total)
	assert.Equal(t, 2, env.Pagination.Pages)

	w = s.do(t, http.MethodGet, "/api/quotes?category="+category.ID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeData(t, w, &items)
	assert.Len(t, items, 3)

	w = s.do(t, http.MethodGet, "/api/quotes/category/"+other.ID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeData(t, w, &items)
	require.Len(t, items, 1)
	assert.Equal(t, "cuatro", items[0].Text)

	w = s.do(t, http.MethodGet, "/api/quotes/category/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodGet, "/api/quotes?limit=500", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestQuotesController_SearchAndRandom(t *testing.T) {
	s := setupServer(t)
	token, _, _ := s.signup(t, "alice")
	category := s.category(t, "Motivación")
	s.createQuote(t, token, category.ID, "El éxito es constancia", true)

	w := s.do(t, http.MethodGet, "/api/quotes/search?q=CONSTANCIA", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var items []entities.Quote
	decodeData(t, w, &items)
	assert.Len(t, items, 1)

	w = s.do(t, http.MethodGet, "/api/quotes/search", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/api/quotes/random", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var q entities.Quote
	decodeData(t, w, &q)
	assert.Equal(t, "El éxito es constancia", q.Text)
}

func TestQuotesController_RandomWithoutQuotes(t *testing.T) {
	s := setupServer(t)

	w := s.do(t, http.MethodGet, "/api/quotes/random", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestQuotesController_GetCountsViews(t *testing.T) {
	s := setupServer(t)
	token, _, _ := s.signup(t, "alice")
	category := s.category(t, "Motivación")
	created := s.createQuote(t, token, category.ID, "Una vez más", true)

	var q entities.Quote
	for i := 0; i < 2; i++ {
		w := s.do(t, http.MethodGet, "/api/quotes/"+created.ID, "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		decodeData(t, w, &q)
	}
	assert.Equal(t, int64(2), q.Views)

	w := s.do(t, http.MethodGet, "/api/quotes/does-not-exist", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestQuotesController_UpdateAndDeleteAreOwnerOnly(t *testing.T) {
	s := setupServer(t)
	owner, _, _ := s.signup(t, "alice")
	stranger, _, _ := s.signup(t, "mallory")
	category := s.category(t, "Motivación")
	q := s.createQuote(t, owner, category.ID, "Original", true)

	w := s.do(t, http.MethodPut, "/api/quotes/"+q.ID, stranger, gin.H{"text": "Hijacked"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodPut, "/api/quotes/"+q.ID, owner, gin.H{"text": "Edited"})
	require.Equal(t, http.StatusOK, w.Code)
	var updated entities.Quote
	decodeData(t, w, &updated)
	assert.Equal(t, "Edited", updated.Text)

	w = s.do(t, http.MethodDelete, "/api/quotes/"+q.ID, stranger, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodDelete, "/api/quotes/"+q.ID, owner, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/api/quotes/"+q.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestQuotesController_FavoriteToggle(t *testing.T) {
	s := setupServer(t)
	token, _, _ := s.signup(t, "alice")
	category := s.category(t, "Motivación")
	q := s.createQuote(t, token, category.ID, "Favorita", true)

	var result struct {
		Favorited      bool  `json:"favorited"`
		FavoritesCount int64 `json:"favoritesCount"`
	}
	w := s.do(t, http.MethodPost, "/api/quotes/"+q.ID+"/favorite", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeData(t, w, &result)
	assert.True(t, result.Favorited)
	assert.Equal(t, int64(1), result.FavoritesCount)

	var check struct {
		IsFavorite bool `json:"isFavorite"`
	}
	w = s.do(t, http.MethodGet, "/api/quotes/"+q.ID+"/favorite/check", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeData(t, w, &check)
	assert.True(t, check.IsFavorite)

	w = s.do(t, http.MethodPost, "/api/quotes/"+q.ID+"/favorite", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeData(t, w, &result)
	assert.False(t, result.Favorited)
	assert.Equal(t, int64(0), result.FavoritesCount)
}

func TestQuotesController_LikeToggle(t *testing.T) {
	s := setupServer(t)
	token, _, _ := s.signup(t, "alice")
	category := s.category(t, "Motivación")
	q := s.createQuote(t, token, category.ID, "Me gusta", true)

	var result struct {
		Liked bool  `json:"liked"`
		Likes int64 `json:"likes"`
	}
	w := s.do(t, http.MethodPost, "/api/quotes/"+q.ID+"/like", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	env := decodeData(t, w, &result)
	assert.True(t, result.Liked)
	assert.Equal(t, int64(1), result.Likes)
	assert.Equal(t, "Quote liked", env.Message)

	w = s.do(t, http.MethodPost, "/api/quotes/"+q.ID+"/like", token, nil)
	decodeData(t, w, &result)
	assert.False(t, result.Liked)
	assert.Equal(t, int64(0), result.Likes)
}
