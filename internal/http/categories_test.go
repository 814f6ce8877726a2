package http

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/mymotiv/internal/entities"
)

func TestCategoriesController_CRUD(t *testing.T) {
	s := setupServer(t)
	token, _, _ := s.signup(t, "alice")

	w := s.do(t, http.MethodGet, "/api/categories", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", string(decode(t, w).Data))

	w = s.do(t, http.MethodPost, "/api/categories", "", gin.H{"name": "Motivación"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodPost, "/api/categories", token, gin.H{"name": "Motivación"})
	require.Equal(t, http.StatusCreated, w.Code)
	var created entities.Category
	decodeData(t, w, &created)
	assert.Equal(t, "#6366f1", created.Color)

	w = s.do(t, http.MethodPost, "/api/categories", token, gin.H{"name": "Motivación"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, http.MethodPut, "/api/categories/"+created.ID, token, gin.H{"color": "#FF0000"})
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodPut, "/api/categories/"+created.ID, token, gin.H{"color": "red"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/api/categories/"+created.ID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodDelete, "/api/categories/"+created.ID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/api/categories/"+created.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
