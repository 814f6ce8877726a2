package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/mrlokans/mymotiv/internal/apperrors"
	"github.com/mrlokans/mymotiv/internal/database"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{apperrors.NotFound("Quote"), http.StatusNotFound},
		{apperrors.Conflict("Email already registered"), http.StatusConflict},
		{apperrors.ErrInvalidCredentials, http.StatusUnauthorized},
		{apperrors.ErrInvalidToken, http.StatusUnauthorized},
		{apperrors.ErrUnauthorized, http.StatusUnauthorized},
		{apperrors.Forbidden("Access denied"), http.StatusForbidden},
		{apperrors.Validation("Text is required"), http.StatusBadRequest},
		{apperrors.New(apperrors.ErrNotConnected, "quotes database is not connected"), http.StatusServiceUnavailable},
		{apperrors.Internal("query", errors.New("disk I/O error")), http.StatusInternalServerError},
		{errors.New("unexpected"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}

func TestRespondError_HidesInternalDetail(t *testing.T) {
	router := gin.New()
	router.GET("/", func(c *gin.Context) {
		respondError(c, apperrors.Internal("query quotes", errors.New("disk I/O error")), "test")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	env := decode(t, w)
	assert.False(t, env.Success)
	assert.Equal(t, "Internal server error", env.Error)
	assert.NotContains(t, w.Body.String(), "disk")
}

func TestParsePage(t *testing.T) {
	tests := []struct {
		query string
		ok    bool
		want  database.Page
	}{
		{"", true, database.Page{Number: 1, Size: database.DefaultPageSize}},
		{"?page=3&limit=5", true, database.Page{Number: 3, Size: 5}},
		{"?limit=100", true, database.Page{Number: 1, Size: 100}},
		{"?page=0", false, database.Page{}},
		{"?page=abc", false, database.Page{}},
		{"?limit=101", false, database.Page{}},
		{"?limit=0", false, database.Page{}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			var got database.Page
			var ok bool
			router := gin.New()
			router.GET("/", func(c *gin.Context) {
				got, ok = parsePage(c)
			})

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/"+tt.query, nil))

			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			} else {
				assert.Equal(t, http.StatusBadRequest, w.Code)
			}
		})
	}
}
