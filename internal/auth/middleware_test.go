package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupRouter(svc *Service) *gin.Engine {
	router := gin.New()
	handler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": UserID(c)})
	}
	router.GET("/private", RequireAuth(svc), handler)
	router.GET("/public", OptionalAuth(svc), handler)
	return router
}

func request(router *gin.Engine, path, header string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	router.ServeHTTP(w, req)
	return w
}

func TestRequireAuth(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, "alice", "alice@example.com", "Secret123")
	require.NoError(t, err)
	session, err := svc.Login(ctx, "alice@example.com", "Secret123")
	require.NoError(t, err)
	router := setupRouter(svc)

	w := request(router, "/private", "Bearer "+session.AccessToken)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), session.User.ID)

	w = request(router, "/private", "bearer "+session.AccessToken)
	assert.Equal(t, http.StatusOK, w.Code)

	for _, header := range []string{"", "Bearer", "Basic abc", "Bearer invalid", "Bearer " + session.RefreshToken} {
		w = request(router, "/private", header)
		assert.Equal(t, http.StatusUnauthorized, w.Code, header)
		assert.Contains(t, w.Body.String(), `"success":false`)
	}
}

func TestOptionalAuth(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, "alice", "alice@example.com", "Secret123")
	require.NoError(t, err)
	session, err := svc.Login(ctx, "alice@example.com", "Secret123")
	require.NoError(t, err)
	router := setupRouter(svc)

	w := request(router, "/public", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":""}`, w.Body.String())

	w = request(router, "/public", "Bearer invalid")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":""}`, w.Body.String())

	w = request(router, "/public", "Bearer "+session.AccessToken)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), session.User.ID)
}
