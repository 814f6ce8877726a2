package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/mymotiv/internal/auth"
	"github.com/mrlokans/mymotiv/internal/config"
	"github.com/mrlokans/mymotiv/internal/database"
	"github.com/mrlokans/mymotiv/internal/database/dbtest"
	"github.com/mrlokans/mymotiv/internal/favorites"
	"github.com/mrlokans/mymotiv/internal/services"
	"github.com/mrlokans/mymotiv/internal/storage"
	"github.com/mrlokans/mymotiv/internal/tokenstore"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	router     *gin.Engine
	registry   *database.Registry
	models     *database.Models
	categories *services.CategoryService
	limiter    *auth.RateLimiter
}

// envelope mirrors Envelope with the payload left raw.
type envelope struct {
	Success    bool            `json:"success"`
	Data       json.RawMessage `json:"data"`
	Message    string          `json:"message"`
	Error      string          `json:"error"`
	Pagination *Pagination     `json:"pagination"`
}

func setupServer(t *testing.T) *testServer {
	t.Helper()
	registry, models := dbtest.Models(t)

	authCfg := config.Auth{
		JWTSecret:          "test-secret",
		AccessTokenExpiry:  time.Hour,
		RefreshTokenExpiry: 24 * time.Hour,
		BcryptCost:         4,
		MaxLoginAttempts:   3,
		RateLimitWindow:    15 * time.Minute,
		LockoutDuration:    30 * time.Minute,
	}
	authService := auth.NewService(models, tokenstore.NewDatabaseStore(models), authCfg)
	limiter := auth.NewRateLimiter(auth.RateLimitConfigFrom(authCfg))
	t.Cleanup(limiter.Stop)

	blobs, err := storage.NewLocalClient(t.TempDir(), "/uploads")
	require.NoError(t, err)

	engine := favorites.NewEngine(models)
	categories := services.NewCategoryService(models)
	quotes := services.NewQuoteService(models, engine)

	router := NewRouter(RouterConfig{
		Version:       "test",
		Environment:   "test",
		Authenticator: authService,
		Auth:          authService,
		LoginLimiter:  limiter,
		Quotes:        quotes,
		Categories:    categories,
		Media:         services.NewMediaService(models, engine, blobs, 1<<20),
		Notifications: services.NewNotificationService(models, services.LogNotifier{}, quotes),
		Themes:        services.NewThemeService(models),
		Connections:   registry,
		Required:      database.EagerDomains,
	})

	return &testServer{
		router:     router,
		registry:   registry,
		models:     models,
		categories: categories,
		limiter:    limiter,
	}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// signup registers a user and returns its access token, refresh token and id.
func (s *testServer) signup(t *testing.T, username string) (string, string, string) {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": username,
		"email":    username + "@example.com",
		"password": "Secret123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var session struct {
		Token        string `json:"token"`
		RefreshToken string `json:"refreshToken"`
		User         struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	decodeData(t, w, &session)
	return session.Token, session.RefreshToken, session.User.ID
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, dst any) envelope {
	t.Helper()
	env := decode(t, w)
	require.NoError(t, json.Unmarshal(env.Data, dst), string(env.Data))
	return env
}

func ptr[T any](v T) *T {
	return &v
}
