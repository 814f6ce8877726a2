package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/mymotiv/internal/auth"
	"github.com/mrlokans/mymotiv/internal/database"
	"github.com/mrlokans/mymotiv/internal/logging"
)

// RouterConfig holds every dependency of the router. Nil services leave
// their route group unregistered.
type RouterConfig struct {
	Version       string
	Environment   string
	Authenticator auth.Authenticator
	Auth          AuthService
	LoginLimiter  LoginLimiter
	Quotes        QuoteService
	Categories    CategoryService
	Media         MediaService
	Notifications NotificationService
	Themes        ThemeService
	Connections   ConnectionStates
	Required      []database.Domain
	MaxUploadSize int64
}

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(logging.GinMiddleware())
	router.Use(gin.Recovery())
	router.Use(auth.SecurityHeadersMiddleware())
	router.Use(auth.CORSMiddleware())

	if cfg.MaxUploadSize > 0 {
		router.MaxMultipartMemory = cfg.MaxUploadSize
	}

	requireAuth := auth.RequireAuth(cfg.Authenticator)
	optionalAuth := auth.OptionalAuth(cfg.Authenticator)

	health := NewHealthController(cfg.Connections, cfg.Version, cfg.Required...)
	router.GET("/health", health.Status)
	router.GET("/", func(c *gin.Context) {
		respondOK(c, gin.H{
			"name":        "My Motiv API",
			"version":     cfg.Version,
			"environment": cfg.Environment,
			"endpoints": gin.H{
				"auth":          "/api/auth",
				"quotes":        "/api/quotes",
				"categories":    "/api/categories",
				"media":         "/api/media",
				"notifications": "/api/notifications",
				"themes":        "/api/themes",
				"health":        "/health",
			},
		})
	})

	api := router.Group("/api")

	if cfg.Auth != nil {
		ac := NewAuthController(cfg.Auth, cfg.LoginLimiter)
		group := api.Group("/auth")
		group.POST("/register", ac.Register)
		group.POST("/login", ac.Login)
		group.POST("/refresh", ac.Refresh)
		group.POST("/logout", ac.Logout)
		group.GET("/profile", requireAuth, ac.Profile)
		group.PUT("/profile", requireAuth, ac.UpdateProfile)
		group.PUT("/password", requireAuth, ac.ChangePassword)
	}

	if cfg.Quotes != nil {
		qc := NewQuotesController(cfg.Quotes)
		group := api.Group("/quotes")
		group.GET("", optionalAuth, qc.List)
		group.GET("/random", optionalAuth, qc.Random)
		group.GET("/search", optionalAuth, qc.Search)
		group.GET("/category/:category", optionalAuth, qc.ByCategory)
		group.GET("/:id", optionalAuth, qc.Get)
		group.POST("", requireAuth, qc.Create)
		group.PUT("/:id", requireAuth, qc.Update)
		group.DELETE("/:id", requireAuth, qc.Delete)
		group.POST("/:id/like", requireAuth, qc.ToggleLike)
		group.POST("/:id/favorite", requireAuth, qc.ToggleFavorite)
		group.GET("/:id/favorite/check", requireAuth, qc.CheckFavorite)
	}

	if cfg.Categories != nil {
		cc := NewCategoriesController(cfg.Categories)
		group := api.Group("/categories")
		group.GET("", cc.List)
		group.GET("/:id", cc.Get)
		group.POST("", requireAuth, cc.Create)
		group.PUT("/:id", requireAuth, cc.Update)
		group.DELETE("/:id", requireAuth, cc.Delete)
	}

	if cfg.Media != nil {
		mc := NewMediaController(cfg.Media)
		group := api.Group("/media")
		group.GET("/public", mc.ListPublic)
		group.GET("/popular", mc.ListPopular)
		group.GET("/my/media", requireAuth, mc.ListMine)
		group.GET("/my/favorites", requireAuth, mc.Favorites)
		group.GET("/:id", optionalAuth, mc.Get)
		group.POST("", requireAuth, mc.Register)
		group.POST("/upload", requireAuth, mc.Upload)
		group.DELETE("/:id", requireAuth, mc.Delete)
		group.POST("/:id/favorite", requireAuth, mc.ToggleFavorite)
		group.GET("/:id/favorite/check", requireAuth, mc.CheckFavorite)

		router.GET("/uploads/*key", optionalAuth, mc.Serve)
	}

	if cfg.Notifications != nil {
		nc := NewNotificationsController(cfg.Notifications)
		group := api.Group("/notifications", requireAuth)
		group.GET("/settings", nc.Settings)
		group.PUT("/settings", nc.UpdateSettings)
		group.GET("/scheduled", nc.ListScheduled)
		group.POST("/scheduled", nc.Schedule)
		group.DELETE("/scheduled/:id", nc.Cancel)
	}

	if cfg.Themes != nil {
		tc := NewThemesController(cfg.Themes)
		group := api.Group("/themes", requireAuth)
		group.GET("/preference", tc.Preference)
		group.PUT("/preference", tc.UpdatePreference)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, Envelope{
			Success:   false,
			Error:     "Route not found",
			Timestamp: time.Now().UTC(),
		})
	})

	return router
}
