package entrypoint

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/mrlokans/mymotiv/internal/auth"
	"github.com/mrlokans/mymotiv/internal/config"
	"github.com/mrlokans/mymotiv/internal/database"
	"github.com/mrlokans/mymotiv/internal/favorites"
	http_controllers "github.com/mrlokans/mymotiv/internal/http"
	"github.com/mrlokans/mymotiv/internal/logging"
	"github.com/mrlokans/mymotiv/internal/scheduler"
	"github.com/mrlokans/mymotiv/internal/seed"
	"github.com/mrlokans/mymotiv/internal/services"
	"github.com/mrlokans/mymotiv/internal/storage"
	"github.com/mrlokans/mymotiv/internal/tasks"
	"github.com/mrlokans/mymotiv/internal/tokenstore"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// App holds the wired application. Build it with NewApp and release it with
// Close.
type App struct {
	Config   *config.Config
	Registry *database.Registry
	Models   *database.Models

	Auth          *auth.Service
	Limiter       *auth.RateLimiter
	Categories    *services.CategoryService
	Quotes        *services.QuoteService
	Media         *services.MediaService
	Notifications *services.NotificationService
	Themes        *services.ThemeService
	Maintenance   *services.Maintenance

	redis *redis.Client
	store tokenstore.Store
}

// NewApp opens the eager domain databases and builds every service. Lazy
// domains connect on first use.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	registry := database.NewRegistry(
		database.Addresses(cfg.Databases),
		database.WithOpener(database.SQLiteOpener(cfg.Databases.BusyTimeout, cfg.Databases.LogQueries)),
	)
	models := database.NewModels(registry, database.EagerDomains...)
	app := &App{Config: cfg, Registry: registry, Models: models}

	for _, domain := range database.EagerDomains {
		if _, err := models.Get(ctx, domain); err != nil {
			app.Close()
			return nil, fmt.Errorf("connect %s database: %w", domain, err)
		}
		logging.Info().Str("domain", string(domain)).Msg("database ready")
	}

	switch cfg.Auth.TokenStore {
	case config.TokenStoreRedis:
		client, err := tokenstore.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			app.Close()
			return nil, err
		}
		app.redis = client
		app.store = tokenstore.NewRedisStore(client)
		logging.Info().Str("addr", cfg.Redis.Addr).Msg("refresh tokens stored in redis")
	case config.TokenStoreDatabase, "":
		app.store = tokenstore.NewDatabaseStore(models)
	default:
		app.Close()
		return nil, fmt.Errorf("unknown token store %q", cfg.Auth.TokenStore)
	}

	blobs, err := storage.New(ctx, cfg.Media)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("initialize media storage: %w", err)
	}

	engine := favorites.NewEngine(models)
	app.Auth = auth.NewService(models, app.store, cfg.Auth)
	app.Limiter = auth.NewRateLimiter(auth.RateLimitConfigFrom(cfg.Auth))
	app.Categories = services.NewCategoryService(models)
	app.Quotes = services.NewQuoteService(models, engine)
	app.Media = services.NewMediaService(models, engine, blobs, cfg.Media.MaxUploadSize)
	app.Notifications = services.NewNotificationService(models, services.LogNotifier{}, app.Quotes)
	app.Themes = services.NewThemeService(models)
	app.Maintenance = services.NewMaintenance(models, engine)
	return app, nil
}

// Router builds the HTTP handler over the app's services.
func (a *App) Router(version string) *gin.Engine {
	return http_controllers.NewRouter(http_controllers.RouterConfig{
		Version:       version,
		Environment:   a.Config.Global.Environment,
		Authenticator: a.Auth,
		Auth:          a.Auth,
		LoginLimiter:  a.Limiter,
		Quotes:        a.Quotes,
		Categories:    a.Categories,
		Media:         a.Media,
		Notifications: a.Notifications,
		Themes:        a.Themes,
		Connections:   a.Registry,
		Required:      database.EagerDomains,
		MaxUploadSize: a.Config.Media.MaxUploadSize,
	})
}

// Close releases connections. It is safe to call on a partially built app.
func (a *App) Close() {
	if a.Limiter != nil {
		a.Limiter.Stop()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			logging.Error().Err(err).Msg("error closing redis client")
		}
	}
	if err := a.Registry.Close(); err != nil {
		logging.Error().Err(err).Msg("error closing databases")
	}
}

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logging.Info().Str("addr", srv.Addr).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("listen")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logging.Info().Dur("timeout", timeout).Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop accepting requests before background work is torn down
	if err := srv.Shutdown(ctx); err != nil {
		logging.Error().Err(err).Msg("server shutdown")
	}

	if onShutdown != nil {
		onShutdown(ctx)
	}

	logging.Info().Msg("server exiting")
}

func Run(cfg *config.Config, version string) {
	logging.Configure(cfg.Logging.Level, cfg.Logging.Format)
	logging.Info().Str("version", version).Str("environment", cfg.Global.Environment).Msg("starting My Motiv")

	if !cfg.Global.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
		if cfg.Auth.JWTSecret == config.DefaultJWTSecret {
			logging.Warn().Msg("JWT_SECRET is the built-in development secret; set it before exposing this server")
		}
	}

	app, err := NewApp(context.Background(), cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to initialize application")
	}
	defer app.Close()

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Tasks)
		if err != nil {
			logging.Fatal().Err(err).Msg("failed to initialize task queue")
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				logging.Error().Err(err).Msg("error closing task client")
			}
		}()

		taskClient.Register(
			tasks.NewSendNotificationQueue(app.Notifications),
			tasks.NewReconcileCountersQueue(app.Maintenance),
			tasks.NewPurgeRefreshTokensQueue(app.store),
		)

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)
	}

	deps := scheduler.Dependencies{
		Notifications: app.Notifications,
		Reconciler:    app.Maintenance,
		Tokens:        app.store,
		Connections:   app.Registry,
		Supervised:    database.EagerDomains,
	}
	if taskClient != nil {
		deps.Queue = taskClient
	}
	sched := scheduler.New(cfg.Notifications, deps)
	schedCtx, schedCancel := context.WithCancel(context.Background())
	defer schedCancel()
	if err := sched.Start(schedCtx); err != nil {
		logging.Fatal().Err(err).Msg("failed to start scheduler")
	}

	onShutdown := func(ctx context.Context) {
		sched.Stop()
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(app.Router(version), cfg, onShutdown)
}

// Seed loads the default categories, quotes and administrator account.
func Seed(ctx context.Context, cfg *config.Config) (seed.Report, error) {
	app, err := NewApp(ctx, cfg)
	if err != nil {
		return seed.Report{}, err
	}
	defer app.Close()

	return seed.New(app.Models, app.Categories, app.Quotes, app.Auth, cfg.Seed).Run(ctx)
}

// Reconcile recomputes denormalized counters. With the task queue enabled
// the work is queued for the server's workers and the returned report is
// empty; otherwise it runs here.
func Reconcile(ctx context.Context, cfg *config.Config) (services.ReconcileReport, error) {
	if cfg.Tasks.Enabled {
		client, err := tasks.NewClient(cfg.Tasks)
		if err != nil {
			return services.ReconcileReport{}, err
		}
		defer client.Close()
		// Saving requires the queue to be registered. No workers run here.
		client.Register(tasks.NewReconcileCountersQueue(nil))

		ids, err := client.Enqueue(ctx, tasks.ReconcileCountersTask{Reason: "manual"})
		if err != nil {
			return services.ReconcileReport{}, fmt.Errorf("queue reconciliation: %w", err)
		}
		logging.Info().Strs("task_ids", ids).Msg("reconciliation queued")
		return services.ReconcileReport{}, nil
	}

	app, err := NewApp(ctx, cfg)
	if err != nil {
		return services.ReconcileReport{}, err
	}
	defer app.Close()

	return app.Maintenance.Reconcile(ctx)
}
