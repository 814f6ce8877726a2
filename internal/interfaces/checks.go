package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.

import (
	"github.com/mrlokans/mymotiv/internal/auth"
	"github.com/mrlokans/mymotiv/internal/database"
	"github.com/mrlokans/mymotiv/internal/http"
	"github.com/mrlokans/mymotiv/internal/scheduler"
	"github.com/mrlokans/mymotiv/internal/seed"
	"github.com/mrlokans/mymotiv/internal/services"
	"github.com/mrlokans/mymotiv/internal/storage"
	"github.com/mrlokans/mymotiv/internal/tasks"
	"github.com/mrlokans/mymotiv/internal/tokenstore"
)

// =============================================================================
// Data Access Layer
// =============================================================================

var _ database.Resolver = (*database.Models)(nil)

var _ http.ConnectionStates = (*database.Registry)(nil)
var _ scheduler.ConnectionSupervisor = (*database.Registry)(nil)

// Refresh token stores
var _ tokenstore.Store = (*tokenstore.DatabaseStore)(nil)
var _ tokenstore.Store = (*tokenstore.RedisStore)(nil)
var _ tasks.ExpiredTokenPurger = (tokenstore.Store)(nil)

// Blob storage
var _ storage.Client = (*storage.LocalClient)(nil)
var _ storage.Client = (*storage.S3Client)(nil)

// =============================================================================
// HTTP Surface
// =============================================================================

var _ auth.Authenticator = (*auth.Service)(nil)
var _ http.AuthService = (*auth.Service)(nil)
var _ http.LoginLimiter = (*auth.RateLimiter)(nil)
var _ seed.Registrar = (*auth.Service)(nil)

var _ http.QuoteService = (*services.QuoteService)(nil)
var _ http.CategoryService = (*services.CategoryService)(nil)
var _ http.MediaService = (*services.MediaService)(nil)
var _ http.NotificationService = (*services.NotificationService)(nil)
var _ http.ThemeService = (*services.ThemeService)(nil)

// =============================================================================
// Background Work
// =============================================================================

var _ services.Notifier = services.LogNotifier{}
var _ services.QuotePicker = (*services.QuoteService)(nil)

var _ tasks.NotificationSender = (*services.NotificationService)(nil)
var _ tasks.CounterReconciler = (*services.Maintenance)(nil)
var _ scheduler.NotificationJobs = (*services.NotificationService)(nil)
var _ scheduler.Enqueuer = (*tasks.Client)(nil)
