// Package interfaces documents the core abstractions used throughout the application.
//
// # Interface Categories
//
// ## Data Access Interfaces
//
//   - Resolver: per-domain database handles (internal/database/models.go)
//   - Store: refresh token persistence (internal/tokenstore/tokenstore.go)
//   - Client: uploaded file storage (internal/storage/client.go)
//   - ConnectionStates, ConnectionSupervisor: registry views used by the
//     health endpoint and the reconnect job
//
// ## Service Interfaces
//
//   - AuthService, QuoteService, CategoryService, MediaService,
//     NotificationService, ThemeService: what each HTTP controller needs
//     (internal/http/)
//   - Authenticator: access token verification (internal/auth/middleware.go)
//
// ## Background Interfaces
//
//   - NotificationSender, CounterReconciler, ExpiredTokenPurger: task
//     handlers (internal/tasks/)
//   - NotificationJobs, Enqueuer: scheduler collaborators (internal/scheduler/)
//   - Notifier: notification delivery channel (internal/services/notifications.go)
//
// # Adding a New Database Domain
//
// To add a new data domain (e.g., achievements):
//
//  1. Add the Domain constant to internal/database/database.go and its
//     entities to Schemas
//
//  2. Create sub-package: internal/database/achievements/
//
//     type Repository struct { db *gorm.DB }
//
//     func NewRepository(db *gorm.DB) *Repository
//
//  3. Resolve the handle per request in the service:
//
//     db, err := s.models.DB(ctx, database.DomainAchievements)
//
//  4. Add the DATABASE_ACHIEVEMENTS address to config
//
// # Adding a New Background Task
//
//  1. Define the task in internal/tasks/ with a Config method and a queue
//     built by a constructor that takes the handler's interface
//
//  2. Register the queue in entrypoint.go
//
//  3. Enqueue from the scheduler or a service through Enqueuer
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// See checks.go for the full list.
package interfaces
