// Package database owns the per-domain storage of the service.
//
// # Architecture
//
// Every business domain has its own SQLite database:
//
//	database/
//	├── registry.go       # Connection Registry: one live connection per domain
//	├── models.go         # Model Registry: schema defined once per connection
//	├── database.go       # Domains, schema table, SQLite opener
//	├── users/            # auth domain: users
//	├── categories/       # categories domain
//	├── quotes/           # quotes domain: quotes and likes
//	├── media/            # media domain
//	├── favorites/        # Favorite rows, present in the quotes and media domains
//	├── notifications/    # notification settings and scheduled notifications
//	└── themes/           # theme preferences
//
// # Using Repositories
//
// Request-time code resolves a handle through a Resolver and wraps it in
// the domain repository:
//
//	db, err := models.DB(ctx, database.DomainQuotes)
//	quote, err := quotes.NewRepository(db).GetByID(id)
//
// Eager domains (auth, categories, quotes) are acquired at startup and fail
// fast with apperrors.ErrNotConnected when their connection drops. Lazy
// domains (media, notifications, themes) connect on first use.
package database
