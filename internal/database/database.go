package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mrlokans/mymotiv/internal/config"
	"github.com/mrlokans/mymotiv/internal/entities"
	"github.com/mrlokans/mymotiv/internal/logging"
)

// Domain names one bounded business area with its own database.
type Domain string

const (
	DomainAuth          Domain = "auth"
	DomainQuotes        Domain = "quotes"
	DomainCategories    Domain = "categories"
	DomainMedia         Domain = "media"
	DomainNotifications Domain = "notifications"
	DomainThemes        Domain = "themes"
)

// EagerDomains are acquired at startup; failing to connect any of them is fatal.
var EagerDomains = []Domain{DomainAuth, DomainCategories, DomainQuotes}

// LazyDomains are acquired on the first request that needs them.
var LazyDomains = []Domain{DomainMedia, DomainNotifications, DomainThemes}

// Schemas lists the entities defined in each domain database. Favorite is
// defined next to every favoritable target so toggles stay in one database.
var Schemas = map[Domain][]any{
	DomainAuth:          {&entities.User{}, &entities.RefreshToken{}},
	DomainCategories:    {&entities.Category{}},
	DomainQuotes:        {&entities.Quote{}, &entities.QuoteLike{}, &entities.Favorite{}},
	DomainMedia:         {&entities.Media{}, &entities.Favorite{}},
	DomainNotifications: {&entities.NotificationSetting{}, &entities.ScheduledNotification{}},
	DomainThemes:        {&entities.UserThemePreference{}},
}

// Addresses maps every domain to its configured SQLite path.
func Addresses(cfg config.Databases) map[Domain]string {
	return map[Domain]string{
		DomainAuth:          cfg.AuthPath,
		DomainQuotes:        cfg.QuotesPath,
		DomainCategories:    cfg.CategoriesPath,
		DomainMedia:         cfg.MediaPath,
		DomainNotifications: cfg.NotifyPath,
		DomainThemes:        cfg.ThemesPath,
	}
}

// Opener opens a gorm handle for one domain.
type Opener func(ctx context.Context, domain Domain, address string) (*gorm.DB, error)

// SQLiteOpener opens domain databases as WAL-mode SQLite files. Write
// transactions start with BEGIN IMMEDIATE so concurrent writers queue on the
// busy timeout instead of failing on lock upgrade.
func SQLiteOpener(busyTimeout time.Duration, logQueries bool) Opener {
	if busyTimeout <= 0 {
		busyTimeout = 5 * time.Second
	}
	return func(ctx context.Context, domain Domain, address string) (*gorm.DB, error) {
		if dir := filepath.Dir(address); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create database directory: %w", err)
			}
		}

		dsn := fmt.Sprintf("%s?_journal=WAL&_busy_timeout=%d&_txlock=immediate",
			address, busyTimeout.Milliseconds())

		db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
			Logger:         logging.GormLogger(string(domain), logQueries),
			TranslateError: true,
			NowFunc: func() time.Time {
				return time.Now().UTC()
			},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to %s database: %w", domain, err)
		}

		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("failed to ping %s database: %w", domain, err)
		}
		return db, nil
	}
}
