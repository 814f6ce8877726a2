// Package dbtest opens throwaway domain databases for tests.
package dbtest

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mrlokans/mymotiv/internal/database"
)

// Open returns a migrated database for one domain in t.TempDir().
func Open(t *testing.T, domain database.Domain) *gorm.DB {
	t.Helper()
	open := database.SQLiteOpener(5*time.Second, false)
	db, err := open(context.Background(), domain, filepath.Join(t.TempDir(), string(domain)+".db"))
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(database.Schemas[domain]...))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// Models returns a model registry over fresh databases with every domain
// already acquired, the same state the server reaches after startup.
func Models(t *testing.T) (*database.Registry, *database.Models) {
	t.Helper()
	dir := t.TempDir()
	addresses := make(map[database.Domain]string)
	for domain := range database.Schemas {
		addresses[domain] = filepath.Join(dir, "my-motiv-"+string(domain)+".db")
	}

	registry := database.NewRegistry(addresses, database.WithOpener(database.SQLiteOpener(5*time.Second, false)))
	models := database.NewModels(registry, database.EagerDomains...)
	t.Cleanup(func() { registry.Close() })

	for _, domain := range registry.Domains() {
		_, err := models.Get(context.Background(), domain)
		require.NoError(t, err)
	}
	return registry, models
}
