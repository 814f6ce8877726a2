package database

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mrlokans/mymotiv/internal/apperrors"
	"github.com/mrlokans/mymotiv/internal/entities"
)

func newTestModels(t *testing.T, opens *atomic.Int32, defines *atomic.Int32) (*Registry, *Models) {
	t.Helper()
	r := newTestRegistry(t, opens)
	m := NewModels(r, EagerDomains...)
	define := m.define
	m.define = func(db *gorm.DB, models ...any) error {
		defines.Add(1)
		return define(db, models...)
	}
	return r, m
}

func TestModels_DefinesSchemaOnce(t *testing.T) {
	var opens, defines atomic.Int32
	_, m := newTestModels(t, &opens, &defines)

	var wg sync.WaitGroup
	for i := 0; i < 12; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.Get(context.Background(), DomainMedia)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), defines.Load())
	assert.Equal(t, int32(1), opens.Load())

	h, err := m.Get(context.Background(), DomainMedia)
	require.NoError(t, err)
	assert.True(t, h.DB.Migrator().HasTable(&entities.Media{}))
	assert.True(t, h.DB.Migrator().HasTable(&entities.Favorite{}))
	assert.True(t, h.DB.Migrator().HasIndex(&entities.Favorite{}, "idx_favorites_active_pair"))
}

func TestModels_RebuiltOnlyAfterReconnect(t *testing.T) {
	var opens, defines atomic.Int32
	r, m := newTestModels(t, &opens, &defines)
	ctx := context.Background()

	first, err := m.Get(ctx, DomainThemes)
	require.NoError(t, err)
	again, err := m.Get(ctx, DomainThemes)
	require.NoError(t, err)
	assert.Same(t, first, again)

	r.Disconnect(DomainThemes)

	rebuilt, err := m.Get(ctx, DomainThemes)
	require.NoError(t, err)
	assert.NotSame(t, first, rebuilt)
	assert.Greater(t, rebuilt.Generation, first.Generation)
	assert.Equal(t, int32(2), defines.Load())
}

func TestModels_EagerDomainFailsFast(t *testing.T) {
	var opens, defines atomic.Int32
	_, m := newTestModels(t, &opens, &defines)

	_, err := m.DB(context.Background(), DomainQuotes)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotConnected))
	assert.Equal(t, int32(0), opens.Load())
}

func TestModels_EagerDomainServedAfterAcquire(t *testing.T) {
	var opens, defines atomic.Int32
	r, m := newTestModels(t, &opens, &defines)
	ctx := context.Background()

	_, err := r.Acquire(ctx, DomainQuotes)
	require.NoError(t, err)

	db, err := m.DB(ctx, DomainQuotes)
	require.NoError(t, err)
	assert.True(t, db.Migrator().HasTable(&entities.Quote{}))
	assert.Equal(t, int32(1), opens.Load())
}

func TestModels_LazyDomainConnectsOnDemand(t *testing.T) {
	var opens, defines atomic.Int32
	r, m := newTestModels(t, &opens, &defines)

	db, err := m.DB(context.Background(), DomainNotifications)
	require.NoError(t, err)
	assert.NotNil(t, db)
	assert.Equal(t, StateReady, r.State(DomainNotifications))
}

func TestFavoriteActivePairIsUnique(t *testing.T) {
	var opens, defines atomic.Int32
	_, m := newTestModels(t, &opens, &defines)

	db, err := m.DB(context.Background(), DomainMedia)
	require.NoError(t, err)

	active := entities.Favorite{UserID: "u1", TargetID: "m1", ContentType: entities.ContentTypeImage, IsActive: true}
	require.NoError(t, db.Create(&active).Error)

	duplicate := entities.Favorite{UserID: "u1", TargetID: "m1", ContentType: entities.ContentTypeImage, IsActive: true}
	err = db.Create(&duplicate).Error
	assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey))

	require.NoError(t, db.Model(&active).Update("is_active", false).Error)

	inactive := entities.Favorite{UserID: "u1", TargetID: "m1", ContentType: entities.ContentTypeImage, IsActive: true}
	assert.NoError(t, db.Create(&inactive).Error)
}
