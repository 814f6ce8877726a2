package tokenstore

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/mymotiv/internal/database"
	"github.com/mrlokans/mymotiv/internal/entities"
)

// DatabaseStore keeps refresh tokens in the auth domain database.
type DatabaseStore struct {
	models database.Resolver
}

func NewDatabaseStore(models database.Resolver) *DatabaseStore {
	return &DatabaseStore{models: models}
}

func (s *DatabaseStore) db(ctx context.Context) (*gorm.DB, error) {
	return s.models.DB(ctx, database.DomainAuth)
}

func (s *DatabaseStore) Save(ctx context.Context, token, userID string, expiresAt time.Time) error {
	db, err := s.db(ctx)
	if err != nil {
		return err
	}
	row := &entities.RefreshToken{
		TokenHash: Hash(token),
		UserID:    userID,
		ExpiresAt: expiresAt.UTC(),
	}
	err = db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "token_hash"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_id", "expires_at"}),
	}).Create(row).Error
	return database.Translate(err, "Refresh token")
}

func (s *DatabaseStore) Exists(ctx context.Context, token string) (bool, error) {
	db, err := s.db(ctx)
	if err != nil {
		return false, err
	}
	var count int64
	err = db.Model(&entities.RefreshToken{}).
		Where("token_hash = ? AND expires_at > ?", Hash(token), time.Now().UTC()).
		Count(&count).Error
	return count > 0, database.Translate(err, "Refresh token")
}

func (s *DatabaseStore) Delete(ctx context.Context, token string) error {
	db, err := s.db(ctx)
	if err != nil {
		return err
	}
	err = db.Where("token_hash = ?", Hash(token)).Delete(&entities.RefreshToken{}).Error
	return database.Translate(err, "Refresh token")
}

func (s *DatabaseStore) DeleteUser(ctx context.Context, userID string) error {
	db, err := s.db(ctx)
	if err != nil {
		return err
	}
	err = db.Where("user_id = ?", userID).Delete(&entities.RefreshToken{}).Error
	return database.Translate(err, "Refresh token")
}

func (s *DatabaseStore) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	db, err := s.db(ctx)
	if err != nil {
		return 0, err
	}
	result := db.Where("expires_at <= ?", now.UTC()).Delete(&entities.RefreshToken{})
	return result.RowsAffected, database.Translate(result.Error, "Refresh token")
}
