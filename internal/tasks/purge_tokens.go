package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/mymotiv/internal/logging"
)

// ExpiredTokenPurger deletes refresh tokens whose expiry has passed.
type ExpiredTokenPurger interface {
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

// PurgeRefreshTokensTask removes expired refresh tokens from the store.
type PurgeRefreshTokensTask struct{}

// Config returns the queue configuration for refresh token purging.
func (t PurgeRefreshTokensTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "purge_refresh_tokens",
		MaxAttempts: 3,
		Backoff:     5 * time.Minute,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: true,
		},
	}
}

// PurgeRefreshTokensProcessor creates a processor function for PurgeRefreshTokensTask.
func PurgeRefreshTokensProcessor(purger ExpiredTokenPurger) backlite.QueueProcessor[PurgeRefreshTokensTask] {
	return func(ctx context.Context, task PurgeRefreshTokensTask) error {
		if purger == nil {
			return fmt.Errorf("token store not configured")
		}

		deleted, err := purger.PurgeExpired(ctx, time.Now())
		if err != nil {
			return fmt.Errorf("purge refresh tokens: %w", err)
		}

		logging.Info().Int64("deleted", deleted).Msg("expired refresh tokens purged")
		return nil
	}
}

// NewPurgeRefreshTokensQueue creates a backlite queue for refresh token purging.
func NewPurgeRefreshTokensQueue(purger ExpiredTokenPurger) backlite.Queue {
	return backlite.NewQueue(PurgeRefreshTokensProcessor(purger))
}
