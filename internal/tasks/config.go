package tasks

import (
	"time"

	"github.com/mrlokans/mymotiv/internal/config"
)

// DefaultConfig returns the task queue settings used when none are configured.
func DefaultConfig() config.Tasks {
	return config.Tasks{
		Enabled:           true,
		Workers:           2,
		MaxRetries:        3,
		RetryDelay:        1 * time.Minute,
		TaskTimeout:       5 * time.Minute,
		ReleaseAfter:      15 * time.Minute,
		CleanupInterval:   1 * time.Hour,
		RetentionDuration: 24 * time.Hour,
	}
}
