package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"
)

// NotificationSender delivers one scheduled notification and records the
// outcome on it.
type NotificationSender interface {
	Deliver(ctx context.Context, notificationID string) error
}

// SendNotificationTask delivers a due scheduled notification.
type SendNotificationTask struct {
	NotificationID string `json:"notification_id"`
}

// Config returns the queue configuration for notification delivery. Retries
// are counted on the notification itself and re-dispatched by the scheduler,
// so a task runs once.
func (t SendNotificationTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "send_notification",
		MaxAttempts: 1,
		Backoff:     30 * time.Second,
		Timeout:     time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// SendNotificationProcessor creates a processor function for SendNotificationTask.
func SendNotificationProcessor(sender NotificationSender) backlite.QueueProcessor[SendNotificationTask] {
	return func(ctx context.Context, task SendNotificationTask) error {
		if sender == nil {
			return fmt.Errorf("notification sender not configured")
		}
		if task.NotificationID == "" {
			return fmt.Errorf("notification id is required")
		}
		if err := sender.Deliver(ctx, task.NotificationID); err != nil {
			return fmt.Errorf("deliver notification %s: %w", task.NotificationID, err)
		}
		return nil
	}
}

// NewSendNotificationQueue creates a backlite queue for notification delivery.
func NewSendNotificationQueue(sender NotificationSender) backlite.Queue {
	return backlite.NewQueue(SendNotificationProcessor(sender))
}
