package orchestrators

import (
	"context"
	"errors"

	"volunteerhub/internal/domain/notification"
)

// NotificationReadStore defines the store interface for marking records read.
type NotificationReadStore interface {
	MarkRead(ctx context.Context, id string, r notification.Recipient) error
}

// MarkNotificationReadInput carries input for marking a notification read.
type MarkNotificationReadInput struct {
	NotificationID string
	Recipient      notification.Recipient
}

// MarkNotificationReadDeps holds dependencies for MarkNotificationRead.
type MarkNotificationReadDeps struct {
	NotificationStore NotificationReadStore
}

// ExecuteMarkNotificationRead marks one notification as read. The update is
// scoped to the recipient, so a user can only mark their own records.
// PRE: Notification exists and belongs to the recipient
// POST: IsRead is true
func ExecuteMarkNotificationRead(ctx context.Context, input MarkNotificationReadInput, deps MarkNotificationReadDeps) error {
	if input.NotificationID == "" {
		return errors.New("notification ID is required")
	}
	if err := input.Recipient.Validate(); err != nil {
		return err
	}
	return deps.NotificationStore.MarkRead(ctx, input.NotificationID, input.Recipient)
}
