package notification

import (
	"context"

	domain "volunteerhub/internal/domain/notification"
)

// Store persists Notification records.
type Store interface {
	Save(ctx context.Context, n domain.Notification) error
	// ListByRecipient returns a recipient's records for one channel,
	// newest first. The in-app feed and the email audit tab are separate
	// record sets.
	ListByRecipient(ctx context.Context, r domain.Recipient, channel string) ([]domain.Notification, error)
	UnreadCount(ctx context.Context, r domain.Recipient) (int, error)
	// MarkRead flips is_read for one record, scoped to the recipient so
	// one user cannot mark another's notifications.
	MarkRead(ctx context.Context, id string, r domain.Recipient) error
}
