package notification

import (
	"context"
	"fmt"

	"volunteerhub/internal/adapters/storage"
	domain "volunteerhub/internal/domain/notification"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new SQLiteStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Save persists a Notification record.
// PRE: entity has been validated
// POST: Record is persisted; records are never updated except via MarkRead
func (s *SQLiteStore) Save(ctx context.Context, n domain.Notification) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO notification (id, recipient_kind, recipient_id, title, message, kind, channel, is_read, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.RecipientKind, n.RecipientID, n.Title, n.Message, n.Kind, n.Channel,
		boolToInt(n.IsRead), storage.FormatTime(n.CreatedAt))
	return err
}

// ListByRecipient returns a recipient's records for one channel, newest first.
func (s *SQLiteStore) ListByRecipient(ctx context.Context, r domain.Recipient, channel string) ([]domain.Notification, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, recipient_kind, recipient_id, title, message, kind, channel, is_read, created_at
		 FROM notification
		 WHERE recipient_kind = ? AND recipient_id = ? AND channel = ?
		 ORDER BY created_at DESC`,
		r.Kind, r.ID, channel)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []domain.Notification
	for rows.Next() {
		var n domain.Notification
		var isRead int
		var createdAt string
		if err := rows.Scan(&n.ID, &n.RecipientKind, &n.RecipientID, &n.Title, &n.Message,
			&n.Kind, &n.Channel, &isRead, &createdAt); err != nil {
			return nil, err
		}
		n.IsRead = isRead != 0
		if n.CreatedAt, err = storage.ParseTime(createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		list = append(list, n)
	}
	return list, rows.Err()
}

// UnreadCount returns the number of unread in-app records for a recipient.
func (s *SQLiteStore) UnreadCount(ctx context.Context, r domain.Recipient) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notification
		 WHERE recipient_kind = ? AND recipient_id = ? AND channel = ? AND is_read = 0`,
		r.Kind, r.ID, domain.ChannelInApp).Scan(&count)
	return count, err
}

// MarkRead flips is_read for one record owned by the recipient.
// POST: Returns ErrNotFound if the record does not exist or belongs to
// someone else
func (s *SQLiteStore) MarkRead(ctx context.Context, id string, r domain.Recipient) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE notification SET is_read = 1
		 WHERE id = ? AND recipient_kind = ? AND recipient_id = ?`,
		id, r.Kind, r.ID)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
