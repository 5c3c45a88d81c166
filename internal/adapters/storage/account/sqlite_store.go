package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"volunteerhub/internal/adapters/storage"
	domain "volunteerhub/internal/domain/account"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new SQLiteStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const columns = "id, email, password_hash, role, subject_id, created_at, failed_logins, locked_until"

// GetByID retrieves an Account by its ID.
// PRE: id is non-empty
// POST: Returns the entity or ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Account, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+columns+" FROM account WHERE id = ?", id)
	return scanAccount(row)
}

// GetByEmail retrieves an Account by email.
// PRE: email is non-empty
// POST: Returns the entity or ErrNotFound
func (s *SQLiteStore) GetByEmail(ctx context.Context, email string) (domain.Account, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+columns+" FROM account WHERE email = ?", email)
	return scanAccount(row)
}

// Save persists an Account to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, a domain.Account) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO account (id, email, password_hash, role, subject_id, created_at, failed_logins, locked_until)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   email=excluded.email, password_hash=excluded.password_hash,
		   role=excluded.role, subject_id=excluded.subject_id,
		   failed_logins=excluded.failed_logins, locked_until=excluded.locked_until`,
		a.ID, a.Email, a.PasswordHash, a.Role, a.SubjectID,
		storage.FormatTime(a.CreatedAt), a.FailedLogins,
		storage.FormatNullableTime(a.LockedUntil))
	return err
}

// Count returns the number of accounts, used by startup seeding.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM account").Scan(&count)
	return count, err
}

func scanAccount(row *sql.Row) (domain.Account, error) {
	var a domain.Account
	var createdAt string
	var lockedUntil sql.NullString
	err := row.Scan(&a.ID, &a.Email, &a.PasswordHash, &a.Role, &a.SubjectID,
		&createdAt, &a.FailedLogins, &lockedUntil)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Account{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Account{}, err
	}
	if a.CreatedAt, err = storage.ParseTime(createdAt); err != nil {
		return domain.Account{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if lockedUntil.Valid {
		if a.LockedUntil, err = storage.ParseTime(lockedUntil.String); err != nil {
			return domain.Account{}, fmt.Errorf("failed to parse locked_until: %w", err)
		}
	}
	return a, nil
}
