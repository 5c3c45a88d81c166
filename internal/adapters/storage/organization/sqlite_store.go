package organization

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"volunteerhub/internal/adapters/storage"
	domain "volunteerhub/internal/domain/organization"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new SQLiteStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves an Organization by its ID.
// PRE: id is non-empty
// POST: Returns the entity or ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Organization, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, created_at FROM organization WHERE id = ?`, id)
	return scanOrganization(row)
}

// GetByEmail retrieves an Organization by email.
// PRE: email is non-empty
// POST: Returns the entity or ErrNotFound
func (s *SQLiteStore) GetByEmail(ctx context.Context, email string) (domain.Organization, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, created_at FROM organization WHERE email = ?`, email)
	return scanOrganization(row)
}

// Save persists an Organization to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, o domain.Organization) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO organization (id, name, email, created_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name=excluded.name, email=excluded.email`,
		o.ID, o.Name, o.Email, storage.FormatTime(o.CreatedAt))
	return err
}

func scanOrganization(row *sql.Row) (domain.Organization, error) {
	var o domain.Organization
	var createdAt string
	err := row.Scan(&o.ID, &o.Name, &o.Email, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Organization{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Organization{}, err
	}
	if o.CreatedAt, err = storage.ParseTime(createdAt); err != nil {
		return domain.Organization{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	return o, nil
}
