package volunteer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"volunteerhub/internal/adapters/storage"
	domain "volunteerhub/internal/domain/volunteer"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new SQLiteStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Volunteer by its ID.
// PRE: id is non-empty
// POST: Returns the entity or ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Volunteer, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, points, completed_tasks, created_at FROM volunteer WHERE id = ?`, id)
	return scanVolunteer(row)
}

// GetByEmail retrieves a Volunteer by email.
// PRE: email is non-empty
// POST: Returns the entity or ErrNotFound
func (s *SQLiteStore) GetByEmail(ctx context.Context, email string) (domain.Volunteer, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, points, completed_tasks, created_at FROM volunteer WHERE email = ?`, email)
	return scanVolunteer(row)
}

// Save persists a Volunteer to the database. The reward counters are only
// written on insert; updates leave them to the atomic methods below.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, v domain.Volunteer) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO volunteer (id, name, email, points, completed_tasks, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name=excluded.name, email=excluded.email`,
		v.ID, v.Name, v.Email, v.Points, v.CompletedTasks, storage.FormatTime(v.CreatedAt))
	return err
}

// IncrementCompleted atomically bumps completed_tasks by one.
// PRE: id is non-empty
// POST: Returns the post-increment value or ErrNotFound
func (s *SQLiteStore) IncrementCompleted(ctx context.Context, id string) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE volunteer SET completed_tasks = completed_tasks + 1 WHERE id = ?`, id)
	if err != nil {
		return 0, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if rows == 0 {
		return 0, domain.ErrNotFound
	}

	var count int
	if err := tx.QueryRowContext(ctx,
		`SELECT completed_tasks FROM volunteer WHERE id = ?`, id).Scan(&count); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return count, nil
}

// AddPoints atomically adds points to the volunteer.
// PRE: points >= 0
// POST: points column incremented, or ErrNotFound
func (s *SQLiteStore) AddPoints(ctx context.Context, id string, points int) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE volunteer SET points = points + ? WHERE id = ?`, points, id)
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

// AddBadge appends a badge unless the name is already held. The primary key
// on (volunteer_id, name) makes the append idempotent under concurrency.
// PRE: b has been validated
// POST: Returns true if the badge was newly inserted
func (s *SQLiteStore) AddBadge(ctx context.Context, b domain.Badge) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO volunteer_badge (volunteer_id, name, description, bonus_points, earned_at)
		 VALUES (?, ?, ?, ?, ?)`,
		b.VolunteerID, b.Name, b.Description, b.BonusPoints, storage.FormatTime(b.EarnedAt))
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

// Badges retrieves a volunteer's badges in the order earned.
func (s *SQLiteStore) Badges(ctx context.Context, volunteerID string) ([]domain.Badge, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT volunteer_id, name, description, bonus_points, earned_at
		 FROM volunteer_badge WHERE volunteer_id = ? ORDER BY earned_at`, volunteerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var badges []domain.Badge
	for rows.Next() {
		var b domain.Badge
		var earnedAt string
		if err := rows.Scan(&b.VolunteerID, &b.Name, &b.Description, &b.BonusPoints, &earnedAt); err != nil {
			return nil, err
		}
		if b.EarnedAt, err = storage.ParseTime(earnedAt); err != nil {
			return nil, fmt.Errorf("failed to parse earned_at: %w", err)
		}
		badges = append(badges, b)
	}
	return badges, rows.Err()
}

func scanVolunteer(row *sql.Row) (domain.Volunteer, error) {
	var v domain.Volunteer
	var createdAt string
	err := row.Scan(&v.ID, &v.Name, &v.Email, &v.Points, &v.CompletedTasks, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Volunteer{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Volunteer{}, err
	}
	if v.CreatedAt, err = storage.ParseTime(createdAt); err != nil {
		return domain.Volunteer{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	return v, nil
}
