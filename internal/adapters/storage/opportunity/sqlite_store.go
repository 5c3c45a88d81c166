package opportunity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"volunteerhub/internal/adapters/storage"
	domain "volunteerhub/internal/domain/opportunity"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new SQLiteStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const opportunityColumns = "id, organization_id, title, description, capacity_needed, status, forced_complete, created_at"

// GetByID retrieves an Opportunity by its ID.
// PRE: id is non-empty
// POST: Returns the entity or ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Opportunity, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+opportunityColumns+" FROM opportunity WHERE id = ?", id)
	return scanOpportunity(row)
}

// Save persists an Opportunity to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update); signup/proof rows untouched
func (s *SQLiteStore) Save(ctx context.Context, o domain.Opportunity) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO opportunity (id, organization_id, title, description, capacity_needed, status, forced_complete, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   title=excluded.title, description=excluded.description,
		   capacity_needed=excluded.capacity_needed, status=excluded.status,
		   forced_complete=excluded.forced_complete`,
		o.ID, o.OrganizationID, o.Title, o.Description, o.CapacityNeeded,
		o.Status, boolToInt(o.ForcedComplete), storage.FormatTime(o.CreatedAt))
	return err
}

// ListByStatus retrieves opportunities with the given status, newest first.
func (s *SQLiteStore) ListByStatus(ctx context.Context, status string) ([]domain.Opportunity, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+opportunityColumns+" FROM opportunity WHERE status = ? ORDER BY created_at DESC", status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOpportunities(rows)
}

// ListByOrganization retrieves an organization's opportunities, newest first.
func (s *SQLiteStore) ListByOrganization(ctx context.Context, organizationID string) ([]domain.Opportunity, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+opportunityColumns+" FROM opportunity WHERE organization_id = ? ORDER BY created_at DESC", organizationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOpportunities(rows)
}

// SignUp atomically admits a volunteer to an opportunity.
// The insert re-checks capacity at commit time, so two concurrent signups
// can never both take the last slot; the open -> in_progress flip happens
// in the same transaction the moment the set fills.
// PRE: opportunityID and volunteerID are non-empty
// POST: On success the signup row exists and the returned result reflects
// the post-insert size and status
func (s *SQLiteStore) SignUp(ctx context.Context, opportunityID, volunteerID string, at time.Time) (SignupResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return SignupResult{}, mapBusy(err)
	}
	defer tx.Rollback()

	var capacity int
	var status string
	err = tx.QueryRowContext(ctx,
		"SELECT capacity_needed, status FROM opportunity WHERE id = ?", opportunityID).
		Scan(&capacity, &status)
	if errors.Is(err, sql.ErrNoRows) {
		return SignupResult{}, domain.ErrNotFound
	}
	if err != nil {
		return SignupResult{}, mapBusy(err)
	}
	if status != domain.StatusOpen && status != domain.StatusInProgress {
		return SignupResult{}, domain.ErrOpportunityClosed
	}

	// Conditional insert: membership is enforced by the primary key, the
	// capacity bound is re-evaluated inside the same statement.
	res, err := tx.ExecContext(ctx,
		`INSERT INTO opportunity_signup (opportunity_id, volunteer_id, signed_up_at)
		 SELECT ?, ?, ?
		 WHERE (SELECT COUNT(*) FROM opportunity_signup WHERE opportunity_id = ?) < ?`,
		opportunityID, volunteerID, storage.FormatTime(at), opportunityID, capacity)
	if err != nil {
		if isUniqueViolation(err) {
			return SignupResult{}, domain.ErrAlreadySignedUp
		}
		return SignupResult{}, mapBusy(err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return SignupResult{}, err
	}
	if inserted == 0 {
		return SignupResult{}, domain.ErrOpportunityFull
	}

	var size int
	if err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM opportunity_signup WHERE opportunity_id = ?", opportunityID).
		Scan(&size); err != nil {
		return SignupResult{}, mapBusy(err)
	}

	if size >= capacity && status == domain.StatusOpen {
		if _, err := tx.ExecContext(ctx,
			"UPDATE opportunity SET status = ? WHERE id = ? AND status = ?",
			domain.StatusInProgress, opportunityID, domain.StatusOpen); err != nil {
			return SignupResult{}, mapBusy(err)
		}
		status = domain.StatusInProgress
	}

	if err := tx.Commit(); err != nil {
		return SignupResult{}, mapBusy(err)
	}
	return SignupResult{Size: size, Status: status}, nil
}

// Signups retrieves all signup rows for an opportunity in insertion order.
func (s *SQLiteStore) Signups(ctx context.Context, opportunityID string) ([]domain.Signup, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT opportunity_id, volunteer_id, signed_up_at FROM opportunity_signup
		 WHERE opportunity_id = ? ORDER BY signed_up_at`, opportunityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var signups []domain.Signup
	for rows.Next() {
		var su domain.Signup
		var at string
		if err := rows.Scan(&su.OpportunityID, &su.VolunteerID, &at); err != nil {
			return nil, err
		}
		if su.SignedUpAt, err = storage.ParseTime(at); err != nil {
			return nil, fmt.Errorf("failed to parse signed_up_at: %w", err)
		}
		signups = append(signups, su)
	}
	return signups, rows.Err()
}

// IsSignedUp reports whether the volunteer holds a signup row.
func (s *SQLiteStore) IsSignedUp(ctx context.Context, opportunityID, volunteerID string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		"SELECT 1 FROM opportunity_signup WHERE opportunity_id = ? AND volunteer_id = ?",
		opportunityID, volunteerID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// SubmitProof supersedes any rejected proof and inserts the new pending one.
// The partial unique index on (opportunity_id, volunteer_id) WHERE
// superseded = 0 turns a racing duplicate into ErrDuplicateSubmission.
// PRE: p has been validated and p.Status is pending
// POST: p is the single active proof for the pair
func (s *SQLiteStore) SubmitProof(ctx context.Context, p domain.Proof) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return mapBusy(err)
	}
	defer tx.Rollback()

	var existingStatus string
	err = tx.QueryRowContext(ctx,
		`SELECT status FROM proof WHERE opportunity_id = ? AND volunteer_id = ? AND superseded = 0`,
		p.OpportunityID, p.VolunteerID).Scan(&existingStatus)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// first submission
	case err != nil:
		return mapBusy(err)
	case existingStatus != domain.ProofRejected:
		return domain.ErrDuplicateSubmission
	default:
		// Supersede the rejected proof; the row stays for audit.
		if _, err := tx.ExecContext(ctx,
			`UPDATE proof SET superseded = 1 WHERE opportunity_id = ? AND volunteer_id = ? AND superseded = 0`,
			p.OpportunityID, p.VolunteerID); err != nil {
			return mapBusy(err)
		}
	}

	var attachment any
	if p.AttachmentRef != "" {
		attachment = p.AttachmentRef
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO proof (id, opportunity_id, volunteer_id, message, attachment_ref, status, submitted_at, rejected_at, superseded)
		 VALUES (?, ?, ?, ?, ?, ?, ?, NULL, 0)`,
		p.ID, p.OpportunityID, p.VolunteerID, p.Message, attachment, p.Status,
		storage.FormatTime(p.SubmittedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateSubmission
		}
		return mapBusy(err)
	}
	return mapBusy(tx.Commit())
}

// ActiveProof retrieves the single non-superseded proof for a volunteer.
// POST: Returns the proof or ErrProofNotFound
func (s *SQLiteStore) ActiveProof(ctx context.Context, opportunityID, volunteerID string) (domain.Proof, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+proofColumns+` FROM proof WHERE opportunity_id = ? AND volunteer_id = ? AND superseded = 0`,
		opportunityID, volunteerID)
	p, err := scanProof(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Proof{}, domain.ErrProofNotFound
	}
	return p, err
}

// ActiveProofs retrieves all non-superseded proofs for an opportunity.
func (s *SQLiteStore) ActiveProofs(ctx context.Context, opportunityID string) ([]domain.Proof, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+proofColumns+` FROM proof WHERE opportunity_id = ? AND superseded = 0 ORDER BY submitted_at`,
		opportunityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var proofs []domain.Proof
	for rows.Next() {
		p, err := scanProofRows(rows)
		if err != nil {
			return nil, err
		}
		proofs = append(proofs, p)
	}
	return proofs, rows.Err()
}

// SaveProofReview persists a review decision, guarded so it only lands on
// the still-active, still-pending row of a not-yet-completed opportunity.
// The status re-check and the update share one transaction, so a decision
// racing markCompleted cannot slip in after the reward pass and leave an
// approved volunteer unrewarded. A lost race on the proof row surfaces as
// ErrContention.
// PRE: p carries an approved or rejected status produced by the domain transition
// POST: The active proof row reflects the decision
func (s *SQLiteStore) SaveProofReview(ctx context.Context, p domain.Proof) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return mapBusy(err)
	}
	defer tx.Rollback()

	var status string
	err = tx.QueryRowContext(ctx,
		"SELECT status FROM opportunity WHERE id = ?", p.OpportunityID).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	if err != nil {
		return mapBusy(err)
	}
	if status == domain.StatusCompleted {
		return domain.ErrAlreadyCompleted
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE proof SET status = ?, rejected_at = ?
		 WHERE id = ? AND superseded = 0 AND status = ?`,
		p.Status, storage.FormatNullableTime(p.RejectedAt), p.ID, domain.ProofPending)
	if err != nil {
		return mapBusy(err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrContention
	}
	return mapBusy(tx.Commit())
}

// ApprovedVolunteers returns the exact set of volunteers holding an active
// approved proof, in submission order.
func (s *SQLiteStore) ApprovedVolunteers(ctx context.Context, opportunityID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT volunteer_id FROM proof
		 WHERE opportunity_id = ? AND superseded = 0 AND status = ?
		 ORDER BY submitted_at`,
		opportunityID, domain.ProofApproved)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Complete moves the opportunity to completed via a conditional update, so
// only one of two concurrent completion calls can win.
// PRE: opportunityID is non-empty
// POST: Status is completed; forced_complete records an override
func (s *SQLiteStore) Complete(ctx context.Context, opportunityID string, forced bool) error {
	var res sql.Result
	var err error
	if forced {
		res, err = s.db.ExecContext(ctx,
			`UPDATE opportunity SET status = ?, forced_complete = 1
			 WHERE id = ? AND status != ?`,
			domain.StatusCompleted, opportunityID, domain.StatusCompleted)
	} else {
		res, err = s.db.ExecContext(ctx,
			`UPDATE opportunity SET status = ?
			 WHERE id = ? AND status IN (?, ?)`,
			domain.StatusCompleted, opportunityID, domain.StatusOpen, domain.StatusInProgress)
	}
	if err != nil {
		return mapBusy(err)
	}
	return s.explainNoTransition(ctx, opportunityID, res)
}

// Close moves a non-terminal opportunity to closed.
// POST: Status is closed, or an error explains why not
func (s *SQLiteStore) Close(ctx context.Context, opportunityID string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE opportunity SET status = ? WHERE id = ? AND status IN (?, ?)`,
		domain.StatusClosed, opportunityID, domain.StatusOpen, domain.StatusInProgress)
	if err != nil {
		return mapBusy(err)
	}
	return s.explainNoTransition(ctx, opportunityID, res)
}

// explainNoTransition turns a zero-row conditional update into the precise
// domain error for the current row state.
func (s *SQLiteStore) explainNoTransition(ctx context.Context, opportunityID string, res sql.Result) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows > 0 {
		return nil
	}
	var status string
	err = s.db.QueryRowContext(ctx,
		"SELECT status FROM opportunity WHERE id = ?", opportunityID).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	if err != nil {
		return err
	}
	if status == domain.StatusCompleted {
		return domain.ErrAlreadyCompleted
	}
	return domain.ErrOpportunityClosed
}

const proofColumns = "id, opportunity_id, volunteer_id, message, attachment_ref, status, submitted_at, rejected_at, superseded"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProofFrom(sc rowScanner) (domain.Proof, error) {
	var p domain.Proof
	var attachment, rejectedAt sql.NullString
	var submittedAt string
	var superseded int
	err := sc.Scan(&p.ID, &p.OpportunityID, &p.VolunteerID, &p.Message,
		&attachment, &p.Status, &submittedAt, &rejectedAt, &superseded)
	if err != nil {
		return domain.Proof{}, err
	}
	if attachment.Valid {
		p.AttachmentRef = attachment.String
	}
	if p.SubmittedAt, err = storage.ParseTime(submittedAt); err != nil {
		return domain.Proof{}, fmt.Errorf("failed to parse submitted_at: %w", err)
	}
	if rejectedAt.Valid {
		if p.RejectedAt, err = storage.ParseTime(rejectedAt.String); err != nil {
			return domain.Proof{}, fmt.Errorf("failed to parse rejected_at: %w", err)
		}
	}
	p.Superseded = superseded != 0
	return p, nil
}

func scanProof(row *sql.Row) (domain.Proof, error) { return scanProofFrom(row) }

func scanProofRows(rows *sql.Rows) (domain.Proof, error) { return scanProofFrom(rows) }

func scanOpportunity(row *sql.Row) (domain.Opportunity, error) {
	o, err := scanOpportunityFrom(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Opportunity{}, domain.ErrNotFound
	}
	return o, err
}

func scanOpportunityFrom(sc rowScanner) (domain.Opportunity, error) {
	var o domain.Opportunity
	var forced int
	var createdAt string
	err := sc.Scan(&o.ID, &o.OrganizationID, &o.Title, &o.Description,
		&o.CapacityNeeded, &o.Status, &forced, &createdAt)
	if err != nil {
		return domain.Opportunity{}, err
	}
	o.ForcedComplete = forced != 0
	if o.CreatedAt, err = storage.ParseTime(createdAt); err != nil {
		return domain.Opportunity{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	return o, nil
}

func scanOpportunities(rows *sql.Rows) ([]domain.Opportunity, error) {
	var list []domain.Opportunity
	for rows.Next() {
		o, err := scanOpportunityFrom(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, o)
	}
	return list, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// isUniqueViolation reports whether err is a UNIQUE constraint failure.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// mapBusy surfaces SQLite lock contention as the retryable domain error.
func mapBusy(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked") {
		return domain.ErrContention
	}
	return err
}
