package opportunity

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"volunteerhub/internal/adapters/storage"
	domain "volunteerhub/internal/domain/opportunity"
)

// openTestDB creates an in-memory SQLite database with the schema applied.
// A single connection is enforced so ":memory:" behaves as one database.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	if err := storage.InitDB(db); err != nil {
		t.Fatalf("failed to init schema: %v", err)
	}
	return db
}

var testTime = time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)

// seedParticipants inserts the organization and volunteer rows foreign keys
// point at.
func seedParticipants(t *testing.T, db *sql.DB, volunteerIDs ...string) {
	t.Helper()
	at := testTime.Format(time.RFC3339Nano)
	if _, err := db.Exec(
		`INSERT OR IGNORE INTO organization (id, name, email, created_at) VALUES ('org-1', 'Shore Trust', 'info@shoretrust.org', ?)`, at); err != nil {
		t.Fatalf("failed to seed organization: %v", err)
	}
	for _, id := range volunteerIDs {
		if _, err := db.Exec(
			`INSERT OR IGNORE INTO volunteer (id, name, email, created_at) VALUES (?, ?, ?, ?)`,
			id, id, id+"@example.org", at); err != nil {
			t.Fatalf("failed to seed volunteer %s: %v", id, err)
		}
	}
}

func seedOpportunity(t *testing.T, s *SQLiteStore, id string, capacity int, status string) {
	t.Helper()
	err := s.Save(context.Background(), domain.Opportunity{
		ID:             id,
		OrganizationID: "org-1",
		Title:          "Beach Cleanup",
		CapacityNeeded: capacity,
		Status:         status,
		CreatedAt:      testTime,
	})
	if err != nil {
		t.Fatalf("failed to seed opportunity: %v", err)
	}
}

// TestSignUp_CapacityAndStatusFlip verifies admission up to capacity and the
// open -> in_progress flip exactly when the set fills.
func TestSignUp_CapacityAndStatusFlip(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	seedParticipants(t, db, "vol-a", "vol-b", "vol-c", "vol-d", "vol-e")
	s := NewSQLiteStore(db)
	seedOpportunity(t, s, "opp-1", 2, domain.StatusOpen)

	res, err := s.SignUp(ctx, "opp-1", "vol-a", testTime)
	if err != nil {
		t.Fatalf("first signup: %v", err)
	}
	if res.Size != 1 || res.Status != domain.StatusOpen {
		t.Errorf("after first signup got size=%d status=%s, want 1/open", res.Size, res.Status)
	}

	res, err = s.SignUp(ctx, "opp-1", "vol-b", testTime)
	if err != nil {
		t.Fatalf("second signup: %v", err)
	}
	if res.Size != 2 || res.Status != domain.StatusInProgress {
		t.Errorf("after filling got size=%d status=%s, want 2/in_progress", res.Size, res.Status)
	}

	// A third volunteer is rejected without growing the set.
	if _, err := s.SignUp(ctx, "opp-1", "vol-c", testTime); !errors.Is(err, domain.ErrOpportunityFull) {
		t.Errorf("over-capacity signup = %v, want ErrOpportunityFull", err)
	}
	signups, err := s.Signups(ctx, "opp-1")
	if err != nil {
		t.Fatalf("Signups: %v", err)
	}
	if len(signups) != 2 {
		t.Errorf("signup set size = %d, want 2", len(signups))
	}
}

// TestSignUp_Duplicate verifies a second signup by the same volunteer fails
// and leaves the set unchanged.
func TestSignUp_Duplicate(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	seedParticipants(t, db, "vol-a", "vol-b", "vol-c", "vol-d", "vol-e")
	s := NewSQLiteStore(db)
	seedOpportunity(t, s, "opp-1", 5, domain.StatusOpen)

	if _, err := s.SignUp(ctx, "opp-1", "vol-a", testTime); err != nil {
		t.Fatalf("signup: %v", err)
	}
	if _, err := s.SignUp(ctx, "opp-1", "vol-a", testTime); !errors.Is(err, domain.ErrAlreadySignedUp) {
		t.Errorf("duplicate signup = %v, want ErrAlreadySignedUp", err)
	}
	signups, _ := s.Signups(ctx, "opp-1")
	if len(signups) != 1 {
		t.Errorf("signup set size = %d, want 1", len(signups))
	}
}

// TestSignUp_ClosedStatuses verifies closed, completed and suspended
// opportunities reject signups.
func TestSignUp_ClosedStatuses(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	seedParticipants(t, db, "vol-a", "vol-b", "vol-c", "vol-d", "vol-e")
	s := NewSQLiteStore(db)

	for _, status := range []string{domain.StatusClosed, domain.StatusCompleted, domain.StatusSuspended} {
		seedOpportunity(t, s, "opp-"+status, 5, status)
		if _, err := s.SignUp(ctx, "opp-"+status, "vol-a", testTime); !errors.Is(err, domain.ErrOpportunityClosed) {
			t.Errorf("signup on %s = %v, want ErrOpportunityClosed", status, err)
		}
	}

	if _, err := s.SignUp(ctx, "no-such", "vol-a", testTime); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("signup on missing opportunity = %v, want ErrNotFound", err)
	}
}

// TestSignUp_Concurrent races more volunteers than slots and verifies the
// final set never exceeds capacity.
func TestSignUp_Concurrent(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	seedParticipants(t, db, "vol-a", "vol-b", "vol-c", "vol-d", "vol-e")
	s := NewSQLiteStore(db)
	seedOpportunity(t, s, "opp-1", 2, domain.StatusOpen)

	volunteers := []string{"vol-a", "vol-b", "vol-c", "vol-d", "vol-e"}
	errs := make([]error, len(volunteers))
	var wg sync.WaitGroup
	for i, v := range volunteers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = s.SignUp(ctx, "opp-1", v, testTime)
		}()
	}
	wg.Wait()

	admitted := 0
	for _, err := range errs {
		if err == nil {
			admitted++
		} else if !errors.Is(err, domain.ErrOpportunityFull) && !errors.Is(err, domain.ErrOpportunityClosed) && !errors.Is(err, domain.ErrContention) {
			t.Errorf("unexpected signup error: %v", err)
		}
	}
	if admitted != 2 {
		t.Errorf("admitted = %d, want exactly 2", admitted)
	}

	signups, _ := s.Signups(ctx, "opp-1")
	if len(signups) > 2 {
		t.Errorf("signup set size = %d, exceeds capacity 2", len(signups))
	}
	opp, err := s.GetByID(ctx, "opp-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if opp.Status != domain.StatusInProgress {
		t.Errorf("status = %s, want in_progress once full", opp.Status)
	}
}

// TestSubmitProof_ResubmissionSupersedes walks submit -> reject -> resubmit
// and verifies exactly one active proof survives with the audit row kept.
func TestSubmitProof_ResubmissionSupersedes(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	seedParticipants(t, db, "vol-a", "vol-b", "vol-c", "vol-d", "vol-e")
	s := NewSQLiteStore(db)
	seedOpportunity(t, s, "opp-1", 2, domain.StatusOpen)

	first := domain.Proof{
		ID: "proof-1", OpportunityID: "opp-1", VolunteerID: "vol-a",
		Message: "done", Status: domain.ProofPending, SubmittedAt: testTime,
	}
	if err := s.SubmitProof(ctx, first); err != nil {
		t.Fatalf("first submit: %v", err)
	}

	// Duplicate while pending
	dup := first
	dup.ID = "proof-dup"
	if err := s.SubmitProof(ctx, dup); !errors.Is(err, domain.ErrDuplicateSubmission) {
		t.Errorf("duplicate submit = %v, want ErrDuplicateSubmission", err)
	}

	// Reject, then resubmit
	rejected := first
	if err := rejected.Reject(testTime.Add(time.Hour)); err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if err := s.SaveProofReview(ctx, rejected); err != nil {
		t.Fatalf("SaveProofReview: %v", err)
	}

	second := domain.Proof{
		ID: "proof-2", OpportunityID: "opp-1", VolunteerID: "vol-a",
		Message: "done v2", Status: domain.ProofPending, SubmittedAt: testTime.Add(2 * time.Hour),
	}
	if err := s.SubmitProof(ctx, second); err != nil {
		t.Fatalf("resubmit: %v", err)
	}

	active, err := s.ActiveProof(ctx, "opp-1", "vol-a")
	if err != nil {
		t.Fatalf("ActiveProof: %v", err)
	}
	if active.ID != "proof-2" || active.Status != domain.ProofPending {
		t.Errorf("active proof = %s/%s, want proof-2/pending", active.ID, active.Status)
	}
	if !active.RejectedAt.IsZero() {
		t.Error("fresh proof carries a rejected_at; only the superseded row should")
	}

	// The superseded row is retained for audit.
	var count int
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM proof WHERE opportunity_id = 'opp-1' AND volunteer_id = 'vol-a'").Scan(&count); err != nil {
		t.Fatalf("count proofs: %v", err)
	}
	if count != 2 {
		t.Errorf("proof rows = %d, want 2 (active + audit)", count)
	}
}

// TestSaveProofReview_GuardsPending verifies a review only lands on the
// still-pending active row.
func TestSaveProofReview_GuardsPending(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	seedParticipants(t, db, "vol-a", "vol-b", "vol-c", "vol-d", "vol-e")
	s := NewSQLiteStore(db)
	seedOpportunity(t, s, "opp-1", 2, domain.StatusOpen)

	p := domain.Proof{
		ID: "proof-1", OpportunityID: "opp-1", VolunteerID: "vol-a",
		Message: "done", Status: domain.ProofPending, SubmittedAt: testTime,
	}
	if err := s.SubmitProof(ctx, p); err != nil {
		t.Fatalf("submit: %v", err)
	}

	approved := p
	if err := approved.Approve(); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if err := s.SaveProofReview(ctx, approved); err != nil {
		t.Fatalf("SaveProofReview: %v", err)
	}

	// A second decision on the same proof loses the guard.
	if err := s.SaveProofReview(ctx, approved); !errors.Is(err, domain.ErrContention) {
		t.Errorf("second review = %v, want ErrContention", err)
	}

	ids, err := s.ApprovedVolunteers(ctx, "opp-1")
	if err != nil {
		t.Fatalf("ApprovedVolunteers: %v", err)
	}
	if len(ids) != 1 || ids[0] != "vol-a" {
		t.Errorf("approved set = %v, want [vol-a]", ids)
	}
}

// TestSaveProofReview_RefusedAfterCompletion verifies a pending proof can
// no longer be decided once the opportunity completes: the reward pass has
// run, so a late approval would leave that volunteer permanently unrewarded.
func TestSaveProofReview_RefusedAfterCompletion(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	seedParticipants(t, db, "vol-a", "vol-b", "vol-c", "vol-d", "vol-e")
	s := NewSQLiteStore(db)
	seedOpportunity(t, s, "opp-1", 2, domain.StatusOpen)

	for i, vol := range []string{"vol-a", "vol-b"} {
		if _, err := s.SignUp(ctx, "opp-1", vol, testTime); err != nil {
			t.Fatalf("signup %s: %v", vol, err)
		}
		p := domain.Proof{
			ID: "proof-" + vol, OpportunityID: "opp-1", VolunteerID: vol,
			Message: "done", Status: domain.ProofPending,
			SubmittedAt: testTime.Add(time.Duration(i) * time.Minute),
		}
		if err := s.SubmitProof(ctx, p); err != nil {
			t.Fatalf("submit %s: %v", vol, err)
		}
	}

	approved := domain.Proof{ID: "proof-vol-a", OpportunityID: "opp-1", VolunteerID: "vol-a", Status: domain.ProofPending}
	if err := approved.Approve(); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if err := s.SaveProofReview(ctx, approved); err != nil {
		t.Fatalf("SaveProofReview: %v", err)
	}
	if err := s.Complete(ctx, "opp-1", false); err != nil {
		t.Fatalf("Complete: %v", err)
	}

	// vol-b's proof is still pending, but the decision window has closed.
	late := domain.Proof{ID: "proof-vol-b", OpportunityID: "opp-1", VolunteerID: "vol-b", Status: domain.ProofPending}
	if err := late.Approve(); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if err := s.SaveProofReview(ctx, late); !errors.Is(err, domain.ErrAlreadyCompleted) {
		t.Errorf("late review = %v, want ErrAlreadyCompleted", err)
	}

	ids, err := s.ApprovedVolunteers(ctx, "opp-1")
	if err != nil {
		t.Fatalf("ApprovedVolunteers: %v", err)
	}
	if len(ids) != 1 || ids[0] != "vol-a" {
		t.Errorf("approved set = %v, want [vol-a]", ids)
	}
}

// TestComplete_CASAndForce verifies the conditional completion update.
func TestComplete_CASAndForce(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	seedParticipants(t, db, "vol-a", "vol-b", "vol-c", "vol-d", "vol-e")
	s := NewSQLiteStore(db)
	seedOpportunity(t, s, "opp-1", 2, domain.StatusInProgress)

	if err := s.Complete(ctx, "opp-1", false); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if err := s.Complete(ctx, "opp-1", false); !errors.Is(err, domain.ErrAlreadyCompleted) {
		t.Errorf("second Complete = %v, want ErrAlreadyCompleted", err)
	}

	// Non-forced completion refuses closed/suspended opportunities.
	seedOpportunity(t, s, "opp-2", 2, domain.StatusSuspended)
	if err := s.Complete(ctx, "opp-2", false); !errors.Is(err, domain.ErrOpportunityClosed) {
		t.Errorf("Complete on suspended = %v, want ErrOpportunityClosed", err)
	}
	// Forced completion overrides.
	if err := s.Complete(ctx, "opp-2", true); err != nil {
		t.Fatalf("forced Complete: %v", err)
	}
	opp, _ := s.GetByID(ctx, "opp-2")
	if opp.Status != domain.StatusCompleted || !opp.ForcedComplete {
		t.Errorf("after force got status=%s forced=%v, want completed/true", opp.Status, opp.ForcedComplete)
	}

	if err := s.Complete(ctx, "missing", false); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Complete on missing = %v, want ErrNotFound", err)
	}
}

// TestClose verifies the explicit close transition.
func TestClose(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	seedParticipants(t, db, "vol-a", "vol-b", "vol-c", "vol-d", "vol-e")
	s := NewSQLiteStore(db)
	seedOpportunity(t, s, "opp-1", 2, domain.StatusOpen)

	if err := s.Close(ctx, "opp-1"); err != nil {
		t.Fatalf("Close: %v", err)
	}
	opp, _ := s.GetByID(ctx, "opp-1")
	if opp.Status != domain.StatusClosed {
		t.Errorf("status = %s, want closed", opp.Status)
	}
	if err := s.Close(ctx, "opp-1"); !errors.Is(err, domain.ErrOpportunityClosed) {
		t.Errorf("second Close = %v, want ErrOpportunityClosed", err)
	}
}
