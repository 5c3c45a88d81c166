package orchestrators

import (
	"context"
	"errors"
	"testing"

	"volunteerhub/internal/domain/notification"
	oppDomain "volunteerhub/internal/domain/opportunity"
)

// mockProofReviewStore implements ProofReviewStore for testing.
type mockProofReviewStore struct {
	opp      oppDomain.Opportunity
	proof    oppDomain.Proof
	proofErr error
	saved    []oppDomain.Proof
	saveErr  error
}

func (m *mockProofReviewStore) GetByID(_ context.Context, id string) (oppDomain.Opportunity, error) {
	if m.opp.ID != id {
		return oppDomain.Opportunity{}, oppDomain.ErrNotFound
	}
	return m.opp, nil
}

func (m *mockProofReviewStore) ActiveProof(_ context.Context, _, _ string) (oppDomain.Proof, error) {
	if m.proofErr != nil {
		return oppDomain.Proof{}, m.proofErr
	}
	return m.proof, nil
}

func (m *mockProofReviewStore) SaveProofReview(_ context.Context, p oppDomain.Proof) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = append(m.saved, p)
	return nil
}

func pendingReviewStore() *mockProofReviewStore {
	return &mockProofReviewStore{
		opp: oppDomain.Opportunity{ID: "opp-1", OrganizationID: "org-1", Title: "Beach Cleanup", CapacityNeeded: 5, Status: oppDomain.StatusInProgress},
		proof: oppDomain.Proof{
			ID: "proof-1", OpportunityID: "opp-1", VolunteerID: "vol-1",
			Message: "done", Status: oppDomain.ProofPending, SubmittedAt: fixedTime,
		},
	}
}

// TestExecuteReviewProof_Approve tests approving a pending proof.
func TestExecuteReviewProof_Approve(t *testing.T) {
	store := pendingReviewStore()
	recorder := &mockNotificationRecorder{}

	p, err := ExecuteReviewProof(context.Background(), ReviewProofInput{
		OpportunityID:  "opp-1",
		VolunteerID:    "vol-1",
		OrganizationID: "org-1",
		Approve:        true,
	}, ReviewProofDeps{
		OpportunityStore: store,
		VolunteerStore:   testVolunteerLookup(),
		Notify:           NotifyDeps{NotificationStore: recorder, GenerateID: sequenceID(), Now: fixedNow},
		Now:              fixedNow,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Status != oppDomain.ProofApproved {
		t.Errorf("expected status=approved, got %s", p.Status)
	}
	if len(store.saved) != 1 {
		t.Fatalf("expected 1 saved review, got %d", len(store.saved))
	}
	if len(recorder.saved) != 1 {
		t.Fatalf("expected 1 fanout record, got %d", len(recorder.saved))
	}
	if recorder.saved[0].Kind != notification.EventProofApproved {
		t.Errorf("expected kind=proof_approved, got %s", recorder.saved[0].Kind)
	}
}

// TestExecuteReviewProof_Reject tests rejecting a pending proof.
func TestExecuteReviewProof_Reject(t *testing.T) {
	store := pendingReviewStore()
	recorder := &mockNotificationRecorder{}

	p, err := ExecuteReviewProof(context.Background(), ReviewProofInput{
		OpportunityID:  "opp-1",
		VolunteerID:    "vol-1",
		OrganizationID: "org-1",
		Approve:        false,
	}, ReviewProofDeps{
		OpportunityStore: store,
		VolunteerStore:   testVolunteerLookup(),
		Notify:           NotifyDeps{NotificationStore: recorder, GenerateID: sequenceID(), Now: fixedNow},
		Now:              fixedNow,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Status != oppDomain.ProofRejected {
		t.Errorf("expected status=rejected, got %s", p.Status)
	}
	if !p.RejectedAt.Equal(fixedTime) {
		t.Errorf("expected RejectedAt=%v, got %v", fixedTime, p.RejectedAt)
	}
	if len(recorder.saved) != 1 || recorder.saved[0].Kind != notification.EventProofRejected {
		t.Error("expected a proof_rejected fanout record")
	}
}

// TestExecuteReviewProof_ApprovedIsImmutable tests that an approved proof
// cannot be reviewed again.
func TestExecuteReviewProof_ApprovedIsImmutable(t *testing.T) {
	store := pendingReviewStore()
	store.proof.Status = oppDomain.ProofApproved

	_, err := ExecuteReviewProof(context.Background(), ReviewProofInput{
		OpportunityID:  "opp-1",
		VolunteerID:    "vol-1",
		OrganizationID: "org-1",
		Approve:        false,
	}, ReviewProofDeps{
		OpportunityStore: store,
		Now:              fixedNow,
	})
	if !errors.Is(err, oppDomain.ErrProofImmutable) {
		t.Errorf("expected ErrProofImmutable, got %v", err)
	}
	if len(store.saved) != 0 {
		t.Error("expected no save for immutable proof")
	}
}

// TestExecuteReviewProof_WrongOrganization tests the ownership check.
func TestExecuteReviewProof_WrongOrganization(t *testing.T) {
	store := pendingReviewStore()
	_, err := ExecuteReviewProof(context.Background(), ReviewProofInput{
		OpportunityID:  "opp-1",
		VolunteerID:    "vol-1",
		OrganizationID: "org-2",
		Approve:        true,
	}, ReviewProofDeps{
		OpportunityStore: store,
		Now:              fixedNow,
	})
	if !errors.Is(err, oppDomain.ErrNotOwner) {
		t.Errorf("expected ErrNotOwner, got %v", err)
	}
}

// TestExecuteReviewProof_NoActiveProof tests the missing-proof case.
func TestExecuteReviewProof_NoActiveProof(t *testing.T) {
	store := pendingReviewStore()
	store.proofErr = oppDomain.ErrProofNotFound
	_, err := ExecuteReviewProof(context.Background(), ReviewProofInput{
		OpportunityID:  "opp-1",
		VolunteerID:    "vol-1",
		OrganizationID: "org-1",
		Approve:        true,
	}, ReviewProofDeps{
		OpportunityStore: store,
		Now:              fixedNow,
	})
	if !errors.Is(err, oppDomain.ErrProofNotFound) {
		t.Errorf("expected ErrProofNotFound, got %v", err)
	}
}

// TestExecuteReviewProof_CompletedOpportunity tests that a still-pending
// proof cannot be reviewed once the opportunity has been completed and the
// reward pass has run.
func TestExecuteReviewProof_CompletedOpportunity(t *testing.T) {
	store := pendingReviewStore()
	store.opp.Status = oppDomain.StatusCompleted

	_, err := ExecuteReviewProof(context.Background(), ReviewProofInput{
		OpportunityID:  "opp-1",
		VolunteerID:    "vol-1",
		OrganizationID: "org-1",
		Approve:        true,
	}, ReviewProofDeps{
		OpportunityStore: store,
		Now:              fixedNow,
	})
	if !errors.Is(err, oppDomain.ErrAlreadyCompleted) {
		t.Errorf("expected ErrAlreadyCompleted, got %v", err)
	}
	if len(store.saved) != 0 {
		t.Error("expected no saved review after completion")
	}
}

// TestExecuteReviewProof_ContentionPassesThrough tests that a lost review
// race reaches the caller.
func TestExecuteReviewProof_ContentionPassesThrough(t *testing.T) {
	store := pendingReviewStore()
	store.saveErr = oppDomain.ErrContention
	_, err := ExecuteReviewProof(context.Background(), ReviewProofInput{
		OpportunityID:  "opp-1",
		VolunteerID:    "vol-1",
		OrganizationID: "org-1",
		Approve:        true,
	}, ReviewProofDeps{
		OpportunityStore: store,
		Now:              fixedNow,
	})
	if !errors.Is(err, oppDomain.ErrContention) {
		t.Errorf("expected ErrContention, got %v", err)
	}
}
