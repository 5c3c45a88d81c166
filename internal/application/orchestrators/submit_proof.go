package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	oppDomain "volunteerhub/internal/domain/opportunity"
)

// ProofSubmissionStore defines the opportunity store interface needed for
// proof submission.
type ProofSubmissionStore interface {
	GetByID(ctx context.Context, id string) (oppDomain.Opportunity, error)
	IsSignedUp(ctx context.Context, opportunityID, volunteerID string) (bool, error)
	SubmitProof(ctx context.Context, p oppDomain.Proof) error
}

// SubmitProofInput carries input for the proof submission orchestrator.
type SubmitProofInput struct {
	OpportunityID string
	VolunteerID   string
	Message       string
	AttachmentRef string // opaque reference; upload handling lives elsewhere
}

// SubmitProofDeps holds dependencies for SubmitProof.
type SubmitProofDeps struct {
	OpportunityStore ProofSubmissionStore
	GenerateID       func() string
	Now              func() time.Time
}

// ExecuteSubmitProof records a volunteer's completion proof. Resubmission
// after a rejection replaces the active proof: the rejected row is kept for
// audit but superseded, so each volunteer has exactly one active proof.
// PRE: Volunteer is signed up; opportunity is open or in progress
// POST: A pending proof is the volunteer's single active proof
func ExecuteSubmitProof(ctx context.Context, input SubmitProofInput, deps SubmitProofDeps) (oppDomain.Proof, error) {
	if input.OpportunityID == "" {
		return oppDomain.Proof{}, errors.New("opportunity ID is required")
	}
	if input.VolunteerID == "" {
		return oppDomain.Proof{}, oppDomain.ErrEmptyVolunteer
	}

	o, err := deps.OpportunityStore.GetByID(ctx, input.OpportunityID)
	if err != nil {
		return oppDomain.Proof{}, err
	}
	if !o.AcceptsSignups() {
		return oppDomain.Proof{}, oppDomain.ErrOpportunityClosed
	}

	signedUp, err := deps.OpportunityStore.IsSignedUp(ctx, input.OpportunityID, input.VolunteerID)
	if err != nil {
		return oppDomain.Proof{}, err
	}
	if !signedUp {
		return oppDomain.Proof{}, oppDomain.ErrNotSignedUp
	}

	p := oppDomain.Proof{
		ID:            deps.GenerateID(),
		OpportunityID: input.OpportunityID,
		VolunteerID:   input.VolunteerID,
		Message:       input.Message,
		AttachmentRef: input.AttachmentRef,
		Status:        oppDomain.ProofPending,
		SubmittedAt:   deps.Now(),
	}
	if err := p.Validate(); err != nil {
		return oppDomain.Proof{}, err
	}

	if err := deps.OpportunityStore.SubmitProof(ctx, p); err != nil {
		return oppDomain.Proof{}, err
	}

	slog.Info("proof_event", "event", "proof_submitted",
		"proof_id", p.ID, "opportunity_id", p.OpportunityID, "volunteer_id", p.VolunteerID)
	return p, nil
}
