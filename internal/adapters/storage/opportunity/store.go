package opportunity

import (
	"context"
	"time"

	domain "volunteerhub/internal/domain/opportunity"
)

// SignupResult reports the outcome of an admission.
type SignupResult struct {
	Size   int    // signup-set size after the insert
	Status string // opportunity status after any open -> in_progress flip
}

// Store persists Opportunity state together with its signup and proof rows.
// The mutating methods carry the atomicity contract: each one is a single
// conditional statement or transaction, so concurrent callers can never
// over-admit, double-submit, or complete twice.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Opportunity, error)
	Save(ctx context.Context, o domain.Opportunity) error
	ListByStatus(ctx context.Context, status string) ([]domain.Opportunity, error)
	ListByOrganization(ctx context.Context, organizationID string) ([]domain.Opportunity, error)

	// SignUp atomically admits a volunteer: the capacity and membership
	// checks are re-evaluated at commit time inside the same transaction
	// that inserts the row.
	SignUp(ctx context.Context, opportunityID, volunteerID string, at time.Time) (SignupResult, error)
	Signups(ctx context.Context, opportunityID string) ([]domain.Signup, error)
	IsSignedUp(ctx context.Context, opportunityID, volunteerID string) (bool, error)

	// SubmitProof supersedes a rejected proof (if any) and inserts the new
	// pending one in a single transaction, keeping exactly one active proof
	// per volunteer.
	SubmitProof(ctx context.Context, p domain.Proof) error
	ActiveProof(ctx context.Context, opportunityID, volunteerID string) (domain.Proof, error)
	ActiveProofs(ctx context.Context, opportunityID string) ([]domain.Proof, error)
	// SaveProofReview persists a reviewed proof, guarded so it only lands
	// on the still-active, still-pending row.
	SaveProofReview(ctx context.Context, p domain.Proof) error
	ApprovedVolunteers(ctx context.Context, opportunityID string) ([]string, error)

	// Complete moves the opportunity to completed via a conditional update.
	// With forced=false only open/in_progress qualify; with forced=true any
	// non-completed status does.
	Complete(ctx context.Context, opportunityID string, forced bool) error
	// Close moves a non-terminal opportunity to closed.
	Close(ctx context.Context, opportunityID string) error
}
