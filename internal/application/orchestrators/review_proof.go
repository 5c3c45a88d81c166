package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"volunteerhub/internal/domain/notification"
	oppDomain "volunteerhub/internal/domain/opportunity"
)

// ProofReviewStore defines the opportunity store interface needed for proof
// review.
type ProofReviewStore interface {
	GetByID(ctx context.Context, id string) (oppDomain.Opportunity, error)
	ActiveProof(ctx context.Context, opportunityID, volunteerID string) (oppDomain.Proof, error)
	SaveProofReview(ctx context.Context, p oppDomain.Proof) error
}

// ReviewProofInput carries input for the proof review orchestrator.
// OrganizationID is the reviewer; it must own the opportunity.
type ReviewProofInput struct {
	OpportunityID  string
	VolunteerID    string
	OrganizationID string
	Approve        bool
}

// ReviewProofDeps holds dependencies for ReviewProof.
type ReviewProofDeps struct {
	OpportunityStore ProofReviewStore
	VolunteerStore   SignupVolunteerLookup
	Notify           NotifyDeps
	Now              func() time.Time
}

// ExecuteReviewProof approves or rejects a volunteer's active proof. Only
// a pending proof can be reviewed: an approved proof is immutable, a
// rejected one must be resubmitted first. Reviews are refused once the
// opportunity is completed, since the reward pass has already run and a
// late approval could never be rewarded. The volunteer is notified
// best-effort with the outcome.
// PRE: Reviewer owns the opportunity; active proof exists and is pending
// POST: Proof is approved, or rejected with RejectedAt set
func ExecuteReviewProof(ctx context.Context, input ReviewProofInput, deps ReviewProofDeps) (oppDomain.Proof, error) {
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
	if input.OrganizationID != "" && o.OrganizationID != input.OrganizationID {
		return oppDomain.Proof{}, oppDomain.ErrNotOwner
	}
	if o.IsTerminal() {
		return oppDomain.Proof{}, oppDomain.ErrAlreadyCompleted
	}

	p, err := deps.OpportunityStore.ActiveProof(ctx, input.OpportunityID, input.VolunteerID)
	if err != nil {
		return oppDomain.Proof{}, err
	}

	if input.Approve {
		if err := p.Approve(); err != nil {
			return oppDomain.Proof{}, err
		}
	} else {
		if err := p.Reject(deps.Now()); err != nil {
			return oppDomain.Proof{}, err
		}
	}

	if err := deps.OpportunityStore.SaveProofReview(ctx, p); err != nil {
		return oppDomain.Proof{}, err
	}

	slog.Info("proof_event", "event", "proof_reviewed",
		"proof_id", p.ID, "opportunity_id", p.OpportunityID,
		"volunteer_id", p.VolunteerID, "status", p.Status)

	notifyVolunteerOfReview(ctx, o, p, deps)
	return p, nil
}

// notifyVolunteerOfReview tells the volunteer the review outcome.
// Best-effort: failures are logged and dropped.
func notifyVolunteerOfReview(ctx context.Context, o oppDomain.Opportunity, p oppDomain.Proof, deps ReviewProofDeps) {
	if deps.VolunteerStore == nil || deps.Notify.NotificationStore == nil {
		return
	}

	v, err := deps.VolunteerStore.GetByID(ctx, p.VolunteerID)
	if err != nil {
		slog.Warn("proof_event", "event", "review_fanout_lookup_failed", "volunteer_id", p.VolunteerID, "error", err)
		return
	}

	var title, message, kind string
	if p.Status == oppDomain.ProofApproved {
		title = "Proof approved: " + o.Title
		message = "Your completion proof for **" + o.Title + "** was approved. Rewards are issued when the opportunity is marked completed."
		kind = notification.EventProofApproved
	} else {
		title = "Proof rejected: " + o.Title
		message = "Your completion proof for **" + o.Title + "** was rejected. You can submit a new proof, which replaces the rejected one."
		kind = notification.EventProofRejected
	}

	err = ExecuteNotify(ctx, NotifyInput{
		Recipient:      notification.Recipient{Kind: notification.KindVolunteer, ID: v.ID},
		RecipientEmail: v.Email,
		Title:          title,
		Message:        message,
		Kind:           kind,
		Channel:        notification.ChannelBoth,
	}, deps.Notify)
	if err != nil {
		slog.Warn("proof_event", "event", "review_fanout_failed", "volunteer_id", v.ID, "error", err)
	}
}
