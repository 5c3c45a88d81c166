package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	oppStorage "volunteerhub/internal/adapters/storage/opportunity"
	"volunteerhub/internal/domain/notification"
	oppDomain "volunteerhub/internal/domain/opportunity"
	"volunteerhub/internal/domain/organization"
	volDomain "volunteerhub/internal/domain/volunteer"
)

// SignupGateStore defines the opportunity store interface needed for signup.
type SignupGateStore interface {
	GetByID(ctx context.Context, id string) (oppDomain.Opportunity, error)
	SignUp(ctx context.Context, opportunityID, volunteerID string, at time.Time) (oppStorage.SignupResult, error)
}

// SignupVolunteerLookup defines the volunteer store interface needed for signup.
type SignupVolunteerLookup interface {
	GetByID(ctx context.Context, id string) (volDomain.Volunteer, error)
}

// SignupOrganizationLookup resolves the owning organization for fanout.
type SignupOrganizationLookup interface {
	GetByID(ctx context.Context, id string) (organization.Organization, error)
}

// SignUpInput carries input for the signup orchestrator.
type SignUpInput struct {
	OpportunityID string
	VolunteerID   string
}

// SignUpResult reports the admission outcome.
type SignUpResult struct {
	OpportunityID string
	Size          int    // signup-set size after admission
	Status        string // opportunity status after any open -> in_progress flip
}

// SignUpDeps holds dependencies for SignUp.
type SignUpDeps struct {
	OpportunityStore  SignupGateStore
	VolunteerStore    SignupVolunteerLookup
	OrganizationStore SignupOrganizationLookup // optional: nil skips org fanout
	Notify            NotifyDeps
	Now               func() time.Time
}

// ExecuteSignUp admits a volunteer to an opportunity. The capacity check is
// atomic in the store: two concurrent signups can never both take the last
// slot, and the opportunity flips open -> in_progress exactly when the set
// fills. The owning organization is notified best-effort after admission.
// PRE: Opportunity and volunteer exist; opportunity accepts signups
// POST: Volunteer is admitted at most once; status reflects the fill level
func ExecuteSignUp(ctx context.Context, input SignUpInput, deps SignUpDeps) (SignUpResult, error) {
	if input.OpportunityID == "" {
		return SignUpResult{}, errors.New("opportunity ID is required")
	}
	if input.VolunteerID == "" {
		return SignUpResult{}, errors.New("volunteer ID is required")
	}

	v, err := deps.VolunteerStore.GetByID(ctx, input.VolunteerID)
	if err != nil {
		return SignUpResult{}, fmt.Errorf("look up volunteer: %w", err)
	}

	res, err := deps.OpportunityStore.SignUp(ctx, input.OpportunityID, input.VolunteerID, deps.Now())
	if err != nil {
		return SignUpResult{}, err
	}

	slog.Info("signup_event", "event", "volunteer_signed_up",
		"opportunity_id", input.OpportunityID, "volunteer_id", input.VolunteerID,
		"size", res.Size, "status", res.Status)

	notifyOrganizationOfSignup(ctx, input.OpportunityID, v, res, deps)

	return SignUpResult{
		OpportunityID: input.OpportunityID,
		Size:          res.Size,
		Status:        res.Status,
	}, nil
}

// notifyOrganizationOfSignup tells the owning organization about a new
// admission. Best-effort: lookup or fanout failures are logged and dropped.
func notifyOrganizationOfSignup(ctx context.Context, opportunityID string, v volDomain.Volunteer, res oppStorage.SignupResult, deps SignUpDeps) {
	if deps.OrganizationStore == nil || deps.Notify.NotificationStore == nil {
		return
	}

	o, err := deps.OpportunityStore.GetByID(ctx, opportunityID)
	if err != nil {
		slog.Warn("signup_event", "event", "org_fanout_lookup_failed", "opportunity_id", opportunityID, "error", err)
		return
	}
	org, err := deps.OrganizationStore.GetByID(ctx, o.OrganizationID)
	if err != nil {
		slog.Warn("signup_event", "event", "org_fanout_lookup_failed", "organization_id", o.OrganizationID, "error", err)
		return
	}

	message := fmt.Sprintf("**%s** signed up for **%s** (%d of %d slots filled).",
		v.Name, o.Title, res.Size, o.CapacityNeeded)
	err = ExecuteNotify(ctx, NotifyInput{
		Recipient:      notification.Recipient{Kind: notification.KindOrganization, ID: org.ID},
		RecipientEmail: org.Email,
		Title:          "New signup: " + o.Title,
		Message:        message,
		Kind:           notification.EventSignup,
		Channel:        notification.ChannelBoth,
	}, deps.Notify)
	if err != nil {
		slog.Warn("signup_event", "event", "org_fanout_failed", "organization_id", org.ID, "error", err)
	}
}
