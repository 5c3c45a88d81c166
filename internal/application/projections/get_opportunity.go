package projections

import (
	"context"
	"time"

	domainOpportunity "volunteerhub/internal/domain/opportunity"
)

// GetOpportunityQuery carries query parameters. IncludeProofs expands each
// signup with its active proof; the listing for volunteers leaves it off.
type GetOpportunityQuery struct {
	OpportunityID string
	IncludeProofs bool
}

// SignupView is one admitted volunteer, expanded from the id-normalized
// signup row for display.
type SignupView struct {
	VolunteerID   string
	VolunteerName string
	SignedUpAt    time.Time
	ProofStatus   string // empty when no active proof or proofs not requested
	ProofID       string
	ProofMessage  string
	AttachmentRef string
}

// GetOpportunityResult carries the query result.
type GetOpportunityResult struct {
	Opportunity      domainOpportunity.Opportunity
	OrganizationName string
	Signups          []SignupView
}

// GetOpportunityDeps holds dependencies for GetOpportunity.
type GetOpportunityDeps struct {
	OpportunityStore  OpportunityStore
	VolunteerStore    VolunteerStore
	OrganizationStore OrganizationStore // optional: nil skips the name lookup
}

// QueryGetOpportunity retrieves one opportunity with its signup roster and,
// when requested, each volunteer's active proof.
// PRE: Valid opportunity ID
// POST: Returns the detail; signups in admission order
func QueryGetOpportunity(ctx context.Context, query GetOpportunityQuery, deps GetOpportunityDeps) (GetOpportunityResult, error) {
	o, err := deps.OpportunityStore.GetByID(ctx, query.OpportunityID)
	if err != nil {
		return GetOpportunityResult{}, err
	}

	result := GetOpportunityResult{Opportunity: o}

	if deps.OrganizationStore != nil {
		if org, err := deps.OrganizationStore.GetByID(ctx, o.OrganizationID); err == nil {
			result.OrganizationName = org.Name
		}
	}

	signups, err := deps.OpportunityStore.Signups(ctx, query.OpportunityID)
	if err != nil {
		return GetOpportunityResult{}, err
	}

	proofByVolunteer := map[string]domainOpportunity.Proof{}
	if query.IncludeProofs {
		proofs, err := deps.OpportunityStore.ActiveProofs(ctx, query.OpportunityID)
		if err != nil {
			return GetOpportunityResult{}, err
		}
		for _, p := range proofs {
			proofByVolunteer[p.VolunteerID] = p
		}
	}

	views := make([]SignupView, 0, len(signups))
	for _, s := range signups {
		view := SignupView{VolunteerID: s.VolunteerID, SignedUpAt: s.SignedUpAt}
		if v, err := deps.VolunteerStore.GetByID(ctx, s.VolunteerID); err == nil {
			view.VolunteerName = v.Name
		}
		if p, ok := proofByVolunteer[s.VolunteerID]; ok {
			view.ProofStatus = p.Status
			view.ProofID = p.ID
			view.ProofMessage = p.Message
			view.AttachmentRef = p.AttachmentRef
		}
		views = append(views, view)
	}
	result.Signups = views

	return result, nil
}
