package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	oppDomain "volunteerhub/internal/domain/opportunity"
	"volunteerhub/internal/domain/organization"
)

// OpportunityWriteStore defines the opportunity store interface needed for
// posting and closing.
type OpportunityWriteStore interface {
	GetByID(ctx context.Context, id string) (oppDomain.Opportunity, error)
	Save(ctx context.Context, o oppDomain.Opportunity) error
	Close(ctx context.Context, opportunityID string) error
}

// OrganizationLookup resolves the posting organization.
type OrganizationLookup interface {
	GetByID(ctx context.Context, id string) (organization.Organization, error)
}

// CreateOpportunityInput carries input for posting an opportunity.
type CreateOpportunityInput struct {
	OrganizationID string
	Title          string
	Description    string
	CapacityNeeded int
}

// CreateOpportunityDeps holds dependencies for CreateOpportunity.
type CreateOpportunityDeps struct {
	OpportunityStore  OpportunityWriteStore
	OrganizationStore OrganizationLookup
	GenerateID        func() string
	Now               func() time.Time
}

// ExecuteCreateOpportunity posts a new opportunity in open status.
// PRE: Organization exists; title non-empty; capacity >= 1
// POST: Opportunity persisted with status open
func ExecuteCreateOpportunity(ctx context.Context, input CreateOpportunityInput, deps CreateOpportunityDeps) (oppDomain.Opportunity, error) {
	if input.OrganizationID == "" {
		return oppDomain.Opportunity{}, oppDomain.ErrEmptyOrganization
	}

	if _, err := deps.OrganizationStore.GetByID(ctx, input.OrganizationID); err != nil {
		return oppDomain.Opportunity{}, err
	}

	o := oppDomain.Opportunity{
		ID:             deps.GenerateID(),
		OrganizationID: input.OrganizationID,
		Title:          input.Title,
		Description:    input.Description,
		CapacityNeeded: input.CapacityNeeded,
		Status:         oppDomain.StatusOpen,
		CreatedAt:      deps.Now(),
	}
	if err := o.Validate(); err != nil {
		return oppDomain.Opportunity{}, err
	}

	if err := deps.OpportunityStore.Save(ctx, o); err != nil {
		return oppDomain.Opportunity{}, err
	}

	slog.Info("opportunity_event", "event", "opportunity_created",
		"opportunity_id", o.ID, "organization_id", o.OrganizationID, "capacity", o.CapacityNeeded)
	return o, nil
}

// CloseOpportunityInput carries input for closing an opportunity.
type CloseOpportunityInput struct {
	OpportunityID  string
	OrganizationID string // empty skips the ownership check (admin path)
}

// CloseOpportunityDeps holds dependencies for CloseOpportunity.
type CloseOpportunityDeps struct {
	OpportunityStore OpportunityWriteStore
}

// ExecuteCloseOpportunity withdraws an opportunity from signup. Closing
// issues no rewards; a completed opportunity cannot be closed.
// PRE: Opportunity exists and is open or in progress
// POST: Status is closed
func ExecuteCloseOpportunity(ctx context.Context, input CloseOpportunityInput, deps CloseOpportunityDeps) error {
	if input.OpportunityID == "" {
		return errors.New("opportunity ID is required")
	}

	o, err := deps.OpportunityStore.GetByID(ctx, input.OpportunityID)
	if err != nil {
		return err
	}
	if input.OrganizationID != "" && o.OrganizationID != input.OrganizationID {
		return oppDomain.ErrNotOwner
	}

	if err := deps.OpportunityStore.Close(ctx, input.OpportunityID); err != nil {
		return err
	}

	slog.Info("opportunity_event", "event", "opportunity_closed", "opportunity_id", input.OpportunityID)
	return nil
}
