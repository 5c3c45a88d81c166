package projections

import (
	"context"

	domainOpportunity "volunteerhub/internal/domain/opportunity"
)

// ListOpportunitiesQuery carries query parameters. Exactly one of Status or
// OrganizationID selects the listing; both empty lists open opportunities.
type ListOpportunitiesQuery struct {
	Status         string
	OrganizationID string
}

// OpportunityListItem is one row of the listing with its fill level.
type OpportunityListItem struct {
	Opportunity domainOpportunity.Opportunity
	SignupCount int
}

// ListOpportunitiesResult carries the query result.
type ListOpportunitiesResult struct {
	Items []OpportunityListItem
}

// ListOpportunitiesDeps holds dependencies for ListOpportunities.
type ListOpportunitiesDeps struct {
	OpportunityStore OpportunityStore
}

// QueryListOpportunities lists opportunities with their signup counts,
// newest first. An organization listing includes every status; a status
// listing shows one lifecycle slice.
// POST: Returns the listing; empty slice when nothing matches
func QueryListOpportunities(ctx context.Context, query ListOpportunitiesQuery, deps ListOpportunitiesDeps) (ListOpportunitiesResult, error) {
	var (
		opps []domainOpportunity.Opportunity
		err  error
	)
	switch {
	case query.OrganizationID != "":
		opps, err = deps.OpportunityStore.ListByOrganization(ctx, query.OrganizationID)
	case query.Status != "":
		opps, err = deps.OpportunityStore.ListByStatus(ctx, query.Status)
	default:
		opps, err = deps.OpportunityStore.ListByStatus(ctx, domainOpportunity.StatusOpen)
	}
	if err != nil {
		return ListOpportunitiesResult{}, err
	}

	items := make([]OpportunityListItem, 0, len(opps))
	for _, o := range opps {
		signups, err := deps.OpportunityStore.Signups(ctx, o.ID)
		if err != nil {
			return ListOpportunitiesResult{}, err
		}
		items = append(items, OpportunityListItem{Opportunity: o, SignupCount: len(signups)})
	}

	return ListOpportunitiesResult{Items: items}, nil
}
