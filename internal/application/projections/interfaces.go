package projections

import (
	"context"

	domainNotification "volunteerhub/internal/domain/notification"
	domainOpportunity "volunteerhub/internal/domain/opportunity"
	domainOrganization "volunteerhub/internal/domain/organization"
	domainVolunteer "volunteerhub/internal/domain/volunteer"
)

// OpportunityStore interface for opportunity queries.
type OpportunityStore interface {
	GetByID(ctx context.Context, id string) (domainOpportunity.Opportunity, error)
	ListByStatus(ctx context.Context, status string) ([]domainOpportunity.Opportunity, error)
	ListByOrganization(ctx context.Context, organizationID string) ([]domainOpportunity.Opportunity, error)
	Signups(ctx context.Context, opportunityID string) ([]domainOpportunity.Signup, error)
	ActiveProofs(ctx context.Context, opportunityID string) ([]domainOpportunity.Proof, error)
}

// VolunteerStore interface for volunteer queries.
type VolunteerStore interface {
	GetByID(ctx context.Context, id string) (domainVolunteer.Volunteer, error)
	Badges(ctx context.Context, volunteerID string) ([]domainVolunteer.Badge, error)
}

// OrganizationStore interface for organization queries.
type OrganizationStore interface {
	GetByID(ctx context.Context, id string) (domainOrganization.Organization, error)
}

// NotificationStore interface for notification queries.
type NotificationStore interface {
	ListByRecipient(ctx context.Context, r domainNotification.Recipient, channel string) ([]domainNotification.Notification, error)
	UnreadCount(ctx context.Context, r domainNotification.Recipient) (int, error)
}
