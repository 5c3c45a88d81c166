package projections

import (
	"context"

	domainVolunteer "volunteerhub/internal/domain/volunteer"
)

// GetVolunteerProfileQuery carries query parameters.
type GetVolunteerProfileQuery struct {
	VolunteerID string
}

// GetVolunteerProfileResult carries the query result.
type GetVolunteerProfileResult struct {
	VolunteerID    string
	Name           string
	Email          string
	Points         int
	CompletedTasks int
	Badges         []domainVolunteer.Badge
}

// GetVolunteerProfileDeps holds dependencies for GetVolunteerProfile.
type GetVolunteerProfileDeps struct {
	VolunteerStore VolunteerStore
}

// QueryGetVolunteerProfile retrieves a volunteer's reward standing.
// PRE: Valid volunteer ID
// POST: Returns points, completed count, and earned badges
func QueryGetVolunteerProfile(ctx context.Context, query GetVolunteerProfileQuery, deps GetVolunteerProfileDeps) (GetVolunteerProfileResult, error) {
	v, err := deps.VolunteerStore.GetByID(ctx, query.VolunteerID)
	if err != nil {
		return GetVolunteerProfileResult{}, err
	}

	badges, err := deps.VolunteerStore.Badges(ctx, query.VolunteerID)
	if err != nil {
		return GetVolunteerProfileResult{}, err
	}
	if badges == nil {
		badges = []domainVolunteer.Badge{}
	}

	return GetVolunteerProfileResult{
		VolunteerID:    v.ID,
		Name:           v.Name,
		Email:          v.Email,
		Points:         v.Points,
		CompletedTasks: v.CompletedTasks,
		Badges:         badges,
	}, nil
}
