package volunteer

import (
	"context"

	domain "volunteerhub/internal/domain/volunteer"
)

// Store persists Volunteer reward state. The volunteer row is its own unit
// of consistency: two organizations can reward the same volunteer
// concurrently, so the mutating methods use atomic increments and a
// conditional badge append, never read-modify-write.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Volunteer, error)
	GetByEmail(ctx context.Context, email string) (domain.Volunteer, error)
	Save(ctx context.Context, v domain.Volunteer) error

	// IncrementCompleted atomically bumps completed_tasks and returns the
	// new value.
	IncrementCompleted(ctx context.Context, id string) (int, error)
	// AddPoints atomically adds points to the volunteer.
	AddPoints(ctx context.Context, id string, points int) error
	// AddBadge appends a badge if the name is not already held; reports
	// whether the insert happened.
	AddBadge(ctx context.Context, b domain.Badge) (bool, error)
	Badges(ctx context.Context, volunteerID string) ([]domain.Badge, error)
}
