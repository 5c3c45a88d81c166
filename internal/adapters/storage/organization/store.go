package organization

import (
	"context"

	domain "volunteerhub/internal/domain/organization"
)

// Store persists Organization state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Organization, error)
	GetByEmail(ctx context.Context, email string) (domain.Organization, error)
	Save(ctx context.Context, o domain.Organization) error
}
