package organization

import (
	"errors"
	"strings"
	"time"
)

// Domain errors
var (
	ErrEmptyName    = errors.New("organization name cannot be empty")
	ErrEmptyEmail   = errors.New("email cannot be empty")
	ErrInvalidEmail = errors.New("email must contain '@'")
	ErrNotFound     = errors.New("organization not found")
)

// Organization posts opportunities and reviews proofs. Opportunities hold a
// back-reference to the organization ID; there is no ownership edge here.
type Organization struct {
	ID        string
	Name      string
	Email     string
	CreatedAt time.Time
}

// Validate checks if the Organization has valid data.
// PRE: Organization struct is populated
// POST: Returns nil if valid, error otherwise
func (o *Organization) Validate() error {
	if strings.TrimSpace(o.Name) == "" {
		return ErrEmptyName
	}
	if strings.TrimSpace(o.Email) == "" {
		return ErrEmptyEmail
	}
	if !strings.Contains(o.Email, "@") {
		return ErrInvalidEmail
	}
	return nil
}
