package volunteer

import (
	"errors"
	"strings"
	"time"
)

// Max length constants for user-editable fields.
const (
	MaxNameLength  = 100
	MaxEmailLength = 254
)

// Domain errors
var (
	ErrEmptyName     = errors.New("volunteer name cannot be empty")
	ErrEmptyEmail    = errors.New("email cannot be empty")
	ErrInvalidEmail  = errors.New("email must contain '@'")
	ErrNotFound      = errors.New("volunteer not found")
	ErrNegativeCount = errors.New("counters cannot be negative")
)

// Volunteer holds the reward-bearing state for a volunteer.
// Points and CompletedTasks only ever grow; the badge set never
// shrinks and holds each badge name at most once.
type Volunteer struct {
	ID             string
	Name           string
	Email          string
	Points         int
	CompletedTasks int
	CreatedAt      time.Time
}

// Badge is one earned badge, unique per (volunteer, name).
type Badge struct {
	VolunteerID string
	Name        string
	Description string
	BonusPoints int
	EarnedAt    time.Time
}

// Validate checks if the Volunteer has valid data.
// PRE: Volunteer struct is populated
// POST: Returns nil if valid, error otherwise
func (v *Volunteer) Validate() error {
	if strings.TrimSpace(v.Name) == "" {
		return ErrEmptyName
	}
	if len(v.Name) > MaxNameLength {
		return errors.New("name cannot exceed 100 characters")
	}
	if strings.TrimSpace(v.Email) == "" {
		return ErrEmptyEmail
	}
	if len(v.Email) > MaxEmailLength {
		return errors.New("email cannot exceed 254 characters")
	}
	if !strings.Contains(v.Email, "@") {
		return ErrInvalidEmail
	}
	if v.Points < 0 || v.CompletedTasks < 0 {
		return ErrNegativeCount
	}
	return nil
}

// Validate checks if the Badge has valid data.
// PRE: Badge struct is populated
// POST: Returns nil if valid, error otherwise
func (b *Badge) Validate() error {
	if b.VolunteerID == "" {
		return errors.New("volunteer ID is required")
	}
	if b.Name == "" {
		return errors.New("badge name cannot be empty")
	}
	if b.EarnedAt.IsZero() {
		return errors.New("earned_at must be set")
	}
	return nil
}
