package opportunity

import (
	"errors"
	"time"
)

// Opportunity statuses
const (
	StatusOpen       = "open"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusClosed     = "closed"
	StatusSuspended  = "suspended"
)

// ValidStatuses contains all valid opportunity statuses.
var ValidStatuses = []string{StatusOpen, StatusInProgress, StatusCompleted, StatusClosed, StatusSuspended}

// Max length constants for user-editable fields.
const (
	MaxTitleLength = 140
)

// Domain errors
var (
	ErrEmptyTitle        = errors.New("opportunity title cannot be empty")
	ErrEmptyOrganization = errors.New("organization ID is required")
	ErrZeroCapacity      = errors.New("capacity must be at least 1")
	ErrInvalidStatus     = errors.New("status must be one of: open, in_progress, completed, closed, suspended")

	ErrNotFound            = errors.New("opportunity not found")
	ErrAlreadySignedUp     = errors.New("volunteer is already signed up")
	ErrOpportunityClosed   = errors.New("opportunity is not accepting signups")
	ErrOpportunityFull     = errors.New("opportunity has no remaining slots")
	ErrNotSignedUp         = errors.New("volunteer is not signed up for this opportunity")
	ErrDuplicateSubmission = errors.New("an active proof already exists for this volunteer")
	ErrProofNotFound       = errors.New("no proof found for this volunteer")
	ErrNoApprovedProofs    = errors.New("opportunity has no approved proofs")
	ErrAlreadyCompleted    = errors.New("opportunity is already completed")
	ErrNotOwner            = errors.New("opportunity belongs to a different organization")
	ErrContention          = errors.New("write conflict, retry the operation")
)

// Opportunity represents a posted, capacity-bounded volunteer task.
// Signups and proofs are stored as separate rows keyed by volunteer ID;
// the organization is a back-reference, never an ownership edge.
type Opportunity struct {
	ID             string
	OrganizationID string
	Title          string
	Description    string
	CapacityNeeded int
	Status         string // open, in_progress, completed, closed, suspended
	ForcedComplete bool
	CreatedAt      time.Time
}

// Signup records one volunteer's admission to an opportunity.
type Signup struct {
	OpportunityID string
	VolunteerID   string
	SignedUpAt    time.Time
}

// Validate checks if the Opportunity has valid data.
// PRE: Opportunity struct is populated
// POST: Returns nil if valid, error otherwise
func (o *Opportunity) Validate() error {
	if o.Title == "" {
		return ErrEmptyTitle
	}
	if len(o.Title) > MaxTitleLength {
		return errors.New("title cannot exceed 140 characters")
	}
	if o.OrganizationID == "" {
		return ErrEmptyOrganization
	}
	if o.CapacityNeeded < 1 {
		return ErrZeroCapacity
	}
	if !isValidStatus(o.Status) {
		return ErrInvalidStatus
	}
	return nil
}

// AcceptsSignups returns true if the status allows new signups.
// Capacity is checked separately, at admission time.
// INVARIANT: Opportunity fields are not mutated
func (o *Opportunity) AcceptsSignups() bool {
	return o.Status == StatusOpen || o.Status == StatusInProgress
}

// IsTerminal returns true once the opportunity has been completed.
// Status moves forward only: open -> in_progress -> completed, with
// closed and suspended reachable as side transitions.
// INVARIANT: Opportunity fields are not mutated
func (o *Opportunity) IsTerminal() bool {
	return o.Status == StatusCompleted
}

// CanComplete returns true if the opportunity may transition to completed.
// PRE: Status field is set
// POST: Returns true for open or in_progress
func (o *Opportunity) CanComplete() bool {
	return o.Status == StatusOpen || o.Status == StatusInProgress
}

// CanForceComplete returns true if an administrative override may complete
// the opportunity. Unlike CanComplete, suspended and closed opportunities
// qualify; only an already-completed one does not.
// INVARIANT: Opportunity fields are not mutated
func (o *Opportunity) CanForceComplete() bool {
	return o.Status != StatusCompleted
}

func isValidStatus(status string) bool {
	for _, s := range ValidStatuses {
		if s == status {
			return true
		}
	}
	return false
}
