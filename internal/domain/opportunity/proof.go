package opportunity

import (
	"errors"
	"time"
)

// Proof statuses
const (
	ProofPending  = "pending"
	ProofApproved = "approved"
	ProofRejected = "rejected"
)

// ValidProofStatuses contains all valid proof statuses.
var ValidProofStatuses = []string{ProofPending, ProofApproved, ProofRejected}

// Proof domain errors
var (
	ErrEmptyProofMessage = errors.New("proof message cannot be empty")
	ErrEmptyVolunteer    = errors.New("volunteer ID is required")
	ErrProofImmutable    = errors.New("an approved proof cannot be changed")
	ErrProofNotPending   = errors.New("only a pending proof can be reviewed")
)

// Proof is volunteer-submitted evidence of task completion. A rejected
// proof is never patched in place: resubmission supersedes it with a fresh
// pending row, so at most one non-superseded proof exists per volunteer.
// Once approved, a proof is immutable.
type Proof struct {
	ID            string
	OpportunityID string
	VolunteerID   string
	Message       string
	AttachmentRef string // reference into the file-storage collaborator, never file bytes
	Status        string // pending, approved, rejected
	SubmittedAt   time.Time
	RejectedAt    time.Time // zero unless status is rejected
	Superseded    bool
}

// Validate checks if the Proof has valid data.
// PRE: Proof struct is populated
// POST: Returns nil if valid, error otherwise
func (p *Proof) Validate() error {
	if p.OpportunityID == "" {
		return errors.New("opportunity ID is required")
	}
	if p.VolunteerID == "" {
		return ErrEmptyVolunteer
	}
	if p.Message == "" {
		return ErrEmptyProofMessage
	}
	if !isValidProofStatus(p.Status) {
		return errors.New("proof status must be one of: pending, approved, rejected")
	}
	if p.SubmittedAt.IsZero() {
		return errors.New("submitted_at must be set")
	}
	return nil
}

// Approve transitions the proof to approved.
// PRE: Status is pending
// POST: Status is approved, RejectedAt stays zero
func (p *Proof) Approve() error {
	if p.Status == ProofApproved {
		return ErrProofImmutable
	}
	if p.Status != ProofPending {
		return ErrProofNotPending
	}
	p.Status = ProofApproved
	return nil
}

// Reject transitions the proof to rejected, recording when.
// The row is retained for audit until a resubmission supersedes it.
// PRE: Status is pending
// POST: Status is rejected, RejectedAt is set
func (p *Proof) Reject(now time.Time) error {
	if p.Status == ProofApproved {
		return ErrProofImmutable
	}
	if p.Status != ProofPending {
		return ErrProofNotPending
	}
	p.Status = ProofRejected
	p.RejectedAt = now
	return nil
}

// CanResubmit returns true if a new proof may replace this one.
// INVARIANT: Proof fields are not mutated
func (p *Proof) CanResubmit() bool {
	return p.Status == ProofRejected
}

func isValidProofStatus(status string) bool {
	for _, s := range ValidProofStatuses {
		if s == status {
			return true
		}
	}
	return false
}
