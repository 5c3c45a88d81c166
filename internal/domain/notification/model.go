package notification

import (
	"errors"
	"time"
)

// Recipient kinds
const (
	KindVolunteer    = "volunteer"
	KindOrganization = "organization"
	KindAdmin        = "admin"
)

// ValidRecipientKinds contains all valid recipient kinds.
var ValidRecipientKinds = []string{KindVolunteer, KindOrganization, KindAdmin}

// Channels
const (
	ChannelInApp = "in_app"
	ChannelEmail = "email"
	ChannelBoth  = "both"
)

// ValidChannels contains all valid delivery channels.
var ValidChannels = []string{ChannelInApp, ChannelEmail, ChannelBoth}

// Event kinds carried in Notification.Kind.
const (
	EventSignup        = "signup"
	EventProofApproved = "proof_approved"
	EventProofRejected = "proof_rejected"
	EventReward        = "reward"
	EventBadge         = "badge"
	EventCompleted     = "opportunity_completed"
)

// Domain errors
var (
	ErrEmptyRecipient       = errors.New("recipient ID is required")
	ErrInvalidRecipientKind = errors.New("recipient kind must be one of: volunteer, organization, admin")
	ErrInvalidChannel       = errors.New("channel must be one of: in_app, email, both")
	ErrEmptyTitle           = errors.New("notification title cannot be empty")
	ErrEmptyMessage         = errors.New("notification message cannot be empty")
	ErrNotFound             = errors.New("notification not found")
)

// Recipient is a tagged (kind, id) pair identifying who receives a record.
type Recipient struct {
	Kind string // volunteer, organization, admin
	ID   string
}

// Validate checks if the Recipient has valid data.
// PRE: Recipient struct is populated
// POST: Returns nil if valid, error otherwise
func (r Recipient) Validate() error {
	if r.ID == "" {
		return ErrEmptyRecipient
	}
	if !isValidRecipientKind(r.Kind) {
		return ErrInvalidRecipientKind
	}
	return nil
}

// Notification is one persisted delivery record. The email channel writes a
// second, separate record marked already-read so the email-audit tab stays
// apart from the in-app feed; the two are never merged.
type Notification struct {
	ID            string
	RecipientKind string // volunteer, organization, admin
	RecipientID   string
	Title         string
	Message       string // Markdown content
	Kind          string // event kind, e.g. proof_approved
	Channel       string // in_app or email; the fan-out value "both" never persists
	IsRead        bool
	CreatedAt     time.Time
}

// Recipient returns the typed recipient for this record.
// INVARIANT: Notification fields are not mutated
func (n *Notification) Recipient() Recipient {
	return Recipient{Kind: n.RecipientKind, ID: n.RecipientID}
}

// Validate checks if the Notification has valid data.
// PRE: Notification struct is populated
// POST: Returns nil if valid, error otherwise
func (n *Notification) Validate() error {
	if err := n.Recipient().Validate(); err != nil {
		return err
	}
	if n.Title == "" {
		return ErrEmptyTitle
	}
	if n.Message == "" {
		return ErrEmptyMessage
	}
	if n.Channel != ChannelInApp && n.Channel != ChannelEmail {
		return ErrInvalidChannel
	}
	if n.CreatedAt.IsZero() {
		return errors.New("created_at must be set")
	}
	return nil
}

func isValidRecipientKind(kind string) bool {
	for _, k := range ValidRecipientKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// IsValidChannel reports whether channel is a valid requested channel,
// including the fan-out value "both".
func IsValidChannel(channel string) bool {
	for _, c := range ValidChannels {
		if c == channel {
			return true
		}
	}
	return false
}
