package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"volunteerhub/internal/domain/account"
	"volunteerhub/internal/domain/organization"
	volDomain "volunteerhub/internal/domain/volunteer"
)

// AccountStoreForRegistration defines the account store interface needed by
// registration.
type AccountStoreForRegistration interface {
	GetByEmail(ctx context.Context, email string) (account.Account, error)
	Save(ctx context.Context, a account.Account) error
}

// VolunteerWriteStore defines the volunteer store interface needed by
// registration.
type VolunteerWriteStore interface {
	GetByEmail(ctx context.Context, email string) (volDomain.Volunteer, error)
	Save(ctx context.Context, v volDomain.Volunteer) error
}

// OrganizationWriteStore defines the organization store interface needed by
// registration.
type OrganizationWriteStore interface {
	GetByEmail(ctx context.Context, email string) (organization.Organization, error)
	Save(ctx context.Context, o organization.Organization) error
}

// ErrEmailTaken is returned when the email already has an account.
var ErrEmailTaken = errors.New("an account with this email already exists")

// RegisterVolunteerInput carries input for volunteer registration.
type RegisterVolunteerInput struct {
	Name     string
	Email    string
	Password string
}

// RegisterVolunteerDeps holds dependencies for RegisterVolunteer.
type RegisterVolunteerDeps struct {
	AccountStore   AccountStoreForRegistration
	VolunteerStore VolunteerWriteStore
	GenerateID     func() string
	Now            func() time.Time
}

// ExecuteRegisterVolunteer creates a volunteer with a linked login account.
// PRE: Email not already registered; password meets the length policy
// POST: Volunteer row exists with zero counters; account role is volunteer
func ExecuteRegisterVolunteer(ctx context.Context, input RegisterVolunteerInput, deps RegisterVolunteerDeps) (volDomain.Volunteer, error) {
	if _, err := deps.AccountStore.GetByEmail(ctx, input.Email); err == nil {
		return volDomain.Volunteer{}, ErrEmailTaken
	} else if !errors.Is(err, account.ErrNotFound) {
		return volDomain.Volunteer{}, err
	}

	now := deps.Now()
	v := volDomain.Volunteer{
		ID:        deps.GenerateID(),
		Name:      input.Name,
		Email:     input.Email,
		CreatedAt: now,
	}
	if err := v.Validate(); err != nil {
		return volDomain.Volunteer{}, err
	}

	acct := account.Account{
		ID:        deps.GenerateID(),
		Email:     input.Email,
		Role:      account.RoleVolunteer,
		SubjectID: v.ID,
		CreatedAt: now,
	}
	if err := acct.SetPassword(input.Password); err != nil {
		return volDomain.Volunteer{}, err
	}
	if err := acct.Validate(); err != nil {
		return volDomain.Volunteer{}, err
	}

	if err := deps.VolunteerStore.Save(ctx, v); err != nil {
		return volDomain.Volunteer{}, err
	}
	if err := deps.AccountStore.Save(ctx, acct); err != nil {
		return volDomain.Volunteer{}, err
	}

	slog.Info("registration_event", "event", "volunteer_registered", "volunteer_id", v.ID, "email", v.Email)
	return v, nil
}

// RegisterOrganizationInput carries input for organization registration.
type RegisterOrganizationInput struct {
	Name     string
	Email    string
	Password string
}

// RegisterOrganizationDeps holds dependencies for RegisterOrganization.
type RegisterOrganizationDeps struct {
	AccountStore      AccountStoreForRegistration
	OrganizationStore OrganizationWriteStore
	GenerateID        func() string
	Now               func() time.Time
}

// ExecuteRegisterOrganization creates an organization with a linked login
// account.
// PRE: Email not already registered; password meets the length policy
// POST: Organization row exists; account role is organization
func ExecuteRegisterOrganization(ctx context.Context, input RegisterOrganizationInput, deps RegisterOrganizationDeps) (organization.Organization, error) {
	if _, err := deps.AccountStore.GetByEmail(ctx, input.Email); err == nil {
		return organization.Organization{}, ErrEmailTaken
	} else if !errors.Is(err, account.ErrNotFound) {
		return organization.Organization{}, err
	}

	now := deps.Now()
	org := organization.Organization{
		ID:        deps.GenerateID(),
		Name:      input.Name,
		Email:     input.Email,
		CreatedAt: now,
	}
	if err := org.Validate(); err != nil {
		return organization.Organization{}, err
	}

	acct := account.Account{
		ID:        deps.GenerateID(),
		Email:     input.Email,
		Role:      account.RoleOrganization,
		SubjectID: org.ID,
		CreatedAt: now,
	}
	if err := acct.SetPassword(input.Password); err != nil {
		return organization.Organization{}, err
	}
	if err := acct.Validate(); err != nil {
		return organization.Organization{}, err
	}

	if err := deps.OrganizationStore.Save(ctx, org); err != nil {
		return organization.Organization{}, err
	}
	if err := deps.AccountStore.Save(ctx, acct); err != nil {
		return organization.Organization{}, err
	}

	slog.Info("registration_event", "event", "organization_registered", "organization_id", org.ID, "email", org.Email)
	return org, nil
}
