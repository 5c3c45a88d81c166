package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"volunteerhub/internal/domain/account"
)

// SeedAdminInput carries the bootstrap admin credentials.
type SeedAdminInput struct {
	Email    string
	Password string
}

// SeedAdminDeps holds dependencies for SeedAdmin.
type SeedAdminDeps struct {
	AccountStore AccountStoreForRegistration
	GenerateID   func() string
	Now          func() time.Time
}

// ExecuteSeedAdmin creates the bootstrap admin account at startup if it does
// not already exist. Safe to run on every start.
// PRE: Email and password are configured
// POST: Exactly one admin account exists for the email
func ExecuteSeedAdmin(ctx context.Context, input SeedAdminInput, deps SeedAdminDeps) error {
	if input.Email == "" || input.Password == "" {
		slog.Warn("seed_event", "event", "admin_seed_skipped", "reason", "no credentials configured")
		return nil
	}

	if _, err := deps.AccountStore.GetByEmail(ctx, input.Email); err == nil {
		return nil
	} else if !errors.Is(err, account.ErrNotFound) {
		return err
	}

	acct := account.Account{
		ID:        deps.GenerateID(),
		Email:     input.Email,
		Role:      account.RoleAdmin,
		CreatedAt: deps.Now(),
	}
	if err := acct.SetPassword(input.Password); err != nil {
		return err
	}
	if err := acct.Validate(); err != nil {
		return err
	}

	if err := deps.AccountStore.Save(ctx, acct); err != nil {
		return err
	}

	slog.Info("seed_event", "event", "admin_seeded", "email", input.Email)
	return nil
}
