package orchestrators

import (
	"context"
	"errors"
	"testing"
	"time"

	"volunteerhub/internal/domain/account"
)

func seededAccountStore(t *testing.T) *mockAccountStore {
	t.Helper()
	store := newMockAccountStore()
	acct := account.Account{
		ID:        "acct-1",
		Email:     "ari@example.com",
		Role:      account.RoleVolunteer,
		SubjectID: "vol-1",
	}
	if err := acct.SetPassword("a-long-enough-password"); err != nil {
		t.Fatalf("set password: %v", err)
	}
	store.accounts[acct.Email] = acct
	return store
}

// TestExecuteLogin_Valid tests a successful login.
func TestExecuteLogin_Valid(t *testing.T) {
	store := seededAccountStore(t)
	res, err := ExecuteLogin(context.Background(), LoginInput{
		Email:    "ari@example.com",
		Password: "a-long-enough-password",
	}, LoginDeps{AccountStore: store})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Role != account.RoleVolunteer {
		t.Errorf("expected role=volunteer, got %s", res.Role)
	}
	if res.SubjectID != "vol-1" {
		t.Errorf("expected SubjectID=vol-1, got %s", res.SubjectID)
	}
}

// TestExecuteLogin_WrongPassword tests the failure path and the counter.
func TestExecuteLogin_WrongPassword(t *testing.T) {
	store := seededAccountStore(t)
	_, err := ExecuteLogin(context.Background(), LoginInput{
		Email:    "ari@example.com",
		Password: "wrong-password-entirely",
	}, LoginDeps{AccountStore: store})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
	if store.accounts["ari@example.com"].FailedLogins != 1 {
		t.Errorf("expected 1 failed login, got %d", store.accounts["ari@example.com"].FailedLogins)
	}
}

// TestExecuteLogin_UnknownEmail tests that unknown emails look like bad
// credentials.
func TestExecuteLogin_UnknownEmail(t *testing.T) {
	_, err := ExecuteLogin(context.Background(), LoginInput{
		Email:    "ghost@example.com",
		Password: "whatever-password",
	}, LoginDeps{AccountStore: newMockAccountStore()})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

// TestExecuteLogin_Lockout tests that five failures lock the account.
func TestExecuteLogin_Lockout(t *testing.T) {
	store := seededAccountStore(t)
	for i := 0; i < 5; i++ {
		_, _ = ExecuteLogin(context.Background(), LoginInput{
			Email:    "ari@example.com",
			Password: "wrong-password-entirely",
		}, LoginDeps{AccountStore: store})
	}

	_, err := ExecuteLogin(context.Background(), LoginInput{
		Email:    "ari@example.com",
		Password: "a-long-enough-password",
	}, LoginDeps{AccountStore: store})
	if !errors.Is(err, ErrAccountLocked) {
		t.Errorf("expected ErrAccountLocked, got %v", err)
	}
}

// TestExecuteLogin_ResetsFailuresOnSuccess tests the counter reset.
func TestExecuteLogin_ResetsFailuresOnSuccess(t *testing.T) {
	store := seededAccountStore(t)
	for i := 0; i < 3; i++ {
		_, _ = ExecuteLogin(context.Background(), LoginInput{
			Email:    "ari@example.com",
			Password: "wrong-password-entirely",
		}, LoginDeps{AccountStore: store})
	}

	_, err := ExecuteLogin(context.Background(), LoginInput{
		Email:    "ari@example.com",
		Password: "a-long-enough-password",
	}, LoginDeps{AccountStore: store})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	acct := store.accounts["ari@example.com"]
	if acct.FailedLogins != 0 || !acct.LockedUntil.Equal(time.Time{}) {
		t.Errorf("expected reset counters, got failed=%d locked=%v", acct.FailedLogins, acct.LockedUntil)
	}
}
