package account_test

import (
	"testing"
	"time"

	"volunteerhub/internal/domain/account"
)

// TestAccount_Validate tests validation of Account.
func TestAccount_Validate(t *testing.T) {
	tests := []struct {
		name    string
		acct    account.Account
		wantErr bool
	}{
		{
			name:    "valid volunteer account",
			acct:    account.Account{ID: "1", Email: "v@example.org", Role: account.RoleVolunteer, SubjectID: "vol-1"},
			wantErr: false,
		},
		{
			name:    "valid admin account without subject",
			acct:    account.Account{ID: "2", Email: "admin@example.org", Role: account.RoleAdmin},
			wantErr: false,
		},
		{
			name:    "empty email",
			acct:    account.Account{ID: "3", Role: account.RoleVolunteer},
			wantErr: true,
		},
		{
			name:    "email without at sign",
			acct:    account.Account{ID: "4", Email: "not-an-email", Role: account.RoleVolunteer},
			wantErr: true,
		},
		{
			name:    "invalid role",
			acct:    account.Account{ID: "5", Email: "v@example.org", Role: "coach"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.acct.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// TestAccount_PasswordRoundTrip tests hashing and verification.
func TestAccount_PasswordRoundTrip(t *testing.T) {
	a := account.Account{Email: "v@example.org", Role: account.RoleVolunteer}

	if err := a.SetPassword("short"); err != account.ErrPasswordTooShort {
		t.Errorf("SetPassword(short) = %v, want ErrPasswordTooShort", err)
	}
	if err := a.SetPassword(""); err != account.ErrEmptyPassword {
		t.Errorf("SetPassword(empty) = %v, want ErrEmptyPassword", err)
	}

	if err := a.SetPassword("a long enough password"); err != nil {
		t.Fatalf("SetPassword: %v", err)
	}
	if err := a.CheckPassword("a long enough password"); err != nil {
		t.Errorf("CheckPassword with correct password: %v", err)
	}
	if err := a.CheckPassword("wrong password here"); err != account.ErrWrongPassword {
		t.Errorf("CheckPassword with wrong password = %v, want ErrWrongPassword", err)
	}
}

// TestAccount_Lockout tests the failed-login lockout behavior.
func TestAccount_Lockout(t *testing.T) {
	a := account.Account{Email: "v@example.org", Role: account.RoleVolunteer}

	for i := 0; i < 4; i++ {
		a.RecordFailedLogin()
	}
	if a.IsLocked() {
		t.Error("account locked after 4 failures, want unlocked")
	}

	a.RecordFailedLogin()
	if !a.IsLocked() {
		t.Error("account not locked after 5 failures")
	}

	a.ResetFailedLogins()
	if a.IsLocked() {
		t.Error("account still locked after reset")
	}
	if a.FailedLogins != 0 {
		t.Errorf("FailedLogins = %d after reset, want 0", a.FailedLogins)
	}
	if !a.LockedUntil.Equal(time.Time{}) {
		t.Errorf("LockedUntil = %v after reset, want zero", a.LockedUntil)
	}
}
