package service

import (
	"context"
	"errors"
	"testing"

	"backoffice-service/internal/permissions"
)

func TestSignupDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	env.signup(t, "Alice", "alice@example.com", "")

	_, err := env.accounts.Signup(context.Background(), nil, SignupInput{
		Name:     "Imposter",
		Email:    "ALICE@example.com",
		Password: "password123",
	}, "")
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("duplicate email: got %v, want ErrConflict", err)
	}
}

func TestSignupIgnoresRequestedPrivileges(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.signup(t, "Alice", "alice@example.com", "")

	// Anonymous signup cannot pick its own role or matrix.
	result, err := env.accounts.Signup(ctx, nil, SignupInput{
		Name:        "Mallory",
		Email:       "mallory@example.com",
		Password:    "password123",
		Role:        permissions.RoleSuperAdmin,
		Permissions: permissions.Full(),
	}, "")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if result.Account.Role != "Staff" {
		t.Errorf("role = %q, want Staff", result.Account.Role)
	}
	if permissions.Granted(result.Account.Permissions, permissions.ResourceStaffManagement, permissions.ActionView) {
		t.Error("anonymous signup gained staff management access")
	}

	// A caller holding staff-add rights can assign both.
	result, err = env.accounts.Signup(ctx, admin.Account, SignupInput{
		Name:        "Bob",
		Email:       "bob@example.com",
		Password:    "password123",
		Role:        permissions.RoleAdmin,
		Permissions: permissions.Full(),
	}, "")
	if err != nil {
		t.Fatalf("privileged signup: %v", err)
	}
	if result.Account.Role != permissions.RoleAdmin {
		t.Errorf("role = %q, want %q", result.Account.Role, permissions.RoleAdmin)
	}
	if !permissions.Granted(result.Account.Permissions, permissions.ResourceStaffManagement, permissions.ActionView) {
		t.Error("assigned matrix was not honored")
	}
}

func TestSignupFirstAccountOverridesRequestBody(t *testing.T) {
	env := newTestEnv(t)
	result, err := env.accounts.Signup(context.Background(), nil, SignupInput{
		Name:        "Alice",
		Email:       "alice@example.com",
		Password:    "password123",
		Role:        "Intern",
		Permissions: permissions.Empty(),
	}, "")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if result.Account.Role != permissions.RoleSuperAdmin {
		t.Errorf("role = %q, want %q", result.Account.Role, permissions.RoleSuperAdmin)
	}
	if !permissions.Granted(result.Account.Permissions, permissions.ResourceStaffManagement, permissions.ActionDelete) {
		t.Error("bootstrap account did not receive the full matrix")
	}
}

func TestBootstrapSurvivesFailedFirstSignup(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// Claim the address at the identity provider so the first signup fails
	// after the bootstrap marker has been taken.
	if _, err := env.provider.CreateUser(ctx, "alice@example.com", "password123", "Alice"); err != nil {
		t.Fatalf("seed identity: %v", err)
	}
	_, err := env.accounts.Signup(ctx, nil, SignupInput{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "password123",
	}, "")
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("conflicting first signup: got %v, want ErrConflict", err)
	}

	// The marker was returned, so the next signup still wins the bootstrap.
	result := env.signup(t, "Bob", "bob@example.com", "")
	if result.Account.Role != permissions.RoleSuperAdmin {
		t.Errorf("role = %q, want %q", result.Account.Role, permissions.RoleSuperAdmin)
	}
	if !permissions.Granted(result.Account.Permissions, permissions.ResourceStaffManagement, permissions.ActionAdd) {
		t.Error("bootstrap account did not receive the full matrix")
	}
}

func TestSignupValidation(t *testing.T) {
	env := newTestEnv(t)
	cases := []struct {
		name  string
		input SignupInput
	}{
		{"missing name", SignupInput{Email: "a@example.com", Password: "password123"}},
		{"missing email", SignupInput{Name: "A", Password: "password123"}},
		{"bad email", SignupInput{Name: "A", Email: "not-an-email", Password: "password123"}},
		{"short password", SignupInput{Name: "A", Email: "a@example.com", Password: "short"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := env.accounts.Signup(context.Background(), nil, tc.input, ""); !errors.Is(err, ErrValidation) {
				t.Errorf("got %v, want ErrValidation", err)
			}
		})
	}
}

func TestChangePasswordRequiresCurrent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.signup(t, "Alice", "alice@example.com", "")

	if err := env.accounts.ChangePassword(ctx, alice.Account, "wrong-current", "newpassword1", ""); !errors.Is(err, ErrValidation) {
		t.Fatalf("wrong current password: got %v, want ErrValidation", err)
	}
	if err := env.accounts.ChangePassword(ctx, alice.Account, "password123", "newpassword1", ""); err != nil {
		t.Fatalf("change password: %v", err)
	}
	if _, err := env.accounts.SignIn(ctx, "alice@example.com", "newpassword1", ""); err != nil {
		t.Errorf("sign in with new password: %v", err)
	}
}

func TestStaffSelfEditDenied(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.signup(t, "Alice", "alice@example.com", "")

	name := "New Name"
	if _, err := env.accounts.UpdateStaff(ctx, admin.Account, admin.Account.AccountID, StaffUpdate{Name: &name}, ""); !errors.Is(err, ErrSelfEdit) {
		t.Errorf("self update: got %v, want ErrSelfEdit", err)
	}
	if err := env.accounts.DeleteStaff(ctx, admin.Account, admin.Account.AccountID, ""); !errors.Is(err, ErrSelfEdit) {
		t.Errorf("self delete: got %v, want ErrSelfEdit", err)
	}
}

func TestStaffEmailChangePrivilegedOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.signup(t, "Alice", "alice@example.com", "")
	bob := env.signup(t, "Bob", "bob@example.com", "Staff")
	carol := env.signup(t, "Carol", "carol@example.com", "Staff")

	email := "bob2@example.com"
	if _, err := env.accounts.UpdateStaff(ctx, carol.Account, bob.Account.AccountID, StaffUpdate{Email: &email}, ""); !errors.Is(err, ErrForbidden) {
		t.Fatalf("non-privileged email change: got %v, want ErrForbidden", err)
	}
}

func TestStaffEmailChangeByAdmin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.signup(t, "Alice", "alice@example.com", "")
	bob := env.signup(t, "Bob", "bob@example.com", "Staff")

	email := "bob2@example.com"
	updated, err := env.accounts.UpdateStaff(ctx, admin.Account, bob.Account.AccountID, StaffUpdate{Email: &email}, "")
	if err != nil {
		t.Fatalf("admin email change: %v", err)
	}
	if updated.Email != "bob2@example.com" {
		t.Errorf("email = %q", updated.Email)
	}
	// Credentials moved with the account record.
	if _, err := env.accounts.SignIn(ctx, "bob2@example.com", "password123", ""); err != nil {
		t.Errorf("sign in with new email: %v", err)
	}
	if _, err := env.accounts.SignIn(ctx, "bob@example.com", "password123", ""); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("old email should be rejected, got %v", err)
	}
}

func TestDeletedStaffCannotSignIn(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.signup(t, "Alice", "alice@example.com", "")
	bob := env.signup(t, "Bob", "bob@example.com", "Staff")

	if err := env.accounts.DeleteStaff(ctx, admin.Account, bob.Account.AccountID, ""); err != nil {
		t.Fatalf("delete staff: %v", err)
	}
	if _, err := env.accounts.SignIn(ctx, "bob@example.com", "password123", ""); err == nil {
		t.Error("deleted staff signed in")
	}
	staff, err := env.accounts.ListStaff(ctx)
	if err != nil {
		t.Fatalf("list staff: %v", err)
	}
	if len(staff) != 1 {
		t.Errorf("expected 1 remaining account, got %d", len(staff))
	}
}
