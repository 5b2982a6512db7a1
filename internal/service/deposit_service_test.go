package service

import (
	"context"
	"errors"
	"testing"

	"backoffice-service/internal/permissions"
)

func TestDepositOwnershipRules(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.signup(t, "Alice", "alice@example.com", "")
	bob := env.signup(t, "Bob", "bob@example.com", "Staff")
	carol := env.signup(t, "Carol", "carol@example.com", "Staff")

	deposit, err := env.deposits.Create(ctx, bob.Account, DepositInput{
		Type: "cash", Amount: 50, Currency: "USD",
	}, "")
	if err != nil {
		t.Fatalf("create deposit: %v", err)
	}

	// The creator and privileged roles may edit; another staffer may not.
	if _, err := env.deposits.Update(ctx, carol.Account, deposit.DepositID, DepositInput{
		Type: "cash", Amount: 75, Currency: "USD",
	}, ""); !errors.Is(err, ErrForbidden) {
		t.Errorf("other staffer edit: got %v, want ErrForbidden", err)
	}
	if _, err := env.deposits.Update(ctx, bob.Account, deposit.DepositID, DepositInput{
		Type: "cash", Amount: 75, Currency: "USD",
	}, ""); err != nil {
		t.Errorf("creator edit: %v", err)
	}
	if err := env.deposits.Delete(ctx, admin.Account, deposit.DepositID, ""); err != nil {
		t.Errorf("admin delete: %v", err)
	}
}

func TestDepositListScoping(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.signup(t, "Alice", "alice@example.com", "")
	bob := env.signup(t, "Bob", "bob@example.com", "Staff")

	if _, err := env.deposits.Create(ctx, admin.Account, DepositInput{Type: "cash", Amount: 10, Currency: "USD"}, ""); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := env.deposits.Create(ctx, bob.Account, DepositInput{Type: "local", Amount: 20, Currency: "USD"}, ""); err != nil {
		t.Fatalf("create: %v", err)
	}

	all, err := env.deposits.List(ctx, admin.Account)
	if err != nil {
		t.Fatalf("admin list: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("admin sees %d deposits, want 2", len(all))
	}

	own, err := env.deposits.List(ctx, bob.Account)
	if err != nil {
		t.Fatalf("staff list: %v", err)
	}
	if len(own) != 1 || own[0].SubmittedBy != bob.Account.AccountID {
		t.Errorf("staff should see only own deposits, got %d", len(own))
	}

	// The legacy viewAll grant widens a non-privileged account.
	bob.Account.Permissions[permissions.ResourceDeposits] = map[string]bool{permissions.ActionViewAll: true}
	widened, err := env.deposits.List(ctx, bob.Account)
	if err != nil {
		t.Fatalf("widened list: %v", err)
	}
	if len(widened) != 2 {
		t.Errorf("viewAll grant should widen to all deposits, got %d", len(widened))
	}
}

func TestDepositTypeValidation(t *testing.T) {
	env := newTestEnv(t)
	admin := env.signup(t, "Alice", "alice@example.com", "")

	_, err := env.deposits.Create(context.Background(), admin.Account, DepositInput{
		Type: "barter", Amount: 10, Currency: "USD",
	}, "")
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("bad type: got %v, want ErrValidation", err)
	}
}
