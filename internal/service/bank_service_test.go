package service

import (
	"context"
	"errors"
	"testing"
)

func TestBankDeleteConflictWhileReferenced(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.signup(t, "Alice", "alice@example.com", "")

	bank, err := env.banks.Create(ctx, admin.Account, BankInput{Name: "First National"}, "")
	if err != nil {
		t.Fatalf("create bank: %v", err)
	}
	deposit, err := env.bankDeps.Create(ctx, admin.Account, BankDepositInput{
		BankID: bank.BankID, Amount: 100, Currency: "USD",
	}, "")
	if err != nil {
		t.Fatalf("create bank deposit: %v", err)
	}

	if err := env.banks.Delete(ctx, admin.Account, bank.BankID, ""); !errors.Is(err, ErrConflict) {
		t.Fatalf("delete referenced bank: got %v, want ErrConflict", err)
	}

	if err := env.bankDeps.Delete(ctx, admin.Account, deposit.DepositID, ""); err != nil {
		t.Fatalf("delete bank deposit: %v", err)
	}
	if err := env.banks.Delete(ctx, admin.Account, bank.BankID, ""); err != nil {
		t.Fatalf("delete unreferenced bank: %v", err)
	}
}

func TestBankEditPrivilegedOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.signup(t, "Alice", "alice@example.com", "")
	staff := env.signup(t, "Bob", "bob@example.com", "Staff")

	bank, err := env.banks.Create(ctx, admin.Account, BankInput{Name: "First National"}, "")
	if err != nil {
		t.Fatalf("create bank: %v", err)
	}
	if _, err := env.banks.Update(ctx, staff.Account, bank.BankID, BankInput{Name: "Renamed"}, ""); !errors.Is(err, ErrForbidden) {
		t.Errorf("staff bank edit: got %v, want ErrForbidden", err)
	}
	if err := env.banks.Delete(ctx, staff.Account, bank.BankID, ""); !errors.Is(err, ErrForbidden) {
		t.Errorf("staff bank delete: got %v, want ErrForbidden", err)
	}
}

func TestBankDepositUnknownBank(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.signup(t, "Alice", "alice@example.com", "")

	_, err := env.bankDeps.Create(ctx, admin.Account, BankDepositInput{
		BankID: "missing", Amount: 100, Currency: "USD",
	}, "")
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("unknown bank: got %v, want ErrValidation", err)
	}
}
