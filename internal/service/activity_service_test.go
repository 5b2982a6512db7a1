package service

import (
	"context"
	"errors"
	"testing"

	"backoffice-service/internal/models"
)

func TestActivityScoping(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.signup(t, "Alice", "alice@example.com", "")
	bob := env.signup(t, "Bob", "bob@example.com", "Staff")

	env.activity.Record(ctx, admin.Account, models.ActionDepositCreate, "added a deposit", "", "")
	env.activity.Record(ctx, bob.Account, models.ActionDepositCreate, "added a deposit", "", "")

	// Signups recorded two entries already, so the admin sees four.
	all, err := env.activity.List(ctx, admin.Account, ActivityFilter{})
	if err != nil {
		t.Fatalf("admin list: %v", err)
	}
	if len(all) != 4 {
		t.Errorf("admin sees %d entries, want 4", len(all))
	}

	own, err := env.activity.List(ctx, bob.Account, ActivityFilter{})
	if err != nil {
		t.Fatalf("staff list: %v", err)
	}
	for _, entry := range own {
		if entry.ActorID != bob.Account.AccountID {
			t.Errorf("staff saw entry by actor %s", entry.ActorID)
		}
	}
	if len(own) != 2 {
		t.Errorf("staff sees %d entries, want 2", len(own))
	}

	// A staff filter on another actor is ignored, not honored.
	pinned, err := env.activity.List(ctx, bob.Account, ActivityFilter{ActorID: admin.Account.AccountID})
	if err != nil {
		t.Fatalf("pinned list: %v", err)
	}
	for _, entry := range pinned {
		if entry.ActorID != bob.Account.AccountID {
			t.Error("actor filter escaped the caller scope")
		}
	}
}

func TestActivityActionFilter(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.signup(t, "Alice", "alice@example.com", "")

	env.activity.Record(ctx, admin.Account, models.ActionBankCreate, "registered bank", "", "")

	entries, err := env.activity.List(ctx, admin.Account, ActivityFilter{Action: models.ActionBankCreate})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 1 || entries[0].Action != models.ActionBankCreate {
		t.Errorf("action filter returned %d entries", len(entries))
	}
}

func TestActivityPurgeSuperAdminOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.signup(t, "Alice", "alice@example.com", "")
	bob := env.signup(t, "Bob", "bob@example.com", "Staff")

	if err := env.activity.Purge(ctx, bob.Account, ""); !errors.Is(err, ErrForbidden) {
		t.Fatalf("staff purge: got %v, want ErrForbidden", err)
	}
	if err := env.activity.Purge(ctx, admin.Account, "10.0.0.1"); err != nil {
		t.Fatalf("super admin purge: %v", err)
	}

	entries, err := env.activity.List(ctx, admin.Account, ActivityFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	// The purge itself is the only surviving entry.
	if len(entries) != 1 || entries[0].Action != models.ActionActivityPurge {
		t.Errorf("post-purge trail = %d entries", len(entries))
	}
}

func TestActivityRecordsDenormalizedName(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.signup(t, "Alice", "alice@example.com", "")
	bob := env.signup(t, "Bob", "bob@example.com", "Staff")

	env.activity.Record(ctx, bob.Account, models.ActionDepositCreate, "added a deposit", "", "")

	name := "Robert"
	if _, err := env.accounts.UpdateStaff(ctx, admin.Account, bob.Account.AccountID, StaffUpdate{Name: &name}, ""); err != nil {
		t.Fatalf("rename: %v", err)
	}

	entries, err := env.activity.List(ctx, admin.Account, ActivityFilter{Action: models.ActionDepositCreate})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 1 || entries[0].ActorName != "Bob" {
		t.Error("actor name should stay as written, not follow the rename")
	}
}
