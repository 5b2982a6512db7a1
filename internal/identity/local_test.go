package identity

import (
	"context"
	"testing"
	"time"

	"backoffice-service/internal/hashing"
	"backoffice-service/internal/repository/kv"
	"backoffice-service/internal/util"
)

func newTestProvider() *LocalProvider {
	signer := &TokenSigner{Key: []byte("test-key"), TTL: time.Hour, Issuer: "test"}
	return NewLocalProvider(kv.NewMemoryStore(), hashing.NewHasher(), signer, util.Get())
}

func TestSignInAndVerify(t *testing.T) {
	ctx := context.Background()
	p := newTestProvider()

	created, err := p.CreateUser(ctx, "Admin@Example.com", "secret123", "Admin")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Email != "admin@example.com" {
		t.Fatalf("email not normalized: %s", created.Email)
	}

	token, ident, err := p.SignIn(ctx, "admin@example.com", "secret123")
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if ident.ID != created.ID {
		t.Fatalf("identity mismatch: %s vs %s", ident.ID, created.ID)
	}

	resolved, err := p.Verify(ctx, token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if resolved.ID != created.ID || resolved.Email != "admin@example.com" {
		t.Fatalf("unexpected identity: %+v", resolved)
	}
}

func TestSignInRejectsBadPassword(t *testing.T) {
	ctx := context.Background()
	p := newTestProvider()
	if _, err := p.CreateUser(ctx, "a@b.c", "rightpass", "A"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, _, err := p.SignIn(ctx, "a@b.c", "wrongpass"); err != ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := p.SignIn(ctx, "nobody@b.c", "rightpass"); err != ErrInvalidCredentials {
		t.Fatalf("unknown email must look like bad credentials, got %v", err)
	}
}

func TestDuplicateEmailRejected(t *testing.T) {
	ctx := context.Background()
	p := newTestProvider()
	if _, err := p.CreateUser(ctx, "a@b.c", "pass1234", "A"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := p.CreateUser(ctx, "A@B.C", "pass1234", "B"); err != ErrEmailTaken {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestUpdatePasswordInvalidatesOld(t *testing.T) {
	ctx := context.Background()
	p := newTestProvider()
	created, err := p.CreateUser(ctx, "a@b.c", "oldpass1", "A")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := p.UpdatePassword(ctx, created.ID, "newpass1"); err != nil {
		t.Fatalf("update password: %v", err)
	}
	if _, _, err := p.SignIn(ctx, "a@b.c", "oldpass1"); err != ErrInvalidCredentials {
		t.Fatalf("old password must stop working, got %v", err)
	}
	if _, _, err := p.SignIn(ctx, "a@b.c", "newpass1"); err != nil {
		t.Fatalf("new password must work: %v", err)
	}
}

func TestUpdateEmailMovesIndex(t *testing.T) {
	ctx := context.Background()
	p := newTestProvider()
	created, err := p.CreateUser(ctx, "old@b.c", "pass1234", "A")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := p.UpdateEmail(ctx, created.ID, "new@b.c"); err != nil {
		t.Fatalf("update email: %v", err)
	}
	if _, _, err := p.SignIn(ctx, "old@b.c", "pass1234"); err != ErrInvalidCredentials {
		t.Fatalf("old email must stop resolving, got %v", err)
	}
	if _, _, err := p.SignIn(ctx, "new@b.c", "pass1234"); err != nil {
		t.Fatalf("new email must resolve: %v", err)
	}
}
