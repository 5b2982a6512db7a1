// Package identity resolves bearer credentials to stable identities and
// manages the credential records behind them. The rest of the service only
// consumes the Provider interface, so the local JWT+argon2 implementation
// can be swapped for a hosted provider.
package identity

import (
	"context"
	"errors"
)

var (
	ErrInvalidToken       = errors.New("identity: invalid token")
	ErrInvalidCredentials = errors.New("identity: invalid credentials")
	ErrIdentityNotFound   = errors.New("identity: not found")
	ErrEmailTaken         = errors.New("identity: email already registered")
)

// Identity is a resolved user identity. ID is stable across email changes.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Provider is the authentication collaborator consumed by the service.
type Provider interface {
	// Verify resolves a bearer token to an identity.
	Verify(ctx context.Context, token string) (Identity, error)

	// CreateUser registers a credential and returns the new identity.
	CreateUser(ctx context.Context, email, password, name string) (Identity, error)

	// SignIn validates email+password and issues a bearer token.
	SignIn(ctx context.Context, email, password string) (string, Identity, error)

	// UpdatePassword replaces the stored credential for identityID.
	UpdatePassword(ctx context.Context, identityID, newPassword string) error

	// UpdateEmail repoints the credential record at a new address.
	UpdateEmail(ctx context.Context, identityID, newEmail string) error

	// DeleteUser removes the credential record.
	DeleteUser(ctx context.Context, identityID string) error
}
