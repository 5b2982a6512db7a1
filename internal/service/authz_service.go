package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"backoffice-service/internal/identity"
	"backoffice-service/internal/models"
	"backoffice-service/internal/permissions"
	"backoffice-service/internal/repository"
	"backoffice-service/internal/util"
)

// AuthorizationGate resolves bearer tokens into accounts and enforces the
// permission matrix plus the handful of rules the matrix cannot express.
type AuthorizationGate struct {
	provider identity.Provider
	accounts *repository.AccountRepository
	logger   *zap.Logger
}

func NewAuthorizationGate(provider identity.Provider, accounts *repository.AccountRepository, logger *zap.Logger) *AuthorizationGate {
	return &AuthorizationGate{provider: provider, accounts: accounts, logger: logger}
}

// Authenticate resolves a bearer token to a live account. A valid token
// whose account record is gone means the account was deleted after the
// token was issued. Empty permission records are healed in place and the
// healed record persisted before the account is returned.
func (g *AuthorizationGate) Authenticate(ctx context.Context, token string) (*models.Account, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}
	ident, err := g.provider.Verify(ctx, token)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidToken) {
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	account, err := g.accounts.GetByID(ctx, ident.ID)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, ErrAccountDeleted
		}
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if account.IsInactive() {
		return nil, ErrAccountDeactivated
	}

	if permissions.IsEmpty(account.Permissions) {
		account.Permissions = permissions.DefaultsForRole(account.Role)
		if err := g.accounts.Update(ctx, account, ""); err != nil {
			g.logger.Warn("failed to persist healed permission record",
				util.String("accountId", account.AccountID), util.ErrorField(err))
		} else {
			g.logger.Info("healed empty permission record",
				util.String("accountId", account.AccountID), util.String("role", account.Role))
		}
	}
	return account, nil
}

// Authorize authenticates the token and checks a single matrix cell.
func (g *AuthorizationGate) Authorize(ctx context.Context, token, resource, action string) (*models.Account, error) {
	account, err := g.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	if !permissions.Granted(account.Permissions, resource, action) {
		g.logger.Info("permission denied",
			util.String("accountId", account.AccountID),
			util.String("resource", resource),
			util.String("action", action))
		return nil, ErrForbidden
	}
	return account, nil
}

// CanTouchRecord applies the ownership override: the matrix grant is
// necessary but only sufficient for privileged roles or the record's
// creator.
func (g *AuthorizationGate) CanTouchRecord(account *models.Account, creatorID string) bool {
	if permissions.IsPrivileged(account.Role) {
		return true
	}
	return creatorID != "" && creatorID == account.AccountID
}

// RequirePrivileged gates Admin / Super Admin only operations.
func (g *AuthorizationGate) RequirePrivileged(account *models.Account) error {
	if !permissions.IsPrivileged(account.Role) {
		return ErrForbidden
	}
	return nil
}

// RequireSuperAdmin gates the audit-purge operation.
func (g *AuthorizationGate) RequireSuperAdmin(account *models.Account) error {
	if !permissions.IsSuperAdmin(account.Role) {
		return ErrForbidden
	}
	return nil
}

// RequireNotSelf blocks staff-management writes against the caller's own
// record, whatever the matrix says.
func (g *AuthorizationGate) RequireNotSelf(account *models.Account, targetID string) error {
	if account.AccountID == targetID {
		return ErrSelfEdit
	}
	return nil
}
