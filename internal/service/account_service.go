package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"backoffice-service/internal/identity"
	"backoffice-service/internal/models"
	"backoffice-service/internal/permissions"
	"backoffice-service/internal/repository"
	"backoffice-service/internal/util"
)

// AccountService owns signup, sign-in, self-service profile operations and
// staff management.
type AccountService struct {
	accounts *repository.AccountRepository
	provider identity.Provider
	activity *ActivityLog
	logger   *zap.Logger
}

func NewAccountService(accounts *repository.AccountRepository, provider identity.Provider, activity *ActivityLog, logger *zap.Logger) *AccountService {
	return &AccountService{accounts: accounts, provider: provider, activity: activity, logger: logger}
}

type SignupInput struct {
	Name        string
	Email       string
	Password    string
	Role        string
	Permissions permissions.Matrix
}

type AuthResult struct {
	Token   string
	Account *models.Account
}

// Signup creates the identity credentials and the account record. The very
// first account ever created becomes a full Super Admin no matter what the
// request supplies. Later accounts start as plain Staff with an empty matrix;
// a request-supplied role or matrix is honored only when the caller holds
// staff-add rights.
func (s *AccountService) Signup(ctx context.Context, caller *models.Account, input SignupInput, ip string) (*AuthResult, error) {
	name := util.SanitizeInput(input.Name)
	email := identity.NormalizeEmail(input.Email)
	if name == "" || email == "" {
		return nil, validationError("name and email are required")
	}
	if !strings.Contains(email, "@") {
		return nil, validationError("invalid email address")
	}
	if len(input.Password) < 8 {
		return nil, validationError("password must be at least 8 characters")
	}

	first, err := s.accounts.TryBootstrap(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	// Return the marker if the bootstrap account never gets persisted, so a
	// later signup can still win the privilege bootstrap.
	releaseBootstrap := func() {
		if !first {
			return
		}
		if err := s.accounts.ReleaseBootstrap(ctx); err != nil {
			s.logger.Warn("failed to release bootstrap marker", util.ErrorField(err))
		}
	}

	var matrix permissions.Matrix
	var role string
	if first {
		matrix = permissions.SignupDefaults(true)
		role = permissions.RoleSuperAdmin
	} else {
		canAssign := caller != nil &&
			permissions.Granted(caller.Permissions, permissions.ResourceStaffManagement, permissions.ActionAdd)
		if canAssign {
			matrix = input.Permissions
			role = util.SanitizeInput(input.Role)
		}
		if matrix == nil {
			matrix = permissions.SignupDefaults(false)
		}
		if role == "" {
			role = "Staff"
		}
	}

	ident, err := s.provider.CreateUser(ctx, email, input.Password, name)
	if err != nil {
		releaseBootstrap()
		if errors.Is(err, identity.ErrEmailTaken) {
			return nil, conflictError("email already registered")
		}
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	now := time.Now()
	account := &models.Account{
		AccountID:   ident.ID,
		Name:        name,
		Email:       email,
		Role:        role,
		Status:      models.AccountStatusActive,
		Permissions: matrix,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		releaseBootstrap()
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	token, _, err := s.provider.SignIn(ctx, email, input.Password)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	s.activity.Record(ctx, account, models.ActionSignup, "created an account", "", ip)
	s.logger.Info("account created",
		util.String("accountId", account.AccountID), util.Bool("first", first))
	return &AuthResult{Token: token, Account: account}, nil
}

// SignIn validates credentials and issues a bearer token. Deactivated
// accounts authenticate but are refused.
func (s *AccountService) SignIn(ctx context.Context, email, password, ip string) (*AuthResult, error) {
	email = identity.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, validationError("email and password are required")
	}

	token, ident, err := s.provider.SignIn(ctx, email, password)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	account, err := s.accounts.GetByID(ctx, ident.ID)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, ErrAccountDeleted
		}
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if account.IsInactive() {
		return nil, ErrAccountDeactivated
	}

	now := time.Now()
	account.LastLoginAt = &now
	if err := s.accounts.Update(ctx, account, ""); err != nil {
		s.logger.Warn("failed to record last login", util.ErrorField(err))
	}

	s.activity.Record(ctx, account, models.ActionSignin, "signed in", "", ip)
	return &AuthResult{Token: token, Account: account}, nil
}

// ChangePassword revalidates the current password before setting the new
// one.
func (s *AccountService) ChangePassword(ctx context.Context, account *models.Account, current, next, ip string) error {
	if len(next) < 8 {
		return validationError("password must be at least 8 characters")
	}
	if _, _, err := s.provider.SignIn(ctx, account.Email, current); err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			return validationError("current password is incorrect")
		}
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if err := s.provider.UpdatePassword(ctx, account.AccountID, next); err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	s.activity.Record(ctx, account, models.ActionPasswordChange, "changed password", "", ip)
	return nil
}

// UpdateProfile changes the caller's own display name. Email and role moves
// go through staff management.
func (s *AccountService) UpdateProfile(ctx context.Context, account *models.Account, name, ip string) (*models.Account, error) {
	name = util.SanitizeInput(name)
	if name == "" {
		return nil, validationError("name is required")
	}
	account.Name = name
	account.UpdatedAt = time.Now()
	if err := s.accounts.Update(ctx, account, ""); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	s.activity.Record(ctx, account, models.ActionProfileUpdate, "updated profile", "", ip)
	return account, nil
}

// ListStaff returns every account.
func (s *AccountService) ListStaff(ctx context.Context) ([]*models.Account, error) {
	accounts, err := s.accounts.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return accounts, nil
}

func (s *AccountService) GetStaff(ctx context.Context, accountID string) (*models.Account, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return account, nil
}

type StaffUpdate struct {
	Name        *string
	Email       *string
	Role        *string
	Status      *string
	Archived    *bool
	Permissions permissions.Matrix
}

// UpdateStaff applies a partial update to another staff member's record.
// Callers never edit their own record here, and only privileged roles may
// change an email address.
func (s *AccountService) UpdateStaff(ctx context.Context, caller *models.Account, targetID string, update StaffUpdate, ip string) (*models.Account, error) {
	if caller.AccountID == targetID {
		return nil, ErrSelfEdit
	}
	target, err := s.GetStaff(ctx, targetID)
	if err != nil {
		return nil, err
	}

	previousEmail := ""
	if update.Email != nil {
		email := identity.NormalizeEmail(*update.Email)
		if email != target.Email {
			if !permissions.IsPrivileged(caller.Role) {
				return nil, ErrForbidden
			}
			if err := s.provider.UpdateEmail(ctx, target.AccountID, email); err != nil {
				if errors.Is(err, identity.ErrEmailTaken) {
					return nil, conflictError("email already registered")
				}
				return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
			}
			previousEmail = target.Email
			target.Email = email
		}
	}
	if update.Name != nil {
		name := util.SanitizeInput(*update.Name)
		if name == "" {
			return nil, validationError("name cannot be empty")
		}
		target.Name = name
	}
	if update.Role != nil {
		target.Role = util.SanitizeInput(*update.Role)
	}
	if update.Status != nil {
		switch *update.Status {
		case models.AccountStatusActive, models.AccountStatusInactive:
			target.Status = *update.Status
		default:
			return nil, validationError("invalid status %q", *update.Status)
		}
	}
	if update.Archived != nil {
		target.Archived = *update.Archived
	}
	if update.Permissions != nil {
		target.Permissions = update.Permissions
	}
	target.UpdatedAt = time.Now()

	if err := s.accounts.Update(ctx, target, previousEmail); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	s.activity.Record(ctx, caller, models.ActionStaffUpdate,
		fmt.Sprintf("updated staff member %s", target.Name), "", ip)
	return target, nil
}

// DeleteStaff removes the account record and its credentials. Self-deletion
// is refused.
func (s *AccountService) DeleteStaff(ctx context.Context, caller *models.Account, targetID, ip string) error {
	if caller.AccountID == targetID {
		return ErrSelfEdit
	}
	target, err := s.GetStaff(ctx, targetID)
	if err != nil {
		return err
	}
	if err := s.provider.DeleteUser(ctx, target.AccountID); err != nil && !errors.Is(err, identity.ErrIdentityNotFound) {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if err := s.accounts.Delete(ctx, target); err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	s.activity.Record(ctx, caller, models.ActionStaffDelete,
		fmt.Sprintf("deleted staff member %s", target.Name), "", ip)
	return nil
}

// CountStaff reports the number of accounts for the dashboard.
func (s *AccountService) CountStaff(ctx context.Context) (int, error) {
	return s.accounts.Count(ctx)
}
