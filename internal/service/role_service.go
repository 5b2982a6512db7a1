package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"backoffice-service/internal/models"
	"backoffice-service/internal/repository"
	"backoffice-service/internal/util"
)

type RoleService struct {
	roles    *repository.RoleRepository
	accounts *repository.AccountRepository
	activity *ActivityLog
	logger   *zap.Logger
}

func NewRoleService(roles *repository.RoleRepository, accounts *repository.AccountRepository, activity *ActivityLog, logger *zap.Logger) *RoleService {
	return &RoleService{roles: roles, accounts: accounts, activity: activity, logger: logger}
}

type RoleInput struct {
	Name        string
	Description string
}

func (s *RoleService) Create(ctx context.Context, caller *models.Account, input RoleInput, ip string) (*models.Role, error) {
	name := util.SanitizeInput(input.Name)
	if name == "" {
		return nil, validationError("role name is required")
	}
	if _, err := s.roles.GetByName(ctx, name); err == nil {
		return nil, conflictError("role %q already exists", name)
	} else if !errors.Is(err, repository.ErrRoleNotFound) {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	now := time.Now()
	role := &models.Role{
		RoleID:      uuid.New().String(),
		Name:        name,
		Description: util.SanitizeInput(input.Description),
		CreatedBy:   caller.AccountID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.roles.Create(ctx, role); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	s.activity.Record(ctx, caller, models.ActionRoleCreate,
		fmt.Sprintf("created role %s", role.Name), "", ip)
	return role, nil
}

func (s *RoleService) Get(ctx context.Context, roleID string) (*models.Role, error) {
	role, err := s.roles.Get(ctx, roleID)
	if err != nil {
		if errors.Is(err, repository.ErrRoleNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return role, nil
}

func (s *RoleService) List(ctx context.Context) ([]*models.Role, error) {
	roles, err := s.roles.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return roles, nil
}

// Update renames or redescribes a role. Accounts carry the role name by
// value, so a rename fans out to every account holding the old name.
func (s *RoleService) Update(ctx context.Context, caller *models.Account, roleID string, input RoleInput, ip string) (*models.Role, error) {
	role, err := s.Get(ctx, roleID)
	if err != nil {
		return nil, err
	}
	name := util.SanitizeInput(input.Name)
	if name == "" {
		return nil, validationError("role name is required")
	}
	if name != role.Name {
		if existing, err := s.roles.GetByName(ctx, name); err == nil && existing.RoleID != roleID {
			return nil, conflictError("role %q already exists", name)
		} else if err != nil && !errors.Is(err, repository.ErrRoleNotFound) {
			return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
		}
	}

	previousName := role.Name
	role.Name = name
	role.Description = util.SanitizeInput(input.Description)
	role.UpdatedAt = time.Now()
	if err := s.roles.Update(ctx, role); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	if previousName != role.Name {
		if err := s.cascadeRename(ctx, previousName, role.Name); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
		}
	}
	s.activity.Record(ctx, caller, models.ActionRoleUpdate,
		fmt.Sprintf("updated role %s", role.Name), "", ip)
	return role, nil
}

// cascadeRename rewrites the copied role name on every affected account.
func (s *RoleService) cascadeRename(ctx context.Context, oldName, newName string) error {
	accounts, err := s.accounts.List(ctx)
	if err != nil {
		return err
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for _, account := range accounts {
		if account.Role != oldName {
			continue
		}
		account := account
		g.Go(func() error {
			account.Role = newName
			account.UpdatedAt = time.Now()
			return s.accounts.Update(ctx, account, "")
		})
	}
	return g.Wait()
}

// Delete refuses while any account still holds the role.
func (s *RoleService) Delete(ctx context.Context, caller *models.Account, roleID, ip string) error {
	role, err := s.Get(ctx, roleID)
	if err != nil {
		return err
	}
	accounts, err := s.accounts.List(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	for _, account := range accounts {
		if account.Role == role.Name {
			return conflictError("role %q is still assigned to staff", role.Name)
		}
	}
	if err := s.roles.Delete(ctx, roleID); err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	s.activity.Record(ctx, caller, models.ActionRoleDelete,
		fmt.Sprintf("deleted role %s", role.Name), "", ip)
	return nil
}
