package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"backoffice-service/internal/models"
	"backoffice-service/internal/repository/kv"
)

const (
	rolePrefix  = "role:"
	roleListKey = "roles"
)

var ErrRoleNotFound = errors.New("role not found")

type RoleRepository struct {
	store kv.Store
}

func NewRoleRepository(store kv.Store) *RoleRepository {
	return &RoleRepository{store: store}
}

func (r *RoleRepository) Create(ctx context.Context, role *models.Role) error {
	if err := r.save(ctx, role); err != nil {
		return err
	}
	return appendToList(ctx, r.store, roleListKey, role.RoleID, false)
}

func (r *RoleRepository) Get(ctx context.Context, roleID string) (*models.Role, error) {
	data, err := r.store.Get(ctx, rolePrefix+roleID)
	if err != nil {
		if err == kv.ErrNotFound {
			return nil, ErrRoleNotFound
		}
		return nil, err
	}
	var role models.Role
	if err := json.Unmarshal(data, &role); err != nil {
		return nil, fmt.Errorf("corrupt role record: %w", err)
	}
	return &role, nil
}

// GetByName scans the role list for a case-sensitive name match.
func (r *RoleRepository) GetByName(ctx context.Context, name string) (*models.Role, error) {
	roles, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, role := range roles {
		if role.Name == name {
			return role, nil
		}
	}
	return nil, ErrRoleNotFound
}

func (r *RoleRepository) Update(ctx context.Context, role *models.Role) error {
	return r.save(ctx, role)
}

func (r *RoleRepository) Delete(ctx context.Context, roleID string) error {
	if err := r.store.Delete(ctx, rolePrefix+roleID); err != nil {
		return err
	}
	return removeFromList(ctx, r.store, roleListKey, roleID)
}

func (r *RoleRepository) List(ctx context.Context) ([]*models.Role, error) {
	ids, err := readList(ctx, r.store, roleListKey)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*models.Role{}, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = rolePrefix + id
	}
	values, err := r.store.MultiGet(ctx, keys)
	if err != nil {
		return nil, err
	}
	roles := make([]*models.Role, 0, len(values))
	for _, data := range values {
		if data == nil {
			continue
		}
		var role models.Role
		if err := json.Unmarshal(data, &role); err != nil {
			continue
		}
		roles = append(roles, &role)
	}
	return roles, nil
}

func (r *RoleRepository) save(ctx context.Context, role *models.Role) error {
	data, err := json.Marshal(role)
	if err != nil {
		return err
	}
	if err := r.store.Set(ctx, rolePrefix+role.RoleID, data, 0); err != nil {
		return fmt.Errorf("failed to store role: %w", err)
	}
	return nil
}
