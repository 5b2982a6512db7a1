package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"backoffice-service/internal/identity"
	"backoffice-service/internal/models"
	"backoffice-service/internal/repository/kv"
)

const (
	accountPrefix       = "account:"
	accountEmailPrefix  = "account_email:"
	accountListKey      = "accounts"
	accountBootstrapKey = "accounts_bootstrap"
)

// ErrAccountNotFound is returned when no account record exists for a key.
var ErrAccountNotFound = errors.New("account not found")

type AccountRepository struct {
	store kv.Store
}

func NewAccountRepository(store kv.Store) *AccountRepository {
	return &AccountRepository{store: store}
}

// TryBootstrap claims the first-account marker. It reports true exactly once
// for the lifetime of the store, so two near-simultaneous first signups
// cannot both win the privilege bootstrap.
func (r *AccountRepository) TryBootstrap(ctx context.Context) (bool, error) {
	won, err := r.store.SetNX(ctx, accountBootstrapKey, []byte("1"), 0)
	if err != nil {
		return false, fmt.Errorf("failed to claim bootstrap marker: %w", err)
	}
	return won, nil
}

// ReleaseBootstrap gives the first-account marker back after a bootstrap
// signup failed before its account record was persisted.
func (r *AccountRepository) ReleaseBootstrap(ctx context.Context) error {
	return r.store.Delete(ctx, accountBootstrapKey)
}

func (r *AccountRepository) Create(ctx context.Context, account *models.Account) error {
	if err := r.save(ctx, account); err != nil {
		return err
	}
	if err := r.store.Set(ctx, accountEmailPrefix+identity.NormalizeEmail(account.Email), []byte(account.AccountID), 0); err != nil {
		return fmt.Errorf("failed to index account email: %w", err)
	}
	return appendToList(ctx, r.store, accountListKey, account.AccountID, false)
}

func (r *AccountRepository) GetByID(ctx context.Context, accountID string) (*models.Account, error) {
	data, err := r.store.Get(ctx, accountPrefix+accountID)
	if err != nil {
		if err == kv.ErrNotFound {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	var account models.Account
	if err := json.Unmarshal(data, &account); err != nil {
		return nil, fmt.Errorf("corrupt account record: %w", err)
	}
	return &account, nil
}

func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	id, err := r.store.Get(ctx, accountEmailPrefix+identity.NormalizeEmail(email))
	if err != nil {
		if err == kv.ErrNotFound {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return r.GetByID(ctx, string(id))
}

// Update persists an account record. When the email changed the caller must
// pass the previous address so the index record follows.
func (r *AccountRepository) Update(ctx context.Context, account *models.Account, previousEmail string) error {
	if err := r.save(ctx, account); err != nil {
		return err
	}
	oldKey := accountEmailPrefix + identity.NormalizeEmail(previousEmail)
	newKey := accountEmailPrefix + identity.NormalizeEmail(account.Email)
	if previousEmail != "" && oldKey != newKey {
		if err := r.store.Set(ctx, newKey, []byte(account.AccountID), 0); err != nil {
			return fmt.Errorf("failed to index account email: %w", err)
		}
		return r.store.Delete(ctx, oldKey)
	}
	return nil
}

func (r *AccountRepository) Delete(ctx context.Context, account *models.Account) error {
	if err := r.store.Delete(ctx,
		accountPrefix+account.AccountID,
		accountEmailPrefix+identity.NormalizeEmail(account.Email),
	); err != nil {
		return err
	}
	return removeFromList(ctx, r.store, accountListKey, account.AccountID)
}

// List returns every account, in creation order. Records whose list entry
// points at a deleted key are skipped.
func (r *AccountRepository) List(ctx context.Context) ([]*models.Account, error) {
	ids, err := readList(ctx, r.store, accountListKey)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*models.Account{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = accountPrefix + id
	}
	values, err := r.store.MultiGet(ctx, keys)
	if err != nil {
		return nil, err
	}

	accounts := make([]*models.Account, 0, len(values))
	for _, data := range values {
		if data == nil {
			continue
		}
		var account models.Account
		if err := json.Unmarshal(data, &account); err != nil {
			continue
		}
		accounts = append(accounts, &account)
	}
	return accounts, nil
}

func (r *AccountRepository) Count(ctx context.Context) (int, error) {
	ids, err := readList(ctx, r.store, accountListKey)
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}

func (r *AccountRepository) save(ctx context.Context, account *models.Account) error {
	data, err := json.Marshal(account)
	if err != nil {
		return err
	}
	if err := r.store.Set(ctx, accountPrefix+account.AccountID, data, 0); err != nil {
		return fmt.Errorf("failed to store account: %w", err)
	}
	return nil
}
