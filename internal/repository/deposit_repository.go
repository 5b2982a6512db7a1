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
	depositPrefix  = "deposit:"
	depositListKey = "deposits"
)

var ErrDepositNotFound = errors.New("deposit not found")

type DepositRepository struct {
	store kv.Store
}

func NewDepositRepository(store kv.Store) *DepositRepository {
	return &DepositRepository{store: store}
}

func (r *DepositRepository) Create(ctx context.Context, deposit *models.Deposit) error {
	if err := r.save(ctx, deposit); err != nil {
		return err
	}
	return appendToList(ctx, r.store, depositListKey, deposit.DepositID, true)
}

func (r *DepositRepository) Get(ctx context.Context, depositID string) (*models.Deposit, error) {
	data, err := r.store.Get(ctx, depositPrefix+depositID)
	if err != nil {
		if err == kv.ErrNotFound {
			return nil, ErrDepositNotFound
		}
		return nil, err
	}
	var deposit models.Deposit
	if err := json.Unmarshal(data, &deposit); err != nil {
		return nil, fmt.Errorf("corrupt deposit record: %w", err)
	}
	return &deposit, nil
}

func (r *DepositRepository) Update(ctx context.Context, deposit *models.Deposit) error {
	return r.save(ctx, deposit)
}

func (r *DepositRepository) Delete(ctx context.Context, depositID string) error {
	if err := r.store.Delete(ctx, depositPrefix+depositID); err != nil {
		return err
	}
	return removeFromList(ctx, r.store, depositListKey, depositID)
}

// List returns deposits newest first.
func (r *DepositRepository) List(ctx context.Context) ([]*models.Deposit, error) {
	ids, err := readList(ctx, r.store, depositListKey)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*models.Deposit{}, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = depositPrefix + id
	}
	values, err := r.store.MultiGet(ctx, keys)
	if err != nil {
		return nil, err
	}
	deposits := make([]*models.Deposit, 0, len(values))
	for _, data := range values {
		if data == nil {
			continue
		}
		var deposit models.Deposit
		if err := json.Unmarshal(data, &deposit); err != nil {
			continue
		}
		deposits = append(deposits, &deposit)
	}
	return deposits, nil
}

func (r *DepositRepository) Count(ctx context.Context) (int, error) {
	ids, err := readList(ctx, r.store, depositListKey)
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}

func (r *DepositRepository) save(ctx context.Context, deposit *models.Deposit) error {
	data, err := json.Marshal(deposit)
	if err != nil {
		return err
	}
	if err := r.store.Set(ctx, depositPrefix+deposit.DepositID, data, 0); err != nil {
		return fmt.Errorf("failed to store deposit: %w", err)
	}
	return nil
}
