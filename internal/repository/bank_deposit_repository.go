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
	bankDepositPrefix  = "bank_deposit:"
	bankDepositListKey = "bank_deposits"
)

var ErrBankDepositNotFound = errors.New("bank deposit not found")

type BankDepositRepository struct {
	store kv.Store
}

func NewBankDepositRepository(store kv.Store) *BankDepositRepository {
	return &BankDepositRepository{store: store}
}

func (r *BankDepositRepository) Create(ctx context.Context, deposit *models.BankDeposit) error {
	if err := r.save(ctx, deposit); err != nil {
		return err
	}
	return appendToList(ctx, r.store, bankDepositListKey, deposit.DepositID, true)
}

func (r *BankDepositRepository) Get(ctx context.Context, depositID string) (*models.BankDeposit, error) {
	data, err := r.store.Get(ctx, bankDepositPrefix+depositID)
	if err != nil {
		if err == kv.ErrNotFound {
			return nil, ErrBankDepositNotFound
		}
		return nil, err
	}
	var deposit models.BankDeposit
	if err := json.Unmarshal(data, &deposit); err != nil {
		return nil, fmt.Errorf("corrupt bank deposit record: %w", err)
	}
	return &deposit, nil
}

func (r *BankDepositRepository) Update(ctx context.Context, deposit *models.BankDeposit) error {
	return r.save(ctx, deposit)
}

func (r *BankDepositRepository) Delete(ctx context.Context, depositID string) error {
	if err := r.store.Delete(ctx, bankDepositPrefix+depositID); err != nil {
		return err
	}
	return removeFromList(ctx, r.store, bankDepositListKey, depositID)
}

func (r *BankDepositRepository) List(ctx context.Context) ([]*models.BankDeposit, error) {
	ids, err := readList(ctx, r.store, bankDepositListKey)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*models.BankDeposit{}, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = bankDepositPrefix + id
	}
	values, err := r.store.MultiGet(ctx, keys)
	if err != nil {
		return nil, err
	}
	deposits := make([]*models.BankDeposit, 0, len(values))
	for _, data := range values {
		if data == nil {
			continue
		}
		var deposit models.BankDeposit
		if err := json.Unmarshal(data, &deposit); err != nil {
			continue
		}
		deposits = append(deposits, &deposit)
	}
	return deposits, nil
}

func (r *BankDepositRepository) Count(ctx context.Context) (int, error) {
	ids, err := readList(ctx, r.store, bankDepositListKey)
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}

func (r *BankDepositRepository) save(ctx context.Context, deposit *models.BankDeposit) error {
	data, err := json.Marshal(deposit)
	if err != nil {
		return err
	}
	if err := r.store.Set(ctx, bankDepositPrefix+deposit.DepositID, data, 0); err != nil {
		return fmt.Errorf("failed to store bank deposit: %w", err)
	}
	return nil
}
