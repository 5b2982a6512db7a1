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
	bankPrefix  = "bank:"
	bankListKey = "banks"
)

var ErrBankNotFound = errors.New("bank not found")

type BankRepository struct {
	store kv.Store
}

func NewBankRepository(store kv.Store) *BankRepository {
	return &BankRepository{store: store}
}

func (r *BankRepository) Create(ctx context.Context, bank *models.Bank) error {
	if err := r.save(ctx, bank); err != nil {
		return err
	}
	return appendToList(ctx, r.store, bankListKey, bank.BankID, false)
}

func (r *BankRepository) Get(ctx context.Context, bankID string) (*models.Bank, error) {
	data, err := r.store.Get(ctx, bankPrefix+bankID)
	if err != nil {
		if err == kv.ErrNotFound {
			return nil, ErrBankNotFound
		}
		return nil, err
	}
	var bank models.Bank
	if err := json.Unmarshal(data, &bank); err != nil {
		return nil, fmt.Errorf("corrupt bank record: %w", err)
	}
	return &bank, nil
}

func (r *BankRepository) Update(ctx context.Context, bank *models.Bank) error {
	return r.save(ctx, bank)
}

func (r *BankRepository) Delete(ctx context.Context, bankID string) error {
	if err := r.store.Delete(ctx, bankPrefix+bankID); err != nil {
		return err
	}
	return removeFromList(ctx, r.store, bankListKey, bankID)
}

func (r *BankRepository) List(ctx context.Context) ([]*models.Bank, error) {
	ids, err := readList(ctx, r.store, bankListKey)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*models.Bank{}, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = bankPrefix + id
	}
	values, err := r.store.MultiGet(ctx, keys)
	if err != nil {
		return nil, err
	}
	banks := make([]*models.Bank, 0, len(values))
	for _, data := range values {
		if data == nil {
			continue
		}
		var bank models.Bank
		if err := json.Unmarshal(data, &bank); err != nil {
			continue
		}
		banks = append(banks, &bank)
	}
	return banks, nil
}

func (r *BankRepository) save(ctx context.Context, bank *models.Bank) error {
	data, err := json.Marshal(bank)
	if err != nil {
		return err
	}
	if err := r.store.Set(ctx, bankPrefix+bank.BankID, data, 0); err != nil {
		return fmt.Errorf("failed to store bank: %w", err)
	}
	return nil
}
