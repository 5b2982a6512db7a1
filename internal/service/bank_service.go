package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"backoffice-service/internal/models"
	"backoffice-service/internal/permissions"
	"backoffice-service/internal/repository"
	"backoffice-service/internal/util"
)

type BankService struct {
	banks        *repository.BankRepository
	bankDeposits *BankDepositService
	activity     *ActivityLog
	logger       *zap.Logger
}

func NewBankService(banks *repository.BankRepository, bankDeposits *BankDepositService, activity *ActivityLog, logger *zap.Logger) *BankService {
	return &BankService{banks: banks, bankDeposits: bankDeposits, activity: activity, logger: logger}
}

type BankInput struct {
	Name          string
	AccountNumber string
	Branch        string
}

func (s *BankService) Create(ctx context.Context, caller *models.Account, input BankInput, ip string) (*models.Bank, error) {
	name := util.SanitizeInput(input.Name)
	if name == "" {
		return nil, validationError("bank name is required")
	}
	banks, err := s.banks.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	for _, b := range banks {
		if b.Name == name {
			return nil, conflictError("bank %q already exists", name)
		}
	}

	now := time.Now()
	bank := &models.Bank{
		BankID:        uuid.New().String(),
		Name:          name,
		AccountNumber: util.SanitizeInput(input.AccountNumber),
		Branch:        util.SanitizeInput(input.Branch),
		CreatedBy:     caller.AccountID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.banks.Create(ctx, bank); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	s.activity.Record(ctx, caller, models.ActionBankCreate,
		fmt.Sprintf("registered bank %s", bank.Name), "", ip)
	return bank, nil
}

func (s *BankService) Get(ctx context.Context, bankID string) (*models.Bank, error) {
	bank, err := s.banks.Get(ctx, bankID)
	if err != nil {
		if errors.Is(err, repository.ErrBankNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return bank, nil
}

func (s *BankService) List(ctx context.Context) ([]*models.Bank, error) {
	banks, err := s.banks.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return banks, nil
}

// Update is restricted to privileged roles regardless of the matrix.
func (s *BankService) Update(ctx context.Context, caller *models.Account, bankID string, input BankInput, ip string) (*models.Bank, error) {
	if !permissions.IsPrivileged(caller.Role) {
		return nil, ErrForbidden
	}
	bank, err := s.Get(ctx, bankID)
	if err != nil {
		return nil, err
	}
	name := util.SanitizeInput(input.Name)
	if name == "" {
		return nil, validationError("bank name is required")
	}
	bank.Name = name
	bank.AccountNumber = util.SanitizeInput(input.AccountNumber)
	bank.Branch = util.SanitizeInput(input.Branch)
	bank.UpdatedAt = time.Now()
	if err := s.banks.Update(ctx, bank); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	s.activity.Record(ctx, caller, models.ActionBankUpdate,
		fmt.Sprintf("updated bank %s", bank.Name), "", ip)
	return bank, nil
}

// Delete is restricted to privileged roles and refuses while any bank
// deposit still references the bank.
func (s *BankService) Delete(ctx context.Context, caller *models.Account, bankID, ip string) error {
	if !permissions.IsPrivileged(caller.Role) {
		return ErrForbidden
	}
	bank, err := s.Get(ctx, bankID)
	if err != nil {
		return err
	}
	referenced, err := s.bankDeposits.HasDepositsForBank(ctx, bankID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if referenced {
		return conflictError("bank %q has deposits on record", bank.Name)
	}
	if err := s.banks.Delete(ctx, bankID); err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	s.activity.Record(ctx, caller, models.ActionBankDelete,
		fmt.Sprintf("deleted bank %s", bank.Name), "", ip)
	return nil
}
