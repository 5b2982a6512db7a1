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

type BankDepositService struct {
	deposits *repository.BankDepositRepository
	banks    *repository.BankRepository
	gate     *AuthorizationGate
	activity *ActivityLog
	logger   *zap.Logger
}

func NewBankDepositService(deposits *repository.BankDepositRepository, banks *repository.BankRepository, gate *AuthorizationGate, activity *ActivityLog, logger *zap.Logger) *BankDepositService {
	return &BankDepositService{deposits: deposits, banks: banks, gate: gate, activity: activity, logger: logger}
}

type BankDepositInput struct {
	BankID    string
	Amount    float64
	Currency  string
	Reference string
	Note      string
}

func (in BankDepositInput) validate() error {
	if in.BankID == "" {
		return validationError("bankId is required")
	}
	if in.Amount <= 0 {
		return validationError("amount must be positive")
	}
	if in.Currency == "" {
		return validationError("currency is required")
	}
	return nil
}

func (s *BankDepositService) Create(ctx context.Context, caller *models.Account, input BankDepositInput, ip string) (*models.BankDeposit, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	bank, err := s.banks.Get(ctx, input.BankID)
	if err != nil {
		if errors.Is(err, repository.ErrBankNotFound) {
			return nil, validationError("unknown bank %q", input.BankID)
		}
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	now := time.Now()
	deposit := &models.BankDeposit{
		DepositID:   uuid.New().String(),
		BankID:      bank.BankID,
		Amount:      input.Amount,
		Currency:    input.Currency,
		Reference:   util.SanitizeInput(input.Reference),
		Note:        util.SanitizeInput(input.Note),
		SubmittedBy: caller.AccountID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.deposits.Create(ctx, deposit); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	s.activity.Record(ctx, caller, models.ActionBankDepositCreate,
		fmt.Sprintf("added a bank deposit of %.2f %s to %s", deposit.Amount, deposit.Currency, bank.Name), "", ip)
	return deposit, nil
}

func (s *BankDepositService) Get(ctx context.Context, caller *models.Account, depositID string) (*models.BankDeposit, error) {
	deposit, err := s.deposits.Get(ctx, depositID)
	if err != nil {
		if errors.Is(err, repository.ErrBankDepositNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return deposit, nil
}

func (s *BankDepositService) List(ctx context.Context, caller *models.Account) ([]*models.BankDeposit, error) {
	deposits, err := s.deposits.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if permissions.IsPrivileged(caller.Role) ||
		permissions.Granted(caller.Permissions, permissions.ResourceBankDeposits, permissions.ActionViewAll) {
		return deposits, nil
	}
	own := make([]*models.BankDeposit, 0, len(deposits))
	for _, d := range deposits {
		if d.SubmittedBy == caller.AccountID {
			own = append(own, d)
		}
	}
	return own, nil
}

func (s *BankDepositService) Update(ctx context.Context, caller *models.Account, depositID string, input BankDepositInput, ip string) (*models.BankDeposit, error) {
	deposit, err := s.Get(ctx, caller, depositID)
	if err != nil {
		return nil, err
	}
	if !s.gate.CanTouchRecord(caller, deposit.SubmittedBy) {
		return nil, ErrForbidden
	}
	if err := input.validate(); err != nil {
		return nil, err
	}
	if input.BankID != deposit.BankID {
		if _, err := s.banks.Get(ctx, input.BankID); err != nil {
			if errors.Is(err, repository.ErrBankNotFound) {
				return nil, validationError("unknown bank %q", input.BankID)
			}
			return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
		}
		deposit.BankID = input.BankID
	}
	deposit.Amount = input.Amount
	deposit.Currency = input.Currency
	deposit.Reference = util.SanitizeInput(input.Reference)
	deposit.Note = util.SanitizeInput(input.Note)
	deposit.UpdatedAt = time.Now()
	if err := s.deposits.Update(ctx, deposit); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	s.activity.Record(ctx, caller, models.ActionBankDepositUpdate,
		fmt.Sprintf("updated bank deposit %s", deposit.DepositID), "", ip)
	return deposit, nil
}

func (s *BankDepositService) Delete(ctx context.Context, caller *models.Account, depositID, ip string) error {
	deposit, err := s.Get(ctx, caller, depositID)
	if err != nil {
		return err
	}
	if !s.gate.CanTouchRecord(caller, deposit.SubmittedBy) {
		return ErrForbidden
	}
	if err := s.deposits.Delete(ctx, depositID); err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	s.activity.Record(ctx, caller, models.ActionBankDepositDelete,
		fmt.Sprintf("deleted bank deposit %s", deposit.DepositID), "", ip)
	return nil
}

// HasDepositsForBank reports whether any bank deposit references the bank.
// Used to block bank deletion while referenced.
func (s *BankDepositService) HasDepositsForBank(ctx context.Context, bankID string) (bool, error) {
	deposits, err := s.deposits.List(ctx)
	if err != nil {
		return false, err
	}
	for _, d := range deposits {
		if d.BankID == bankID {
			return true, nil
		}
	}
	return false, nil
}

// Totals sums bank deposits per currency for the dashboard.
func (s *BankDepositService) Totals(ctx context.Context) (map[string]float64, int, error) {
	deposits, err := s.deposits.List(ctx)
	if err != nil {
		return nil, 0, err
	}
	totals := make(map[string]float64)
	for _, d := range deposits {
		totals[d.Currency] += d.Amount
	}
	return totals, len(deposits), nil
}
