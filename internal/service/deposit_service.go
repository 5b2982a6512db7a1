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

type DepositService struct {
	deposits *repository.DepositRepository
	gate     *AuthorizationGate
	activity *ActivityLog
	logger   *zap.Logger
}

func NewDepositService(deposits *repository.DepositRepository, gate *AuthorizationGate, activity *ActivityLog, logger *zap.Logger) *DepositService {
	return &DepositService{deposits: deposits, gate: gate, activity: activity, logger: logger}
}

type DepositInput struct {
	Type     string
	Amount   float64
	Currency string
	Note     string
}

func (in DepositInput) validate() error {
	if !models.ValidDepositType(in.Type) {
		return validationError("deposit type must be cash, local or crypto")
	}
	if in.Amount <= 0 {
		return validationError("amount must be positive")
	}
	if in.Currency == "" {
		return validationError("currency is required")
	}
	return nil
}

func (s *DepositService) Create(ctx context.Context, caller *models.Account, input DepositInput, ip string) (*models.Deposit, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	now := time.Now()
	deposit := &models.Deposit{
		DepositID:   uuid.New().String(),
		Type:        input.Type,
		Amount:      input.Amount,
		Currency:    input.Currency,
		Note:        util.SanitizeInput(input.Note),
		SubmittedBy: caller.AccountID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.deposits.Create(ctx, deposit); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	s.activity.Record(ctx, caller, models.ActionDepositCreate,
		fmt.Sprintf("added a %s deposit of %.2f %s", deposit.Type, deposit.Amount, deposit.Currency), "", ip)
	return deposit, nil
}

func (s *DepositService) Get(ctx context.Context, caller *models.Account, depositID string) (*models.Deposit, error) {
	deposit, err := s.deposits.Get(ctx, depositID)
	if err != nil {
		if errors.Is(err, repository.ErrDepositNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return deposit, nil
}

// List returns all deposits for privileged callers or holders of the legacy
// viewAll grant, otherwise only the caller's own submissions.
func (s *DepositService) List(ctx context.Context, caller *models.Account) ([]*models.Deposit, error) {
	deposits, err := s.deposits.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if permissions.IsPrivileged(caller.Role) ||
		permissions.Granted(caller.Permissions, permissions.ResourceDeposits, permissions.ActionViewAll) {
		return deposits, nil
	}
	own := make([]*models.Deposit, 0, len(deposits))
	for _, d := range deposits {
		if d.SubmittedBy == caller.AccountID {
			own = append(own, d)
		}
	}
	return own, nil
}

// Update requires the matrix edit grant plus ownership or a privileged role.
func (s *DepositService) Update(ctx context.Context, caller *models.Account, depositID string, input DepositInput, ip string) (*models.Deposit, error) {
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
	deposit.Type = input.Type
	deposit.Amount = input.Amount
	deposit.Currency = input.Currency
	deposit.Note = util.SanitizeInput(input.Note)
	deposit.UpdatedAt = time.Now()
	if err := s.deposits.Update(ctx, deposit); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	s.activity.Record(ctx, caller, models.ActionDepositUpdate,
		fmt.Sprintf("updated deposit %s", deposit.DepositID), "", ip)
	return deposit, nil
}

func (s *DepositService) Delete(ctx context.Context, caller *models.Account, depositID, ip string) error {
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
	s.activity.Record(ctx, caller, models.ActionDepositDelete,
		fmt.Sprintf("deleted deposit %s", deposit.DepositID), "", ip)
	return nil
}

// Totals sums deposits per currency for the dashboard.
func (s *DepositService) Totals(ctx context.Context) (map[string]float64, int, error) {
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
