package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// DashboardService aggregates the headline numbers for the landing page.
type DashboardService struct {
	deposits     *DepositService
	bankDeposits *BankDepositService
	accounts     *AccountService
	activity     *ActivityLog
	logger       *zap.Logger
}

func NewDashboardService(deposits *DepositService, bankDeposits *BankDepositService, accounts *AccountService, activity *ActivityLog, logger *zap.Logger) *DashboardService {
	return &DashboardService{
		deposits:     deposits,
		bankDeposits: bankDeposits,
		accounts:     accounts,
		activity:     activity,
		logger:       logger,
	}
}

type DashboardMetrics struct {
	DepositTotals     map[string]float64 `json:"depositTotals"`
	DepositCount      int                `json:"depositCount"`
	BankDepositTotals map[string]float64 `json:"bankDepositTotals"`
	BankDepositCount  int                `json:"bankDepositCount"`
	StaffCount        int                `json:"staffCount"`
	ActivityCount     int                `json:"activityCount"`
}

func (s *DashboardService) Metrics(ctx context.Context) (*DashboardMetrics, error) {
	depositTotals, depositCount, err := s.deposits.Totals(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	bankTotals, bankCount, err := s.bankDeposits.Totals(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	staffCount, err := s.accounts.CountStaff(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	activityCount, err := s.activity.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return &DashboardMetrics{
		DepositTotals:     depositTotals,
		DepositCount:      depositCount,
		BankDepositTotals: bankTotals,
		BankDepositCount:  bankCount,
		StaffCount:        staffCount,
		ActivityCount:     activityCount,
	}, nil
}
