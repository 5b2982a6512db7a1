package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"backoffice-service/internal/config"
	"backoffice-service/internal/hashing"
	"backoffice-service/internal/identity"
	"backoffice-service/internal/repository"
	"backoffice-service/internal/repository/kv"
)

// fakeSender captures outgoing passcodes. Failing it exercises the debug
// fallback path.
type fakeSender struct {
	mu    sync.Mutex
	sent  []string
	codes []string
	fail  bool
}

func (f *fakeSender) SendOTP(_ context.Context, to, code string, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("smtp down")
	}
	f.sent = append(f.sent, to)
	f.codes = append(f.codes, code)
	return nil
}

func (f *fakeSender) lastCode() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.codes) == 0 {
		return ""
	}
	return f.codes[len(f.codes)-1]
}

type testEnv struct {
	cfg      *config.Config
	store    *kv.MemoryStore
	provider *identity.LocalProvider
	sender   *fakeSender
	gate     *AuthorizationGate
	accounts *AccountService
	otp      *OtpFlow
	activity *ActivityLog
	roles    *RoleService
	deposits *DepositService
	bankDeps *BankDepositService
	banks    *BankService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	cfg := &config.Config{
		Environment: "development",
		JWT:         config.JWTConfig{Secret: "test-secret", TTL: time.Hour, Issuer: "backoffice"},
		OTP:         config.OTPConfig{TTL: 5 * time.Minute, MaxAttempts: 3, DebugResponse: true},
		Activity:    config.ActivityConfig{MaxEntries: 1000},
	}
	logger := zap.NewNop()
	store := kv.NewMemoryStore()
	signer := &identity.TokenSigner{Key: []byte(cfg.JWT.Secret), TTL: cfg.JWT.TTL, Issuer: cfg.JWT.Issuer}
	provider := identity.NewLocalProvider(store, hashing.NewHasher(), signer, logger)

	accountRepo := repository.NewAccountRepository(store)
	otpRepo := repository.NewOtpRepository(store)
	activityRepo := repository.NewActivityRepository(store, cfg.Activity.MaxEntries)
	depositRepo := repository.NewDepositRepository(store)
	bankDepositRepo := repository.NewBankDepositRepository(store)
	roleRepo := repository.NewRoleRepository(store)
	bankRepo := repository.NewBankRepository(store)

	sender := &fakeSender{}
	activity := NewActivityLog(activityRepo, nil, nil, logger)
	gate := NewAuthorizationGate(provider, accountRepo, logger)
	accounts := NewAccountService(accountRepo, provider, activity, logger)
	otp := NewOtpFlow(cfg, otpRepo, accountRepo, provider, sender, activity, logger)
	bankDeps := NewBankDepositService(bankDepositRepo, bankRepo, gate, activity, logger)

	return &testEnv{
		cfg:      cfg,
		store:    store,
		provider: provider,
		sender:   sender,
		gate:     gate,
		accounts: accounts,
		otp:      otp,
		activity: activity,
		roles:    NewRoleService(roleRepo, accountRepo, activity, logger),
		deposits: NewDepositService(depositRepo, gate, activity, logger),
		bankDeps: bankDeps,
		banks:    NewBankService(bankRepo, bankDeps, activity, logger),
	}
}

// signup is a shorthand for creating an account in tests. Without a caller
// every account past the first comes out as plain Staff.
func (e *testEnv) signup(t *testing.T, name, email, role string) *AuthResult {
	t.Helper()
	result, err := e.accounts.Signup(context.Background(), nil, SignupInput{
		Name:     name,
		Email:    email,
		Password: "password123",
		Role:     role,
	}, "127.0.0.1")
	if err != nil {
		t.Fatalf("signup %s: %v", email, err)
	}
	return result
}
