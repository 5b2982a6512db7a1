package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"time"

	"go.uber.org/zap"

	"backoffice-service/internal/config"
	"backoffice-service/internal/identity"
	"backoffice-service/internal/mail"
	"backoffice-service/internal/models"
	"backoffice-service/internal/repository"
	"backoffice-service/internal/util"
)

// OtpFlow drives the password-recovery passcode lifecycle: issue, deliver,
// verify, and on success rotate the account password.
type OtpFlow struct {
	cfg        *config.Config
	challenges *repository.OtpRepository
	accounts   *repository.AccountRepository
	provider   identity.Provider
	sender     mail.Sender
	activity   *ActivityLog
	logger     *zap.Logger
}

func NewOtpFlow(cfg *config.Config, challenges *repository.OtpRepository, accounts *repository.AccountRepository, provider identity.Provider, sender mail.Sender, activity *ActivityLog, logger *zap.Logger) *OtpFlow {
	return &OtpFlow{
		cfg:        cfg,
		challenges: challenges,
		accounts:   accounts,
		provider:   provider,
		sender:     sender,
		activity:   activity,
		logger:     logger,
	}
}

// RequestResult carries the issue outcome. DebugCode is set only when email
// delivery failed and the debug fallback is enabled outside production.
type RequestResult struct {
	Delivered bool
	DebugCode string
	ExpiresAt time.Time
}

// Request issues a fresh passcode for the address. A pending challenge is
// overwritten, resetting its attempt counter. The account must exist; no
// account enumeration protection is attempted here since the back office is
// an internal surface.
func (f *OtpFlow) Request(ctx context.Context, email string) (*RequestResult, error) {
	email = identity.NormalizeEmail(email)
	if email == "" {
		return nil, validationError("email is required")
	}
	if _, err := f.accounts.GetByEmail(ctx, email); err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, fmt.Errorf("%w: no account for email", ErrNotFound)
		}
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	code, err := generateCode()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	now := time.Now()
	challenge := &models.OtpChallenge{
		Email:     email,
		Code:      code,
		Attempts:  0,
		IssuedAt:  now,
		ExpiresAt: now.Add(f.cfg.OTP.TTL),
	}
	if err := f.challenges.Put(ctx, challenge); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	result := &RequestResult{ExpiresAt: challenge.ExpiresAt}
	if err := f.sender.SendOTP(ctx, email, code, f.cfg.OTP.TTL); err != nil {
		f.logger.Warn("otp email delivery failed", util.String("email", email), util.ErrorField(err))
		if !f.cfg.OTPFallbackAllowed() {
			return nil, fmt.Errorf("%w: otp delivery failed", ErrUpstream)
		}
		result.DebugCode = code
		return result, nil
	}
	result.Delivered = true
	return result, nil
}

// Verify checks a submitted code and on success sets the new password on the
// identity provider. The challenge is destroyed on success, on expiry, and
// on the final failed attempt.
func (f *OtpFlow) Verify(ctx context.Context, email, code, newPassword, ip string) error {
	email = identity.NormalizeEmail(email)
	if email == "" || code == "" {
		return validationError("email and code are required")
	}
	if len(newPassword) < 8 {
		return validationError("password must be at least 8 characters")
	}

	challenge, err := f.challenges.Get(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrChallengeNotFound) {
			return ErrNoChallenge
		}
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	if challenge.Expired(time.Now()) {
		_ = f.challenges.Delete(ctx, email)
		return ErrOtpExpired
	}
	if challenge.Attempts >= f.cfg.OTP.MaxAttempts {
		_ = f.challenges.Delete(ctx, email)
		return ErrOtpAttemptsExhausted
	}

	if subtle.ConstantTimeCompare([]byte(challenge.Code), []byte(code)) != 1 {
		challenge.Attempts++
		if challenge.Attempts >= f.cfg.OTP.MaxAttempts {
			_ = f.challenges.Delete(ctx, email)
			return ErrOtpAttemptsExhausted
		}
		if err := f.challenges.Put(ctx, challenge); err != nil {
			return fmt.Errorf("%w: %v", ErrUpstream, err)
		}
		return &OtpInvalidError{Remaining: f.cfg.OTP.MaxAttempts - challenge.Attempts}
	}

	account, err := f.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return fmt.Errorf("%w: no account for email", ErrNotFound)
		}
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if err := f.provider.UpdatePassword(ctx, account.AccountID, newPassword); err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if err := f.challenges.Delete(ctx, email); err != nil {
		f.logger.Warn("failed to clear consumed otp challenge", util.String("email", email), util.ErrorField(err))
	}
	f.activity.Record(ctx, account, models.ActionPasswordReset, "reset password via verification code", "", ip)
	f.logger.Info("password reset completed", util.String("accountId", account.AccountID))
	return nil
}

// generateCode draws a uniform 6-digit code, zero padded.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
