package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"backoffice-service/internal/identity"
	"backoffice-service/internal/models"
	"backoffice-service/internal/repository/kv"
)

const otpPrefix = "otp:"

// ErrChallengeNotFound is returned when no challenge exists for an email.
var ErrChallengeNotFound = errors.New("otp challenge not found")

type OtpRepository struct {
	store kv.Store
}

func NewOtpRepository(store kv.Store) *OtpRepository {
	return &OtpRepository{store: store}
}

// Put stores the challenge, overwriting any prior one for the same email.
// The key TTL is a backstop slightly past the logical expiry; verification
// always checks the ExpiresAt timestamp.
func (r *OtpRepository) Put(ctx context.Context, challenge *models.OtpChallenge) error {
	data, err := json.Marshal(challenge)
	if err != nil {
		return err
	}
	ttl := time.Until(challenge.ExpiresAt) + time.Minute
	if ttl <= 0 {
		ttl = time.Minute
	}
	if err := r.store.Set(ctx, r.key(challenge.Email), data, ttl); err != nil {
		return fmt.Errorf("failed to store otp challenge: %w", err)
	}
	return nil
}

func (r *OtpRepository) Get(ctx context.Context, email string) (*models.OtpChallenge, error) {
	data, err := r.store.Get(ctx, r.key(email))
	if err != nil {
		if err == kv.ErrNotFound {
			return nil, ErrChallengeNotFound
		}
		return nil, err
	}
	var challenge models.OtpChallenge
	if err := json.Unmarshal(data, &challenge); err != nil {
		return nil, fmt.Errorf("corrupt otp challenge: %w", err)
	}
	return &challenge, nil
}

func (r *OtpRepository) Delete(ctx context.Context, email string) error {
	return r.store.Delete(ctx, r.key(email))
}

func (r *OtpRepository) key(email string) string {
	return otpPrefix + identity.NormalizeEmail(email)
}
