package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"backoffice-service/internal/hashing"
	"backoffice-service/internal/repository/kv"
	"backoffice-service/internal/util"
)

const (
	credentialPrefix = "credential:"
	emailIndexPrefix = "credential_email:"
)

type credentialRecord struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	PasswordHash string `json:"passwordHash"`
}

// LocalProvider keeps credentials in the key-value store, hashed with
// argon2id, and issues HS256 bearer tokens.
type LocalProvider struct {
	store  kv.Store
	hasher *hashing.Hasher
	signer *TokenSigner
	logger *zap.Logger
}

func NewLocalProvider(store kv.Store, hasher *hashing.Hasher, signer *TokenSigner, logger *zap.Logger) *LocalProvider {
	return &LocalProvider{
		store:  store,
		hasher: hasher,
		signer: signer,
		logger: logger,
	}
}

func (p *LocalProvider) Verify(ctx context.Context, token string) (Identity, error) {
	claims, err := p.signer.Parse(token)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return Identity{ID: claims.Subject, Email: claims.Email}, nil
}

func (p *LocalProvider) CreateUser(ctx context.Context, email, password, name string) (Identity, error) {
	email = NormalizeEmail(email)
	id := uuid.New().String()

	record := credentialRecord{
		ID:    id,
		Email: email,
		Name:  name,
	}
	hash, err := p.hasher.Hash(password)
	if err != nil {
		return Identity{}, fmt.Errorf("failed to hash password: %w", err)
	}
	record.PasswordHash = hash

	// Claim the email first so a concurrent signup for the same address
	// loses cleanly.
	won, err := p.store.SetNX(ctx, emailIndexPrefix+email, []byte(id), 0)
	if err != nil {
		return Identity{}, fmt.Errorf("failed to claim email: %w", err)
	}
	if !won {
		return Identity{}, ErrEmailTaken
	}

	data, err := json.Marshal(record)
	if err != nil {
		return Identity{}, err
	}
	if err := p.store.Set(ctx, credentialPrefix+id, data, 0); err != nil {
		// Roll the claim back so the address is not stranded.
		_ = p.store.Delete(ctx, emailIndexPrefix+email)
		return Identity{}, fmt.Errorf("failed to store credential: %w", err)
	}

	p.logger.Info("credential created",
		util.String("identity_id", id),
		util.String("email", email),
	)
	return Identity{ID: id, Email: email}, nil
}

func (p *LocalProvider) SignIn(ctx context.Context, email, password string) (string, Identity, error) {
	record, err := p.lookupByEmail(ctx, email)
	if err != nil {
		// A missing address reads the same as a bad password.
		return "", Identity{}, ErrInvalidCredentials
	}

	ok, err := p.hasher.Verify(password, record.PasswordHash)
	if err != nil || !ok {
		return "", Identity{}, ErrInvalidCredentials
	}

	token, err := p.signer.Issue(record.ID, record.Email)
	if err != nil {
		return "", Identity{}, fmt.Errorf("failed to issue token: %w", err)
	}
	return token, Identity{ID: record.ID, Email: record.Email}, nil
}

func (p *LocalProvider) UpdatePassword(ctx context.Context, identityID, newPassword string) error {
	record, err := p.lookupByID(ctx, identityID)
	if err != nil {
		return err
	}
	hash, err := p.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	record.PasswordHash = hash
	return p.saveRecord(ctx, record)
}

func (p *LocalProvider) UpdateEmail(ctx context.Context, identityID, newEmail string) error {
	newEmail = NormalizeEmail(newEmail)
	record, err := p.lookupByID(ctx, identityID)
	if err != nil {
		return err
	}
	if record.Email == newEmail {
		return nil
	}

	won, err := p.store.SetNX(ctx, emailIndexPrefix+newEmail, []byte(identityID), 0)
	if err != nil {
		return fmt.Errorf("failed to claim email: %w", err)
	}
	if !won {
		return ErrEmailTaken
	}

	oldEmail := record.Email
	record.Email = newEmail
	if err := p.saveRecord(ctx, record); err != nil {
		_ = p.store.Delete(ctx, emailIndexPrefix+newEmail)
		return err
	}
	return p.store.Delete(ctx, emailIndexPrefix+oldEmail)
}

func (p *LocalProvider) DeleteUser(ctx context.Context, identityID string) error {
	record, err := p.lookupByID(ctx, identityID)
	if err != nil {
		if err == ErrIdentityNotFound {
			return nil
		}
		return err
	}
	return p.store.Delete(ctx,
		credentialPrefix+identityID,
		emailIndexPrefix+record.Email,
	)
}

func (p *LocalProvider) lookupByID(ctx context.Context, identityID string) (*credentialRecord, error) {
	data, err := p.store.Get(ctx, credentialPrefix+identityID)
	if err != nil {
		if err == kv.ErrNotFound {
			return nil, ErrIdentityNotFound
		}
		return nil, err
	}
	var record credentialRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("corrupt credential record: %w", err)
	}
	return &record, nil
}

func (p *LocalProvider) lookupByEmail(ctx context.Context, email string) (*credentialRecord, error) {
	id, err := p.store.Get(ctx, emailIndexPrefix+NormalizeEmail(email))
	if err != nil {
		if err == kv.ErrNotFound {
			return nil, ErrIdentityNotFound
		}
		return nil, err
	}
	return p.lookupByID(ctx, string(id))
}

func (p *LocalProvider) saveRecord(ctx context.Context, record *credentialRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return p.store.Set(ctx, credentialPrefix+record.ID, data, 0)
}

// NormalizeEmail lowercases and trims an address so lookups are
// case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
