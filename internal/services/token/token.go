// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package token manages single-use tokens: issuing signed wire tokens,
// decoding them, and consuming them at most once.
//
// A token lives in two places. The wire token is a signed string carrying
// {id, secret, type, data}; it is handed to the user and never stored. The
// database row stores the id and sha256(secret), so a leaked database dump
// cannot be redeemed. Rows move created -> used (terminal) or passively
// expire; the cleanup service deletes them after a grace window.
package token

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"codeberg.org/oliverandrich/accountkit/internal/models"
	"codeberg.org/oliverandrich/accountkit/internal/repository"
	"codeberg.org/oliverandrich/accountkit/internal/services/signer"
)

// ErrInvalid is the single outcome for every unusable token: tampered,
// wrongly scoped, wrong type, expired, already used, or never issued.
// Callers cannot tell these apart.
var ErrInvalid = errors.New("invalid token")

// secretLen is the length of the random token secret in bytes.
const secretLen = 32

// Payload is the signed content of a wire token.
type Payload struct {
	ID     string            `json:"id"`
	Secret string            `json:"secret"`
	Type   string            `json:"type"`
	Data   map[string]string `json:"data,omitempty"`
}

// Service issues, decodes and consumes single-use tokens.
type Service struct {
	repo   *repository.Repository
	signer *signer.Signer
}

// NewService creates a new token service.
func NewService(repo *repository.Repository, sig *signer.Signer) *Service {
	return &Service{repo: repo, signer: sig}
}

// Create issues a new token of the given type. When account is non-nil a
// row is persisted and the wire token is signed for that account's scope;
// when account is nil no row exists, but the same generation and signing
// work happens so both paths cost the same to an outside observer.
func (s *Service) Create(ctx context.Context, account *models.Account, tokenType string, data map[string]string, maxAge time.Duration) (string, error) {
	secret, err := newSecret()
	if err != nil {
		return "", fmt.Errorf("failed to generate token secret: %w", err)
	}

	payload := &Payload{
		ID:     uuid.NewString(),
		Secret: secret,
		Type:   tokenType,
		Data:   data,
	}
	tokenHash := hashSecret(secret)

	if account != nil {
		now := time.Now().UTC()
		row := &models.Token{
			ID:        payload.ID,
			TokenHash: tokenHash,
			TokenType: tokenType,
			AccountID: &account.ID,
			ExpiresAt: now.Add(maxAge),
			CreatedAt: now,
		}
		if err := s.repo.CreateToken(ctx, row); err != nil {
			return "", fmt.Errorf("failed to persist token: %w", err)
		}
	}

	encoded, err := s.signer.Sign(scopeFor(account), payload)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return encoded, nil
}

// Decode verifies a wire token against the scope of the caller-resolved
// account and returns its payload. Expiry is not checked here; the database
// row is the source of truth for it, inside Use. A tampered or wrongly
// scoped token fails immediately without touching the database.
func (s *Service) Decode(encoded string, account *models.Account) (*Payload, error) {
	var payload Payload
	if err := s.signer.Verify(scopeFor(account), encoded, &payload); err != nil {
		return nil, ErrInvalid
	}
	return &payload, nil
}

// Use consumes the token and runs op inside the same transaction. The
// conditional update flips used_at only if the row matches the payload and
// account, is unused, and is unexpired; zero affected rows aborts with
// ErrInvalid before op runs. If op fails, its error is returned untouched
// and the whole transaction rolls back, token consumption included, so a
// failed guarded operation does not spend the token.
func (s *Service) Use(ctx context.Context, payload *Payload, account *models.Account, op func(txRepo *repository.Repository) error) error {
	if payload == nil || account == nil {
		return ErrInvalid
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	txRepo := s.repo.WithTx(tx)

	affected, err := txRepo.ConsumeToken(ctx, payload.ID, hashSecret(payload.Secret), payload.Type, account.ID, time.Now().UTC())
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to consume token: %w", err)
	}
	if affected == 0 {
		_ = tx.Rollback()
		return ErrInvalid
	}

	if err := op(txRepo); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// scopeFor derives the signing scope from the account identity. Tokens
// issued without a real account share one fixed scope.
func scopeFor(account *models.Account) string {
	if account == nil {
		return "account:none"
	}
	return fmt.Sprintf("account:%d", account.ID)
}

func newSecret() (string, error) {
	bytes := make([]byte, secretLen)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}

func hashSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}
