// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package account is the facade for account management: registration,
// authentication, password changes and password resets via single-use
// tokens.
//
// Failures come in three distinct types. A *ValidationError aggregates
// violated rules per field. ErrInvalid deliberately collapses every
// credential and token failure into one opaque outcome, so a caller cannot
// probe which emails exist or why a token was rejected. Anything else is a
// wrapped system error.
package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"codeberg.org/oliverandrich/accountkit/internal/config"
	"codeberg.org/oliverandrich/accountkit/internal/models"
	"codeberg.org/oliverandrich/accountkit/internal/repository"
	"codeberg.org/oliverandrich/accountkit/internal/services/token"
)

// ErrInvalid covers unknown email, wrong password, and every unusable
// token alike. Callers cannot tell these cases apart.
var ErrInvalid = errors.New("invalid credentials or token")

// dummyHash is compared against when no account matches the email, so the
// lookup-miss path costs the same bcrypt work as a real verification.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("dummy-password-for-timing"), bcrypt.DefaultCost)

// Service implements account management on top of the repository and the
// token service.
type Service struct {
	repo   *repository.Repository
	tokens *token.Service
	config *config.AuthConfig
}

// NewService creates a new account service.
func NewService(repo *repository.Repository, tokens *token.Service, cfg *config.AuthConfig) *Service {
	return &Service{repo: repo, tokens: tokens, config: cfg}
}

// Create registers a new account. All violated rules are collected into one
// *ValidationError; validation never stops at the first failure.
func (s *Service) Create(ctx context.Context, email, password string) (*models.Account, error) {
	ve := &ValidationError{}
	if err := s.validateEmail(ctx, ve, email); err != nil {
		return nil, err
	}
	s.validatePassword(ve, password)
	if verr := ve.orNil(); verr != nil {
		return nil, verr
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	account, err := s.repo.CreateAccount(ctx, email, string(passwordHash))
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	slog.Info("account_created", "account_id", account.ID, "email", email)
	return account, nil
}

// Authenticate verifies an email/password pair. Exactly one bcrypt compare
// runs whether or not the email exists, so the two miss cases share both
// timing and result.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*models.Account, error) {
	account, err := s.repo.GetAccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			slog.Warn("authenticate_failed", "email", email)
			return nil, ErrInvalid
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		slog.Warn("authenticate_failed", "email", email)
		return nil, ErrInvalid
	}

	return account, nil
}

// ChangePassword replaces the password of an account whose current password
// is known. The current password must verify, the new one must validate.
func (s *Service) ChangePassword(ctx context.Context, account *models.Account, currentPassword, newPassword string) (*models.Account, error) {
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(currentPassword)); err != nil {
		return nil, ErrInvalid
	}

	ve := &ValidationError{}
	s.validatePassword(ve, newPassword)
	if verr := ve.orNil(); verr != nil {
		return nil, verr
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.repo.UpdateAccountPassword(ctx, account.ID, string(passwordHash)); err != nil {
		return nil, fmt.Errorf("failed to update password: %w", err)
	}

	slog.Info("password_changed", "account_id", account.ID)
	return s.repo.GetAccountByID(ctx, account.ID)
}

// StartPasswordReset issues a password reset token for the email. A token
// string comes back whether or not an account exists; only a real account
// gets a database row behind it. A zero maxAge falls back to the configured
// default.
func (s *Service) StartPasswordReset(ctx context.Context, email string, maxAge time.Duration) (string, error) {
	if maxAge == 0 {
		maxAge = s.config.ResetTokenMaxAge
	}

	account, err := s.repo.GetAccountByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return "", fmt.Errorf("failed to get account: %w", err)
		}
		account = nil
	}

	encoded, err := s.tokens.Create(ctx, account, models.TokenTypePasswordReset, nil, maxAge)
	if err != nil {
		return "", err
	}

	slog.Info("password_reset_started", "email", email)
	return encoded, nil
}

// ResetPassword consumes a reset token and sets a new password, all inside
// one transaction. A *ValidationError on the new password surfaces and
// rolls the token consumption back too; every other failure collapses to
// ErrInvalid.
func (s *Service) ResetPassword(ctx context.Context, email, encodedToken, newPassword string) (*models.Account, error) {
	account, err := s.repo.GetAccountByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("failed to get account: %w", err)
		}
		account = nil
	}

	payload, err := s.tokens.Decode(encodedToken, account)
	if err != nil {
		slog.Warn("password_reset_failed", "email", email)
		return nil, ErrInvalid
	}
	if payload.Type != models.TokenTypePasswordReset {
		slog.Warn("password_reset_failed", "email", email)
		return nil, ErrInvalid
	}

	err = s.tokens.Use(ctx, payload, account, func(txRepo *repository.Repository) error {
		ve := &ValidationError{}
		s.validatePassword(ve, newPassword)
		if verr := ve.orNil(); verr != nil {
			return verr
		}
		passwordHash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
		return txRepo.UpdateAccountPassword(ctx, account.ID, string(passwordHash))
	})
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			return nil, verr
		}
		if errors.Is(err, token.ErrInvalid) {
			slog.Warn("password_reset_failed", "email", email)
			return nil, ErrInvalid
		}
		return nil, err
	}

	slog.Info("password_reset_completed", "account_id", account.ID)
	return s.repo.GetAccountByID(ctx, account.ID)
}
