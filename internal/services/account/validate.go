// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package account

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
)

// ValidationError aggregates every violated rule, keyed by field. Callers
// always get the full picture, not just the first failure.
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	var parts []string
	for field, messages := range e.Fields {
		parts = append(parts, field+": "+strings.Join(messages, ", "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], message)
}

// orNil returns nil when no rule was violated, so callers can compare
// against nil instead of counting fields.
func (e *ValidationError) orNil() *ValidationError {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// validateEmail collects email violations into ve: blank, bad format, taken.
func (s *Service) validateEmail(ctx context.Context, ve *ValidationError, email string) error {
	if email == "" {
		ve.add("email", "can't be blank")
		return nil
	}
	if _, err := mail.ParseAddress(email); err != nil {
		ve.add("email", "must be a valid email address")
	}
	taken, err := s.repo.EmailExists(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to check existing account: %w", err)
	}
	if taken {
		ve.add("email", "has already been taken")
	}
	return nil
}

// validatePassword collects password violations into ve: blank, too short.
func (s *Service) validatePassword(ve *ValidationError, password string) {
	if password == "" {
		ve.add("password", "can't be blank")
		return
	}
	if len(password) < s.config.MinPasswordLength {
		ve.add("password", fmt.Sprintf("must be at least %d characters long", s.config.MinPasswordLength))
	}
}
