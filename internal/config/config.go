// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package config holds the explicit configuration value passed to every
// service. There is no global configuration state.
package config

import (
	"errors"
	"time"

	"github.com/urfave/cli/v3"
)

// MinSecretKeyLen is the minimum length of the signing secret in bytes.
const MinSecretKeyLen = 32

type Config struct { //nolint:govet // fieldalignment not critical for config structs
	Database DatabaseConfig
	Auth     AuthConfig
	Cleanup  CleanupConfig
	Log      LogConfig
}

type DatabaseConfig struct {
	DSN string
}

type AuthConfig struct { //nolint:govet // fieldalignment not critical for config structs
	// SecretKey is the HMAC key for signed tokens. Required, >= 32 bytes.
	SecretKey string
	// MinPasswordLength is the minimum accepted password length.
	MinPasswordLength int
	// ResetTokenMaxAge is the validity window of password reset tokens.
	ResetTokenMaxAge time.Duration
}

type CleanupConfig struct {
	// Interval between sweeps of stale token rows.
	Interval time.Duration
	// Retention is the grace window after a token is used or expires
	// during which its row is kept around for debugging.
	Retention time.Duration
}

type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // text, json
}

// NewFromCLI builds a Config from parsed CLI flags.
func NewFromCLI(cmd *cli.Command) *Config {
	return &Config{
		Database: DatabaseConfig{
			DSN: cmd.String("database-dsn"),
		},
		Auth: AuthConfig{
			SecretKey:         cmd.String("secret-key"),
			MinPasswordLength: int(cmd.Int("min-password-length")),
			ResetTokenMaxAge:  cmd.Duration("reset-token-max-age"),
		},
		Cleanup: CleanupConfig{
			Interval:  cmd.Duration("cleanup-interval"),
			Retention: cmd.Duration("cleanup-retention"),
		},
		Log: LogConfig{
			Level:  cmd.String("log-level"),
			Format: cmd.String("log-format"),
		},
	}
}

// Default returns a Config with the same defaults the CLI flags carry.
// Mostly useful for tests and embedding callers.
func Default() *Config {
	return &Config{
		Auth: AuthConfig{
			MinPasswordLength: 12,
			ResetTokenMaxAge:  time.Hour,
		},
		Cleanup: CleanupConfig{
			Interval:  time.Hour,
			Retention: 24 * time.Hour,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Validate checks invariants that cannot be expressed as flag defaults.
func (c *Config) Validate() error {
	if c.Auth.SecretKey == "" {
		return errors.New("secret key is required")
	}
	if len(c.Auth.SecretKey) < MinSecretKeyLen {
		return errors.New("secret key must be at least 32 bytes")
	}
	if c.Auth.MinPasswordLength < 1 {
		return errors.New("minimum password length must be positive")
	}
	if c.Cleanup.Retention < 0 {
		return errors.New("cleanup retention cannot be negative")
	}
	return nil
}
