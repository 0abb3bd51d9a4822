// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package config_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/oliverandrich/accountkit/internal/config"
)

func validConfig() *config.Config {
	cfg := config.Default()
	cfg.Auth.SecretKey = strings.Repeat("k", config.MinSecretKeyLen)
	return cfg
}

func TestDefault(t *testing.T) {
	cfg := config.Default()

	assert.Equal(t, 12, cfg.Auth.MinPasswordLength)
	assert.Equal(t, time.Hour, cfg.Auth.ResetTokenMaxAge)
	assert.Equal(t, time.Hour, cfg.Cleanup.Interval)
	assert.Equal(t, 24*time.Hour, cfg.Cleanup.Retention)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestValidate(t *testing.T) {
	cfg := validConfig()

	require.NoError(t, cfg.Validate())
}

func TestValidate_MissingSecretKey(t *testing.T) {
	cfg := validConfig()
	cfg.Auth.SecretKey = ""

	assert.Error(t, cfg.Validate())
}

func TestValidate_ShortSecretKey(t *testing.T) {
	cfg := validConfig()
	cfg.Auth.SecretKey = "too-short"

	assert.Error(t, cfg.Validate())
}

func TestValidate_NonPositiveMinPasswordLength(t *testing.T) {
	cfg := validConfig()
	cfg.Auth.MinPasswordLength = 0

	assert.Error(t, cfg.Validate())
}

func TestValidate_NegativeRetention(t *testing.T) {
	cfg := validConfig()
	cfg.Cleanup.Retention = -time.Second

	assert.Error(t, cfg.Validate())
}
