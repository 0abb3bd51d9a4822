// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	altsrc "github.com/urfave/cli-altsrc/v3"
	"github.com/urfave/cli-altsrc/v3/toml"
	"github.com/urfave/cli/v3"
)

// Version information (set via ldflags during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

// sources creates a value source chain combining env vars and TOML config
func sources(envKey, tomlKey string, tomlSrc altsrc.Sourcer) cli.ValueSourceChain {
	chain := cli.EnvVars(envKey)
	chain.Chain = append(chain.Chain, toml.TOML(tomlKey, tomlSrc))
	return chain
}

func main() {
	var configFile string

	tomlSrc := altsrc.NewStringPtrSourcer(&configFile)

	cmd := &cli.Command{
		Name:    "accountkit",
		Usage:   "Account and one-time-token management",
		Version: fmt.Sprintf("%s (built %s)", Version, BuildTime),
		Flags: []cli.Flag{
			// Config file
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Value:       "config.toml",
				Usage:       "Path to configuration file",
				Destination: &configFile,
				Sources:     cli.EnvVars("CONFIG"),
			},

			// Database
			&cli.StringFlag{
				Name:    "database-dsn",
				Value:   "./data/accountkit.db",
				Usage:   "SQLite database path",
				Sources: sources("DATABASE_DSN", "database.dsn", tomlSrc),
			},

			// Authentication
			&cli.StringFlag{
				Name:    "secret-key",
				Usage:   "Secret key for token signing (at least 32 bytes)",
				Sources: sources("SECRET_KEY", "auth.secret_key", tomlSrc),
			},
			&cli.IntFlag{
				Name:    "min-password-length",
				Value:   12,
				Usage:   "Minimum accepted password length",
				Sources: sources("MIN_PASSWORD_LENGTH", "auth.min_password_length", tomlSrc),
			},
			&cli.DurationFlag{
				Name:    "reset-token-max-age",
				Value:   time.Hour,
				Usage:   "Validity window for password reset tokens",
				Sources: sources("RESET_TOKEN_MAX_AGE", "auth.reset_token_max_age", tomlSrc),
			},

			// Cleanup
			&cli.DurationFlag{
				Name:    "cleanup-interval",
				Value:   time.Hour,
				Usage:   "Interval between stale-token sweeps",
				Sources: sources("CLEANUP_INTERVAL", "cleanup.interval", tomlSrc),
			},
			&cli.DurationFlag{
				Name:    "cleanup-retention",
				Value:   24 * time.Hour,
				Usage:   "Grace window before used or expired tokens are deleted",
				Sources: sources("CLEANUP_RETENTION", "cleanup.retention", tomlSrc),
			},

			// Logging
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "Log level: debug, info, warn, error",
				Sources: sources("LOG_LEVEL", "log.level", tomlSrc),
			},
			&cli.StringFlag{
				Name:    "log-format",
				Value:   "text",
				Usage:   "Log format: text, json",
				Sources: sources("LOG_FORMAT", "log.format", tomlSrc),
			},
		},
		Commands: []*cli.Command{
			createAccountCommand(),
			sweepCommand(),
			cleanCommand(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
