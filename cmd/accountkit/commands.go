// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/lmittmann/tint"
	"github.com/urfave/cli/v3"
	"github.com/vinovest/sqlx"

	"codeberg.org/oliverandrich/accountkit/internal/config"
	"codeberg.org/oliverandrich/accountkit/internal/database"
	"codeberg.org/oliverandrich/accountkit/internal/repository"
	"codeberg.org/oliverandrich/accountkit/internal/services/account"
	"codeberg.org/oliverandrich/accountkit/internal/services/cleanup"
	"codeberg.org/oliverandrich/accountkit/internal/services/signer"
	"codeberg.org/oliverandrich/accountkit/internal/services/token"
)

// setupLogger configures the global slog logger.
func setupLogger(level, format string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	} else {
		handler = tint.NewHandler(os.Stdout, &tint.Options{Level: logLevel})
	}

	slog.SetDefault(slog.New(handler))
}

// setup builds the shared service stack from CLI flags.
func setup(cmd *cli.Command) (*config.Config, *sqlx.DB, *repository.Repository, error) {
	cfg := config.NewFromCLI(cmd)
	setupLogger(cfg.Log.Level, cfg.Log.Format)

	if err := cfg.Validate(); err != nil {
		return nil, nil, nil, err
	}

	db, err := database.Open(cfg.Database.DSN)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	return cfg, db, repository.New(db), nil
}

func createAccountCommand() *cli.Command {
	return &cli.Command{
		Name:  "create-account",
		Usage: "Create a new account",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", Usage: "Email address", Required: true},
			&cli.StringFlag{Name: "password", Usage: "Password", Required: true},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, db, repo, err := setup(cmd)
			if err != nil {
				return err
			}
			defer db.Close()

			tokens := token.NewService(repo, signer.New(cfg.Auth.SecretKey))
			accounts := account.NewService(repo, tokens, &cfg.Auth)

			acc, err := accounts.Create(ctx, cmd.String("email"), cmd.String("password"))
			if err != nil {
				var verr *account.ValidationError
				if errors.As(err, &verr) {
					for field, messages := range verr.Fields {
						for _, message := range messages {
							fmt.Fprintf(os.Stderr, "%s %s\n", field, message)
						}
					}
					return errors.New("account not created")
				}
				return err
			}

			fmt.Printf("created account %d (%s)\n", acc.ID, acc.Email)
			return nil
		},
	}
}

func sweepCommand() *cli.Command {
	return &cli.Command{
		Name:  "sweep",
		Usage: "Delete stale token rows once and exit",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, db, repo, err := setup(cmd)
			if err != nil {
				return err
			}
			defer db.Close()

			cleaner := cleanup.NewCleaner(repo, &cfg.Cleanup, nil)
			deleted, err := cleaner.Sweep(ctx)
			if err != nil {
				return err
			}

			fmt.Printf("deleted %d stale tokens\n", deleted)
			return nil
		},
	}
}

func cleanCommand() *cli.Command {
	return &cli.Command{
		Name:  "clean",
		Usage: "Run the periodic token cleaner until interrupted",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, db, repo, err := setup(cmd)
			if err != nil {
				return err
			}
			defer db.Close()

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			cleaner := cleanup.NewCleaner(repo, &cfg.Cleanup, nil)
			cleaner.Run(ctx)
			return nil
		},
	}
}
