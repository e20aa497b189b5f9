package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-blog-api/internal/database"
)

func newMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create the tables and indexes if they do not exist",
		RunE: func(cmd *cobra.Command, _ []string) error {
			envFile, err := cmd.Flags().GetString(envFileFlag)
			if err != nil {
				return err
			}
			return migrate(cmd.Context(), envFile)
		},
	}
	cobraflags.RegisterMap(cmd, envFileFlags())
	return cmd
}

func migrate(parent context.Context, envFile string) error {
	cfg, logger, err := bootstrap(envFile)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg.DatabaseSettings(), logger)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		return err
	}
	logger.Info("schema is up to date", slog.String("driver", cfg.Database.Driver))
	return nil
}
