package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-extras/cobraflags"
	goerrors "github.com/goliatone/go-errors"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-blog-api/cache"
	"github.com/goliatone/go-blog-api/internal/config"
	"github.com/goliatone/go-blog-api/internal/database"
	"github.com/goliatone/go-blog-api/internal/logging"
	"github.com/goliatone/go-blog-api/pkg/di"
)

const cachePingTimeout = 2 * time.Second

func newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			envFile, err := cmd.Flags().GetString(envFileFlag)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), envFile)
		},
	}
	cobraflags.RegisterMap(cmd, envFileFlags())
	return cmd
}

func serve(parent context.Context, envFile string) error {
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
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("failed to close database", slog.String("error", err.Error()))
		}
	}()

	store, err := cache.NewStore(cfg.CacheSettings(), logger)
	if err != nil {
		return err
	}
	pingCtx, cancel := context.WithTimeout(ctx, cachePingTimeout)
	if err := store.Ping(pingCtx); err != nil {
		logger.Warn("cache unavailable, requests will be served from the database",
			slog.String("backend", cfg.Cache.Backend),
			slog.String("error", err.Error()))
	} else {
		logger.Info("cache connected", slog.String("backend", cfg.Cache.Backend))
	}
	cancel()

	container, err := di.NewContainer(cfg, db, store, logger)
	if err != nil {
		_ = store.Close()
		return err
	}
	defer func() {
		if err := container.Close(); err != nil {
			logger.Error("failed to close cache", slog.String("error", err.Error()))
		}
	}()

	e, err := container.Server()
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		logger.Info("server listening", slog.String("addr", cfg.Addr()), slog.String("env", cfg.Env))
		if err := e.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "server stopped unexpectedly")
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down", slog.Duration("timeout", cfg.ShutdownTimeout))
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelShutdown()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "graceful shutdown failed")
	}
	logger.Info("server stopped")
	return nil
}

// bootstrap loads the configuration and builds the process logger.
func bootstrap(envFile string) (config.Config, *slog.Logger, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return config.Config{}, nil, err
	}
	logger, err := logging.New(os.Stdout, cfg.LogLevel, cfg.IsProduction())
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logger, nil
}
