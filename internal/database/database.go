package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	goerrors "github.com/goliatone/go-errors"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/schema"
)

// Supported database/sql driver names.
const (
	DriverPostgres = "postgres"
	DriverPgx      = "pgx"
	DriverSQLite   = "sqlite3"
)

// Config holds the pool and connection retry settings.
type Config struct {
	Driver         string
	URL            string
	MaxConns       int
	MaxIdleTime    time.Duration
	ConnectRetries int
	RetryBackoff   time.Duration
	PingTimeout    time.Duration
}

// DefaultConfig returns the pool settings used in production.
func DefaultConfig() Config {
	return Config{
		Driver:         DriverPostgres,
		MaxConns:       5,
		MaxIdleTime:    30 * time.Second,
		ConnectRetries: 5,
		RetryBackoff:   5 * time.Second,
		PingTimeout:    2 * time.Second,
	}
}

// Open creates the pool and waits until the database answers a ping.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*bun.DB, error) {
	if logger == nil {
		logger = slog.Default()
	}

	dialect, err := dialectFor(cfg.Driver)
	if err != nil {
		return nil, err
	}

	sqldb, err := sql.Open(cfg.Driver, cfg.URL)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to open database")
	}
	if cfg.MaxConns > 0 {
		sqldb.SetMaxOpenConns(cfg.MaxConns)
	}
	sqldb.SetConnMaxIdleTime(cfg.MaxIdleTime)

	db := bun.NewDB(sqldb, dialect)
	if err := ConnectWithRetry(ctx, db, cfg, logger); err != nil {
		_ = db.Close()
		return nil, err
	}

	logger.Info("database connected", slog.String("driver", cfg.Driver))
	return db, nil
}

// ConnectWithRetry pings db until it answers, giving up after
// cfg.ConnectRetries failed attempts spaced by cfg.RetryBackoff.
func ConnectWithRetry(ctx context.Context, db *bun.DB, cfg Config, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	attempts := cfg.ConnectRetries
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if lastErr = ping(ctx, db, cfg.PingTimeout); lastErr == nil {
			return nil
		}

		logger.Warn("database connection failed",
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", attempts),
			slog.String("error", lastErr.Error()),
		)
		if attempt == attempts {
			break
		}

		select {
		case <-ctx.Done():
			return goerrors.Wrap(ctx.Err(), goerrors.CategoryInternal, "database connection aborted")
		case <-time.After(cfg.RetryBackoff):
		}
	}

	return goerrors.Wrap(lastErr, goerrors.CategoryInternal,
		fmt.Sprintf("could not connect to database after %d attempts", attempts))
}

func ping(ctx context.Context, db *bun.DB, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return db.PingContext(ctx)
}

func dialectFor(driver string) (schema.Dialect, error) {
	switch driver {
	case DriverPostgres, DriverPgx:
		return pgdialect.New(), nil
	case DriverSQLite:
		return sqlitedialect.New(), nil
	default:
		return nil, goerrors.New(fmt.Sprintf("unsupported database driver %q", driver), goerrors.CategoryBadInput)
	}
}
