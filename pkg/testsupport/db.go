package testsupport

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-blog-api/internal/auth"
	"github.com/goliatone/go-blog-api/internal/database"
	"github.com/goliatone/go-blog-api/internal/model"
)

// DiscardLogger returns a logger that drops every record.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// NewTestDB opens a private in-memory SQLite database with the schema
// applied. The database is closed when the test ends.
func NewTestDB(t testing.TB) *bun.DB {
	t.Helper()

	cfg := database.DefaultConfig()
	cfg.Driver = database.DriverSQLite
	cfg.URL = fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	cfg.MaxConns = 1
	cfg.MaxIdleTime = 0
	cfg.ConnectRetries = 1

	ctx := context.Background()
	db, err := database.Open(ctx, cfg, DiscardLogger())
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := database.Migrate(ctx, db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

// SeedBlog inserts the blog fixture into db and returns it.
func SeedBlog(t testing.TB, db *bun.DB) BlogFixture {
	t.Helper()

	ctx := context.Background()
	fixture := Blog(t)

	users := make([]model.User, 0, len(fixture.Users))
	for _, u := range fixture.Users {
		hash, err := auth.HashPassword(u.Password)
		if err != nil {
			t.Fatalf("failed to hash fixture password: %v", err)
		}
		users = append(users, model.User{ID: u.ID, Name: u.Name, Email: u.Email, Password: hash})
	}

	if _, err := db.NewInsert().Model(&users).Exec(ctx); err != nil {
		t.Fatalf("failed to seed users: %v", err)
	}
	if _, err := db.NewInsert().Model(&fixture.Posts).Exec(ctx); err != nil {
		t.Fatalf("failed to seed posts: %v", err)
	}
	if _, err := db.NewInsert().Model(&fixture.Comments).Exec(ctx); err != nil {
		t.Fatalf("failed to seed comments: %v", err)
	}

	return fixture
}
