package database

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-blog-api/internal/model"
)

type index struct {
	name   string
	model  any
	column string
}

var indexes = []index{
	{"idx_users_email", (*model.User)(nil), "email"},
	{"idx_posts_user_id", (*model.Post)(nil), "user_id"},
	{"idx_posts_created_at", (*model.Post)(nil), "created_at"},
	{"idx_posts_updated_at", (*model.Post)(nil), "updated_at"},
	{"idx_comments_post_id", (*model.Comment)(nil), "post_id"},
	{"idx_comments_user_id", (*model.Comment)(nil), "user_id"},
	{"idx_comments_created_at", (*model.Comment)(nil), "created_at"},
}

// Migrate creates the users, posts and comments tables and their indexes.
// It is safe to run against an already migrated database.
func Migrate(ctx context.Context, db *bun.DB) error {
	tables := []*bun.CreateTableQuery{
		db.NewCreateTable().
			Model((*model.User)(nil)).
			IfNotExists(),
		db.NewCreateTable().
			Model((*model.Post)(nil)).
			IfNotExists().
			ForeignKey(`("user_id") REFERENCES "users" ("id") ON DELETE CASCADE`),
		db.NewCreateTable().
			Model((*model.Comment)(nil)).
			IfNotExists().
			ForeignKey(`("post_id") REFERENCES "posts" ("id") ON DELETE CASCADE`).
			ForeignKey(`("user_id") REFERENCES "users" ("id") ON DELETE SET NULL`),
	}
	for _, q := range tables {
		if _, err := q.Exec(ctx); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create table")
		}
	}

	for _, idx := range indexes {
		_, err := db.NewCreateIndex().
			Model(idx.model).
			Index(idx.name).
			Column(idx.column).
			IfNotExists().
			Exec(ctx)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create index "+idx.name)
		}
	}

	return nil
}
