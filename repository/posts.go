package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-blog-api/internal/model"
)

// Posts queries the posts table.
type Posts struct {
	db bun.IDB
}

// NewPosts returns a Posts repository on db.
func NewPosts(db bun.IDB) *Posts {
	return &Posts{db: db}
}

// ListByUser returns the posts written by userID, oldest first. A user with
// no posts yields an empty, non-nil slice.
func (r *Posts) ListByUser(ctx context.Context, userID int64) ([]model.Post, error) {
	posts := []model.Post{}
	err := r.db.NewSelect().
		Model(&posts).
		Where("user_id = ?", userID).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, fmt.Sprintf("failed to fetch posts for user ID %d", userID))
	}
	return posts, nil
}

// Create inserts a post for userID and returns the stored row.
func (r *Posts) Create(ctx context.Context, userID int64, title, content string) (*model.Post, error) {
	post := &model.Post{UserID: userID, Title: title, Content: content}
	if _, err := r.db.NewInsert().Model(post).Returning("*").Exec(ctx); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, fmt.Sprintf("failed to create post for user ID %d", userID))
	}
	return post, nil
}

// GetByID returns the post with id, or nil when it does not exist.
func (r *Posts) GetByID(ctx context.Context, id int64) (*model.Post, error) {
	post := new(model.Post)
	err := r.db.NewSelect().Model(post).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, fmt.Sprintf("failed to fetch post by ID %d", id))
	}
	return post, nil
}
