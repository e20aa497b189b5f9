package repository

import (
	"context"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-blog-api/internal/model"
)

// Comments writes to the comments table.
type Comments struct {
	db bun.IDB
}

// NewComments returns a Comments repository on db.
func NewComments(db bun.IDB) *Comments {
	return &Comments{db: db}
}

// Create inserts a comment and returns the stored row.
func (r *Comments) Create(ctx context.Context, postID, userID int64, content string) (*model.Comment, error) {
	comment := &model.Comment{PostID: postID, UserID: &userID, Content: content}
	if _, err := r.db.NewInsert().Model(comment).Returning("*").Exec(ctx); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, fmt.Sprintf("failed to create comment for post ID %d", postID))
	}
	return comment, nil
}
