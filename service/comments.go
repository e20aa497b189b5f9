package service

import (
	"context"
	"fmt"
	"log/slog"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-blog-api/internal/model"
)

// CommentStore is the subset of repository.Comments used by CommentService.
type CommentStore interface {
	Create(ctx context.Context, postID, userID int64, content string) (*model.Comment, error)
}

// PostLookup resolves a post by id, returning nil when absent.
type PostLookup interface {
	GetByID(ctx context.Context, id int64) (*model.Post, error)
}

// CommentService adds comments to existing posts.
type CommentService struct {
	comments CommentStore
	posts    PostLookup
	users    UserLookup
	logger   *slog.Logger
}

// NewCommentService wires the comment service.
func NewCommentService(comments CommentStore, posts PostLookup, users UserLookup, logger *slog.Logger) *CommentService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CommentService{
		comments: comments,
		posts:    posts,
		users:    users,
		logger:   logger.With(slog.String("component", "comment_service")),
	}
}

// AddComment stores a comment by userID on postID.
func (s *CommentService) AddComment(ctx context.Context, postID, userID int64, content string) (*model.Comment, error) {
	if postID <= 0 {
		return nil, invalid("Invalid post ID", goerrors.FieldError{Field: "postId", Message: "must be a positive integer", Value: postID})
	}
	if userID <= 0 {
		return nil, invalid("Invalid user ID", goerrors.FieldError{Field: "userId", Message: "must be a positive integer", Value: userID})
	}

	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, notFound(fmt.Sprintf("Post with ID %d does not exist", postID))
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, notFound(fmt.Sprintf("User with ID %d does not exist", userID))
	}

	comment, err := s.comments.Create(ctx, postID, userID, content)
	if err != nil {
		return nil, err
	}

	s.logger.DebugContext(ctx, "comment added", slog.Int64("post_id", postID), slog.Int64("comment_id", comment.ID))
	return comment, nil
}
