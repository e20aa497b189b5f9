package service

import (
	"context"
	"testing"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-blog-api/internal/model"
	"github.com/goliatone/go-blog-api/pkg/testsupport"
)

func newCommentFixture() (*CommentService, *mockCommentStore) {
	users := newMockUserStore(model.User{ID: 1, Name: "Ada", Email: "ada@example.com"})
	posts := newMockPostStore(model.Post{ID: 10, UserID: 1, Title: "Notes", Content: "First"})
	comments := &mockCommentStore{}
	return NewCommentService(comments, posts, users, testsupport.DiscardLogger()), comments
}

func TestCommentService_AddComment(t *testing.T) {
	svc, comments := newCommentFixture()

	comment, err := svc.AddComment(context.Background(), 10, 1, "Nice post")
	if err != nil {
		t.Fatalf("AddComment() failed: %v", err)
	}
	if comment.Content != "Nice post" || comment.PostID != 10 {
		t.Errorf("unexpected comment %+v", comment)
	}
	if comment.UserID == nil || *comment.UserID != 1 {
		t.Errorf("expected author 1, got %v", comment.UserID)
	}
	if count := comments.getCallCount("Create"); count != 1 {
		t.Errorf("expected one insert, got %d", count)
	}
}

func TestCommentService_AddCommentRejects(t *testing.T) {
	tests := []struct {
		name     string
		postID   int64
		userID   int64
		category goerrors.Category
	}{
		{"zero post id", 0, 1, goerrors.CategoryValidation},
		{"negative post id", -3, 1, goerrors.CategoryValidation},
		{"zero user id", 10, 0, goerrors.CategoryValidation},
		{"missing post", 99, 1, goerrors.CategoryNotFound},
		{"missing user", 10, 99, goerrors.CategoryNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, comments := newCommentFixture()

			_, err := svc.AddComment(context.Background(), tt.postID, tt.userID, "content")
			if !goerrors.IsCategory(err, tt.category) {
				t.Errorf("expected %s error, got %v", tt.category, err)
			}
			if count := comments.getCallCount("Create"); count != 0 {
				t.Errorf("expected no insert, got %d", count)
			}
		})
	}
}

func TestCommentService_DatabaseError(t *testing.T) {
	svc, comments := newCommentFixture()
	comments.err = goerrors.Wrap(errDatabase, goerrors.CategoryInternal, "failed to create comment for post ID 10")

	if _, err := svc.AddComment(context.Background(), 10, 1, "content"); !goerrors.IsInternal(err) {
		t.Errorf("expected internal error, got %v", err)
	}
}
