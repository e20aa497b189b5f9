package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-blog-api/cache"
	"github.com/goliatone/go-blog-api/internal/model"
)

// PostStore is the subset of repository.Posts used by the services.
type PostStore interface {
	ListByUser(ctx context.Context, userID int64) ([]model.Post, error)
	Create(ctx context.Context, userID int64, title, content string) (*model.Post, error)
	GetByID(ctx context.Context, id int64) (*model.Post, error)
}

// UserLookup resolves a user by id, returning nil when absent.
type UserLookup interface {
	GetByID(ctx context.Context, id int64) (*model.User, error)
}

// PostService lists and creates posts, caching each user's post list.
type PostService struct {
	posts  PostStore
	users  UserLookup
	cache  cache.Accessor
	keys   cache.KeySerializer
	logger *slog.Logger
}

// NewPostService wires the post service.
func NewPostService(posts PostStore, users UserLookup, accessor cache.Accessor, keys cache.KeySerializer, logger *slog.Logger) *PostService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostService{
		posts:  posts,
		users:  users,
		cache:  accessor,
		keys:   keys,
		logger: logger.With(slog.String("component", "post_service")),
	}
}

func (s *PostService) userPostsKey(userID int64) string {
	return s.keys.SerializeKey("UserPosts", userID)
}

// ListUserPosts returns the posts of userID. A cached empty result is
// served without checking that the user still exists.
func (s *PostService) ListUserPosts(ctx context.Context, userID int64) ([]model.Post, error) {
	key := s.userPostsKey(userID)
	switch posts, state := cache.Lookup[[]model.Post](ctx, s.cache, key); state {
	case cache.Hit:
		return posts, nil
	case cache.Empty:
		return []model.Post{}, nil
	}

	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	posts, err := s.posts.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.cacheUserPosts(ctx, key, posts)
	if posts == nil {
		posts = []model.Post{}
	}
	return posts, nil
}

// CreatePost stores a post for userID and refreshes the cached post list.
func (s *PostService) CreatePost(ctx context.Context, userID int64, title, content string) (*model.Post, error) {
	var fields []goerrors.FieldError
	if strings.TrimSpace(title) == "" {
		fields = append(fields, goerrors.FieldError{Field: "title", Message: "cannot be blank"})
	}
	if strings.TrimSpace(content) == "" {
		fields = append(fields, goerrors.FieldError{Field: "content", Message: "cannot be blank"})
	}
	if len(fields) > 0 {
		return nil, invalid("Title and content are required", fields...)
	}

	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	post, err := s.posts.Create(ctx, userID, title, content)
	if err != nil {
		return nil, err
	}

	key := s.userPostsKey(userID)
	posts, err := s.posts.ListByUser(ctx, userID)
	if err != nil {
		// the post is stored; drop the stale list instead of failing
		s.logger.WarnContext(ctx, "failed to refresh cached posts",
			slog.Int64("user_id", userID), slog.String("error", err.Error()))
		s.cache.Invalidate(ctx, key)
		return post, nil
	}
	s.cacheUserPosts(ctx, key, posts)

	return post, nil
}

func (s *PostService) cacheUserPosts(ctx context.Context, key string, posts []model.Post) {
	if len(posts) == 0 {
		s.cache.StoreEmpty(ctx, key)
		return
	}
	s.cache.Store(ctx, key, posts)
}

func (s *PostService) requireUser(ctx context.Context, userID int64) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return notFound(fmt.Sprintf("User with ID %d does not exist", userID))
	}
	return nil
}
