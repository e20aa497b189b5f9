package service

import (
	"context"
	"log/slog"

	"github.com/goliatone/go-blog-api/cache"
	"github.com/goliatone/go-blog-api/internal/auth"
	"github.com/goliatone/go-blog-api/internal/model"
)

// UserStore is the subset of repository.Users used by UserService.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
	Create(ctx context.Context, name, email, passwordHash string) (*model.User, error)
	ListWithoutPassword(ctx context.Context) ([]model.User, error)
	TopUsersWithLatestComments(ctx context.Context) ([]model.TopUserPost, error)
	TopUsersWithLatestCommentsOptimized(ctx context.Context) ([]model.TopUser, error)
}

// TokenIssuer signs identity tokens for a user id.
type TokenIssuer interface {
	Issue(userID int64) (string, error)
}

// AuthResult is returned by signup and login.
type AuthResult struct {
	User  model.User `json:"user"`
	Token string     `json:"token"`
}

// UserService handles accounts, authentication and the user reports.
// The full user list is cached under users::all.
type UserService struct {
	users  UserStore
	cache  cache.Accessor
	keys   cache.KeySerializer
	tokens TokenIssuer
	logger *slog.Logger
}

// NewUserService wires the user service.
func NewUserService(users UserStore, accessor cache.Accessor, keys cache.KeySerializer, tokens TokenIssuer, logger *slog.Logger) *UserService {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserService{
		users:  users,
		cache:  accessor,
		keys:   keys,
		tokens: tokens,
		logger: logger.With(slog.String("component", "user_service")),
	}
}

func (s *UserService) allUsersKey() string {
	return s.keys.SerializeKey("Users", "all")
}

// CreateUser registers a new account and signs a token for it.
func (s *UserService) CreateUser(ctx context.Context, name, email, password string) (AuthResult, error) {
	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return AuthResult{}, err
	}
	if existing != nil {
		return AuthResult{}, conflict("User already exists with this email address")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return AuthResult{}, err
	}

	user, err := s.users.Create(ctx, name, email, hash)
	if err != nil {
		return AuthResult{}, err
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return AuthResult{}, err
	}

	s.cache.Invalidate(ctx, s.allUsersKey())
	s.logger.InfoContext(ctx, "user created", slog.Int64("user_id", user.ID))

	return AuthResult{User: user.Public(), Token: token}, nil
}

// Login checks the credentials and signs a token. Unknown email and wrong
// password produce the same error.
func (s *UserService) Login(ctx context.Context, email, password string) (AuthResult, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return AuthResult{}, err
	}
	if user == nil || !auth.ComparePassword(user.Password, password) {
		return AuthResult{}, invalidCredentials()
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{User: user.Public(), Token: token}, nil
}

// ListUsers returns every user without password hashes. An empty user table
// is reported as not found and is not cached.
func (s *UserService) ListUsers(ctx context.Context) ([]model.User, error) {
	key := s.allUsersKey()
	if users, state := cache.Lookup[[]model.User](ctx, s.cache, key); state == cache.Hit && len(users) > 0 {
		return users, nil
	}

	users, err := s.users.ListWithoutPassword(ctx)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, notFound("No users found")
	}

	s.cache.Store(ctx, key, users)
	return users, nil
}

// TopUsersByPostsAndLatestComment runs the baseline top users report.
func (s *UserService) TopUsersByPostsAndLatestComment(ctx context.Context) ([]model.TopUserPost, error) {
	rows, err := s.users.TopUsersWithLatestComments(ctx)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []model.TopUserPost{}
	}
	return rows, nil
}

// TopUsersByPostsAndLatestCommentOptimized runs the single pass top users report.
func (s *UserService) TopUsersByPostsAndLatestCommentOptimized(ctx context.Context) ([]model.TopUser, error) {
	rows, err := s.users.TopUsersWithLatestCommentsOptimized(ctx)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []model.TopUser{}
	}
	return rows, nil
}
