package di

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-blog-api/cache"
	"github.com/goliatone/go-blog-api/internal/auth"
	"github.com/goliatone/go-blog-api/internal/config"
	"github.com/goliatone/go-blog-api/internal/httpapi"
	"github.com/goliatone/go-blog-api/repository"
	"github.com/goliatone/go-blog-api/service"
)

// Container wires the long-lived components of the API: one cache store and
// accessor, the key serializer, the token signer and the domain services
// built on top of the repositories.
type Container struct {
	config        config.Config
	store         cache.Store
	accessor      cache.Accessor
	keySerializer cache.KeySerializer
	tokens        *auth.Tokens
	users         *service.UserService
	posts         *service.PostService
	comments      *service.CommentService
	logger        *slog.Logger
}

// NewContainer builds the services for cfg on top of db and store. The
// container does not own db; it does own store and closes it in Close.
func NewContainer(cfg config.Config, db bun.IDB, store cache.Store, logger *slog.Logger) (*Container, error) {
	if logger == nil {
		logger = slog.Default()
	}

	cacheCfg := cfg.CacheSettings()
	accessor, err := cache.NewAccessorFromConfig(store, cacheCfg, logger)
	if err != nil {
		return nil, err
	}

	keySerializer := cache.NewDefaultKeySerializer()
	tokens := auth.NewTokens(cfg.JWT.Secret, cfg.JWT.Expiration)

	users := repository.NewUsers(db)
	posts := repository.NewPosts(db)
	comments := repository.NewComments(db)

	return &Container{
		config:        cfg,
		store:         store,
		accessor:      accessor,
		keySerializer: keySerializer,
		tokens:        tokens,
		users:         service.NewUserService(users, accessor, keySerializer, tokens, logger),
		posts:         service.NewPostService(posts, users, accessor, keySerializer, logger),
		comments:      service.NewCommentService(comments, posts, users, logger),
		logger:        logger,
	}, nil
}

// NewContainerWithStore opens the cache store selected by cfg and builds the
// container around it.
func NewContainerWithStore(cfg config.Config, db bun.IDB, logger *slog.Logger) (*Container, error) {
	store, err := cache.NewStore(cfg.CacheSettings(), logger)
	if err != nil {
		return nil, err
	}
	c, err := NewContainer(cfg, db, store, logger)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return c, nil
}

// Config returns a copy of the configuration used by this container.
func (c *Container) Config() config.Config {
	return c.config
}

// Store returns the shared cache store.
func (c *Container) Store() cache.Store {
	return c.store
}

// Accessor returns the cache-aside accessor shared by the services.
func (c *Container) Accessor() cache.Accessor {
	return c.accessor
}

// KeySerializer returns the singleton key serializer instance.
func (c *Container) KeySerializer() cache.KeySerializer {
	return c.keySerializer
}

// Tokens returns the token signer.
func (c *Container) Tokens() *auth.Tokens {
	return c.tokens
}

// Users returns the user service.
func (c *Container) Users() *service.UserService {
	return c.users
}

// Posts returns the post service.
func (c *Container) Posts() *service.PostService {
	return c.posts
}

// Comments returns the comment service.
func (c *Container) Comments() *service.CommentService {
	return c.comments
}

// Server builds the HTTP server for the wired services.
func (c *Container) Server() (*echo.Echo, error) {
	return httpapi.NewServer(c.config.ServerOptions(), httpapi.Services{
		Users:    c.users,
		Posts:    c.posts,
		Comments: c.comments,
		Tokens:   c.tokens,
	}, c.logger)
}

// Close releases the cache store.
func (c *Container) Close() error {
	return c.store.Close()
}
