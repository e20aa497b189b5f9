package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/goliatone/go-blog-api/internal/model"
	"github.com/goliatone/go-blog-api/service"
)

// UserAPI is the user service surface used by the handlers.
type UserAPI interface {
	CreateUser(ctx context.Context, name, email, password string) (service.AuthResult, error)
	Login(ctx context.Context, email, password string) (service.AuthResult, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	TopUsersByPostsAndLatestComment(ctx context.Context) ([]model.TopUserPost, error)
	TopUsersByPostsAndLatestCommentOptimized(ctx context.Context) ([]model.TopUser, error)
}

// PostAPI is the post service surface used by the handlers.
type PostAPI interface {
	ListUserPosts(ctx context.Context, userID int64) ([]model.Post, error)
	CreatePost(ctx context.Context, userID int64, title, content string) (*model.Post, error)
}

// CommentAPI is the comment service surface used by the handlers.
type CommentAPI interface {
	AddComment(ctx context.Context, postID, userID int64, content string) (*model.Comment, error)
}

// TokenVerifier resolves a bearer token to a user id.
type TokenVerifier interface {
	Verify(raw string) (int64, error)
}

// Options configures the request pipeline.
type Options struct {
	Production      bool
	WhitelistedIPs  []string
	TrustedProxies  []string
	AllowedOrigins  []string
	RateLimitWindow time.Duration
	RateLimitMax    int
	BodyLimit       string
}

// DefaultOptions returns the pipeline defaults: 50 requests every two minutes
// per client and a 1M request body cap.
func DefaultOptions() Options {
	return Options{
		RateLimitWindow: 2 * time.Minute,
		RateLimitMax:    50,
		BodyLimit:       "1M",
	}
}

// Services groups the domain services the routes delegate to.
type Services struct {
	Users    UserAPI
	Posts    PostAPI
	Comments CommentAPI
	Tokens   TokenVerifier
}

// NewServer builds the echo instance with the global middleware chain, the
// terminal error handler and every route registered.
func NewServer(opts Options, svc Services, logger *slog.Logger) (*echo.Echo, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "http"))

	allow, err := NewAllowList(opts.WhitelistedIPs)
	if err != nil {
		return nil, err
	}

	extractIP, err := ClientIPExtractor(opts.TrustedProxies)
	if err != nil {
		return nil, err
	}

	defaults := DefaultOptions()
	if opts.RateLimitWindow <= 0 {
		opts.RateLimitWindow = defaults.RateLimitWindow
	}
	if opts.RateLimitMax <= 0 {
		opts.RateLimitMax = defaults.RateLimitMax
	}
	if opts.BodyLimit == "" {
		opts.BodyLimit = defaults.BodyLimit
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.IPExtractor = extractIP
	e.HTTPErrorHandler = NewErrorHandler(opts.Production, logger)

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string { return uuid.NewString() },
	}))
	e.Use(requestLogger(logger))
	e.Use(middleware.SecureWithConfig(middleware.DefaultSecureConfig))
	e.Use(middleware.Gzip())
	e.Use(middleware.BodyLimit(opts.BodyLimit))
	e.Use(RateLimit(NewRateLimiterStore(opts.RateLimitWindow, opts.RateLimitMax)))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: opts.AllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(allow.Middleware())

	registerRoutes(e, svc)

	return e, nil
}

func requestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("ip", v.RemoteIP),
				slog.String("request_id", v.RequestID),
			}
			level := slog.LevelInfo
			if v.Error != nil {
				level = slog.LevelWarn
			}
			logger.LogAttrs(c.Request().Context(), level, "request", attrs...)
			return nil
		},
	})
}
