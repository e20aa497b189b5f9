package httpapi

import (
	"net/http"

	goerrors "github.com/goliatone/go-errors"
	"github.com/labstack/echo/v4"
)

const healthMessage = "Server is healthy and running"

type handlers struct {
	users    UserAPI
	posts    PostAPI
	comments CommentAPI
}

func registerRoutes(e *echo.Echo, svc Services) {
	h := &handlers{users: svc.Users, posts: svc.Posts, comments: svc.Comments}

	e.GET("/", h.health)

	v1 := e.Group("/api/v1")

	users := v1.Group("/users")
	users.POST("/signup", h.signup)
	users.POST("/login", h.login)
	users.GET("", h.listUsers)
	users.GET("/top-users-posts-comments", h.topUsers)
	users.GET("/top-users-posts-comments-optimized", h.topUsersOptimized)

	posts := v1.Group("/posts", RequireToken(svc.Tokens))
	posts.GET("", h.listPosts)
	posts.POST("", h.createPost)
	posts.POST("/:postId/comments", h.addComment)
}

func (h *handlers) health(c echo.Context) error {
	return c.String(http.StatusOK, healthMessage)
}

func (h *handlers) signup(c echo.Context) error {
	var req signupRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	if err := validate(&req); err != nil {
		return err
	}

	result, err := h.users.CreateUser(c.Request().Context(), req.Name, req.Email, req.Password)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "User created successfully", result)
}

func (h *handlers) login(c echo.Context) error {
	var req loginRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	if err := validate(&req); err != nil {
		return err
	}

	result, err := h.users.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "User logged in successfully", result)
}

func (h *handlers) listUsers(c echo.Context) error {
	users, err := h.users.ListUsers(c.Request().Context())
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Users retrieved successfully", users)
}

func (h *handlers) topUsers(c echo.Context) error {
	rows, err := h.users.TopUsersByPostsAndLatestComment(c.Request().Context())
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Top users with most posts and latest comments retrieved successfully", rows)
}

func (h *handlers) topUsersOptimized(c echo.Context) error {
	rows, err := h.users.TopUsersByPostsAndLatestCommentOptimized(c.Request().Context())
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Top users with most posts and latest comments retrieved successfully (optimized version)", rows)
}

func (h *handlers) listPosts(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	posts, err := h.posts.ListUserPosts(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "User posts retrieved successfully", posts)
}

func (h *handlers) createPost(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	var req createPostRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	if err := validate(&req); err != nil {
		return err
	}

	post, err := h.posts.CreatePost(c.Request().Context(), userID, req.Title, req.Content)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "Post created successfully", post)
}

func (h *handlers) addComment(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	var req addCommentRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	req.PostID = c.Param("postId")
	if err := validate(&req); err != nil {
		return err
	}

	postID, err := req.postID()
	if err != nil {
		return err
	}

	comment, err := h.comments.AddComment(c.Request().Context(), postID, userID, req.Content)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "Comment added successfully", comment)
}

func currentUser(c echo.Context) (int64, error) {
	userID, ok := UserID(c)
	if !ok {
		return 0, goerrors.New("Invalid user ID", goerrors.CategoryValidation).
			WithCode(http.StatusBadRequest).
			WithTextCode("VALIDATION_ERROR")
	}
	return userID, nil
}
