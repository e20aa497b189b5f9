package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"

	"github.com/goliatone/go-blog-api/internal/model"
)

// TopUsersLimit is the number of users returned by the top users reports.
const TopUsersLimit = 3

// Users queries the users table.
type Users struct {
	db bun.IDB
}

// NewUsers returns a Users repository on db.
func NewUsers(db bun.IDB) *Users {
	return &Users{db: db}
}

// FindByEmail returns the user registered with email, password hash included.
func (r *Users) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	user := new(model.User)
	err := r.db.NewSelect().Model(user).Where("email = ?", email).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to fetch user by email")
	}
	return user, nil
}

// GetByID returns the user with id, password hash included.
func (r *Users) GetByID(ctx context.Context, id int64) (*model.User, error) {
	user := new(model.User)
	err := r.db.NewSelect().Model(user).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, fmt.Sprintf("failed to fetch user with ID %d", id))
	}
	return user, nil
}

// Create inserts user and returns the stored row.
func (r *Users) Create(ctx context.Context, name, email, passwordHash string) (*model.User, error) {
	user := &model.User{Name: name, Email: email, Password: passwordHash}
	if _, err := r.db.NewInsert().Model(user).Returning("*").Exec(ctx); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create user")
	}
	return user, nil
}

// ListWithoutPassword returns every user with the password column left out.
func (r *Users) ListWithoutPassword(ctx context.Context) ([]model.User, error) {
	var users []model.User
	err := r.db.NewSelect().
		Model(&users).
		ExcludeColumn("password").
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to fetch users")
	}
	return users, nil
}

// TopUsersWithLatestComments returns, for the users with the most posts, each
// post of theirs together with its latest comment. It uses correlated
// subqueries and is kept as the baseline for the optimized variant.
func (r *Users) TopUsersWithLatestComments(ctx context.Context) ([]model.TopUserPost, error) {
	const query = `
		SELECT u.id, u.name, p.title, c.content
		FROM users u
		LEFT JOIN posts p ON u.id = p.user_id
		LEFT JOIN comments c ON p.id = c.post_id
		WHERE c.created_at = (
			SELECT MAX(c2.created_at) FROM comments c2 WHERE c2.post_id = p.id
		)
		ORDER BY (
			SELECT COUNT(p2.id) FROM posts p2 WHERE p2.user_id = u.id
		) DESC
		LIMIT ?`

	var rows []model.TopUserPost
	if err := r.db.NewRaw(query, TopUsersLimit).Scan(ctx, &rows); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to fetch top users with latest comments")
	}
	return rows, nil
}

// TopUsersWithLatestCommentsOptimized returns the users with the most posts,
// their post count and the latest comment each of them wrote.
func (r *Users) TopUsersWithLatestCommentsOptimized(ctx context.Context) ([]model.TopUser, error) {
	query := topUsersLateral
	if r.db.Dialect().Name() != dialect.PG {
		query = topUsersCorrelated
	}

	var rows []model.TopUser
	if err := r.db.NewRaw(query, TopUsersLimit).Scan(ctx, &rows); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to fetch top users with latest comments")
	}
	return rows, nil
}

const topUsersLateral = `
	SELECT
		u.id AS user_id,
		u.name,
		tu.post_count,
		lc.content AS latest_comment,
		lc.created_at AS latest_comment_at
	FROM (
		SELECT p.user_id, COUNT(p.id) AS post_count
		FROM posts p
		GROUP BY p.user_id
		ORDER BY post_count DESC
		LIMIT ?
	) tu
	JOIN users u ON u.id = tu.user_id
	LEFT JOIN LATERAL (
		SELECT c.content, c.created_at
		FROM comments c
		WHERE c.user_id = u.id
		ORDER BY c.created_at DESC
		LIMIT 1
	) lc ON true
	ORDER BY tu.post_count DESC, u.id`

// SQLite has no LATERAL joins.
const topUsersCorrelated = `
	SELECT
		u.id AS user_id,
		u.name,
		tu.post_count,
		(SELECT c.content FROM comments c WHERE c.user_id = u.id
			ORDER BY c.created_at DESC LIMIT 1) AS latest_comment,
		(SELECT c.created_at FROM comments c WHERE c.user_id = u.id
			ORDER BY c.created_at DESC LIMIT 1) AS latest_comment_at
	FROM (
		SELECT p.user_id, COUNT(p.id) AS post_count
		FROM posts p
		GROUP BY p.user_id
		ORDER BY post_count DESC
		LIMIT ?
	) tu
	JOIN users u ON u.id = tu.user_id
	ORDER BY tu.post_count DESC, u.id`
