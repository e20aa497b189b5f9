package model

import "time"

// TopUser is a row of the optimized top users report.
type TopUser struct {
	UserID          int64      `json:"user_id" bun:"user_id"`
	Name            string     `json:"name" bun:"name"`
	PostCount       int64      `json:"post_count" bun:"post_count"`
	LatestComment   *string    `json:"latest_comment" bun:"latest_comment"`
	LatestCommentAt *time.Time `json:"latest_comment_at" bun:"latest_comment_at"`
}

// TopUserPost is a row of the unoptimized report: one of the top users
// together with a post of theirs.
type TopUserPost struct {
	ID      int64  `json:"id" bun:"id"`
	Name    string `json:"name" bun:"name"`
	Title   string `json:"title" bun:"title"`
	Content string `json:"content" bun:"content"`
}
