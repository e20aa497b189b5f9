package model

import (
	"time"

	"github.com/uptrace/bun"
)

// Comment belongs to a post. UserID is nil once the author is deleted.
type Comment struct {
	bun.BaseModel `bun:"table:comments,alias:c"`

	ID        int64     `json:"id" bun:"id,pk,autoincrement"`
	PostID    int64     `json:"post_id" bun:"post_id,notnull"`
	UserID    *int64    `json:"user_id" bun:"user_id"`
	Content   string    `json:"content" bun:"content,type:text,notnull"`
	CreatedAt time.Time `json:"created_at" bun:"created_at,nullzero,notnull,default:current_timestamp"`
}
