package model

import (
	"time"

	"github.com/uptrace/bun"
)

type Post struct {
	bun.BaseModel `bun:"table:posts,alias:p"`

	ID        int64     `json:"id" bun:"id,pk,autoincrement"`
	UserID    int64     `json:"user_id" bun:"user_id,notnull"`
	Title     string    `json:"title" bun:"title,type:varchar(255),notnull"`
	Content   string    `json:"content" bun:"content,type:text,notnull"`
	CreatedAt time.Time `json:"created_at" bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt time.Time `json:"updated_at" bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}
