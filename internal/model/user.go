package model

import (
	"time"

	"github.com/uptrace/bun"
)

// User is a registered account. Password holds the bcrypt hash and is never
// serialized to clients.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID        int64     `json:"id" bun:"id,pk,autoincrement"`
	Name      string    `json:"name" bun:"name,type:varchar(100),notnull"`
	Email     string    `json:"email" bun:"email,type:varchar(150),notnull,unique"`
	Password  string    `json:"-" bun:"password,type:varchar(255),notnull"`
	CreatedAt time.Time `json:"created_at" bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// Public returns a copy of u without the password hash.
func (u User) Public() User {
	u.Password = ""
	return u
}
