package models

import "time"

// Comment represents a comment on a post. Comments are immutable once
// created; ordering is append order (CreatedAt, ID).
// Username is denormalized from the author so reads avoid a join.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Content   string    `gorm:"not null" json:"content"`
	PostID    uint      `gorm:"not null;index" json:"post_id"`
	UserID    uint      `gorm:"not null" json:"user_id"`
	Username  string    `gorm:"not null" json:"username"`
	CreatedAt time.Time `json:"created_at"`
}
