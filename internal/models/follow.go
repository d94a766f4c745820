package models

import "time"

// Follow is one edge of the follow graph: FollowerID follows FolloweeID.
// A single row carries both directions of the relationship, so A's
// "following" set and B's "followers" set can never disagree.
// The composite unique index gives follow its set semantics.
type Follow struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	FollowerID uint      `gorm:"not null;uniqueIndex:idx_follow_edge;index" json:"follower_id"`
	FolloweeID uint      `gorm:"not null;uniqueIndex:idx_follow_edge;index" json:"followee_id"`
	CreatedAt  time.Time `json:"created_at"`
}
