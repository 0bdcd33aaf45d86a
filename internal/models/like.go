package models

import "time"

// Like marks that a user liked a post. The composite primary key guarantees
// at most one row per (user, post) pair; rows are hard-deleted on unlike.
type Like struct {
	UserID    uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	PostID    uint      `gorm:"primaryKey;autoIncrement:false" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Bookmark marks that a user bookmarked a post. Same uniqueness and lifecycle
// rules as Like.
type Bookmark struct {
	UserID    uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	PostID    uint      `gorm:"primaryKey;autoIncrement:false" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}
