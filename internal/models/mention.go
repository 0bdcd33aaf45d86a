package models

import "time"

// Mention links a post to a user referenced via @username in its text.
// Rows are created at post-creation time for usernames that resolve to
// existing users; unresolved tokens are silently dropped.
type Mention struct {
	PostID          uint      `gorm:"primaryKey;autoIncrement:false" json:"post_id"`
	MentionedUserID uint      `gorm:"primaryKey;autoIncrement:false" json:"mentioned_user_id"`
	CreatedAt       time.Time `json:"created_at"`

	MentionedUser User `gorm:"foreignKey:MentionedUserID" json:"mentioned_user,omitempty"`
}
