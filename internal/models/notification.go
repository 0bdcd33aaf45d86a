package models

import "time"

// NotificationType identifies the action that produced a notification.
type NotificationType string

const (
	// NotificationFollow is sent to a user gaining a follower.
	NotificationFollow NotificationType = "FOLLOW"
	// NotificationLike is sent to a post's author when the post is liked.
	NotificationLike NotificationType = "LIKE"
	// NotificationRepost is sent to a post's author when the post is reposted.
	NotificationRepost NotificationType = "REPOST"
	// NotificationMention is sent to a user mentioned in a new post.
	NotificationMention NotificationType = "MENTION"
	// NotificationReply is sent to a post's author when the post receives a reply.
	NotificationReply NotificationType = "REPLY"
)

// Valid reports whether t is one of the known notification types.
func (t NotificationType) Valid() bool {
	switch t {
	case NotificationFollow, NotificationLike, NotificationRepost,
		NotificationMention, NotificationReply:
		return true
	}
	return false
}

// Notification is a fan-out record created as a side effect of a follow, like,
// repost, mention or reply. RelatedPostID is nil for FOLLOW. Notifications are
// never created for self-actions and never deleted; reading the list marks the
// returned rows read unless the caller opts out.
type Notification struct {
	ID              uint             `gorm:"primaryKey" json:"id"`
	RecipientUserID uint             `gorm:"not null;index" json:"recipient_user_id"`
	ActorUserID     uint             `gorm:"not null" json:"actor_user_id"`
	Actor           User             `gorm:"foreignKey:ActorUserID" json:"actor"`
	Type            NotificationType `gorm:"type:varchar(16);not null" json:"type"`
	RelatedPostID   *uint            `json:"related_post_id,omitempty"`
	IsRead          bool             `gorm:"not null;default:false" json:"is_read"`
	CreatedAt       time.Time        `json:"created_at"`
	ReadAt          *time.Time       `json:"read_at,omitempty"`
}
