// Package models contains data structures for the application's domain models.
package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// MediaItem is one entry in a post's ordered media list.
type MediaItem struct {
	URL    string `json:"url"`
	Type   string `json:"type"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

// Post represents a post in the Ripple application. A post is exactly one of:
// a top-level post, a reply (ParentPostID set) or a repost (RepostPostID set).
//
// The count columns are denormalized and only ever moved with atomic SQL
// expressions in the same transaction as the backing-row mutation. Soft-deleted
// posts (DeletedAt set) are excluded from all reads but keep their row so that
// replies and reposts pointing at them stay structurally intact.
type Post struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	UserID uint   `gorm:"not null;index" json:"user_id"`
	User   User   `gorm:"foreignKey:UserID" json:"user"`
	Text   string `gorm:"type:text;not null" json:"text"`

	// Media is the serialized media list; MediaItems is its decoded form,
	// populated by the repository on every read path.
	Media      datatypes.JSON `json:"-"`
	MediaItems []MediaItem    `gorm:"-" json:"media"`

	ParentPostID *uint `gorm:"index" json:"parent_post_id,omitempty"`
	ParentPost   *Post `gorm:"foreignKey:ParentPostID" json:"parent_post,omitempty"`
	RepostPostID *uint `gorm:"index" json:"repost_post_id,omitempty"`
	RepostPost   *Post `gorm:"foreignKey:RepostPostID" json:"repost_post,omitempty"`

	LikeCount     int `gorm:"not null;default:0" json:"like_count"`
	RepostCount   int `gorm:"not null;default:0" json:"repost_count"`
	ReplyCount    int `gorm:"not null;default:0" json:"reply_count"`
	BookmarkCount int `gorm:"not null;default:0" json:"bookmark_count"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Mentions []Mention `gorm:"foreignKey:PostID" json:"mentions,omitempty"`
	Hashtags []Hashtag `gorm:"many2many:post_hashtags" json:"hashtags,omitempty"`
}

// EncodeMedia serializes a media list for storage. Empty lists encode to a
// NULL column so the media timeline filter can rely on IS NOT NULL.
func EncodeMedia(items []MediaItem) (datatypes.JSON, error) {
	if len(items) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(items)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b), nil
}

// DecodeMedia populates MediaItems from the stored Media column, recursing
// into ParentPost and RepostPost.
func (p *Post) DecodeMedia() error {
	if p == nil {
		return nil
	}
	if len(p.Media) > 0 {
		if err := json.Unmarshal(p.Media, &p.MediaItems); err != nil {
			return err
		}
	}
	if err := p.ParentPost.DecodeMedia(); err != nil {
		return err
	}
	return p.RepostPost.DecodeMedia()
}

// IsReply reports whether the post is a reply.
func (p *Post) IsReply() bool { return p.ParentPostID != nil }

// IsRepost reports whether the post is a repost.
func (p *Post) IsRepost() bool { return p.RepostPostID != nil }
