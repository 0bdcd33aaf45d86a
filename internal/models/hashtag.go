package models

import "time"

// Hashtag is a normalized (lowercased) topic tag. TrendingScore is persisted
// for future precomputation; the trending aggregator currently recomputes
// counts from the raw join rows on every call and does not read it.
type Hashtag struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Tag           string    `gorm:"uniqueIndex;not null" json:"tag"`
	TrendingScore float64   `gorm:"not null;default:0" json:"-"`
	CreatedAt     time.Time `json:"created_at"`
}

// PostHashtag joins posts to hashtags; rows are created at post-creation time.
type PostHashtag struct {
	PostID    uint `gorm:"primaryKey;autoIncrement:false" json:"post_id"`
	HashtagID uint `gorm:"primaryKey;autoIncrement:false" json:"hashtag_id"`
}

// TrendingHashtag is one entry of the trending aggregation: a tag and the
// number of posts that used it inside the rolling window.
type TrendingHashtag struct {
	Tag       string `json:"tag"`
	PostCount int64  `json:"post_count"`
}
