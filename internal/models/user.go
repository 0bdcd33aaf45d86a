// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// User represents a wallet-linked account on Ripple.
//
// FollowersCount and FollowingCount are denormalized mirrors of the follows
// table and are only ever moved with atomic SQL expressions inside the same
// transaction as the follow-row mutation. Users are never hard-deleted;
// DeactivatedAt marks an account as deactivated.
type User struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	DisplayName    string     `json:"display_name"`
	Username       string     `gorm:"uniqueIndex;not null" json:"username"`
	WalletAddress  string     `gorm:"uniqueIndex;not null" json:"wallet_address"`
	AvatarURL      string     `json:"avatar_url"`
	BannerURL      string     `json:"banner_url"`
	Bio            string     `json:"bio"`
	Location       string     `json:"location"`
	WebsiteURL     string     `json:"website_url"`
	FollowersCount int        `gorm:"not null;default:0" json:"followers_count"`
	FollowingCount int        `gorm:"not null;default:0" json:"following_count"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	DeactivatedAt  *time.Time `json:"deactivated_at,omitempty"`
}

// IsDeactivated reports whether the account has been deactivated.
func (u *User) IsDeactivated() bool {
	return u.DeactivatedAt != nil
}
