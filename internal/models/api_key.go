package models

import "time"

// APIKey authenticates programmatic clients on the external endpoints.
// Only the SHA-256 digest of the secret is persisted; the plaintext is
// returned exactly once at creation time.
type APIKey struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	UserID     uint       `gorm:"not null;index" json:"user_id"`
	KeyHash    string     `gorm:"uniqueIndex;not null;size:64" json:"-"`
	Name       string     `gorm:"not null" json:"name"`
	IsActive   bool       `gorm:"not null;default:true" json:"is_active"`
	CreatedAt  time.Time  `json:"created_at"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
}
