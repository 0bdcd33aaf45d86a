package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	userKeyPrefix     = "user:%d"
	postKeyPrefix     = "post:%d"
	profileKeyPrefix  = "profile:%s"
	trendingKeyPrefix = "trending:%d"
)

// TTLs per key class. Trending tolerates staleness; posts are invalidated on
// every counter move so they can live longer.
const (
	UserTTL     = 5 * time.Minute
	PostTTL     = 30 * time.Minute
	ProfileTTL  = 5 * time.Minute
	TrendingTTL = time.Minute
)

// UserKey is the cache key for a user row.
func UserKey(userID uint) string {
	return fmt.Sprintf(userKeyPrefix, userID)
}

// PostKey is the cache key for a single post with relations.
func PostKey(postID uint) string {
	return fmt.Sprintf(postKeyPrefix, postID)
}

// ProfileKey is the cache key for a profile looked up by username.
func ProfileKey(username string) string {
	return fmt.Sprintf(profileKeyPrefix, username)
}

// TrendingKey is the cache key for a trending result of the given size.
func TrendingKey(limit int) string {
	return fmt.Sprintf(trendingKeyPrefix, limit)
}

// Invalidate removes a key (best-effort, no-op without Redis).
func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

// InvalidateUser removes a user's cache entry.
func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

// InvalidatePost removes a post's cache entry.
func InvalidatePost(ctx context.Context, postID uint) {
	Invalidate(ctx, PostKey(postID))
}

// InvalidateProfile removes a profile cache entry.
func InvalidateProfile(ctx context.Context, username string) {
	Invalidate(ctx, ProfileKey(username))
}
