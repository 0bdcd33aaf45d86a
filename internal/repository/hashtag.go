package repository

import (
	"context"
	"sort"
	"strings"
	"time"

	"ripple/internal/cache"
	"ripple/internal/models"
	"ripple/internal/observability"

	"gorm.io/gorm"
)

// trendingWindow is the lookback over which hashtag usage is counted.
const trendingWindow = 24 * time.Hour

// HashtagRepository defines the interface for hashtag data operations
type HashtagRepository interface {
	Trending(ctx context.Context, limit int) ([]models.TrendingHashtag, error)
	Search(ctx context.Context, query string, limit int) ([]models.Hashtag, error)
}

// hashtagRepository implements HashtagRepository
type hashtagRepository struct {
	db *gorm.DB
}

// NewHashtagRepository creates a new hashtag repository
func NewHashtagRepository(db *gorm.DB) HashtagRepository {
	return &hashtagRepository{db: db}
}

// Trending serves the list from a short-lived cache entry keyed by limit.
// On a miss it pulls the tag of each hashtag attachment whose post was
// created inside the lookback window and counts them in memory. Ties break
// alphabetically so the ordering is deterministic.
func (r *hashtagRepository) Trending(ctx context.Context, limit int) ([]models.TrendingHashtag, error) {
	defer observability.TrackQuery("trending", "hashtags")()

	var trending []models.TrendingHashtag
	err := cache.Aside(ctx, cache.TrendingKey(limit), &trending, cache.TrendingTTL, func() error {
		observability.TrendingRecomputes.Inc()

		cutoff := time.Now().Add(-trendingWindow)
		var tags []string
		err := r.db.WithContext(ctx).Model(&models.PostHashtag{}).
			Joins("JOIN posts ON posts.id = post_hashtags.post_id").
			Joins("JOIN hashtags ON hashtags.id = post_hashtags.hashtag_id").
			Where("posts.created_at > ? AND posts.deleted_at IS NULL", cutoff).
			Pluck("hashtags.tag", &tags).Error
		if err != nil {
			return err
		}

		counts := make(map[string]int64, len(tags))
		for _, tag := range tags {
			counts[tag]++
		}

		trending = make([]models.TrendingHashtag, 0, len(counts))
		for tag, count := range counts {
			trending = append(trending, models.TrendingHashtag{Tag: tag, PostCount: count})
		}
		sort.Slice(trending, func(i, j int) bool {
			if trending[i].PostCount != trending[j].PostCount {
				return trending[i].PostCount > trending[j].PostCount
			}
			return trending[i].Tag < trending[j].Tag
		})

		if limit > 0 && len(trending) > limit {
			trending = trending[:limit]
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return trending, nil
}

// Search matches tags by case-insensitive substring, alphabetical.
func (r *hashtagRepository) Search(ctx context.Context, query string, limit int) ([]models.Hashtag, error) {
	like := "%" + strings.ToLower(query) + "%"
	var hashtags []models.Hashtag
	err := r.db.WithContext(ctx).
		Where("tag LIKE ?", like).
		Order("tag ASC").
		Limit(limit).
		Find(&hashtags).Error
	if err != nil {
		return nil, err
	}
	return hashtags, nil
}
