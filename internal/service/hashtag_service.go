package service

import (
	"context"
	"strings"

	"ripple/internal/models"
	"ripple/internal/repository"
)

// HashtagService exposes trending and tag search.
type HashtagService struct {
	hashtags repository.HashtagRepository
}

// NewHashtagService creates a new hashtag service
func NewHashtagService(hashtags repository.HashtagRepository) *HashtagService {
	return &HashtagService{hashtags: hashtags}
}

// Trending returns the most-used hashtags of the last 24 hours.
func (s *HashtagService) Trending(ctx context.Context, limit int) ([]models.TrendingHashtag, error) {
	if limit < 1 || limit > 50 {
		limit = 10
	}
	trending, err := s.hashtags.Trending(ctx, limit)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return trending, nil
}

// Search matches hashtags by substring. Tags are stored lowercased so the
// query is lowercased before matching.
func (s *HashtagService) Search(ctx context.Context, query string, limit int) ([]models.Hashtag, error) {
	query = strings.TrimSpace(strings.TrimPrefix(query, "#"))
	if query == "" {
		return nil, models.NewValidationError("Search query is required")
	}
	if limit < 1 || limit > 50 {
		limit = 10
	}
	hashtags, err := s.hashtags.Search(ctx, query, limit)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return hashtags, nil
}
