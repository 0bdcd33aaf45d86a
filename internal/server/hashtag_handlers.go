package server

import (
	"ripple/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetTrendingHashtags returns the most-used hashtags of the last 24 hours.
func (s *Server) GetTrendingHashtags(c *fiber.Ctx) error {
	trending, err := s.hashtagService.Trending(c.Context(), c.QueryInt("limit", 10))
	if err != nil {
		return fail(c, err)
	}
	if trending == nil {
		trending = []models.TrendingHashtag{}
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"items": trending})
}

// SearchHashtags matches hashtags by substring.
func (s *Server) SearchHashtags(c *fiber.Ctx) error {
	hashtags, err := s.hashtagService.Search(c.Context(), c.Query("q"), c.QueryInt("limit", 10))
	if err != nil {
		return fail(c, err)
	}
	if hashtags == nil {
		hashtags = []models.Hashtag{}
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"items": hashtags})
}

// GetHashtagPosts lists the posts carrying the routed hashtag.
func (s *Server) GetHashtagPosts(c *fiber.Ctx) error {
	page, limit := parsePagination(c)
	result, err := s.postService.HashtagPosts(c.Context(), c.Params("tag"), page, limit)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(postPageEnvelope(result, page, limit))
}
