package server

import (
	"context"

	"ripple/internal/middleware"
	"ripple/internal/models"
	"ripple/internal/repository"
	"ripple/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreatePostRequest is the payload for creating a post, reply or repost.
type CreatePostRequest struct {
	Text         string             `json:"text"`
	Media        []models.MediaItem `json:"media,omitempty"`
	ParentPostID *uint              `json:"parent_post_id,omitempty"`
	RepostPostID *uint              `json:"repost_post_id,omitempty"`
}

// CreatePost creates a post for the authenticated user. Also serves the
// API-key-authenticated external posting endpoint.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req CreatePostRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.CreatePost(c.Context(), service.CreatePostInput{
		AuthorID:     currentUserID(c),
		Text:         req.Text,
		Media:        req.Media,
		ParentPostID: req.ParentPostID,
		RepostPostID: req.RepostPostID,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// ReplyToPost creates a reply; the parent comes from the route.
func (s *Server) ReplyToPost(c *fiber.Ctx) error {
	parentID, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req CreatePostRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.CreatePost(c.Context(), service.CreatePostInput{
		AuthorID:     currentUserID(c),
		Text:         req.Text,
		Media:        req.Media,
		ParentPostID: &parentID,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// RepostPost creates a repost of the routed post; text is the optional quote.
func (s *Server) RepostPost(c *fiber.Ctx) error {
	targetID, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req CreatePostRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.CreatePost(c.Context(), service.CreatePostInput{
		AuthorID:     currentUserID(c),
		Text:         req.Text,
		Media:        req.Media,
		RepostPostID: &targetID,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// GetTimeline returns the feed, newest first. With a session it is the
// viewer's feed: own posts, posts from followed users and posts mentioning
// them. Without one it is the global view of all posts.
func (s *Server) GetTimeline(c *fiber.Ctx) error {
	viewerID, _ := middleware.OptionalUserID(c)
	page, limit := parsePagination(c)
	query := repository.TimelineQuery{
		ViewerID:       viewerID,
		Page:           page,
		Limit:          limit,
		Filter:         repository.ParseTimelineFilter(c.Query("type")),
		ExcludeReplies: c.QueryBool("exclude_replies", false),
	}

	result, err := s.postService.Timeline(c.Context(), query)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(postPageEnvelope(result, page, limit))
}

// GetPost returns a single post with relations.
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	post, err := s.postService.GetPost(c.Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(post)
}

// GetReplies lists direct replies to a post.
func (s *Server) GetReplies(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	page, limit := parsePagination(c)
	result, err := s.postService.Replies(c.Context(), id, page, limit)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(postPageEnvelope(result, page, limit))
}

// GetUserPosts lists one author's posts. Unknown usernames yield an empty
// page, not an error.
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	page, limit := parsePagination(c)
	filter := repository.ParseTimelineFilter(c.Query("type"))
	result, err := s.postService.UserPosts(c.Context(), c.Params("username"), page, limit, filter)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(postPageEnvelope(result, page, limit))
}

// GetMyBookmarks lists the authenticated user's bookmarked posts.
func (s *Server) GetMyBookmarks(c *fiber.Ctx) error {
	page, limit := parsePagination(c)
	result, err := s.postService.Bookmarked(c.Context(), currentUserID(c), page, limit)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(postPageEnvelope(result, page, limit))
}

// GetMyMentions lists posts mentioning the authenticated identity. Also
// serves the API-key-authenticated external mention feed.
func (s *Server) GetMyMentions(c *fiber.Ctx) error {
	page, limit := parsePagination(c)
	result, err := s.postService.MentioningUser(c.Context(), currentUserID(c), page, limit)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(postPageEnvelope(result, page, limit))
}

// SearchPosts is a substring search over post text.
func (s *Server) SearchPosts(c *fiber.Ctx) error {
	page, limit := parsePagination(c)
	result, err := s.postService.SearchPosts(c.Context(), c.Query("q"), page, limit)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(postPageEnvelope(result, page, limit))
}

// DeletePost soft-deletes the authenticated user's own post.
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	if err := s.postService.DeletePost(c.Context(), currentUserID(c), id); err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Post deleted"})
}

// LikePost likes a post; liking twice is a no-op.
func (s *Server) LikePost(c *fiber.Ctx) error {
	return s.togglePost(c, s.postService.Like)
}

// UnlikePost removes a like; removing an absent like is a no-op.
func (s *Server) UnlikePost(c *fiber.Ctx) error {
	return s.togglePost(c, s.postService.Unlike)
}

// BookmarkPost bookmarks a post; bookmarking twice is a no-op.
func (s *Server) BookmarkPost(c *fiber.Ctx) error {
	return s.togglePost(c, s.postService.Bookmark)
}

// UnbookmarkPost removes a bookmark; removing an absent bookmark is a no-op.
func (s *Server) UnbookmarkPost(c *fiber.Ctx) error {
	return s.togglePost(c, s.postService.Unbookmark)
}

func (s *Server) togglePost(c *fiber.Ctx, op func(ctx context.Context, userID, postID uint) (*models.Post, error)) error {
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	post, err := op(c.Context(), currentUserID(c), id)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(post)
}
