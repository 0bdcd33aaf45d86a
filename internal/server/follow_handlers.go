package server

import (
	"ripple/internal/models"

	"github.com/gofiber/fiber/v2"
)

// FollowActionRequest is the payload for the follow endpoint. Action selects
// between creating and removing the edge.
type FollowActionRequest struct {
	TargetID uint   `json:"target_id"`
	Action   string `json:"action"`
}

// FollowAction follows or unfollows the target user. Following twice is a
// conflict; unfollowing an absent edge is a silent no-op.
func (s *Server) FollowAction(c *fiber.Ctx) error {
	var req FollowActionRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, models.NewValidationError("Invalid request body"))
	}
	if req.TargetID == 0 {
		return fail(c, models.NewValidationError("target_id is required"))
	}

	userID := currentUserID(c)
	switch req.Action {
	case "follow":
		if err := s.userService.Follow(c.Context(), userID, req.TargetID); err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"following": true})
	case "unfollow":
		if err := s.userService.Unfollow(c.Context(), userID, req.TargetID); err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"following": false})
	default:
		return fail(c, models.NewValidationError(`action must be "follow" or "unfollow"`))
	}
}

// GetFollowStatus reports whether the authenticated user follows the target.
func (s *Server) GetFollowStatus(c *fiber.Ctx) error {
	targetID := uint(c.QueryInt("target_id", 0))
	if targetID == 0 {
		return fail(c, models.NewValidationError("target_id is required"))
	}
	following, err := s.userService.FollowStatus(c.Context(), currentUserID(c), targetID)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"following": following})
}
