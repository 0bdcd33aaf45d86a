package server

import (
	"ripple/internal/models"
	"ripple/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile returns the authenticated user's own profile.
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	user, err := s.userService.GetByID(c.Context(), currentUserID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(user)
}

// UpdateProfileRequest carries the editable profile fields. Absent fields
// are left unchanged.
type UpdateProfileRequest struct {
	Username    *string `json:"username"`
	DisplayName *string `json:"display_name"`
	Bio         *string `json:"bio"`
	Location    *string `json:"location"`
	WebsiteURL  *string `json:"website_url"`
	AvatarURL   *string `json:"avatar_url"`
	BannerURL   *string `json:"banner_url"`
}

// UpdateMyProfile applies profile changes for the authenticated user.
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.UpdateProfile(c.Context(), currentUserID(c), service.UpdateProfileInput{
		Username:    req.Username,
		DisplayName: req.DisplayName,
		Bio:         req.Bio,
		Location:    req.Location,
		WebsiteURL:  req.WebsiteURL,
		AvatarURL:   req.AvatarURL,
		BannerURL:   req.BannerURL,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(user)
}

// DeactivateMyAccount soft-deactivates the authenticated user's account and
// clears the session cookie.
func (s *Server) DeactivateMyAccount(c *fiber.Ctx) error {
	if err := s.userService.Deactivate(c.Context(), currentUserID(c)); err != nil {
		return fail(c, err)
	}
	return s.DestroySession(c)
}

// GetUserProfile returns a public profile by username.
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	user, err := s.userService.GetProfile(c.Context(), c.Params("username"))
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(user)
}

// SearchUsers is a substring search over usernames and display names.
func (s *Server) SearchUsers(c *fiber.Ctx) error {
	page, limit := parsePagination(c)
	users, total, err := s.userService.SearchUsers(c.Context(), c.Query("q"), page, limit)
	if err != nil {
		return fail(c, err)
	}
	if users == nil {
		users = []*models.User{}
	}
	return c.Status(fiber.StatusOK).JSON(offsetEnvelope(users, total, page, limit))
}

// GetFollowers lists the users following the routed user.
func (s *Server) GetFollowers(c *fiber.Ctx) error {
	page, limit := parsePagination(c)
	users, total, err := s.userService.Followers(c.Context(), c.Params("username"), page, limit)
	if err != nil {
		return fail(c, err)
	}
	if users == nil {
		users = []*models.User{}
	}
	return c.Status(fiber.StatusOK).JSON(offsetEnvelope(users, total, page, limit))
}

// GetFollowing lists the users the routed user follows.
func (s *Server) GetFollowing(c *fiber.Ctx) error {
	page, limit := parsePagination(c)
	users, total, err := s.userService.Following(c.Context(), c.Params("username"), page, limit)
	if err != nil {
		return fail(c, err)
	}
	if users == nil {
		users = []*models.User{}
	}
	return c.Status(fiber.StatusOK).JSON(offsetEnvelope(users, total, page, limit))
}
