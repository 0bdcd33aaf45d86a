package server

import (
	"time"

	"ripple/internal/middleware"
	"ripple/internal/models"

	"github.com/gofiber/fiber/v2"
)

// CreateSessionRequest is the sign-in payload.
type CreateSessionRequest struct {
	WalletAddress string `json:"wallet_address"`
}

// CreateSession signs a user in by wallet address, creating the account on
// first contact, and sets the HTTP-only session cookie. The token is also
// returned in the body for programmatic clients using Bearer auth.
func (s *Server) CreateSession(c *fiber.Ctx) error {
	var req CreateSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.FindOrCreateByWallet(c.Context(), req.WalletAddress)
	if err != nil {
		return fail(c, err)
	}

	token, err := middleware.GenerateSessionToken(s.config, user.ID)
	if err != nil {
		return fail(c, models.NewInternalError(err))
	}

	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Expires:  time.Now().Add(middleware.SessionTTL()),
		HTTPOnly: true,
		Secure:   s.config.Env == "production",
		SameSite: "Lax",
		Path:     "/",
	})

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"user":  user,
		"token": token,
	})
}

// DestroySession clears the session cookie. The token itself stays valid
// until expiry; sign-out is a client-side affair.
func (s *Server) DestroySession(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Path:     "/",
	})
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Signed out"})
}

// CurrentSession returns the authenticated user for the active session.
func (s *Server) CurrentSession(c *fiber.Ctx) error {
	user, err := s.userService.GetByID(c.Context(), currentUserID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"user": user})
}
