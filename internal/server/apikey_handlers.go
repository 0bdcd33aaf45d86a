package server

import (
	"ripple/internal/models"

	"github.com/gofiber/fiber/v2"
)

// CreateAPIKeyRequest names the key being issued.
type CreateAPIKeyRequest struct {
	Name string `json:"name"`
}

// CreateAPIKey issues a new API key. The plaintext secret appears in this
// response only; afterwards only its hash exists.
func (s *Server) CreateAPIKey(c *fiber.Ctx) error {
	var req CreateAPIKeyRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, models.NewValidationError("Invalid request body"))
	}

	created, err := s.apiKeyService.Create(c.Context(), currentUserID(c), req.Name)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"key":    created.Key,
		"secret": created.Secret,
	})
}

// ListAPIKeys lists the user's keys without secrets.
func (s *Server) ListAPIKeys(c *fiber.Ctx) error {
	keys, err := s.apiKeyService.List(c.Context(), currentUserID(c))
	if err != nil {
		return fail(c, err)
	}
	if keys == nil {
		keys = []models.APIKey{}
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"items": keys})
}

// RevokeAPIKey deactivates one of the user's keys.
func (s *Server) RevokeAPIKey(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	if err := s.apiKeyService.Revoke(c.Context(), currentUserID(c), id); err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "API key revoked"})
}
