package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"ripple/internal/models"

	"github.com/gofiber/fiber/v2"
)

// APIKeyHeader is the header carrying the plaintext API key secret.
const APIKeyHeader = "X-API-Key"

// KeyResolver resolves a SHA-256 key digest to the owning user id.
type KeyResolver interface {
	ResolveKeyHash(ctx context.Context, hash string) (uint, error)
}

// HashAPIKey returns the hex SHA-256 digest of a plaintext API key secret.
// Only the digest is ever persisted.
func HashAPIKey(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

// APIKeyAuth returns a middleware authenticating the external endpoints via
// the X-API-Key header. On success the key owner's user id is stored in
// c.Locals("userID"), same as session auth.
func APIKeyAuth(resolver KeyResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		secret := c.Get(APIKeyHeader)
		if secret == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("API key required"))
		}

		userID, err := resolver.ResolveKeyHash(c.Context(), HashAPIKey(secret))
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid API key"))
		}

		c.Locals("userID", userID)
		c.Locals("apiKeyAuth", true)
		return c.Next()
	}
}
