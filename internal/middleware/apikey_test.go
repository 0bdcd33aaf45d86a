package middleware

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"

	"ripple/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type resolverStub struct {
	known map[string]uint
}

func (r *resolverStub) ResolveKeyHash(_ context.Context, hash string) (uint, error) {
	if id, ok := r.known[hash]; ok {
		return id, nil
	}
	return 0, models.NewUnauthorizedError("Invalid API key")
}

func newAPIKeyTestApp(resolver KeyResolver) *fiber.App {
	app := fiber.New()
	app.Get("/external", APIKeyAuth(resolver), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"user_id": c.Locals("userID"),
		})
	})
	return app
}

func TestHashAPIKey(t *testing.T) {
	h := HashAPIKey("rk_secret")
	assert.Len(t, h, 64)
	assert.Equal(t, h, HashAPIKey("rk_secret"))
	assert.NotEqual(t, h, HashAPIKey("rk_other"))
}

func TestAPIKeyAuth(t *testing.T) {
	resolver := &resolverStub{known: map[string]uint{
		HashAPIKey("rk_valid"): 42,
	}}
	app := newAPIKeyTestApp(resolver)

	t.Run("missing header", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/external", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("unknown key", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/external", nil)
		req.Header.Set(APIKeyHeader, "rk_bogus")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("valid key", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/external", nil)
		req.Header.Set(APIKeyHeader, "rk_valid")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), "42")
	})
}
