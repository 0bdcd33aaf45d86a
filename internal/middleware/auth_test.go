package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"ripple/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthTestApp(t *testing.T) (*fiber.App, *config.Config) {
	t.Helper()
	cfg := &config.Config{JWTSecret: "test-secret-key-12345678901234567890123456789012"}
	InitMiddleware(cfg)

	app := fiber.New()
	app.Get("/test", AuthRequired, func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"userID": c.Locals("userID")})
	})
	return app, cfg
}

func signToken(t *testing.T, cfg *config.Config, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(cfg.JWTSecret))
	require.NoError(t, err)
	return signed
}

func fullClaims(userID uint, exp time.Duration) jwt.MapClaims {
	now := time.Now()
	return jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(userID), 10),
		"iss": "ripple-api",
		"aud": "ripple-client",
		"iat": now.Unix(),
		"exp": now.Add(exp).Unix(),
	}
}

func TestAuthRequired_BearerHeader(t *testing.T) {
	app, cfg := newAuthTestApp(t)

	tests := []struct {
		name           string
		authHeader     string
		expectedStatus int
		expectedUserID float64
	}{
		{
			name:           "valid token",
			authHeader:     "Bearer " + signToken(t, cfg, fullClaims(123, time.Hour)),
			expectedStatus: http.StatusOK,
			expectedUserID: 123,
		},
		{
			name:           "missing header",
			authHeader:     "",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "wrong scheme",
			authHeader:     "Basic dXNlcjpwYXNz",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "expired token",
			authHeader:     "Bearer " + signToken(t, cfg, fullClaims(123, -time.Hour)),
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "wrong issuer",
			authHeader: "Bearer " + signToken(t, cfg, jwt.MapClaims{
				"sub": "123", "iss": "someone-else", "aud": "ripple-client",
				"exp": time.Now().Add(time.Hour).Unix(),
			}),
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "wrong audience",
			authHeader: "Bearer " + signToken(t, cfg, jwt.MapClaims{
				"sub": "123", "iss": "ripple-api", "aud": "other-client",
				"exp": time.Now().Add(time.Hour).Unix(),
			}),
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}

			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.expectedStatus == http.StatusOK {
				var body map[string]any
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
				assert.Equal(t, tt.expectedUserID, body["userID"])
			}
		})
	}
}

func TestAuthRequired_SessionCookie(t *testing.T) {
	app, cfg := newAuthTestApp(t)

	t.Run("cookie token accepted", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.AddCookie(&http.Cookie{
			Name:  SessionCookie,
			Value: signToken(t, cfg, fullClaims(7, time.Hour)),
		})

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("cookie takes precedence over header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.AddCookie(&http.Cookie{
			Name:  SessionCookie,
			Value: signToken(t, cfg, fullClaims(7, time.Hour)),
		})
		req.Header.Set("Authorization", "Bearer garbage")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestGenerateSessionToken_RoundTrip(t *testing.T) {
	cfg := &config.Config{JWTSecret: "test-secret-key-12345678901234567890123456789012"}
	InitMiddleware(cfg)

	token, err := GenerateSessionToken(cfg, 42)
	require.NoError(t, err)

	userID, err := ParseUserID(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), userID)
}
