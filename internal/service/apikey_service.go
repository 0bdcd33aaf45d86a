package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"ripple/internal/middleware"
	"ripple/internal/models"
	"ripple/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// apiKeyPrefix marks secrets issued by this service.
const apiKeyPrefix = "rk_"

// APIKeyService issues and resolves API keys for the external endpoints.
// Secrets are shown once at creation; only their SHA-256 hash is stored.
type APIKeyService struct {
	keys   repository.APIKeyRepository
	logger *slog.Logger
}

// NewAPIKeyService creates a new API key service
func NewAPIKeyService(keys repository.APIKeyRepository, logger *slog.Logger) *APIKeyService {
	return &APIKeyService{keys: keys, logger: logger}
}

// CreatedAPIKey pairs the stored row with the one-time plaintext secret.
type CreatedAPIKey struct {
	Key    models.APIKey
	Secret string
}

// Create issues a new key for the user. The returned secret cannot be
// recovered later.
func (s *APIKeyService) Create(ctx context.Context, userID uint, name string) (*CreatedAPIKey, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, models.NewValidationError("Key name is required")
	}

	secret := fmt.Sprintf("%s%s%s", apiKeyPrefix,
		strings.ReplaceAll(uuid.NewString(), "-", ""),
		strings.ReplaceAll(uuid.NewString(), "-", ""))

	key := &models.APIKey{
		UserID:   userID,
		KeyHash:  middleware.HashAPIKey(secret),
		Name:     name,
		IsActive: true,
	}
	if err := s.keys.Create(ctx, key); err != nil {
		return nil, models.NewInternalError(err)
	}

	s.logger.Info("api key created", "user_id", userID, "key_id", key.ID)
	return &CreatedAPIKey{Key: *key, Secret: secret}, nil
}

// List returns the user's keys, hashes included but never plaintext.
func (s *APIKeyService) List(ctx context.Context, userID uint) ([]models.APIKey, error) {
	keys, err := s.keys.ListByUser(ctx, userID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return keys, nil
}

// Revoke deactivates one of the user's keys.
func (s *APIKeyService) Revoke(ctx context.Context, userID, keyID uint) error {
	err := s.keys.Revoke(ctx, userID, keyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("API key not found")
		}
		return models.NewInternalError(err)
	}
	s.logger.Info("api key revoked", "user_id", userID, "key_id", keyID)
	return nil
}

// ResolveKeyHash maps a hashed key onto its owner and stamps last use.
// Implements the key resolver used by the API key middleware.
func (s *APIKeyService) ResolveKeyHash(ctx context.Context, hash string) (uint, error) {
	key, err := s.keys.GetActiveByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, models.NewUnauthorizedError("Invalid API key")
		}
		return 0, models.NewInternalError(err)
	}
	if err := s.keys.TouchLastUsed(ctx, key.ID); err != nil {
		s.logger.Warn("api key last_used update failed", "key_id", key.ID, "error", err)
	}
	return key.UserID, nil
}
