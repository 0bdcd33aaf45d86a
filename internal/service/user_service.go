package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"ripple/internal/models"
	"ripple/internal/repository"

	"gorm.io/gorm"
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]{3,30}$`)

// UserService handles user accounts, profiles and the follow graph.
type UserService struct {
	users         repository.UserRepository
	follows       repository.FollowRepository
	notifications *NotificationService
	logger        *slog.Logger
}

// NewUserService creates a new user service
func NewUserService(
	users repository.UserRepository,
	follows repository.FollowRepository,
	notifications *NotificationService,
	logger *slog.Logger,
) *UserService {
	return &UserService{users: users, follows: follows, notifications: notifications, logger: logger}
}

// FindOrCreateByWallet resolves a wallet address to a user, creating the
// account on first sign-in. New accounts get a derived placeholder username
// the user can change later.
func (s *UserService) FindOrCreateByWallet(ctx context.Context, walletAddress string) (*models.User, error) {
	walletAddress = strings.TrimSpace(walletAddress)
	if walletAddress == "" {
		return nil, models.NewValidationError("Wallet address is required")
	}

	user, err := s.users.GetByWallet(ctx, walletAddress)
	if err == nil {
		if user.IsDeactivated() {
			return nil, models.NewUnauthorizedError("Account is deactivated")
		}
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewInternalError(err)
	}

	user = &models.User{
		WalletAddress: walletAddress,
		Username:      placeholderUsername(walletAddress),
		DisplayName:   placeholderUsername(walletAddress),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, models.NewInternalError(err)
	}
	s.logger.Info("user created", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// placeholderUsername derives a first username from the wallet address tail.
func placeholderUsername(walletAddress string) string {
	tail := walletAddress
	if len(tail) > 8 {
		tail = tail[len(tail)-8:]
	}
	return fmt.Sprintf("user_%s", strings.ToLower(tail))
}

// GetByID returns a user by id.
func (s *UserService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, wrapLookup(err, "User not found")
	}
	return user, nil
}

// GetProfile returns a user by username.
func (s *UserService) GetProfile(ctx context.Context, username string) (*models.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, wrapLookup(err, "User not found")
	}
	return user, nil
}

// UpdateProfileInput holds the editable profile fields. Nil fields are left
// unchanged.
type UpdateProfileInput struct {
	Username    *string
	DisplayName *string
	Bio         *string
	Location    *string
	WebsiteURL  *string
	AvatarURL   *string
	BannerURL   *string
}

// UpdateProfile applies the given changes to the user's own profile. A taken
// username is a conflict.
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, input UpdateProfileInput) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, wrapLookup(err, "User not found")
	}

	if input.Username != nil {
		username := strings.TrimSpace(*input.Username)
		if !usernamePattern.MatchString(username) {
			return nil, models.NewValidationError("Username must be 3-30 characters of letters, digits or underscores")
		}
		if username != user.Username {
			existing, err := s.users.GetByUsername(ctx, username)
			if err == nil && existing.ID != userID {
				return nil, models.NewConflictError("Username is already taken")
			}
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, models.NewInternalError(err)
			}
			user.Username = username
		}
	}
	if input.DisplayName != nil {
		user.DisplayName = strings.TrimSpace(*input.DisplayName)
	}
	if input.Bio != nil {
		user.Bio = *input.Bio
	}
	if input.Location != nil {
		user.Location = *input.Location
	}
	if input.WebsiteURL != nil {
		user.WebsiteURL = *input.WebsiteURL
	}
	if input.AvatarURL != nil {
		user.AvatarURL = *input.AvatarURL
	}
	if input.BannerURL != nil {
		user.BannerURL = *input.BannerURL
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, models.NewInternalError(err)
	}
	return user, nil
}

// Deactivate soft-deactivates the user's own account. The data stays; the
// session becomes unusable.
func (s *UserService) Deactivate(ctx context.Context, userID uint) error {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return wrapLookup(err, "User not found")
	}
	if err := s.users.Deactivate(ctx, userID); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// SearchUsers is a case-insensitive substring search over usernames and
// display names.
func (s *UserService) SearchUsers(ctx context.Context, query string, page, limit int) ([]*models.User, int64, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, 0, models.NewValidationError("Search query is required")
	}
	page, limit = normalizePage(page, limit)
	users, total, err := s.users.Search(ctx, query, page, limit)
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return users, total, nil
}

// Follow creates a follow edge and notifies the followed user. Following
// yourself is invalid; following twice is a conflict.
func (s *UserService) Follow(ctx context.Context, followerID, targetID uint) error {
	if followerID == targetID {
		return models.NewValidationError("You cannot follow yourself")
	}
	if _, err := s.users.GetByID(ctx, targetID); err != nil {
		return wrapLookup(err, "User not found")
	}

	if err := s.follows.Follow(ctx, followerID, targetID); err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return err
		}
		return models.NewInternalError(err)
	}

	if err := s.notifications.Notify(ctx, targetID, followerID, models.NotificationFollow, nil); err != nil {
		s.logger.Warn("follow notification failed", "target_id", targetID, "error", err)
	}
	return nil
}

// Unfollow removes a follow edge; removing an absent edge is a silent no-op.
func (s *UserService) Unfollow(ctx context.Context, followerID, targetID uint) error {
	if followerID == targetID {
		return models.NewValidationError("You cannot unfollow yourself")
	}
	if _, err := s.users.GetByID(ctx, targetID); err != nil {
		return wrapLookup(err, "User not found")
	}
	if _, err := s.follows.Unfollow(ctx, followerID, targetID); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// FollowStatus reports whether the viewer follows the target.
func (s *UserService) FollowStatus(ctx context.Context, followerID, targetID uint) (bool, error) {
	following, err := s.follows.IsFollowing(ctx, followerID, targetID)
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return following, nil
}

// Followers lists the users following the named user.
func (s *UserService) Followers(ctx context.Context, username string, page, limit int) ([]*models.User, int64, error) {
	page, limit = normalizePage(page, limit)
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, 0, wrapLookup(err, "User not found")
	}
	users, total, err := s.follows.Followers(ctx, user.ID, page, limit)
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return users, total, nil
}

// Following lists the users the named user follows.
func (s *UserService) Following(ctx context.Context, username string, page, limit int) ([]*models.User, int64, error) {
	page, limit = normalizePage(page, limit)
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, 0, wrapLookup(err, "User not found")
	}
	users, total, err := s.follows.Following(ctx, user.ID, page, limit)
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return users, total, nil
}
