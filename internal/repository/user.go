package repository

import (
	"context"
	"strings"
	"time"

	"ripple/internal/cache"
	"ripple/internal/models"
	"ripple/internal/observability"

	"gorm.io/gorm"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByWallet(ctx context.Context, walletAddress string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Deactivate(ctx context.Context, id uint) error
	Search(ctx context.Context, query string, page, limit int) ([]*models.User, int64, error)
	ResolveUsernames(ctx context.Context, usernames []string) ([]models.User, error)
}

// userRepository implements UserRepository
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	defer observability.TrackQuery("create", "users")()
	return r.db.WithContext(ctx).Create(user).Error
}

// GetByID reads through the per-user cache entry.
func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := cache.Aside(ctx, cache.UserKey(id), &user, cache.UserTTL, func() error {
		return r.db.WithContext(ctx).First(&user, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByUsername reads through the profile cache entry keyed by username.
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := cache.Aside(ctx, cache.ProfileKey(username), &user, cache.ProfileTTL, func() error {
		return r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByWallet(ctx context.Context, walletAddress string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("wallet_address = ?", walletAddress).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	defer observability.TrackQuery("update", "users")()
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		return err
	}
	cache.InvalidateUser(ctx, user.ID)
	cache.InvalidateProfile(ctx, user.Username)
	return nil
}

// Deactivate stamps the account without deleting any rows; the user's posts
// and relationships stay in place.
func (r *userRepository) Deactivate(ctx context.Context, id uint) error {
	var user models.User
	if err := r.db.WithContext(ctx).Select("username").First(&user, id).Error; err != nil {
		return err
	}
	now := time.Now()
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Update("deactivated_at", &now).Error
	if err != nil {
		return err
	}
	cache.InvalidateUser(ctx, id)
	cache.InvalidateProfile(ctx, user.Username)
	return nil
}

// Search is a case-insensitive substring match over username and display
// name, alphabetical by username.
func (r *userRepository) Search(ctx context.Context, query string, page, limit int) ([]*models.User, int64, error) {
	like := "%" + strings.ToLower(query) + "%"
	scope := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&models.User{}).
			Where("LOWER(username) LIKE ? OR LOWER(display_name) LIKE ?", like, like)
	}

	var total int64
	if err := scope().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []*models.User
	err := scope().
		Order("username ASC").
		Limit(limit).
		Offset(offsetOf(page, limit)).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// ResolveUsernames returns the users whose username matches one of the given
// candidates. Unknown names are silently absent from the result.
func (r *userRepository) ResolveUsernames(ctx context.Context, usernames []string) ([]models.User, error) {
	if len(usernames) == 0 {
		return nil, nil
	}
	var users []models.User
	err := r.db.WithContext(ctx).Where("username IN ?", usernames).Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}
