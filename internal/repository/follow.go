package repository

import (
	"context"

	"ripple/internal/cache"
	"ripple/internal/models"
	"ripple/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FollowRepository defines the interface for follow relationship operations
type FollowRepository interface {
	Follow(ctx context.Context, followerID, followedID uint) error
	Unfollow(ctx context.Context, followerID, followedID uint) (bool, error)
	IsFollowing(ctx context.Context, followerID, followedID uint) (bool, error)
	Followers(ctx context.Context, userID uint, page, limit int) ([]*models.User, int64, error)
	Following(ctx context.Context, userID uint, page, limit int) ([]*models.User, int64, error)
}

// followRepository implements FollowRepository
type followRepository struct {
	db *gorm.DB
}

// NewFollowRepository creates a new follow repository
func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

// Follow creates the edge and moves both denormalized counters in the same
// transaction. A duplicate follow is a conflict, not a silent no-op.
func (r *followRepository) Follow(ctx context.Context, followerID, followedID uint) error {
	defer observability.TrackQuery("create", "follows")()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.Follow{FollowerID: followerID, FollowedID: followedID})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewConflictError("Already following this user")
		}
		if err := tx.Model(&models.User{}).
			Where("id = ?", followedID).
			UpdateColumn("followers_count", gorm.Expr("followers_count + ?", 1)).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).
			Where("id = ?", followerID).
			UpdateColumn("following_count", gorm.Expr("following_count + ?", 1)).Error
	})
	if err != nil {
		return err
	}

	cache.InvalidateUser(ctx, followerID)
	cache.InvalidateUser(ctx, followedID)
	return nil
}

// Unfollow removes the edge. Removing an absent edge is a silent no-op and
// the counters do not move. The decrement guard keeps counters non-negative.
func (r *followRepository) Unfollow(ctx context.Context, followerID, followedID uint) (bool, error) {
	changed := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("follower_id = ? AND followed_id = ?", followerID, followedID).
			Delete(&models.Follow{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		changed = true
		if err := tx.Model(&models.User{}).
			Where("id = ? AND followers_count > 0", followedID).
			UpdateColumn("followers_count", gorm.Expr("followers_count - ?", 1)).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).
			Where("id = ? AND following_count > 0", followerID).
			UpdateColumn("following_count", gorm.Expr("following_count - ?", 1)).Error
	})
	if err != nil {
		return false, err
	}

	if changed {
		cache.InvalidateUser(ctx, followerID)
		cache.InvalidateUser(ctx, followedID)
	}
	return changed, nil
}

func (r *followRepository) IsFollowing(ctx context.Context, followerID, followedID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Count(&count).Error
	return count > 0, err
}

// Followers lists the users following userID, most recent follow first.
func (r *followRepository) Followers(ctx context.Context, userID uint, page, limit int) ([]*models.User, int64, error) {
	scope := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&models.User{}).
			Joins("JOIN follows ON follows.follower_id = users.id").
			Where("follows.followed_id = ?", userID)
	}
	return r.listUsers(scope, page, limit)
}

// Following lists the users userID follows, most recent follow first.
func (r *followRepository) Following(ctx context.Context, userID uint, page, limit int) ([]*models.User, int64, error) {
	scope := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&models.User{}).
			Joins("JOIN follows ON follows.followed_id = users.id").
			Where("follows.follower_id = ?", userID)
	}
	return r.listUsers(scope, page, limit)
}

func (r *followRepository) listUsers(scope func() *gorm.DB, page, limit int) ([]*models.User, int64, error) {
	var total int64
	if err := scope().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []*models.User
	err := scope().
		Order("follows.created_at DESC").
		Limit(limit).
		Offset(offsetOf(page, limit)).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}
