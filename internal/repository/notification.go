package repository

import (
	"context"
	"time"

	"ripple/internal/models"
	"ripple/internal/observability"

	"gorm.io/gorm"
)

// ListNotificationsQuery describes one cursor page of a user's notifications.
// Cursor is an exclusive notification id boundary: zero starts from the
// newest, otherwise only ids strictly below it are returned. Type filters to
// one kind when set.
type ListNotificationsQuery struct {
	RecipientID  uint
	Cursor       uint
	Limit        int
	Type         models.NotificationType
	AutoMarkRead bool
}

// NotificationPage is one cursor page. NextCursor is the id of the last item
// and is only meaningful when HasMore is true.
type NotificationPage struct {
	Items      []*models.Notification
	NextCursor uint
	HasMore    bool
}

// NotificationRepository defines the interface for notification data operations
type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	List(ctx context.Context, q ListNotificationsQuery) (*NotificationPage, error)
	MarkRead(ctx context.Context, recipientID uint, ids []uint) (int64, error)
	MarkAllRead(ctx context.Context, recipientID uint) (int64, error)
	UnreadCount(ctx context.Context, recipientID uint) (int64, error)
}

// notificationRepository implements NotificationRepository
type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	defer observability.TrackQuery("create", "notifications")()
	return r.db.WithContext(ctx).Create(notification).Error
}

// List fetches limit+1 rows to decide HasMore without a count query. When
// AutoMarkRead is set, the unread rows of the returned page are marked read
// after the fetch; the returned items still carry their pre-fetch read state
// so a client can tell which ones were new.
func (r *notificationRepository) List(ctx context.Context, q ListNotificationsQuery) (*NotificationPage, error) {
	defer observability.TrackQuery("list", "notifications")()

	tx := r.db.WithContext(ctx).
		Preload("Actor").
		Where("recipient_user_id = ?", q.RecipientID)
	if q.Cursor > 0 {
		tx = tx.Where("id < ?", q.Cursor)
	}
	if q.Type != "" {
		tx = tx.Where("type = ?", q.Type)
	}

	var items []*models.Notification
	err := tx.Order("id DESC").Limit(q.Limit + 1).Find(&items).Error
	if err != nil {
		return nil, err
	}

	page := &NotificationPage{}
	if len(items) > q.Limit {
		page.HasMore = true
		items = items[:q.Limit]
	}
	page.Items = items
	if page.HasMore && len(items) > 0 {
		page.NextCursor = items[len(items)-1].ID
	}

	if q.AutoMarkRead {
		var unread []uint
		for _, n := range items {
			if !n.IsRead {
				unread = append(unread, n.ID)
			}
		}
		if len(unread) > 0 {
			if _, err := r.MarkRead(ctx, q.RecipientID, unread); err != nil {
				return nil, err
			}
		}
	}

	return page, nil
}

// MarkRead marks the given notifications read, scoped to the recipient so a
// caller cannot touch another user's rows. Already-read rows are skipped so
// read_at is set exactly once.
func (r *notificationRepository) MarkRead(ctx context.Context, recipientID uint, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	now := time.Now()
	res := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_user_id = ? AND id IN ? AND is_read = ?", recipientID, ids, false).
		Updates(map[string]any{"is_read": true, "read_at": &now})
	return res.RowsAffected, res.Error
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, recipientID uint) (int64, error) {
	now := time.Now()
	res := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_user_id = ? AND is_read = ?", recipientID, false).
		Updates(map[string]any{"is_read": true, "read_at": &now})
	return res.RowsAffected, res.Error
}

func (r *notificationRepository) UnreadCount(ctx context.Context, recipientID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_user_id = ? AND is_read = ?", recipientID, false).
		Count(&count).Error
	return count, err
}
