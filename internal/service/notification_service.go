// Package service contains the application's business logic layer.
package service

import (
	"context"
	"errors"
	"log/slog"

	"ripple/internal/models"
	"ripple/internal/notifications"
	"ripple/internal/observability"
	"ripple/internal/repository"

	"gorm.io/gorm"
)

// NotificationService is the single fan-out point for notifications: every
// action site (follow, like, repost, mention, reply) goes through Notify so
// the self-action rule is applied uniformly.
type NotificationService struct {
	repo     repository.NotificationRepository
	users    repository.UserRepository
	notifier *notifications.Notifier
	logger   *slog.Logger
}

// NewNotificationService creates a new notification service
func NewNotificationService(
	repo repository.NotificationRepository,
	users repository.UserRepository,
	notifier *notifications.Notifier,
	logger *slog.Logger,
) *NotificationService {
	return &NotificationService{repo: repo, users: users, notifier: notifier, logger: logger}
}

// Notify records a notification and publishes it to the recipient's channel.
// Actions a user takes on their own content are skipped. Publish failures
// are logged and swallowed: the stored row is the source of truth, the
// channel is best-effort delivery.
func (s *NotificationService) Notify(
	ctx context.Context,
	recipientID, actorID uint,
	notificationType models.NotificationType,
	relatedPostID *uint,
) error {
	if recipientID == actorID {
		return nil
	}
	if !notificationType.Valid() {
		return models.NewValidationError("Invalid notification type")
	}

	notification := &models.Notification{
		RecipientUserID: recipientID,
		ActorUserID:     actorID,
		Type:            notificationType,
		RelatedPostID:   relatedPostID,
	}
	if err := s.repo.Create(ctx, notification); err != nil {
		return models.NewInternalError(err)
	}
	observability.NotificationFanout.WithLabelValues(string(notificationType)).Inc()

	event := notifications.Event{
		ID:              notification.ID,
		Type:            notificationType,
		ActorUserID:     actorID,
		RecipientUserID: recipientID,
		RelatedPostID:   relatedPostID,
		CreatedAt:       notification.CreatedAt,
	}
	if actor, err := s.users.GetByID(ctx, actorID); err == nil {
		event.ActorUsername = actor.Username
	}
	if err := s.notifier.PublishUser(ctx, recipientID, event); err != nil {
		s.logger.Warn("notification publish failed",
			"recipient_id", recipientID, "type", notificationType, "error", err)
	}
	return nil
}

// ListNotificationsInput holds parameters for listing a user's notifications.
type ListNotificationsInput struct {
	UserID       uint
	Cursor       uint
	Limit        int
	Type         string
	AutoMarkRead bool
}

// List returns one cursor page of the user's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, input ListNotificationsInput) (*repository.NotificationPage, error) {
	if input.Limit < 1 {
		input.Limit = 20
	}
	if input.Limit > 100 {
		input.Limit = 100
	}

	query := repository.ListNotificationsQuery{
		RecipientID:  input.UserID,
		Cursor:       input.Cursor,
		Limit:        input.Limit,
		AutoMarkRead: input.AutoMarkRead,
	}
	if input.Type != "" {
		notificationType := models.NotificationType(input.Type)
		if !notificationType.Valid() {
			return nil, models.NewValidationError("Invalid notification type")
		}
		query.Type = notificationType
	}

	page, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return page, nil
}

// MarkRead marks the given notifications read for the user and returns how
// many rows actually changed.
func (s *NotificationService) MarkRead(ctx context.Context, userID uint, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, models.NewValidationError("No notification ids provided")
	}
	updated, err := s.repo.MarkRead(ctx, userID, ids)
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return updated, nil
}

// MarkAllRead marks every unread notification of the user as read.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	updated, err := s.repo.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return updated, nil
}

// UnreadCount returns the number of unread notifications for the user.
func (s *NotificationService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	count, err := s.repo.UnreadCount(ctx, userID)
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

// wrapLookup maps a repository read error onto the API error taxonomy.
func wrapLookup(err error, message string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(message)
	}
	return models.NewInternalError(err)
}
