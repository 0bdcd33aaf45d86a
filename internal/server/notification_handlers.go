package server

import (
	"ripple/internal/models"
	"ripple/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetNotifications returns one cursor page of the user's notifications,
// newest first. Unless auto_mark_read=false, unread notifications on the
// page are marked read as a side effect of the read itself.
func (s *Server) GetNotifications(c *fiber.Ctx) error {
	// A negative cursor would wrap when converted to uint; treat it as absent.
	cursor := c.QueryInt("cursor", 0)
	if cursor < 0 {
		cursor = 0
	}

	page, err := s.notificationService.List(c.Context(), service.ListNotificationsInput{
		UserID:       currentUserID(c),
		Cursor:       uint(cursor),
		Limit:        c.QueryInt("limit", 20),
		Type:         c.Query("type"),
		AutoMarkRead: c.QueryBool("auto_mark_read", true),
	})
	if err != nil {
		return fail(c, err)
	}

	items := page.Items
	if items == nil {
		items = []*models.Notification{}
	}
	return c.Status(fiber.StatusOK).JSON(cursorEnvelope(items, page.NextCursor, page.HasMore))
}

// MarkNotificationsRequest names the notifications to mark read.
type MarkNotificationsRequest struct {
	NotificationIDs []uint `json:"notification_ids"`
}

// MarkNotificationsRead marks the given notifications read.
func (s *Server) MarkNotificationsRead(c *fiber.Ctx) error {
	var req MarkNotificationsRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, models.NewValidationError("Invalid request body"))
	}

	updated, err := s.notificationService.MarkRead(c.Context(), currentUserID(c), req.NotificationIDs)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"updated": updated})
}

// MarkAllNotificationsRead marks every unread notification read.
func (s *Server) MarkAllNotificationsRead(c *fiber.Ctx) error {
	updated, err := s.notificationService.MarkAllRead(c.Context(), currentUserID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"updated": updated})
}

// GetUnreadCount returns the user's unread notification count.
func (s *Server) GetUnreadCount(c *fiber.Ctx) error {
	count, err := s.notificationService.UnreadCount(c.Context(), currentUserID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"unread": count})
}
