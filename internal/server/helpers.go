package server

import (
	"strconv"

	"ripple/internal/models"
	"ripple/internal/repository"

	"github.com/gofiber/fiber/v2"
)

// currentUserID returns the authenticated user id placed in locals by the
// auth or API key middleware.
func currentUserID(c *fiber.Ctx) uint {
	if uid, ok := c.Locals("userID").(uint); ok {
		return uid
	}
	return 0
}

// parseID parses a positive id from a route parameter.
func parseID(c *fiber.Ctx, name string) (uint, error) {
	raw := c.Params(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, models.NewValidationError("Invalid " + name)
	}
	return uint(id), nil
}

// parsePagination reads page/limit query parameters with the shared defaults.
func parsePagination(c *fiber.Ctx) (page, limit int) {
	page = c.QueryInt("page", 1)
	limit = c.QueryInt("limit", 20)
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}

// pagination is the offset-pagination envelope shared by list endpoints.
type pagination struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Pages int   `json:"pages"`
}

func newPagination(total int64, page, limit int) pagination {
	pages := int(total) / limit
	if int(total)%limit != 0 {
		pages++
	}
	return pagination{Total: total, Page: page, Limit: limit, Pages: pages}
}

// offsetEnvelope wraps items in the `{items, pagination}` response shape.
func offsetEnvelope(items any, total int64, page, limit int) fiber.Map {
	return fiber.Map{
		"items":      items,
		"pagination": newPagination(total, page, limit),
	}
}

// postPageEnvelope wraps a post page, keeping items as an empty array rather
// than null.
func postPageEnvelope(result *repository.PostPage, page, limit int) fiber.Map {
	items := result.Items
	if items == nil {
		items = []*models.Post{}
	}
	return offsetEnvelope(items, result.Total, page, limit)
}

// cursorEnvelope wraps items in the `{items, next_cursor, has_more}` shape
// used by cursor-paginated endpoints.
func cursorEnvelope(items any, nextCursor uint, hasMore bool) fiber.Map {
	return fiber.Map{
		"items":       items,
		"next_cursor": nextCursor,
		"has_more":    hasMore,
	}
}

// fail maps a service error onto its HTTP status and error body.
func fail(c *fiber.Ctx, err error) error {
	return models.RespondWithError(c, models.StatusForError(err), err)
}
