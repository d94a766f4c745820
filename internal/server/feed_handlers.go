package server

import (
	"ripple/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetFeed handles GET /api/feed: the caller's home timeline, newest first.
func (s *Server) GetFeed(c *fiber.Ctx) error {
	p := parsePagination(c, 20)

	posts, err := s.feedService.GetFeed(c.Context(), currentUserID(c), p.Limit, p.Offset)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "", posts)
}
