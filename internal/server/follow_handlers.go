package server

import (
	"ripple/internal/models"

	"github.com/gofiber/fiber/v2"
)

// FollowUser handles POST /api/follow/:username. Following an already
// followed user is a no-op success.
func (s *Server) FollowUser(c *fiber.Ctx) error {
	username := c.Params("username")

	if err := s.followService.Follow(c.Context(), currentUserID(c), username); err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "Now following "+username, nil)
}

// UnfollowUser handles DELETE /api/follow/:username.
func (s *Server) UnfollowUser(c *fiber.Ctx) error {
	username := c.Params("username")

	if err := s.followService.Unfollow(c.Context(), currentUserID(c), username); err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "Unfollowed "+username, nil)
}

// GetFollowStatus handles GET /api/follow/status/:username.
func (s *Server) GetFollowStatus(c *fiber.Ctx) error {
	following, followedBy, err := s.followService.Status(c.Context(),
		currentUserID(c), c.Params("username"))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "", fiber.Map{
		"following":   following,
		"followed_by": followedBy,
	})
}

// GetFollowers handles GET /api/users/:username/followers (public).
func (s *Server) GetFollowers(c *fiber.Ctx) error {
	p := parsePagination(c, 50)

	users, err := s.followService.Followers(c.Context(), c.Params("username"), p.Limit, p.Offset)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "", users)
}

// GetFollowing handles GET /api/users/:username/following (public).
func (s *Server) GetFollowing(c *fiber.Ctx) error {
	p := parsePagination(c, 50)

	users, err := s.followService.Following(c.Context(), c.Params("username"), p.Limit, p.Offset)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "", users)
}
