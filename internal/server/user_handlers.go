package server

import (
	"ripple/internal/models"
	"ripple/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetUserProfile handles GET /api/users/:username (public).
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	username := c.Params("username")

	user, err := s.userService.GetProfile(c.Context(), username)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "", user)
}

// GetAllUsers handles GET /api/users (protected).
func (s *Server) GetAllUsers(c *fiber.Ctx) error {
	p := parsePagination(c, 20)

	users, err := s.userService.ListUsers(c.Context(), p.Limit, p.Offset)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "", users)
}

// UpdateProfile handles PUT /api/users/:username. The path names the actor;
// only the profile's owner may update it.
func (s *Server) UpdateProfile(c *fiber.Ctx) error {
	// Pointer fields distinguish "absent" from "set to empty": sending an
	// empty string clears the field, omitting it leaves it alone.
	var req struct {
		DisplayName *string `json:"display_name"`
		Bio         *string `json:"bio"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.UpdateProfile(c.Context(), service.UpdateProfileInput{
		ActorID:     currentUserID(c),
		Username:    c.Params("username"),
		DisplayName: req.DisplayName,
		Bio:         req.Bio,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "Profile updated", user)
}

// DeleteProfile handles DELETE /api/users/:username.
func (s *Server) DeleteProfile(c *fiber.Ctx) error {
	if err := s.userService.DeleteProfile(c.Context(), currentUserID(c), c.Params("username")); err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "Account deleted", nil)
}
