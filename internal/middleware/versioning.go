package middleware

import (
	"strings"

	"ripple/internal/models"

	"github.com/gofiber/fiber/v2"
)

// API versions advertised to clients.
const (
	CurrentAPIVersion = "v1"
)

// SupportedAPIVersions lists versions the server still accepts.
var SupportedAPIVersions = []string{"v1"}

// Versioning echoes the API version headers on every response and rejects
// requests pinned to a version the server no longer supports. Requests
// without an X-API-Version header are served the current version.
func Versioning() fiber.Handler {
	supported := strings.Join(SupportedAPIVersions, ", ")

	return func(c *fiber.Ctx) error {
		c.Set("X-API-Current-Version", CurrentAPIVersion)
		c.Set("X-API-Supported-Versions", supported)

		requested := c.Get("X-API-Version")
		if requested == "" {
			return c.Next()
		}

		for _, v := range SupportedAPIVersions {
			if requested == v {
				return c.Next()
			}
		}

		return models.RespondWithError(c,
			models.NewValidationError("Unsupported API version "+requested))
	}
}
