package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersioning(t *testing.T) {
	app := fiber.New()
	app.Use(Versioning())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString("ok") })

	// No version header: served the current version.
	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, CurrentAPIVersion, resp.Header.Get("X-API-Current-Version"))
	assert.Equal(t, "v1", resp.Header.Get("X-API-Supported-Versions"))

	// Pinned to a supported version.
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-API-Version", "v1")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	// Pinned to an unknown version.
	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-API-Version", "v99")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
