package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"ripple/internal/cache"
	"ripple/internal/config"
	"ripple/internal/database"
	"ripple/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "test-secret-0123456789abcdef0123"

func testConfig() *config.Config {
	return &config.Config{
		Port:               ":0",
		Env:                "test",
		JWTSecret:          testSecret,
		JWTTTLHours:        1,
		RateLimitAuthRPS:   1000,
		RateLimitAuthBurst: 1000,
		RateLimitAnonRPS:   1000,
		RateLimitAnonBurst: 1000,
	}
}

// newTestServer wires a full server against in-memory sqlite and miniredis.
func newTestServer(t *testing.T) (*Server, *fiber.App) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, database.Migrate(db))

	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache.SetClient(redisClient)
	t.Cleanup(func() { cache.SetClient(nil) })

	srv, err := NewServerWithDeps(testConfig(), db, redisClient)
	require.NoError(t, err)
	t.Cleanup(srv.shutdownFn)

	app := srv.newApp()
	return srv, app
}

func sendJSON(t *testing.T, app *fiber.App, method, path, token string, body any) (*http.Response, models.Envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var envelope models.Envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &envelope), "body: %s", raw)
	return resp, envelope
}

// register creates an account through the API and returns its token.
func register(t *testing.T, app *fiber.App, username string) string {
	t.Helper()
	resp, envelope := sendJSON(t, app, "POST", "/api/auth/register", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "pw12345678",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	data := envelope.Data.(map[string]any)
	return data["token"].(string)
}

func errorCode(t *testing.T, envelope models.Envelope) string {
	t.Helper()
	require.NotNil(t, envelope.Error)
	return envelope.Error.Code
}
