package server

import (
	"net/http"
	"testing"

	"ripple/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	_, app := newTestServer(t)

	resp, envelope := sendJSON(t, app, "POST", "/api/auth/register", "", map[string]string{
		"username":     "alice",
		"email":        "alice@example.com",
		"password":     "pw12345678",
		"display_name": "Alice",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.True(t, envelope.Success)

	data := envelope.Data.(map[string]any)
	assert.NotEmpty(t, data["token"])
	user := data["user"].(map[string]any)
	assert.Equal(t, "alice", user["username"])
	assert.Equal(t, "Alice", user["display_name"])
	// The password hash never leaves the server.
	assert.NotContains(t, user, "password")
}

func TestRegisterValidation(t *testing.T) {
	_, app := newTestServer(t)

	cases := []struct {
		name string
		body map[string]string
	}{
		{"missing fields", map[string]string{"username": "alice"}},
		{"short username", map[string]string{
			"username": "ab", "email": "a@example.com", "password": "pw12345678"}},
		{"bad email", map[string]string{
			"username": "alice", "email": "nope", "password": "pw12345678"}},
		{"short password", map[string]string{
			"username": "alice", "email": "a@example.com", "password": "short"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, envelope := sendJSON(t, app, "POST", "/api/auth/register", "", tc.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, models.CodeValidation, errorCode(t, envelope))
		})
	}
}

func TestRegisterConflicts(t *testing.T) {
	_, app := newTestServer(t)
	register(t, app, "alice")

	resp, envelope := sendJSON(t, app, "POST", "/api/auth/register", "", map[string]string{
		"username": "alice",
		"email":    "other@example.com",
		"password": "pw12345678",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, models.CodeConflict, errorCode(t, envelope))

	resp, envelope = sendJSON(t, app, "POST", "/api/auth/register", "", map[string]string{
		"username": "alice2",
		"email":    "alice@example.com",
		"password": "pw12345678",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, models.CodeConflict, errorCode(t, envelope))
}

func TestLogin(t *testing.T) {
	_, app := newTestServer(t)
	register(t, app, "alice")

	resp, envelope := sendJSON(t, app, "POST", "/api/auth/login", "", map[string]string{
		"username": "alice",
		"password": "pw12345678",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := envelope.Data.(map[string]any)
	assert.NotEmpty(t, data["token"])
}

func TestLoginRepeatsThroughWarmCache(t *testing.T) {
	_, app := newTestServer(t)
	register(t, app, "alice")

	// The first login warms the user cache; the later attempts read the
	// cached record, which must still carry the password hash.
	for i := 1; i <= 3; i++ {
		resp, envelope := sendJSON(t, app, "POST", "/api/auth/login", "", map[string]string{
			"username": "alice",
			"password": "pw12345678",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode, "login attempt %d", i)
		require.True(t, envelope.Success)
	}
}

func TestProfileUpdateKeepsLoginWorking(t *testing.T) {
	_, app := newTestServer(t)
	tok := register(t, app, "carol")

	// Warm the cache with a public read, then let the owner update the
	// profile from the cached record. The stored hash must survive.
	resp, _ := sendJSON(t, app, "GET", "/api/users/carol", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = sendJSON(t, app, "PUT", "/api/users/carol", tok, map[string]string{
		"display_name": "Carol C.",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, envelope := sendJSON(t, app, "POST", "/api/auth/login", "", map[string]string{
		"username": "carol",
		"password": "pw12345678",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, envelope.Success)
}

func TestLoginFailures(t *testing.T) {
	_, app := newTestServer(t)
	register(t, app, "alice")

	// Wrong password and unknown username are indistinguishable.
	for _, body := range []map[string]string{
		{"username": "alice", "password": "wrong-password"},
		{"username": "nobody", "password": "pw12345678"},
	} {
		resp, envelope := sendJSON(t, app, "POST", "/api/auth/login", "", body)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, models.CodeInvalidCredentials, errorCode(t, envelope))
	}
}

func TestLogout(t *testing.T) {
	_, app := newTestServer(t)
	tok := register(t, app, "alice")

	resp, envelope := sendJSON(t, app, "POST", "/api/auth/logout", tok, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, envelope.Success)

	// Tokens are stateless; the token still works until it expires.
	resp, _ = sendJSON(t, app, "GET", "/api/feed", tok, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
