package server

import (
	"net/http"
	"testing"

	"ripple/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// postID extracts the post ID out of a response envelope.
func postID(t *testing.T, envelope models.Envelope) int {
	t.Helper()
	data := envelope.Data.(map[string]any)
	return int(data["id"].(float64))
}

func TestPostLifecycle(t *testing.T) {
	_, app := newTestServer(t)
	alice := register(t, app, "alice")
	bob := register(t, app, "bob")

	// Alice publishes a post.
	resp, envelope := sendJSON(t, app, "POST", "/api/posts/", alice, map[string]string{
		"content": "hello",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id := postID(t, envelope)

	// Anyone can read it without a token.
	resp, envelope = sendJSON(t, app, "GET", "/api/posts/1", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := envelope.Data.(map[string]any)
	assert.Equal(t, "hello", data["content"])
	assert.Equal(t, "alice", data["username"])

	// Bob cannot delete Alice's post.
	resp, envelope = sendJSON(t, app, "DELETE", "/api/posts/1", bob, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, models.CodeForbidden, errorCode(t, envelope))

	// Nor edit it.
	resp, envelope = sendJSON(t, app, "PUT", "/api/posts/1", bob, map[string]string{
		"content": "hijacked",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, models.CodeForbidden, errorCode(t, envelope))

	// Alice edits and then deletes her own post.
	resp, envelope = sendJSON(t, app, "PUT", "/api/posts/1", alice, map[string]string{
		"content": "hello, edited",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data = envelope.Data.(map[string]any)
	assert.Equal(t, "hello, edited", data["content"])
	assert.Equal(t, id, int(data["id"].(float64)))

	resp, _ = sendJSON(t, app, "DELETE", "/api/posts/1", alice, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, envelope = sendJSON(t, app, "GET", "/api/posts/1", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, models.CodeNotFound, errorCode(t, envelope))
}

func TestLikeAndCommentFlow(t *testing.T) {
	_, app := newTestServer(t)
	alice := register(t, app, "alice")
	bob := register(t, app, "bob")

	resp, _ := sendJSON(t, app, "POST", "/api/posts/", alice, map[string]string{
		"content": "like and comment on this",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// The anonymous read caches the post; mutations below must invalidate it.
	resp, _ = sendJSON(t, app, "GET", "/api/posts/1", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, envelope := sendJSON(t, app, "POST", "/api/likes/posts/1", bob, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := envelope.Data.(map[string]any)
	assert.Equal(t, float64(1), data["likes_count"])
	assert.Equal(t, true, data["liked"])

	// Liking twice does not double count.
	resp, envelope = sendJSON(t, app, "POST", "/api/likes/posts/1", bob, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data = envelope.Data.(map[string]any)
	assert.Equal(t, float64(1), data["likes_count"])

	resp, envelope = sendJSON(t, app, "POST", "/api/comments/posts/1", bob, map[string]string{
		"content": "great post",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	data = envelope.Data.(map[string]any)
	assert.Equal(t, "bob", data["username"])

	// The fresh anonymous read reflects both mutations.
	resp, envelope = sendJSON(t, app, "GET", "/api/posts/1", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data = envelope.Data.(map[string]any)
	assert.Equal(t, float64(1), data["likes_count"])
	assert.Equal(t, float64(1), data["comments_count"])

	resp, envelope = sendJSON(t, app, "GET", "/api/likes/posts/1/users", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	likers := envelope.Data.([]any)
	require.Len(t, likers, 1)
	assert.Equal(t, "bob", likers[0].(map[string]any)["username"])

	resp, envelope = sendJSON(t, app, "DELETE", "/api/likes/posts/1", bob, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data = envelope.Data.(map[string]any)
	assert.Equal(t, float64(0), data["likes_count"])
}

func TestFollowAndFeedFlow(t *testing.T) {
	_, app := newTestServer(t)
	alice := register(t, app, "alice")
	bob := register(t, app, "bob")

	// Bob's feed is empty before following anyone.
	resp, envelope := sendJSON(t, app, "GET", "/api/feed", bob, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, envelope.Data)

	resp, _ = sendJSON(t, app, "POST", "/api/follow/alice", bob, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, envelope = sendJSON(t, app, "GET", "/api/follow/status/alice", bob, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	status := envelope.Data.(map[string]any)
	assert.Equal(t, true, status["following"])
	assert.Equal(t, false, status["followed_by"])

	// Self-follow is rejected.
	resp, envelope = sendJSON(t, app, "POST", "/api/follow/bob", bob, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, models.CodeInvalidOperation, errorCode(t, envelope))

	resp, _ = sendJSON(t, app, "POST", "/api/posts/", alice, map[string]string{
		"content": "alice's latest",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, envelope = sendJSON(t, app, "GET", "/api/feed", bob, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	feed := envelope.Data.([]any)
	require.Len(t, feed, 1)
	assert.Equal(t, "alice's latest", feed[0].(map[string]any)["content"])

	// Follower lists reflect the same edge.
	resp, envelope = sendJSON(t, app, "GET", "/api/users/alice/followers", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	followers := envelope.Data.([]any)
	require.Len(t, followers, 1)
	assert.Equal(t, "bob", followers[0].(map[string]any)["username"])

	resp, _ = sendJSON(t, app, "DELETE", "/api/follow/alice", bob, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, envelope = sendJSON(t, app, "GET", "/api/feed", bob, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, envelope.Data)
}

func TestUserProfileFlow(t *testing.T) {
	_, app := newTestServer(t)
	alice := register(t, app, "alice")
	bob := register(t, app, "bob")

	resp, envelope := sendJSON(t, app, "PUT", "/api/users/alice", alice, map[string]string{
		"display_name": "Alice A.",
		"bio":          "short bio",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := envelope.Data.(map[string]any)
	assert.Equal(t, "Alice A.", data["display_name"])

	// Bob cannot touch Alice's profile.
	resp, envelope = sendJSON(t, app, "PUT", "/api/users/alice", bob, map[string]string{
		"display_name": "Mallory",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, models.CodeForbidden, errorCode(t, envelope))

	// Public profile read, no token needed.
	resp, envelope = sendJSON(t, app, "GET", "/api/users/alice", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data = envelope.Data.(map[string]any)
	assert.Equal(t, "Alice A.", data["display_name"])

	resp, envelope = sendJSON(t, app, "GET", "/api/users/ghost", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, models.CodeNotFound, errorCode(t, envelope))
}

func TestCommentDeletionDisabled(t *testing.T) {
	_, app := newTestServer(t)
	alice := register(t, app, "alice")

	resp, _ := sendJSON(t, app, "POST", "/api/posts/", alice, map[string]string{
		"content": "thread",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, _ = sendJSON(t, app, "POST", "/api/comments/posts/1", alice, map[string]string{
		"content": "permanent remark",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, envelope := sendJSON(t, app, "DELETE", "/api/comments/1", alice, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, models.CodeInvalidOperation, errorCode(t, envelope))
}

func TestInvalidIDParam(t *testing.T) {
	_, app := newTestServer(t)

	resp, envelope := sendJSON(t, app, "GET", "/api/posts/banana", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, models.CodeValidation, errorCode(t, envelope))
}

func TestHealthEndpoints(t *testing.T) {
	_, app := newTestServer(t)

	resp, envelope := sendJSON(t, app, "GET", "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, envelope.Success)

	resp, envelope = sendJSON(t, app, "GET", "/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	data := envelope.Data.(map[string]any)
	assert.Equal(t, "healthy", data["database"])
	assert.Equal(t, "healthy", data["redis"])
}
