package service

import (
	"context"
	"testing"

	"ripple/internal/models"
	"ripple/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFollowService(t *testing.T) (*FollowService, *models.User, *models.User) {
	t.Helper()
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	svc := NewFollowService(repository.NewFollowRepository(db), repository.NewUserRepository(db))
	return svc, alice, bob
}

func TestFollowAndStatus(t *testing.T) {
	svc, alice, bob := newFollowService(t)
	ctx := context.Background()

	require.NoError(t, svc.Follow(ctx, alice.ID, "bob"))

	following, followedBy, err := svc.Status(ctx, alice.ID, "bob")
	require.NoError(t, err)
	assert.True(t, following)
	assert.False(t, followedBy)

	// From bob's side the same edge reads as a follower.
	following, followedBy, err = svc.Status(ctx, bob.ID, "alice")
	require.NoError(t, err)
	assert.False(t, following)
	assert.True(t, followedBy)
}

func TestFollowIsIdempotent(t *testing.T) {
	svc, alice, _ := newFollowService(t)
	ctx := context.Background()

	require.NoError(t, svc.Follow(ctx, alice.ID, "bob"))
	require.NoError(t, svc.Follow(ctx, alice.ID, "bob"))

	followers, err := svc.Followers(ctx, "bob", 10, 0)
	require.NoError(t, err)
	assert.Len(t, followers, 1)
}

func TestFollowSelfIsRejected(t *testing.T) {
	svc, alice, _ := newFollowService(t)

	err := svc.Follow(context.Background(), alice.ID, "alice")
	require.Error(t, err)
	assert.Equal(t, models.CodeInvalidOperation, models.AsAppError(err).Code)
}

func TestFollowUnknownUser(t *testing.T) {
	svc, alice, _ := newFollowService(t)

	err := svc.Follow(context.Background(), alice.ID, "nobody")
	require.Error(t, err)
	assert.Equal(t, models.CodeNotFound, models.AsAppError(err).Code)
}

func TestUnfollow(t *testing.T) {
	svc, alice, _ := newFollowService(t)
	ctx := context.Background()

	require.NoError(t, svc.Follow(ctx, alice.ID, "bob"))
	require.NoError(t, svc.Unfollow(ctx, alice.ID, "bob"))

	following, _, err := svc.Status(ctx, alice.ID, "bob")
	require.NoError(t, err)
	assert.False(t, following)

	// Unfollowing again is a no-op.
	require.NoError(t, svc.Unfollow(ctx, alice.ID, "bob"))
}

func TestFollowerAndFollowingListsAgree(t *testing.T) {
	svc, alice, bob := newFollowService(t)
	ctx := context.Background()

	require.NoError(t, svc.Follow(ctx, alice.ID, "bob"))
	require.NoError(t, svc.Follow(ctx, bob.ID, "alice"))

	aliceFollowing, err := svc.Following(ctx, "alice", 10, 0)
	require.NoError(t, err)
	bobFollowers, err := svc.Followers(ctx, "bob", 10, 0)
	require.NoError(t, err)

	// The edge alice -> bob appears in both views.
	require.Len(t, aliceFollowing, 1)
	require.Len(t, bobFollowers, 1)
	assert.Equal(t, "bob", aliceFollowing[0].Username)
	assert.Equal(t, "alice", bobFollowers[0].Username)
}
