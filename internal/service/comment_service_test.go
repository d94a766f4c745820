package service

import (
	"context"
	"testing"

	"ripple/internal/models"
	"ripple/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCommentService(t *testing.T) (*CommentService, *PostService, *models.User, *models.User) {
	t.Helper()
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentSvc := NewCommentService(repository.NewCommentRepository(db), postRepo, userRepo)
	postSvc := NewPostService(postRepo, userRepo)
	return commentSvc, postSvc, alice, bob
}

func TestCreateComment(t *testing.T) {
	comments, posts, alice, bob := newCommentService(t)
	ctx := context.Background()

	post, err := posts.CreatePost(ctx, CreatePostInput{ActorID: alice.ID, Content: "discuss"})
	require.NoError(t, err)

	comment, err := comments.CreateComment(ctx, CreateCommentInput{
		ActorID: bob.ID,
		PostID:  post.ID,
		Content: "nice post",
	})
	require.NoError(t, err)
	assert.Equal(t, "nice post", comment.Content)
	assert.Equal(t, bob.ID, comment.UserID)
	assert.Equal(t, "bob", comment.Username)

	fetched, err := posts.GetPost(ctx, post.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, fetched.CommentsCount)
}

func TestCreateCommentOnMissingPost(t *testing.T) {
	comments, _, alice, _ := newCommentService(t)

	_, err := comments.CreateComment(context.Background(), CreateCommentInput{
		ActorID: alice.ID,
		PostID:  9999,
		Content: "into the void",
	})
	require.Error(t, err)
	assert.Equal(t, models.CodeNotFound, models.AsAppError(err).Code)
}

func TestCreateCommentRejectsBlankContent(t *testing.T) {
	comments, posts, alice, _ := newCommentService(t)
	ctx := context.Background()

	post, err := posts.CreatePost(ctx, CreatePostInput{ActorID: alice.ID, Content: "discuss"})
	require.NoError(t, err)

	_, err = comments.CreateComment(ctx, CreateCommentInput{
		ActorID: alice.ID,
		PostID:  post.ID,
		Content: "  \n ",
	})
	require.Error(t, err)
	assert.Equal(t, models.CodeValidation, models.AsAppError(err).Code)
}

func TestGetCommentsInAppendOrder(t *testing.T) {
	comments, posts, alice, bob := newCommentService(t)
	ctx := context.Background()

	post, err := posts.CreatePost(ctx, CreatePostInput{ActorID: alice.ID, Content: "thread"})
	require.NoError(t, err)

	for _, c := range []struct {
		actor   uint
		content string
	}{
		{bob.ID, "first"},
		{alice.ID, "second"},
		{bob.ID, "third"},
	} {
		_, err := comments.CreateComment(ctx, CreateCommentInput{
			ActorID: c.actor,
			PostID:  post.ID,
			Content: c.content,
		})
		require.NoError(t, err)
	}

	list, err := comments.GetComments(ctx, post.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "first", list[0].Content)
	assert.Equal(t, "second", list[1].Content)
	assert.Equal(t, "third", list[2].Content)
}

func TestDeleteCommentIsAlwaysRejected(t *testing.T) {
	comments, posts, alice, _ := newCommentService(t)
	ctx := context.Background()

	post, err := posts.CreatePost(ctx, CreatePostInput{ActorID: alice.ID, Content: "thread"})
	require.NoError(t, err)
	comment, err := comments.CreateComment(ctx, CreateCommentInput{
		ActorID: alice.ID,
		PostID:  post.ID,
		Content: "permanent",
	})
	require.NoError(t, err)

	// Even the author cannot delete a comment.
	err = comments.DeleteComment(ctx, alice.ID, comment.ID)
	require.Error(t, err)
	assert.Equal(t, models.CodeInvalidOperation, models.AsAppError(err).Code)

	// A missing comment still reports not found.
	err = comments.DeleteComment(ctx, alice.ID, 9999)
	require.Error(t, err)
	assert.Equal(t, models.CodeNotFound, models.AsAppError(err).Code)
}
