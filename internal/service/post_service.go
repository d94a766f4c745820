package service

import (
	"context"

	"ripple/internal/models"
	"ripple/internal/repository"
	"ripple/internal/validation"
)

type PostService struct {
	postRepo repository.PostRepository
	userRepo repository.UserRepository
}

type CreatePostInput struct {
	ActorID uint
	Content string
}

type UpdatePostInput struct {
	ActorID uint
	PostID  uint
	Content string
}

func NewPostService(postRepo repository.PostRepository, userRepo repository.UserRepository) *PostService {
	return &PostService{postRepo: postRepo, userRepo: userRepo}
}

// CreatePost stores a new post for the acting user, denormalizing the
// author's username onto the record.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if err := validation.ValidateContent(in.Content, models.MaxContentLen); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	author, err := s.userRepo.GetByID(ctx, in.ActorID)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		Content:  in.Content,
		UserID:   author.ID,
		Username: author.Username,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	return s.postRepo.GetByID(ctx, post.ID, in.ActorID)
}

func (s *PostService) GetPost(ctx context.Context, id uint, currentUserID uint) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, id, currentUserID)
}

func (s *PostService) ListPosts(ctx context.Context, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	return s.postRepo.List(ctx, limit, offset, currentUserID)
}

// GetUserPosts returns posts authored by the named user, newest first.
func (s *PostService) GetUserPosts(ctx context.Context, username string, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundError("User", username)
	}
	return s.postRepo.GetByUserID(ctx, user.ID, limit, offset, currentUserID)
}

// UpdatePost replaces a post's content. Only the post's author may update it.
func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	if err := validation.ValidateContent(in.Content, models.MaxContentLen); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	post, err := s.postRepo.GetByID(ctx, in.PostID, in.ActorID)
	if err != nil {
		return nil, err
	}
	if post.UserID != in.ActorID {
		return nil, models.NewForbiddenError("You can only update your own posts")
	}

	post.Content = in.Content
	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// DeletePost removes a post. Only the post's author may delete it.
func (s *PostService) DeletePost(ctx context.Context, actorID, postID uint) error {
	post, err := s.postRepo.GetByID(ctx, postID, actorID)
	if err != nil {
		return err
	}
	if post.UserID != actorID {
		return models.NewForbiddenError("You can only delete your own posts")
	}
	return s.postRepo.Delete(ctx, postID)
}

// LikePost adds the acting user to the post's likes set. Liking an already
// liked post is a no-op.
func (s *PostService) LikePost(ctx context.Context, actorID, postID uint) (*models.Post, error) {
	if _, err := s.postRepo.GetByID(ctx, postID, actorID); err != nil {
		return nil, err
	}
	if err := s.postRepo.Like(ctx, actorID, postID); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, postID, actorID)
}

// UnlikePost removes the acting user from the post's likes set.
func (s *PostService) UnlikePost(ctx context.Context, actorID, postID uint) (*models.Post, error) {
	if _, err := s.postRepo.GetByID(ctx, postID, actorID); err != nil {
		return nil, err
	}
	if err := s.postRepo.Unlike(ctx, actorID, postID); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, postID, actorID)
}

// LikingUsers returns the users who like a post.
func (s *PostService) LikingUsers(ctx context.Context, postID uint) ([]models.User, error) {
	if _, err := s.postRepo.GetByID(ctx, postID, 0); err != nil {
		return nil, err
	}
	ids, err := s.postRepo.LikingUserIDs(ctx, postID)
	if err != nil {
		return nil, err
	}

	users := make([]models.User, 0, len(ids))
	for _, id := range ids {
		user, err := s.userRepo.GetByID(ctx, id)
		if err != nil {
			// Liker account deleted since; skip rather than fail the read.
			continue
		}
		users = append(users, *user)
	}
	return users, nil
}
