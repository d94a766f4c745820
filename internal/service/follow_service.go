package service

import (
	"context"

	"ripple/internal/models"
	"ripple/internal/repository"
)

// FollowService provides follow-graph business logic.
type FollowService struct {
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
}

// NewFollowService returns a new FollowService.
func NewFollowService(followRepo repository.FollowRepository, userRepo repository.UserRepository) *FollowService {
	return &FollowService{followRepo: followRepo, userRepo: userRepo}
}

// resolveTarget looks up the followee by username and rejects self-follows.
func (s *FollowService) resolveTarget(ctx context.Context, actorID uint, targetUsername string) (*models.User, error) {
	target, err := s.userRepo.GetByUsername(ctx, targetUsername)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, models.NewNotFoundError("User", targetUsername)
	}
	if target.ID == actorID {
		return nil, models.NewInvalidOperationError("You cannot follow yourself")
	}
	return target, nil
}

// Follow makes the actor follow the named user. Repeating the operation
// leaves the graph unchanged.
func (s *FollowService) Follow(ctx context.Context, actorID uint, targetUsername string) error {
	target, err := s.resolveTarget(ctx, actorID, targetUsername)
	if err != nil {
		return err
	}
	return s.followRepo.Follow(ctx, actorID, target.ID)
}

// Unfollow removes the actor's follow edge to the named user. Unfollowing a
// user who was never followed is a no-op.
func (s *FollowService) Unfollow(ctx context.Context, actorID uint, targetUsername string) error {
	target, err := s.resolveTarget(ctx, actorID, targetUsername)
	if err != nil {
		return err
	}
	return s.followRepo.Unfollow(ctx, actorID, target.ID)
}

// Status reports whether the actor follows the named user and vice versa.
func (s *FollowService) Status(ctx context.Context, actorID uint, targetUsername string) (following, followedBy bool, err error) {
	target, err := s.userRepo.GetByUsername(ctx, targetUsername)
	if err != nil {
		return false, false, err
	}
	if target == nil {
		return false, false, models.NewNotFoundError("User", targetUsername)
	}

	following, err = s.followRepo.IsFollowing(ctx, actorID, target.ID)
	if err != nil {
		return false, false, err
	}
	followedBy, err = s.followRepo.IsFollowing(ctx, target.ID, actorID)
	if err != nil {
		return false, false, err
	}
	return following, followedBy, nil
}

// Followers returns the users following the named user.
func (s *FollowService) Followers(ctx context.Context, username string, limit, offset int) ([]models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundError("User", username)
	}
	return s.followRepo.Followers(ctx, user.ID, limit, offset)
}

// Following returns the users the named user follows.
func (s *FollowService) Following(ctx context.Context, username string, limit, offset int) ([]models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundError("User", username)
	}
	return s.followRepo.Following(ctx, user.ID, limit, offset)
}
