package service

import (
	"context"

	"ripple/internal/models"
	"ripple/internal/repository"
)

// FeedService assembles a user's home feed: the posts of everyone they
// follow, newest first. No ranking is applied; it is a single indexed query
// by the caller's following set.
type FeedService struct {
	postRepo   repository.PostRepository
	followRepo repository.FollowRepository
}

// NewFeedService returns a new FeedService.
func NewFeedService(postRepo repository.PostRepository, followRepo repository.FollowRepository) *FeedService {
	return &FeedService{postRepo: postRepo, followRepo: followRepo}
}

// GetFeed returns the caller's feed page. A user who follows nobody gets an
// empty feed, not an error.
func (s *FeedService) GetFeed(ctx context.Context, actorID uint, limit, offset int) ([]*models.Post, error) {
	followingIDs, err := s.followRepo.FollowingIDs(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if len(followingIDs) == 0 {
		return []*models.Post{}, nil
	}
	return s.postRepo.ListByUserIDs(ctx, followingIDs, limit, offset, actorID)
}
