// Package service implements the business rules on top of the repositories.
// Every mutating operation takes the acting user's identity, established by
// the auth middleware, and enforces the ownership invariants here.
package service

import (
	"context"

	"ripple/internal/models"
	"ripple/internal/repository"
)

type UserService struct {
	userRepo repository.UserRepository
}

// UpdateProfileInput carries a profile mutation. Nil fields are left
// untouched; a pointer to the empty string clears the field.
type UpdateProfileInput struct {
	ActorID     uint
	Username    string
	DisplayName *string
	Bio         *string
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) ListUsers(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.userRepo.List(ctx, limit, offset)
}

// GetProfile returns the public profile for a username.
func (s *UserService) GetProfile(ctx context.Context, username string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundError("User", username)
	}
	return user, nil
}

// UpdateProfile mutates the profile named by Username. Only the profile's
// owner may update it.
func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	user, err := s.GetProfile(ctx, in.Username)
	if err != nil {
		return nil, err
	}
	if user.ID != in.ActorID {
		return nil, models.NewForbiddenError("You can only update your own profile")
	}

	const maxBioLen = 500
	const maxDisplayNameLen = 50

	if in.DisplayName != nil {
		if len(*in.DisplayName) > maxDisplayNameLen {
			return nil, models.NewValidationError("Display name too long (max 50 characters)")
		}
		user.DisplayName = *in.DisplayName
	}
	if in.Bio != nil {
		if len(*in.Bio) > maxBioLen {
			return nil, models.NewValidationError("Bio too long (max 500 characters)")
		}
		user.Bio = *in.Bio
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteProfile removes the account named by Username. Only the account's
// owner may delete it.
func (s *UserService) DeleteProfile(ctx context.Context, actorID uint, username string) error {
	user, err := s.GetProfile(ctx, username)
	if err != nil {
		return err
	}
	if user.ID != actorID {
		return models.NewForbiddenError("You can only delete your own profile")
	}
	return s.userRepo.Delete(ctx, user.ID)
}
