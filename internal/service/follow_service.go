package service

import (
	"context"

	"bloggr/internal/models"
	"bloggr/internal/repository"
)

// FollowState is the caller's relation to a user after a follow or unfollow.
type FollowState struct {
	Following     bool  `json:"following"`
	FollowerCount int64 `json:"follower_count"`
}

type FollowService struct {
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
}

func NewFollowService(followRepo repository.FollowRepository, userRepo repository.UserRepository) *FollowService {
	return &FollowService{followRepo: followRepo, userRepo: userRepo}
}

// Follow adds the caller as a follower of the named user. Following someone
// already followed is a no-op, not an error.
func (s *FollowService) Follow(ctx context.Context, ident models.Identity, username string) (*FollowState, error) {
	return s.setFollow(ctx, ident, username, true)
}

// Unfollow removes the caller from the named user's followers, idempotently.
func (s *FollowService) Unfollow(ctx context.Context, ident models.Identity, username string) (*FollowState, error) {
	return s.setFollow(ctx, ident, username, false)
}

func (s *FollowService) setFollow(ctx context.Context, ident models.Identity, username string, follow bool) (*FollowState, error) {
	if !ident.IsAuthenticated() {
		return nil, models.NewAuthError(models.CodeAuthMissing, "Authentication required")
	}

	target, err := s.userRepo.GetByUsername(ctx, username, ident.UserID)
	if err != nil {
		return nil, err
	}
	if target.ID == ident.UserID {
		return nil, models.NewForbiddenError("You cannot follow yourself")
	}

	_, count, err := s.followRepo.SetFollowing(ctx, ident.UserID, target.ID, follow)
	if err != nil {
		return nil, err
	}
	return &FollowState{Following: follow, FollowerCount: count}, nil
}

func (s *FollowService) Followers(ctx context.Context, username string, limit, offset int) ([]models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username, 0)
	if err != nil {
		return nil, err
	}
	return s.followRepo.Followers(ctx, user.ID, limit, offset)
}

func (s *FollowService) Following(ctx context.Context, username string, limit, offset int) ([]models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username, 0)
	if err != nil {
		return nil, err
	}
	return s.followRepo.Following(ctx, user.ID, limit, offset)
}
