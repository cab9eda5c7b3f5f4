package services

import (
	"context"

	"socialapp/internal/apperr"
	"socialapp/internal/logger"
	"socialapp/internal/models"
	"socialapp/internal/repositories"
)

// FollowService manages the follow graph.
type FollowService struct {
	followRepo  repositories.FollowRepository
	profileRepo repositories.ProfileRepository
	log         *logger.Logger
}

func NewFollowService(followRepo repositories.FollowRepository, profileRepo repositories.ProfileRepository, log *logger.Logger) *FollowService {
	return &FollowService{
		followRepo:  followRepo,
		profileRepo: profileRepo,
		log:         log.With("service", "FollowService"),
	}
}

// Toggle follows username when the caller does not follow it yet and
// unfollows it otherwise. Following yourself is a conflict.
func (s *FollowService) Toggle(ctx context.Context, userID, username string) (bool, error) {
	target, err := s.profileRepo.Get(ctx, repositories.ProfileByUsername(username))
	if err != nil {
		return false, fromRepo(err, "user")
	}
	caller, err := callerProfile(ctx, s.profileRepo, userID)
	if err != nil {
		return false, err
	}
	if caller.ID == target.ID {
		return false, apperr.Conflict("you cannot follow yourself")
	}

	following, err := s.followRepo.Toggle(ctx, caller.ID, target.ID)
	if err != nil {
		return false, err
	}
	s.log.Debug("follow toggled", "follower_id", caller.ID, "followee_id", target.ID, "following", following)
	return following, nil
}

// Followers lists who follows username. Only the owner may look.
func (s *FollowService) Followers(ctx context.Context, userID, username string, page repositories.Page) ([]models.Profile, int64, error) {
	owner, err := s.ownProfile(ctx, userID, username, "you can only view your own followers")
	if err != nil {
		return nil, 0, err
	}
	return s.followRepo.Followers(ctx, owner.ID, page)
}

// Following lists who username follows. Only the owner may look.
func (s *FollowService) Following(ctx context.Context, userID, username string, page repositories.Page) ([]models.Profile, int64, error) {
	owner, err := s.ownProfile(ctx, userID, username, "you can only view your own followings")
	if err != nil {
		return nil, 0, err
	}
	return s.followRepo.Following(ctx, owner.ID, page)
}

func (s *FollowService) ownProfile(ctx context.Context, userID, username, denied string) (*models.Profile, error) {
	if username == "" {
		return nil, apperr.Validation("username query parameter is required")
	}
	caller, err := callerProfile(ctx, s.profileRepo, userID)
	if err != nil {
		return nil, err
	}
	if caller.Username != username {
		return nil, apperr.Forbidden("%s", denied)
	}
	return caller, nil
}
