package services

import (
	"context"
	"errors"
	"strings"

	"socialapp/internal/apperr"
	"socialapp/internal/logger"
	"socialapp/internal/models"
	"socialapp/internal/repositories"
)

// ProfileService serves profile lookups and edits.
type ProfileService struct {
	profileRepo repositories.ProfileRepository
	log         *logger.Logger
}

func NewProfileService(profileRepo repositories.ProfileRepository, log *logger.Logger) *ProfileService {
	return &ProfileService{profileRepo: profileRepo, log: log.With("service", "ProfileService")}
}

// ProfileUpdate carries the fields of a partial update. Nil means unchanged.
type ProfileUpdate struct {
	Username    *string
	Email       *string
	PhoneNumber *string
	FirstName   *string
	LastName    *string
	Bio         *string
}

func (s *ProfileService) detail(ctx context.Context, p *models.Profile) (*ProfileDetail, error) {
	followers, following, err := s.profileRepo.FollowCounts(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	return &ProfileDetail{Profile: p, FollowersCount: followers, FollowingCount: following}, nil
}

// Me returns the caller's own profile.
func (s *ProfileService) Me(ctx context.Context, userID string) (*ProfileDetail, error) {
	p, err := callerProfile(ctx, s.profileRepo, userID)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, p)
}

// ProfileID returns the id of the caller's profile.
func (s *ProfileService) ProfileID(ctx context.Context, userID string) (string, error) {
	p, err := callerProfile(ctx, s.profileRepo, userID)
	if err != nil {
		return "", err
	}
	return p.ID, nil
}

// Details returns the profile with the given username.
func (s *ProfileService) Details(ctx context.Context, username string) (*ProfileDetail, error) {
	if username == "" {
		return nil, apperr.Validation("username query parameter is required")
	}
	p, err := s.profileRepo.Get(ctx, repositories.ProfileByUsername(username))
	if err != nil {
		return nil, fromRepo(err, "user")
	}
	return s.detail(ctx, p)
}

// Search lists the profiles whose username contains query.
func (s *ProfileService) Search(ctx context.Context, query string, page repositories.Page) ([]models.Profile, int64, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, 0, apperr.Validation("search query parameter is required")
	}
	return s.profileRepo.Search(ctx, query, page)
}

// Update applies a partial update to the caller's profile.
func (s *ProfileService) Update(ctx context.Context, userID string, in ProfileUpdate) (*models.Profile, error) {
	p, err := callerProfile(ctx, s.profileRepo, userID)
	if err != nil {
		return nil, err
	}
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	set(&p.Username, in.Username)
	set(&p.Email, in.Email)
	set(&p.PhoneNumber, in.PhoneNumber)
	set(&p.FirstName, in.FirstName)
	set(&p.LastName, in.LastName)
	set(&p.Bio, in.Bio)

	blank := map[string]string{}
	for field, value := range map[string]string{"username": p.Username, "email": p.Email, "phone_number": p.PhoneNumber} {
		if value == "" {
			blank[field] = "this field may not be blank"
		}
	}
	if len(blank) > 0 {
		return nil, apperr.ValidationFields("Validation failed", blank)
	}

	if err := s.profileRepo.UpdateDetails(ctx, p); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, apperr.Conflict("username, email or phone number already in use")
		}
		return nil, fromRepo(err, "profile")
	}
	s.log.Info("profile updated", "profile_id", p.ID)
	return p, nil
}
