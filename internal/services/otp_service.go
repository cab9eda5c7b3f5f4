package services

import (
	"context"

	"socialapp/internal/apperr"
	"socialapp/internal/logger"
	"socialapp/internal/models"
	"socialapp/internal/notify"
	"socialapp/internal/otp"
	"socialapp/internal/repositories"
)

// OTPService verifies and regenerates activation codes.
type OTPService struct {
	profileRepo repositories.ProfileRepository
	otp         *otp.Manager
	notifier    notify.Notifier
	log         *logger.Logger
}

func NewOTPService(profileRepo repositories.ProfileRepository, otpManager *otp.Manager, notifier notify.Notifier, log *logger.Logger) *OTPService {
	return &OTPService{
		profileRepo: profileRepo,
		otp:         otpManager,
		notifier:    notifier,
		log:         log.With("service", "OTPService"),
	}
}

// Verify activates the profile and its user when code matches.
func (s *OTPService) Verify(ctx context.Context, profileID, code string) error {
	_, err := s.profileRepo.UpdateLocked(ctx, repositories.ProfileByID(profileID), func(p *models.Profile) error {
		if !s.otp.Verify(p, code) {
			return apperr.Validation("verification failed, the account is already active or the code is wrong")
		}
		return nil
	})
	if err != nil {
		return fromRepo(err, "profile")
	}
	s.log.Info("profile verified", "profile_id", profileID)
	return nil
}

// Regenerate issues a fresh code, spending one regeneration.
func (s *OTPService) Regenerate(ctx context.Context, profileID string) error {
	var code string
	profile, err := s.profileRepo.UpdateLocked(ctx, repositories.ProfileByID(profileID), func(p *models.Profile) error {
		var err error
		code, _, err = s.otp.Regenerate(p)
		return err
	})
	if err != nil {
		return fromRepo(err, "profile")
	}

	n := notify.Notification{Kind: notify.KindActivation, Email: profile.Email, Phone: profile.PhoneNumber, Code: code}
	if err := s.notifier.Notify(ctx, n); err != nil {
		s.log.Error("failed to hand off notification", "profile_id", profileID, "error", err)
	}
	return nil
}
