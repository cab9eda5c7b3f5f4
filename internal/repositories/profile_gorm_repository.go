package repositories

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"socialapp/internal/models"
)

var profileKeyColumns = map[string]bool{"id": true, "username": true, "email": true, "user_id": true}

// GORMProfileRepository is a GORM implementation of ProfileRepository.
type GORMProfileRepository struct {
	db *gorm.DB
}

// NewGORMProfileRepository creates a new instance of GORMProfileRepository.
func NewGORMProfileRepository(db *gorm.DB) *GORMProfileRepository {
	return &GORMProfileRepository{db: db}
}

func keyQuery(db *gorm.DB, key ProfileKey) (*gorm.DB, error) {
	if !profileKeyColumns[key.Column] {
		return nil, fmt.Errorf("unsupported profile lookup column %q", key.Column)
	}
	return db.Where(clause.Eq{Column: clause.Column{Name: key.Column}, Value: key.Value}), nil
}

// Get retrieves a single profile.
func (r *GORMProfileRepository) Get(ctx context.Context, key ProfileKey) (*models.Profile, error) {
	q, err := keyQuery(r.db.WithContext(ctx), key)
	if err != nil {
		return nil, err
	}
	var profile models.Profile
	if err := q.First(&profile).Error; err != nil {
		return nil, fmt.Errorf("profile with %s %s: %w", key.Column, key.Value, translate(err))
	}
	return &profile, nil
}

// Search returns one page of profiles whose username contains query.
func (r *GORMProfileRepository) Search(ctx context.Context, query string, page Page) ([]models.Profile, int64, error) {
	pattern := "%" + strings.ToLower(query) + "%"
	q := r.db.WithContext(ctx).Model(&models.Profile{}).Where("LOWER(username) LIKE ?", pattern).Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count profiles: %w", err)
	}
	var profiles []models.Profile
	if err := q.Order("created_at, id").Offset(page.Offset()).Limit(page.Size).Find(&profiles).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to search profiles: %w", err)
	}
	return profiles, total, nil
}

// UpdateDetails persists the editable columns of profile.
func (r *GORMProfileRepository) UpdateDetails(ctx context.Context, profile *models.Profile) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(profile).
			Select("username", "email", "phone_number", "first_name", "last_name", "bio").
			Updates(profile)
		if res.Error != nil {
			return fmt.Errorf("failed to update profile %s: %w", profile.ID, translate(res.Error))
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("profile with id %s: %w", profile.ID, ErrNotFound)
		}
		err := tx.Model(&models.User{}).Where("id = ?", profile.UserID).Updates(map[string]interface{}{
			"username":   profile.Username,
			"email":      profile.Email,
			"first_name": profile.FirstName,
			"last_name":  profile.LastName,
		}).Error
		if err != nil {
			return fmt.Errorf("failed to update user %s: %w", profile.UserID, translate(err))
		}
		return nil
	})
}

// UpdateLocked runs fn against a row-locked profile.
func (r *GORMProfileRepository) UpdateLocked(ctx context.Context, key ProfileKey, fn func(*models.Profile) error) (*models.Profile, error) {
	var profile models.Profile
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q, err := keyQuery(tx, key)
		if err != nil {
			return err
		}
		if err := q.Clauses(clause.Locking{Strength: "UPDATE"}).First(&profile).Error; err != nil {
			return fmt.Errorf("profile with %s %s: %w", key.Column, key.Value, translate(err))
		}
		wasActive := profile.IsActive

		if err := fn(&profile); err != nil {
			return err
		}

		err = tx.Model(&profile).
			Select("otp", "otp_expiry", "max_otp_try", "otp_max_out", "is_active").
			Updates(&profile).Error
		if err != nil {
			return fmt.Errorf("failed to save otp state for profile %s: %w", profile.ID, err)
		}
		if profile.IsActive && !wasActive {
			err := tx.Model(&models.User{}).Where("id = ?", profile.UserID).Update("is_active", true).Error
			if err != nil {
				return fmt.Errorf("failed to activate user %s: %w", profile.UserID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// CategoryScores returns the stored aggregates of a profile.
func (r *GORMProfileRepository) CategoryScores(ctx context.Context, profileID string) ([]models.ProfileCategoryScore, error) {
	var scores []models.ProfileCategoryScore
	if err := r.db.WithContext(ctx).Where("profile_id = ?", profileID).Order("category_id").Find(&scores).Error; err != nil {
		return nil, fmt.Errorf("failed to load category scores for profile %s: %w", profileID, err)
	}
	return scores, nil
}

// FollowCounts counts both directions of the follow graph around a profile.
func (r *GORMProfileRepository) FollowCounts(ctx context.Context, profileID string) (int64, int64, error) {
	var followers, following int64
	if err := r.db.WithContext(ctx).Model(&models.Follow{}).Where("followee_id = ?", profileID).Count(&followers).Error; err != nil {
		return 0, 0, fmt.Errorf("failed to count followers: %w", err)
	}
	if err := r.db.WithContext(ctx).Model(&models.Follow{}).Where("follower_id = ?", profileID).Count(&following).Error; err != nil {
		return 0, 0, fmt.Errorf("failed to count following: %w", err)
	}
	return followers, following, nil
}
