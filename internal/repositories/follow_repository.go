package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"socialapp/internal/models"
)

// FollowRepository defines the interface for the follow graph.
type FollowRepository interface {
	// Toggle adds the edge follower->followee when absent and removes it when
	// present. It reports whether the edge exists afterwards.
	Toggle(ctx context.Context, followerID, followeeID string) (bool, error)
	Exists(ctx context.Context, followerID, followeeID string) (bool, error)
	Followers(ctx context.Context, profileID string, page Page) ([]models.Profile, int64, error)
	Following(ctx context.Context, profileID string, page Page) ([]models.Profile, int64, error)
}

// GORMFollowRepository is a GORM implementation of FollowRepository.
type GORMFollowRepository struct {
	db *gorm.DB
}

// NewGORMFollowRepository creates a new instance of GORMFollowRepository.
func NewGORMFollowRepository(db *gorm.DB) *GORMFollowRepository {
	return &GORMFollowRepository{db: db}
}

// Toggle flips the edge inside one transaction.
func (r *GORMFollowRepository) Toggle(ctx context.Context, followerID, followeeID string) (bool, error) {
	var following bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("follower_id = ? AND followee_id = ?", followerID, followeeID).Delete(&models.Follow{})
		if res.Error != nil {
			return fmt.Errorf("failed to unfollow: %w", res.Error)
		}
		if res.RowsAffected > 0 {
			following = false
			return nil
		}
		if err := tx.Omit("Follower", "Followee").Create(&models.Follow{FollowerID: followerID, FolloweeID: followeeID}).Error; err != nil {
			return fmt.Errorf("failed to follow: %w", translate(err))
		}
		following = true
		return nil
	})
	return following, err
}

// Exists reports whether followerID follows followeeID.
func (r *GORMFollowRepository) Exists(ctx context.Context, followerID, followeeID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to read follow edge: %w", err)
	}
	return count > 0, nil
}

// Followers lists the profiles following profileID.
func (r *GORMFollowRepository) Followers(ctx context.Context, profileID string, page Page) ([]models.Profile, int64, error) {
	return r.side(ctx, "follows.followee_id = ?", "follows.follower_id", profileID, page)
}

// Following lists the profiles profileID follows.
func (r *GORMFollowRepository) Following(ctx context.Context, profileID string, page Page) ([]models.Profile, int64, error) {
	return r.side(ctx, "follows.follower_id = ?", "follows.followee_id", profileID, page)
}

func (r *GORMFollowRepository) side(ctx context.Context, where, joinColumn, profileID string, page Page) ([]models.Profile, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Profile{}).
		Joins("JOIN follows ON "+joinColumn+" = profiles.id").
		Where(where, profileID).
		Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count follow edges: %w", err)
	}
	var profiles []models.Profile
	if err := q.Order("follows.created_at, profiles.id").Offset(page.Offset()).Limit(page.Size).Find(&profiles).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list follow edges: %w", err)
	}
	return profiles, total, nil
}
