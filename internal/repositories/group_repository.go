package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"socialapp/internal/models"
)

// GroupRepository manages permission groups.
type GroupRepository interface {
	// EnsureGroup creates the group and permissions when missing, attaches
	// the permissions and marks every member as staff. Safe to repeat.
	EnsureGroup(ctx context.Context, name string, permissions []models.Permission) (*models.Group, error)
}

// GORMGroupRepository is a GORM implementation of GroupRepository.
type GORMGroupRepository struct {
	db *gorm.DB
}

// NewGORMGroupRepository creates a new instance of GORMGroupRepository.
func NewGORMGroupRepository(db *gorm.DB) *GORMGroupRepository {
	return &GORMGroupRepository{db: db}
}

// EnsureGroup provisions a group in one transaction.
func (r *GORMGroupRepository) EnsureGroup(ctx context.Context, name string, permissions []models.Permission) (*models.Group, error) {
	var group models.Group
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(models.Group{Name: name}).FirstOrCreate(&group).Error; err != nil {
			return fmt.Errorf("failed to create group %s: %w", name, err)
		}

		perms := make([]models.Permission, 0, len(permissions))
		for _, p := range permissions {
			perm := models.Permission{}
			if err := tx.Where(models.Permission{Codename: p.Codename}).Attrs(models.Permission{Name: p.Name}).FirstOrCreate(&perm).Error; err != nil {
				return fmt.Errorf("failed to create permission %s: %w", p.Codename, err)
			}
			perms = append(perms, perm)
		}
		if len(perms) > 0 {
			// join rows that already exist are skipped
			if err := tx.Model(&group).Association("Permissions").Append(perms); err != nil {
				return fmt.Errorf("failed to attach permissions to %s: %w", name, err)
			}
		}

		members := tx.Table("user_groups").Select("user_id").Where("group_id = ?", group.ID)
		if err := tx.Model(&models.User{}).Where("id IN (?)", members).Update("is_staff", true).Error; err != nil {
			return fmt.Errorf("failed to mark members of %s as staff: %w", name, err)
		}
		return tx.Preload("Permissions").First(&group, group.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return &group, nil
}
