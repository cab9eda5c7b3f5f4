package repositories

import (
	"context"

	"socialapp/internal/models"
)

// UserRepository defines the interface for auth record data access.
type UserRepository interface {
	// CreateWithProfile stores the user and its profile atomically.
	CreateWithProfile(ctx context.Context, user *models.User, profile *models.Profile) error
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	SetPassword(ctx context.Context, id string, hash string) error
	TouchLastLogin(ctx context.Context, id string) error
}
