package repositories

import (
	"context"

	"socialapp/internal/models"
)

// ProfileKey names the unique column used to find a profile.
type ProfileKey struct {
	Column string
	Value  string
}

func ProfileByID(id string) ProfileKey { return ProfileKey{Column: "id", Value: id} }
func ProfileByUsername(username string) ProfileKey { return ProfileKey{Column: "username", Value: username} }
func ProfileByEmail(email string) ProfileKey { return ProfileKey{Column: "email", Value: email} }
func ProfileByUserID(userID string) ProfileKey { return ProfileKey{Column: "user_id", Value: userID} }

// ProfileRepository defines the interface for profile data access.
type ProfileRepository interface {
	Get(ctx context.Context, key ProfileKey) (*models.Profile, error)
	// Search matches usernames containing query, case-insensitively.
	Search(ctx context.Context, query string, page Page) ([]models.Profile, int64, error)
	// UpdateDetails writes the editable profile columns and mirrors the shared
	// ones onto the user record.
	UpdateDetails(ctx context.Context, profile *models.Profile) error
	// UpdateLocked loads the profile under a row lock, applies fn and persists
	// the OTP and activation columns, all in one transaction. When fn returns
	// an error nothing is written.
	UpdateLocked(ctx context.Context, key ProfileKey, fn func(*models.Profile) error) (*models.Profile, error)
	CategoryScores(ctx context.Context, profileID string) ([]models.ProfileCategoryScore, error)
	FollowCounts(ctx context.Context, profileID string) (followers int64, following int64, err error)
}
