package repositories

import (
	"context"

	"socialapp/internal/models"
)

// Reaction is one of the two mutually exclusive reactions on a comment.
type Reaction string

const (
	ReactionLike    Reaction = "like"
	ReactionDislike Reaction = "dislike"
)

// CommentRepository defines the interface for comment data access.
type CommentRepository interface {
	// CreateRating inserts the comment and adds its scores to the target
	// profile's aggregates in a single transaction.
	CreateRating(ctx context.Context, comment *models.Comment) error
	// Get loads a comment with its author, target and reaction sets.
	Get(ctx context.Context, id string) (*models.Comment, error)
	GetMany(ctx context.Context, ids []string) ([]models.Comment, error)
	ListReceived(ctx context.Context, targetID string, page Page) ([]models.Comment, int64, error)
	ListAuthored(ctx context.Context, authorID string, page Page) ([]models.Comment, int64, error)
	// ListFeed returns comments received by the profiles followerID follows.
	ListFeed(ctx context.Context, followerID string, page Page) ([]models.Comment, int64, error)
	// ToggleReaction flips reaction for profileID on the comment and removes
	// the opposite reaction. It reports whether the reaction is now set.
	ToggleReaction(ctx context.Context, commentID, profileID string, reaction Reaction) (bool, error)
}
