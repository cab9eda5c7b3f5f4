package repositories

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"socialapp/internal/models"
)

// GORMCommentRepository is a GORM implementation of CommentRepository.
type GORMCommentRepository struct {
	db *gorm.DB
}

// NewGORMCommentRepository creates a new instance of GORMCommentRepository.
func NewGORMCommentRepository(db *gorm.DB) *GORMCommentRepository {
	return &GORMCommentRepository{db: db}
}

func withRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Author").
		Preload("Target").
		Preload("Likes", func(db *gorm.DB) *gorm.DB { return db.Select("id", "username") }).
		Preload("Dislikes", func(db *gorm.DB) *gorm.DB { return db.Select("id", "username") })
}

// CreateRating stores the comment and increments the aggregates with an
// upsert, so concurrent ratings of the same profile never lose an update.
func (r *GORMCommentRepository) CreateRating(ctx context.Context, comment *models.Comment) error {
	if comment.ID == "" {
		comment.ID = uuid.New().String()
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		scores := comment.Scores()
		ids := make([]uint, 0, len(scores))
		for id := range scores {
			ids = append(ids, id)
		}
		// a stable order keeps concurrent ratings from deadlocking on row locks
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

		for _, categoryID := range ids {
			score := scores[categoryID]
			row := models.ProfileCategoryScore{
				ProfileID:    comment.TargetID,
				CategoryID:   categoryID,
				TotalScore:   score,
				CommentCount: 1,
			}
			err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "profile_id"}, {Name: "category_id"}},
				DoUpdates: clause.Assignments(map[string]interface{}{
					"total_score":   gorm.Expr("profile_category_scores.total_score + excluded.total_score"),
					"comment_count": gorm.Expr("profile_category_scores.comment_count + 1"),
				}),
			}).Create(&row).Error
			if err != nil {
				return fmt.Errorf("failed to update score of category %d: %w", categoryID, err)
			}
		}
		if err := tx.Omit(clause.Associations).Create(comment).Error; err != nil {
			return fmt.Errorf("failed to create comment: %w", err)
		}
		return nil
	})
}

// Get retrieves a comment by its ID.
func (r *GORMCommentRepository) Get(ctx context.Context, id string) (*models.Comment, error) {
	var comment models.Comment
	if err := withRelations(r.db.WithContext(ctx)).First(&comment, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("comment with ID %s: %w", id, translate(err))
	}
	return &comment, nil
}

// GetMany retrieves the comments whose ID is in ids. Unknown ids are skipped.
func (r *GORMCommentRepository) GetMany(ctx context.Context, ids []string) ([]models.Comment, error) {
	var comments []models.Comment
	if err := withRelations(r.db.WithContext(ctx)).Where("id IN ?", ids).Order("created_at DESC").Find(&comments).Error; err != nil {
		return nil, fmt.Errorf("failed to load comments: %w", err)
	}
	return comments, nil
}

func (r *GORMCommentRepository) list(ctx context.Context, scope func(*gorm.DB) *gorm.DB, page Page) ([]models.Comment, int64, error) {
	var total int64
	if err := scope(r.db.WithContext(ctx).Model(&models.Comment{})).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count comments: %w", err)
	}
	var comments []models.Comment
	err := withRelations(scope(r.db.WithContext(ctx))).
		Order("created_at DESC").
		Offset(page.Offset()).
		Limit(page.Size).
		Find(&comments).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, total, nil
}

// ListReceived lists comments left on targetID, newest first.
func (r *GORMCommentRepository) ListReceived(ctx context.Context, targetID string, page Page) ([]models.Comment, int64, error) {
	return r.list(ctx, func(db *gorm.DB) *gorm.DB { return db.Where("target_id = ?", targetID) }, page)
}

// ListAuthored lists comments written by authorID, newest first.
func (r *GORMCommentRepository) ListAuthored(ctx context.Context, authorID string, page Page) ([]models.Comment, int64, error) {
	return r.list(ctx, func(db *gorm.DB) *gorm.DB { return db.Where("author_id = ?", authorID) }, page)
}

// ListFeed lists comments on every profile followerID follows, newest first.
func (r *GORMCommentRepository) ListFeed(ctx context.Context, followerID string, page Page) ([]models.Comment, int64, error) {
	return r.list(ctx, func(db *gorm.DB) *gorm.DB {
		followees := r.db.Model(&models.Follow{}).Select("followee_id").Where("follower_id = ?", followerID)
		return db.Where("target_id IN (?)", followees)
	}, page)
}

// ToggleReaction flips a like or dislike inside one transaction.
func (r *GORMCommentRepository) ToggleReaction(ctx context.Context, commentID, profileID string, reaction Reaction) (bool, error) {
	var own, opposite string
	switch reaction {
	case ReactionLike:
		own, opposite = "comment_likes", "comment_dislikes"
	case ReactionDislike:
		own, opposite = "comment_dislikes", "comment_likes"
	default:
		return false, fmt.Errorf("unknown reaction %q", reaction)
	}

	var set bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var comment models.Comment
		if err := tx.Select("id").Clauses(clause.Locking{Strength: "UPDATE"}).First(&comment, "id = ?", commentID).Error; err != nil {
			return fmt.Errorf("comment with ID %s: %w", commentID, translate(err))
		}
		edge := map[string]interface{}{"comment_id": commentID, "profile_id": profileID}

		if err := tx.Exec("DELETE FROM "+opposite+" WHERE comment_id = ? AND profile_id = ?", commentID, profileID).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", opposite, err)
		}

		var count int64
		if err := tx.Table(own).Where(edge).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to read %s: %w", own, err)
		}
		if count > 0 {
			if err := tx.Exec("DELETE FROM "+own+" WHERE comment_id = ? AND profile_id = ?", commentID, profileID).Error; err != nil {
				return fmt.Errorf("failed to remove %s: %w", reaction, err)
			}
			set = false
			return nil
		}
		if err := tx.Exec("INSERT INTO "+own+" (comment_id, profile_id) VALUES (?, ?)", commentID, profileID).Error; err != nil {
			return fmt.Errorf("failed to add %s: %w", reaction, err)
		}
		set = true
		return nil
	})
	return set, err
}
