package services

import (
	"context"
	"strings"
	"unicode/utf8"

	"gorm.io/datatypes"

	"socialapp/internal/apperr"
	"socialapp/internal/logger"
	"socialapp/internal/models"
	"socialapp/internal/repositories"
	"socialapp/internal/scoring"
)

const maxContentLength = 255

// RatingService submits rating comments and computes the roll-ups.
type RatingService struct {
	commentRepo  repositories.CommentRepository
	profileRepo  repositories.ProfileRepository
	categoryRepo repositories.CategoryRepository
	required     []uint
	log          *logger.Logger
}

// NewRatingService creates a RatingService. required lists the category ids
// every rating must score.
func NewRatingService(
	commentRepo repositories.CommentRepository,
	profileRepo repositories.ProfileRepository,
	categoryRepo repositories.CategoryRepository,
	required []uint,
	log *logger.Logger,
) *RatingService {
	return &RatingService{
		commentRepo:  commentRepo,
		profileRepo:  profileRepo,
		categoryRepo: categoryRepo,
		required:     required,
		log:          log.With("service", "RatingService"),
	}
}

// RatingInput is a rating comment submission.
type RatingInput struct {
	TargetUsername string
	Content        string
	Scores         models.CategoryScores
	IsAnonymous    *bool
}

// CommentStats is the per-category breakdown of a profile plus the overall
// average.
type CommentStats struct {
	CommentStats map[uint]scoring.CategoryStat `json:"comment_stats"`
	AverageScore float64                       `json:"average_score"`
}

// Submit validates a rating and stores it together with the aggregate
// increments. Nothing is written when validation fails.
func (s *RatingService) Submit(ctx context.Context, userID string, in RatingInput) (*CommentView, error) {
	author, err := callerProfile(ctx, s.profileRepo, userID)
	if err != nil {
		return nil, err
	}
	if in.TargetUsername == "" {
		return nil, apperr.ValidationFields("invalid comment", map[string]string{"profile_commented_on": "required"})
	}
	target, err := s.profileRepo.Get(ctx, repositories.ProfileByUsername(in.TargetUsername))
	if err != nil {
		return nil, fromRepo(err, "profile")
	}

	content := strings.TrimSpace(in.Content)
	switch {
	case content == "":
		return nil, apperr.ValidationFields("invalid comment", map[string]string{"content": "required"})
	case utf8.RuneCountInString(content) > maxContentLength:
		return nil, apperr.ValidationFields("invalid comment", map[string]string{"content": "must not exceed 255 characters"})
	}

	known, err := s.knownCategories(ctx)
	if err != nil {
		return nil, err
	}
	if err := scoring.Validate(in.Scores, s.required, known); err != nil {
		return nil, err
	}

	anonymous := true
	if in.IsAnonymous != nil {
		anonymous = *in.IsAnonymous
	}
	comment := &models.Comment{
		AuthorID:       author.ID,
		TargetID:       target.ID,
		Content:        content,
		IsAnonymous:    anonymous,
		CategoryScores: datatypes.NewJSONType(in.Scores),
	}
	if err := s.commentRepo.CreateRating(ctx, comment); err != nil {
		return nil, fromRepo(err, "comment")
	}
	s.log.Info("rating submitted", "comment_id", comment.ID, "target_id", target.ID)

	comment.Author = author
	comment.Target = target
	view := NewCommentView(comment)
	return &view, nil
}

// Stats returns the category breakdown and the average score of a profile.
func (s *RatingService) Stats(ctx context.Context, username string) (*CommentStats, error) {
	if username == "" {
		return nil, apperr.Validation("username query parameter is required")
	}
	p, err := s.profileRepo.Get(ctx, repositories.ProfileByUsername(username))
	if err != nil {
		return nil, fromRepo(err, "user")
	}
	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	aggregates, err := s.profileRepo.CategoryScores(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	stats := scoring.Stats(categories, aggregates)
	return &CommentStats{CommentStats: stats, AverageScore: scoring.Average(stats)}, nil
}

func (s *RatingService) knownCategories(ctx context.Context) (map[uint]bool, error) {
	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	known := make(map[uint]bool, len(categories))
	for _, c := range categories {
		known[c.ID] = true
	}
	return known, nil
}
