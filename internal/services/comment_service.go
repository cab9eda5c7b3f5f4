package services

import (
	"context"

	"socialapp/internal/apperr"
	"socialapp/internal/logger"
	"socialapp/internal/repositories"
)

// CommentService lists comments and toggles reactions.
type CommentService struct {
	commentRepo repositories.CommentRepository
	profileRepo repositories.ProfileRepository
	log         *logger.Logger
}

func NewCommentService(commentRepo repositories.CommentRepository, profileRepo repositories.ProfileRepository, log *logger.Logger) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		profileRepo: profileRepo,
		log:         log.With("service", "CommentService"),
	}
}

// Received lists the comments left on username's profile.
func (s *CommentService) Received(ctx context.Context, username string, page repositories.Page) ([]CommentView, int64, error) {
	target, err := s.profileRepo.Get(ctx, repositories.ProfileByUsername(username))
	if err != nil {
		return nil, 0, fromRepo(err, "user profile")
	}
	comments, total, err := s.commentRepo.ListReceived(ctx, target.ID, page)
	if err != nil {
		return nil, 0, err
	}
	return commentViews(comments), total, nil
}

// Own lists the comments the caller wrote.
func (s *CommentService) Own(ctx context.Context, userID string, page repositories.Page) ([]CommentView, int64, error) {
	author, err := callerProfile(ctx, s.profileRepo, userID)
	if err != nil {
		return nil, 0, err
	}
	comments, total, err := s.commentRepo.ListAuthored(ctx, author.ID, page)
	if err != nil {
		return nil, 0, err
	}
	return commentViews(comments), total, nil
}

// Latest lists the newest comments on the profiles the caller follows.
func (s *CommentService) Latest(ctx context.Context, userID string, page repositories.Page) ([]CommentView, int64, error) {
	viewer, err := callerProfile(ctx, s.profileRepo, userID)
	if err != nil {
		return nil, 0, err
	}
	comments, total, err := s.commentRepo.ListFeed(ctx, viewer.ID, page)
	if err != nil {
		return nil, 0, err
	}
	return commentViews(comments), total, nil
}

// Reactions returns the reaction summary of one comment.
func (s *CommentService) Reactions(ctx context.Context, userID, commentID string) (*ReactionSummary, error) {
	viewer, err := callerProfile(ctx, s.profileRepo, userID)
	if err != nil {
		return nil, err
	}
	c, err := s.commentRepo.Get(ctx, commentID)
	if err != nil {
		return nil, fromRepo(err, "comment")
	}
	summary := summarize(c, viewer.ID)
	summary.ID = ""
	return &summary, nil
}

// BatchReactions returns the summaries of every listed comment that exists.
// It fails only when none of them exist.
func (s *CommentService) BatchReactions(ctx context.Context, userID string, commentIDs []string) ([]ReactionSummary, error) {
	if len(commentIDs) == 0 {
		return nil, apperr.Validation("ids must not be empty")
	}
	viewer, err := callerProfile(ctx, s.profileRepo, userID)
	if err != nil {
		return nil, err
	}
	comments, err := s.commentRepo.GetMany(ctx, commentIDs)
	if err != nil {
		return nil, err
	}
	if len(comments) == 0 {
		return nil, apperr.NotFound("some comments not found")
	}
	out := make([]ReactionSummary, 0, len(comments))
	for i := range comments {
		out = append(out, summarize(&comments[i], viewer.ID))
	}
	return out, nil
}

// Toggle flips the caller's like or dislike on a comment and reports
// whether the reaction is now set.
func (s *CommentService) Toggle(ctx context.Context, userID, commentID string, reaction repositories.Reaction) (bool, error) {
	viewer, err := callerProfile(ctx, s.profileRepo, userID)
	if err != nil {
		return false, err
	}
	set, err := s.commentRepo.ToggleReaction(ctx, commentID, viewer.ID, reaction)
	if err != nil {
		return false, fromRepo(err, "comment")
	}
	return set, nil
}
