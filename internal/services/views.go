package services

import (
	"context"

	"socialapp/internal/models"
	"socialapp/internal/repositories"
	"socialapp/internal/scoring"
)

const commentTimeLayout = "2006-01-02 15:04:05"

// ProfileDetail is a profile together with its follow counts.
type ProfileDetail struct {
	*models.Profile
	FollowersCount int64 `json:"followers_count"`
	FollowingCount int64 `json:"following_count"`
}

// CommentView is the public shape of a rating comment. The author is left
// out of anonymous comments.
type CommentView struct {
	ID                       string                `json:"id"`
	CommenterUsername        string                `json:"commenter_username,omitempty"`
	CommenterUniqueID        string                `json:"user_unique_id,omitempty"`
	Content                  string                `json:"content"`
	Likes                    []string              `json:"likes"`
	Dislikes                 []string              `json:"dislikes"`
	CreatedAt                string                `json:"created_at"`
	IsAnonymous              bool                  `json:"is_anonymous"`
	CommentedProfileFullName string                `json:"commented_profile_full_name"`
	CommentedProfileUsername string                `json:"commented_profile_username"`
	CommentedProfileUniqueID string                `json:"commented_profile_unique_id"`
	CategoryScores           models.CategoryScores `json:"category_scores"`
	AverageScore             float64               `json:"average_score"`
}

// NewCommentView flattens a comment loaded with its relations.
func NewCommentView(c *models.Comment) CommentView {
	scores := c.Scores()
	v := CommentView{
		ID:             c.ID,
		Content:        c.Content,
		Likes:          profileIDs(c.Likes),
		Dislikes:       profileIDs(c.Dislikes),
		CreatedAt:      c.CreatedAt.UTC().Format(commentTimeLayout),
		IsAnonymous:    c.IsAnonymous,
		CategoryScores: scores,
		AverageScore:   scoring.CommentAverage(scores),
	}
	if c.Author != nil && !c.IsAnonymous {
		v.CommenterUsername = c.Author.Username
		v.CommenterUniqueID = c.Author.UniqueID
	}
	if c.Target != nil {
		v.CommentedProfileFullName = c.Target.FullName()
		v.CommentedProfileUsername = c.Target.Username
		v.CommentedProfileUniqueID = c.Target.UniqueID
	}
	return v
}

func commentViews(comments []models.Comment) []CommentView {
	out := make([]CommentView, 0, len(comments))
	for i := range comments {
		out = append(out, NewCommentView(&comments[i]))
	}
	return out
}

func profileIDs(profiles []models.Profile) []string {
	ids := make([]string, 0, len(profiles))
	for _, p := range profiles {
		ids = append(ids, p.ID)
	}
	return ids
}

// ReactionUser identifies a profile in a reaction list.
type ReactionUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// UserAction is the caller's own reaction to a comment.
type UserAction struct {
	HasLiked    bool `json:"has_liked"`
	HasDisliked bool `json:"has_disliked"`
}

// ReactionSummary lists who liked and disliked a comment.
type ReactionSummary struct {
	ID         string         `json:"id,omitempty"`
	Likes      []ReactionUser `json:"likes"`
	Dislikes   []ReactionUser `json:"dislikes"`
	UserAction UserAction     `json:"user_action"`
}

func summarize(c *models.Comment, viewerID string) ReactionSummary {
	s := ReactionSummary{
		ID:       c.ID,
		Likes:    make([]ReactionUser, 0, len(c.Likes)),
		Dislikes: make([]ReactionUser, 0, len(c.Dislikes)),
	}
	for _, p := range c.Likes {
		s.Likes = append(s.Likes, ReactionUser{ID: p.ID, Username: p.Username})
		if p.ID == viewerID {
			s.UserAction.HasLiked = true
		}
	}
	for _, p := range c.Dislikes {
		s.Dislikes = append(s.Dislikes, ReactionUser{ID: p.ID, Username: p.Username})
		if p.ID == viewerID {
			s.UserAction.HasDisliked = true
		}
	}
	return s
}

// callerProfile loads the profile owned by the authenticated user.
func callerProfile(ctx context.Context, profiles repositories.ProfileRepository, userID string) (*models.Profile, error) {
	p, err := profiles.Get(ctx, repositories.ProfileByUserID(userID))
	if err != nil {
		return nil, fromRepo(err, "profile")
	}
	return p, nil
}
