package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"socialapp/internal/apperr"
	"socialapp/internal/logger"
	"socialapp/internal/models"
	"socialapp/internal/repositories"
	"socialapp/internal/services"
)

var threeCategories = []models.Category{{ID: 1, Name: "Intelligence"}, {ID: 2, Name: "Appearance"}, {ID: 3, Name: "Relationship"}}

func newRatingService(comments *MockCommentRepository, profiles *MockProfileRepository, categories *MockCategoryRepository) *services.RatingService {
	return services.NewRatingService(comments, profiles, categories, []uint{1, 2, 3}, logger.NewNop())
}

func TestRatingService_Submit(t *testing.T) {
	comments := new(MockCommentRepository)
	profiles := new(MockProfileRepository)
	categories := new(MockCategoryRepository)
	service := newRatingService(comments, profiles, categories)
	ctx := context.Background()

	author := &models.Profile{ID: "author", UserID: "u1", Username: "alice", UniqueID: "A"}
	target := &models.Profile{ID: "target", Username: "bob", FirstName: "Bob", LastName: "Stone", UniqueID: "B"}
	profiles.On("Get", ctx, repositories.ProfileByUserID("u1")).Return(author, nil)
	profiles.On("Get", ctx, repositories.ProfileByUsername("bob")).Return(target, nil)
	categories.On("List", ctx).Return(threeCategories, nil)
	comments.On("CreateRating", ctx, mock.AnythingOfType("*models.Comment")).Return(nil).Once()

	visible := false
	view, err := service.Submit(ctx, "u1", services.RatingInput{
		TargetUsername: "bob",
		Content:        "  solid  ",
		Scores:         models.CategoryScores{1: 8, 2: 5, 3: 7},
		IsAnonymous:    &visible,
	})
	require.NoError(t, err)
	assert.Equal(t, "solid", view.Content)
	assert.Equal(t, "alice", view.CommenterUsername)
	assert.Equal(t, "Bob Stone", view.CommentedProfileFullName)
	assert.Equal(t, 6.67, view.AverageScore)

	stored := comments.Calls[0].Arguments.Get(1).(*models.Comment)
	assert.Equal(t, "author", stored.AuthorID)
	assert.Equal(t, "target", stored.TargetID)
	assert.False(t, stored.IsAnonymous)
	comments.AssertExpectations(t)
}

func TestRatingService_Submit_ValidationHasNoSideEffects(t *testing.T) {
	comments := new(MockCommentRepository)
	profiles := new(MockProfileRepository)
	categories := new(MockCategoryRepository)
	service := newRatingService(comments, profiles, categories)
	ctx := context.Background()

	profiles.On("Get", ctx, repositories.ProfileByUserID("u1")).Return(&models.Profile{ID: "author"}, nil)
	profiles.On("Get", ctx, repositories.ProfileByUsername("bob")).Return(&models.Profile{ID: "target"}, nil)
	categories.On("List", ctx).Return(threeCategories, nil)

	cases := map[string]services.RatingInput{
		"missing category": {TargetUsername: "bob", Content: "x", Scores: models.CategoryScores{1: 5, 2: 5}},
		"out of range":     {TargetUsername: "bob", Content: "x", Scores: models.CategoryScores{1: 5, 2: 5, 3: 11}},
		"unknown category": {TargetUsername: "bob", Content: "x", Scores: models.CategoryScores{1: 5, 2: 5, 3: 5, 7: 5}},
		"empty content":    {TargetUsername: "bob", Content: "   ", Scores: models.CategoryScores{1: 5, 2: 5, 3: 5}},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := service.Submit(ctx, "u1", in)
			assert.True(t, apperr.Is(err, apperr.KindValidation))
		})
	}
	comments.AssertNotCalled(t, "CreateRating", mock.Anything, mock.Anything)

	profiles.On("Get", ctx, repositories.ProfileByUsername("ghost")).Return(nil, notFound("profile"))
	_, err := service.Submit(ctx, "u1", services.RatingInput{TargetUsername: "ghost", Content: "x", Scores: models.CategoryScores{1: 1, 2: 1, 3: 1}})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestRatingService_Stats_ZeroFillsCategories(t *testing.T) {
	comments := new(MockCommentRepository)
	profiles := new(MockProfileRepository)
	categories := new(MockCategoryRepository)
	service := newRatingService(comments, profiles, categories)
	ctx := context.Background()

	profiles.On("Get", ctx, repositories.ProfileByUsername("bob")).Return(&models.Profile{ID: "target"}, nil)
	categories.On("List", ctx).Return([]models.Category{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}}, nil)
	// A received 8 and 10, B nothing
	profiles.On("CategoryScores", ctx, "target").Return([]models.ProfileCategoryScore{
		{ProfileID: "target", CategoryID: 1, TotalScore: 18, CommentCount: 2},
	}, nil)

	stats, err := service.Stats(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, 4.5, stats.AverageScore)
	assert.Equal(t, 9.0, stats.CommentStats[1].AvgScore)
	assert.Equal(t, 0, stats.CommentStats[2].Count)

	_, err = service.Stats(ctx, "")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}
