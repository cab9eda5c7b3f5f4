package scoring_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"socialapp/internal/apperr"
	"socialapp/internal/models"
	"socialapp/internal/scoring"
)

var required = []uint{1, 2, 3}

func known(ids ...uint) map[uint]bool {
	m := make(map[uint]bool)
	for _, id := range ids {
		m[id] = true
	}
	return m
}

func TestValidate(t *testing.T) {
	k := known(1, 2, 3, 4)

	assert.NoError(t, scoring.Validate(models.CategoryScores{1: 1, 2: 10, 3: 5}, required, k))
	assert.NoError(t, scoring.Validate(models.CategoryScores{1: 1, 2: 10, 3: 5, 4: 7}, required, k))

	err := scoring.Validate(models.CategoryScores{1: 5, 2: 5}, required, k)
	require.Error(t, err)
	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindValidation, e.Kind)
	assert.Contains(t, e.Fields, "3")

	err = scoring.Validate(models.CategoryScores{1: 0, 2: 5, 3: 11}, required, k)
	e, _ = apperr.As(err)
	require.NotNil(t, e)
	assert.Contains(t, e.Fields, "1")
	assert.Contains(t, e.Fields, "3")
	assert.NotContains(t, e.Fields, "2")

	err = scoring.Validate(models.CategoryScores{1: 5, 2: 5, 3: 5, 9: 5}, required, k)
	e, _ = apperr.As(err)
	require.NotNil(t, e)
	assert.Equal(t, "unknown category", e.Fields["9"])
}

func TestAverage_ZeroFillsUntouchedCategories(t *testing.T) {
	categories := []models.Category{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}}
	aggregates := []models.ProfileCategoryScore{{ProfileID: "p", CategoryID: 1, TotalScore: 18, CommentCount: 2}}

	stats := scoring.Stats(categories, aggregates)
	assert.Equal(t, 9.0, stats[1].AvgScore)
	assert.Equal(t, scoring.CategoryStat{}, stats[2])
	assert.Equal(t, 4.5, scoring.Average(stats))
}

func TestAverage_NoCategories(t *testing.T) {
	assert.Equal(t, 0.0, scoring.Average(scoring.Stats(nil, nil)))
}

func TestStats_IgnoresUnknownAggregates(t *testing.T) {
	categories := []models.Category{{ID: 1}}
	aggregates := []models.ProfileCategoryScore{
		{CategoryID: 1, TotalScore: 7, CommentCount: 3},
		{CategoryID: 42, TotalScore: 10, CommentCount: 1},
	}
	stats := scoring.Stats(categories, aggregates)
	assert.Len(t, stats, 1)
	assert.Equal(t, 2.33, stats[1].AvgScore)
}

func TestAverage_IsNotWeighted(t *testing.T) {
	categories := []models.Category{{ID: 1}, {ID: 2}, {ID: 3}}
	aggregates := []models.ProfileCategoryScore{
		{CategoryID: 1, TotalScore: 100, CommentCount: 10}, // 10
		{CategoryID: 2, TotalScore: 2, CommentCount: 1},    // 2
		{CategoryID: 3, TotalScore: 9, CommentCount: 3},    // 3
	}
	assert.Equal(t, 5.0, scoring.Average(scoring.Stats(categories, aggregates)))
}

func TestCommentAverage(t *testing.T) {
	assert.Equal(t, 0.0, scoring.CommentAverage(nil))
	assert.Equal(t, 6.67, scoring.CommentAverage(models.CategoryScores{1: 5, 2: 7, 3: 8}))
}

func TestRound2_HalvesToEven(t *testing.T) {
	assert.Equal(t, 1.12, scoring.Round2(9.0/8.0))
	assert.Equal(t, 0.38, scoring.Round2(0.375))
	assert.Equal(t, 6.67, scoring.Round2(20.0/3.0))

	aggregates := []models.ProfileCategoryScore{{CategoryID: 1, TotalScore: 9, CommentCount: 8}}
	stats := scoring.Stats([]models.Category{{ID: 1}}, aggregates)
	assert.Equal(t, 1.12, stats[1].AvgScore)
}
