// Package scoring holds the rating rules: score validation and the
// category roll-ups shown on a profile.
package scoring

import (
	"fmt"
	"math"
	"sort"

	"socialapp/internal/apperr"
	"socialapp/internal/models"
)

const (
	MinScore = 1
	MaxScore = 10
)

// CategoryStat is the roll-up of one category on one profile.
type CategoryStat struct {
	Score    int     `json:"score"`
	Count    int     `json:"count"`
	AvgScore float64 `json:"avg_score"`
}

// Validate checks that scores covers every required category, names only
// known categories and keeps every value within [MinScore, MaxScore].
func Validate(scores models.CategoryScores, required []uint, known map[uint]bool) error {
	fields := make(map[string]string)
	for _, id := range required {
		if _, ok := scores[id]; !ok {
			fields[fmt.Sprint(id)] = "a score is required for this category"
		}
	}
	for id, score := range scores {
		key := fmt.Sprint(id)
		if known != nil && !known[id] {
			fields[key] = "unknown category"
			continue
		}
		if score < MinScore || score > MaxScore {
			fields[key] = fmt.Sprintf("score must be between %d and %d", MinScore, MaxScore)
		}
	}
	if len(fields) > 0 {
		return apperr.ValidationFields("invalid category scores", fields)
	}
	return nil
}

// Stats builds a stat for every category, zero-filling the ones without
// any aggregate row.
func Stats(categories []models.Category, aggregates []models.ProfileCategoryScore) map[uint]CategoryStat {
	stats := make(map[uint]CategoryStat, len(categories))
	for _, c := range categories {
		stats[c.ID] = CategoryStat{}
	}
	for _, a := range aggregates {
		if _, ok := stats[a.CategoryID]; !ok {
			continue
		}
		stats[a.CategoryID] = CategoryStat{Score: a.TotalScore, Count: a.CommentCount}
	}
	for id, s := range stats {
		if s.Count > 0 {
			s.AvgScore = Round2(float64(s.Score) / float64(s.Count))
		}
		stats[id] = s
	}
	return stats
}

// Average is the mean of the per-category averages over all categories in
// stats. It is not weighted by comment count.
func Average(stats map[uint]CategoryStat) float64 {
	if len(stats) == 0 {
		return 0
	}
	// fixed order keeps the float sum deterministic
	ids := make([]uint, 0, len(stats))
	for id := range stats {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var total float64
	for _, id := range ids {
		total += stats[id].AvgScore
	}
	return Round2(total / float64(len(stats)))
}

// CommentAverage is the mean of a single comment's scores.
func CommentAverage(scores models.CategoryScores) float64 {
	if len(scores) == 0 {
		return 0
	}
	var total int
	for _, s := range scores {
		total += s
	}
	return Round2(float64(total) / float64(len(scores)))
}

// Round2 rounds to two decimal places, halves to even.
func Round2(v float64) float64 {
	return math.RoundToEven(v*100) / 100
}
