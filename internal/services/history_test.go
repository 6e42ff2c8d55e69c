package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fairwaylabs/caddie/internal/models"
)

func courseWithScores(holeNumber int, scores ...int) models.Course {
	course := models.NewCourse("Pinehurst", []models.Hole{
		{HoleNumber: holeNumber, Par: 4, Yardage: 380},
	})
	for i, score := range scores {
		round := models.NewRound(fmt.Sprintf("2026-07-%02d", i+1), "")
		round.RecordPerformance(models.HolePerformance{HoleNumber: holeNumber, Score: score})
		course.UpsertRound(round)
	}
	return course
}

func TestSummarizeHoleNoHistory(t *testing.T) {
	course := courseWithScores(7) // no rounds at all

	history := SummarizeHole(course, 7)
	assert.Equal(t, 0, history.TimesPlayed)
	assert.Equal(t, "The player has no recorded history on this hole.", history.Sentence())
}

func TestSummarizeHoleIgnoresOtherHoles(t *testing.T) {
	course := courseWithScores(3, 4, 5, 6)

	history := SummarizeHole(course, 7)
	assert.Equal(t, 0, history.TimesPlayed, "scores on other holes must not count")
	assert.Equal(t, "The player has no recorded history on this hole.", history.Sentence())
}

func TestSummarizeHoleAverage(t *testing.T) {
	tests := []struct {
		name     string
		scores   []int
		expected float64
	}{
		{name: "Two scores", scores: []int{5, 3}, expected: 4.00},
		{name: "Repeating decimal rounds to two places", scores: []int{4, 4, 5}, expected: 4.33},
		{name: "Rounds up", scores: []int{5, 5, 4}, expected: 4.67},
		{name: "Single score", scores: []int{6}, expected: 6.00},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			course := courseWithScores(7, tt.scores...)
			history := SummarizeHole(course, 7)

			assert.Equal(t, len(tt.scores), history.TimesPlayed)
			assert.Equal(t, tt.expected, history.AverageScore)
		})
	}
}

func TestSummarizeHolePinehurstScenario(t *testing.T) {
	course := courseWithScores(7, 5, 3)

	history := SummarizeHole(course, 7)
	assert.Equal(t, 2, history.TimesPlayed)
	assert.Equal(t, 4.00, history.AverageScore)
	assert.Equal(t, "The player has played this hole 2 times with an average score of 4.00.", history.Sentence())
}

func TestSummarizeHoleIsPure(t *testing.T) {
	course := courseWithScores(7, 5, 3)

	first := SummarizeHole(course, 7)
	second := SummarizeHole(course, 7)
	assert.Equal(t, first, second)
	assert.Len(t, course.RoundHistory, 2, "summarizing must not mutate the course")
}
