package services

import (
	"fmt"
	"math"

	"github.com/fairwaylabs/caddie/internal/models"
)

// HoleHistory summarizes the player's past performance on one hole of a
// course. TimesPlayed == 0 is the no-history sentinel; AverageScore is only
// meaningful when at least one performance was found.
type HoleHistory struct {
	TimesPlayed  int     `json:"times_played"`
	AverageScore float64 `json:"average_score"`
}

// SummarizeHole scans the course's round history for performances on the
// given hole and returns the match count and mean score rounded to two
// decimal places. Pure function of its inputs.
func SummarizeHole(course models.Course, holeNumber int) HoleHistory {
	count := 0
	sum := 0
	for _, round := range course.RoundHistory {
		for _, perf := range round.HoleByHole {
			if perf.HoleNumber == holeNumber {
				count++
				sum += perf.Score
			}
		}
	}

	if count == 0 {
		return HoleHistory{}
	}

	avg := math.Round(float64(sum)/float64(count)*100) / 100
	return HoleHistory{TimesPlayed: count, AverageScore: avg}
}

// Sentence renders the summary the way the prompt context expects it.
func (h HoleHistory) Sentence() string {
	if h.TimesPlayed == 0 {
		return "The player has no recorded history on this hole."
	}
	return fmt.Sprintf("The player has played this hole %d times with an average score of %.2f.",
		h.TimesPlayed, h.AverageScore)
}
