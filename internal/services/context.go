package services

import (
	"fmt"
	"strings"

	"github.com/fairwaylabs/caddie/internal/models"
)

const noteSeparator = "; "

// BuildContextBlock assembles the natural-language briefing the prompt
// builder grounds the caddie in. The ordering of facts is fixed: course,
// hole, history, hole notes, conditions, tendencies. Optional data that is
// absent is omitted entirely, never rendered as a placeholder. Identical
// inputs always produce byte-identical output.
func BuildContextBlock(course models.Course, hole models.Hole, round models.Round, profile models.PlayerProfile) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Course: %s\n", course.Name))
	b.WriteString(fmt.Sprintf("Hole %d: par %d, %d yards.\n", hole.HoleNumber, hole.Par, hole.Yardage))
	b.WriteString(SummarizeHole(course, hole.HoleNumber).Sentence())
	b.WriteString("\n")

	if len(hole.Notes) > 0 {
		b.WriteString(fmt.Sprintf("Notes on this hole: %s\n", strings.Join(hole.Notes, noteSeparator)))
	}

	if round.Conditions != "" {
		b.WriteString(fmt.Sprintf("Current conditions: %s\n", round.Conditions))
	}

	if len(profile.Tendencies) > 0 {
		b.WriteString(fmt.Sprintf("Player tendencies: %s\n", strings.Join(profile.Tendencies, noteSeparator)))
	}

	return b.String()
}
