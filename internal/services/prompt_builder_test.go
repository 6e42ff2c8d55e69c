package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fairwaylabs/caddie/internal/models"
)

func TestBuildSystemPromptContainsPersonaAndContext(t *testing.T) {
	course, hole, round, profile := fullContextFixture()

	prompt := BuildSystemPrompt(course, hole, round, profile)

	assert.Contains(t, prompt, "golf caddie")
	assert.Contains(t, prompt, "BEHAVIORAL RULES, in priority order:")
	assert.Contains(t, prompt, "FACT EXTRACTION POLICY:")
	assert.Contains(t, prompt, "AUDIO CUE:")
	assert.Contains(t, prompt, "CURRENT SITUATION:")

	// The live context block follows the fixed persona text.
	assert.True(t, strings.HasSuffix(prompt, BuildContextBlock(course, hole, round, profile)))
	assert.Less(t, strings.Index(prompt, "CURRENT SITUATION:"), strings.Index(prompt, "Course: Pinehurst"))
}

func TestBuildSystemPromptNeverInterrogates(t *testing.T) {
	course, hole, round, profile := fullContextFixture()

	prompt := strings.ToLower(BuildSystemPrompt(course, hole, round, profile))

	// The instructions forbid form-filling questions and must not model one.
	assert.NotContains(t, prompt, "what club")
	assert.NotContains(t, prompt, "which club did you")
}

func TestBuildSystemPromptDeterministic(t *testing.T) {
	course, hole, round, profile := fullContextFixture()

	first := BuildSystemPrompt(course, hole, round, profile)
	second := BuildSystemPrompt(course, hole, round, profile)
	assert.Equal(t, first, second)
}

func TestBuildSystemPromptConservativeExtractionExamples(t *testing.T) {
	course, hole, round, profile := fullContextFixture()

	prompt := BuildSystemPrompt(course, hole, round, profile)

	assert.Contains(t, prompt, `club "7-Iron", outcome "Bunker"`)
	assert.Contains(t, prompt, "no extraction at all")
	assert.Contains(t, prompt, "That is inference, not extraction.")
}

func TestBuildSystemPromptListsEveryAudioCue(t *testing.T) {
	course, hole, round, profile := fullContextFixture()

	prompt := BuildSystemPrompt(course, hole, round, profile)

	for _, cue := range []models.AudioCue{
		models.CueDiscovery, models.CueUpdate, models.CueMemory,
		models.CueAchievement, models.CueLog, models.CueNone,
	} {
		assert.Contains(t, prompt, `"`+string(cue)+`"`)
	}
}
