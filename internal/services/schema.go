package services

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fairwaylabs/caddie/internal/models"
)

// Schema is the declarative shape constraint sent to the model as a Gemini
// responseSchema. Types use the generative-language API's upper-case names.
type Schema struct {
	Type        string             `json:"type"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	Enum        []string           `json:"enum,omitempty"`
	Required    []string           `json:"required,omitempty"`
	Nullable    bool               `json:"nullable,omitempty"`
}

// CaddieReplySchema declares the required shape of every model reply: a
// required conversational text field, an optional sparse extractedData
// object, and an optional audio cue from a closed enumeration.
func CaddieReplySchema() *Schema {
	return &Schema{
		Type: "OBJECT",
		Properties: map[string]*Schema{
			"conversationalResponse": {
				Type:        "STRING",
				Description: "The caddie's spoken reply to the player.",
			},
			"extractedData": {
				Type:     "OBJECT",
				Nullable: true,
				Description: "Facts the player explicitly stated in their last message. " +
					"Every field is optional; omit anything not unambiguously stated.",
				Properties: map[string]*Schema{
					"holeNumber":     {Type: "INTEGER", Nullable: true},
					"shotNumber":     {Type: "INTEGER", Nullable: true},
					"club":           {Type: "STRING", Nullable: true},
					"outcome":        {Type: "STRING", Nullable: true},
					"scoreOnHole":    {Type: "INTEGER", Nullable: true},
					"courseNote":     {Type: "STRING", Nullable: true},
					"playerTendency": {Type: "STRING", Nullable: true},
				},
			},
			"audioCue": {
				Type:     "STRING",
				Nullable: true,
				Enum: []string{
					string(models.CueDiscovery),
					string(models.CueUpdate),
					string(models.CueMemory),
					string(models.CueAchievement),
					string(models.CueLog),
					string(models.CueNone),
				},
				Description: "Which notification sound the client should play.",
			},
		},
		Required: []string{"conversationalResponse"},
	}
}

var (
	errEmptyResponse = errors.New("reply missing conversationalResponse")
)

// ParseReply decodes raw model output and validates it against the reply
// contract. A reply that violates the shape is rejected wholesale; callers
// must never partially trust a malformed reply. An absent audio cue is
// normalized to "none"; an unknown cue value is a shape violation.
func ParseReply(raw []byte) (*models.CaddieReply, error) {
	var reply models.CaddieReply
	if err := json.Unmarshal(raw, &reply); err != nil {
		return nil, fmt.Errorf("reply is not valid JSON: %w", err)
	}

	if reply.ConversationalResponse == "" {
		return nil, errEmptyResponse
	}

	if reply.AudioCue == "" {
		reply.AudioCue = models.CueNone
	}
	if !reply.AudioCue.Valid() {
		return nil, fmt.Errorf("reply carries unknown audio cue %q", reply.AudioCue)
	}

	if reply.ExtractedData != nil && reply.ExtractedData.IsEmpty() {
		reply.ExtractedData = nil
	}

	return &reply, nil
}
