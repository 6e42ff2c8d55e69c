package models

// AudioCue names the notification sound the client should play for a caddie
// reply. The model selects one per reply; the core only carries the token.
type AudioCue string

const (
	CueDiscovery   AudioCue = "discovery"   // a new course note was learned
	CueUpdate      AudioCue = "update"      // a new player tendency was learned
	CueMemory      AudioCue = "memory"      // the caddie referenced remembered history
	CueAchievement AudioCue = "achievement" // a notably good result
	CueLog         AudioCue = "log"         // a shot or score was recorded
	CueNone        AudioCue = "none"
)

// Valid reports whether the cue is one of the closed enumeration.
func (a AudioCue) Valid() bool {
	switch a {
	case CueDiscovery, CueUpdate, CueMemory, CueAchievement, CueLog, CueNone:
		return true
	}
	return false
}

// ExtractedData is the sparse set of facts the model pulled out of the
// player's last message. Every field is independently optional; a populated
// field means the player explicitly and unambiguously stated it. The struct
// is transient, produced per reply, and never persisted on its own.
type ExtractedData struct {
	HoleNumber     *int    `json:"holeNumber,omitempty"`
	ShotNumber     *int    `json:"shotNumber,omitempty"`
	Club           *string `json:"club,omitempty"`
	Outcome        *string `json:"outcome,omitempty"`
	ScoreOnHole    *int    `json:"scoreOnHole,omitempty"`
	CourseNote     *string `json:"courseNote,omitempty"`
	PlayerTendency *string `json:"playerTendency,omitempty"`
}

// IsEmpty reports whether no fact field is populated.
func (e *ExtractedData) IsEmpty() bool {
	if e == nil {
		return true
	}
	return e.HoleNumber == nil && e.ShotNumber == nil && e.Club == nil &&
		e.Outcome == nil && e.ScoreOnHole == nil && e.CourseNote == nil &&
		e.PlayerTendency == nil
}

// CaddieReply is the structured shape every model reply must conform to.
// Callers always receive a well-formed CaddieReply; failures inside the
// conversation bridge resolve to a fallback value of this same shape.
type CaddieReply struct {
	ConversationalResponse string         `json:"conversationalResponse"`
	ExtractedData          *ExtractedData `json:"extractedData,omitempty"`
	AudioCue               AudioCue       `json:"audioCue,omitempty"`
}
