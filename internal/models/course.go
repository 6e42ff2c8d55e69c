package models

import (
	"time"

	"github.com/google/uuid"
)

// MessageSender identifies who produced a transcript entry
type MessageSender string

const (
	SenderPlayer MessageSender = "player"
	SenderCaddie MessageSender = "caddie"
)

// ChatMessage is a single entry in a round's conversation transcript
type ChatMessage struct {
	Sender MessageSender `json:"sender"`
	Text   string        `json:"text"`
}

// Hole describes one hole on a course. Notes are free-text observations the
// caddie has accumulated; they are append-only and never deduplicated.
type Hole struct {
	HoleNumber int      `json:"hole_number"`
	Par        int      `json:"par"`
	Yardage    int      `json:"yardage"`
	Notes      []string `json:"notes,omitempty"`
}

// HolePerformance records how the player fared on a single hole of a round.
// It links back to a Hole by number, not by reference.
type HolePerformance struct {
	HoleNumber int    `json:"hole_number"`
	Score      int    `json:"score"`
	Club       string `json:"club,omitempty"`
	Outcome    string `json:"outcome,omitempty"`
}

// Round is one round of golf against a single course. Date is the natural
// key for upserts into the course's history; ID exists so two rounds played
// on the same date remain distinguishable to callers.
type Round struct {
	ID          uuid.UUID         `json:"id"`
	Date        string            `json:"date"` // 2006-01-02
	Conditions  string            `json:"conditions,omitempty"`
	CurrentHole int               `json:"current_hole"`
	Transcript  []ChatMessage     `json:"transcript,omitempty"`
	HoleByHole  []HolePerformance `json:"hole_by_hole,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// NewRound creates a round for the given date with a fresh identity.
func NewRound(date, conditions string) Round {
	now := time.Now().UTC()
	return Round{
		ID:          uuid.New(),
		Date:        date,
		Conditions:  conditions,
		CurrentHole: 1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// AppendMessage adds a transcript entry, preserving order.
func (r *Round) AppendMessage(sender MessageSender, text string) {
	r.Transcript = append(r.Transcript, ChatMessage{Sender: sender, Text: text})
	r.UpdatedAt = time.Now().UTC()
}

// Performance returns the recorded performance for a hole, if any.
func (r *Round) Performance(holeNumber int) (*HolePerformance, bool) {
	for i := range r.HoleByHole {
		if r.HoleByHole[i].HoleNumber == holeNumber {
			return &r.HoleByHole[i], true
		}
	}
	return nil, false
}

// RecordPerformance merges a performance entry into the round's breakdown.
// An existing entry for the hole is updated field by field so that a score
// logged on one turn and a club logged on the next both survive.
func (r *Round) RecordPerformance(p HolePerformance) {
	if existing, ok := r.Performance(p.HoleNumber); ok {
		if p.Score != 0 {
			existing.Score = p.Score
		}
		if p.Club != "" {
			existing.Club = p.Club
		}
		if p.Outcome != "" {
			existing.Outcome = p.Outcome
		}
	} else {
		r.HoleByHole = append(r.HoleByHole, p)
	}
	r.UpdatedAt = time.Now().UTC()
}

// Course owns its holes and its round history by value. Hole numbers are
// unique within a course.
type Course struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Holes        []Hole    `json:"holes"`
	RoundHistory []Round   `json:"round_history,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewCourse creates a course with the given holes.
func NewCourse(name string, holes []Hole) Course {
	return Course{
		ID:        uuid.New(),
		Name:      name,
		Holes:     holes,
		CreatedAt: time.Now().UTC(),
	}
}

// Hole returns the hole with the given number.
func (c *Course) Hole(holeNumber int) (*Hole, bool) {
	for i := range c.Holes {
		if c.Holes[i].HoleNumber == holeNumber {
			return &c.Holes[i], true
		}
	}
	return nil, false
}

// AddHoleNote appends a free-text note to the named hole.
func (c *Course) AddHoleNote(holeNumber int, note string) bool {
	hole, ok := c.Hole(holeNumber)
	if !ok {
		return false
	}
	hole.Notes = append(hole.Notes, note)
	return true
}

// RoundByDate returns the round in the history with the given date.
func (c *Course) RoundByDate(date string) (*Round, bool) {
	for i := range c.RoundHistory {
		if c.RoundHistory[i].Date == date {
			return &c.RoundHistory[i], true
		}
	}
	return nil, false
}

// UpsertRound inserts the round into the course's history, replacing any
// existing round with the same date. It reports whether an existing round
// was replaced.
func (c *Course) UpsertRound(round Round) bool {
	for i := range c.RoundHistory {
		if c.RoundHistory[i].Date == round.Date {
			c.RoundHistory[i] = round
			return true
		}
	}
	c.RoundHistory = append(c.RoundHistory, round)
	return false
}
