package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/fairwaylabs/caddie/internal/models"
)

// ConversationBridge is what the caddie service needs from the model
// backend. SendTurn never fails; failures resolve to a fallback reply.
type ConversationBridge interface {
	SendTurn(ctx context.Context, transcript []models.ChatMessage, systemPrompt string) *models.CaddieReply
}

// CueNotifier receives the audio cue selected by a caddie reply. The core
// selects the cue; playing it is the notifier's problem.
type CueNotifier interface {
	NotifyCue(roundID uuid.UUID, cue models.AudioCue)
}

// CaddieService runs one conversational turn end to end: transcript update,
// prompt construction, the single model call, conservative application of
// extracted facts, cue selection, and a synchronous flush of the whole
// dataset. The caller serializes turns per round; the Caddiebook lock keeps
// concurrent rounds from interleaving mid-save.
type CaddieService struct {
	book     *Caddiebook
	bridge   ConversationBridge
	notifier CueNotifier
	logger   *logrus.Logger
}

func NewCaddieService(book *Caddiebook, bridge ConversationBridge, notifier CueNotifier, logger *logrus.Logger) *CaddieService {
	return &CaddieService{
		book:     book,
		bridge:   bridge,
		notifier: notifier,
		logger:   logger,
	}
}

// ChatTurn sends the player's message to the caddie and returns the reply.
// holeNumber of 0 means "wherever the round currently is". The returned
// reply is always well-formed; only unknown course/round/hole lookups error.
func (s *CaddieService) ChatTurn(ctx context.Context, courseID uuid.UUID, date string, holeNumber int, message string) (*models.CaddieReply, error) {
	course, err := s.book.Course(courseID)
	if err != nil {
		return nil, err
	}
	round, err := s.book.Round(courseID, date)
	if err != nil {
		return nil, err
	}

	if holeNumber == 0 {
		holeNumber = round.CurrentHole
		// A fresh round starts at hole 1, which the course may not have.
		if _, ok := course.Hole(holeNumber); !ok && len(course.Holes) > 0 {
			holeNumber = course.Holes[0].HoleNumber
		}
	}
	hole, ok := course.Hole(holeNumber)
	if !ok {
		return nil, ErrHoleNotFound
	}

	systemPrompt := BuildSystemPrompt(course, *hole, round, s.book.Profile())

	// The transcript sent to the model includes the message being asked.
	transcript := append(append([]models.ChatMessage{}, round.Transcript...),
		models.ChatMessage{Sender: models.SenderPlayer, Text: message})

	reply := s.bridge.SendTurn(ctx, transcript, systemPrompt)

	if err := s.book.Mutate(ctx, courseID, date, func(course *models.Course, round *models.Round, profile *models.PlayerProfile) error {
		round.AppendMessage(models.SenderPlayer, message)
		round.AppendMessage(models.SenderCaddie, reply.ConversationalResponse)
		round.CurrentHole = holeNumber
		s.applyExtraction(course, round, profile, holeNumber, reply.ExtractedData)
		return nil
	}); err != nil {
		return nil, err
	}

	if s.notifier != nil && reply.AudioCue != models.CueNone {
		s.notifier.NotifyCue(round.ID, reply.AudioCue)
	}

	return reply, nil
}

// applyExtraction folds the reply's sparse facts into durable state. Fields
// the model did not populate are untouched — absence is not a deletion.
func (s *CaddieService) applyExtraction(course *models.Course, round *models.Round, profile *models.PlayerProfile, holeNumber int, data *models.ExtractedData) {
	if data.IsEmpty() {
		return
	}

	target := holeNumber
	if data.HoleNumber != nil {
		// The model can hallucinate a hole the course doesn't have; a bad
		// number must not move the round or swallow the other facts.
		if _, ok := course.Hole(*data.HoleNumber); ok {
			target = *data.HoleNumber
			round.CurrentHole = target
		} else {
			s.logger.WithFields(logrus.Fields{
				"course": course.Name,
				"hole":   *data.HoleNumber,
			}).Warn("Extracted hole number not on course, keeping current hole")
		}
	}

	if data.Club != nil || data.Outcome != nil || data.ScoreOnHole != nil {
		perf := models.HolePerformance{HoleNumber: target}
		if data.Club != nil {
			perf.Club = *data.Club
		}
		if data.Outcome != nil {
			perf.Outcome = *data.Outcome
		}
		if data.ScoreOnHole != nil {
			perf.Score = *data.ScoreOnHole
		}
		round.RecordPerformance(perf)
	}

	if data.CourseNote != nil {
		if !course.AddHoleNote(target, *data.CourseNote) {
			s.logger.WithFields(logrus.Fields{
				"course": course.Name,
				"hole":   target,
			}).Warn("Dropped course note for unknown hole")
		}
	}

	if data.PlayerTendency != nil {
		profile.AddTendency(*data.PlayerTendency)
	}

	s.logger.WithFields(logrus.Fields{
		"course": course.Name,
		"hole":   target,
	}).Debug("Applied extracted facts from caddie reply")
}
