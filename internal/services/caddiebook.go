package services

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/fairwaylabs/caddie/internal/models"
)

// caddiebookDocument is the single document the whole dataset persists as.
// It is read once at startup and fully rewritten after every mutation.
type caddiebookDocument struct {
	Courses       []models.Course      `json:"courses"`
	PlayerProfile models.PlayerProfile `json:"player_profile"`
}

// ErrCourseNotFound is returned for lookups against an unknown course.
var ErrCourseNotFound = errors.New("course not found")

// ErrRoundNotFound is returned for lookups against an unknown round date.
var ErrRoundNotFound = errors.New("round not found")

// ErrHoleNotFound is returned when a hole number does not exist on a course.
var ErrHoleNotFound = errors.New("hole not found")

// Caddiebook is the in-memory state holder for all courses and the player
// profile. The store is a construction-time requirement, so there is no
// "used before initialized" state to guard against at call sites. The HTTP
// surface introduces concurrent requests, so all access is serialized here.
type Caddiebook struct {
	mu      sync.RWMutex
	courses []models.Course
	profile models.PlayerProfile
	store   DocumentStore
	logger  *logrus.Logger
}

func NewCaddiebook(store DocumentStore, logger *logrus.Logger) *Caddiebook {
	return &Caddiebook{
		store:  store,
		logger: logger,
	}
}

// Load initializes in-memory state from the store. A missing document means
// a fresh install; any other failure is logged and the documented initial
// empty state is used instead. Load never fails the caller.
func (b *Caddiebook) Load(ctx context.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var doc caddiebookDocument
	if err := b.store.Get(ctx, caddiebookKey, &doc); err != nil {
		if errors.Is(err, ErrDocumentNotFound) {
			b.logger.Info("No caddiebook document found, starting with empty state")
		} else {
			b.logger.WithError(err).Error("Failed to load caddiebook, starting with empty state")
		}
		b.courses = nil
		b.profile = models.PlayerProfile{}
		return
	}

	b.courses = doc.Courses
	b.profile = doc.PlayerProfile
	b.logger.WithField("courses", len(b.courses)).Info("Caddiebook loaded")
}

// flush rewrites the whole document. Write failures are logged and never
// propagated; the in-memory state remains authoritative for the session.
// Callers must hold the write lock.
func (b *Caddiebook) flush(ctx context.Context) {
	doc := caddiebookDocument{Courses: b.courses, PlayerProfile: b.profile}
	if err := b.store.Set(ctx, caddiebookKey, doc); err != nil {
		b.logger.WithError(err).Error("Failed to persist caddiebook")
	}
}

// Courses returns a snapshot copy of all courses.
func (b *Caddiebook) Courses() []models.Course {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]models.Course, len(b.courses))
	copy(out, b.courses)
	return out
}

// Course returns a copy of the course with the given ID.
func (b *Caddiebook) Course(id uuid.UUID) (models.Course, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for i := range b.courses {
		if b.courses[i].ID == id {
			return b.courses[i], nil
		}
	}
	return models.Course{}, ErrCourseNotFound
}

// Profile returns a copy of the player profile.
func (b *Caddiebook) Profile() models.PlayerProfile {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.profile
}

// AddCourse stores a new course and flushes.
func (b *Caddiebook) AddCourse(ctx context.Context, course models.Course) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.courses = append(b.courses, course)
	b.flush(ctx)
}

// AddHoleNote appends a note to a hole of a course and flushes.
func (b *Caddiebook) AddHoleNote(ctx context.Context, courseID uuid.UUID, holeNumber int, note string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	course := b.courseRef(courseID)
	if course == nil {
		return ErrCourseNotFound
	}
	if !course.AddHoleNote(holeNumber, note) {
		return ErrHoleNotFound
	}
	b.flush(ctx)
	return nil
}

// AddTendency records a player tendency and flushes if it was new.
func (b *Caddiebook) AddTendency(ctx context.Context, tendency string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	added := b.profile.AddTendency(tendency)
	if added {
		b.flush(ctx)
	}
	return added
}

// UpsertRound replaces or appends the round in the course's history, keyed
// by date, and flushes. Replacing an existing date is legitimate (the round
// is saved incrementally all day) but is logged because two genuinely
// distinct same-day rounds would collide here.
func (b *Caddiebook) UpsertRound(ctx context.Context, courseID uuid.UUID, round models.Round) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	course := b.courseRef(courseID)
	if course == nil {
		return ErrCourseNotFound
	}

	if replaced := course.UpsertRound(round); replaced {
		b.logger.WithFields(logrus.Fields{
			"course": course.Name,
			"date":   round.Date,
		}).Debug("Replaced existing round for date")
	}
	b.flush(ctx)
	return nil
}

// Round returns a copy of the round with the given date.
func (b *Caddiebook) Round(courseID uuid.UUID, date string) (models.Round, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for i := range b.courses {
		if b.courses[i].ID == courseID {
			if round, ok := b.courses[i].RoundByDate(date); ok {
				return *round, nil
			}
			return models.Round{}, ErrRoundNotFound
		}
	}
	return models.Round{}, ErrCourseNotFound
}

// Mutate runs fn against the live course, round, and profile under the
// write lock, then flushes. fn receiving pointers keeps a multi-field chat
// turn (transcript, performances, notes, tendencies) a single atomic save.
func (b *Caddiebook) Mutate(ctx context.Context, courseID uuid.UUID, date string, fn func(course *models.Course, round *models.Round, profile *models.PlayerProfile) error) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	course := b.courseRef(courseID)
	if course == nil {
		return ErrCourseNotFound
	}
	round, ok := course.RoundByDate(date)
	if !ok {
		return ErrRoundNotFound
	}

	if err := fn(course, round, &b.profile); err != nil {
		return err
	}

	b.flush(ctx)
	return nil
}

// courseRef returns the live course entry. Callers must hold the lock.
func (b *Caddiebook) courseRef(id uuid.UUID) *models.Course {
	for i := range b.courses {
		if b.courses[i].ID == id {
			return &b.courses[i]
		}
	}
	return nil
}
