package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/fairwaylabs/caddie/internal/models"
	"github.com/fairwaylabs/caddie/internal/services"
)

// RoundHandler handles round lifecycle endpoints.
type RoundHandler struct {
	book    *services.Caddiebook
	weather *services.WeatherService
	logger  *logrus.Logger
}

func NewRoundHandler(book *services.Caddiebook, weather *services.WeatherService, logger *logrus.Logger) *RoundHandler {
	return &RoundHandler{book: book, weather: weather, logger: logger}
}

type startRoundRequest struct {
	Date       string `json:"date"` // defaults to today
	Conditions string `json:"conditions"`
}

// StartRound begins a round for a date, or resumes the existing one. A date
// never appears twice in the history; posting it again returns the round
// already in progress, updating its conditions if new ones were supplied.
func (h *RoundHandler) StartRound(c *gin.Context) {
	courseID, ok := parseCourseID(c)
	if !ok {
		return
	}

	var req startRoundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	date := req.Date
	if date == "" {
		date = time.Now().UTC().Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", date); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}

	// Re-posting a date resumes that day's round; a fresh Round here would
	// wipe its transcript and scores.
	if existing, err := h.book.Round(courseID, date); err == nil {
		if req.Conditions != "" && req.Conditions != existing.Conditions {
			if err := h.book.Mutate(c.Request.Context(), courseID, date, func(course *models.Course, round *models.Round, profile *models.PlayerProfile) error {
				round.Conditions = req.Conditions
				return nil
			}); err != nil {
				c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			existing.Conditions = req.Conditions
		}
		c.JSON(http.StatusOK, existing)
		return
	} else if !errors.Is(err, services.ErrRoundNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "course not found"})
		return
	}

	conditions := req.Conditions
	if conditions == "" && h.weather != nil {
		conditions = h.weather.CurrentConditions(c.Request.Context())
	}

	round := models.NewRound(date, conditions)
	if err := h.book.UpsertRound(c.Request.Context(), courseID, round); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "course not found"})
		return
	}

	h.logger.WithFields(logrus.Fields{
		"course_id": courseID,
		"date":      date,
	}).Info("Round started")

	c.JSON(http.StatusCreated, round)
}

// GetRound returns the round for a date.
func (h *RoundHandler) GetRound(c *gin.Context) {
	courseID, ok := parseCourseID(c)
	if !ok {
		return
	}

	round, err := h.book.Round(courseID, c.Param("date"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, round)
}

type logShotRequest struct {
	HoleNumber int    `json:"hole_number" binding:"required"`
	Score      int    `json:"score"`
	Club       string `json:"club"`
	Outcome    string `json:"outcome"`
}

// LogShot records hole performance manually, outside the conversation.
func (h *RoundHandler) LogShot(c *gin.Context) {
	courseID, ok := parseCourseID(c)
	if !ok {
		return
	}
	date := c.Param("date")

	var req logShotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.book.Mutate(c.Request.Context(), courseID, date, func(course *models.Course, round *models.Round, profile *models.PlayerProfile) error {
		round.RecordPerformance(models.HolePerformance{
			HoleNumber: req.HoleNumber,
			Score:      req.Score,
			Club:       req.Club,
			Outcome:    req.Outcome,
		})
		round.CurrentHole = req.HoleNumber
		return nil
	})
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "logged"})
}

// --- shared param helpers ---

func parseCourseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid course id"})
		return uuid.Nil, false
	}
	return id, true
}

func parseHoleNumber(c *gin.Context) (int, bool) {
	holeNumber, err := strconv.Atoi(c.Param("number"))
	if err != nil || holeNumber < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid hole number"})
		return 0, false
	}
	return holeNumber, true
}
