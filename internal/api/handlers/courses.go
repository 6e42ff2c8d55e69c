package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/fairwaylabs/caddie/internal/models"
	"github.com/fairwaylabs/caddie/internal/services"
)

// CourseHandler handles course endpoints.
type CourseHandler struct {
	book   *services.Caddiebook
	logger *logrus.Logger
}

func NewCourseHandler(book *services.Caddiebook, logger *logrus.Logger) *CourseHandler {
	return &CourseHandler{book: book, logger: logger}
}

type createCourseRequest struct {
	Name  string `json:"name" binding:"required"`
	Holes []struct {
		HoleNumber int `json:"hole_number" binding:"required"`
		Par        int `json:"par" binding:"required"`
		Yardage    int `json:"yardage"`
	} `json:"holes" binding:"required,dive"`
}

// CreateCourse registers a new course with its holes.
func (h *CourseHandler) CreateCourse(c *gin.Context) {
	var req createCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	holes := make([]models.Hole, 0, len(req.Holes))
	seen := make(map[int]bool, len(req.Holes))
	for _, in := range req.Holes {
		if seen[in.HoleNumber] {
			c.JSON(http.StatusBadRequest, gin.H{"error": "duplicate hole number"})
			return
		}
		seen[in.HoleNumber] = true
		holes = append(holes, models.Hole{HoleNumber: in.HoleNumber, Par: in.Par, Yardage: in.Yardage})
	}

	course := models.NewCourse(req.Name, holes)
	h.book.AddCourse(c.Request.Context(), course)

	h.logger.WithFields(logrus.Fields{
		"course": course.Name,
		"holes":  len(course.Holes),
	}).Info("Course created")

	c.JSON(http.StatusCreated, course)
}

// ListCourses returns all courses.
func (h *CourseHandler) ListCourses(c *gin.Context) {
	courses := h.book.Courses()
	c.JSON(http.StatusOK, gin.H{
		"courses": courses,
		"total":   len(courses),
	})
}

// GetCourse returns a single course with its history.
func (h *CourseHandler) GetCourse(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid course id"})
		return
	}

	course, err := h.book.Course(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "course not found"})
		return
	}

	c.JSON(http.StatusOK, course)
}

type addNoteRequest struct {
	Note string `json:"note" binding:"required"`
}

// AddHoleNote appends a free-text note to a hole.
func (h *CourseHandler) AddHoleNote(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid course id"})
		return
	}

	holeNumber, ok := parseHoleNumber(c)
	if !ok {
		return
	}

	var req addNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.book.AddHoleNote(c.Request.Context(), id, holeNumber, req.Note); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "noted"})
}
