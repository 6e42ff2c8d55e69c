package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/fairwaylabs/caddie/internal/services"
)

// ProfileHandler handles player profile endpoints.
type ProfileHandler struct {
	book   *services.Caddiebook
	logger *logrus.Logger
}

func NewProfileHandler(book *services.Caddiebook, logger *logrus.Logger) *ProfileHandler {
	return &ProfileHandler{book: book, logger: logger}
}

// GetProfile returns the player profile.
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	c.JSON(http.StatusOK, h.book.Profile())
}

type addTendencyRequest struct {
	Tendency string `json:"tendency" binding:"required"`
}

// AddTendency records a tendency; exact duplicates are rejected quietly.
func (h *ProfileHandler) AddTendency(c *gin.Context) {
	var req addTendencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	added := h.book.AddTendency(c.Request.Context(), req.Tendency)
	c.JSON(http.StatusOK, gin.H{"added": added, "profile": h.book.Profile()})
}
