package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/fairwaylabs/caddie/internal/services"
)

// CaddieHandler handles the conversational endpoint.
type CaddieHandler struct {
	caddie *services.CaddieService
	logger *logrus.Logger
}

func NewCaddieHandler(caddie *services.CaddieService, logger *logrus.Logger) *CaddieHandler {
	return &CaddieHandler{caddie: caddie, logger: logger}
}

type chatRequest struct {
	Message    string `json:"message" binding:"required"`
	HoleNumber int    `json:"hole_number"` // 0 means the round's current hole
}

// Chat runs one conversational turn. The reply is always well-formed: model
// failures surface as the caddie's fallback message, never as an error.
func (h *CaddieHandler) Chat(c *gin.Context) {
	courseID, ok := parseCourseID(c)
	if !ok {
		return
	}
	date := c.Param("date")

	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reply, err := h.caddie.ChatTurn(c.Request.Context(), courseID, date, req.HoleNumber, req.Message)
	if err != nil {
		if errors.Is(err, services.ErrCourseNotFound) || errors.Is(err, services.ErrRoundNotFound) || errors.Is(err, services.ErrHoleNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		h.logger.WithError(err).Error("Chat turn failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "chat turn failed"})
		return
	}

	c.JSON(http.StatusOK, reply)
}
