package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fairwaylabs/caddie/internal/services"
	ws "github.com/fairwaylabs/caddie/internal/websocket"
)

// HealthHandler reports service health including the model bridge state.
type HealthHandler struct {
	bridge *services.GeminiClient
	hub    *ws.CueHub
}

func NewHealthHandler(bridge *services.GeminiClient, hub *ws.CueHub) *HealthHandler {
	return &HealthHandler{bridge: bridge, hub: hub}
}

func (h *HealthHandler) Health(c *gin.Context) {
	caddieState := "online"
	if h.bridge.Offline() {
		caddieState = "offline"
	} else if !h.bridge.IsHealthy() {
		caddieState = "degraded"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"caddie":      caddieState,
		"cue_clients": h.hub.ConnectionCount(),
		"time":        time.Now().UTC(),
	})
}
