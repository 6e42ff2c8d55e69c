package websocket

import (
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/fairwaylabs/caddie/internal/models"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Single-player companion app; origin checks live in CORS middleware
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Client is one connected UI waiting for audio cues.
type Client struct {
	Conn *websocket.Conn
	Send chan []byte
	Hub  *CueHub

	// lastSeen holds unix nanos; touched from the pump goroutines and the
	// hub loop concurrently, so it stays atomic.
	lastSeen atomic.Int64
}

func (c *Client) touch() {
	c.lastSeen.Store(time.Now().UnixNano())
}

func (c *Client) seenBefore(cutoff time.Time) bool {
	return c.lastSeen.Load() < cutoff.UnixNano()
}

// CueHub fans audio-cue events out to connected clients. The caddie core
// only selects the cue token; whatever is listening here plays the sound.
type CueHub struct {
	clients    map[*Client]bool
	broadcast  chan *CueEvent
	register   chan *Client
	unregister chan *Client
	logger     *logrus.Logger
	mutex      sync.RWMutex
}

// CueEvent is the message pushed per caddie reply.
type CueEvent struct {
	Type      string          `json:"type"` // always "audio_cue"
	Cue       models.AudioCue `json:"cue"`
	RoundID   uuid.UUID       `json:"round_id"`
	Timestamp time.Time       `json:"timestamp"`
}

func NewCueHub(logger *logrus.Logger) *CueHub {
	return &CueHub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan *CueEvent, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     logger,
	}
}

// Run starts the hub loop.
func (h *CueHub) Run() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case event := <-h.broadcast:
			h.broadcastEvent(event)

		case <-ticker.C:
			h.dropStaleClients()
		}
	}
}

// NotifyCue queues a cue event for all connected clients. Non-blocking: if
// the hub is saturated the cue is dropped, never the chat turn.
func (h *CueHub) NotifyCue(roundID uuid.UUID, cue models.AudioCue) {
	event := &CueEvent{
		Type:      "audio_cue",
		Cue:       cue,
		RoundID:   roundID,
		Timestamp: time.Now().UTC(),
	}

	select {
	case h.broadcast <- event:
	default:
		h.logger.Warn("Cue hub backlog full, dropping audio cue")
	}
}

func (h *CueHub) registerClient(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	h.clients[client] = true
	h.logger.WithField("total_clients", len(h.clients)).Info("Audio cue client connected")
}

func (h *CueHub) unregisterClient(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.Send)
		h.logger.WithField("total_clients", len(h.clients)).Info("Audio cue client disconnected")
	}
}

func (h *CueHub) broadcastEvent(event *CueEvent) {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	data, err := json.Marshal(event)
	if err != nil {
		h.logger.WithError(err).Error("Failed to marshal cue event")
		return
	}

	for client := range h.clients {
		select {
		case client.Send <- data:
			client.touch()
		default:
			// Client's send channel is full, close the connection
			go func(c *Client) { h.unregister <- c }(client)
		}
	}
}

func (h *CueHub) dropStaleClients() {
	cutoff := time.Now().Add(-2 * time.Minute)

	h.mutex.RLock()
	stale := []*Client{}
	for client := range h.clients {
		if client.seenBefore(cutoff) {
			stale = append(stale, client)
		}
	}
	h.mutex.RUnlock()

	// Unregister directly. The sweep runs on the hub loop itself, so
	// sending to h.unregister here would block the only receiver forever.
	for _, client := range stale {
		h.unregisterClient(client)
	}

	if len(stale) > 0 {
		h.logger.WithField("stale_clients", len(stale)).Debug("Removed stale cue clients")
	}
}

// ConnectionCount returns the number of active connections.
func (h *CueHub) ConnectionCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// HandleWebSocket upgrades the request and attaches the client to the hub.
func (h *CueHub) HandleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.WithError(err).Error("Failed to upgrade cue WebSocket connection")
		return
	}

	client := &Client{
		Conn: conn,
		Send: make(chan []byte, 64),
		Hub:  h,
	}
	client.touch()

	h.register <- client

	go client.writePump()
	go client.readPump()
}

// readPump drains the connection; clients only send pings.
func (c *Client) readPump() {
	defer func() {
		c.Hub.unregister <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		c.touch()
		return nil
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.logger.WithError(err).Error("Cue WebSocket error")
			}
			break
		}
		c.touch()
	}
}

// writePump pushes hub events and keepalive pings to the connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.Hub.logger.WithError(err).Error("Failed to write cue WebSocket message")
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
