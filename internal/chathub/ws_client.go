package chathub

import (
	"encoding/json"
	"sync"
	"time"

	"socialgo/backend/internal/models"
	"socialgo/backend/pkg/logger"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// WebSocketClient implements the Client interface over gorilla/websocket.
type WebSocketClient struct {
	UserID   string
	Username string
	Conn     *websocket.Conn
	Hub      *ManagerService

	send chan models.ServerEvent

	mu     sync.Mutex
	closed bool
}

func NewWebSocketClient(hub *ManagerService, conn *websocket.Conn, userID, username string) *WebSocketClient {
	return &WebSocketClient{
		UserID:   userID,
		Username: username,
		Conn:     conn,
		Hub:      hub,
		send:     make(chan models.ServerEvent, 256),
	}
}

func (c *WebSocketClient) GetUserID() string   { return c.UserID }
func (c *WebSocketClient) GetUsername() string { return c.Username }

// Send queues ev for the write pump. Events for a closed session or a full
// buffer are dropped; delivery over the live path is best-effort.
func (c *WebSocketClient) Send(ev models.ServerEvent) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}
	select {
	case c.send <- ev:
		return true
	default:
		logger.Warn().Str("user", c.UserID).Str("event", ev.Type).Msg("send buffer full, dropping event")
		return false
	}
}

// Run starts the pumps for this connection.
func (c *WebSocketClient) Run() {
	go c.writePump()
	go c.readPump()
}

// Close shuts the send channel, which stops the write pump. The read pump
// stops on its own once the connection is closed.
func (c *WebSocketClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

func (c *WebSocketClient) readPump() {
	defer func() {
		c.Hub.UnregisterCh <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn().Err(err).Str("user", c.UserID).Msg("websocket read error")
			}
			break
		}

		var ev models.ClientEvent
		if err := json.Unmarshal(message, &ev); err != nil {
			logger.Warn().Err(err).Str("user", c.UserID).Msg("dropping malformed client event")
			continue
		}

		c.Hub.EventCh <- InboundEvent{Client: c, Event: ev}
	}
}

func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case ev, ok := <-c.send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Channel closed by the hub.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			data, err := json.Marshal(ev)
			if err != nil {
				logger.Error().Err(err).Str("user", c.UserID).Msg("failed to encode server event")
				continue
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(data)

			// Drain whatever else is already queued into the same frame.
			n := len(c.send)
			for i := 0; i < n; i++ {
				next, ok := <-c.send
				if !ok {
					break
				}
				extra, _ := json.Marshal(next)
				w.Write(extra)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
