package ws

import (
	"encoding/json"
	"time"

	"task_api/internal/http/middleware"
	"task_api/internal/logger"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = 25 * time.Second

	sendQueueSize = 64
	maxInbound    = 512
)

type Client struct {
	UserID uuid.UUID
	Conn   *websocket.Conn
	Send   chan []byte

	Hub *Hub
}

func NewClient(userID uuid.UUID, conn *websocket.Conn, hub *Hub) *Client {
	return &Client{
		UserID: userID,
		Conn:   conn,
		Send:   make(chan []byte, sendQueueSize),
		Hub:    hub,
	}
}

// Run registers the client, sends the ready handshake and serves the
// connection until it closes.
func (c *Client) Run() {
	ready, _ := json.Marshal(Event{Type: MsgReady})
	c.Send <- ready
	c.Hub.Register(c)

	middleware.WSConnections.Inc()
	defer middleware.WSConnections.Dec()

	go c.writePump()
	c.readPump()
}

// readPump only answers application level pings; the feed is one way.
func (c *Client) readPump() {
	defer func() {
		c.Hub.Unregister(c)
		_ = c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxInbound)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	pong, _ := json.Marshal(Event{Type: MsgPong})
	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("ws: read error", "user_id", c.UserID, "error", err)
			}
			return
		}
		var msg InboundMessage
		if json.Unmarshal(raw, &msg) == nil && msg.Type == MsgPing {
			c.trySend(pong)
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				logger.Debug("ws: write error", "user_id", c.UserID, "error", err)
				return
			}

		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// trySend queues msg unless the client is already gone.
func (c *Client) trySend(msg []byte) {
	c.Hub.mu.RLock()
	defer c.Hub.mu.RUnlock()
	if _, ok := c.Hub.clients[c.UserID][c]; !ok {
		return
	}
	select {
	case c.Send <- msg:
	default:
	}
}
