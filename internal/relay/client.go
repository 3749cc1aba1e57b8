package relay

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 64 * 1024

	// Per-client outbound queue size.
	sendQueueSize = 64
)

// Envelope is an outbound wire frame pushed to relay clients.
type Envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// inboundEnvelope defers payload decoding until the event is known.
type inboundEnvelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Client is one relay connection. The hub addresses it by an opaque ID
// assigned at connect time.
type Client struct {
	id   string
	hub  *Hub
	conn *websocket.Conn

	send  chan Envelope
	rooms map[string]struct{}

	// sendMu orders enqueue against close so a late broadcast can
	// never write to a closed queue.
	sendMu    sync.RWMutex
	closed    bool
	closeOnce sync.Once

	logger *zap.Logger
}

type joinRoomPayload struct {
	Room string `json:"room"`
}

type sendMessagePayload struct {
	Room     string `json:"room"`
	Message  string `json:"message"`
	Username string `json:"username"`
}

type subscribeNotificationsPayload struct {
	UserID string `json:"userId"`
}

type updateStatusPayload struct {
	Status string `json:"status"`
}

// NewClient creates a relay client for an upgraded connection. The
// caller must Register it with the hub and start the pumps.
func NewClient(hub *Hub, conn *websocket.Conn, logger *zap.Logger) *Client {
	return &Client{
		id:     uuid.NewString(),
		hub:    hub,
		conn:   conn,
		send:   make(chan Envelope, sendQueueSize),
		rooms:  make(map[string]struct{}),
		logger: logger,
	}
}

// ID returns the client's connection identifier.
func (c *Client) ID() string {
	return c.id
}

// ReadPump reads inbound frames and dispatches them until the
// connection drops. It unregisters the client on exit.
func (c *Client) ReadPump() {
	defer c.hub.Unregister(c)

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var env inboundEnvelope
		if err := c.conn.ReadJSON(&env); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("unexpected close", zap.String("client_id", c.id), zap.Error(err))
			}
			return
		}

		if err := c.handleEvent(env.Event, env.Data); err != nil {
			c.logger.Warn("failed to handle event",
				zap.String("client_id", c.id),
				zap.String("event", env.Event),
				zap.Error(err))
		}
	}
}

// WritePump drains the send queue to the connection and keeps the peer
// alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case env, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(env); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleEvent dispatches one inbound frame to the hub.
func (c *Client) handleEvent(event string, data json.RawMessage) error {
	switch event {
	case "join_room":
		var p joinRoomPayload
		if err := unmarshalPayload(data, &p); err != nil {
			return err
		}
		return c.hub.Join(c, p.Room)

	case "send_message":
		var p sendMessagePayload
		if err := unmarshalPayload(data, &p); err != nil {
			return err
		}
		return c.hub.Relay(c, p.Room, p.Message, p.Username)

	case "subscribe_notifications":
		var p subscribeNotificationsPayload
		if err := unmarshalPayload(data, &p); err != nil {
			return err
		}
		return c.hub.SubscribeNotifications(c, p.UserID)

	case "update_status":
		var p updateStatusPayload
		if err := unmarshalPayload(data, &p); err != nil {
			return err
		}
		return c.hub.BroadcastStatus(c, p.Status)

	case "increment_counter":
		return c.hub.BroadcastCounter()

	default:
		c.logger.Debug("ignoring unknown event",
			zap.String("client_id", c.id),
			zap.String("event", event))
		return nil
	}
}

// enqueue offers an envelope to the client without blocking. Reports
// whether the envelope was accepted.
func (c *Client) enqueue(env Envelope) bool {
	c.sendMu.RLock()
	defer c.sendMu.RUnlock()

	if c.closed {
		return false
	}
	select {
	case c.send <- env:
		return true
	default:
		return false
	}
}

// close shuts the send queue exactly once, which stops the write pump.
func (c *Client) close() {
	c.closeOnce.Do(func() {
		c.sendMu.Lock()
		c.closed = true
		close(c.send)
		c.sendMu.Unlock()
	})
}

func unmarshalPayload(data json.RawMessage, v any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}
