package relay

import (
	"errors"
	"math/rand"
	"sync"

	"go.uber.org/zap"

	"github.com/aescanero/pulse/pkg/domain"
	"github.com/aescanero/pulse/pkg/ports"
)

// notificationRoom is the room prefix used for per-user notification
// channels. Any client that learns a user ID may join its channel; no
// membership check is enforced at this layer.
const notificationRoomPrefix = "notifications_"

var (
	// ErrClientNotRegistered is returned when an operation references a
	// client the hub does not know.
	ErrClientNotRegistered = errors.New("client not registered")
	// ErrEmptyRoom is returned when a room name is missing.
	ErrEmptyRoom = errors.New("room name is required")
)

// Hub maintains room membership and relays payloads among members.
// Rooms exist implicitly as the set of clients that joined a name; a
// room with no members is removed.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	rooms   map[string]map[string]*Client

	logger  *zap.Logger
	metrics ports.MetricsCollector
}

// RoomInfo describes one active room for the control surface.
type RoomInfo struct {
	Room        string   `json:"room"`
	ClientCount int      `json:"clientCount"`
	Clients     []string `json:"clients"`
}

// NewHub creates an empty relay hub.
func NewHub(logger *zap.Logger, metrics ports.MetricsCollector) *Hub {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	return &Hub{
		clients: make(map[string]*Client),
		rooms:   make(map[string]map[string]*Client),
		logger:  logger,
		metrics: metrics,
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c.id] = c
	h.mu.Unlock()

	h.metrics.SocketConnected()
	h.logger.Info("client connected", zap.String("client_id", c.id))
}

// Unregister removes a client from the hub and from every room it
// joined, then tells everyone else it left. Safe to call twice.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	_, known := h.clients[c.id]
	if known {
		delete(h.clients, c.id)
		for room := range c.rooms {
			h.leaveRoomLocked(c, room)
		}
	}
	others := h.snapshotLocked(c.id)
	h.mu.Unlock()

	if !known {
		return
	}

	h.metrics.SocketDisconnected()
	h.logger.Info("client disconnected", zap.String("client_id", c.id))

	h.deliver(others, Envelope{
		Event: "user_disconnected",
		Data:  map[string]any{"userId": c.id},
	})
	c.close()
}

// Join adds the client to the named room and notifies the room's other
// members. Joining a room twice has no additional effect.
func (h *Hub) Join(c *Client, room string) error {
	if room == "" {
		return ErrEmptyRoom
	}

	h.mu.Lock()
	if _, ok := h.clients[c.id]; !ok {
		h.mu.Unlock()
		return ErrClientNotRegistered
	}
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[string]*Client)
		h.rooms[room] = members
	}
	if _, already := members[c.id]; already {
		h.mu.Unlock()
		return nil
	}
	members[c.id] = c
	c.rooms[room] = struct{}{}
	others := membersExcept(members, c.id)
	h.mu.Unlock()

	h.logger.Info("client joined room",
		zap.String("client_id", c.id),
		zap.String("room", room))

	h.deliver(others, Envelope{
		Event: "user_joined",
		Data:  map[string]any{"userId": c.id, "room": room},
	})
	return nil
}

// Relay delivers a chat message to every member of the room except the
// sender, enriched with the sender ID and a server timestamp.
func (h *Hub) Relay(c *Client, room, message, username string) error {
	if room == "" {
		return ErrEmptyRoom
	}
	if username == "" {
		username = "Anónimo"
	}

	h.mu.RLock()
	others := membersExcept(h.rooms[room], c.id)
	h.mu.RUnlock()

	h.metrics.MessageRelayed("receive_message")
	h.deliver(others, Envelope{
		Event: "receive_message",
		Data: map[string]any{
			"userId":    c.id,
			"message":   message,
			"timestamp": domain.Timestamp(),
			"username":  username,
		},
	})
	return nil
}

// SubscribeNotifications joins the client to the notification channel
// for the given user ID.
func (h *Hub) SubscribeNotifications(c *Client, userID string) error {
	if userID == "" {
		return errors.New("user id is required")
	}
	return h.Join(c, notificationRoomPrefix+userID)
}

// SendNotification delivers a timestamped notification to every member
// of the user's notification channel. Delivering to an empty channel is
// not an error.
func (h *Hub) SendNotification(userID string, notification map[string]any) error {
	if userID == "" {
		return errors.New("user id is required")
	}

	data := make(map[string]any, len(notification)+1)
	for k, v := range notification {
		data[k] = v
	}
	data["timestamp"] = domain.Timestamp()

	h.mu.RLock()
	members := membersExcept(h.rooms[notificationRoomPrefix+userID], "")
	h.mu.RUnlock()

	h.metrics.BroadcastSent("websocket", "new_notification")
	h.deliver(members, Envelope{Event: "new_notification", Data: data})
	return nil
}

// BroadcastStatus delivers a status update to every connected client
// except the sender.
func (h *Hub) BroadcastStatus(c *Client, status string) error {
	h.mu.RLock()
	others := h.snapshotLocked(c.id)
	h.mu.RUnlock()

	h.metrics.BroadcastSent("websocket", "status_updated")
	h.deliver(others, Envelope{
		Event: "status_updated",
		Data: map[string]any{
			"userId":    c.id,
			"status":    status,
			"timestamp": domain.Timestamp(),
		},
	})
	return nil
}

// BroadcastCounter pushes a simulated counter value to every connected
// client, the requester included. The value carries no state.
func (h *Hub) BroadcastCounter() error {
	return h.BroadcastEvent("counter_updated", map[string]any{
		"count": rand.Intn(100),
	})
}

// BroadcastMessage delivers a timestamped message to every connected
// client.
func (h *Hub) BroadcastMessage(message string) error {
	h.metrics.BroadcastSent("websocket", "broadcast_message")
	return h.BroadcastEvent("broadcast_message", map[string]any{
		"message":   message,
		"timestamp": domain.Timestamp(),
	})
}

// BroadcastEvent delivers an arbitrary event to every connected client.
func (h *Hub) BroadcastEvent(event string, data any) error {
	h.mu.RLock()
	all := h.snapshotLocked("")
	h.mu.RUnlock()

	h.deliver(all, Envelope{Event: event, Data: data})
	return nil
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Rooms returns a snapshot of every active room and its members.
func (h *Hub) Rooms() []RoomInfo {
	h.mu.RLock()
	defer h.mu.RUnlock()

	infos := make([]RoomInfo, 0, len(h.rooms))
	for name, members := range h.rooms {
		info := RoomInfo{Room: name, ClientCount: len(members), Clients: make([]string, 0, len(members))}
		for id := range members {
			info.Clients = append(info.Clients, id)
		}
		infos = append(infos, info)
	}
	return infos
}

// Shutdown disconnects every client.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		h.Unregister(c)
	}
}

// leaveRoomLocked removes the client from one room, deleting the room
// when it empties. Caller holds h.mu.
func (h *Hub) leaveRoomLocked(c *Client, room string) {
	members, ok := h.rooms[room]
	if !ok {
		return
	}
	delete(members, c.id)
	if len(members) == 0 {
		delete(h.rooms, room)
	}
}

// snapshotLocked copies the connected clients, skipping exceptID.
// Caller holds h.mu (read or write).
func (h *Hub) snapshotLocked(exceptID string) []*Client {
	out := make([]*Client, 0, len(h.clients))
	for id, c := range h.clients {
		if id == exceptID {
			continue
		}
		out = append(out, c)
	}
	return out
}

// deliver enqueues an envelope on every target. Delivery is best
// effort; a client with a full queue misses the event.
func (h *Hub) deliver(targets []*Client, env Envelope) {
	for _, c := range targets {
		if !c.enqueue(env) {
			h.logger.Warn("client send queue full, dropping event",
				zap.String("client_id", c.id),
				zap.String("event", env.Event))
		}
	}
}

func membersExcept(members map[string]*Client, exceptID string) []*Client {
	out := make([]*Client, 0, len(members))
	for id, c := range members {
		if id == exceptID {
			continue
		}
		out = append(out, c)
	}
	return out
}
