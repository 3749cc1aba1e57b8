package relay

import (
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aescanero/pulse/pkg/ports"
)

func newTestHub() *Hub {
	return NewHub(zap.NewNop(), ports.NopMetrics{})
}

func newTestClient(t *testing.T, h *Hub) *Client {
	t.Helper()
	c := &Client{
		id:     uuid.NewString(),
		hub:    h,
		send:   make(chan Envelope, sendQueueSize),
		rooms:  make(map[string]struct{}),
		logger: zap.NewNop(),
	}
	h.Register(c)
	return c
}

// received drains everything queued for the client. A closed send
// channel yields zero values forever, so the receive must check ok or
// the drain would never terminate.
func received(c *Client) []Envelope {
	var out []Envelope
	for {
		select {
		case env, ok := <-c.send:
			if !ok {
				return out
			}
			out = append(out, env)
		default:
			return out
		}
	}
}

func payload(t *testing.T, env Envelope) map[string]any {
	t.Helper()
	data, ok := env.Data.(map[string]any)
	if !ok {
		t.Fatalf("expected map payload, got %T", env.Data)
	}
	return data
}

func TestJoinIdempotent(t *testing.T) {
	h := newTestHub()
	a := newTestClient(t, h)
	b := newTestClient(t, h)

	for i := 0; i < 3; i++ {
		if err := h.Join(a, "lobby"); err != nil {
			t.Fatalf("join failed: %v", err)
		}
	}
	if err := h.Join(b, "lobby"); err != nil {
		t.Fatalf("join failed: %v", err)
	}

	members := h.rooms["lobby"]
	if len(members) != 2 {
		t.Fatalf("expected 2 members, got %d", len(members))
	}

	// a was alone for its joins, so only b's join produced an event.
	events := received(a)
	if len(events) != 1 || events[0].Event != "user_joined" {
		t.Fatalf("expected one user_joined for a, got %v", events)
	}
	data := payload(t, events[0])
	if data["userId"] != b.id || data["room"] != "lobby" {
		t.Fatalf("unexpected user_joined payload: %v", data)
	}

	// The joiner itself receives nothing.
	if events := received(b); len(events) != 0 {
		t.Fatalf("expected no events for joiner, got %v", events)
	}
}

func TestJoinRequiresRegistration(t *testing.T) {
	h := newTestHub()
	c := &Client{
		id:     uuid.NewString(),
		hub:    h,
		send:   make(chan Envelope, 1),
		rooms:  make(map[string]struct{}),
		logger: zap.NewNop(),
	}

	if err := h.Join(c, "lobby"); err != ErrClientNotRegistered {
		t.Fatalf("expected ErrClientNotRegistered, got %v", err)
	}
	if err := h.Join(newTestClient(t, h), ""); err != ErrEmptyRoom {
		t.Fatalf("expected ErrEmptyRoom, got %v", err)
	}
}

func TestRelayExcludesSender(t *testing.T) {
	h := newTestHub()
	a := newTestClient(t, h)
	b := newTestClient(t, h)

	if err := h.Join(a, "lobby"); err != nil {
		t.Fatalf("join failed: %v", err)
	}
	if err := h.Join(b, "lobby"); err != nil {
		t.Fatalf("join failed: %v", err)
	}
	received(a)
	received(b)

	if err := h.Relay(a, "lobby", "hi", ""); err != nil {
		t.Fatalf("relay failed: %v", err)
	}

	events := received(b)
	if len(events) != 1 || events[0].Event != "receive_message" {
		t.Fatalf("expected one receive_message for b, got %v", events)
	}
	data := payload(t, events[0])
	if data["userId"] != a.id {
		t.Errorf("expected sender %s, got %v", a.id, data["userId"])
	}
	if data["message"] != "hi" {
		t.Errorf("expected message hi, got %v", data["message"])
	}
	if data["username"] != "Anónimo" {
		t.Errorf("expected default username, got %v", data["username"])
	}
	if data["timestamp"] == "" || data["timestamp"] == nil {
		t.Error("expected a timestamp")
	}

	if events := received(a); len(events) != 0 {
		t.Fatalf("sender must not receive its own relay, got %v", events)
	}
}

func TestRelayDeliversToEveryOtherMemberOnce(t *testing.T) {
	h := newTestHub()
	sender := newTestClient(t, h)
	members := []*Client{newTestClient(t, h), newTestClient(t, h), newTestClient(t, h)}
	outsider := newTestClient(t, h)

	_ = h.Join(sender, "sala")
	for _, m := range members {
		_ = h.Join(m, "sala")
	}
	received(sender)
	for _, m := range members {
		received(m)
	}

	if err := h.Relay(sender, "sala", "hola", "pepe"); err != nil {
		t.Fatalf("relay failed: %v", err)
	}

	for i, m := range members {
		events := received(m)
		if len(events) != 1 {
			t.Fatalf("member %d expected exactly one message, got %d", i, len(events))
		}
		if payload(t, events[0])["username"] != "pepe" {
			t.Errorf("member %d got wrong username", i)
		}
	}
	if events := received(outsider); len(events) != 0 {
		t.Fatalf("non-member must not receive relays, got %v", events)
	}
}

func TestNotificationChannel(t *testing.T) {
	h := newTestHub()
	subscriber := newTestClient(t, h)
	other := newTestClient(t, h)

	if err := h.SubscribeNotifications(subscriber, "user42"); err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	if err := h.SendNotification("user42", map[string]any{"title": "hola"}); err != nil {
		t.Fatalf("send notification failed: %v", err)
	}

	events := received(subscriber)
	if len(events) != 1 || events[0].Event != "new_notification" {
		t.Fatalf("expected one new_notification, got %v", events)
	}
	data := payload(t, events[0])
	if data["title"] != "hola" {
		t.Errorf("expected notification fields preserved, got %v", data)
	}
	if data["timestamp"] == nil {
		t.Error("expected a timestamp")
	}

	if events := received(other); len(events) != 0 {
		t.Fatalf("non-subscriber must not receive notifications, got %v", events)
	}

	// Empty channels drop silently.
	if err := h.SendNotification("nobody", map[string]any{"title": "x"}); err != nil {
		t.Fatalf("notification to empty channel must not fail: %v", err)
	}
}

func TestBroadcastStatusExcludesSender(t *testing.T) {
	h := newTestHub()
	a := newTestClient(t, h)
	b := newTestClient(t, h)
	c := newTestClient(t, h)

	if err := h.BroadcastStatus(a, "online"); err != nil {
		t.Fatalf("broadcast status failed: %v", err)
	}

	for _, target := range []*Client{b, c} {
		events := received(target)
		if len(events) != 1 || events[0].Event != "status_updated" {
			t.Fatalf("expected one status_updated, got %v", events)
		}
		data := payload(t, events[0])
		if data["userId"] != a.id || data["status"] != "online" {
			t.Fatalf("unexpected status payload: %v", data)
		}
	}
	if events := received(a); len(events) != 0 {
		t.Fatalf("sender must not receive its own status, got %v", events)
	}
}

func TestBroadcastMessageReachesEveryone(t *testing.T) {
	h := newTestHub()
	clients := []*Client{newTestClient(t, h), newTestClient(t, h)}

	if err := h.BroadcastMessage("hola a todos"); err != nil {
		t.Fatalf("broadcast failed: %v", err)
	}

	for i, c := range clients {
		events := received(c)
		if len(events) != 1 || events[0].Event != "broadcast_message" {
			t.Fatalf("client %d expected one broadcast_message, got %v", i, events)
		}
	}
}

func TestBroadcastCounter(t *testing.T) {
	h := newTestHub()
	c := newTestClient(t, h)

	if err := h.BroadcastCounter(); err != nil {
		t.Fatalf("broadcast counter failed: %v", err)
	}

	events := received(c)
	if len(events) != 1 || events[0].Event != "counter_updated" {
		t.Fatalf("expected one counter_updated, got %v", events)
	}
	count, ok := payload(t, events[0])["count"].(int)
	if !ok || count < 0 || count > 99 {
		t.Fatalf("expected count in [0,99], got %v", payload(t, events[0])["count"])
	}
}

func TestUnregisterRemovesFromEveryRoom(t *testing.T) {
	h := newTestHub()
	a := newTestClient(t, h)
	b := newTestClient(t, h)

	_ = h.Join(a, "lobby")
	_ = h.Join(a, "extra")
	_ = h.Join(b, "lobby")
	received(a)
	received(b)

	h.Unregister(a)

	if _, ok := h.rooms["extra"]; ok {
		t.Error("empty room must be removed")
	}
	if _, ok := h.rooms["lobby"][a.id]; ok {
		t.Error("unregistered client must leave every room")
	}

	events := received(b)
	if len(events) != 1 || events[0].Event != "user_disconnected" {
		t.Fatalf("expected one user_disconnected, got %v", events)
	}
	if payload(t, events[0])["userId"] != a.id {
		t.Fatalf("unexpected user_disconnected payload: %v", events[0].Data)
	}

	// Relays after disconnect never target the removed client: its
	// queue is closed and accepts nothing.
	if err := h.Relay(b, "lobby", "anyone there?", ""); err != nil {
		t.Fatalf("relay failed: %v", err)
	}
	if events := received(a); len(events) != 0 {
		t.Fatalf("disconnected client must receive nothing, got %v", events)
	}
	if a.enqueue(Envelope{Event: "x"}) {
		t.Fatal("disconnected client's queue must be closed")
	}

	// Double unregister is a no-op.
	h.Unregister(a)
	if h.ClientCount() != 1 {
		t.Fatalf("expected 1 client, got %d", h.ClientCount())
	}
}

func TestRoomsSnapshot(t *testing.T) {
	h := newTestHub()
	a := newTestClient(t, h)
	b := newTestClient(t, h)

	_ = h.Join(a, "lobby")
	_ = h.Join(b, "lobby")
	_ = h.Join(b, "sala")

	rooms := h.Rooms()
	if len(rooms) != 2 {
		t.Fatalf("expected 2 rooms, got %d", len(rooms))
	}
	byName := make(map[string]RoomInfo)
	for _, r := range rooms {
		byName[r.Room] = r
	}
	if byName["lobby"].ClientCount != 2 {
		t.Errorf("expected 2 clients in lobby, got %d", byName["lobby"].ClientCount)
	}
	if byName["sala"].ClientCount != 1 {
		t.Errorf("expected 1 client in sala, got %d", byName["sala"].ClientCount)
	}
}
