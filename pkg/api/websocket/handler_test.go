package websocket

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/aescanero/pulse/internal/relay"
)

type wireEnvelope struct {
	Event string         `json:"event"`
	Data  map[string]any `json:"data"`
}

func newRelayServer(t *testing.T) (*httptest.Server, *relay.Hub) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hub := relay.NewHub(zap.NewNop(), nil)
	handler := NewHandler(hub, nil, zap.NewNop())

	router := gin.New()
	router.GET("/ws", handler.HandleSocket)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	t.Cleanup(hub.Shutdown)
	return server, hub
}

func dial(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readEnvelope(t *testing.T, conn *websocket.Conn) wireEnvelope {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var env wireEnvelope
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("read failed: %v", err)
	}
	return env
}

func sendEnvelope(t *testing.T, conn *websocket.Conn, event string, data map[string]any) {
	t.Helper()
	if err := conn.WriteJSON(map[string]any{"event": event, "data": data}); err != nil {
		t.Fatalf("write failed: %v", err)
	}
}

func waitForClients(t *testing.T, hub *relay.Hub, want int) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for hub.ClientCount() != want {
		select {
		case <-deadline:
			t.Fatalf("expected %d clients, got %d", want, hub.ClientCount())
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func waitForRoomSize(t *testing.T, hub *relay.Hub, room string, want int) {
	t.Helper()
	size := func() int {
		for _, info := range hub.Rooms() {
			if info.Room == room {
				return info.ClientCount
			}
		}
		return 0
	}
	deadline := time.After(2 * time.Second)
	for size() != want {
		select {
		case <-deadline:
			t.Fatalf("expected %d members in %s, got %d", want, room, size())
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestRoomMessageRoundtrip(t *testing.T) {
	server, hub := newRelayServer(t)

	first := dial(t, server)
	second := dial(t, server)
	waitForClients(t, hub, 2)

	sendEnvelope(t, first, "join_room", map[string]any{"room": "sala"})
	waitForRoomSize(t, hub, "sala", 1)
	sendEnvelope(t, second, "join_room", map[string]any{"room": "sala"})

	// The first member sees the second one arrive.
	env := readEnvelope(t, first)
	if env.Event != "user_joined" {
		t.Fatalf("expected user_joined, got %q", env.Event)
	}
	if env.Data["room"] != "sala" {
		t.Fatalf("unexpected join payload: %v", env.Data)
	}

	sendEnvelope(t, second, "send_message", map[string]any{
		"room":     "sala",
		"message":  "hola",
		"username": "ana",
	})

	env = readEnvelope(t, first)
	if env.Event != "receive_message" {
		t.Fatalf("expected receive_message, got %q", env.Event)
	}
	if env.Data["message"] != "hola" || env.Data["username"] != "ana" {
		t.Fatalf("unexpected message payload: %v", env.Data)
	}
	if env.Data["timestamp"] == nil {
		t.Fatal("expected a timestamp")
	}
}

func TestDisconnectNotifiesRoom(t *testing.T) {
	server, hub := newRelayServer(t)

	first := dial(t, server)
	second := dial(t, server)
	waitForClients(t, hub, 2)

	sendEnvelope(t, first, "join_room", map[string]any{"room": "sala"})
	waitForRoomSize(t, hub, "sala", 1)
	sendEnvelope(t, second, "join_room", map[string]any{"room": "sala"})
	if env := readEnvelope(t, first); env.Event != "user_joined" {
		t.Fatalf("expected user_joined, got %q", env.Event)
	}

	_ = second.Close()

	env := readEnvelope(t, first)
	if env.Event != "user_disconnected" {
		t.Fatalf("expected user_disconnected, got %q", env.Event)
	}
	waitForClients(t, hub, 1)
}

func TestOriginCheck(t *testing.T) {
	gin.SetMode(gin.TestMode)

	hub := relay.NewHub(zap.NewNop(), nil)
	defer hub.Shutdown()
	handler := NewHandler(hub, []string{"http://localhost:5173"}, zap.NewNop())

	router := gin.New()
	router.GET("/ws", handler.HandleSocket)
	server := httptest.NewServer(router)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"

	headers := map[string][]string{"Origin": {"http://evil.example"}}
	if conn, _, err := websocket.DefaultDialer.Dial(url, headers); err == nil {
		conn.Close()
		t.Fatal("expected the dial to be rejected for a disallowed origin")
	}

	headers = map[string][]string{"Origin": {"http://localhost:5173"}}
	conn, _, err := websocket.DefaultDialer.Dial(url, headers)
	if err != nil {
		t.Fatalf("allowed origin must connect: %v", err)
	}
	conn.Close()
}
