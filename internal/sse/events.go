package sse

import (
	"github.com/aescanero/pulse/pkg/domain"
)

// Event type values pushed over the stream.
const (
	TypeConnection    = "connection"
	TypeWelcome       = "welcome"
	TypeHeartbeat     = "heartbeat"
	TypeNotification  = "notification"
	TypeDataUpdate    = "data_update"
	TypeCounterUpdate = "counter_update"
	TypeChatMessage   = "chat_message"
)

func eventConnection() map[string]any {
	return map[string]any{
		"type":      TypeConnection,
		"message":   "Conexión SSE establecida",
		"timestamp": domain.Timestamp(),
	}
}

func eventWelcome(connectionID string) map[string]any {
	return map[string]any{
		"type":         TypeWelcome,
		"message":      "¡Bienvenido al servidor SSE!",
		"connectionId": connectionID,
		"timestamp":    domain.Timestamp(),
	}
}

func eventHeartbeat() map[string]any {
	return map[string]any{
		"type":      TypeHeartbeat,
		"message":   "Ping del servidor",
		"timestamp": domain.Timestamp(),
	}
}

// BroadcastNotification pushes a notification to every connection.
func (r *Registry) BroadcastNotification(n domain.Notification) error {
	r.metrics.BroadcastSent("sse", TypeNotification)
	return r.Broadcast(map[string]any{
		"type":             TypeNotification,
		"title":            n.Title,
		"message":          n.Message,
		"notificationType": n.Type,
		"timestamp":        domain.Timestamp(),
	})
}

// BroadcastDataUpdate pushes an arbitrary data update to every
// connection.
func (r *Registry) BroadcastDataUpdate(data any) error {
	r.metrics.BroadcastSent("sse", TypeDataUpdate)
	return r.Broadcast(map[string]any{
		"type":      TypeDataUpdate,
		"data":      data,
		"timestamp": domain.Timestamp(),
	})
}

// BroadcastCounterUpdate pushes a counter value to every connection.
func (r *Registry) BroadcastCounterUpdate(count int) error {
	r.metrics.BroadcastSent("sse", TypeCounterUpdate)
	return r.Broadcast(map[string]any{
		"type":      TypeCounterUpdate,
		"count":     count,
		"timestamp": domain.Timestamp(),
	})
}

// BroadcastChatMessage pushes a chat message to every connection.
func (r *Registry) BroadcastChatMessage(msg domain.ChatPost) error {
	r.metrics.BroadcastSent("sse", TypeChatMessage)
	return r.Broadcast(map[string]any{
		"type":      TypeChatMessage,
		"message":   msg,
		"timestamp": domain.Timestamp(),
	})
}
