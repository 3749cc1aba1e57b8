package domain

import "time"

// Notification is a directed or broadcast user notification.
type Notification struct {
	Title   string `json:"title"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

// ChatPost is a chat message pushed over the event stream.
type ChatPost struct {
	Username  string `json:"username"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp,omitempty"`
}

// StreamStats reports the state of the event-stream registry.
type StreamStats struct {
	ActiveConnections int    `json:"activeConnections"`
	Timestamp         string `json:"timestamp"`
}

// Timestamp returns the wall-clock instant in the wire format used by
// every pushed event.
func Timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}
