package sse

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aescanero/pulse/pkg/domain"
	"github.com/aescanero/pulse/pkg/ports"
)

var (
	// ErrStreamingUnsupported is returned when the response writer
	// cannot flush, so a long-lived stream cannot be established.
	ErrStreamingUnsupported = errors.New("response writer does not support streaming")
	// ErrUnknownConnection is returned when pushing to a connection
	// that is not (or no longer) registered.
	ErrUnknownConnection = errors.New("unknown stream connection")
)

// Registry tracks one-way event-stream connections and pushes JSON
// events to them in the text/event-stream format.
type Registry struct {
	mu          sync.RWMutex
	connections map[string]*connection

	heartbeat time.Duration
	logger    *zap.Logger
	metrics   ports.MetricsCollector
}

// connection is one registered stream. Writes are serialized by wmu
// because the heartbeat ticker and broadcasts run concurrently.
type connection struct {
	id string

	wmu     sync.Mutex
	w       http.ResponseWriter
	flusher http.Flusher

	done      chan struct{}
	closeOnce sync.Once
}

// NewRegistry creates an empty stream registry. heartbeat is the
// keep-alive period for every connection.
func NewRegistry(heartbeat time.Duration, logger *zap.Logger, metrics ports.MetricsCollector) *Registry {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	return &Registry{
		connections: make(map[string]*connection),
		heartbeat:   heartbeat,
		logger:      logger,
		metrics:     metrics,
	}
}

// Open switches the response into streaming mode, registers the
// connection, pushes the connection and welcome events, and starts the
// keep-alive ticker. It returns the assigned connection ID.
func (r *Registry) Open(w http.ResponseWriter) (string, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return "", ErrStreamingUnsupported
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Headers", "Cache-Control")
	w.WriteHeader(http.StatusOK)

	conn := &connection{
		id:      uuid.NewString(),
		w:       w,
		flusher: flusher,
		done:    make(chan struct{}),
	}

	if err := conn.write(eventConnection()); err != nil {
		return "", fmt.Errorf("failed to write connection event: %w", err)
	}

	r.mu.Lock()
	r.connections[conn.id] = conn
	r.mu.Unlock()
	r.metrics.StreamOpened()

	r.logger.Info("stream connection opened", zap.String("connection_id", conn.id))

	// Welcome goes through the registry so a failed write tears the
	// connection down like any other push.
	_ = r.PushTo(conn.id, eventWelcome(conn.id))

	go r.heartbeatLoop(conn)

	return conn.id, nil
}

// Serve opens a stream on the response and blocks until the client
// disconnects, then removes the connection.
func (r *Registry) Serve(w http.ResponseWriter, req *http.Request) error {
	id, err := r.Open(w)
	if err != nil {
		return err
	}
	<-req.Context().Done()
	r.Close(id)
	return nil
}

// PushTo writes an event to one connection. A failed write removes the
// connection from the registry.
func (r *Registry) PushTo(id string, event map[string]any) error {
	r.mu.RLock()
	conn, ok := r.connections[id]
	r.mu.RUnlock()
	if !ok {
		return ErrUnknownConnection
	}

	if err := conn.write(event); err != nil {
		r.logger.Warn("stream write failed, removing connection",
			zap.String("connection_id", id),
			zap.Error(err))
		r.Close(id)
		return fmt.Errorf("failed to push event: %w", err)
	}
	return nil
}

// Broadcast writes an event to every registered connection. Failed
// connections are collected during the pass and removed afterwards so
// one dead peer cannot block delivery to the rest.
func (r *Registry) Broadcast(event map[string]any) error {
	r.mu.RLock()
	conns := make([]*connection, 0, len(r.connections))
	for _, conn := range r.connections {
		conns = append(conns, conn)
	}
	r.mu.RUnlock()

	var failed []string
	for _, conn := range conns {
		if err := conn.write(event); err != nil {
			r.logger.Warn("stream write failed during broadcast",
				zap.String("connection_id", conn.id),
				zap.Error(err))
			failed = append(failed, conn.id)
		}
	}

	for _, id := range failed {
		r.Close(id)
	}
	return nil
}

// Stats returns the registered-connection count and a timestamp.
func (r *Registry) Stats() domain.StreamStats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return domain.StreamStats{
		ActiveConnections: len(r.connections),
		Timestamp:         domain.Timestamp(),
	}
}

// Close removes a connection and stops its keep-alive ticker. Safe to
// call more than once; close and error paths may both land here.
func (r *Registry) Close(id string) {
	r.mu.Lock()
	conn, ok := r.connections[id]
	if ok {
		delete(r.connections, id)
	}
	r.mu.Unlock()

	if !ok {
		return
	}

	conn.closeOnce.Do(func() {
		close(conn.done)
	})
	r.metrics.StreamClosed()
	r.logger.Info("stream connection closed", zap.String("connection_id", id))
}

// Shutdown removes every connection.
func (r *Registry) Shutdown() {
	r.mu.RLock()
	ids := make([]string, 0, len(r.connections))
	for id := range r.connections {
		ids = append(ids, id)
	}
	r.mu.RUnlock()

	for _, id := range ids {
		r.Close(id)
	}
}

// heartbeatLoop pushes a keep-alive event on a fixed period until the
// connection is closed.
func (r *Registry) heartbeatLoop(conn *connection) {
	ticker := time.NewTicker(r.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-conn.done:
			return
		case <-ticker.C:
			// PushTo removes the connection on write failure, which
			// closes done and ends the loop.
			_ = r.PushTo(conn.id, eventHeartbeat())
		}
	}
}

// write serializes the event and writes one SSE frame.
func (c *connection) write(event map[string]any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	c.wmu.Lock()
	defer c.wmu.Unlock()

	if _, err := fmt.Fprintf(c.w, "data: %s\n\n", data); err != nil {
		return err
	}
	c.flusher.Flush()
	return nil
}
