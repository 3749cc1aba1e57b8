package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector implements MetricsCollector using Prometheus
type Collector struct {
	socketConnections prometheus.Gauge
	streamConnections prometheus.Gauge
	messagesRelayed   *prometheus.CounterVec
	broadcastsSent    *prometheus.CounterVec
	authAttempts      *prometheus.CounterVec
}

// NewCollector creates a new Prometheus metrics collector
func NewCollector() *Collector {
	return &Collector{
		socketConnections: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "pulse_socket_connections",
			Help: "Current number of relay WebSocket connections",
		}),
		streamConnections: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "pulse_stream_connections",
			Help: "Current number of SSE connections",
		}),
		messagesRelayed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "pulse_messages_relayed_total",
			Help: "Total messages relayed between room members",
		}, []string{"event"}),
		broadcastsSent: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "pulse_broadcasts_total",
			Help: "Total server-initiated broadcasts",
		}, []string{"transport", "type"}),
		authAttempts: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "pulse_auth_attempts_total",
			Help: "Total login attempts by result",
		}, []string{"result"}),
	}
}

// SocketConnected increments the WebSocket connection gauge
func (c *Collector) SocketConnected() {
	c.socketConnections.Inc()
}

// SocketDisconnected decrements the WebSocket connection gauge
func (c *Collector) SocketDisconnected() {
	c.socketConnections.Dec()
}

// StreamOpened increments the SSE connection gauge
func (c *Collector) StreamOpened() {
	c.streamConnections.Inc()
}

// StreamClosed decrements the SSE connection gauge
func (c *Collector) StreamClosed() {
	c.streamConnections.Dec()
}

// MessageRelayed counts one relayed room message
func (c *Collector) MessageRelayed(event string) {
	c.messagesRelayed.WithLabelValues(event).Inc()
}

// BroadcastSent counts one server-initiated broadcast
func (c *Collector) BroadcastSent(transport, eventType string) {
	c.broadcastsSent.WithLabelValues(transport, eventType).Inc()
}

// AuthAttempt counts one login attempt
func (c *Collector) AuthAttempt(result string) {
	c.authAttempts.WithLabelValues(result).Inc()
}
