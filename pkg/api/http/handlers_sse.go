package http

import (
	"errors"
	"math/rand"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aescanero/pulse/internal/sse"
	"github.com/aescanero/pulse/pkg/domain"
)

// StreamNotificationRequest is a notification for every SSE client
type StreamNotificationRequest struct {
	Title   string `json:"title" binding:"required"`
	Message string `json:"message" binding:"required"`
	Type    string `json:"type"`
}

// StreamDataUpdateRequest carries an arbitrary data update
type StreamDataUpdateRequest struct {
	Data any `json:"data" binding:"required"`
}

// StreamCounterRequest carries a counter value. A pointer
// distinguishes a missing count from zero.
type StreamCounterRequest struct {
	Count *int `json:"count" binding:"required"`
}

// StreamChatMessageRequest is a chat message for every SSE client
type StreamChatMessageRequest struct {
	Username string `json:"username" binding:"required"`
	Message  string `json:"message" binding:"required"`
}

// StreamSimulateRequest selects a stream event to simulate
type StreamSimulateRequest struct {
	EventType string         `json:"eventType" binding:"required"`
	Data      map[string]any `json:"data"`
}

// handleStreamEvents establishes a long-lived SSE connection
func (s *Server) handleStreamEvents(c *gin.Context) {
	if err := s.streams.Serve(c.Writer, c.Request); err != nil {
		s.logger.Error("failed to open stream", zap.Error(err))
		// Any other failure happens after the 200 is committed, so a
		// JSON error body can no longer be written.
		if errors.Is(err, sse.ErrStreamingUnsupported) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Streaming not supported"})
		}
	}
}

// handleStreamStats reports the registered-connection count
func (s *Server) handleStreamStats(c *gin.Context) {
	stats := s.streams.Stats()
	c.JSON(http.StatusOK, gin.H{
		"message":           "Estadísticas de conexiones SSE",
		"activeConnections": stats.ActiveConnections,
		"timestamp":         stats.Timestamp,
	})
}

// handleStreamSendNotification broadcasts a notification
func (s *Server) handleStreamSendNotification(c *gin.Context) {
	var req StreamNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title y message son requeridos"})
		return
	}
	if req.Type == "" {
		req.Type = "info"
	}

	notification := domain.Notification{Title: req.Title, Message: req.Message, Type: req.Type}
	if err := s.streams.BroadcastNotification(notification); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Notificación enviada a todos los clientes SSE",
		"notification": notification,
		"timestamp":    domain.Timestamp(),
	})
}

// handleStreamSendDataUpdate broadcasts a data update
func (s *Server) handleStreamSendDataUpdate(c *gin.Context) {
	var req StreamDataUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "data es requerido"})
		return
	}

	if err := s.streams.BroadcastDataUpdate(req.Data); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Actualización de datos enviada",
		"data":      req.Data,
		"timestamp": domain.Timestamp(),
	})
}

// handleStreamSendCounterUpdate broadcasts a counter value
func (s *Server) handleStreamSendCounterUpdate(c *gin.Context) {
	var req StreamCounterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "count es requerido"})
		return
	}

	if err := s.streams.BroadcastCounterUpdate(*req.Count); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Actualización de contador enviada",
		"count":     *req.Count,
		"timestamp": domain.Timestamp(),
	})
}

// handleStreamSendChatMessage broadcasts a chat message
func (s *Server) handleStreamSendChatMessage(c *gin.Context) {
	var req StreamChatMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username y message son requeridos"})
		return
	}

	msg := domain.ChatPost{Username: req.Username, Message: req.Message, Timestamp: domain.Timestamp()}
	if err := s.streams.BroadcastChatMessage(msg); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Mensaje de chat enviado",
		"chatMessage": gin.H{"username": req.Username, "message": req.Message},
		"timestamp":   domain.Timestamp(),
	})
}

// handleStreamSimulateEvent broadcasts an example event of the chosen
// type, filling missing fields with sample data
func (s *Server) handleStreamSimulateEvent(c *gin.Context) {
	var req StreamSimulateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "eventType es requerido"})
		return
	}

	var err error
	switch req.EventType {
	case "notification":
		err = s.streams.BroadcastNotification(domain.Notification{
			Title:   stringField(req.Data, "title", "Notificación simulada"),
			Message: stringField(req.Data, "message", "Esta es una notificación de ejemplo"),
			Type:    stringField(req.Data, "type", "info"),
		})
	case "data_update":
		data := any(req.Data)
		if req.Data == nil {
			data = gin.H{
				"users":    rand.Intn(100),
				"messages": rand.Intn(500),
			}
		}
		err = s.streams.BroadcastDataUpdate(data)
	case "counter":
		count := rand.Intn(100)
		if v, ok := req.Data["count"].(float64); ok {
			count = int(v)
		}
		err = s.streams.BroadcastCounterUpdate(count)
	case "chat":
		err = s.streams.BroadcastChatMessage(domain.ChatPost{
			Username: stringField(req.Data, "username", "Usuario"),
			Message:  stringField(req.Data, "message", "Mensaje de ejemplo"),
		})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "eventType debe ser: notification, data_update, counter, o chat"})
		return
	}

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Evento SSE simulado enviado",
		"eventType": req.EventType,
		"data":      req.Data,
		"timestamp": domain.Timestamp(),
	})
}

// handleStreamInfo describes the SSE surface
func (s *Server) handleStreamInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Server-Sent Events (SSE) Info",
		"endpoints": gin.H{
			"GET /events":               "Establecer conexión SSE",
			"GET /stats":                "Obtener estadísticas de conexiones",
			"POST /send-notification":   "Enviar notificación a todos",
			"POST /send-data-update":    "Enviar actualización de datos",
			"POST /send-counter-update": "Enviar actualización de contador",
			"POST /send-chat-message":   "Enviar mensaje de chat",
			"POST /simulate-event":      "Simular diferentes tipos de eventos",
		},
		"eventTypes": []string{
			"connection",
			"welcome",
			"heartbeat",
			"notification",
			"data_update",
			"counter_update",
			"chat_message",
		},
		"timestamp": domain.Timestamp(),
	})
}

func stringField(data map[string]any, key, fallback string) string {
	if v, ok := data[key].(string); ok && v != "" {
		return v
	}
	return fallback
}
