package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aescanero/pulse/pkg/domain"
)

// SocketNotificationRequest targets one user's notification channel
type SocketNotificationRequest struct {
	UserID       string         `json:"userId" binding:"required"`
	Notification map[string]any `json:"notification" binding:"required"`
}

// SocketBroadcastRequest carries a message for every connected client
type SocketBroadcastRequest struct {
	Message string `json:"message" binding:"required"`
}

// SocketSimulateRequest selects a relay event to simulate
type SocketSimulateRequest struct {
	EventType string `json:"eventType" binding:"required"`
}

// handleSocketInfo reports relay server information
func (s *Server) handleSocketInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message":          "Relay Server Info",
		"connectedClients": s.hub.ClientCount(),
		"timestamp":        domain.Timestamp(),
		"endpoints": gin.H{
			"POST /send-notification": "Enviar notificación a un usuario específico",
			"POST /broadcast":         "Enviar mensaje a todos los clientes",
			"GET /rooms":              "Obtener información de salas activas",
		},
	})
}

// handleSocketSendNotification pushes a notification to one user's
// channel
func (s *Server) handleSocketSendNotification(c *gin.Context) {
	var req SocketNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId y notification son requeridos"})
		return
	}

	if err := s.hub.SendNotification(req.UserID, req.Notification); err != nil {
		s.logger.Error("failed to send notification", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Notificación enviada",
		"userId":       req.UserID,
		"notification": req.Notification,
		"timestamp":    domain.Timestamp(),
	})
}

// handleSocketBroadcast pushes a message to every connected client
func (s *Server) handleSocketBroadcast(c *gin.Context) {
	var req SocketBroadcastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message es requerido"})
		return
	}

	if err := s.hub.BroadcastMessage(req.Message); err != nil {
		s.logger.Error("failed to broadcast", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Mensaje broadcast enviado",
		"content":   req.Message,
		"timestamp": domain.Timestamp(),
	})
}

// handleSocketRooms reports active rooms and their members
func (s *Server) handleSocketRooms(c *gin.Context) {
	rooms := s.hub.Rooms()

	c.JSON(http.StatusOK, gin.H{
		"message":    "Información de salas activas",
		"rooms":      rooms,
		"totalRooms": len(rooms),
		"timestamp":  domain.Timestamp(),
	})
}

// handleSocketSimulateEvents emits an example relay event
func (s *Server) handleSocketSimulateEvents(c *gin.Context) {
	var req SocketSimulateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "eventType es requerido"})
		return
	}

	var err error
	switch req.EventType {
	case "counter":
		err = s.hub.BroadcastCounter()
	case "notification":
		err = s.hub.BroadcastEvent("new_notification", gin.H{
			"title":   "Notificación de ejemplo",
			"message": "Esta es una notificación simulada",
			"type":    "info",
		})
	case "status":
		err = s.hub.BroadcastEvent("status_updated", gin.H{
			"userId":    "server",
			"status":    "online",
			"timestamp": domain.Timestamp(),
		})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "eventType debe ser: counter, notification, o status"})
		return
	}

	if err != nil {
		s.logger.Error("failed to simulate event", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Evento simulado enviado",
		"eventType": req.EventType,
		"timestamp": domain.Timestamp(),
	})
}
