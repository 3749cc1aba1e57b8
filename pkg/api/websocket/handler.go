package websocket

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/aescanero/pulse/internal/relay"
)

// Handler upgrades HTTP requests into relay connections.
type Handler struct {
	hub      *relay.Hub
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

// NewHandler creates a WebSocket handler for the relay hub. origins
// lists the allowed Origin header values; an empty list allows all.
func NewHandler(hub *relay.Hub, origins []string, logger *zap.Logger) *Handler {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}

	return &Handler{
		hub:    hub,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if len(allowed) == 0 {
					return true
				}
				return allowed[r.Header.Get("Origin")]
			},
		},
	}
}

// HandleSocket upgrades the connection and runs the client pumps until
// the peer disconnects.
func (h *Handler) HandleSocket(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("failed to upgrade connection", zap.Error(err))
		return
	}

	client := relay.NewClient(h.hub, conn, h.logger)
	h.hub.Register(client)

	h.logger.Info("WebSocket connection established",
		zap.String("client_id", client.ID()),
		zap.String("client_ip", c.ClientIP()))

	go client.WritePump()
	client.ReadPump()
}
