package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/aescanero/pulse/internal/auth"
	"github.com/aescanero/pulse/internal/relay"
	"github.com/aescanero/pulse/internal/sse"
	"github.com/aescanero/pulse/pkg/ports"
)

// refreshCookiePath scopes the refresh cookie to the refresh endpoint.
const refreshCookiePath = "/api/auth/refresh"

// Server represents the HTTP API server
type Server struct {
	router  *gin.Engine
	server  *http.Server
	hub     *relay.Hub
	streams *sse.Registry
	auth    *auth.Service
	users   ports.UserRepository
	oauth   ports.TokenExchanger
	chat    ports.ChatStreamer
	logger  *zap.Logger

	refreshTTL time.Duration
}

// Config holds HTTP server configuration
type Config struct {
	Port        int
	CORSOrigins []string

	Hub     *relay.Hub
	Streams *sse.Registry
	Auth    *auth.Service
	Users   ports.UserRepository
	OAuth   ports.TokenExchanger
	Chat    ports.ChatStreamer
	Logger  *zap.Logger

	RefreshTokenTTL time.Duration
}

// NewServer creates a new HTTP server
func NewServer(cfg *Config) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(cfg.Logger))
	router.Use(corsMiddleware(cfg.CORSOrigins))

	s := &Server{
		router:     router,
		hub:        cfg.Hub,
		streams:    cfg.Streams,
		auth:       cfg.Auth,
		users:      cfg.Users,
		oauth:      cfg.OAuth,
		chat:       cfg.Chat,
		logger:     cfg.Logger,
		refreshTTL: cfg.RefreshTokenTTL,
	}

	s.setupRoutes()

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: router,
	}

	return s
}

// setupRoutes configures API routes
func (s *Server) setupRoutes() {
	// Health check
	s.router.GET("/api/health", s.handleHealth)

	// Metrics
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Auth endpoints
	authGroup := s.router.Group("/api/auth")
	{
		authGroup.POST("/register", s.handleRegister)
		authGroup.POST("/login", s.handleLogin)
		authGroup.POST("/refresh", s.handleRefresh)
		authGroup.POST("/logout", s.handleLogout)
		authGroup.POST("/oauth/token", s.handleOAuthToken)
	}

	// User endpoints
	users := s.router.Group("/api/users")
	users.Use(authRequired(s.auth))
	{
		users.GET("/me", s.handleMe)
	}

	// Test endpoints
	s.router.GET("/api/test/delay", s.handleDelay)

	// Chat-completion streaming
	s.router.POST("/api/chat/stream", s.handleChatStream)

	// Room relay control surface
	socket := s.router.Group("/api/socket")
	{
		socket.GET("/info", s.handleSocketInfo)
		socket.POST("/send-notification", s.handleSocketSendNotification)
		socket.POST("/broadcast", s.handleSocketBroadcast)
		socket.GET("/rooms", s.handleSocketRooms)
		socket.POST("/simulate-events", s.handleSocketSimulateEvents)
	}

	// Event stream control surface
	sseGroup := s.router.Group("/api/sse")
	{
		sseGroup.GET("/events", s.handleStreamEvents)
		sseGroup.GET("/stats", s.handleStreamStats)
		sseGroup.GET("/info", s.handleStreamInfo)
		sseGroup.POST("/send-notification", s.handleStreamSendNotification)
		sseGroup.POST("/send-data-update", s.handleStreamSendDataUpdate)
		sseGroup.POST("/send-counter-update", s.handleStreamSendCounterUpdate)
		sseGroup.POST("/send-chat-message", s.handleStreamSendChatMessage)
		sseGroup.POST("/simulate-event", s.handleStreamSimulateEvent)
	}
}

// SetupWebSocket mounts the relay WebSocket handler.
func (s *Server) SetupWebSocket(handler interface{ HandleSocket(*gin.Context) }) {
	s.router.GET("/ws", handler.HandleSocket)
}

// Router exposes the gin engine for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}

	s.logger.Info("HTTP server shut down complete")
	return nil
}

// requestLogger is a middleware for request logging
func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		duration := time.Since(start)

		logger.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", duration),
			zap.String("client_ip", c.ClientIP()))
	}
}
