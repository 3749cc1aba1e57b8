package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aescanero/pulse/internal/auth"
	"github.com/aescanero/pulse/internal/config"
	"github.com/aescanero/pulse/internal/relay"
	"github.com/aescanero/pulse/internal/sse"
	"github.com/aescanero/pulse/pkg/adapters/llm"
	"github.com/aescanero/pulse/pkg/adapters/metrics/prometheus"
	"github.com/aescanero/pulse/pkg/adapters/oauth"
	redisstorage "github.com/aescanero/pulse/pkg/adapters/storage/redis"
	sqlitestorage "github.com/aescanero/pulse/pkg/adapters/storage/sqlite"
	"github.com/aescanero/pulse/pkg/api/http"
	"github.com/aescanero/pulse/pkg/api/websocket"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Version is set by build flags
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := initLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("starting pulse server",
		zap.String("version", Version),
		zap.String("build_time", BuildTime))

	// Initialize Redis client
	redisClient := goredis.NewClient(&goredis.Options{
		Addr:         cfg.Redis.Addr,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		MaxRetries:   cfg.Redis.MaxRetries,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})

	// Test Redis connection
	ctx := context.Background()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal("failed to connect to Redis", zap.Error(err))
	}
	logger.Info("connected to Redis", zap.String("addr", cfg.Redis.Addr))

	// Open the user database
	db, err := sqlitestorage.Open(cfg.Database.Path, logger)
	if err != nil {
		logger.Fatal("failed to open user database", zap.Error(err))
	}

	// Initialize adapters
	userRepo := sqlitestorage.NewUserRepository(db)
	tokenStore := redisstorage.NewRefreshTokenStore(redisClient, logger)
	metricsCollector := prometheus.NewCollector()

	chatStreamer, err := llm.NewStreamer(&llm.Config{
		Provider:     cfg.LLM.Provider,
		APIKey:       cfg.LLM.APIKey,
		Model:        cfg.LLM.Model,
		MaxTokens:    cfg.LLM.MaxTokens,
		Instructions: cfg.LLM.Instructions,
		Logger:       logger,
	})
	if err != nil {
		logger.Fatal("failed to create chat streamer", zap.Error(err))
	}

	exchanger := oauth.NewExchanger(&oauth.Config{
		TokenURL:           cfg.OAuth.TokenURL,
		InsecureSkipVerify: cfg.OAuth.InsecureSkipVerify,
		Timeout:            cfg.OAuth.Timeout,
		Logger:             logger,
	})

	// Initialize application components
	hasher := auth.NewPasswordHasher(cfg.Auth.BcryptCost)
	jwtManager := auth.NewJWTManager(auth.JWTConfig{
		AccessSecret:    cfg.Auth.JWTSecret,
		RefreshSecret:   cfg.Auth.RefreshSecret,
		AccessTokenTTL:  cfg.Auth.AccessTokenTTL,
		RefreshTokenTTL: cfg.Auth.RefreshTokenTTL,
		Issuer:          "pulse",
	})
	authService := auth.NewService(userRepo, tokenStore, hasher, jwtManager, logger, metricsCollector)

	hub := relay.NewHub(logger, metricsCollector)
	streams := sse.NewRegistry(cfg.Stream.HeartbeatInterval, logger, metricsCollector)

	// Initialize API server
	httpServer := http.NewServer(&http.Config{
		Port:            cfg.HTTPPort,
		CORSOrigins:     cfg.CORSOrigins,
		Hub:             hub,
		Streams:         streams,
		Auth:            authService,
		Users:           userRepo,
		OAuth:           exchanger,
		Chat:            chatStreamer,
		Logger:          logger,
		RefreshTokenTTL: cfg.Auth.RefreshTokenTTL,
	})

	// Add WebSocket handler to HTTP server
	wsHandler := websocket.NewHandler(hub, cfg.CORSOrigins, logger)
	httpServer.SetupWebSocket(wsHandler)

	// Start server
	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	logger.Info("pulse server started", zap.Int("http_port", cfg.HTTPPort))

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	logger.Info("received shutdown signal")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Timeouts.ShutdownTimeout)
	defer cancel()

	// Shutdown components
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	streams.Shutdown()
	hub.Shutdown()

	if err := redisClient.Close(); err != nil {
		logger.Error("Redis close error", zap.Error(err))
	}

	logger.Info("pulse server shut down complete")
}

// initLogger initializes the logger based on log level
func initLogger(level string) *zap.Logger {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(zapLevel)
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := config.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}

	return logger
}
