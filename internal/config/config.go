package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all configuration for the pulse server
type Config struct {
	// Server configuration
	HTTPPort int    `env:"PULSE_HTTP_PORT" envDefault:"5001"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Allowed CORS origins for the HTTP and WebSocket surfaces
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"`

	// Auth configuration
	Auth AuthConfig

	// Redis configuration
	Redis RedisConfig

	// User database configuration
	Database DatabaseConfig

	// LLM configuration
	LLM LLMConfig

	// OAuth token-exchange configuration
	OAuth OAuthConfig

	// Event stream configuration
	Stream StreamConfig

	// Timeouts
	Timeouts TimeoutConfig
}

// AuthConfig holds token and password-hashing configuration
type AuthConfig struct {
	JWTSecret     string `env:"JWT_SECRET"`
	RefreshSecret string `env:"REFRESH_TOKEN_SECRET"`

	AccessTokenTTL  time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"24h"`
	RefreshTokenTTL time.Duration `env:"REFRESH_TOKEN_TTL" envDefault:"168h"`

	BcryptCost int `env:"BCRYPT_COST" envDefault:"10"`
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	Password string `env:"REDIS_PASS"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`

	// Connection pool settings
	PoolSize     int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	MaxRetries   int           `env:"REDIS_MAX_RETRIES" envDefault:"3"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"3s"`
}

// DatabaseConfig holds the user database configuration
type DatabaseConfig struct {
	Path string `env:"SQLITE_PATH" envDefault:"pulse.db"`
}

// LLMConfig holds chat-completion provider configuration
type LLMConfig struct {
	Provider string `env:"LLM_PROVIDER" envDefault:"anthropic"`
	APIKey   string `env:"LLM_API_KEY"`

	Model        string `env:"LLM_MODEL" envDefault:"claude-3-5-sonnet-20241022"`
	MaxTokens    int64  `env:"LLM_MAX_TOKENS" envDefault:"4096"`
	Instructions string `env:"LLM_INSTRUCTIONS" envDefault:"Eres un asistente que me ayuda con dudas de Kafka Apache"`

	RequestTimeout time.Duration `env:"LLM_REQUEST_TIMEOUT" envDefault:"120s"`
}

// OAuthConfig holds the upstream token endpoint configuration
type OAuthConfig struct {
	TokenURL string `env:"OAUTH_TOKEN_URL" envDefault:"https://127.0.0.1:9443/oauth2/token"`

	// The default upstream runs on localhost with a self-signed cert
	InsecureSkipVerify bool          `env:"OAUTH_INSECURE_SKIP_VERIFY" envDefault:"true"`
	Timeout            time.Duration `env:"OAUTH_TIMEOUT" envDefault:"10s"`
}

// StreamConfig holds event-stream registry configuration
type StreamConfig struct {
	HeartbeatInterval time.Duration `env:"SSE_HEARTBEAT_INTERVAL" envDefault:"30s"`
}

// TimeoutConfig holds various timeout configurations
type TimeoutConfig struct {
	ShutdownTimeout time.Duration `env:"TIMEOUT_SHUTDOWN" envDefault:"30s"`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}

	// Validate auth config
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if c.Auth.RefreshSecret == "" {
		return fmt.Errorf("refresh token secret is required")
	}
	if c.Auth.AccessTokenTTL <= 0 || c.Auth.RefreshTokenTTL <= 0 {
		return fmt.Errorf("token lifetimes must be positive")
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		return fmt.Errorf("invalid bcrypt cost: %d", c.Auth.BcryptCost)
	}

	// Validate Redis config
	if c.Redis.Addr == "" {
		return fmt.Errorf("redis address is required")
	}

	// Validate LLM config
	if c.LLM.Provider != "anthropic" {
		return fmt.Errorf("unsupported LLM provider: %s (only 'anthropic' is supported)", c.LLM.Provider)
	}

	// Validate stream config
	if c.Stream.HeartbeatInterval <= 0 {
		return fmt.Errorf("heartbeat interval must be positive")
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}

	return nil
}

// GetHTTPAddr returns the HTTP server address
func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}
