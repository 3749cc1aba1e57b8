package llm

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/aescanero/pulse/pkg/adapters/llm/anthropic"
	"github.com/aescanero/pulse/pkg/ports"
)

// Config holds chat-completion client configuration
type Config struct {
	Provider     string
	APIKey       string
	Model        string
	MaxTokens    int64
	Instructions string
	Logger       *zap.Logger
}

// NewStreamer creates a chat streamer based on provider
func NewStreamer(cfg *Config) (ports.ChatStreamer, error) {
	switch cfg.Provider {
	case "anthropic":
		return anthropic.NewClient(cfg.APIKey, cfg.Model, cfg.Instructions, cfg.MaxTokens, cfg.Logger), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}
