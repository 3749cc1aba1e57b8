package anthropic

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"

	"github.com/aescanero/pulse/pkg/domain"
)

// Client streams chat completions from the Anthropic Messages API.
type Client struct {
	client       anthropic.Client
	model        string
	maxTokens    int64
	instructions string
	logger       *zap.Logger
}

// NewClient creates an Anthropic chat streamer.
func NewClient(apiKey, model, instructions string, maxTokens int64, logger *zap.Logger) *Client {
	return &Client{
		client:       anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:        model,
		maxTokens:    maxTokens,
		instructions: instructions,
		logger:       logger,
	}
}

// StreamChat streams a completion for the conversation, calling emit
// once per frame: a start marker when a content block opens, a content
// frame per text delta, and a done frame carrying the full message
// history including the assistant's reply.
func (c *Client) StreamChat(ctx context.Context, messages []domain.ChatMessage, emit func(domain.ChatChunk) error) error {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: c.maxTokens,
		Messages:  c.buildMessages(messages),
	}
	if system := c.buildSystem(messages); system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	stream := c.client.Messages.NewStreaming(ctx, params)

	var reply strings.Builder
	for stream.Next() {
		event := stream.Current()

		switch ev := event.AsAny().(type) {
		case anthropic.ContentBlockStartEvent:
			if err := emit(domain.ChatChunk{Start: true, Type: string(ev.ContentBlock.Type)}); err != nil {
				return err
			}
		case anthropic.ContentBlockDeltaEvent:
			if delta, ok := ev.Delta.AsAny().(anthropic.TextDelta); ok && delta.Text != "" {
				reply.WriteString(delta.Text)
				if err := emit(domain.ChatChunk{Content: delta.Text}); err != nil {
					return err
				}
			}
		}
	}

	if err := stream.Err(); err != nil {
		c.logger.Error("chat stream failed", zap.Error(err))
		return fmt.Errorf("chat stream failed: %w", err)
	}

	history := append(filterMessages(messages), domain.ChatMessage{
		Role:    "assistant",
		Content: reply.String(),
	})
	return emit(domain.ChatChunk{Done: true, Messages: history})
}

// buildMessages maps the conversation into API params. System messages
// fold into the system prompt; anything but user/assistant/system is
// dropped.
func (c *Client) buildMessages(messages []domain.ChatMessage) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case "user":
			out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		case "assistant":
			out = append(out, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		}
	}
	return out
}

// buildSystem joins the configured instructions with any system
// messages from the conversation.
func (c *Client) buildSystem(messages []domain.ChatMessage) string {
	parts := make([]string, 0, 1)
	if c.instructions != "" {
		parts = append(parts, c.instructions)
	}
	for _, m := range messages {
		if m.Role == "system" && m.Content != "" {
			parts = append(parts, m.Content)
		}
	}
	return strings.Join(parts, "\n")
}

func filterMessages(messages []domain.ChatMessage) []domain.ChatMessage {
	out := make([]domain.ChatMessage, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case "user", "assistant", "system":
			out = append(out, domain.ChatMessage{Role: m.Role, Content: m.Content})
		}
	}
	return out
}
