package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aescanero/pulse/pkg/domain"
)

// ChatStreamRequest carries the conversation to complete
type ChatStreamRequest struct {
	Messages []domain.ChatMessage `json:"messages" binding:"required,min=1"`
}

// handleChatStream proxies the conversation to the chat-completion
// provider and reshapes the streamed response into SSE frames.
func (s *Server) handleChatStream(c *gin.Context) {
	var req ChatStreamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "messages es requerido"})
		return
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Streaming not supported"})
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.WriteHeader(http.StatusOK)

	writeFrame := func(chunk domain.ChatChunk) error {
		data, err := json.Marshal(chunk)
		if err != nil {
			return fmt.Errorf("failed to marshal chunk: %w", err)
		}
		if _, err := fmt.Fprintf(c.Writer, "data: %s\n\n", data); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	}

	if err := s.chat.StreamChat(c.Request.Context(), req.Messages, writeFrame); err != nil {
		s.logger.Error("chat stream failed", zap.Error(err))
		// Best effort: the client may already be gone.
		_ = writeFrame(domain.ChatChunk{Error: err.Error()})
	}
}
