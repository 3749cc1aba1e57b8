package domain

import "encoding/json"

// ChatMessage is one turn of a chat-completion conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatChunk is one frame of a streamed chat-completion response.
// Exactly one of Start, Content, Done or Error is meaningful per chunk.
type ChatChunk struct {
	Start    bool          `json:"start,omitempty"`
	Type     string        `json:"type,omitempty"`
	Content  string        `json:"content,omitempty"`
	Done     bool          `json:"done,omitempty"`
	Messages []ChatMessage `json:"messages,omitempty"`
	Error    string        `json:"error,omitempty"`
}

// TokenExchangeRequest carries an authorization-code grant to the
// upstream OAuth token endpoint.
type TokenExchangeRequest struct {
	Code         string `json:"code"`
	CodeVerifier string `json:"code_verifier"`
	RedirectURI  string `json:"redirect_uri"`
	ClientID     string `json:"client_id"`
}

// TokenExchangeResponse is the upstream token endpoint's body, passed
// through to the caller untouched.
type TokenExchangeResponse = json.RawMessage
