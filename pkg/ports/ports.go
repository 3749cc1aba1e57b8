package ports

import (
	"context"
	"errors"
	"time"

	"github.com/aescanero/pulse/pkg/domain"
)

var (
	// ErrUserNotFound is returned when a user lookup finds nothing.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserExists is returned when registering an email that is taken.
	ErrUserExists = errors.New("user already exists")
)

// UserRepository persists user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
}

// RefreshTokenStore records issued refresh tokens so they can be
// revoked and checked on refresh.
type RefreshTokenStore interface {
	Save(ctx context.Context, token, userID string, ttl time.Duration) error
	Exists(ctx context.Context, token string) (bool, error)
	Delete(ctx context.Context, token string) error
}

// ChatStreamer streams a chat-completion response chunk by chunk.
// emit is called once per frame; a non-nil return aborts the stream.
type ChatStreamer interface {
	StreamChat(ctx context.Context, messages []domain.ChatMessage, emit func(domain.ChatChunk) error) error
}

// TokenExchanger forwards an authorization-code grant to the upstream
// OAuth token endpoint and returns its response body.
type TokenExchanger interface {
	Exchange(ctx context.Context, req domain.TokenExchangeRequest) (domain.TokenExchangeResponse, error)
}

// MetricsCollector records operational metrics.
type MetricsCollector interface {
	SocketConnected()
	SocketDisconnected()
	StreamOpened()
	StreamClosed()
	MessageRelayed(event string)
	BroadcastSent(transport, eventType string)
	AuthAttempt(result string)
}

// NopMetrics is a MetricsCollector that discards everything. Useful in
// tests and as a default when metrics are not wired.
type NopMetrics struct{}

func (NopMetrics) SocketConnected()                 {}
func (NopMetrics) SocketDisconnected()              {}
func (NopMetrics) StreamOpened()                    {}
func (NopMetrics) StreamClosed()                    {}
func (NopMetrics) MessageRelayed(string)            {}
func (NopMetrics) BroadcastSent(string, string)     {}
func (NopMetrics) AuthAttempt(string)               {}
