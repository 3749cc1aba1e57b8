package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RefreshTokenStore records issued refresh tokens in Redis. Tokens
// expire with the same TTL as the token itself, so the store never
// accumulates stale entries.
type RefreshTokenStore struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRefreshTokenStore creates a Redis-backed refresh token store.
func NewRefreshTokenStore(client *redis.Client, logger *zap.Logger) *RefreshTokenStore {
	return &RefreshTokenStore{
		client: client,
		logger: logger,
	}
}

// Save records a refresh token for the user with the given TTL.
func (s *RefreshTokenStore) Save(ctx context.Context, token, userID string, ttl time.Duration) error {
	if err := s.client.Set(ctx, getTokenKey(token), userID, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save refresh token: %w", err)
	}

	s.logger.Debug("refresh token saved", zap.String("user_id", userID))
	return nil
}

// Exists checks whether a refresh token is on record.
func (s *RefreshTokenStore) Exists(ctx context.Context, token string) (bool, error) {
	result, err := s.client.Exists(ctx, getTokenKey(token)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check refresh token: %w", err)
	}
	return result > 0, nil
}

// Delete revokes a refresh token. Deleting an absent token is a no-op.
func (s *RefreshTokenStore) Delete(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, getTokenKey(token)).Err(); err != nil {
		return fmt.Errorf("failed to delete refresh token: %w", err)
	}
	return nil
}

// getTokenKey returns the Redis key for a refresh token
func getTokenKey(token string) string {
	return fmt.Sprintf("pulse:refresh:%s", token)
}
