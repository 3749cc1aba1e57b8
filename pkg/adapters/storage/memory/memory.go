package memory

import (
	"context"
	"sync"
	"time"

	"github.com/aescanero/pulse/pkg/domain"
	"github.com/aescanero/pulse/pkg/ports"
)

// UserRepository implements UserRepository in memory.
// This is for testing purposes only.
type UserRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User
}

// NewUserRepository creates a new in-memory user repository.
func NewUserRepository() *UserRepository {
	return &UserRepository{
		users: make(map[string]*domain.User),
	}
}

// Create inserts a new user.
func (r *UserRepository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == user.Email {
			return ports.ErrUserExists
		}
	}

	copied := *user
	r.users[user.ID] = &copied
	return nil
}

// FindByID finds a user by ID.
func (r *UserRepository) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, ports.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

// FindByEmail finds a user by email.
func (r *UserRepository) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, ports.ErrUserNotFound
}

// EmailExists checks if a user with the given email exists.
func (r *UserRepository) EmailExists(_ context.Context, email string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if user.Email == email {
			return true, nil
		}
	}
	return false, nil
}

// RefreshTokenStore implements RefreshTokenStore in memory.
// This is for testing purposes only.
type RefreshTokenStore struct {
	mu     sync.RWMutex
	tokens map[string]tokenEntry
}

type tokenEntry struct {
	userID    string
	expiresAt time.Time
}

// NewRefreshTokenStore creates a new in-memory refresh token store.
func NewRefreshTokenStore() *RefreshTokenStore {
	return &RefreshTokenStore{
		tokens: make(map[string]tokenEntry),
	}
}

// Save records a refresh token for the user with the given TTL.
func (s *RefreshTokenStore) Save(_ context.Context, token, userID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tokens[token] = tokenEntry{
		userID:    userID,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

// Exists checks whether a refresh token is on record and not expired.
func (s *RefreshTokenStore) Exists(_ context.Context, token string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.tokens[token]
	if !ok {
		return false, nil
	}
	return time.Now().Before(entry.expiresAt), nil
}

// Delete revokes a refresh token.
func (s *RefreshTokenStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.tokens, token)
	return nil
}
