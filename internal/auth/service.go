package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aescanero/pulse/pkg/domain"
	"github.com/aescanero/pulse/pkg/ports"
)

var (
	// ErrInvalidCredentials is returned when login credentials are
	// wrong. Unknown email and wrong password are not distinguished.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNoRefreshToken is returned when a refresh token is missing.
	ErrNoRefreshToken = errors.New("no refresh token")
	// ErrUnknownRefreshToken is returned when a refresh token is not
	// on record, e.g. after logout.
	ErrUnknownRefreshToken = errors.New("refresh token not found")
)

// Service implements registration, login and the refresh token
// lifecycle.
type Service struct {
	users   ports.UserRepository
	tokens  ports.RefreshTokenStore
	hasher  *PasswordHasher
	jwt     *JWTManager
	logger  *zap.Logger
	metrics ports.MetricsCollector
}

// Session is the result of a successful login.
type Session struct {
	AccessToken  string
	RefreshToken string
	Role         string
}

// RegisterInput carries the registration form fields.
type RegisterInput struct {
	Name     string
	LastName string
	Email    string
	Password string
}

// NewService creates the auth service.
func NewService(users ports.UserRepository, tokens ports.RefreshTokenStore, hasher *PasswordHasher, jwt *JWTManager, logger *zap.Logger, metrics ports.MetricsCollector) *Service {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	return &Service{
		users:   users,
		tokens:  tokens,
		hasher:  hasher,
		jwt:     jwt,
		logger:  logger,
		metrics: metrics,
	}
}

// Register creates a new user account with the "user" role.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	exists, err := s.users.EmailExists(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email existence: %w", err)
	}
	if exists {
		return nil, ports.ErrUserExists
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &domain.User{
		ID:           uuid.NewString(),
		Name:         in.Name,
		LastName:     in.LastName,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID))
	return user, nil
}

// Login verifies credentials and issues an access/refresh token pair.
// The refresh token is recorded so it can be revoked.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ports.ErrUserNotFound) {
			s.metrics.AuthAttempt("failure")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		s.metrics.AuthAttempt("failure")
		return nil, ErrInvalidCredentials
	}

	accessToken, err := s.jwt.GenerateAccessToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refreshToken, err := s.jwt.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	if err := s.tokens.Save(ctx, refreshToken, user.ID, s.jwt.RefreshTokenTTL()); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	s.metrics.AuthAttempt("success")
	s.logger.Info("user logged in", zap.String("user_id", user.ID))

	return &Session{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Role:         user.Role,
	}, nil
}

// Refresh exchanges a recorded, valid refresh token for a new access
// token.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", ErrNoRefreshToken
	}

	known, err := s.tokens.Exists(ctx, refreshToken)
	if err != nil {
		return "", fmt.Errorf("failed to look up refresh token: %w", err)
	}
	if !known {
		return "", ErrUnknownRefreshToken
	}

	claims, err := s.jwt.VerifyRefreshToken(refreshToken)
	if err != nil {
		return "", err
	}

	return s.jwt.GenerateAccessToken(claims.UserID)
}

// Logout revokes a refresh token. Revoking an unknown token is not an
// error.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	if err := s.tokens.Delete(ctx, refreshToken); err != nil {
		return fmt.Errorf("failed to delete refresh token: %w", err)
	}
	return nil
}

// VerifyAccess verifies an access token and returns the user ID it
// belongs to.
func (s *Service) VerifyAccess(token string) (string, error) {
	claims, err := s.jwt.VerifyAccessToken(token)
	if err != nil {
		return "", err
	}
	return claims.UserID, nil
}
