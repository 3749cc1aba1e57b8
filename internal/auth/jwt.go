package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken is returned when a token fails verification.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken is returned when a token has expired.
	ErrExpiredToken = errors.New("token has expired")
)

// JWTConfig holds token signing configuration. Access and refresh
// tokens are signed with separate secrets.
type JWTConfig struct {
	AccessSecret    string
	RefreshSecret   string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	Issuer          string
}

// Claims are the custom claims carried by both token kinds.
type Claims struct {
	UserID    string `json:"id"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// JWTManager issues and verifies access and refresh tokens.
type JWTManager struct {
	config JWTConfig
}

// NewJWTManager creates a JWTManager with the given configuration.
func NewJWTManager(config JWTConfig) *JWTManager {
	return &JWTManager{config: config}
}

// GenerateAccessToken issues a new access token for the user.
func (m *JWTManager) GenerateAccessToken(userID string) (string, error) {
	return m.generate(userID, "access", m.config.AccessSecret, m.config.AccessTokenTTL)
}

// GenerateRefreshToken issues a new refresh token for the user.
func (m *JWTManager) GenerateRefreshToken(userID string) (string, error) {
	return m.generate(userID, "refresh", m.config.RefreshSecret, m.config.RefreshTokenTTL)
}

// VerifyAccessToken verifies an access token and returns its claims.
func (m *JWTManager) VerifyAccessToken(token string) (*Claims, error) {
	return m.verify(token, "access", m.config.AccessSecret)
}

// VerifyRefreshToken verifies a refresh token and returns its claims.
func (m *JWTManager) VerifyRefreshToken(token string) (*Claims, error) {
	return m.verify(token, "refresh", m.config.RefreshSecret)
}

// RefreshTokenTTL returns the configured refresh token lifetime.
func (m *JWTManager) RefreshTokenTTL() time.Duration {
	return m.config.RefreshTokenTTL
}

func (m *JWTManager) generate(userID, tokenType, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:    userID,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.config.Issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func (m *JWTManager) verify(tokenString, tokenType, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.TokenType != tokenType {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
