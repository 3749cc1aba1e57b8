package auth

import (
	"errors"
	"testing"
	"time"
)

func newTestJWT(accessTTL, refreshTTL time.Duration) *JWTManager {
	return NewJWTManager(JWTConfig{
		AccessSecret:    "access-secret",
		RefreshSecret:   "refresh-secret",
		AccessTokenTTL:  accessTTL,
		RefreshTokenTTL: refreshTTL,
		Issuer:          "pulse",
	})
}

func TestAccessTokenRoundtrip(t *testing.T) {
	m := newTestJWT(time.Minute, time.Hour)

	token, err := m.GenerateAccessToken("user1")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	claims, err := m.VerifyAccessToken(token)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if claims.UserID != "user1" {
		t.Errorf("expected user1, got %q", claims.UserID)
	}
	if claims.TokenType != "access" {
		t.Errorf("expected token_type access, got %q", claims.TokenType)
	}
}

func TestTokenTypeMismatchRejected(t *testing.T) {
	m := newTestJWT(time.Minute, time.Hour)

	access, err := m.GenerateAccessToken("user1")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	refresh, err := m.GenerateRefreshToken("user1")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	if _, err := m.VerifyRefreshToken(access); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("access token must not verify as refresh, got %v", err)
	}
	if _, err := m.VerifyAccessToken(refresh); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("refresh token must not verify as access, got %v", err)
	}
}

func TestExpiredToken(t *testing.T) {
	m := newTestJWT(-time.Minute, time.Hour)

	token, err := m.GenerateAccessToken("user1")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	if _, err := m.VerifyAccessToken(token); !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}
}

func TestGarbageToken(t *testing.T) {
	m := newTestJWT(time.Minute, time.Hour)

	for _, token := range []string{"", "garbage", "a.b.c"} {
		if _, err := m.VerifyAccessToken(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("token %q: expected ErrInvalidToken, got %v", token, err)
		}
	}
}

func TestWrongSecretRejected(t *testing.T) {
	m := newTestJWT(time.Minute, time.Hour)
	other := NewJWTManager(JWTConfig{
		AccessSecret:    "different-secret",
		RefreshSecret:   "different-refresh",
		AccessTokenTTL:  time.Minute,
		RefreshTokenTTL: time.Hour,
		Issuer:          "pulse",
	})

	token, err := m.GenerateAccessToken("user1")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	if _, err := other.VerifyAccessToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
