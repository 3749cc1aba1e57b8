package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/aescanero/pulse/pkg/adapters/storage/memory"
	"github.com/aescanero/pulse/pkg/ports"
)

func newTestService() *Service {
	jwt := NewJWTManager(JWTConfig{
		AccessSecret:    "access-secret",
		RefreshSecret:   "refresh-secret",
		AccessTokenTTL:  time.Minute,
		RefreshTokenTTL: time.Hour,
		Issuer:          "pulse",
	})
	return NewService(
		memory.NewUserRepository(),
		memory.NewRefreshTokenStore(),
		NewPasswordHasher(4),
		jwt,
		zap.NewNop(),
		nil,
	)
}

func register(t *testing.T, svc *Service) {
	t.Helper()
	_, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Ana",
		LastName: "García",
		Email:    "ana@example.com",
		Password: "secret123",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	register(t, svc)

	session, err := svc.Login(ctx, "ana@example.com", "secret123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if session.AccessToken == "" || session.RefreshToken == "" {
		t.Fatal("expected both tokens")
	}
	if session.Role != "user" {
		t.Errorf("expected role user, got %q", session.Role)
	}

	userID, err := svc.VerifyAccess(session.AccessToken)
	if err != nil {
		t.Fatalf("access token verification failed: %v", err)
	}
	if userID == "" {
		t.Fatal("expected a user id")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newTestService()
	register(t, svc)

	_, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Otra",
		LastName: "Persona",
		Email:    "ana@example.com",
		Password: "different1",
	})
	if !errors.Is(err, ports.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	register(t, svc)

	if _, err := svc.Login(ctx, "ana@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(ctx, "nobody@example.com", "secret123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email: expected ErrInvalidCredentials, got %v", err)
	}
}

func TestRefreshFlow(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	register(t, svc)

	session, err := svc.Login(ctx, "ana@example.com", "secret123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	access, err := svc.Refresh(ctx, session.RefreshToken)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if _, err := svc.VerifyAccess(access); err != nil {
		t.Fatalf("refreshed access token must verify: %v", err)
	}

	if _, err := svc.Refresh(ctx, ""); !errors.Is(err, ErrNoRefreshToken) {
		t.Errorf("empty token: expected ErrNoRefreshToken, got %v", err)
	}
	if _, err := svc.Refresh(ctx, "never-issued"); !errors.Is(err, ErrUnknownRefreshToken) {
		t.Errorf("unknown token: expected ErrUnknownRefreshToken, got %v", err)
	}
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	register(t, svc)

	session, err := svc.Login(ctx, "ana@example.com", "secret123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	if err := svc.Logout(ctx, session.RefreshToken); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if _, err := svc.Refresh(ctx, session.RefreshToken); !errors.Is(err, ErrUnknownRefreshToken) {
		t.Fatalf("revoked token must not refresh, got %v", err)
	}

	// Logging out without a token is a no-op.
	if err := svc.Logout(ctx, ""); err != nil {
		t.Fatalf("empty logout must not fail: %v", err)
	}
}
