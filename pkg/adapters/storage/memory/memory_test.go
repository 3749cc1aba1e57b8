package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aescanero/pulse/pkg/domain"
	"github.com/aescanero/pulse/pkg/ports"
)

func TestUserRepository(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()

	user := &domain.User{
		ID:    "u1",
		Name:  "Ana",
		Email: "ana@example.com",
		Role:  domain.RoleUser,
	}
	if err := repo.Create(ctx, user); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := repo.Create(ctx, &domain.User{ID: "u2", Email: "ana@example.com"}); !errors.Is(err, ports.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}

	found, err := repo.FindByID(ctx, "u1")
	if err != nil {
		t.Fatalf("find by id failed: %v", err)
	}
	if found.Email != "ana@example.com" {
		t.Errorf("unexpected user %+v", found)
	}

	// Returned users are copies.
	found.Email = "changed@example.com"
	again, _ := repo.FindByEmail(ctx, "ana@example.com")
	if again == nil || again.Email != "ana@example.com" {
		t.Error("mutating a result must not affect the store")
	}

	if _, err := repo.FindByID(ctx, "missing"); !errors.Is(err, ports.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}

	exists, err := repo.EmailExists(ctx, "ana@example.com")
	if err != nil || !exists {
		t.Errorf("expected email to exist, got %v %v", exists, err)
	}
}

func TestRefreshTokenStore(t *testing.T) {
	store := NewRefreshTokenStore()
	ctx := context.Background()

	if err := store.Save(ctx, "tok", "u1", time.Hour); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if known, _ := store.Exists(ctx, "tok"); !known {
		t.Fatal("saved token must exist")
	}
	if known, _ := store.Exists(ctx, "other"); known {
		t.Fatal("unknown token must not exist")
	}

	if err := store.Delete(ctx, "tok"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if known, _ := store.Exists(ctx, "tok"); known {
		t.Fatal("deleted token must not exist")
	}

	// Expired tokens stop existing without being deleted.
	if err := store.Save(ctx, "expired", "u1", -time.Minute); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if known, _ := store.Exists(ctx, "expired"); known {
		t.Fatal("expired token must not exist")
	}
}
