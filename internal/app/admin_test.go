package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
	"quiz-intake-service/internal/app"
	"quiz-intake-service/internal/domain"
	"quiz-intake-service/internal/infra/memory"
)

func newGate(t *testing.T, sessions app.AdminSessionStore) *app.AdminGate {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return app.NewAdminGate("admin", hash, sessions, time.Hour)
}

func TestAdminLoginLifecycle(t *testing.T) {
	ctx := context.Background()
	gate := newGate(t, memory.NewAdminSessionStore())

	if _, err := gate.Login(ctx, "admin", "wrong"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for bad password, got %v", err)
	}
	if _, err := gate.Login(ctx, "root", "secret"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for bad username, got %v", err)
	}

	token, err := gate.Login(ctx, "admin", "secret")
	if err != nil || token == "" {
		t.Fatalf("login: %q %v", token, err)
	}
	if err := gate.Authorize(ctx, token); err != nil {
		t.Fatalf("authorize: %v", err)
	}
	if err := gate.Authorize(ctx, ""); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("empty token must be rejected, got %v", err)
	}
	if err := gate.Authorize(ctx, "made-up"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("unknown token must be rejected, got %v", err)
	}

	if err := gate.Logout(ctx, token); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if err := gate.Authorize(ctx, token); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected revoked token rejected, got %v", err)
	}
}

func TestAdminSessionExpires(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	sessions := memory.NewAdminSessionStoreWithClock(func() time.Time { return now })
	gate := newGate(t, sessions)

	token, err := gate.Login(ctx, "admin", "secret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	now = now.Add(2 * time.Hour)
	if err := gate.Authorize(ctx, token); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected expired session rejected, got %v", err)
	}
}

func TestHashPasswordVerifies(t *testing.T) {
	hash, err := app.HashPassword("secret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if bcrypt.CompareHashAndPassword(hash, []byte("secret")) != nil {
		t.Fatalf("hash does not verify")
	}
}
