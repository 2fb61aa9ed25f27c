package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestAdminSessionStoreSetsAndClearsKeys(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewAdminSessionStore(client)

	if err := store.Create(ctx, "tok", time.Minute); err != nil {
		t.Fatalf("create: %v", err)
	}
	if !mr.Exists("quiz:admin-session:tok") {
		t.Fatalf("expected redis key to be set")
	}
	if ok, _ := store.Exists(ctx, "tok"); !ok {
		t.Fatalf("expected session to exist")
	}

	mr.FastForward(2 * time.Minute)
	if ok, _ := store.Exists(ctx, "tok"); ok {
		t.Fatalf("expected session to expire")
	}

	_ = store.Create(ctx, "tok2", time.Minute)
	_ = store.Delete(ctx, "tok2")
	if mr.Exists("quiz:admin-session:tok2") {
		t.Fatalf("expected redis key to be removed")
	}
}
