package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	red "github.com/redis/go-redis/v9"

	"github.com/kevin2-cyber/ligera-sub001/internal/core/domain"
)

func newTestRedis(t *testing.T) (*red.Client, *miniredis.Miniredis) {
	t.Helper()

	server, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	client := red.NewClient(&red.Options{Addr: server.Addr()})

	t.Cleanup(func() {
		_ = client.Close()
		server.Close()
	})

	return client, server
}

func testProfile(id string) domain.Profile {
	now := time.Now().UTC().Truncate(time.Second)
	return domain.Profile{
		ID:        id,
		Name:      "Avery",
		Email:     "avery@x.com",
		Role:      domain.RoleUser,
		Status:    domain.AccountStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestProfileCache_SetAndGet(t *testing.T) {
	client, _ := newTestRedis(t)
	cache := NewProfileCache(client, "test:profile", time.Minute)
	ctx := context.Background()

	profile := testProfile("account-1")
	if err := cache.Set(ctx, profile); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}

	cached, err := cache.Get(ctx, "account-1")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if cached == nil {
		t.Fatal("expected cache hit")
	}
	if cached.Email != profile.Email || cached.Role != profile.Role {
		t.Fatalf("unexpected cached profile: %+v", cached)
	}
}

func TestProfileCache_MissIsNotAnError(t *testing.T) {
	client, _ := newTestRedis(t)
	cache := NewProfileCache(client, "test:profile", time.Minute)

	cached, err := cache.Get(context.Background(), "absent")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if cached != nil {
		t.Fatalf("expected miss, got %+v", cached)
	}
}

func TestProfileCache_Invalidate(t *testing.T) {
	client, _ := newTestRedis(t)
	cache := NewProfileCache(client, "test:profile", time.Minute)
	ctx := context.Background()

	if err := cache.Set(ctx, testProfile("account-1")); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	if err := cache.Invalidate(ctx, "account-1"); err != nil {
		t.Fatalf("Invalidate returned error: %v", err)
	}

	cached, err := cache.Get(ctx, "account-1")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if cached != nil {
		t.Fatal("expected entry to be invalidated")
	}
}

func TestProfileCache_EntriesExpire(t *testing.T) {
	client, server := newTestRedis(t)
	cache := NewProfileCache(client, "test:profile", time.Second)
	ctx := context.Background()

	if err := cache.Set(ctx, testProfile("account-1")); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}

	server.FastForward(2 * time.Second)

	cached, err := cache.Get(ctx, "account-1")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if cached != nil {
		t.Fatal("expected entry to expire")
	}
}
