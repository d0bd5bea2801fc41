package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *RedisStore, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	cleanup := func() {
		client.Close()
		mr.Close()
	}

	return mr, NewRedisStore(client), cleanup
}

func TestRedisStore_GetSet(t *testing.T) {
	_, store, cleanup := setupTestRedis(t)
	defer cleanup()

	ctx := context.Background()

	store.Set(ctx, "progress:u123:list", []byte(`[{"asset_id":"a1"}]`), 5*time.Minute)

	got, ok := store.Get(ctx, "progress:u123:list")
	if !ok {
		t.Fatal("expected hit, got miss")
	}
	if string(got) != `[{"asset_id":"a1"}]` {
		t.Errorf("Get() = %s, want cached value", got)
	}
}

func TestRedisStore_Get_Miss(t *testing.T) {
	_, store, cleanup := setupTestRedis(t)
	defer cleanup()

	if _, ok := store.Get(context.Background(), "absent"); ok {
		t.Error("expected miss for absent key")
	}
}

func TestRedisStore_Get_TTLExpiry(t *testing.T) {
	mr, store, cleanup := setupTestRedis(t)
	defer cleanup()

	ctx := context.Background()
	store.Set(ctx, "k", []byte("v"), time.Minute)

	mr.FastForward(2 * time.Minute)

	if _, ok := store.Get(ctx, "k"); ok {
		t.Error("expected miss after TTL expiry")
	}
}

func TestRedisStore_Get_ConnectivityFailureIsMiss(t *testing.T) {
	mr, store, cleanup := setupTestRedis(t)
	defer cleanup()

	ctx := context.Background()
	store.Set(ctx, "k", []byte("v"), time.Minute)

	mr.SetError("server unavailable")

	if _, ok := store.Get(ctx, "k"); ok {
		t.Error("expected miss when server is failing")
	}
}

func TestRedisStore_Set_FailureSwallowed(t *testing.T) {
	mr, store, cleanup := setupTestRedis(t)
	defer cleanup()

	mr.SetError("server unavailable")

	// Must not panic or surface an error.
	store.Set(context.Background(), "k", []byte("v"), time.Minute)
}

func TestRedisStore_Delete(t *testing.T) {
	_, store, cleanup := setupTestRedis(t)
	defer cleanup()

	ctx := context.Background()
	store.Set(ctx, "k", []byte("v"), time.Minute)
	store.Delete(ctx, "k")

	if _, ok := store.Get(ctx, "k"); ok {
		t.Error("expected miss after delete")
	}
}

func TestRedisStore_Delete_NonExistent(t *testing.T) {
	_, store, cleanup := setupTestRedis(t)
	defer cleanup()

	// Deleting an absent key is a no-op, not an error.
	store.Delete(context.Background(), "absent")
}

func TestRedisStore_DeleteByPattern(t *testing.T) {
	_, store, cleanup := setupTestRedis(t)
	defer cleanup()

	ctx := context.Background()
	store.Set(ctx, "progress:u123:list", []byte("a"), time.Minute)
	store.Set(ctx, "progress:u123:a1", []byte("b"), time.Minute)
	store.Set(ctx, "progress:u456:list", []byte("c"), time.Minute)

	deleted := store.DeleteByPattern(ctx, "progress:u123:*")
	if deleted != 2 {
		t.Errorf("DeleteByPattern() = %d, want 2", deleted)
	}

	if _, ok := store.Get(ctx, "progress:u123:list"); ok {
		t.Error("matching key should be deleted")
	}
	if _, ok := store.Get(ctx, "progress:u456:list"); !ok {
		t.Error("non-matching key should survive")
	}
}

func TestRedisStore_DeleteByPattern_EmptyMatch(t *testing.T) {
	_, store, cleanup := setupTestRedis(t)
	defer cleanup()

	if deleted := store.DeleteByPattern(context.Background(), "nothing:*"); deleted != 0 {
		t.Errorf("DeleteByPattern() = %d, want 0", deleted)
	}
}
