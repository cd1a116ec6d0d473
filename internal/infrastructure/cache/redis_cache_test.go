package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
)

func newMiniRedisCache(t *testing.T) (*miniredis.Miniredis, *RedisCache) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})
	return mr, NewRedisCache(client, "catalogo")
}

func TestRedisCacheSetGetDelete(t *testing.T) {
	mr, cache := newMiniRedisCache(t)
	ctx := context.Background()

	if err := cache.Ping(ctx); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}
	if err := cache.Set(ctx, "follow:counters:u1", "v1", time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if !mr.Exists("catalogo:follow:counters:u1") {
		t.Fatalf("expected prefixed key in redis")
	}

	value, found, err := cache.Get(ctx, "follow:counters:u1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !found || value != "v1" {
		t.Fatalf("Get() = %q, found=%v", value, found)
	}

	if err := cache.Delete(ctx, "follow:counters:u1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, found, err := cache.Get(ctx, "follow:counters:u1"); err != nil || found {
		t.Fatalf("Get() after delete found=%v err=%v", found, err)
	}
}

func TestRedisCacheHonoursTTL(t *testing.T) {
	mr, cache := newMiniRedisCache(t)
	ctx := context.Background()

	if err := cache.Set(ctx, "moderation:suspension:u1", "{}", 10*time.Second); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	mr.FastForward(11 * time.Second)

	if _, found, err := cache.Get(ctx, "moderation:suspension:u1"); err != nil || found {
		t.Fatalf("Get() after ttl found=%v err=%v, want miss", found, err)
	}
}

func TestRedisCacheReportsBackendErrors(t *testing.T) {
	mr, cache := newMiniRedisCache(t)
	mr.SetError("ERR injected failure")

	if _, _, err := cache.Get(context.Background(), "k"); err == nil {
		t.Fatalf("Get() expected error while redis is failing")
	}
}
