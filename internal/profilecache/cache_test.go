package profilecache

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"github.com/yourfuture/platform/internal/domain"
)

type redisStore struct {
	client *goredis.Client
}

func (s *redisStore) Get(ctx context.Context, key string) (string, error) {
	return s.client.Get(ctx, key).Result()
}

func (s *redisStore) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl).Err()
}

func (s *redisStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

func newTestCache(t *testing.T) *Cache {
	t.Helper()

	srv := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return New(&redisStore{client: client}, time.Minute)
}

func TestCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	cache := newTestCache(t)

	user := &domain.User{ID: 7, Username: "ada", Role: domain.RoleUser, Telegram: "@ada"}
	if err := cache.Set(ctx, user); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err := cache.Get(ctx, 7)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil || got.Username != "ada" || got.Telegram != "@ada" {
		t.Fatalf("unexpected cached profile: %+v", got)
	}
}

func TestCacheMissIsNil(t *testing.T) {
	ctx := context.Background()
	cache := newTestCache(t)

	got, err := cache.Get(ctx, 99)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != nil {
		t.Fatalf("expected a miss, got %+v", got)
	}
}

func TestCacheInvalidate(t *testing.T) {
	ctx := context.Background()
	cache := newTestCache(t)

	user := &domain.User{ID: 3, Username: "bob"}
	if err := cache.Set(ctx, user); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := cache.Invalidate(ctx, 3); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}

	got, err := cache.Get(ctx, 3)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != nil {
		t.Fatal("profile must be gone after invalidation")
	}
}

func TestNilCacheIsNoop(t *testing.T) {
	ctx := context.Background()
	var cache *Cache

	if _, err := cache.Get(ctx, 1); err != nil {
		t.Fatalf("nil cache Get: %v", err)
	}
	if err := cache.Set(ctx, &domain.User{ID: 1}); err != nil {
		t.Fatalf("nil cache Set: %v", err)
	}
	if err := cache.Invalidate(ctx, 1); err != nil {
		t.Fatalf("nil cache Invalidate: %v", err)
	}
}
