// Package profilecache caches user profiles in Redis so the per-request
// identity lookup does not hit PostgreSQL every time.
package profilecache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yourfuture/platform/internal/domain"
)

// DefaultTTL bounds how stale a cached profile may get.
const DefaultTTL = 5 * time.Minute

// Store is the key-value surface the cache needs. Both redis.Client and
// its metrics-instrumented wrapper satisfy it.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Cache provides Redis-backed caching for user profiles.
type Cache struct {
	store Store
	ttl   time.Duration
}

// New constructs a profile cache backed by the provided store.
func New(store Store, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &Cache{store: store, ttl: ttl}
}

// Get fetches a cached profile if it exists. A miss returns (nil, nil).
func (c *Cache) Get(ctx context.Context, userID int64) (*domain.User, error) {
	if c == nil || c.store == nil {
		return nil, nil
	}

	data, err := c.store.Get(ctx, cacheKey(userID))
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cached profile: %w", err)
	}

	var user domain.User
	if err := json.Unmarshal([]byte(data), &user); err != nil {
		return nil, fmt.Errorf("decode cached profile: %w", err)
	}

	return &user, nil
}

// Set stores the profile for the configured TTL.
func (c *Cache) Set(ctx context.Context, user *domain.User) error {
	if c == nil || c.store == nil || user == nil {
		return nil
	}

	payload, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode profile for cache: %w", err)
	}

	if err := c.store.Set(ctx, cacheKey(user.ID), payload, c.ttl); err != nil {
		return fmt.Errorf("set cached profile: %w", err)
	}

	return nil
}

// Invalidate removes the cached profile entry if it exists.
func (c *Cache) Invalidate(ctx context.Context, userID int64) error {
	if c == nil || c.store == nil {
		return nil
	}

	if err := c.store.Delete(ctx, cacheKey(userID)); err != nil {
		return fmt.Errorf("delete cached profile: %w", err)
	}

	return nil
}

func cacheKey(userID int64) string {
	return fmt.Sprintf("profile:%d", userID)
}
