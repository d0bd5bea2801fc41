// Package cache implements the two cache tiers and the facade composing them.
package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mhiraki-dev/mediacore/internal/config"
	"github.com/mhiraki-dev/mediacore/internal/infrastructure/metrics"
)

// Store is the contract shared by both cache tiers. All operations are
// best-effort: a read failure is a miss and a write failure is swallowed,
// so callers stay correct when caching is unavailable.
type Store interface {
	// Get retrieves a value. The second return is false on miss or failure.
	Get(ctx context.Context, key string) ([]byte, bool)

	// Set stores a value with a TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)

	// Delete removes a single key. Deleting an absent key is a no-op.
	Delete(ctx context.Context, key string)

	// DeleteByPattern removes all keys matching a glob pattern and
	// returns how many were removed. An empty match set is a no-op.
	DeleteByPattern(ctx context.Context, pattern string) int
}

// Dial backoff bounds for the shared tier. Retries grow linearly from the
// floor and never exceed the ceiling.
const (
	dialBackoffStep = 200 * time.Millisecond
	dialBackoffCap  = 3 * time.Second
	dialMaxRetries  = 3
)

// NewRedisClient creates a go-redis client for the shared tier. The
// connection is established lazily on first use; failed commands retry
// with a bounded backoff rather than failing the process at startup.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:            cfg.Addr,
		Password:        cfg.Password,
		DB:              cfg.DB,
		MaxRetries:      dialMaxRetries,
		MinRetryBackoff: dialBackoffStep,
		MaxRetryBackoff: dialBackoffCap,
	})
}

// RedisStore implements Store backed by the shared Redis tier.
type RedisStore struct {
	client *redis.Client
}

// Compile-time verification that RedisStore implements Store.
var _ Store = (*RedisStore)(nil)

// NewRedisStore creates a Redis-backed cache store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
	}
}

// Get retrieves a value from Redis. Connectivity failures are logged and
// reported as misses, never as errors.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpGet, metrics.CacheStatusMiss, metrics.CacheTierRedis).Inc()
			return nil, false
		}
		slog.Warn("redis get failed, treating as miss",
			"key", key,
			"error", err,
		)
		metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpGet, metrics.CacheStatusError, metrics.CacheTierRedis).Inc()
		return nil, false
	}

	metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpGet, metrics.CacheStatusHit, metrics.CacheTierRedis).Inc()
	return data, true
}

// Set stores a value in Redis with the specified TTL. Failures are logged
// and swallowed.
func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		slog.Warn("redis set failed",
			"key", key,
			"error", err,
		)
		metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpSet, metrics.CacheStatusError, metrics.CacheTierRedis).Inc()
		return
	}
	metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpSet, metrics.CacheStatusSuccess, metrics.CacheTierRedis).Inc()
}

// Delete removes a key from Redis. Failures are logged and swallowed.
func (s *RedisStore) Delete(ctx context.Context, key string) {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		slog.Warn("redis del failed",
			"key", key,
			"error", err,
		)
		metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpDelete, metrics.CacheStatusError, metrics.CacheTierRedis).Inc()
		return
	}
	metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpDelete, metrics.CacheStatusSuccess, metrics.CacheTierRedis).Inc()
}

// DeleteByPattern enumerates keys matching a glob pattern via SCAN and
// deletes them as a batch. An empty match set is a no-op.
func (s *RedisStore) DeleteByPattern(ctx context.Context, pattern string) int {
	var keys []string

	iter := s.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		slog.Warn("redis scan failed",
			"pattern", pattern,
			"error", err,
		)
		metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpDeletePattern, metrics.CacheStatusError, metrics.CacheTierRedis).Inc()
		return 0
	}

	if len(keys) == 0 {
		return 0
	}

	deleted, err := s.client.Del(ctx, keys...).Result()
	if err != nil {
		slog.Warn("redis batch del failed",
			"pattern", pattern,
			"keys", len(keys),
			"error", err,
		)
		metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpDeletePattern, metrics.CacheStatusError, metrics.CacheTierRedis).Inc()
		return 0
	}

	metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpDeletePattern, metrics.CacheStatusSuccess, metrics.CacheTierRedis).Inc()
	return int(deleted)
}
