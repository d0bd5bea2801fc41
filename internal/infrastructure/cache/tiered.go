package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/mhiraki-dev/mediacore/internal/infrastructure/metrics"
)

// TTLPolicy fixes how long a cached value is fresh and how long an HTTP
// client may keep serving it stale while revalidating. A zero Stale
// disables the stale-while-revalidate window.
type TTLPolicy struct {
	Fresh time.Duration
	Stale time.Duration
}

// CacheControl renders the policy as an HTTP Cache-Control header value.
func (p TTLPolicy) CacheControl() string {
	if p.Stale <= 0 {
		return fmt.Sprintf("max-age=%d", int(p.Fresh.Seconds()))
	}
	return fmt.Sprintf("max-age=%d, stale-while-revalidate=%d",
		int(p.Fresh.Seconds()), int(p.Stale.Seconds()))
}

// ComputeFunc produces the value for a key on cache miss. Its errors
// propagate unchanged to the caller.
type ComputeFunc func(ctx context.Context) ([]byte, error)

// Tiered composes the in-process tier and the shared tier behind one
// read/write API. Reads check memory, then the shared tier, then compute;
// a computed value populates both tiers. Cache failures never surface:
// the facade fails open to recomputation.
type Tiered struct {
	memory Store
	shared Store

	sfGroup singleflight.Group
}

// NewTiered creates a tiered cache over the given stores. memory is the
// process-local tier, shared the distributed one.
func NewTiered(memory, shared Store) *Tiered {
	return &Tiered{
		memory: memory,
		shared: shared,
	}
}

// GetOrCompute returns the cached value for key, computing and caching it
// on miss. Concurrent callers for the same key are coalesced with
// singleflight to avoid a stampede on the backing store.
func (t *Tiered) GetOrCompute(ctx context.Context, key string, policy TTLPolicy, compute ComputeFunc) ([]byte, error) {
	result, err, shared := t.sfGroup.Do(key, func() (any, error) {
		return t.lookup(ctx, key, policy, compute)
	})

	if shared {
		metrics.SingleflightRequestsTotal.WithLabelValues(metrics.SingleflightShared).Inc()
	} else {
		metrics.SingleflightRequestsTotal.WithLabelValues(metrics.SingleflightInitiated).Inc()
	}

	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}

func (t *Tiered) lookup(ctx context.Context, key string, policy TTLPolicy, compute ComputeFunc) ([]byte, error) {
	if value, ok := t.memory.Get(ctx, key); ok {
		return value, nil
	}

	if value, ok := t.shared.Get(ctx, key); ok {
		// Promote to the in-process tier so the next read skips the
		// network round trip.
		t.memory.Set(ctx, key, value, policy.Fresh)
		return value, nil
	}

	value, err := compute(ctx)
	if err != nil {
		return nil, err
	}

	t.shared.Set(ctx, key, value, policy.Fresh)
	t.memory.Set(ctx, key, value, policy.Fresh)

	return value, nil
}

// Invalidate removes all keys matching the glob pattern from both tiers.
// Invalidation is best-effort: failures are logged by the tiers and never
// block the write path that triggered them.
func (t *Tiered) Invalidate(ctx context.Context, pattern string) {
	memDeleted := t.memory.DeleteByPattern(ctx, pattern)
	sharedDeleted := t.shared.DeleteByPattern(ctx, pattern)

	slog.Debug("cache invalidated",
		"pattern", pattern,
		"memory_deleted", memDeleted,
		"shared_deleted", sharedDeleted,
	)
}
