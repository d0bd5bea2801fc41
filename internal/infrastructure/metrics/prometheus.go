// Package metrics provides Prometheus metrics for observability.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "mediacore"

var (
	// CacheOperationsTotal tracks cache operations across both tiers.
	// Labels:
	//   - operation: get, set, delete, delete_pattern
	//   - status: hit, miss, success, error
	//   - tier: memory, redis
	CacheOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_operations_total",
			Help:      "Total number of cache operations",
		},
		[]string{"operation", "status", "tier"},
	)

	// ProgressWritesTotal tracks progress upserts.
	// Labels:
	//   - status: success, error
	ProgressWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "progress_writes_total",
			Help:      "Total number of progress upserts",
		},
		[]string{"status"},
	)

	// UploadsTotal tracks asset ingestion outcomes.
	// Labels:
	//   - operation: upload, delete
	//   - status: success, error
	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_total",
			Help:      "Total number of asset upload and delete operations",
		},
		[]string{"operation", "status"},
	)

	// SingleflightRequestsTotal tracks singleflight behavior in the
	// tiered cache facade.
	// Labels:
	//   - result: initiated (new execution), shared (reused result)
	SingleflightRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "singleflight_requests_total",
			Help:      "Total number of singleflight requests",
		},
		[]string{"result"},
	)

	// ViewEventsTotal tracks best-effort playback event publishes.
	// Labels:
	//   - status: success, error
	ViewEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "view_events_total",
			Help:      "Total number of playback view event publishes",
		},
		[]string{"status"},
	)
)

// Cache operation status constants.
const (
	CacheStatusHit     = "hit"
	CacheStatusMiss    = "miss"
	CacheStatusSuccess = "success"
	CacheStatusError   = "error"
)

// Cache operation type constants.
const (
	CacheOpGet           = "get"
	CacheOpSet           = "set"
	CacheOpDelete        = "delete"
	CacheOpDeletePattern = "delete_pattern"
)

// Cache tier constants.
const (
	CacheTierMemory = "memory"
	CacheTierRedis  = "redis"
)

// Generic operation status constants.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Singleflight result constants.
const (
	SingleflightInitiated = "initiated"
	SingleflightShared    = "shared"
)
