package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Result labels used with CacheOperations.
const (
	ResultHit         = "hit"
	ResultMiss        = "miss"
	ResultOK          = "ok"
	ResultError       = "error"
	ResultUnavailable = "unavailable"
)

var (
	// CacheOperations counts raw cache operations by op (lookup|set|delete) and result.
	CacheOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "breez_cache_operations_total",
			Help: "Total number of cache store operations",
		},
		[]string{"op", "result"},
	)

	// CacheLatency measures the time spent in the backing store per operation.
	CacheLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "breez_cache_operation_seconds",
			Help:    "Cache store operation latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"op"},
	)

	// BackupRuns counts snapshot backup runs by result (ok|error).
	BackupRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "breez_cache_backup_runs_total",
			Help: "Total number of cache snapshot backup runs",
		},
		[]string{"result"},
	)
)
