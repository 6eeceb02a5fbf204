package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheLookups counts cache reads per record kind and outcome
	// (hit|miss|expired).
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "homescout_cache_lookups_total",
			Help: "Total number of cache lookups",
		},
		[]string{"kind", "result"},
	)

	// UpstreamRequests counts calls to external providers and their
	// outcome (success|failure|no_result).
	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "homescout_upstream_requests_total",
			Help: "Total number of upstream provider requests",
		},
		[]string{"provider", "result"},
	)

	// SweepDeleted counts rows removed by the maintenance sweep per table.
	SweepDeleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "homescout_sweep_deleted_total",
			Help: "Cache rows deleted by the expiration sweep",
		},
		[]string{"kind"},
	)

	// CacheBytes tracks the cached payload size per record kind as of the
	// last stats computation.
	CacheBytes = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "homescout_cache_bytes",
			Help: "Bytes of cached payload data per record kind",
		},
		[]string{"kind"},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "homescout_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
