package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Broker admission metrics
var (
	BrokerActiveProducers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_broker_active_producers",
			Help: "Number of producers currently executing",
		},
	)

	BrokerQueuedRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_broker_queued_requests",
			Help: "Number of requests waiting for an execution slot",
		},
	)

	BrokerInFlightKeys = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_broker_in_flight_keys",
			Help: "Number of distinct cache keys with unsettled work",
		},
	)

	BrokerAdmissionCeiling = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_broker_admission_ceiling",
			Help: "Configured maximum number of concurrently executing producers",
		},
	)

	ResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_broker_resolutions_total",
			Help: "Total resolution requests by outcome",
		},
		[]string{"outcome"}, // "cache_hit", "produced", "joined", "error"
	)

	QueueWaitDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "media_broker_queue_wait_duration_seconds",
			Help:    "Time requests spend queued before their producer starts",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 15, 60, 300},
		},
	)
)

// Persistent cache metrics
var (
	CacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_broker_cache_lookups_total",
			Help: "Total persistent cache lookups by result",
		},
		[]string{"result"}, // "hit", "miss", "kind_mismatch", "error"
	)

	CachedConversions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_broker_cached_conversions",
			Help: "Number of conversion records in the persistent cache",
		},
	)

	DBQueryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_broker_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_broker_db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)
)

// Sandboxed transcoder metrics
var (
	TranscodesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_broker_transcodes_total",
			Help: "Total sandboxed transcode invocations by status",
		},
		[]string{"status"}, // "success", "validation_error", "timeout", "tool_missing", "failed"
	)

	TranscodeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "media_broker_transcode_duration_seconds",
			Help:    "Wall-clock duration of sandboxed transcode runs",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
	)
)

// Ops HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_broker_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_broker_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_broker_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)
