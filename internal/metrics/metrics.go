package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kudos_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kudos_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "route"},
	)

	// Business metrics
	FeedQueries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kudos_feed_queries_total",
			Help: "Home feed queries by sort and whether a filter was given",
		},
		[]string{"sort", "filtered"},
	)

	KudosCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "kudos_created_total",
			Help: "Total kudos created",
		},
	)

	AvatarUploads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kudos_avatar_uploads_total",
			Help: "Avatar uploads by result",
		},
		[]string{"result"},
	)

	AvatarUploadBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "kudos_avatar_upload_bytes",
			Help:    "Size of stored avatars",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 8),
		},
	)

	RateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kudos_rate_limit_hits_total",
			Help: "Requests rejected by the rate limiter",
		},
		[]string{"route"},
	)

	// Infrastructure metrics
	CacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kudos_cache_requests_total",
			Help: "Recent-kudos cache lookups by outcome",
		},
		[]string{"outcome"},
	)

	PostgresLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kudos_postgres_latency_seconds",
			Help:    "PostgreSQL query latency",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25},
		},
		[]string{"query"},
	)
)
