package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "neighborly_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "neighborly_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "neighborly_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Autocomplete proxy metrics
var (
	AutocompleteCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "neighborly_autocomplete_cache_hits_total",
			Help: "Autocomplete requests served from the query cache",
		},
	)

	AutocompleteCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "neighborly_autocomplete_cache_misses_total",
			Help: "Autocomplete requests that required an upstream fetch",
		},
	)

	AutocompleteRateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "neighborly_autocomplete_rate_limited_total",
			Help: "Autocomplete requests rejected by the rate limiter",
		},
	)

	UpstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "neighborly_upstream_requests_total",
			Help: "Requests issued to the location provider",
		},
		[]string{"status"},
	)

	UpstreamRequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "neighborly_upstream_request_duration_seconds",
			Help:    "Location provider request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
	)

	QueryCacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "neighborly_query_cache_entries",
			Help: "Current number of entries in the query cache",
		},
	)
)

// Media pipeline metrics
var (
	PipelineStageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "neighborly_media_pipeline_stage_duration_seconds",
			Help:    "Media pipeline stage duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"stage"},
	)

	PipelineErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "neighborly_media_pipeline_errors_total",
			Help: "Media pipeline failures by kind",
		},
		[]string{"kind"},
	)

	AvatarsProcessed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "neighborly_avatars_processed_total",
			Help: "Avatar uploads processed successfully",
		},
	)
)
