// Package metrics holds the Prometheus collectors shared across the service.
// Collectors are constructed at package init so callers never see nil; they are
// only exported once Register is called at startup.
package metrics

import (
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ytanalytics_api_request_duration_seconds",
			Help:    "HTTP request duration in seconds, by endpoint and method.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status"},
	)

	RequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ytanalytics_requests_in_flight",
			Help: "Number of HTTP requests currently being served.",
		},
	)

	UpstreamRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ytanalytics_upstream_requests_total",
			Help: "Upstream API calls, by endpoint and outcome.",
		},
		[]string{"endpoint", "outcome"},
	)

	UpstreamRetries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ytanalytics_upstream_retries_total",
			Help: "Upstream API retry attempts, by endpoint.",
		},
		[]string{"endpoint"},
	)

	PipelineDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ytanalytics_discovery_duration_seconds",
			Help:    "Duration of channel discovery pipeline runs.",
			Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
		},
	)

	PipelineCandidates = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ytanalytics_discovery_candidates",
			Help:    "Candidate counts per pipeline stage.",
			Buckets: []float64{0, 5, 10, 25, 50, 100, 200, 400},
		},
		[]string{"stage"},
	)

	EnrichmentFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ytanalytics_enrichment_failures_total",
			Help: "Latest-upload lookups that resolved to null.",
		},
	)

	CacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ytanalytics_cache_hits_total",
			Help: "Total cache hits, by cache name.",
		},
		[]string{"cache"},
	)

	CacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ytanalytics_cache_misses_total",
			Help: "Total cache misses, by cache name.",
		},
		[]string{"cache"},
	)

	TopChannelsRefresh = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ytanalytics_top_channels_refresh_duration_seconds",
			Help:    "Duration of top channel refresh runs.",
			Buckets: prometheus.DefBuckets,
		},
	)
)

var registerOnce sync.Once

// Register exports all collectors to the default registry. Call once at startup;
// pool may be nil when the database is not configured.
func Register(pool *pgxpool.Pool) {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			RequestDuration,
			RequestsInFlight,
			UpstreamRequests,
			UpstreamRetries,
			PipelineDuration,
			PipelineCandidates,
			EnrichmentFailures,
			CacheHits,
			CacheMisses,
			TopChannelsRefresh,
		)

		// DB pool gauges read live stats from pgxpool
		if pool != nil {
			prometheus.MustRegister(
				prometheus.NewGaugeFunc(
					prometheus.GaugeOpts{
						Name: "ytanalytics_db_connection_pool_active",
						Help: "Number of active database connections.",
					},
					func() float64 { return float64(pool.Stat().AcquiredConns()) },
				),
				prometheus.NewGaugeFunc(
					prometheus.GaugeOpts{
						Name: "ytanalytics_db_connection_pool_idle",
						Help: "Number of idle database connections.",
					},
					func() float64 { return float64(pool.Stat().IdleConns()) },
				),
			)
		}
	})
}
