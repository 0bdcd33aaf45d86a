package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ripple_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ripple_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// NotificationFanout counts created notifications by type.
	NotificationFanout = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ripple_notification_fanout_total",
		Help: "Total number of notifications created by type",
	}, []string{"type"})

	// TimelineQueries counts timeline reads by filter.
	TimelineQueries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ripple_timeline_queries_total",
		Help: "Total number of timeline queries by filter",
	}, []string{"filter"})

	// TrendingRecomputes counts full trending recomputations.
	TrendingRecomputes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ripple_trending_recomputes_total",
		Help: "Total number of full trending hashtag recomputations",
	})
)

// ObserveQuery records the latency of a database query.
func ObserveQuery(operation, table string, start time.Time) {
	DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
}

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		ObserveQuery(operation, table, start)
	}
}
