package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bloggr_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bloggr_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// ReadRecords counts recorded post reads by reader kind.
	ReadRecords = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bloggr_post_reads_total",
		Help: "Total number of post reads recorded, by reader kind",
	}, []string{"kind"})

	// ReadRecordFailures counts background read-recording failures. Reads are
	// recorded off the request path, so failures surface here and in logs only.
	ReadRecordFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bloggr_post_read_record_failures_total",
		Help: "Total number of failed background post read recordings",
	})

	// InteractionToggles counts like/bookmark/follow toggles by relation and direction.
	InteractionToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bloggr_interaction_toggles_total",
		Help: "Total number of interaction toggles by relation and resulting state",
	}, []string{"relation", "state"})

	// CacheOutcomes counts cache lookups by key class and hit/miss.
	CacheOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bloggr_cache_outcomes_total",
		Help: "Total number of cache lookups by key class and outcome",
	}, []string{"class", "outcome"})
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
