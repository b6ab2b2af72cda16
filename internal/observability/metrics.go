// Package observability provides Prometheus metrics and OpenTelemetry tracing
// for the API, the ranking pipeline, and the realtime notification hub.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aktiv_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "aktiv_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// RankingLatency records end-to-end candidate ranking latency per mode.
	RankingLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "aktiv_ranking_latency_seconds",
		Help:    "Candidate ranking latency in seconds by matching mode",
		Buckets: prometheus.DefBuckets,
	}, []string{"mode"})

	// RankingCandidatePool records the candidate pool size per mode before
	// scoring and truncation.
	RankingCandidatePool = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "aktiv_ranking_candidate_pool_size",
		Help:    "Number of candidates considered per ranking request by mode",
		Buckets: []float64{0, 10, 25, 50, 100, 250, 500, 1000, 2500},
	}, []string{"mode"})

	// SuggestionsCacheHits counts suggestion cache lookups by outcome.
	SuggestionsCacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aktiv_suggestions_cache_total",
		Help: "Suggestion cache lookups by outcome (hit, miss)",
	}, []string{"outcome"})

	// MatchEventsTotal counts match lifecycle events by type.
	MatchEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aktiv_match_events_total",
		Help: "Total match lifecycle events by type (requested, accepted, rejected, ended)",
	}, []string{"event_type"})

	// WebSocketConnectionsTotal is the gauge of active WebSocket connections.
	WebSocketConnectionsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "aktiv_websocket_connections_total",
		Help: "Total number of active WebSocket connections",
	})

	// WebSocketUserConnections is the gauge of connections per user.
	WebSocketUserConnections = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "aktiv_websocket_user_connections",
		Help: "Number of WebSocket connections per user",
	}, []string{"user_id"})

	// WebSocketEventsTotal counts WebSocket events by type.
	WebSocketEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aktiv_websocket_events_total",
		Help: "Total WebSocket events by type",
	}, []string{"event_type"})

	// WebSocketBackpressureDrops counts messages dropped due to slow clients.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aktiv_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	}, []string{"reason"})
)

// DatabaseMetrics wraps DB access for recording query latency.
type DatabaseMetrics struct {
	db *gorm.DB
}

// NewDatabaseMetrics returns a new DatabaseMetrics instance.
func NewDatabaseMetrics(db *gorm.DB) *DatabaseMetrics {
	return &DatabaseMetrics{db: db}
}

// ObserveQuery records the latency of a database query.
func (m *DatabaseMetrics) ObserveQuery(operation, table string, start time.Time) {
	DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
}

// TrackQuery returns a function that records query latency when called (e.g. defer).
func (m *DatabaseMetrics) TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		m.ObserveQuery(operation, table, start)
	}
}

// ObserveRanking records latency and pool size for one ranking request.
func ObserveRanking(mode string, poolSize int, start time.Time) {
	RankingLatency.WithLabelValues(mode).Observe(time.Since(start).Seconds())
	RankingCandidatePool.WithLabelValues(mode).Observe(float64(poolSize))
}

// RecordMatchEvent increments the match lifecycle counter for the event type.
func RecordMatchEvent(eventType string) {
	MatchEventsTotal.WithLabelValues(eventType).Inc()
}

// RecordCacheLookup increments the suggestions cache counter for the outcome.
func RecordCacheLookup(hit bool) {
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	SuggestionsCacheHits.WithLabelValues(outcome).Inc()
}
