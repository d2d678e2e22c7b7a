package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the pick'em sync service

var (
	// API Call metrics
	APICallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pickem_api_calls_total",
			Help: "Total number of SportsDataIO API calls",
		},
		[]string{"endpoint", "status"},
	)

	APICallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pickem_api_call_duration_seconds",
			Help:    "Duration of API calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	// Database metrics
	DBQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pickem_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "table", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pickem_db_query_duration_seconds",
			Help:    "Duration of database queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pickem_db_connections_active",
			Help: "Number of active database connections",
		},
	)

	DBConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pickem_db_connections_idle",
			Help: "Number of idle database connections",
		},
	)

	// Cache metrics
	CacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pickem_cache_hits_total",
			Help: "Total number of cache hits",
		},
	)

	CacheMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pickem_cache_misses_total",
			Help: "Total number of cache misses",
		},
	)

	CacheOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pickem_cache_operation_duration_seconds",
			Help:    "Duration of cache operations in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"operation"},
	)

	// Sync metrics
	SyncOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pickem_sync_operations_total",
			Help: "Total number of per-week sync operations",
		},
		[]string{"kind", "status"},
	)

	SyncDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pickem_sync_duration_seconds",
			Help:    "Duration of per-week sync operations in seconds",
			Buckets: []float64{.1, .5, 1, 5, 10, 30, 60, 120},
		},
		[]string{"kind"},
	)

	LastSuccessfulSync = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "pickem_last_successful_sync_timestamp",
			Help: "Timestamp of last successful sync per kind",
		},
		[]string{"kind"},
	)

	GatekeeperDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pickem_gatekeeper_decisions_total",
			Help: "Gatekeeper decisions by outcome (sync, skip, fail_closed)",
		},
		[]string{"gatekeeper", "decision"},
	)

	CurrentWeek = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "pickem_current_week",
			Help: "Most recently resolved current week per season",
		},
		[]string{"season"},
	)

	ActiveGames = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pickem_active_games",
			Help: "Games in the current week that are live or near kickoff",
		},
	)

	// Trigger metrics
	TriggerRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pickem_trigger_requests_total",
			Help: "Total number of sync trigger requests",
		},
		[]string{"endpoint", "code"},
	)

	SchedulerRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pickem_scheduler_runs_total",
			Help: "Total number of in-process scheduled job runs",
		},
		[]string{"job"},
	)

	SchedulerRunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pickem_scheduler_run_duration_seconds",
			Help:    "Duration of scheduled job runs in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
		},
		[]string{"job"},
	)

	// Error metrics
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pickem_errors_total",
			Help: "Total number of errors",
		},
		[]string{"component", "error_type"},
	)

	// System metrics
	SystemUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pickem_system_uptime_seconds",
			Help: "System uptime in seconds",
		},
	)
)

// RecordAPICall records an API call metric
func RecordAPICall(endpoint, status string, duration float64) {
	APICallsTotal.WithLabelValues(endpoint, status).Inc()
	APICallDuration.WithLabelValues(endpoint).Observe(duration)
}

// RecordDBQuery records a database query metric
func RecordDBQuery(operation, table, status string, duration float64) {
	DBQueriesTotal.WithLabelValues(operation, table, status).Inc()
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration)
}

// RecordCacheHit records a cache hit
func RecordCacheHit() {
	CacheHitsTotal.Inc()
}

// RecordCacheMiss records a cache miss
func RecordCacheMiss() {
	CacheMissesTotal.Inc()
}

// RecordCacheOperation records a cache operation duration
func RecordCacheOperation(operation string, duration float64) {
	CacheOperationDuration.WithLabelValues(operation).Observe(duration)
}

// RecordSync records a per-week sync of one kind
func RecordSync(kind, status string, duration float64) {
	SyncOperationsTotal.WithLabelValues(kind, status).Inc()
	SyncDuration.WithLabelValues(kind).Observe(duration)

	if status == "success" {
		LastSuccessfulSync.WithLabelValues(kind).SetToCurrentTime()
	}
}

// RecordGatekeeperDecision records whether a gatekeeper synced or skipped
func RecordGatekeeperDecision(gatekeeper, decision string) {
	GatekeeperDecisionsTotal.WithLabelValues(gatekeeper, decision).Inc()
}

// RecordCurrentWeek records the resolved current week
func RecordCurrentWeek(season string, week int) {
	CurrentWeek.WithLabelValues(season).Set(float64(week))
}

// RecordTrigger records an HTTP trigger request
func RecordTrigger(endpoint, code string) {
	TriggerRequestsTotal.WithLabelValues(endpoint, code).Inc()
}

// RecordSchedulerRun records an in-process scheduled job run
func RecordSchedulerRun(job string, duration float64) {
	SchedulerRunsTotal.WithLabelValues(job).Inc()
	SchedulerRunDuration.WithLabelValues(job).Observe(duration)
}

// RecordError records an error
func RecordError(component, errorType string) {
	ErrorsTotal.WithLabelValues(component, errorType).Inc()
}

// UpdateDBConnectionStats updates database connection pool statistics
func UpdateDBConnectionStats(active, idle int32) {
	DBConnectionsActive.Set(float64(active))
	DBConnectionsIdle.Set(float64(idle))
}
