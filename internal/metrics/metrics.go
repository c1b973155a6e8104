package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agenthub_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "agenthub_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "path"},
	)

	// Business metrics
	AgentsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "agenthub_agents_created_total",
			Help: "Total agents created",
		},
	)

	MessagesRelayed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "agenthub_messages_relayed_total",
			Help: "Total chat messages relayed to the runtime",
		},
	)

	RelayFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agenthub_relay_failures_total",
			Help: "Total relay failures by kind",
		},
		[]string{"kind"}, // "validation", "not_found", "timeout", "upstream", "internal"
	)

	InteractionsRecorded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "agenthub_interactions_recorded_total",
			Help: "Total interaction rows recorded",
		},
	)

	InteractionWriteFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "agenthub_interaction_write_failures_total",
			Help: "Total best-effort interaction writes that failed",
		},
	)

	NotificationsEmitted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "agenthub_notifications_emitted_total",
			Help: "Total local notifications emitted by the bridge",
		},
	)

	AvatarsUploaded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "agenthub_avatars_uploaded_total",
			Help: "Total avatar images uploaded",
		},
	)

	// Rate limit metrics
	RateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agenthub_rate_limit_hits_total",
			Help: "Total rate limit hits",
		},
		[]string{"endpoint"},
	)

	BlockedRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agenthub_blocked_requests_total",
			Help: "Total blocked requests",
		},
		[]string{"reason"},
	)

	// Infrastructure metrics
	RuntimeLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "agenthub_runtime_latency_seconds",
			Help:    "External agent runtime call latency",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 15},
		},
	)

	PostgresLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "agenthub_postgres_latency_seconds",
			Help:    "PostgreSQL query latency",
			Buckets: []float64{.001, .005, .01, .025, .05, .1},
		},
	)
)
