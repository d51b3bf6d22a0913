package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// Stream session metrics
	SessionsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "stream_sessions_active",
			Help: "Number of active stream sessions",
		},
		[]string{"transport"},
	)

	EventsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stream_events_sent_total",
			Help: "Total number of events written to client streams",
		},
		[]string{"transport", "event"},
	)

	SubscriberLagTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stream_subscriber_lag_total",
			Help: "Total number of events missed by lagging subscribers",
		},
	)

	// Change feed metrics
	NotificationsReceivedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "change_feed_notifications_received_total",
			Help: "Total number of raw notifications received from the change feed",
		},
		[]string{"channel"},
	)

	DecodeErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "change_feed_decode_errors_total",
			Help: "Total number of notifications dropped because they could not be decoded",
		},
		[]string{"channel"},
	)

	EventsDispatchedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_dispatched_total",
			Help: "Total number of events published to recipient broadcasters",
		},
		[]string{"event"},
	)

	EventsDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_dropped_total",
			Help: "Total number of events dropped before reaching a broadcaster",
		},
		[]string{"reason"},
	)

	// Database metrics
	DBConnectionsOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_open",
			Help: "Number of open database connections",
		},
	)

	DBConnectionsInUse = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_in_use",
			Help: "Number of database connections currently in use",
		},
	)

	DBConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_idle",
			Help: "Number of idle database connections",
		},
	)
)
