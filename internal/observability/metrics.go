package observability

import (
	"database/sql"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds every custom collector of the service. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	// HTTP Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Auth Metrics
	AuthFailuresTotal *prometheus.CounterVec
	LoginsTotal       *prometheus.CounterVec

	// Job Metrics
	JobWritesTotal *prometheus.CounterVec

	// Cache (Redis) Metrics
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec
	CacheStaleWrites *prometheus.CounterVec

	// Queue (RabbitMQ) Metrics
	QueueMessagesPublished *prometheus.CounterVec
	QueueMessagesConsumed  *prometheus.CounterVec
	EventsFailedTotal      *prometheus.CounterVec

	registerer prometheus.Registerer
}

// NewMetrics registers all collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),

		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		HTTPRequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
		),

		AuthFailuresTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_failures_total",
				Help: "Requests rejected by the access gate",
			},
			[]string{"reason"}, // missing, invalid, expired
		),

		LoginsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "logins_total",
				Help: "Login attempts by outcome",
			},
			[]string{"result"},
		),

		JobWritesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "job_writes_total",
				Help: "Job create/update/delete operations",
			},
			[]string{"operation"},
		),

		CacheHitsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cache_hits_total",
				Help: "Total number of cache hits",
			},
			[]string{"key_type"},
		),

		CacheMissesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cache_misses_total",
				Help: "Total number of cache misses",
			},
			[]string{"key_type"},
		),
		CacheStaleWrites: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cache_stale_writes_total",
				Help: "Cache writes skipped because the owner was invalidated during the read",
			},
			[]string{"key_type"},
		),

		QueueMessagesPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "queue_messages_published_total",
				Help: "Total number of messages published to the queue",
			},
			[]string{"queue_name"},
		),

		QueueMessagesConsumed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "queue_messages_consumed_total",
				Help: "Total number of messages consumed from the queue",
			},
			[]string{"queue_name"},
		),

		EventsFailedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "events_failed_total",
				Help: "Lifecycle events that could not be published or recorded",
			},
			[]string{"event_type", "error_type"},
		),

		registerer: reg,
	}
}

// RegisterDBStats exposes connection pool statistics of db.
func (m *Metrics) RegisterDBStats(db *sql.DB, name string) error {
	if m == nil || m.registerer == nil {
		return nil
	}
	return m.registerer.Register(collectors.NewDBStatsCollector(db, name))
}

func (m *Metrics) AuthFailure(reason string) {
	if m == nil {
		return
	}
	m.AuthFailuresTotal.WithLabelValues(reason).Inc()
}

func (m *Metrics) Login(result string) {
	if m == nil {
		return
	}
	m.LoginsTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) JobWrite(operation string) {
	if m == nil {
		return
	}
	m.JobWritesTotal.WithLabelValues(operation).Inc()
}

func (m *Metrics) CacheHit(keyType string) {
	if m == nil {
		return
	}
	m.CacheHitsTotal.WithLabelValues(keyType).Inc()
}

func (m *Metrics) CacheMiss(keyType string) {
	if m == nil {
		return
	}
	m.CacheMissesTotal.WithLabelValues(keyType).Inc()
}

func (m *Metrics) CacheStaleWrite(keyType string) {
	if m == nil {
		return
	}
	m.CacheStaleWrites.WithLabelValues(keyType).Inc()
}

func (m *Metrics) Published(queue string) {
	if m == nil {
		return
	}
	m.QueueMessagesPublished.WithLabelValues(queue).Inc()
}

func (m *Metrics) Consumed(queue string) {
	if m == nil {
		return
	}
	m.QueueMessagesConsumed.WithLabelValues(queue).Inc()
}

func (m *Metrics) EventFailed(eventType, errorType string) {
	if m == nil {
		return
	}
	m.EventsFailedTotal.WithLabelValues(eventType, errorType).Inc()
}
