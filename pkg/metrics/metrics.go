package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all zone-service metrics
type Metrics struct {
	serviceName string
	registry    *prometheus.Registry

	// HTTP metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Kafka and outbox metrics
	KafkaEventsPublished  *prometheus.CounterVec
	KafkaPublishDuration  *prometheus.HistogramVec
	OutboxPending         prometheus.Gauge
	OutboxPublishDuration *prometheus.HistogramVec
	OutboxRetries         *prometheus.CounterVec

	// MongoDB metrics
	MongoDBOperations        *prometheus.CounterVec
	MongoDBOperationDuration *prometheus.HistogramVec

	// Collaborator metrics
	ExternalCallDuration *prometheus.HistogramVec

	// Domain metrics
	Resolutions        *prometheus.CounterVec
	SiteCacheRefreshes *prometheus.CounterVec
	SiteCacheSites     prometheus.Gauge
	SiteCacheAge       prometheus.Gauge
	PickupPointRelinks *prometheus.CounterVec
	QuotesComputed     *prometheus.CounterVec

	// Circuit breaker metrics
	CircuitBreakerState *prometheus.GaugeVec
	CircuitBreakerTrips *prometheus.CounterVec
}

// Config holds metrics configuration
type Config struct {
	ServiceName string
	Namespace   string
}

// DefaultConfig returns default metrics configuration
func DefaultConfig(serviceName string) *Config {
	return &Config{
		ServiceName: serviceName,
		Namespace:   "zones",
	}
}

// New creates a new Metrics instance registered on its own registry
func New(config *Config) *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(prometheus.NewGoCollector())
	registry.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))

	ns := config.Namespace
	constLabels := prometheus.Labels{"service": config.ServiceName}

	m := &Metrics{
		serviceName: config.ServiceName,
		registry:    registry,
	}

	m.HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: ns, Name: "http_requests_total", Help: "Total number of HTTP requests"},
		[]string{"service", "method", "path", "status"},
	)
	m.HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: ns,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"service", "method", "path"},
	)
	m.HTTPRequestsInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace:   ns,
		Name:        "http_requests_in_flight",
		Help:        "Number of HTTP requests currently being processed",
		ConstLabels: constLabels,
	})

	m.KafkaEventsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: ns, Name: "kafka_events_published_total", Help: "Total number of Kafka events published"},
		[]string{"service", "topic", "event_type", "status"},
	)
	m.KafkaPublishDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: ns,
			Name:      "kafka_publish_duration_seconds",
			Help:      "Kafka publish duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"service", "topic"},
	)
	m.OutboxPending = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace:   ns,
		Name:        "outbox_pending_events",
		Help:        "Unpublished events found in the last outbox poll",
		ConstLabels: constLabels,
	})
	m.OutboxPublishDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: ns,
			Name:      "outbox_publish_duration_seconds",
			Help:      "Outbox event publish duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"service", "event_type", "status"},
	)
	m.OutboxRetries = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: ns, Name: "outbox_retries_total", Help: "Outbox publish retries"},
		[]string{"service", "event_type"},
	)

	m.MongoDBOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: ns, Name: "mongodb_operations_total", Help: "Total number of MongoDB operations"},
		[]string{"service", "collection", "operation", "status"},
	)
	m.MongoDBOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: ns,
			Name:      "mongodb_operation_duration_seconds",
			Help:      "MongoDB operation duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"service", "collection", "operation"},
	)

	m.ExternalCallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: ns,
			Name:      "external_call_duration_seconds",
			Help:      "Duration of calls to external collaborators",
			Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 15},
		},
		[]string{"service", "collaborator", "operation", "status"},
	)

	m.Resolutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: ns, Name: "zone_resolutions_total", Help: "Address resolutions by outcome"},
		[]string{"service", "outcome"},
	)
	m.SiteCacheRefreshes = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: ns, Name: "site_cache_refreshes_total", Help: "Site cache refresh attempts"},
		[]string{"service", "status"},
	)
	m.SiteCacheSites = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace:   ns,
		Name:        "site_cache_sites",
		Help:        "Number of sites in the current snapshot",
		ConstLabels: constLabels,
	})
	m.SiteCacheAge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace:   ns,
		Name:        "site_cache_last_refresh_timestamp_seconds",
		Help:        "Unix time of the last successful site cache refresh",
		ConstLabels: constLabels,
	})
	m.PickupPointRelinks = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: ns, Name: "pickup_point_relinks_total", Help: "Pickup point relinks pushed to the logistics provider"},
		[]string{"service", "trigger", "status"},
	)
	m.QuotesComputed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: ns, Name: "delivery_quotes_total", Help: "Delivery price quotes by country and tariff mode"},
		[]string{"service", "country", "mode"},
	)

	m.CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Namespace: ns, Name: "circuit_breaker_state", Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)"},
		[]string{"service", "name"},
	)
	m.CircuitBreakerTrips = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: ns, Name: "circuit_breaker_trips_total", Help: "Total number of circuit breaker trips"},
		[]string{"service", "name"},
	)

	registry.MustRegister(
		m.HTTPRequestsTotal, m.HTTPRequestDuration, m.HTTPRequestsInFlight,
		m.KafkaEventsPublished, m.KafkaPublishDuration,
		m.OutboxPending, m.OutboxPublishDuration, m.OutboxRetries,
		m.MongoDBOperations, m.MongoDBOperationDuration,
		m.ExternalCallDuration,
		m.Resolutions, m.SiteCacheRefreshes, m.SiteCacheSites, m.SiteCacheAge,
		m.PickupPointRelinks, m.QuotesComputed,
		m.CircuitBreakerState, m.CircuitBreakerTrips,
	)

	return m
}

// Handler returns the HTTP handler for the metrics endpoint
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(m.serviceName, method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(m.serviceName, method, path).Observe(duration.Seconds())
}

// IncrementHTTPRequestsInFlight increments the in-flight gauge
func (m *Metrics) IncrementHTTPRequestsInFlight() {
	m.HTTPRequestsInFlight.Inc()
}

// DecrementHTTPRequestsInFlight decrements the in-flight gauge
func (m *Metrics) DecrementHTTPRequestsInFlight() {
	m.HTTPRequestsInFlight.Dec()
}

// RecordKafkaPublish records a Kafka publish
func (m *Metrics) RecordKafkaPublish(topic, eventType string, success bool, duration time.Duration) {
	m.KafkaEventsPublished.WithLabelValues(m.serviceName, topic, eventType, statusLabel(success)).Inc()
	m.KafkaPublishDuration.WithLabelValues(m.serviceName, topic).Observe(duration.Seconds())
}

// SetOutboxPending records the number of pending outbox events
func (m *Metrics) SetOutboxPending(count int) {
	m.OutboxPending.Set(float64(count))
}

// RecordOutboxPublish records the outcome of an outbox publish
func (m *Metrics) RecordOutboxPublish(eventType string, success bool, duration time.Duration) {
	m.OutboxPublishDuration.WithLabelValues(m.serviceName, eventType, statusLabel(success)).Observe(duration.Seconds())
}

// RecordOutboxRetry records an outbox retry
func (m *Metrics) RecordOutboxRetry(eventType string) {
	m.OutboxRetries.WithLabelValues(m.serviceName, eventType).Inc()
}

// RecordMongoDBOperation records a MongoDB operation
func (m *Metrics) RecordMongoDBOperation(collection, operation string, success bool, duration time.Duration) {
	m.MongoDBOperations.WithLabelValues(m.serviceName, collection, operation, statusLabel(success)).Inc()
	m.MongoDBOperationDuration.WithLabelValues(m.serviceName, collection, operation).Observe(duration.Seconds())
}

// RecordExternalCall records a call to an external collaborator
func (m *Metrics) RecordExternalCall(collaborator, operation string, success bool, duration time.Duration) {
	m.ExternalCallDuration.WithLabelValues(m.serviceName, collaborator, operation, statusLabel(success)).Observe(duration.Seconds())
}

// RecordResolution records the outcome of an address resolution
func (m *Metrics) RecordResolution(outcome string) {
	m.Resolutions.WithLabelValues(m.serviceName, outcome).Inc()
}

// RecordSiteCacheRefresh records a refresh attempt and, on success, the snapshot size
func (m *Metrics) RecordSiteCacheRefresh(success bool, sites int, at time.Time) {
	m.SiteCacheRefreshes.WithLabelValues(m.serviceName, statusLabel(success)).Inc()
	if success {
		m.SiteCacheSites.Set(float64(sites))
		m.SiteCacheAge.Set(float64(at.Unix()))
	}
}

// RecordPickupPointRelink records a relink pushed to the logistics provider
func (m *Metrics) RecordPickupPointRelink(trigger string, success bool) {
	m.PickupPointRelinks.WithLabelValues(m.serviceName, trigger, statusLabel(success)).Inc()
}

// RecordQuote records a computed delivery quote
func (m *Metrics) RecordQuote(country, mode string) {
	m.QuotesComputed.WithLabelValues(m.serviceName, country, mode).Inc()
}

// SetCircuitBreakerState sets the circuit breaker state
func (m *Metrics) SetCircuitBreakerState(name string, state int) {
	m.CircuitBreakerState.WithLabelValues(m.serviceName, name).Set(float64(state))
}

// RecordCircuitBreakerTrip records a circuit breaker trip
func (m *Metrics) RecordCircuitBreakerTrip(name string) {
	m.CircuitBreakerTrips.WithLabelValues(m.serviceName, name).Inc()
}

func statusLabel(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}
