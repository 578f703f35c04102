package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Loader metrics
	AppsLoaded    *prometheus.GaugeVec
	LoadFailures  *prometheus.CounterVec
	LoadDuration  prometheus.Histogram
	Registrations *prometheus.CounterVec

	// Router metrics
	RoutesMounted   *prometheus.GaugeVec
	RouteCollisions prometheus.Gauge

	// Migration metrics
	MigrationOps      *prometheus.CounterVec
	MigrationDuration *prometheus.HistogramVec
}

// NewMetrics creates a metrics collector registered on reg. A nil reg
// registers on the default Prometheus registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "appkit_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "appkit_http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),

		AppsLoaded: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "appkit_apps_loaded",
				Help: "Number of apps in the registry by kind",
			},
			[]string{"kind"},
		),
		LoadFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "appkit_load_failures_total",
				Help: "App load failures by pipeline stage",
			},
			[]string{"stage"},
		),
		LoadDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "appkit_load_duration_seconds",
				Help:    "Duration of a full load cycle",
				Buckets: prometheus.DefBuckets,
			},
		),
		Registrations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "appkit_registrations_total",
				Help: "Entrypoint invocations by app and status",
			},
			[]string{"app", "status"},
		),

		RoutesMounted: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "appkit_routes_mounted",
				Help: "Routes mounted from each app's route collection",
			},
			[]string{"app"},
		),
		RouteCollisions: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "appkit_route_collisions",
				Help: "Route collisions found by the last assembly",
			},
		),

		MigrationOps: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "appkit_migration_operations_total",
				Help: "Migration operations by target, operation and status",
			},
			[]string{"target", "op", "status"},
		),
		MigrationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "appkit_migration_duration_seconds",
				Help:    "Migration operation latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"target", "op"},
		),
	}
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, route, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, route, status).Inc()
	m.RequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// SetAppsLoaded sets the registry size for a kind
func (m *Metrics) SetAppsLoaded(kind string, count int) {
	m.AppsLoaded.WithLabelValues(kind).Set(float64(count))
}

// RecordLoadFailure counts a failed load at stage
func (m *Metrics) RecordLoadFailure(stage string) {
	m.LoadFailures.WithLabelValues(stage).Inc()
}

// ObserveLoad records the duration of a load cycle
func (m *Metrics) ObserveLoad(duration time.Duration) {
	m.LoadDuration.Observe(duration.Seconds())
}

// RecordRegistration counts an entrypoint invocation
func (m *Metrics) RecordRegistration(app, status string) {
	m.Registrations.WithLabelValues(app, status).Inc()
}

// SetRoutesMounted sets the mounted route count for an app
func (m *Metrics) SetRoutesMounted(app string, count int) {
	m.RoutesMounted.WithLabelValues(app).Set(float64(count))
}

// SetRouteCollisions sets the collision count
func (m *Metrics) SetRouteCollisions(count int) {
	m.RouteCollisions.Set(float64(count))
}

// RecordMigration records a migration operation
func (m *Metrics) RecordMigration(target, op, status string, duration time.Duration) {
	m.MigrationOps.WithLabelValues(target, op, status).Inc()
	m.MigrationDuration.WithLabelValues(target, op).Observe(duration.Seconds())
}
