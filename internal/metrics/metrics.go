// Package metrics exposes the process-level Prometheus counters for the
// control plane's own operations: task lifecycle, migration outcomes,
// elicitation expirations, and registry reachability. Collectors are
// scoped to this module's own domains rather than HTTP request metrics:
// there is no public HTTP request surface to instrument beyond the
// optional transport, which only mounts the exposition endpoint.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every Prometheus collector registered by this process.
type Metrics struct {
	TasksCreated     *prometheus.CounterVec
	TasksCompleted   *prometheus.CounterVec
	TaskDuration     *prometheus.HistogramVec
	TasksInFlight    prometheus.Gauge
	MigrationsTotal  *prometheus.CounterVec
	MigrationLatency *prometheus.HistogramVec
	ElicitationsOpen prometheus.Gauge
	ElicitationsDone *prometheus.CounterVec
	RegistryErrors   *prometheus.CounterVec

	registry *prometheus.Registry
}

// New creates a Metrics instance with all collectors registered.
func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.TasksCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "srcp_tasks_created_total",
			Help: "Total number of async tasks created, by type",
		},
		[]string{"type"},
	)

	m.TasksCompleted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "srcp_tasks_completed_total",
			Help: "Total number of async tasks reaching a terminal status",
		},
		[]string{"type", "status"},
	)

	m.TaskDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "srcp_task_duration_seconds",
			Help:    "Task execution time from RUNNING to a terminal status",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"type"},
	)

	m.TasksInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "srcp_tasks_in_flight",
			Help: "Number of tasks currently RUNNING",
		},
	)

	m.MigrationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "srcp_migrations_total",
			Help: "Total number of schema/context migrations, by outcome",
		},
		[]string{"scope", "outcome"},
	)

	m.MigrationLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "srcp_migration_duration_seconds",
			Help:    "Migration wall-clock time",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"scope"},
	)

	m.ElicitationsOpen = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "srcp_elicitations_open",
			Help: "Number of elicitation requests currently pending a response",
		},
	)

	m.ElicitationsDone = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "srcp_elicitations_total",
			Help: "Total number of elicitation requests resolved, by outcome",
		},
		[]string{"outcome"}, // answered | expired | cancelled
	)

	m.RegistryErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "srcp_registry_errors_total",
			Help: "Total number of registry client errors, by registry and kind",
		},
		[]string{"registry", "kind"},
	)

	m.registry.MustRegister(
		m.TasksCreated,
		m.TasksCompleted,
		m.TaskDuration,
		m.TasksInFlight,
		m.MigrationsTotal,
		m.MigrationLatency,
		m.ElicitationsOpen,
		m.ElicitationsDone,
		m.RegistryErrors,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)

	return m
}

// Handler returns an HTTP handler for the metrics endpoint, used only by
// the optional HTTP transport.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// RecordTaskCreated increments the created counter for a task type.
func (m *Metrics) RecordTaskCreated(taskType string) {
	m.TasksCreated.WithLabelValues(taskType).Inc()
	m.TasksInFlight.Inc()
}

// RecordTaskFinished records a task's terminal status and duration.
func (m *Metrics) RecordTaskFinished(taskType, status string, duration time.Duration) {
	m.TasksInFlight.Dec()
	m.TasksCompleted.WithLabelValues(taskType, status).Inc()
	m.TaskDuration.WithLabelValues(taskType).Observe(duration.Seconds())
}

// RecordMigration records one migration's scope ("schema" | "context"),
// outcome, and duration.
func (m *Metrics) RecordMigration(scope, outcome string, duration time.Duration) {
	m.MigrationsTotal.WithLabelValues(scope, outcome).Inc()
	m.MigrationLatency.WithLabelValues(scope).Observe(duration.Seconds())
}

// RecordElicitationOpened increments the open-requests gauge.
func (m *Metrics) RecordElicitationOpened() {
	m.ElicitationsOpen.Inc()
}

// RecordElicitationResolved decrements the open-requests gauge and records
// the resolution outcome.
func (m *Metrics) RecordElicitationResolved(outcome string) {
	m.ElicitationsOpen.Dec()
	m.ElicitationsDone.WithLabelValues(outcome).Inc()
}

// RecordRegistryError records a registry client failure by kind (an
// srerr.Kind value).
func (m *Metrics) RecordRegistryError(registry, kind string) {
	m.RegistryErrors.WithLabelValues(registry, kind).Inc()
}
