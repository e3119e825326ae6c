package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry for the coordinator.
	Registry = prometheus.NewRegistry()

	// Ticks counts coordinator loop iterations.
	Ticks = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "coordinator_ticks_total", Help: "Total coordinator ticks."},
	)
	// Replans counts reoptimizations by trigger (scheduled, event).
	Replans = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "coordinator_replans_total", Help: "Reoptimizations by trigger."},
		[]string{"trigger"},
	)
	// SolverDuration records solver run times in seconds.
	SolverDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "solver_duration_seconds", Help: "Solver run duration in seconds.", Buckets: prometheus.DefBuckets},
	)
	// SolverFailures counts solver errors (previous solution retained).
	SolverFailures = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "solver_failures_total", Help: "Solver errors; previous solution kept."},
	)
	// EventsDetected counts disruption events by type.
	EventsDetected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "disruption_events_total", Help: "Disruption events by type."},
		[]string{"type"},
	)
	// ProviderErrors counts provider refresh failures by provider name.
	ProviderErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "provider_errors_total", Help: "Provider refresh failures."},
		[]string{"provider"},
	)
	// ActiveRoutes tracks the route count of the installed solution.
	ActiveRoutes = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "solution_routes", Help: "Routes in the current solution."},
	)
	// HTTPRequests counts monitor requests by method, path, and status.
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "path", "status"},
	)
	// HTTPDuration records monitor request durations in seconds.
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"method", "path", "status"},
	)
)

// RegisterDefault registers collectors to the registry.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(Ticks)
		Registry.MustRegister(Replans)
		Registry.MustRegister(SolverDuration)
		Registry.MustRegister(SolverFailures)
		Registry.MustRegister(EventsDetected)
		Registry.MustRegister(ProviderErrors)
		Registry.MustRegister(ActiveRoutes)
		Registry.MustRegister(HTTPRequests)
		Registry.MustRegister(HTTPDuration)
		// Go/process collectors on our registry
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}

var regOnce sync.Once
