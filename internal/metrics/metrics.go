// Package metrics exposes an optional Prometheus /metrics endpoint
// tracking plans created, subtasks dispatched, and registry status
// transitions, so an operator running the supervisor continuously can
// wire it into existing dashboards.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// PlansCreated counts every plan successfully validated and archived.
	PlansCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "zoeorch",
		Name:      "plans_created_total",
		Help:      "Total number of plans created and archived.",
	})

	// SubtasksDispatched counts every subtask queued by the dispatcher.
	SubtasksDispatched = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "zoeorch",
		Name:      "subtasks_dispatched_total",
		Help:      "Total number of subtasks released onto the execution queue.",
	})

	// RegistryTransitions counts registry status transitions observed by
	// the supervisor, labeled by the destination status.
	RegistryTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "zoeorch",
		Name:      "registry_status_transitions_total",
		Help:      "Registry entries transitioning into a given status.",
	}, []string{"status"})

	// SupervisorRetries counts Ralph Loop v2 retries triggered.
	SupervisorRetries = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "zoeorch",
		Name:      "supervisor_retries_total",
		Help:      "Total number of agent restarts triggered by failing CI checks.",
	})
)

// Handler returns the standard promhttp handler for mounting under
// /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Serve starts a dedicated metrics listener on addr; callers typically run
// this in its own goroutine alongside the supervisor loop.
func Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	return http.ListenAndServe(addr, mux)
}
