// Package metrics holds the Prometheus collectors of the service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is safe to use through a nil pointer; calls are then no-ops.
type Metrics struct {
	registry      *prometheus.Registry
	mutations     *prometheus.CounterVec
	loads         *prometheus.CounterVec
	statsFailures prometheus.Counter
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		registry: reg,
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskflow_task_mutations_total",
			Help: "Task mutations by operation and result.",
		}, []string{"op", "result"}),
		loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskflow_controller_loads_total",
			Help: "Task list loads by result.",
		}, []string{"result"}),
		statsFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taskflow_stats_persist_failures_total",
			Help: "Failed attempts to persist the statistics summary.",
		}),
	}
	reg.MustRegister(m.mutations, m.loads, m.statsFailures)
	return m
}

func (m *Metrics) Mutation(op string, err error) {
	if m == nil {
		return
	}
	m.mutations.WithLabelValues(op, result(err)).Inc()
}

func (m *Metrics) Load(err error) {
	if m == nil {
		return
	}
	m.loads.WithLabelValues(result(err)).Inc()
}

func (m *Metrics) StatsPersistFailed() {
	if m == nil {
		return
	}
	m.statsFailures.Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
