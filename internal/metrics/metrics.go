// Package metrics exposes Prometheus collectors for the ledger server.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mmynk/roomledger/internal/models"
)

// Metrics holds the collectors of one server. Each instance owns its
// registry so tests can create as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	rpcRequests *prometheus.CounterVec
	rpcDuration *prometheus.HistogramVec

	expenses *prometheus.GaugeVec
	people   prometheus.Gauge
	budget   *prometheus.GaugeVec
	saves    *prometheus.CounterVec
}

// New creates and registers the ledger collectors plus the Go runtime and
// process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		rpcRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "roomledger",
			Name:      "rpc_requests_total",
			Help:      "RPC calls by procedure and result code.",
		}, []string{"procedure", "code"}),
		rpcDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "roomledger",
			Name:      "rpc_duration_seconds",
			Help:      "RPC latency by procedure.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"procedure"}),
		expenses: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "roomledger",
			Name:      "expenses",
			Help:      "Number of recorded expenses by type.",
		}, []string{"type"}),
		people: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "roomledger",
			Name:      "people",
			Help:      "Number of people in the ledger, current user included.",
		}),
		budget: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "roomledger",
			Name:      "budget",
			Help:      "Monthly budget amounts of the current user.",
		}, []string{"field"}),
		saves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "roomledger",
			Name:      "snapshot_saves_total",
			Help:      "Snapshot saves by result.",
		}, []string{"result"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.rpcRequests,
		m.rpcDuration,
		m.expenses,
		m.people,
		m.budget,
		m.saves,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveRPC records one finished RPC call.
func (m *Metrics) ObserveRPC(procedure, code string, elapsed time.Duration) {
	m.rpcRequests.WithLabelValues(procedure, code).Inc()
	m.rpcDuration.WithLabelValues(procedure).Observe(elapsed.Seconds())
}

// ObserveSave records the outcome of a snapshot save.
func (m *Metrics) ObserveSave(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.saves.WithLabelValues(result).Inc()
}

// SetLedger updates the ledger gauges from a snapshot.
func (m *Metrics) SetLedger(snapshot *models.Snapshot) {
	counts := map[models.ExpenseType]int{
		models.ExpenseTypePersonal: 0,
		models.ExpenseTypeShared:   0,
	}
	for _, e := range snapshot.Expenses {
		counts[e.Type]++
	}
	for t, n := range counts {
		m.expenses.WithLabelValues(string(t)).Set(float64(n))
	}
	m.people.Set(float64(len(snapshot.Roommates)))

	m.budget.WithLabelValues("total").Set(snapshot.Budget.Total.InexactFloat64())
	m.budget.WithLabelValues("spent").Set(snapshot.Budget.Spent.InexactFloat64())
	m.budget.WithLabelValues("remaining").Set(snapshot.Budget.Remaining.InexactFloat64())
}
