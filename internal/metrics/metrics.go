package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Outcome labels for ledger operations.
const (
	OutcomeApplied  = "applied"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

// Metrics holds the service's Prometheus instruments.
type Metrics struct {
	Registry *prometheus.Registry

	ledgerTransactions *prometheus.CounterVec
	ledgerConflicts    prometheus.Counter
	usageAlerts        *prometheus.CounterVec
	gasRecords         prometheus.Counter
}

// New registers the instruments on a private registry, plus the Go and
// process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		ledgerTransactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "powder_ledger_transactions_total",
			Help: "Receive and consume requests handled by the ledger, by type and outcome.",
		}, []string{"type", "outcome"}),
		ledgerConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "powder_ledger_version_conflicts_total",
			Help: "Balance writes retried because a concurrent writer changed the row.",
		}),
		usageAlerts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "usage_alerts_total",
			Help: "Usage anomaly alerts raised, at most one per resource class and UTC day.",
		}, []string{"class"}),
		gasRecords: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gas_usage_records_total",
			Help: "Gas usage records appended.",
		}),
	}
	reg.MustRegister(
		m.ledgerTransactions,
		m.ledgerConflicts,
		m.usageAlerts,
		m.gasRecords,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// The recorders below accept a nil receiver so services can run without metrics.

func (m *Metrics) LedgerTransaction(txType, outcome string) {
	if m == nil {
		return
	}
	m.ledgerTransactions.WithLabelValues(txType, outcome).Inc()
}

func (m *Metrics) LedgerConflict() {
	if m == nil {
		return
	}
	m.ledgerConflicts.Inc()
}

func (m *Metrics) UsageAlert(class string) {
	if m == nil {
		return
	}
	m.usageAlerts.WithLabelValues(class).Inc()
}

func (m *Metrics) GasRecorded() {
	if m == nil {
		return
	}
	m.gasRecords.Inc()
}
