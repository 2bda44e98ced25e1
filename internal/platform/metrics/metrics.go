package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	MutationsTotal    *prometheus.CounterVec
	AuditWritesTotal  prometheus.Counter
	AuditWritesFailed prometheus.Counter
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		MutationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "mbatrack_mutations_total",
			Help: "Total number of committed entity mutations, by entity and action",
		}, []string{"entity", "action"}),
		AuditWritesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mbatrack_audit_writes_total",
			Help: "Total number of attempted audit record writes",
		}),
		AuditWritesFailed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mbatrack_audit_writes_failed_total",
			Help: "Audit record writes dropped due to persistence failure",
		}),
	}
}

// IncrementMutation records one committed mutation for an entity/action pair.
func (m *Metrics) IncrementMutation(entity, action string) {
	m.MutationsTotal.WithLabelValues(entity, action).Inc()
}
