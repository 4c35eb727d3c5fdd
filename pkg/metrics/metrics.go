// Package metrics holds the Prometheus counters for store activity.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

const (
	namespace = "aquarium"

	resultSuccess = "success"
	resultError   = "error"
)

// Metrics groups the counters shared by storage backends and managers.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	storeOps  *prometheus.CounterVec
	malformed *prometheus.CounterVec
}

// New builds the counters and registers them with reg. A nil reg leaves them unregistered.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		storeOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "store_operations_total",
				Help:      "Storage backend operations by collection, operation and result.",
			},
			[]string{"collection", "op", "result"},
		),
		malformed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "malformed_records_total",
				Help:      "Persisted records skipped during load because they could not be decoded.",
			},
			[]string{"collection"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.storeOps, m.malformed)
	}
	return m
}

// ObserveStoreOp counts one load or save against a collection.
func (m *Metrics) ObserveStoreOp(collection, op string, err error) {
	if m == nil {
		return
	}
	result := resultSuccess
	if err != nil {
		result = resultError
	}
	m.storeOps.WithLabelValues(collection, op, result).Inc()
}

// MalformedRecord counts one dropped record.
func (m *Metrics) MalformedRecord(collection string) {
	if m == nil {
		return
	}
	m.malformed.WithLabelValues(collection).Inc()
}

// MalformedCount returns how many records of collection have been dropped so far.
func (m *Metrics) MalformedCount(collection string) float64 {
	if m == nil {
		return 0
	}
	var out dto.Metric
	if err := m.malformed.WithLabelValues(collection).Write(&out); err != nil {
		return 0
	}
	return out.GetCounter().GetValue()
}
