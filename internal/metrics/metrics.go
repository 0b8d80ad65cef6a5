// Package metrics records decoding outcomes as Prometheus metrics.
//
// Metrics implements convert.Observer, so it can be handed straight to convert.New.
// All collectors live on the registry passed to New; nothing is registered globally.
package metrics

import (
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/katasec/dstream-transformer/pkg/convert"
)

const namespace = "dstream_transformer"

// Cell outcomes
const (
	OutcomeConverted = "converted"
	OutcomeDegraded  = "degraded"
)

// Metrics holds the transformer collectors
type Metrics struct {
	cells   *prometheus.CounterVec // cells_total{type,outcome}
	changes *prometheus.CounterVec // changes_total{table}
	batches *prometheus.CounterVec // batches_total{status}
}

var _ convert.Observer = (*Metrics)(nil)

// New creates the collectors and registers them on reg
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		cells: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cells_total",
			Help:      "Cells decoded, partitioned by declared type and outcome.",
		}, []string{"type", "outcome"}),
		changes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "changes_total",
			Help:      "Change events published, partitioned by table.",
		}, []string{"table"}),
		batches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batches_total",
			Help:      "Change batches handled, partitioned by status.",
		}, []string{"status"}),
	}
	for _, c := range []prometheus.Collector{m.cells, m.changes, m.batches} {
		if err := reg.Register(c); err != nil {
			return nil, errors.Wrap(err, "failed to register metrics")
		}
	}
	return m, nil
}

// Converted implements convert.Observer
func (m *Metrics) Converted(typeName string) {
	m.cells.WithLabelValues(typeName, OutcomeConverted).Inc()
}

// Degraded implements convert.Observer
func (m *Metrics) Degraded(err *convert.ConversionError) {
	m.cells.WithLabelValues(err.Type, OutcomeDegraded).Inc()
}

// ChangesPublished counts n published changes of table
func (m *Metrics) ChangesPublished(table string, n int) {
	if n <= 0 {
		return
	}
	m.changes.WithLabelValues(table).Add(float64(n))
}

// BatchDone counts a handled batch
func (m *Metrics) BatchDone(err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	m.batches.WithLabelValues(status).Inc()
}

// Handler serves the metrics of g in the Prometheus exposition format
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
