// Package metrics exposes Prometheus collectors for the import pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds every collector the pipeline publishes.
type Metrics struct {
	ImportsStarted  prometheus.Counter
	ImportsFinished *prometheus.CounterVec
	RowsImported    prometheus.Counter
	RowsFailed      prometheus.Counter
	BatchDuration   prometheus.Histogram
	ActiveImports   prometheus.Gauge
}

// New registers the pipeline collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		ImportsStarted: factory.NewCounter(prometheus.CounterOpts{
			Name: "contact_imports_started_total",
			Help: "Number of import runs started.",
		}),
		ImportsFinished: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "contact_imports_finished_total",
			Help: "Number of import runs finished, by terminal state.",
		}, []string{"state"}),
		RowsImported: factory.NewCounter(prometheus.CounterOpts{
			Name: "contact_import_rows_imported_total",
			Help: "Number of rows the store accepted.",
		}),
		RowsFailed: factory.NewCounter(prometheus.CounterOpts{
			Name: "contact_import_rows_failed_total",
			Help: "Number of rows that failed to import.",
		}),
		BatchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "contact_import_batch_duration_seconds",
			Help:    "Wall time per batch submission to the store.",
			Buckets: prometheus.DefBuckets,
		}),
		ActiveImports: factory.NewGauge(prometheus.GaugeOpts{
			Name: "contact_imports_active",
			Help: "Import runs currently in the Running state.",
		}),
	}
}
