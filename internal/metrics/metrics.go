// Package metrics exposes ingestion metrics in Prometheus format
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bobmcallan/fundmix/internal/interfaces"
	"github.com/bobmcallan/fundmix/internal/models"
)

// Compile-time interface check
var _ interfaces.MetricsRecorder = (*Registry)(nil)

// Registry holds the fundmix collectors on a private Prometheus registry.
type Registry struct {
	reg *prometheus.Registry

	Ingestions        *prometheus.CounterVec
	IngestionDuration *prometheus.HistogramVec
	RowsRead          prometheus.Counter
	RowsDropped       *prometheus.CounterVec
	Entries           prometheus.Counter
	Funds             prometheus.Gauge
}

// NewRegistry creates and registers all fundmix metrics.
func NewRegistry() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),

		Ingestions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fundmix_ingestions_total",
				Help: "CSV ingestions by result",
			},
			[]string{"result"},
		),

		IngestionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fundmix_ingestion_duration_seconds",
				Help:    "Time to parse and index an upload",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
			[]string{"result"},
		),

		RowsRead: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "fundmix_rows_read_total",
				Help: "Data rows read from published uploads",
			},
		),

		RowsDropped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fundmix_rows_dropped_total",
				Help: "Rows that produced no entry, by reason",
			},
			[]string{"reason"},
		),

		Entries: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "fundmix_entries_total",
				Help: "Entries indexed from published uploads",
			},
		),

		Funds: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "fundmix_funds",
				Help: "Funds in the current index",
			},
		),
	}

	r.reg.MustRegister(
		r.Ingestions,
		r.IngestionDuration,
		r.RowsRead,
		r.RowsDropped,
		r.Entries,
		r.Funds,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return r
}

// IngestionCompleted records a published ingestion.
func (r *Registry) IngestionCompleted(s *models.IngestionSummary) {
	const result = "published"
	r.Ingestions.WithLabelValues(result).Inc()
	r.IngestionDuration.WithLabelValues(result).Observe(s.Duration.Seconds())
	r.RowsRead.Add(float64(s.Rows))
	r.Entries.Add(float64(s.Entries))
	r.RowsDropped.WithLabelValues("empty").Add(float64(s.DroppedEmpty))
	r.RowsDropped.WithLabelValues("invalid").Add(float64(s.DroppedInvalid))
	r.Funds.Set(float64(len(s.Funds)))
}

// IngestionFailed records an ingestion that did not publish.
func (r *Registry) IngestionFailed(result string, elapsed time.Duration) {
	r.Ingestions.WithLabelValues(result).Inc()
	r.IngestionDuration.WithLabelValues(result).Observe(elapsed.Seconds())
}

// Gatherer returns the underlying registry for inspection.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}
