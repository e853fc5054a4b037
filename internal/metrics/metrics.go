package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks import and export jobs and the records they move.
type Metrics struct {
	RecordsImported *prometheus.CounterVec
	RecordsExported *prometheus.CounterVec
	Jobs            *prometheus.CounterVec
	JobDuration     *prometheus.HistogramVec
	JobsActive      prometheus.Gauge
}

// New registers the collectors with reg. A nil reg uses the default
// registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		RecordsImported: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "shiprec_records_imported_total",
			Help: "Total number of records persisted by imports",
		}, []string{"kind"}),
		RecordsExported: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "shiprec_records_exported_total",
			Help: "Total number of records written by exports",
		}, []string{"kind"}),
		Jobs: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "shiprec_jobs_total",
			Help: "Total number of import and export jobs by outcome",
		}, []string{"kind", "operation", "outcome"}),
		JobDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "shiprec_job_duration_seconds",
			Help:    "Duration of import and export jobs",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"kind", "operation"}),
		JobsActive: factory.NewGauge(prometheus.GaugeOpts{
			Name: "shiprec_jobs_active",
			Help: "Number of jobs currently running",
		}),
	}
}

// RecordImported counts one persisted record.
func (m *Metrics) RecordImported(kind string) {
	if m == nil {
		return
	}
	m.RecordsImported.WithLabelValues(kind).Inc()
}

// RecordExported counts one written record.
func (m *Metrics) RecordExported(kind string) {
	if m == nil {
		return
	}
	m.RecordsExported.WithLabelValues(kind).Inc()
}

// JobStarted marks a job as running. Call JobFinished when it ends.
func (m *Metrics) JobStarted() {
	if m == nil {
		return
	}
	m.JobsActive.Inc()
}

// JobFinished records the outcome and duration of a job started at start.
func (m *Metrics) JobFinished(kind, operation string, start time.Time, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.JobsActive.Dec()
	m.Jobs.WithLabelValues(kind, operation, outcome).Inc()
	m.JobDuration.WithLabelValues(kind, operation).Observe(time.Since(start).Seconds())
}
