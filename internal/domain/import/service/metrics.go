package service

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds ingestion counters. A nil *Metrics records nothing.
type Metrics struct {
	Files    *prometheus.CounterVec
	Rows     *prometheus.CounterVec
	Duration prometheus.Histogram
}

// NewMetrics creates the ingestion metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Files: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dashboard",
			Subsystem: "import",
			Name:      "files_total",
			Help:      "Statement files processed, by status.",
		}, []string{"status"}),
		Rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dashboard",
			Subsystem: "import",
			Name:      "rows_total",
			Help:      "Statement rows processed, by outcome.",
		}, []string{"outcome"}),
		Duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "dashboard",
			Subsystem: "import",
			Name:      "batch_duration_seconds",
			Help:      "Time spent reading and parsing one import batch.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Files, m.Rows, m.Duration)
	}
	return m
}

func (m *Metrics) observe(result *Result, seconds float64) {
	if m == nil {
		return
	}
	for _, f := range result.Files {
		status := "ok"
		if f.Error != "" {
			status = "failed"
		}
		m.Files.WithLabelValues(status).Inc()
	}
	m.Rows.WithLabelValues("imported").Add(float64(result.Imported))
	m.Rows.WithLabelValues("duplicate").Add(float64(result.Duplicates))
	m.Rows.WithLabelValues("skipped").Add(float64(len(result.Warnings)))
	m.Duration.Observe(seconds)
}
