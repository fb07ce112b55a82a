package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics collectors for the HTTP surface and the attendance workflow
type Metrics struct {
	Registry *prometheus.Registry

	HTTPDuration    *prometheus.HistogramVec
	AttendanceMarks *prometheus.CounterVec
	Exports         *prometheus.CounterVec
}

// New registers collectors on a fresh registry, plus the Go runtime and
// process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "uiet",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		AttendanceMarks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "uiet",
			Name:      "attendance_entries_total",
			Help:      "Attendance entries written, by outcome (created|updated).",
		}, []string{"outcome"}),
		Exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "uiet",
			Name:      "attendance_exports_total",
			Help:      "Attendance documents rendered, by format (pdf|xlsx).",
		}, []string{"format"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPDuration,
		m.AttendanceMarks,
		m.Exports,
	)
	return m
}

// ObserveMark counts one written entry. Safe on a nil receiver.
func (m *Metrics) ObserveMark(outcome string) {
	if m == nil {
		return
	}
	m.AttendanceMarks.WithLabelValues(outcome).Inc()
}

// ObserveExport counts one rendered document. Safe on a nil receiver.
func (m *Metrics) ObserveExport(format string) {
	if m == nil {
		return
	}
	m.Exports.WithLabelValues(format).Inc()
}
