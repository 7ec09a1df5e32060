package metrics

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the counters of one process. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	FramesRead      atomic.Uint64
	FramesProcessed atomic.Uint64
	FramesDropped   atomic.Uint64
	Detections      atomic.Uint64
	ReportsWritten  atomic.Uint64
	ReportErrors    atomic.Uint64
	SnapshotsSaved  atomic.Uint64
	AlertsSent      atomic.Uint64
	AlertsFailed    atomic.Uint64

	InferLatencyMs atomic.Uint64

	violations *prometheus.CounterVec
	registry   *prometheus.Registry
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		violations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "injuryshield_violations_total",
			Help: "Violation candidates by type",
		}, []string{"type"}),
	}
	m.registerPrometheusMetrics()
	return m
}

func (m *Metrics) gauge(name, help string, v *atomic.Uint64) {
	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{Name: name, Help: help},
		func() float64 { return float64(v.Load()) },
	))
}

func (m *Metrics) registerPrometheusMetrics() {
	m.registry.MustRegister(m.violations)

	m.gauge("injuryshield_frames_read_total", "Frames read from the video source", &m.FramesRead)
	m.gauge("injuryshield_frames_processed_total", "Frames run through detection", &m.FramesProcessed)
	m.gauge("injuryshield_frames_dropped_total", "Frames dropped because inference was busy", &m.FramesDropped)
	m.gauge("injuryshield_detections_total", "Detections returned by the model", &m.Detections)
	m.gauge("injuryshield_reports_written_total", "Compliance reports handed to the sink", &m.ReportsWritten)
	m.gauge("injuryshield_report_errors_total", "Compliance reports the sink rejected", &m.ReportErrors)
	m.gauge("injuryshield_snapshots_saved_total", "Violation snapshots written", &m.SnapshotsSaved)
	m.gauge("injuryshield_alerts_sent_total", "SMS alerts delivered", &m.AlertsSent)
	m.gauge("injuryshield_alerts_failed_total", "SMS alerts that failed to send", &m.AlertsFailed)
	m.gauge("injuryshield_infer_latency_ms", "Latency of the last inference call in milliseconds", &m.InferLatencyMs)
}

func (m *Metrics) ObserveViolation(vt string) {
	if m == nil {
		return
	}
	m.violations.WithLabelValues(vt).Inc()
}

func (m *Metrics) UpdateInferLatency(d time.Duration) {
	if m == nil {
		return
	}
	m.InferLatencyMs.Store(uint64(d.Milliseconds()))
}

func (m *Metrics) FrameRead() {
	if m != nil {
		m.FramesRead.Add(1)
	}
}

func (m *Metrics) FrameDropped() {
	if m != nil {
		m.FramesDropped.Add(1)
	}
}

func (m *Metrics) FrameProcessed(detections int) {
	if m != nil {
		m.FramesProcessed.Add(1)
		m.Detections.Add(uint64(detections))
	}
}

func (m *Metrics) SnapshotSaved() {
	if m != nil {
		m.SnapshotsSaved.Add(1)
	}
}

func (m *Metrics) ReportResult(err error) {
	switch {
	case m == nil:
	case err != nil:
		m.ReportErrors.Add(1)
	default:
		m.ReportsWritten.Add(1)
	}
}

func (m *Metrics) AlertResult(sent bool, err error) {
	switch {
	case m == nil:
	case err != nil:
		m.AlertsFailed.Add(1)
	case sent:
		m.AlertsSent.Add(1)
	}
}

// Handler returns the Prometheus HTTP handler
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry lets other components add their own collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
