package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHandlerExposesCounters(t *testing.T) {
	m := New()
	m.FrameRead()
	m.FrameProcessed(4)
	m.AlertResult(true, nil)
	m.AlertResult(false, errors.New("boom"))
	m.AlertResult(false, nil)
	m.ObserveViolation("no-helmet")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	out := string(body)

	for _, want := range []string{
		"injuryshield_frames_read_total 1",
		"injuryshield_detections_total 4",
		"injuryshield_alerts_sent_total 1",
		"injuryshield_alerts_failed_total 1",
		`injuryshield_violations_total{type="no-helmet"} 1`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.FrameRead()
	m.FrameDropped()
	m.ReportResult(nil)
	m.ObserveViolation("no-vest")
	m.UpdateInferLatency(0)
}
