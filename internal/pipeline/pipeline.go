// Package pipeline runs the per-frame compliance flow: classify detections,
// decide on snapshots, emit periodic reports and dispatch alerts.
package pipeline

import (
	"context"
	"time"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"injuryshield/internal/alert"
	"injuryshield/internal/dao"
	"injuryshield/internal/detect"
	"injuryshield/internal/metrics"
	"injuryshield/internal/ppe"
)

type Sink interface {
	Write(ctx context.Context, r *dao.FrameReport) error
}

type Config struct {
	Camera              string
	Policy              ppe.Policy
	LogInterval         time.Duration
	SaveSnapshot        bool
	SnapshotConsecutive int
}

type Frame struct {
	Time       time.Time
	Detections []detect.Detection
	// Snapshot persists the current frame, annotated with the analysis, and
	// returns where it went. Nil when the caller has no image to save.
	Snapshot func(a ppe.FrameAnalysis) (string, error)
}

type Outcome struct {
	Analysis     ppe.FrameAnalysis
	SnapshotPath string
	Report       *dao.FrameReport
	ReportErr    error
	AlertsSent   []ppe.ViolationType
}

// Pipeline is not safe for concurrent use; feed it from one goroutine.
type Pipeline struct {
	conf       Config
	dispatcher *alert.Dispatcher
	sink       Sink
	metrics    *metrics.Metrics
	logger     *logrus.Entry

	consecutive  int
	lastReport   time.Time
	lastSnapshot string
}

func New(conf Config, dispatcher *alert.Dispatcher, sink Sink, m *metrics.Metrics) *Pipeline {
	return &Pipeline{
		conf:       conf,
		dispatcher: dispatcher,
		sink:       sink,
		metrics:    m,
		logger:     logrus.WithFields(logrus.Fields{"component": "pipeline", "camera": conf.Camera}),
	}
}

func (p *Pipeline) Process(ctx context.Context, f Frame) Outcome {
	a := ppe.Classify(f.Detections, p.conf.Policy)
	out := Outcome{Analysis: a}

	p.metrics.FrameProcessed(len(f.Detections))
	for _, v := range a.Violations {
		p.metrics.ObserveViolation(string(v.Type))
	}

	out.SnapshotPath = p.maybeSnapshot(f, a)

	if p.lastReport.IsZero() || f.Time.Sub(p.lastReport) >= p.conf.LogInterval {
		out.Report, out.ReportErr = p.report(ctx, f.Time, a)
	}

	out.AlertsSent = p.alert(ctx, f.Time, a)
	return out
}

func (p *Pipeline) maybeSnapshot(f Frame, a ppe.FrameAnalysis) string {
	if len(a.Violations) == 0 {
		p.consecutive = 0
		return ""
	}
	p.consecutive++
	if !p.conf.SaveSnapshot || f.Snapshot == nil || p.consecutive < p.conf.SnapshotConsecutive {
		return ""
	}
	p.consecutive = 0

	path, err := f.Snapshot(a)
	if err != nil {
		p.logger.Errorf("save violation snapshot failed, %v", err)
		return ""
	}
	p.metrics.SnapshotSaved()
	p.lastSnapshot = path
	p.logger.Infof("saved violation snapshot %s", path)
	return path
}

func (p *Pipeline) report(ctx context.Context, frameTime time.Time, a ppe.FrameAnalysis) (*dao.FrameReport, error) {
	r := dao.NewFrameReport(p.conf.Camera, frameTime, a, p.lastSnapshot)
	p.lastReport = frameTime

	if p.sink == nil {
		return r, nil
	}
	err := p.sink.Write(ctx, r)
	p.metrics.ReportResult(err)
	if err != nil {
		p.logger.Errorf("write compliance report failed, %v", err)
		return r, err
	}
	p.lastSnapshot = ""
	p.logger.Debugf("compliance report %s: %s", r.Uuid, r.Status)
	return r, nil
}

func (p *Pipeline) alert(ctx context.Context, frameTime time.Time, a ppe.FrameAnalysis) []ppe.ViolationType {
	if p.dispatcher == nil || len(a.Violations) == 0 {
		return nil
	}

	byType := lo.GroupBy(a.Violations, func(v ppe.Candidate) ppe.ViolationType {
		return v.Type
	})

	var sent []ppe.ViolationType
	for _, vt := range a.Types() {
		ok, err := p.dispatcher.Dispatch(ctx, vt, byType[vt], frameTime)
		p.metrics.AlertResult(ok, err)
		if ok {
			sent = append(sent, vt)
		}
	}
	return sent
}
