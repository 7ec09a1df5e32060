package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"injuryshield/internal/alert"
	"injuryshield/internal/dao"
	"injuryshield/internal/detect"
	"injuryshield/internal/metrics"
	"injuryshield/internal/ppe"
)

type memSink struct {
	reports []*dao.FrameReport
	err     error
}

func (s *memSink) Write(ctx context.Context, r *dao.FrameReport) error {
	if s.err != nil {
		return s.err
	}
	s.reports = append(s.reports, r)
	return nil
}

type memNotifier struct {
	bodies []string
}

func (n *memNotifier) Send(ctx context.Context, body string) error {
	n.bodies = append(n.bodies, body)
	return nil
}

type stepClock struct {
	now time.Time
}

func (c *stepClock) Now() time.Time {
	return c.now
}

var start = time.Date(2024, 7, 1, 14, 0, 0, 0, time.UTC)

func violatingFrame() []detect.Detection {
	return []detect.Detection{
		{Label: "person", Box: detect.BoxFromXYWH(0, 0, 100, 200), Confidence: 0.9},
		{Label: "vest", Box: detect.BoxFromXYWH(10, 60, 80, 80), Confidence: 0.9},
	}
}

func cleanFrame() []detect.Detection {
	return append(violatingFrame(), detect.Detection{
		Label: "helmet", Box: detect.BoxFromXYWH(25, 0, 50, 30), Confidence: 0.9,
	})
}

func newPipeline(sink Sink, notifier alert.Notifier, clock alert.Clock) *Pipeline {
	conf := Config{
		Camera:              "yard",
		Policy:              ppe.DefaultPolicy(),
		LogInterval:         5 * time.Second,
		SaveSnapshot:        true,
		SnapshotConsecutive: 3,
	}
	d := alert.NewDispatcher(alert.NewManager(60*time.Second, clock), notifier)
	return New(conf, d, sink, metrics.New())
}

func TestSnapshotAfterConsecutiveViolations(t *testing.T) {
	sink := &memSink{}
	p := newPipeline(sink, &memNotifier{}, &stepClock{now: start})

	saved := 0
	frame := func(i int, dets []detect.Detection) Frame {
		return Frame{
			Time:       start.Add(time.Duration(i) * time.Second),
			Detections: dets,
			Snapshot: func(a ppe.FrameAnalysis) (string, error) {
				saved++
				return fmt.Sprintf("snap-%d.jpg", i), nil
			},
		}
	}

	ctx := context.Background()
	p.Process(ctx, frame(0, violatingFrame()))
	p.Process(ctx, frame(1, violatingFrame()))
	// a clean frame resets the streak
	p.Process(ctx, frame(2, cleanFrame()))
	p.Process(ctx, frame(3, violatingFrame()))
	p.Process(ctx, frame(4, violatingFrame()))
	out := p.Process(ctx, frame(5, violatingFrame()))

	if saved != 1 || out.SnapshotPath != "snap-5.jpg" {
		t.Fatalf("expected one snapshot on the third consecutive frame, saved=%d path=%q", saved, out.SnapshotPath)
	}

	// frame 5 is also a report tick, so the report carries the snapshot
	if out.Report == nil || out.Report.SnapshotPath != "snap-5.jpg" {
		t.Fatalf("expected report with snapshot, got %+v", out.Report)
	}

	out = p.Process(ctx, frame(10, violatingFrame()))
	if out.Report == nil || out.Report.SnapshotPath != "" {
		t.Fatalf("snapshot must be attached to one report only, got %+v", out.Report)
	}
}

func TestReportInterval(t *testing.T) {
	sink := &memSink{}
	p := newPipeline(sink, &memNotifier{}, &stepClock{now: start})
	ctx := context.Background()

	for i := 0; i <= 12; i++ {
		p.Process(ctx, Frame{Time: start.Add(time.Duration(i) * time.Second), Detections: cleanFrame()})
	}

	if len(sink.reports) != 3 {
		t.Fatalf("expected reports at 0s, 5s and 10s, got %d", len(sink.reports))
	}
	r := sink.reports[0]
	if r.Camera != "yard" || r.PersonsCount != 1 || r.CompliantCount != 1 || r.Status != "Compliant" {
		t.Fatalf("unexpected report %+v", r)
	}
}

func TestReportErrorSurfaces(t *testing.T) {
	sink := &memSink{err: errors.New("disk full")}
	p := newPipeline(sink, &memNotifier{}, &stepClock{now: start})

	out := p.Process(context.Background(), Frame{Time: start, Detections: cleanFrame()})
	if out.ReportErr == nil || out.Report == nil {
		t.Fatalf("expected report error to surface, got %+v", out)
	}
}

func TestAlertsPerTypeWithCooldown(t *testing.T) {
	clock := &stepClock{now: start}
	notifier := &memNotifier{}
	p := newPipeline(&memSink{}, notifier, clock)
	ctx := context.Background()

	dets := []detect.Detection{
		{Label: "person", Box: detect.BoxFromXYWH(0, 0, 100, 200), Confidence: 0.9},
		{Label: "person", Box: detect.BoxFromXYWH(300, 0, 100, 200), Confidence: 0.9},
	}

	out := p.Process(ctx, Frame{Time: start, Detections: dets})
	if len(out.AlertsSent) != 2 || out.AlertsSent[0] != "no-helmet" || out.AlertsSent[1] != "no-vest" {
		t.Fatalf("expected one alert per type, got %v", out.AlertsSent)
	}
	if len(notifier.bodies) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(notifier.bodies))
	}
	want := "InjuryShield ALERT at 2024-07-01 14:00:00 UTC:\n- 2x missing helmet\nImmediate action required."
	if notifier.bodies[0] != want {
		t.Fatalf("unexpected body %q", notifier.bodies[0])
	}

	clock.now = start.Add(30 * time.Second)
	if out := p.Process(ctx, Frame{Time: clock.now, Detections: dets}); len(out.AlertsSent) != 0 {
		t.Fatalf("alerts inside cooldown must be suppressed, got %v", out.AlertsSent)
	}

	clock.now = start.Add(61 * time.Second)
	if out := p.Process(ctx, Frame{Time: clock.now, Detections: dets}); len(out.AlertsSent) != 2 {
		t.Fatalf("alerts after cooldown must go out, got %v", out.AlertsSent)
	}
}
