package analytics

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"
)

var base = time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC)

func TestHourlyViolationTrendsEmpty(t *testing.T) {
	got := HourlyViolationTrends(nil, LastDays(base, 7))
	if len(got) != 24 {
		t.Fatalf("expected 24 buckets, got %d", len(got))
	}
	for h, b := range got {
		if b.Hour != h || b.Count != 0 {
			t.Fatalf("bucket %d: unexpected %+v", h, b)
		}
	}
}

func TestHourlyViolationTrends(t *testing.T) {
	events := []Event{
		{Timestamp: base, Type: "no-helmet"},
		{Timestamp: base.Add(-24 * time.Hour), Type: "no-vest"},
		{Timestamp: base.Add(2 * time.Hour), Type: "no-vest"},
		// outside the window
		{Timestamp: base.AddDate(0, 0, -8), Type: "no-vest"},
		// local time zones are bucketed by their UTC hour
		{Timestamp: base.In(time.FixedZone("UTC+3", 3*3600)), Type: "no-gloves"},
	}
	got := HourlyViolationTrends(events, LastDays(base.Add(3*time.Hour), 7))
	if got[9].Count != 3 || got[11].Count != 1 {
		t.Fatalf("unexpected buckets: %+v", got)
	}
	total := 0
	for _, b := range got {
		total += b.Count
	}
	if total != 4 {
		t.Fatalf("expected 4 events in window, got %d", total)
	}
}

func TestViolationTypeDistributionStable(t *testing.T) {
	events := []Event{
		{Type: "no-vest"}, {Type: "no-helmet"}, {Type: "no-gloves"},
		{Type: "no-helmet"}, {Type: "no-vest"}, {Type: "no-boots"},
	}
	want := []TypeCount{
		{Type: "no-helmet", Count: 2},
		{Type: "no-vest", Count: 2},
		{Type: "no-boots", Count: 1},
		{Type: "no-gloves", Count: 1},
	}
	for i := 0; i < 10; i++ {
		if got := ViolationTypeDistribution(events); !reflect.DeepEqual(got, want) {
			t.Fatalf("run %d: got %+v, want %+v", i, got, want)
		}
	}
	if got := ViolationTypeDistribution(nil); len(got) != 0 {
		t.Fatalf("expected empty distribution, got %+v", got)
	}
}

func TestDailyComplianceSummary(t *testing.T) {
	w := Window{Start: time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC), End: base}
	logs := []LogEntry{
		{Timestamp: time.Date(2024, 3, 8, 10, 0, 0, 0, time.UTC), Persons: 3, Compliant: 2, Violations: 1},
		{Timestamp: time.Date(2024, 3, 8, 11, 0, 0, 0, time.UTC), Persons: 3, Compliant: 3},
		{Timestamp: time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC), Persons: 0},
		{Timestamp: time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC), Persons: 9, Compliant: 9},
	}

	got := DailyComplianceSummary(logs, w)
	if len(got) != 3 {
		t.Fatalf("expected 3 days, got %+v", got)
	}
	if got[0].Date != "2024-03-08" || got[1].Date != "2024-03-09" || got[2].Date != "2024-03-10" {
		t.Fatalf("days must be ascending: %+v", got)
	}
	if got[0].TotalPersons != 6 || got[0].TotalLogs != 2 || got[0].ComplianceRate != 83.3 {
		t.Fatalf("unexpected first day %+v", got[0])
	}
	if got[1].TotalLogs != 0 || got[1].ComplianceRate != 0 {
		t.Fatalf("empty day must be zero %+v", got[1])
	}
	if got[2].TotalLogs != 1 || got[2].ComplianceRate != 0 {
		t.Fatalf("day without persons must have a zero rate %+v", got[2])
	}
}

func TestComplianceMetricsScenario(t *testing.T) {
	T := base
	logs := []LogEntry{
		{Timestamp: T, Persons: 10, Compliant: 9, Violations: 1},
		{Timestamp: T.Add(time.Hour), Persons: 10, Compliant: 10},
	}
	got := ComplianceMetricsLastNHours(logs, nil, 2, T.Add(time.Hour))
	if got.ComplianceRate != 95.0 {
		t.Fatalf("expected 95.0, got %v", got.ComplianceRate)
	}
	if got.TotalPersons != 20 || got.TotalViolations != 1 || got.TotalLogs != 2 {
		t.Fatalf("unexpected totals %+v", got)
	}
}

func TestComplianceMetricsNoPersons(t *testing.T) {
	got := ComplianceMetricsLastNHours(nil, nil, 24, base)
	if got.ComplianceRate != 100 || got.TotalLogs != 0 {
		t.Fatalf("expected perfect rate without data, got %+v", got)
	}

	logs := []LogEntry{{Timestamp: base, Persons: 2, Violations: 5}}
	if got := ComplianceMetricsLastNHours(logs, nil, 24, base); got.ComplianceRate != 0 {
		t.Fatalf("rate must be clamped at 0, got %v", got.ComplianceRate)
	}
}

type failingStore struct{}

func (failingStore) QueryEvents(ctx context.Context, start, end time.Time) ([]Event, error) {
	return nil, errors.New("db down")
}

func (failingStore) QueryLogs(ctx context.Context, start, end time.Time) ([]LogEntry, error) {
	return nil, errors.New("db down")
}

type memStore struct {
	events []Event
	logs   []LogEntry
}

func (m memStore) QueryEvents(ctx context.Context, start, end time.Time) ([]Event, error) {
	return m.events, nil
}

func (m memStore) QueryLogs(ctx context.Context, start, end time.Time) ([]LogEntry, error) {
	return m.logs, nil
}

func TestServiceStoreFailure(t *testing.T) {
	s := NewService(failingStore{}, func() time.Time { return base })
	ctx := context.Background()

	m := s.RealtimeMetrics(ctx, 24)
	if !m.Error || m.TotalLogs != 0 || m.ComplianceRate != 100 {
		t.Fatalf("unexpected metrics on failure %+v", m)
	}
	h := s.HourlyTrends(ctx, 7)
	if !h.Error || len(h.Buckets) != 24 || len(h.Chart.Labels) != 24 {
		t.Fatalf("unexpected hourly result on failure %+v", h)
	}
	d := s.DailySummary(ctx, 30)
	if !d.Error || len(d.Days) != 30 {
		t.Fatalf("unexpected daily result on failure, %d days", len(d.Days))
	}
	if dist := s.TypeDistribution(ctx, 30); !dist.Error || len(dist.Counts) != 0 {
		t.Fatalf("unexpected distribution on failure %+v", dist)
	}
}

func TestServiceHeatmapPointsOrdered(t *testing.T) {
	store := memStore{events: []Event{
		{Timestamp: base.Add(-time.Hour), Type: "no-vest", X: 2},
		{Timestamp: base.Add(-3 * time.Hour), Type: "no-vest", X: 1},
		{Timestamp: base.AddDate(0, 0, -40), Type: "no-vest", X: 0},
	}}
	s := NewService(store, func() time.Time { return base })

	got, ok := s.HeatmapPoints(context.Background(), 30)
	if !ok || len(got) != 2 || got[0].X != 1 || got[1].X != 2 {
		t.Fatalf("expected two points oldest first, got %+v", got)
	}
}

func TestCharts(t *testing.T) {
	c := HourlyChart(HourlyViolationTrends(nil, LastDays(base, 1)))
	if c.Labels[0] != "00:00" || c.Labels[23] != "23:00" {
		t.Fatalf("unexpected labels %v", c.Labels)
	}
	d := DistributionChart([]TypeCount{{Type: "no-helmet", Count: 3}})
	if !reflect.DeepEqual(d, Chart{Labels: []string{"no-helmet"}, Data: []float64{3}}) {
		t.Fatalf("unexpected chart %+v", d)
	}
}
