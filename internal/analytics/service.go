package analytics

import (
	"context"
	"sort"
	"time"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

// Store is the read side of the event store. Implementations return a
// consistent snapshot for the requested interval.
type Store interface {
	QueryEvents(ctx context.Context, start, end time.Time) ([]Event, error)
	QueryLogs(ctx context.Context, start, end time.Time) ([]LogEntry, error)
}

type HourlyResult struct {
	Buckets []HourCount `json:"buckets"`
	Chart   Chart       `json:"chart"`
	Error   bool        `json:"error,omitempty"`
}

type DistributionResult struct {
	Counts []TypeCount `json:"counts"`
	Chart  Chart       `json:"chart"`
	Error  bool        `json:"error,omitempty"`
}

type DailyResult struct {
	Days  []DailySummary `json:"days"`
	Chart Chart          `json:"chart"`
	Error bool           `json:"error,omitempty"`
}

type MetricsResult struct {
	Metrics
	Error bool `json:"error,omitempty"`
}

// Service runs the aggregations over whatever the store returns. A store
// failure never surfaces as an error: callers get a zero-valued result with
// Error set so the dashboard can show an empty state.
type Service struct {
	store  Store
	now    func() time.Time
	logger *logrus.Entry
}

func NewService(store Store, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		store:  store,
		now:    now,
		logger: logrus.WithField("component", "analytics"),
	}
}

func (s *Service) Now() time.Time {
	return s.now().UTC()
}

func (s *Service) events(ctx context.Context, w Window) ([]Event, bool) {
	events, err := s.store.QueryEvents(ctx, w.Start, w.End)
	if err != nil {
		s.logger.Errorf("query violation events failed, %v", err)
		return nil, false
	}
	return events, true
}

func (s *Service) logs(ctx context.Context, w Window) ([]LogEntry, bool) {
	logs, err := s.store.QueryLogs(ctx, w.Start, w.End)
	if err != nil {
		s.logger.Errorf("query compliance logs failed, %v", err)
		return nil, false
	}
	return logs, true
}

func (s *Service) HourlyTrends(ctx context.Context, days int) HourlyResult {
	w := LastDays(s.Now(), days)
	events, ok := s.events(ctx, w)
	buckets := HourlyViolationTrends(events, w)
	return HourlyResult{Buckets: buckets, Chart: HourlyChart(buckets), Error: !ok}
}

func (s *Service) TypeDistribution(ctx context.Context, days int) DistributionResult {
	w := LastDays(s.Now(), days)
	events, ok := s.events(ctx, w)
	counts := ViolationTypeDistribution(filterWindow(events, w))
	return DistributionResult{Counts: counts, Chart: DistributionChart(counts), Error: !ok}
}

// DailySummary covers the last days calendar days including today.
func (s *Service) DailySummary(ctx context.Context, days int) DailyResult {
	now := s.Now()
	if days < 1 {
		days = 1
	}
	w := Window{Start: utcDay(now).AddDate(0, 0, -(days - 1)), End: now}
	logs, ok := s.logs(ctx, w)
	summary := DailyComplianceSummary(logs, w)
	return DailyResult{Days: summary, Chart: DailyChart(summary), Error: !ok}
}

func (s *Service) RealtimeMetrics(ctx context.Context, hours int) MetricsResult {
	now := s.Now()
	w := LastHours(now, hours)
	logs, okLogs := s.logs(ctx, w)
	events, okEvents := s.events(ctx, w)
	if !okLogs || !okEvents {
		return MetricsResult{Metrics: ComplianceMetricsLastNHours(nil, nil, hours, now), Error: true}
	}
	return MetricsResult{Metrics: ComplianceMetricsLastNHours(logs, events, hours, now)}
}

// HeatmapPoints returns violation locations in the window, oldest first.
func (s *Service) HeatmapPoints(ctx context.Context, days int) ([]Event, bool) {
	w := LastDays(s.Now(), days)
	events, ok := s.events(ctx, w)
	out := filterWindow(events, w)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out, ok
}

func filterWindow(events []Event, w Window) []Event {
	return lo.Filter(events, func(e Event, _ int) bool {
		return w.Contains(e.Timestamp)
	})
}
