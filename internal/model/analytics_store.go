package model

import (
	"context"
	"time"

	"github.com/samber/lo"

	"injuryshield/internal/analytics"
)

// AnalyticsStore exposes the event tables to the analytics service.
type AnalyticsStore struct{}

func (AnalyticsStore) QueryEvents(ctx context.Context, start, end time.Time) ([]analytics.Event, error) {
	events, err := QueryEvents(ctx, start, end)
	if err != nil {
		return nil, err
	}
	return lo.Map(events, func(e ViolationEvent, _ int) analytics.Event {
		return analytics.Event{Timestamp: e.Timestamp, Type: e.Type, X: e.LocationX, Y: e.LocationY}
	}), nil
}

func (AnalyticsStore) QueryLogs(ctx context.Context, start, end time.Time) ([]analytics.LogEntry, error) {
	logs, err := QueryLogs(ctx, start, end)
	if err != nil {
		return nil, err
	}
	return lo.Map(logs, func(l ComplianceLog, _ int) analytics.LogEntry {
		return analytics.LogEntry{
			Timestamp:  l.Timestamp,
			Persons:    l.PersonsCount,
			Compliant:  l.CompliantCount,
			Violations: l.ViolationCount,
		}
	}), nil
}
