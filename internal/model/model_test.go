package model

import (
	"context"
	"errors"
	"testing"
	"time"
)

func setupDB(t *testing.T) {
	t.Helper()
	db, err := InitDB(DBConfig{
		Driver:       DriverSQLite,
		DSN:          "file:" + t.Name() + "?mode=memory&cache=shared",
		MaxIdleConns: 1,
		MaxOpenConns: 1,
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := AutoMigrate(db); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})
}

var ts = time.Date(2024, 4, 2, 10, 0, 0, 0, time.UTC)

func TestSaveFrameReport(t *testing.T) {
	setupDB(t)
	ctx := context.Background()

	l := &ComplianceLog{
		Timestamp:      ts,
		Camera:         "gate",
		PersonsCount:   3,
		CompliantCount: 1,
		ViolationCount: 2,
		Status:         "2 Violation(s) Detected",
		Events: []ViolationEvent{
			{Type: "no-helmet", LocationX: 10, LocationY: 20, Box: Box{X1: 0, Y1: 0, X2: 20, Y2: 40}, Confidence: 0.8, Severity: 3},
			{Type: "no-vest", LocationX: 30, LocationY: 40, Confidence: 0.7, Severity: 2},
		},
	}
	if err := SaveFrameReport(ctx, l); err != nil {
		t.Fatal(err)
	}
	if l.Id == 0 || l.Uuid == "" {
		t.Fatalf("expected id and uuid to be assigned, got %+v", l)
	}

	got, err := GetComplianceLog(l.Id)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || len(got.Events) != 2 {
		t.Fatalf("expected log with 2 events, got %+v", got)
	}
	if got.Events[0].Camera != "gate" || !got.Events[0].Timestamp.Equal(ts) {
		t.Fatalf("events must inherit camera and timestamp, got %+v", got.Events[0])
	}
	if got.Events[0].Box.X2 != 20 {
		t.Fatalf("box not round-tripped: %+v", got.Events[0].Box)
	}

	missing, err := GetComplianceLog(l.Id + 100)
	if err != nil || missing != nil {
		t.Fatalf("expected nil, nil for missing log, got %v %v", missing, err)
	}
}

func TestSaveFrameReportRejectsInvalidCounts(t *testing.T) {
	setupDB(t)

	l := &ComplianceLog{Timestamp: ts, PersonsCount: 2, CompliantCount: 2, ViolationCount: 1}
	err := SaveFrameReport(context.Background(), l)
	if !errors.Is(err, ErrInvalidLog) {
		t.Fatalf("expected ErrInvalidLog, got %v", err)
	}

	_, total, err := GetComplianceLogs("", 0, 10)
	if err != nil {
		t.Fatal(err)
	}
	if total != 0 {
		t.Fatalf("invalid log must not be stored")
	}
}

func TestQueryWindowAndAnalyticsStore(t *testing.T) {
	setupDB(t)
	ctx := context.Background()

	for i, l := range []*ComplianceLog{
		{Timestamp: ts, PersonsCount: 10, CompliantCount: 9, ViolationCount: 1,
			Events: []ViolationEvent{{Type: "no-helmet", LocationX: 5, LocationY: 5}}},
		{Timestamp: ts.Add(time.Hour), PersonsCount: 10, CompliantCount: 10},
		{Timestamp: ts.Add(-5 * time.Hour), PersonsCount: 4, CompliantCount: 0, ViolationCount: 4},
	} {
		if err := SaveFrameReport(ctx, l); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}

	logs, err := QueryLogs(ctx, ts.Add(-time.Hour), ts.Add(time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if len(logs) != 2 || !logs[0].Timestamp.Equal(ts) {
		t.Fatalf("unexpected logs %+v", logs)
	}

	store := AnalyticsStore{}
	entries, err := store.QueryLogs(ctx, ts.Add(-time.Hour), ts.Add(time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	persons, violations := 0, 0
	for _, e := range entries {
		persons += e.Persons
		violations += e.Violations
	}
	if persons != 20 || violations != 1 {
		t.Fatalf("unexpected totals persons=%d violations=%d", persons, violations)
	}

	events, err := store.QueryEvents(ctx, ts.Add(-time.Hour), ts.Add(time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 || events[0].Type != "no-helmet" {
		t.Fatalf("unexpected events %+v", events)
	}
}

func TestResolveViolationEvent(t *testing.T) {
	setupDB(t)

	l := &ComplianceLog{Timestamp: ts, PersonsCount: 1, ViolationCount: 1,
		Events: []ViolationEvent{{Type: "no-vest"}}}
	if err := SaveFrameReport(context.Background(), l); err != nil {
		t.Fatal(err)
	}

	unresolved := false
	events, total, err := GetViolationEvents(ViolationFilter{Resolved: &unresolved}, 0, 10)
	if err != nil || total != 1 {
		t.Fatalf("expected one open violation, got %d %v", total, err)
	}

	e, err := ResolveViolationEvent(events[0].Id)
	if err != nil || e == nil || !e.IsResolved {
		t.Fatalf("unexpected resolve result %+v %v", e, err)
	}

	_, total, _ = GetViolationEvents(ViolationFilter{Resolved: &unresolved}, 0, 10)
	if total != 0 {
		t.Fatalf("resolved violation still listed as open")
	}

	e, err = ResolveViolationEvent(9999)
	if err != nil || e != nil {
		t.Fatalf("expected nil, nil for unknown id, got %v %v", e, err)
	}
}

func TestUserPassword(t *testing.T) {
	setupDB(t)

	u := &User{Username: "op", AccessToken: NewAccessToken()}
	if err := u.SetPassword("s3cret"); err != nil {
		t.Fatal(err)
	}
	if err := CreateUser(u); err != nil {
		t.Fatal(err)
	}

	got, err := GetUserByUsername("op")
	if err != nil || got == nil {
		t.Fatalf("user not found: %v", err)
	}
	if !got.CheckPassword("s3cret") || got.CheckPassword("wrong") {
		t.Fatalf("password check mismatch")
	}
	if got.Password == "s3cret" {
		t.Fatalf("password stored in plain text")
	}
}
