package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"injuryshield/internal/config"
	"injuryshield/internal/dao"
)

type memSink struct {
	err     error
	reports []*dao.FrameReport
}

func (s *memSink) Write(ctx context.Context, r *dao.FrameReport) error {
	if s.err != nil {
		return s.err
	}
	s.reports = append(s.reports, r)
	return nil
}

func newTestConsumer(t *testing.T, sink *memSink) *Consumer {
	t.Helper()
	c, err := NewConsumer(config.NSQConfig{Topic: "ppe_reports", Channel: "test"}, sink, nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(c.cancel)
	return c
}

func TestHandleStoresValidReport(t *testing.T) {
	sink := &memSink{}
	c := newTestConsumer(t, sink)

	body, _ := json.Marshal(&dao.FrameReport{
		Uuid: "r1", Timestamp: 1700000000000, PersonsCount: 2, CompliantCount: 1, ViolationCount: 1,
		Violations: []dao.ReportViolation{{Type: "no-helmet", Confidence: 0.8}},
	})
	if err := c.Handle(context.Background(), body); err != nil {
		t.Fatal(err)
	}
	if len(sink.reports) != 1 || sink.reports[0].Uuid != "r1" {
		t.Fatalf("report not stored: %+v", sink.reports)
	}
}

func TestHandleMalformed(t *testing.T) {
	c := newTestConsumer(t, &memSink{})

	for _, body := range []string{
		"not json",
		`{"uuid":"x","timestamp":1,"personsCount":1,"compliantCount":1,"violationCount":1}`,
		`{"uuid":"x","timestamp":1,"personsCount":1,"violations":[{"type":"no-hat"}]}`,
	} {
		if err := c.Handle(context.Background(), []byte(body)); !errors.Is(err, ErrMalformed) {
			t.Errorf("expected ErrMalformed for %s, got %v", body, err)
		}
	}
}

func TestHandleStoreErrorIsRetryable(t *testing.T) {
	c := newTestConsumer(t, &memSink{err: errors.New("db down")})

	body, _ := json.Marshal(&dao.FrameReport{Uuid: "r1", Timestamp: 1})
	err := c.Handle(context.Background(), body)
	if err == nil || errors.Is(err, ErrMalformed) {
		t.Fatalf("store failures must be retryable, got %v", err)
	}
}
