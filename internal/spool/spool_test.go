package spool

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"injuryshield/internal/dao"
)

type fakeProducer struct {
	failAfter int
	bodies    [][]byte
}

func (p *fakeProducer) Publish(topic string, body []byte) error {
	if p.failAfter >= 0 && len(p.bodies) >= p.failAfter {
		return errors.New("nsqd unreachable")
	}
	p.bodies = append(p.bodies, body)
	return nil
}

func report(uuid string, ts int64) *dao.FrameReport {
	return &dao.FrameReport{Uuid: uuid, Timestamp: ts, PersonsCount: 1, CompliantCount: 1, Status: "Compliant"}
}

func openSpool(t *testing.T) *Spool {
	t.Helper()
	s, err := Open("")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSpoolOrdersByTime(t *testing.T) {
	s := openSpool(t)
	ctx := context.Background()

	for _, r := range []*dao.FrameReport{report("c", 300), report("a", 100), report("b", 200)} {
		if err := s.Write(ctx, r); err != nil {
			t.Fatal(err)
		}
	}

	entries, err := s.Pending(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 || entries[0].Report.Uuid != "a" || entries[2].Report.Uuid != "c" {
		t.Fatalf("unexpected order %+v", entries)
	}

	if err := s.Write(ctx, &dao.FrameReport{}); err == nil {
		t.Fatalf("invalid report must not be spooled")
	}
}

func TestPublisherDeletesOnlyPublished(t *testing.T) {
	s := openSpool(t)
	ctx := context.Background()
	for i, id := range []string{"a", "b", "c"} {
		if err := s.Write(ctx, report(id, int64(i+1))); err != nil {
			t.Fatal(err)
		}
	}

	producer := &fakeProducer{failAfter: 2}
	p := NewPublisher(s, producer, "ppe_reports", 0)

	sent, err := p.Flush()
	if err == nil || sent != 2 {
		t.Fatalf("expected 2 sent and an error, got %d %v", sent, err)
	}
	if n, _ := s.Len(); n != 1 {
		t.Fatalf("unpublished report must stay spooled, %d left", n)
	}

	var first dao.FrameReport
	if err := json.Unmarshal(producer.bodies[0], &first); err != nil || first.Uuid != "a" {
		t.Fatalf("unexpected first message %s", producer.bodies[0])
	}

	producer.failAfter = -1
	if sent, err := p.Flush(); err != nil || sent != 1 {
		t.Fatalf("expected remaining report to go out, got %d %v", sent, err)
	}
	if n, _ := s.Len(); n != 0 {
		t.Fatalf("spool must be empty, %d left", n)
	}
}
