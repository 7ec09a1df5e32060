package pipeline

import (
	"context"
	"testing"

	"injuryshield/internal/dao"
	"injuryshield/internal/model"
)

func TestStoreSink(t *testing.T) {
	db, err := model.InitDB(model.DBConfig{
		Driver:       model.DriverSQLite,
		DSN:          "file:pipeline_sink?mode=memory&cache=shared",
		MaxIdleConns: 1,
		MaxOpenConns: 1,
	})
	if err != nil {
		t.Fatal(err)
	}
	defer func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	}()
	if err := model.AutoMigrate(db); err != nil {
		t.Fatal(err)
	}

	sink := StoreSink{}
	p := newPipeline(sink, &memNotifier{}, &stepClock{now: start})
	out := p.Process(context.Background(), Frame{Time: start, Detections: violatingFrame()})
	if out.ReportErr != nil {
		t.Fatal(out.ReportErr)
	}

	stored, err := model.GetComplianceLogByUuid(out.Report.Uuid)
	if err != nil || stored == nil {
		t.Fatalf("report not stored: %v", err)
	}
	if stored.ViolationCount != 1 || stored.Camera != "yard" {
		t.Fatalf("unexpected stored log %+v", stored)
	}

	if err := sink.Write(context.Background(), &dao.FrameReport{}); err == nil {
		t.Fatalf("invalid report must be rejected")
	}
}

func TestStoreSinkIgnoresDuplicates(t *testing.T) {
	db, err := model.InitDB(model.DBConfig{
		Driver:       model.DriverSQLite,
		DSN:          "file:pipeline_sink_dup?mode=memory&cache=shared",
		MaxIdleConns: 1,
		MaxOpenConns: 1,
	})
	if err != nil {
		t.Fatal(err)
	}
	defer func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	}()
	if err := model.AutoMigrate(db); err != nil {
		t.Fatal(err)
	}

	r := &dao.FrameReport{Uuid: "dup", Timestamp: start.UnixMilli(), PersonsCount: 1, CompliantCount: 1}
	for i := 0; i < 2; i++ {
		if err := (StoreSink{}).Write(context.Background(), r); err != nil {
			t.Fatalf("write %d: %v", i, err)
		}
	}
	_, total, err := model.GetComplianceLogs("", 0, 10)
	if err != nil || total != 1 {
		t.Fatalf("expected a single stored log, got %d %v", total, err)
	}
}
