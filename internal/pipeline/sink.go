package pipeline

import (
	"context"

	"injuryshield/internal/dao"
	"injuryshield/internal/model"
)

// StoreSink writes reports straight into the event store. Reports already
// stored under the same uuid are skipped, so redelivered bus messages are
// harmless.
type StoreSink struct{}

func (StoreSink) Write(ctx context.Context, r *dao.FrameReport) error {
	if err := r.Validate(); err != nil {
		return err
	}
	existing, err := model.GetComplianceLogByUuid(r.Uuid)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}
	return model.SaveFrameReport(ctx, r.ToModel())
}
