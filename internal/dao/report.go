package dao

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"injuryshield/internal/model"
	"injuryshield/internal/ppe"
)

var ErrInvalidReport = errors.New("invalid frame report")

type BoxSpec struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

type ReportViolation struct {
	Type       string  `json:"type"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Box        BoxSpec `json:"box"`
	Confidence float64 `json:"confidence"`
	Severity   int     `json:"severity"`
	Details    string  `json:"details,omitempty"`
}

// FrameReport is one periodic compliance sample, as sent from the monitor to
// the store, directly or over the message bus.
type FrameReport struct {
	Uuid            string            `json:"uuid"`
	TaxonomyVersion string            `json:"taxonomyVersion"`
	Camera          string            `json:"camera"`
	Timestamp       int64             `json:"timestamp"`
	PersonsCount    int               `json:"personsCount"`
	CompliantCount  int               `json:"compliantCount"`
	ViolationCount  int               `json:"violationCount"`
	PPEWornCount    int               `json:"ppeWornCount"`
	Status          string            `json:"status"`
	SnapshotPath    string            `json:"snapshotPath,omitempty"`
	Violations      []ReportViolation `json:"violations,omitempty"`
}

func NewFrameReport(camera string, frameTime time.Time, a ppe.FrameAnalysis, snapshotPath string) *FrameReport {
	r := &FrameReport{
		Uuid:            uuid.NewString(),
		TaxonomyVersion: ppe.TaxonomyVersion,
		Camera:          camera,
		Timestamp:       frameTime.UnixMilli(),
		PersonsCount:    a.Persons,
		CompliantCount:  a.Compliant,
		ViolationCount:  a.Violating,
		PPEWornCount:    a.PPEWorn,
		Status:          a.Status,
		SnapshotPath:    snapshotPath,
	}
	for _, v := range a.Violations {
		r.Violations = append(r.Violations, ReportViolation{
			Type:       string(v.Type),
			X:          v.X,
			Y:          v.Y,
			Box:        BoxSpec{X1: v.Box.X1, Y1: v.Box.Y1, X2: v.Box.X2, Y2: v.Box.Y2},
			Confidence: v.Confidence,
			Severity:   v.Severity,
			Details:    v.Details,
		})
	}
	return r
}

func (r *FrameReport) Time() time.Time {
	return time.UnixMilli(r.Timestamp).UTC()
}

func (r *FrameReport) Validate() error {
	if r.Uuid == "" {
		return fmt.Errorf("%w: missing uuid", ErrInvalidReport)
	}
	if r.TaxonomyVersion != "" && r.TaxonomyVersion != ppe.TaxonomyVersion {
		return fmt.Errorf("%w: unsupported taxonomy version %q", ErrInvalidReport, r.TaxonomyVersion)
	}
	if r.Timestamp <= 0 {
		return fmt.Errorf("%w: missing timestamp", ErrInvalidReport)
	}
	if r.PersonsCount < 0 || r.CompliantCount < 0 || r.ViolationCount < 0 {
		return fmt.Errorf("%w: negative count", ErrInvalidReport)
	}
	if r.CompliantCount+r.ViolationCount > r.PersonsCount {
		return fmt.Errorf("%w: compliant + violating exceeds persons", ErrInvalidReport)
	}
	for _, v := range r.Violations {
		if !ppe.ViolationType(v.Type).Valid() {
			return fmt.Errorf("%w: unknown violation type %q", ErrInvalidReport, v.Type)
		}
		if v.Confidence < 0 || v.Confidence > 1 {
			return fmt.Errorf("%w: confidence %v out of range", ErrInvalidReport, v.Confidence)
		}
	}
	return nil
}

func (r *FrameReport) ToModel() *model.ComplianceLog {
	ts := r.Time()
	l := &model.ComplianceLog{
		Uuid:           r.Uuid,
		Timestamp:      ts,
		Camera:         r.Camera,
		PersonsCount:   r.PersonsCount,
		CompliantCount: r.CompliantCount,
		ViolationCount: r.ViolationCount,
		PPEWornCount:   r.PPEWornCount,
		Status:         r.Status,
		SnapshotPath:   r.SnapshotPath,
	}
	for _, v := range r.Violations {
		l.Events = append(l.Events, model.ViolationEvent{
			Timestamp:  ts,
			Camera:     r.Camera,
			Type:       v.Type,
			LocationX:  v.X,
			LocationY:  v.Y,
			Box:        model.Box{X1: v.Box.X1, Y1: v.Box.Y1, X2: v.Box.X2, Y2: v.Box.Y2},
			Confidence: v.Confidence,
			Severity:   v.Severity,
			Details:    v.Details,
		})
	}
	return l
}
