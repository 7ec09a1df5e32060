package dao

import (
	"time"

	"injuryshield/internal/model"
)

type ViolationSpec struct {
	Id         int     `json:"id"`
	LogId      int     `json:"logId"`
	Timestamp  string  `json:"timestamp"`
	Camera     string  `json:"camera"`
	Type       string  `json:"type"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Box        BoxSpec `json:"box"`
	Confidence float64 `json:"confidence"`
	Severity   int     `json:"severity"`
	Details    string  `json:"details,omitempty"`
	IsResolved bool    `json:"isResolved"`
}

func FromViolationModel(e *model.ViolationEvent) ViolationSpec {
	return ViolationSpec{
		Id:         e.Id,
		LogId:      e.LogId,
		Timestamp:  e.Timestamp.UTC().Format(time.RFC3339),
		Camera:     e.Camera,
		Type:       e.Type,
		X:          e.LocationX,
		Y:          e.LocationY,
		Box:        BoxSpec{X1: e.Box.X1, Y1: e.Box.Y1, X2: e.Box.X2, Y2: e.Box.Y2},
		Confidence: e.Confidence,
		Severity:   e.Severity,
		Details:    e.Details,
		IsResolved: e.IsResolved,
	}
}

type ComplianceLogSpec struct {
	Id             int             `json:"id"`
	Uuid           string          `json:"uuid"`
	Timestamp      string          `json:"timestamp"`
	Camera         string          `json:"camera"`
	PersonsCount   int             `json:"personsCount"`
	CompliantCount int             `json:"compliantCount"`
	ViolationCount int             `json:"violationCount"`
	PPEWornCount   int             `json:"ppeWornCount"`
	Status         string          `json:"status"`
	SnapshotUrl    string          `json:"snapshotUrl,omitempty"`
	Events         []ViolationSpec `json:"events,omitempty"`
}

// FromComplianceLogModel converts l; snapshotUrl maps a stored snapshot path
// to something the browser can fetch.
func FromComplianceLogModel(l *model.ComplianceLog, snapshotUrl func(string) string) ComplianceLogSpec {
	spec := ComplianceLogSpec{
		Id:             l.Id,
		Uuid:           l.Uuid,
		Timestamp:      l.Timestamp.UTC().Format(time.RFC3339),
		Camera:         l.Camera,
		PersonsCount:   l.PersonsCount,
		CompliantCount: l.CompliantCount,
		ViolationCount: l.ViolationCount,
		PPEWornCount:   l.PPEWornCount,
		Status:         l.Status,
	}
	if l.SnapshotPath != "" && snapshotUrl != nil {
		spec.SnapshotUrl = snapshotUrl(l.SnapshotPath)
	}
	for i := range l.Events {
		spec.Events = append(spec.Events, FromViolationModel(&l.Events[i]))
	}
	return spec
}

type ListLogsRequest struct {
	Start  int    `form:"start"`
	Limit  int    `form:"limit"`
	Camera string `form:"camera"`
}

type ListLogsResponse struct {
	Total int64               `json:"total"`
	Items []ComplianceLogSpec `json:"items"`
}

type ListViolationsRequest struct {
	Start    int    `form:"start"`
	Limit    int    `form:"limit"`
	Type     string `form:"type" binding:"omitempty,violationtype"`
	Resolved *bool  `form:"resolved"`
	Camera   string `form:"camera"`
}

type ListViolationsResponse struct {
	Total int64           `json:"total"`
	Items []ViolationSpec `json:"items"`
}

type AnalyticsRequest struct {
	Days int `form:"days" binding:"omitempty,min=1,max=366"`
}

type HeatmapResponse struct {
	Url     string `json:"url,omitempty"`
	Points  int    `json:"points"`
	Dropped int    `json:"dropped"`
	NoData  bool   `json:"noData"`
	Error   bool   `json:"error,omitempty"`
}
