package model

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrInvalidLog = errors.New("invalid compliance log")

// Box is the offending region of a violation, stored as JSON.
type Box struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// Value implements driver.Valuer interface for JSON serialization
func (b Box) Value() (driver.Value, error) {
	return json.Marshal(b)
}

// Scan implements sql.Scanner interface for JSON deserialization
func (b *Box) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, b)
	case string:
		return json.Unmarshal([]byte(v), b)
	default:
		return errors.New("type assertion to []byte failed")
	}
}

type ComplianceLog struct {
	Id             int              `json:"id" gorm:"primaryKey"`
	Uuid           string           `json:"uuid" gorm:"type:char(36);uniqueIndex"`
	Timestamp      time.Time        `json:"timestamp" gorm:"type:datetime;index"`
	Camera         string           `json:"camera" gorm:"type:varchar(64);index"`
	PersonsCount   int              `json:"personsCount"`
	CompliantCount int              `json:"compliantCount"`
	ViolationCount int              `json:"violationCount"`
	PPEWornCount   int              `json:"ppeWornCount"`
	Status         string           `json:"status" gorm:"type:varchar(64)"`
	SnapshotPath   string           `json:"snapshotPath,omitempty" gorm:"type:varchar(255)"`
	CreateTime     time.Time        `json:"createTime" gorm:"type:datetime;autoCreateTime"`
	Events         []ViolationEvent `json:"events,omitempty" gorm:"foreignKey:LogId;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (l *ComplianceLog) Validate() error {
	if l.PersonsCount < 0 || l.CompliantCount < 0 || l.ViolationCount < 0 || l.PPEWornCount < 0 {
		return fmt.Errorf("%w: negative count", ErrInvalidLog)
	}
	if l.CompliantCount+l.ViolationCount > l.PersonsCount {
		return fmt.Errorf("%w: compliant %d + violating %d exceeds persons %d",
			ErrInvalidLog, l.CompliantCount, l.ViolationCount, l.PersonsCount)
	}
	if l.Timestamp.IsZero() {
		return fmt.Errorf("%w: missing timestamp", ErrInvalidLog)
	}
	return nil
}

func (l *ComplianceLog) BeforeSave(tx *gorm.DB) error {
	return l.Validate()
}

type ViolationEvent struct {
	Id         int       `json:"id" gorm:"primaryKey"`
	LogId      int       `json:"logId" gorm:"type:int;index"`
	Timestamp  time.Time `json:"timestamp" gorm:"type:datetime;index"`
	Camera     string    `json:"camera" gorm:"type:varchar(64)"`
	Type       string    `json:"type" gorm:"type:varchar(32);index"`
	LocationX  float64   `json:"locationX"`
	LocationY  float64   `json:"locationY"`
	Box        Box       `json:"box" gorm:"type:json"`
	Confidence float64   `json:"confidence"`
	Severity   int       `json:"severity" gorm:"default:1"`
	Details    string    `json:"details,omitempty" gorm:"type:varchar(255)"`
	IsResolved bool      `json:"isResolved" gorm:"default:false"`
}

func saveFrameReport(db *gorm.DB, l *ComplianceLog) error {
	return db.Transaction(func(tx *gorm.DB) error {
		events := l.Events
		if l.Uuid == "" {
			l.Uuid = uuid.NewString()
		}
		l.Timestamp = l.Timestamp.UTC()
		if err := tx.Omit("Events").Create(l).Error; err != nil {
			return err
		}
		if len(events) == 0 {
			return nil
		}
		for i := range events {
			events[i].LogId = l.Id
			if events[i].Timestamp.IsZero() {
				events[i].Timestamp = l.Timestamp
			}
			events[i].Timestamp = events[i].Timestamp.UTC()
			if events[i].Camera == "" {
				events[i].Camera = l.Camera
			}
		}
		return tx.Create(&events).Error
	})
}

// SaveFrameReport stores a compliance log and its violation events in one
// transaction.
func SaveFrameReport(ctx context.Context, l *ComplianceLog) error {
	return saveFrameReport(DB.WithContext(ctx), l)
}

// GetComplianceLogByUuid returns nil, nil when no such log exists.
func GetComplianceLogByUuid(u string) (*ComplianceLog, error) {
	var l ComplianceLog
	if err := DB.Where("uuid = ?", u).First(&l).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &l, nil
}

func GetComplianceLog(id int) (*ComplianceLog, error) {
	var l ComplianceLog
	if err := DB.Preload("Events").Where("id = ?", id).First(&l).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &l, nil
}

func GetComplianceLogs(camera string, start, limit int) ([]*ComplianceLog, int64, error) {
	filter := func(db *gorm.DB) *gorm.DB {
		if camera != "" {
			db = db.Where("camera = ?", camera)
		}
		return db
	}

	var logs []*ComplianceLog
	var total int64
	if err := DB.Model(&ComplianceLog{}).Scopes(filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := DB.Scopes(filter).Order("timestamp desc, id desc").Offset(start).Limit(limit).Find(&logs).Error; err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}

// QueryLogs returns logs with start <= timestamp <= end, oldest first.
func QueryLogs(ctx context.Context, start, end time.Time) ([]ComplianceLog, error) {
	var logs []ComplianceLog
	err := DB.WithContext(ctx).
		Where("timestamp >= ? AND timestamp <= ?", start.UTC(), end.UTC()).
		Order("timestamp asc, id asc").
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}

// QueryEvents returns events with start <= timestamp <= end, oldest first.
func QueryEvents(ctx context.Context, start, end time.Time) ([]ViolationEvent, error) {
	var events []ViolationEvent
	err := DB.WithContext(ctx).
		Where("timestamp >= ? AND timestamp <= ?", start.UTC(), end.UTC()).
		Order("timestamp asc, id asc").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

type ViolationFilter struct {
	Type     string
	Resolved *bool
	Camera   string
}

func (f ViolationFilter) scope(db *gorm.DB) *gorm.DB {
	if f.Type != "" {
		db = db.Where("type = ?", f.Type)
	}
	if f.Resolved != nil {
		db = db.Where("is_resolved = ?", *f.Resolved)
	}
	if f.Camera != "" {
		db = db.Where("camera = ?", f.Camera)
	}
	return db
}

func GetViolationEvents(filter ViolationFilter, start, limit int) ([]*ViolationEvent, int64, error) {
	var events []*ViolationEvent
	var total int64
	if err := DB.Model(&ViolationEvent{}).Scopes(filter.scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := DB.Scopes(filter.scope).Order("timestamp desc, id desc").Offset(start).Limit(limit).Find(&events).Error; err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

// ResolveViolationEvent marks an event resolved. It returns nil, nil when
// the event does not exist.
func ResolveViolationEvent(id int) (*ViolationEvent, error) {
	var e ViolationEvent
	err := DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&e).Error; err != nil {
			return err
		}
		if e.IsResolved {
			return nil
		}
		e.IsResolved = true
		return tx.Model(&e).Update("is_resolved", true).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}
