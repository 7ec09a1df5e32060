package model

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"injuryshield/internal/ppe"
)

var DB *gorm.DB

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

type DBConfig struct {
	Driver       string `yaml:"driver" env:"DB_DRIVER"`
	DSN          string `yaml:"dsn" env:"DATABASE_URL"`
	MaxIdleConns int    `yaml:"maxIdleConns"`
	MaxOpenConns int    `yaml:"maxOpenConns"`
	MaxLifetime  int    `yaml:"maxLifetime"`
	LogSQL       bool   `yaml:"logSQL"`
}

func DefaultDBConfig() *DBConfig {
	return &DBConfig{
		Driver:       DriverSQLite,
		DSN:          "app_data/injuryshield.db",
		MaxIdleConns: 10,
		MaxOpenConns: 1,
		MaxLifetime:  60,
	}
}

func openDialector(dbConfig DBConfig) (gorm.Dialector, error) {
	switch dbConfig.Driver {
	case DriverMySQL:
		return mysql.Open(dbConfig.DSN), nil
	case DriverSQLite, "":
		if !strings.HasPrefix(dbConfig.DSN, "file:") && dbConfig.DSN != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(dbConfig.DSN), 0755); err != nil {
				return nil, err
			}
		}
		return sqlite.Open(dbConfig.DSN), nil
	default:
		return nil, fmt.Errorf("unsupported db driver %q", dbConfig.Driver)
	}
}

func InitDB(dbConfig DBConfig) (*gorm.DB, error) {
	dialector, err := openDialector(dbConfig)
	if err != nil {
		return nil, err
	}

	gormConf := &gorm.Config{
		PrepareStmt: true,
		Logger:      logger.Default.LogMode(logger.Silent),
	}
	if dbConfig.LogSQL {
		gormConf.Logger = logger.Default.LogMode(logger.Info)
	}

	db, err := gorm.Open(dialector, gormConf)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(dbConfig.MaxIdleConns)
	sqlDB.SetMaxOpenConns(dbConfig.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Second * time.Duration(dbConfig.MaxLifetime))

	DB = db

	return db, nil
}

func AutoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(&User{}, &ComplianceLog{}, &ViolationEvent{})
	if err != nil {
		return err
	}
	return nil
}

// InsertTestData seeds an admin account and a week of synthetic compliance
// history so the dashboard has something to render.
func InsertTestData(db *gorm.DB) error {
	var count int64
	if err := db.Model(&User{}).Where("username = ?", "admin").Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		admin := &User{Username: "admin", Nickname: "Administrator", IsAdmin: true}
		if err := admin.SetPassword("admin123"); err != nil {
			return err
		}
		admin.AccessToken = NewAccessToken()
		if err := db.Create(admin).Error; err != nil {
			return err
		}
	}

	now := time.Now().UTC().Truncate(time.Hour)
	types := []string{"no-helmet", "no-vest", "no-gloves"}
	for i := 0; i < 7*24; i += 3 {
		ts := now.Add(-time.Duration(i) * time.Hour)
		persons := 2 + i%4
		violating := i % 3
		if violating > persons {
			violating = persons
		}
		l := &ComplianceLog{
			Timestamp:      ts,
			Camera:         "default",
			PersonsCount:   persons,
			CompliantCount: persons - violating,
			ViolationCount: violating,
			PPEWornCount:   (persons - violating) * 2,
			Status:         ppe.StatusText(persons, violating),
		}
		for j := 0; j < violating; j++ {
			vt := types[(i+j)%len(types)]
			l.Events = append(l.Events, ViolationEvent{
				Timestamp:  ts,
				Camera:     "default",
				Type:       vt,
				LocationX:  float64(80 + (i*37+j*53)%480),
				LocationY:  float64(60 + (i*29+j*41)%360),
				Confidence: 0.6 + float64((i+j)%4)/10,
				Severity:   ppe.DefaultSeverity(ppe.ViolationType(vt)),
			})
		}
		if err := saveFrameReport(db, l); err != nil {
			return err
		}
	}
	return nil
}
