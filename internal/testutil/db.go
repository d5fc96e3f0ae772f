// Package testutil builds throwaway databases and fixtures for tests.
package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/quocanhngo/farmiot/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbSeq atomic.Int64

// NewDB opens a private in-memory SQLite database with the full schema
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:farmiot_%d?mode=memory&cache=shared&_pragma=foreign_keys(1)&_time_format=sqlite", dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		NowFunc:        func() time.Time { return time.Now().UTC() },
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&model.Farm{}, &model.Device{}, &model.Reading{}); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// a shared-cache memory database lives as long as one connection is open
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// CreateFarm inserts a farm owned by ownerID
func CreateFarm(t *testing.T, db *gorm.DB, ownerID uuid.UUID) *model.Farm {
	t.Helper()

	farm := &model.Farm{OwnerID: ownerID, Name: "farm-" + ownerID.String()[:8]}
	if err := db.Create(farm).Error; err != nil {
		t.Fatalf("create farm: %v", err)
	}
	return farm
}

// CreateDevice inserts an online device on a farm, last seen at lastSeen
func CreateDevice(t *testing.T, db *gorm.DB, farmID uint, deviceID string, lastSeen time.Time) *model.Device {
	t.Helper()

	ts := lastSeen.UTC()
	device := &model.Device{
		FarmID:    farmID,
		DeviceID:  deviceID,
		IsOnline:  true,
		LastSeen:  &ts,
		MQTTTopic: "test/" + deviceID,
	}
	if err := db.Create(device).Error; err != nil {
		t.Fatalf("create device: %v", err)
	}
	return device
}

// CreateReading inserts a reading for a device taken at ts
func CreateReading(t *testing.T, db *gorm.DB, deviceID uint, ts time.Time, temperature *float64) *model.Reading {
	t.Helper()

	id := deviceID
	reading := &model.Reading{DeviceID: &id, Timestamp: ts.UTC(), Temperature: temperature}
	if err := db.Create(reading).Error; err != nil {
		t.Fatalf("create reading: %v", err)
	}
	return reading
}

// Float returns a pointer to v
func Float(v float64) *float64 {
	return &v
}
