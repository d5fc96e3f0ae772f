package main

import (
	"flag"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/quocanhngo/farmiot/internal/config"
	"github.com/quocanhngo/farmiot/internal/database"
	"github.com/quocanhngo/farmiot/internal/model"
	"github.com/quocanhngo/farmiot/migrations"
	"github.com/quocanhngo/farmiot/pkg/auth"
	"github.com/quocanhngo/farmiot/pkg/logger"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Fixed so repeated runs reuse the same demo farm
var demoOwnerID = uuid.MustParse("6f1c2a3e-0c4b-4d5e-9f00-000000000001")

func main() {
	rollback := flag.Bool("rollback", false, "revert the last schema migration and exit")
	flag.Parse()

	// Load config
	cfg := config.Load()
	logger.Setup(cfg.Log.Level, "text")

	if *rollback {
		if err := migrations.Rollback(cfg.DB.URL()); err != nil {
			logrus.WithError(err).Fatal("❌ Rollback failed")
		}
		return
	}

	// Force DB logging off to avoid noise
	db, err := database.OpenPostgres(cfg, gormlogger.Default.LogMode(gormlogger.Silent))
	if err != nil {
		logrus.WithError(err).Fatal("❌ Failed to connect to database")
	}
	if err := database.Migrate(cfg, db); err != nil {
		logrus.WithError(err).Fatal("❌ Failed to migrate database")
	}
	logrus.Info("✅ Connected to Database")

	farm := seedFarm(db)
	for i, hwID := range []string{"IOT-DEMO-0001", "IOT-DEMO-0002"} {
		device := seedDevice(db, farm, hwID, i+1)
		seedReadings(db, device, float64(i))
	}

	jwtManager := auth.NewJWTManager(cfg.JWT.Secret, cfg.JWT.Expiry)
	ownerToken, err := jwtManager.GenerateToken(demoOwnerID, "owner@farmiot.local", auth.RoleUser)
	if err != nil {
		logrus.WithError(err).Fatal("❌ Failed to sign owner token")
	}
	adminToken, err := jwtManager.GenerateToken(uuid.New(), "admin@farmiot.local", auth.RoleAdmin)
	if err != nil {
		logrus.WithError(err).Fatal("❌ Failed to sign admin token")
	}

	fmt.Printf("\nFarm ID:     %d\nOwner token: %s\nAdmin token: %s\n\n", farm.ID, ownerToken, adminToken)
	logrus.Info("🎉 Seeding completed!")
}

func seedFarm(db *gorm.DB) *model.Farm {
	var farm model.Farm
	if err := db.Where("owner_id = ?", demoOwnerID).First(&farm).Error; err == nil {
		logrus.WithField("farm_id", farm.ID).Info("🔄 Demo farm already exists")
		return &farm
	}

	farm = model.Farm{OwnerID: demoOwnerID, Name: "Demo Poultry Farm"}
	if err := db.Create(&farm).Error; err != nil {
		logrus.WithError(err).Fatal("❌ Failed to create farm")
	}
	logrus.WithField("farm_id", farm.ID).Info("✅ Created demo farm")
	return &farm
}

func seedDevice(db *gorm.DB, farm *model.Farm, hwID string, house int) *model.Device {
	var device model.Device
	if err := db.Where("device_id = ?", hwID).First(&device).Error; err == nil {
		logrus.WithField("device_id", hwID).Info("🔄 Device already exists")
		return &device
	}

	now := time.Now().UTC()
	device = model.Device{
		FarmID:    farm.ID,
		DeviceID:  hwID,
		IsOnline:  true,
		LastSeen:  &now,
		MQTTTopic: fmt.Sprintf("farm/%d/house/%d/sensors", farm.ID, house),
	}
	if err := db.Create(&device).Error; err != nil {
		logrus.WithError(err).Fatal("❌ Failed to create device")
	}
	logrus.WithField("device_id", hwID).Info("✅ Created device")
	return &device
}

// seedReadings writes one reading every 15 minutes over the last day
func seedReadings(db *gorm.DB, device *model.Device, offset float64) {
	var count int64
	db.Model(&model.Reading{}).Where("device_id = ?", device.ID).Count(&count)
	if count > 0 {
		return
	}

	now := time.Now().UTC()
	readings := make([]model.Reading, 0, 96)
	for i := 0; i < 96; i++ {
		ts := now.Add(-time.Duration(i) * 15 * time.Minute)
		phase := float64(i) / 96 * 2 * math.Pi
		readings = append(readings, model.Reading{
			DeviceID:     &device.ID,
			Timestamp:    ts,
			Temperature:  ptr(24 + offset + 3*math.Sin(phase)),
			Humidity:     ptr(60 + 8*math.Cos(phase)),
			FeedRate:     ptr(1.2 + 0.1*offset),
			WaterIntake:  ptr(2.4 + 0.2*math.Sin(phase)),
			AvgWeight:    ptr(1.8 + 0.01*float64(96-i)/96),
			AmmoniaLevel: ptr(12 + 2*math.Sin(phase*2)),
			LuxLevel:     ptr(math.Max(0, 300*math.Sin(phase))),
		})
	}
	if err := db.CreateInBatches(readings, 48).Error; err != nil {
		logrus.WithError(err).Fatal("❌ Failed to create readings")
	}
	logrus.WithFields(logrus.Fields{"device_id": device.DeviceID, "count": len(readings)}).Info("✅ Seeded readings")
}

func ptr(v float64) *float64 {
	return &v
}
