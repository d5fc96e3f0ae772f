package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/quocanhngo/farmiot/internal/model"
	"github.com/quocanhngo/farmiot/internal/repository"
	"github.com/quocanhngo/farmiot/pkg/metrics"
	"github.com/sirupsen/logrus"
)

// ReadingService handles telemetry ingestion and queries
type ReadingService struct {
	store   repository.Repositories
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewReadingService(store repository.Repositories, m *metrics.Metrics) *ReadingService {
	return &ReadingService{
		store:   store,
		metrics: m,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Record stores a reading stamped with the server clock and marks the
// reporting device online
func (s *ReadingService) Record(ctx context.Context, req model.RecordReadingRequest) (*model.Reading, error) {
	now := s.now()
	reading := &model.Reading{
		DeviceID:     &req.DeviceID,
		Timestamp:    now,
		FeedRate:     req.FeedRate,
		WaterIntake:  req.WaterIntake,
		Temperature:  req.Temperature,
		Humidity:     req.Humidity,
		AvgWeight:    req.AvgWeight,
		AmmoniaLevel: req.AmmoniaLevel,
		LuxLevel:     req.LuxLevel,
	}

	err := s.store.Transaction(ctx, func(tx repository.Repositories) error {
		if _, err := tx.Devices().FindByID(ctx, req.DeviceID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return notFound(msgDeviceNotFound)
			}
			return err
		}

		if err := tx.Readings().Create(ctx, reading); err != nil {
			return err
		}
		return tx.Devices().SetStatus(ctx, req.DeviceID, true, true, now)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.ReadingIngested()
	logrus.WithFields(logrus.Fields{
		"device_id":  req.DeviceID,
		"reading_id": reading.ID,
	}).Debug("Sensor reading recorded")
	return reading, nil
}

// List returns a device's readings from the last hoursBack hours, newest first
func (s *ReadingService) List(ctx context.Context, callerID uuid.UUID, deviceID uint, q model.ReadingsQuery) ([]model.Reading, error) {
	var readings []model.Reading
	err := s.store.Transaction(ctx, func(tx repository.Repositories) error {
		if _, err := authorizeDevice(ctx, tx, callerID, deviceID); err != nil {
			return err
		}

		since := s.windowStart(q.HoursBack)
		var err error
		readings, err = tx.Readings().ListForDevice(ctx, deviceID, &since, q.Limit)
		return err
	})
	if err != nil {
		return nil, err
	}
	return readings, nil
}

// Latest returns the most recent reading of a device the caller owns
func (s *ReadingService) Latest(ctx context.Context, callerID uuid.UUID, deviceID uint) (*model.Reading, error) {
	var reading *model.Reading
	err := s.store.Transaction(ctx, func(tx repository.Repositories) error {
		if _, err := authorizeDevice(ctx, tx, callerID, deviceID); err != nil {
			return err
		}

		var err error
		reading, err = tx.Readings().Latest(ctx, deviceID)
		if errors.Is(err, repository.ErrNotFound) {
			return notFound("No readings found for this device")
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return reading, nil
}

// Stats summarizes a device's readings over the last hoursBack hours.
// Metrics no reading in the window carried stay nil.
func (s *ReadingService) Stats(ctx context.Context, callerID uuid.UUID, deviceID uint, q model.StatsQuery) (*model.SensorDataSummary, error) {
	var summary *model.SensorDataSummary
	err := s.store.Transaction(ctx, func(tx repository.Repositories) error {
		device, err := authorizeDevice(ctx, tx, callerID, deviceID)
		if err != nil {
			return err
		}

		since := s.windowStart(q.HoursBack)
		agg, err := tx.Readings().Aggregate(ctx, deviceID, since)
		if err != nil {
			return err
		}
		first, last, err := tx.Readings().TimeBounds(ctx, deviceID, since)
		if err != nil {
			return err
		}

		summary = &model.SensorDataSummary{
			DeviceID:        device.ID,
			FarmID:          device.FarmID,
			ReadingsCount:   agg.ReadingsCount,
			FirstReading:    first,
			LastReading:     last,
			AvgTemperature:  agg.AvgTemperature,
			MinTemperature:  agg.MinTemperature,
			MaxTemperature:  agg.MaxTemperature,
			AvgHumidity:     agg.AvgHumidity,
			AvgFeedRate:     agg.AvgFeedRate,
			AvgWaterIntake:  agg.AvgWaterIntake,
			AvgWeight:       agg.AvgWeight,
			AvgAmmoniaLevel: agg.AvgAmmoniaLevel,
			AvgLuxLevel:     agg.AvgLuxLevel,
			HoursBack:       q.HoursBack,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// ListForFarm returns readings from every device of a farm the caller owns
func (s *ReadingService) ListForFarm(ctx context.Context, callerID uuid.UUID, farmID uint, q model.ReadingsQuery) ([]model.Reading, error) {
	var readings []model.Reading
	err := s.store.Transaction(ctx, func(tx repository.Repositories) error {
		if _, err := tx.Farms().VerifyFarmOwner(ctx, farmID, callerID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return notFound("Farm not found")
			}
			return err
		}

		since := s.windowStart(q.HoursBack)
		var err error
		readings, err = tx.Readings().ListForFarm(ctx, farmID, &since, q.Limit)
		return err
	})
	if err != nil {
		return nil, err
	}
	return readings, nil
}

func (s *ReadingService) windowStart(hoursBack int) time.Time {
	return s.now().Add(-time.Duration(hoursBack) * time.Hour)
}
