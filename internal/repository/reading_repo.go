package repository

import (
	"context"
	"time"

	"github.com/quocanhngo/farmiot/internal/model"
	"gorm.io/gorm"
)

// GormReadingRepository handles database operations for Reading
type GormReadingRepository struct {
	db *gorm.DB
}

func NewReadingRepository(db *gorm.DB) *GormReadingRepository {
	return &GormReadingRepository{db: db}
}

// Create inserts a new reading
func (r *GormReadingRepository) Create(ctx context.Context, reading *model.Reading) error {
	return translate(r.db.WithContext(ctx).Create(reading).Error)
}

// Latest returns the most recent reading of a device
func (r *GormReadingRepository) Latest(ctx context.Context, deviceID uint) (*model.Reading, error) {
	var reading model.Reading
	err := r.db.WithContext(ctx).
		Where("device_id = ?", deviceID).
		Order("sensor_readings.timestamp DESC, id DESC").
		First(&reading).Error
	if err != nil {
		return nil, translate(err)
	}
	return &reading, nil
}

// ListForDevice returns a device's readings newest first, at most limit rows
func (r *GormReadingRepository) ListForDevice(ctx context.Context, deviceID uint, since *time.Time, limit int) ([]model.Reading, error) {
	return r.list(ctx, r.db.Where("device_id = ?", deviceID), since, limit)
}

// ListForFarm returns readings from every device of a farm, newest first
func (r *GormReadingRepository) ListForFarm(ctx context.Context, farmID uint, since *time.Time, limit int) ([]model.Reading, error) {
	farmDevices := r.db.Model(&model.Device{}).Select("id").Where("farm_id = ?", farmID)
	return r.list(ctx, r.db.Where("device_id IN (?)", farmDevices), since, limit)
}

func (r *GormReadingRepository) list(ctx context.Context, query *gorm.DB, since *time.Time, limit int) ([]model.Reading, error) {
	query = query.WithContext(ctx)
	if since != nil {
		query = query.Where("sensor_readings.timestamp >= ?", *since)
	}

	readings := []model.Reading{}
	err := query.
		Order("sensor_readings.timestamp DESC, id DESC").
		Limit(limit).
		Find(&readings).Error
	return readings, err
}

// CountByDevices counts stored readings per device. Devices without readings
// are absent from the result.
func (r *GormReadingRepository) CountByDevices(ctx context.Context, deviceIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(deviceIDs))
	if len(deviceIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		DeviceID uint
		Total    int64
	}
	err := r.db.WithContext(ctx).
		Model(&model.Reading{}).
		Select("device_id, COUNT(*) AS total").
		Where("device_id IN ?", deviceIDs).
		Group("device_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		counts[row.DeviceID] = row.Total
	}
	return counts, nil
}

// Aggregate computes count, per-metric averages and the temperature range
// over readings taken at or after since. SQL aggregates skip NULLs, so a metric
// no reading carried comes back nil.
func (r *GormReadingRepository) Aggregate(ctx context.Context, deviceID uint, since time.Time) (*model.ReadingAggregate, error) {
	var agg model.ReadingAggregate
	err := r.db.WithContext(ctx).
		Model(&model.Reading{}).
		Select(`COUNT(id) AS readings_count,
			AVG(temperature) AS avg_temperature,
			MIN(temperature) AS min_temperature,
			MAX(temperature) AS max_temperature,
			AVG(humidity) AS avg_humidity,
			AVG(feed_rate) AS avg_feed_rate,
			AVG(water_intake) AS avg_water_intake,
			AVG(avg_weight) AS avg_weight,
			AVG(ammonia_level) AS avg_ammonia_level,
			AVG(lux_level) AS avg_lux_level`).
		Where("device_id = ? AND sensor_readings.timestamp >= ?", deviceID, since).
		Scan(&agg).Error
	if err != nil {
		return nil, err
	}
	return &agg, nil
}

// TimeBounds returns the oldest and newest reading timestamps in the window,
// both nil when the window is empty
func (r *GormReadingRepository) TimeBounds(ctx context.Context, deviceID uint, since time.Time) (*time.Time, *time.Time, error) {
	edge := func(order string) (*time.Time, error) {
		var readings []model.Reading
		err := r.db.WithContext(ctx).
			Where("device_id = ? AND sensor_readings.timestamp >= ?", deviceID, since).
			Order(order).
			Limit(1).
			Find(&readings).Error
		if err != nil || len(readings) == 0 {
			return nil, err
		}
		ts := readings[0].Timestamp
		return &ts, nil
	}

	first, err := edge("sensor_readings.timestamp ASC, id ASC")
	if err != nil {
		return nil, nil, err
	}
	last, err := edge("sensor_readings.timestamp DESC, id DESC")
	if err != nil {
		return nil, nil, err
	}
	return first, last, nil
}
