package model

import "time"

// Reading is one immutable telemetry sample. Every metric is optional because
// a device may only carry a subset of the sensors.
type Reading struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	DeviceID     *uint     `json:"device_id" gorm:"index"`
	Timestamp    time.Time `json:"timestamp" gorm:"not null;index"`
	FeedRate     *float64  `json:"feed_rate"`
	WaterIntake  *float64  `json:"water_intake"`
	Temperature  *float64  `json:"temperature"`
	Humidity     *float64  `json:"humidity"`
	AvgWeight    *float64  `json:"avg_weight"`
	AmmoniaLevel *float64  `json:"ammonia_level"`
	LuxLevel     *float64  `json:"lux_level"`
}

func (Reading) TableName() string {
	return "sensor_readings"
}

// ReadingAggregate is the raw result of the windowed statistics query.
// A nil metric means no sample in the window carried it.
type ReadingAggregate struct {
	ReadingsCount   int64
	AvgTemperature  *float64
	MinTemperature  *float64
	MaxTemperature  *float64
	AvgHumidity     *float64
	AvgFeedRate     *float64
	AvgWaterIntake  *float64
	AvgWeight       *float64
	AvgAmmoniaLevel *float64
	AvgLuxLevel     *float64
}
