package model

import "time"

// ========== Device DTOs ==========

type RegisterDeviceRequest struct {
	FarmID    uint    `json:"farm_id" binding:"required"`
	DeviceID  string  `json:"device_id" binding:"required,min=1,max=100"`
	MQTTTopic *string `json:"mqtt_topic" binding:"omitempty,min=1,max=200"`
}

type ListDevicesQuery struct {
	Skip       int  `form:"skip,default=0" binding:"min=0"`
	Limit      int  `form:"limit,default=100" binding:"min=1,max=100"`
	OnlineOnly bool `form:"online_only"`
}

type FarmDevicesQuery struct {
	Skip  int `form:"skip,default=0" binding:"min=0"`
	Limit int `form:"limit,default=100" binding:"min=1,max=100"`
}

// DeviceWithLatestReading composes a device with its most recent sample
type DeviceWithLatestReading struct {
	Device
	LatestReading *Reading `json:"latest_reading"`
	ReadingsCount int64    `json:"readings_count"`
}

type DeviceListResponse struct {
	Total        int64                     `json:"total"`
	Devices      []DeviceWithLatestReading `json:"devices"`
	Skip         int                       `json:"skip"`
	Limit        int                       `json:"limit"`
	OnlineCount  int                       `json:"online_count"`
	OfflineCount int                       `json:"offline_count"`
}

// ========== Reading DTOs ==========

type RecordReadingRequest struct {
	DeviceID     uint     `json:"device_id" binding:"required"`
	FeedRate     *float64 `json:"feed_rate"`
	WaterIntake  *float64 `json:"water_intake"`
	Temperature  *float64 `json:"temperature"`
	Humidity     *float64 `json:"humidity"`
	AvgWeight    *float64 `json:"avg_weight"`
	AmmoniaLevel *float64 `json:"ammonia_level"`
	LuxLevel     *float64 `json:"lux_level"`
}

type ReadingsQuery struct {
	HoursBack int `form:"hours_back,default=24" binding:"min=1,max=720"`
	Limit     int `form:"limit,default=100" binding:"min=1,max=1000"`
}

type StatsQuery struct {
	HoursBack int `form:"hours_back,default=24" binding:"min=1,max=720"`
}

// SensorDataSummary is the windowed statistics view of one device
type SensorDataSummary struct {
	DeviceID        uint       `json:"device_id"`
	FarmID          uint       `json:"farm_id"`
	ReadingsCount   int64      `json:"readings_count"`
	FirstReading    *time.Time `json:"first_reading"`
	LastReading     *time.Time `json:"last_reading"`
	AvgTemperature  *float64   `json:"avg_temperature"`
	MinTemperature  *float64   `json:"min_temperature"`
	MaxTemperature  *float64   `json:"max_temperature"`
	AvgHumidity     *float64   `json:"avg_humidity"`
	AvgFeedRate     *float64   `json:"avg_feed_rate"`
	AvgWaterIntake  *float64   `json:"avg_water_intake"`
	AvgWeight       *float64   `json:"avg_weight"`
	AvgAmmoniaLevel *float64   `json:"avg_ammonia_level"`
	AvgLuxLevel     *float64   `json:"avg_lux_level"`
	HoursBack       int        `json:"hours_back"`
}

// ========== Maintenance DTOs ==========

type CheckOfflineQuery struct {
	TimeoutMinutes int `form:"timeout_minutes,default=30" binding:"min=5,max=1440"`
}

type CheckOfflineResponse struct {
	MarkedOffline int64  `json:"marked_offline"`
	Message       string `json:"message"`
}

// ========== Common ==========

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
