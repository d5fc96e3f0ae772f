package model

import (
	"fmt"
	"time"
)

// Device is an IoT hardware unit registered to exactly one farm
type Device struct {
	ID        uint       `json:"id" gorm:"primaryKey"`
	FarmID    uint       `json:"farm_id" gorm:"not null;index"`
	DeviceID  string     `json:"device_id" gorm:"size:100;not null;uniqueIndex"` // hardware ID
	IsOnline  bool       `json:"is_online" gorm:"not null"` // no gorm default: false must be written as false
	LastSeen  *time.Time `json:"last_seen"`
	MQTTTopic string     `json:"mqtt_topic" gorm:"column:mqtt_topic;size:200;uniqueIndex"`
	CreatedAt time.Time  `json:"created_at"`

	Readings []Reading `json:"-" gorm:"foreignKey:DeviceID;constraint:OnDelete:CASCADE"`
}

func (Device) TableName() string {
	return "iot_devices"
}

// DefaultMQTTTopic is the topic assigned when registration omits one
func DefaultMQTTTopic(farmID uint) string {
	return fmt.Sprintf("farm/%d/sensors", farmID)
}

// DeviceFilter narrows a device listing. A nil FarmID means all farms.
type DeviceFilter struct {
	FarmID     *uint
	OnlineOnly bool
}

// DeviceUpdate carries the settings a caller may change. Nil fields are left untouched.
type DeviceUpdate struct {
	IsOnline  *bool   `json:"is_online"`
	MQTTTopic *string `json:"mqtt_topic" binding:"omitempty,min=1,max=200"`
}

// IsEmpty reports whether the update would change nothing
func (u DeviceUpdate) IsEmpty() bool {
	return u.IsOnline == nil && u.MQTTTopic == nil
}
