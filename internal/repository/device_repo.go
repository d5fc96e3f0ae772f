package repository

import (
	"context"
	"time"

	"github.com/quocanhngo/farmiot/internal/model"
	"gorm.io/gorm"
)

// GormDeviceRepository handles database operations for Device
type GormDeviceRepository struct {
	db *gorm.DB
}

func NewDeviceRepository(db *gorm.DB) *GormDeviceRepository {
	return &GormDeviceRepository{db: db}
}

// Create inserts a new device
func (r *GormDeviceRepository) Create(ctx context.Context, device *model.Device) error {
	return translate(r.db.WithContext(ctx).Create(device).Error)
}

// FindByID finds a device by its database ID
func (r *GormDeviceRepository) FindByID(ctx context.Context, id uint) (*model.Device, error) {
	return r.findOne(ctx, "id = ?", id)
}

// FindByDeviceID finds a device by its hardware identifier
func (r *GormDeviceRepository) FindByDeviceID(ctx context.Context, deviceID string) (*model.Device, error) {
	return r.findOne(ctx, "device_id = ?", deviceID)
}

// FindByMQTTTopic finds the device publishing to a topic
func (r *GormDeviceRepository) FindByMQTTTopic(ctx context.Context, topic string) (*model.Device, error) {
	return r.findOne(ctx, "mqtt_topic = ?", topic)
}

func (r *GormDeviceRepository) findOne(ctx context.Context, query string, arg interface{}) (*model.Device, error) {
	var device model.Device
	if err := r.db.WithContext(ctx).Where(query, arg).First(&device).Error; err != nil {
		return nil, translate(err)
	}
	return &device, nil
}

// List returns one page of devices, newest registration first, and the size
// of the whole filtered set
func (r *GormDeviceRepository) List(ctx context.Context, filter model.DeviceFilter, skip, limit int) ([]model.Device, int64, error) {
	scope := func(db *gorm.DB) *gorm.DB {
		if filter.FarmID != nil {
			db = db.Where("farm_id = ?", *filter.FarmID)
		}
		if filter.OnlineOnly {
			db = db.Where("is_online = ?", true)
		}
		return db
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Device{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	devices := []model.Device{}
	err := r.db.WithContext(ctx).
		Scopes(scope).
		Order("created_at DESC, id DESC").
		Offset(skip).
		Limit(limit).
		Find(&devices).Error
	if err != nil {
		return nil, 0, err
	}
	return devices, total, nil
}

// Update applies only the fields present in update
func (r *GormDeviceRepository) Update(ctx context.Context, id uint, update model.DeviceUpdate) (*model.Device, error) {
	device, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if update.IsOnline != nil {
		updates["is_online"] = *update.IsOnline
	}
	if update.MQTTTopic != nil {
		updates["mqtt_topic"] = *update.MQTTTopic
	}
	if len(updates) == 0 {
		return device, nil
	}

	if err := r.db.WithContext(ctx).Model(device).Updates(updates).Error; err != nil {
		return nil, translate(err)
	}
	return r.FindByID(ctx, id)
}

// Delete removes a device together with all of its readings.
// It reports false when no device had that ID.
func (r *GormDeviceRepository) Delete(ctx context.Context, id uint) (bool, error) {
	deleted := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("device_id = ?", id).Delete(&model.Reading{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&model.Device{})
		if result.Error != nil {
			return result.Error
		}
		deleted = result.RowsAffected > 0
		return nil
	})
	return deleted, err
}

// SetStatus sets a device's online flag and optionally bumps last_seen
func (r *GormDeviceRepository) SetStatus(ctx context.Context, id uint, isOnline bool, touchLastSeen bool, at time.Time) error {
	updates := map[string]interface{}{
		"is_online": isOnline,
	}
	if touchLastSeen {
		updates["last_seen"] = at
	}
	return r.db.WithContext(ctx).Model(&model.Device{}).Where("id = ?", id).Updates(updates).Error
}

// MarkStaleOffline flips every online device last seen before cutoff to offline
// and returns how many rows changed. last_seen is left as is.
func (r *GormDeviceRepository) MarkStaleOffline(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Device{}).
		Where("is_online = ? AND last_seen < ?", true, cutoff).
		Update("is_online", false)
	return result.RowsAffected, result.Error
}
