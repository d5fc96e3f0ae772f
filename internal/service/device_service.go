package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/quocanhngo/farmiot/internal/model"
	"github.com/quocanhngo/farmiot/internal/repository"
)

const (
	msgDeviceNotFound = "Device not found"
	msgAccessDenied   = "Access denied"
)

// DeviceService handles device registry business logic
type DeviceService struct {
	store repository.Repositories
	now   func() time.Time
}

func NewDeviceService(store repository.Repositories) *DeviceService {
	return &DeviceService{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Register creates a device on a farm owned by ownerID
func (s *DeviceService) Register(ctx context.Context, ownerID uuid.UUID, req model.RegisterDeviceRequest) (*model.Device, error) {
	var device *model.Device
	err := s.store.Transaction(ctx, func(tx repository.Repositories) error {
		if _, err := tx.Farms().VerifyFarmOwner(ctx, req.FarmID, ownerID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return notFound("Farm not found or access denied")
			}
			return err
		}

		if _, err := tx.Devices().FindByDeviceID(ctx, req.DeviceID); err == nil {
			return conflict("Device with ID %s already exists", req.DeviceID)
		} else if !errors.Is(err, repository.ErrNotFound) {
			return err
		}

		topic := model.DefaultMQTTTopic(req.FarmID)
		if req.MQTTTopic != nil {
			topic = *req.MQTTTopic
		}
		if _, err := tx.Devices().FindByMQTTTopic(ctx, topic); err == nil {
			return conflict("MQTT topic %s is already in use", topic)
		} else if !errors.Is(err, repository.ErrNotFound) {
			return err
		}

		now := s.now()
		device = &model.Device{
			FarmID:    req.FarmID,
			DeviceID:  req.DeviceID,
			IsOnline:  true,
			LastSeen:  &now,
			MQTTTopic: topic,
		}
		if err := tx.Devices().Create(ctx, device); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return conflict("Device with ID %s already exists", req.DeviceID)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return device, nil
}

// List returns one page of devices across all farms with their latest readings.
// online/offline counts cover the returned page only.
func (s *DeviceService) List(ctx context.Context, q model.ListDevicesQuery) (*model.DeviceListResponse, error) {
	resp := &model.DeviceListResponse{Skip: q.Skip, Limit: q.Limit}
	err := s.store.Transaction(ctx, func(tx repository.Repositories) error {
		devices, total, err := tx.Devices().List(ctx, model.DeviceFilter{OnlineOnly: q.OnlineOnly}, q.Skip, q.Limit)
		if err != nil {
			return err
		}

		withReadings, err := attachReadings(ctx, tx, devices)
		if err != nil {
			return err
		}

		resp.Total = total
		resp.Devices = withReadings
		for _, d := range devices {
			if d.IsOnline {
				resp.OnlineCount++
			} else {
				resp.OfflineCount++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// Get returns a device the caller owns, with its latest reading
func (s *DeviceService) Get(ctx context.Context, callerID uuid.UUID, id uint) (*model.DeviceWithLatestReading, error) {
	var result *model.DeviceWithLatestReading
	err := s.store.Transaction(ctx, func(tx repository.Repositories) error {
		device, err := authorizeDevice(ctx, tx, callerID, id)
		if err != nil {
			return err
		}

		withReadings, err := attachReadings(ctx, tx, []model.Device{*device})
		if err != nil {
			return err
		}
		result = &withReadings[0]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Update changes the settings present in update on a device the caller owns
func (s *DeviceService) Update(ctx context.Context, callerID uuid.UUID, id uint, update model.DeviceUpdate) (*model.Device, error) {
	var device *model.Device
	err := s.store.Transaction(ctx, func(tx repository.Repositories) error {
		current, err := authorizeDevice(ctx, tx, callerID, id)
		if err != nil {
			return err
		}

		if update.MQTTTopic != nil && *update.MQTTTopic != current.MQTTTopic {
			owner, err := tx.Devices().FindByMQTTTopic(ctx, *update.MQTTTopic)
			if err == nil && owner.ID != current.ID {
				return conflict("MQTT topic %s is already in use", *update.MQTTTopic)
			}
			if err != nil && !errors.Is(err, repository.ErrNotFound) {
				return err
			}
		}

		device, err = tx.Devices().Update(ctx, id, update)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return notFound(msgDeviceNotFound)
		case errors.Is(err, repository.ErrDuplicate):
			return conflict("MQTT topic %s is already in use", *update.MQTTTopic)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return device, nil
}

// Delete removes a device the caller owns together with its readings
func (s *DeviceService) Delete(ctx context.Context, callerID uuid.UUID, id uint) error {
	return s.store.Transaction(ctx, func(tx repository.Repositories) error {
		if _, err := authorizeDevice(ctx, tx, callerID, id); err != nil {
			return err
		}

		deleted, err := tx.Devices().Delete(ctx, id)
		if err != nil {
			return err
		}
		if !deleted {
			return notFound(msgDeviceNotFound)
		}
		return nil
	})
}

// ListForFarm returns one page of a farm's devices with their latest readings
func (s *DeviceService) ListForFarm(ctx context.Context, callerID uuid.UUID, farmID uint, q model.FarmDevicesQuery) ([]model.DeviceWithLatestReading, error) {
	var result []model.DeviceWithLatestReading
	err := s.store.Transaction(ctx, func(tx repository.Repositories) error {
		if _, err := tx.Farms().VerifyFarmOwner(ctx, farmID, callerID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return notFound("Farm not found")
			}
			return err
		}

		devices, _, err := tx.Devices().List(ctx, model.DeviceFilter{FarmID: &farmID}, q.Skip, q.Limit)
		if err != nil {
			return err
		}

		result, err = attachReadings(ctx, tx, devices)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// authorizeDevice loads a device and checks the caller owns its farm.
// A missing device is NotFound; a foreign one is Forbidden.
func authorizeDevice(ctx context.Context, tx repository.Repositories, callerID uuid.UUID, id uint) (*model.Device, error) {
	device, err := tx.Devices().FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound(msgDeviceNotFound)
		}
		return nil, err
	}

	if _, err := tx.Farms().VerifyFarmOwner(ctx, device.FarmID, callerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, forbidden(msgAccessDenied)
		}
		return nil, err
	}
	return device, nil
}

// attachReadings composes each device with its latest reading and stored reading count
func attachReadings(ctx context.Context, tx repository.Repositories, devices []model.Device) ([]model.DeviceWithLatestReading, error) {
	ids := make([]uint, 0, len(devices))
	for _, d := range devices {
		ids = append(ids, d.ID)
	}
	counts, err := tx.Readings().CountByDevices(ctx, ids)
	if err != nil {
		return nil, err
	}

	result := make([]model.DeviceWithLatestReading, 0, len(devices))
	for _, d := range devices {
		item := model.DeviceWithLatestReading{Device: d, ReadingsCount: counts[d.ID]}
		latest, err := tx.Readings().Latest(ctx, d.ID)
		switch {
		case err == nil:
			item.LatestReading = latest
		case !errors.Is(err, repository.ErrNotFound):
			return nil, err
		}
		result = append(result, item)
	}
	return result, nil
}
