package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/quocanhngo/farmiot/internal/model"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when a lookup matches no row
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when an insert or update violates a unique key
	ErrDuplicate = errors.New("duplicate key")
)

// DeviceRepository persists device identity and liveness
type DeviceRepository interface {
	Create(ctx context.Context, device *model.Device) error
	FindByID(ctx context.Context, id uint) (*model.Device, error)
	FindByDeviceID(ctx context.Context, deviceID string) (*model.Device, error)
	FindByMQTTTopic(ctx context.Context, topic string) (*model.Device, error)
	List(ctx context.Context, filter model.DeviceFilter, skip, limit int) ([]model.Device, int64, error)
	Update(ctx context.Context, id uint, update model.DeviceUpdate) (*model.Device, error)
	Delete(ctx context.Context, id uint) (bool, error)
	SetStatus(ctx context.Context, id uint, isOnline bool, touchLastSeen bool, at time.Time) error
	MarkStaleOffline(ctx context.Context, cutoff time.Time) (int64, error)
}

// ReadingRepository persists telemetry samples and answers windowed queries.
// A nil since means no lower time bound.
type ReadingRepository interface {
	Create(ctx context.Context, reading *model.Reading) error
	Latest(ctx context.Context, deviceID uint) (*model.Reading, error)
	ListForDevice(ctx context.Context, deviceID uint, since *time.Time, limit int) ([]model.Reading, error)
	ListForFarm(ctx context.Context, farmID uint, since *time.Time, limit int) ([]model.Reading, error)
	CountByDevices(ctx context.Context, deviceIDs []uint) (map[uint]int64, error)
	Aggregate(ctx context.Context, deviceID uint, since time.Time) (*model.ReadingAggregate, error)
	TimeBounds(ctx context.Context, deviceID uint, since time.Time) (first, last *time.Time, err error)
}

// FarmOwnershipChecker resolves a farm only when it belongs to the caller
type FarmOwnershipChecker interface {
	VerifyFarmOwner(ctx context.Context, farmID uint, ownerID uuid.UUID) (*model.Farm, error)
}

// Repositories groups the repositories that share one unit of work
type Repositories interface {
	Devices() DeviceRepository
	Readings() ReadingRepository
	Farms() FarmOwnershipChecker
	// Transaction runs fn with repositories bound to one database transaction.
	// The transaction commits only when fn returns nil.
	Transaction(ctx context.Context, fn func(tx Repositories) error) error
}

// Store is the gorm implementation of Repositories
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Devices() DeviceRepository {
	return NewDeviceRepository(s.db)
}

func (s *Store) Readings() ReadingRepository {
	return NewReadingRepository(s.db)
}

func (s *Store) Farms() FarmOwnershipChecker {
	return NewFarmRepository(s.db)
}

func (s *Store) Transaction(ctx context.Context, fn func(tx Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}

// translate maps gorm sentinel errors onto the repository ones
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	default:
		return err
	}
}
