package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/quocanhngo/farmiot/internal/model"
	"github.com/quocanhngo/farmiot/internal/repository"
	"github.com/quocanhngo/farmiot/internal/testutil"
	"github.com/quocanhngo/farmiot/pkg/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newReadingService(t *testing.T) (*ReadingService, *gorm.DB) {
	t.Helper()
	db := testutil.NewDB(t)
	return NewReadingService(repository.NewStore(db), metrics.New(prometheus.NewRegistry())), db
}

func TestRecord_RefreshesLiveness(t *testing.T) {
	svc, db := newReadingService(t)
	ctx := context.Background()
	farm := testutil.CreateFarm(t, db, uuid.New())
	device := testutil.CreateDevice(t, db, farm.ID, "IOT-1", time.Now().Add(-2*time.Hour))
	require.NoError(t, db.Model(device).Update("is_online", false).Error)

	fixed := time.Now().UTC().Truncate(time.Second)
	svc.now = func() time.Time { return fixed }

	reading, err := svc.Record(ctx, model.RecordReadingRequest{DeviceID: device.ID, Temperature: testutil.Float(22.5)})
	require.NoError(t, err)
	assert.NotZero(t, reading.ID)
	assert.True(t, reading.Timestamp.Equal(fixed))
	assert.Nil(t, reading.Humidity)

	var got model.Device
	require.NoError(t, db.First(&got, device.ID).Error)
	assert.True(t, got.IsOnline)
	require.NotNil(t, got.LastSeen)
	assert.True(t, got.LastSeen.Equal(fixed))
}

func TestRecord_UnknownDevice(t *testing.T) {
	svc, db := newReadingService(t)

	_, err := svc.Record(context.Background(), model.RecordReadingRequest{DeviceID: 42})
	require.ErrorIs(t, err, ErrNotFound)

	var count int64
	require.NoError(t, db.Model(&model.Reading{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestList_WindowBoundary(t *testing.T) {
	svc, db := newReadingService(t)
	ctx := context.Background()
	owner := uuid.New()
	farm := testutil.CreateFarm(t, db, owner)
	device := testutil.CreateDevice(t, db, farm.ID, "IOT-1", time.Now())
	now := time.Now().UTC()
	svc.now = func() time.Time { return now }
	testutil.CreateReading(t, db, device.ID, now.Add(-2*time.Hour), testutil.Float(1))
	recent := testutil.CreateReading(t, db, device.ID, now.Add(-30*time.Minute), testutil.Float(2))

	readings, err := svc.List(ctx, owner, device.ID, model.ReadingsQuery{HoursBack: 1, Limit: 100})
	require.NoError(t, err)
	require.Len(t, readings, 1)
	assert.Equal(t, recent.ID, readings[0].ID)

	readings, err = svc.List(ctx, owner, device.ID, model.ReadingsQuery{HoursBack: 24, Limit: 100})
	require.NoError(t, err)
	assert.Len(t, readings, 2)

	_, err = svc.List(ctx, uuid.New(), device.ID, model.ReadingsQuery{HoursBack: 24, Limit: 100})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestLatest_NoReadings(t *testing.T) {
	svc, db := newReadingService(t)
	owner := uuid.New()
	farm := testutil.CreateFarm(t, db, owner)
	device := testutil.CreateDevice(t, db, farm.ID, "IOT-1", time.Now())

	_, err := svc.Latest(context.Background(), owner, device.ID)
	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "No readings found for this device", err.Error())
}

func TestStats_AveragesIgnoreMissingValues(t *testing.T) {
	svc, db := newReadingService(t)
	ctx := context.Background()
	owner := uuid.New()
	farm := testutil.CreateFarm(t, db, owner)
	device := testutil.CreateDevice(t, db, farm.ID, "IOT-1", time.Now())
	now := time.Now().UTC().Truncate(time.Second)
	svc.now = func() time.Time { return now }
	testutil.CreateReading(t, db, device.ID, now.Add(-3*time.Minute), testutil.Float(20))
	testutil.CreateReading(t, db, device.ID, now.Add(-2*time.Minute), testutil.Float(30))
	testutil.CreateReading(t, db, device.ID, now.Add(-time.Minute), nil)

	summary, err := svc.Stats(ctx, owner, device.ID, model.StatsQuery{HoursBack: 24})
	require.NoError(t, err)
	assert.Equal(t, device.ID, summary.DeviceID)
	assert.Equal(t, farm.ID, summary.FarmID)
	assert.Equal(t, 24, summary.HoursBack)
	assert.Equal(t, int64(3), summary.ReadingsCount)
	assert.InDelta(t, 25.0, *summary.AvgTemperature, 1e-9)
	assert.InDelta(t, 20.0, *summary.MinTemperature, 1e-9)
	assert.InDelta(t, 30.0, *summary.MaxTemperature, 1e-9)
	assert.Nil(t, summary.AvgHumidity)
	require.NotNil(t, summary.FirstReading)
	require.NotNil(t, summary.LastReading)
	assert.True(t, summary.FirstReading.Equal(now.Add(-3*time.Minute)))
	assert.True(t, summary.LastReading.Equal(now.Add(-time.Minute)))
}

func TestStats_ZeroAverageIsKept(t *testing.T) {
	svc, db := newReadingService(t)
	owner := uuid.New()
	farm := testutil.CreateFarm(t, db, owner)
	device := testutil.CreateDevice(t, db, farm.ID, "IOT-1", time.Now())
	testutil.CreateReading(t, db, device.ID, time.Now().Add(-time.Minute), testutil.Float(0))

	summary, err := svc.Stats(context.Background(), owner, device.ID, model.StatsQuery{HoursBack: 1})
	require.NoError(t, err)
	require.NotNil(t, summary.AvgTemperature)
	assert.Zero(t, *summary.AvgTemperature)
}

func TestStats_EmptyWindow(t *testing.T) {
	svc, db := newReadingService(t)
	owner := uuid.New()
	farm := testutil.CreateFarm(t, db, owner)
	device := testutil.CreateDevice(t, db, farm.ID, "IOT-1", time.Now())
	testutil.CreateReading(t, db, device.ID, time.Now().Add(-48*time.Hour), testutil.Float(10))

	summary, err := svc.Stats(context.Background(), owner, device.ID, model.StatsQuery{HoursBack: 24})
	require.NoError(t, err)
	assert.Zero(t, summary.ReadingsCount)
	assert.Nil(t, summary.FirstReading)
	assert.Nil(t, summary.LastReading)
	assert.Nil(t, summary.AvgTemperature)
	assert.Nil(t, summary.MinTemperature)
	assert.Nil(t, summary.MaxTemperature)
	assert.Nil(t, summary.AvgFeedRate)
}

func TestReadingListForFarm(t *testing.T) {
	svc, db := newReadingService(t)
	ctx := context.Background()
	owner := uuid.New()
	farm := testutil.CreateFarm(t, db, owner)
	bare := testutil.CreateFarm(t, db, owner)
	d1 := testutil.CreateDevice(t, db, farm.ID, "a", time.Now())
	d2 := testutil.CreateDevice(t, db, farm.ID, "b", time.Now())
	testutil.CreateReading(t, db, d1.ID, time.Now().Add(-time.Minute), nil)
	testutil.CreateReading(t, db, d2.ID, time.Now(), nil)

	readings, err := svc.ListForFarm(ctx, owner, farm.ID, model.ReadingsQuery{HoursBack: 24, Limit: 100})
	require.NoError(t, err)
	require.Len(t, readings, 2)
	assert.Equal(t, d2.ID, *readings[0].DeviceID)

	readings, err = svc.ListForFarm(ctx, owner, bare.ID, model.ReadingsQuery{HoursBack: 24, Limit: 100})
	require.NoError(t, err)
	assert.Empty(t, readings)

	_, err = svc.ListForFarm(ctx, uuid.New(), farm.ID, model.ReadingsQuery{HoursBack: 24, Limit: 100})
	assert.ErrorIs(t, err, ErrNotFound)
}
