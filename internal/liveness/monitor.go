// Package liveness runs the recurring offline sweep.
package liveness

import (
	"context"
	"time"

	"github.com/quocanhngo/farmiot/internal/model"
	"github.com/quocanhngo/farmiot/pkg/metrics"
	"github.com/sirupsen/logrus"
)

const lockKey = "farmiot:liveness-sweep"

// Sweeper marks stale devices offline
type Sweeper interface {
	Sweep(ctx context.Context, timeout time.Duration, trigger string) (*model.CheckOfflineResponse, error)
}

// Locker elects the single replica that sweeps on a given tick
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// Monitor sweeps on a fixed interval. With replicas sharing one Redis, the
// lock keeps it to one sweep per tick across the fleet.
type Monitor struct {
	sweeper  Sweeper
	locker   Locker
	interval time.Duration
	timeout  time.Duration
	lockTTL  time.Duration
}

func NewMonitor(sweeper Sweeper, locker Locker, interval, timeout, lockTTL time.Duration) *Monitor {
	return &Monitor{
		sweeper:  sweeper,
		locker:   locker,
		interval: interval,
		timeout:  timeout,
		lockTTL:  lockTTL,
	}
}

// Run blocks until ctx is cancelled
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	logrus.WithFields(logrus.Fields{
		"interval": m.interval.String(),
		"timeout":  m.timeout.String(),
	}).Info("Liveness monitor started")

	for {
		select {
		case <-ctx.Done():
			logrus.Info("Liveness monitor stopped")
			return
		case <-ticker.C:
			m.tick(ctx)
		}
	}
}

func (m *Monitor) tick(ctx context.Context) {
	if m.locker != nil {
		acquired, err := m.locker.TryLock(ctx, lockKey, m.lockTTL)
		if err != nil {
			logrus.WithError(err).Warn("Liveness lock unavailable, skipping sweep")
			return
		}
		if !acquired {
			logrus.Debug("Another instance holds the liveness lock")
			return
		}
	}

	if _, err := m.sweeper.Sweep(ctx, m.timeout, metrics.TriggerScheduled); err != nil {
		logrus.WithError(err).Error("Liveness sweep failed")
	}
}
