package service

import (
	"context"
	"fmt"
	"time"

	"github.com/quocanhngo/farmiot/internal/model"
	"github.com/quocanhngo/farmiot/internal/repository"
	"github.com/quocanhngo/farmiot/pkg/metrics"
	"github.com/sirupsen/logrus"
)

// LivenessService marks devices offline once they stop reporting
type LivenessService struct {
	store   repository.Repositories
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewLivenessService(store repository.Repositories, m *metrics.Metrics) *LivenessService {
	return &LivenessService{
		store:   store,
		metrics: m,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Sweep flips every online device not seen within timeout to offline.
// Running it twice in a row changes nothing the second time.
func (s *LivenessService) Sweep(ctx context.Context, timeout time.Duration, trigger string) (*model.CheckOfflineResponse, error) {
	if timeout <= 0 {
		return nil, invalid("timeout must be positive")
	}

	started := time.Now()
	cutoff := s.now().Add(-timeout)

	var marked int64
	err := s.store.Transaction(ctx, func(tx repository.Repositories) error {
		var err error
		marked, err = tx.Devices().MarkStaleOffline(ctx, cutoff)
		return err
	})
	s.metrics.ObserveSweep(time.Since(started))
	if err != nil {
		return nil, err
	}

	s.metrics.DevicesMarkedOffline(trigger, marked)
	if marked > 0 {
		logrus.WithFields(logrus.Fields{
			"marked_offline": marked,
			"cutoff":         cutoff,
			"trigger":        trigger,
		}).Info("Devices marked offline")
	}

	return &model.CheckOfflineResponse{
		MarkedOffline: marked,
		Message:       fmt.Sprintf("Marked %d devices as offline", marked),
	}, nil
}
