// Package metrics holds the Prometheus collectors exported on /metrics.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "farmiot"

// Sweep triggers
const (
	TriggerManual    = "manual"
	TriggerScheduled = "scheduled"
)

type Metrics struct {
	readingsIngested prometheus.Counter
	markedOffline    *prometheus.CounterVec
	sweepDuration    prometheus.Histogram
	httpRequests     *prometheus.CounterVec
}

// New creates the collectors and registers them with reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		readingsIngested: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "readings_ingested_total",
			Help:      "Sensor readings stored.",
		}),
		markedOffline: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "devices_marked_offline_total",
			Help:      "Devices flipped offline by liveness sweeps.",
		}, []string{"trigger"}),
		sweepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "liveness_sweep_duration_seconds",
			Help:      "Duration of liveness sweeps.",
			Buckets:   prometheus.DefBuckets,
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served.",
		}, []string{"method", "route", "status"}),
	}

	reg.MustRegister(m.readingsIngested, m.markedOffline, m.sweepDuration, m.httpRequests)
	return m
}

func (m *Metrics) ReadingIngested() {
	if m == nil {
		return
	}
	m.readingsIngested.Inc()
}

func (m *Metrics) DevicesMarkedOffline(trigger string, n int64) {
	if m == nil {
		return
	}
	m.markedOffline.WithLabelValues(trigger).Add(float64(n))
}

func (m *Metrics) ObserveSweep(d time.Duration) {
	if m == nil {
		return
	}
	m.sweepDuration.Observe(d.Seconds())
}

func (m *Metrics) HTTPRequest(method, route, status string) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, status).Inc()
}
