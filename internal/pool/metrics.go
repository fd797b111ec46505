package pool

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for a Pool. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	AcquireTotal    *prometheus.CounterVec
	AcquireDuration prometheus.Histogram
	Leased          prometheus.Gauge
	MaxConns        prometheus.Gauge
}

// NewMetrics registers the pool collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		AcquireTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cafeteria_pool_acquire_total",
				Help: "Connection acquisitions by outcome",
			},
			[]string{"status"},
		),
		AcquireDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "cafeteria_pool_acquire_duration_seconds",
				Help:    "Time spent waiting for a connection",
				Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 5},
			},
		),
		Leased: f.NewGauge(prometheus.GaugeOpts{
			Name: "cafeteria_pool_leased_connections",
			Help: "Connections currently leased to requests",
		}),
		MaxConns: f.NewGauge(prometheus.GaugeOpts{
			Name: "cafeteria_pool_max_connections",
			Help: "Configured maximum number of leased connections",
		}),
	}
}

func (m *Metrics) observeAcquire(status string, started time.Time) {
	if m == nil {
		return
	}
	m.AcquireTotal.WithLabelValues(status).Inc()
	m.AcquireDuration.Observe(time.Since(started).Seconds())
}

func (m *Metrics) leased(delta float64) {
	if m == nil {
		return
	}
	m.Leased.Add(delta)
}

func (m *Metrics) setMaxConns(n int32) {
	if m == nil {
		return
	}
	m.MaxConns.Set(float64(n))
}
