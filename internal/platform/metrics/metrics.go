package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds process-wide HTTP and startup metrics.
type Metrics struct {
	RequestDuration  *prometheus.HistogramVec
	BlacklistEntries prometheus.Gauge
}

// New creates and registers the platform metrics with reg. A nil reg uses
// the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "invoiceguard_http_request_duration_seconds",
			Help:    "HTTP request latency by route, method and status",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"route", "method", "status"}),
		BlacklistEntries: f.NewGauge(prometheus.GaugeOpts{
			Name: "invoiceguard_blacklist_entries",
			Help: "Number of IBANs in the active blacklist",
		}),
	}
}

// ObserveRequest records one served request.
func (m *Metrics) ObserveRequest(route, method string, status int, start time.Time) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.RequestDuration.WithLabelValues(route, method, strconv.Itoa(status)).Observe(time.Since(start).Seconds())
}

// SetBlacklistEntries publishes the blacklist size.
func (m *Metrics) SetBlacklistEntries(n int) {
	if m == nil {
		return
	}
	m.BlacklistEntries.Set(float64(n))
}
