package tenantdb

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	lookupHit  = "hit"
	lookupMiss = "miss"

	outcomeOK       = "ok"
	outcomeTimeout  = "timeout"
	outcomeNotReady = "not_ready"
	outcomeError    = "error"
)

// Metrics exposes Prometheus metrics of the connection layer.
// A nil *Metrics records nothing.
type Metrics struct {
	lookups           *prometheus.CounterVec
	handshakes        *prometheus.CounterVec
	handshakeDuration prometheus.Histogram
	openConnections   prometheus.Gauge
	attachFailures    *prometheus.CounterVec
}

// NewMetrics creates the metrics and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		lookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tenantdb_registry_lookups_total",
				Help: "Connection registry lookups by result",
			},
			[]string{"result"},
		),
		handshakes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tenantdb_handshakes_total",
				Help: "Tenant connection handshakes by outcome",
			},
			[]string{"outcome"},
		),
		handshakeDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "tenantdb_handshake_duration_seconds",
				Help:    "Tenant connection handshake duration in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
		),
		openConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "tenantdb_open_connections",
				Help: "Tenant connection handles cached by the registry",
			},
		),
		attachFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tenantdb_schema_attach_failures_total",
				Help: "Schema attachment failures by entity",
			},
			[]string{"entity"},
		),
	}
}

func (m *Metrics) lookup(result string) {
	if m == nil {
		return
	}
	m.lookups.WithLabelValues(result).Inc()
}

func (m *Metrics) handshake(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.handshakes.WithLabelValues(outcome).Inc()
	m.handshakeDuration.Observe(d.Seconds())
}

func (m *Metrics) setOpen(n int) {
	if m == nil {
		return
	}
	m.openConnections.Set(float64(n))
}

func (m *Metrics) attachFailed(entity string) {
	if m == nil {
		return
	}
	m.attachFailures.WithLabelValues(entity).Inc()
}
