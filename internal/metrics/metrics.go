// Package metrics exposes Prometheus instrumentation for the receiver.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "sensor_receiver"

// Metrics groups the receiver collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	registry *prometheus.Registry

	captured     prometheus.Counter
	evicted      prometheus.Counter
	rejected     prometheus.Counter
	removed      prometheus.Counter
	dumped       prometheus.Counter
	packets      *prometheus.CounterVec
	decodeErrors prometheus.Counter
	occupied     prometheus.Gauge
	capacity     prometheus.Gauge
}

// New creates and registers the collectors on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		captured: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "snapshots_captured_total",
			Help: "Snapshots inserted into the buffer.",
		}),
		evicted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "snapshots_evicted_total",
			Help: "Oldest snapshots dropped to make room (drop-oldest policy).",
		}),
		rejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "snapshots_rejected_total",
			Help: "Snapshots rejected because the buffer was full (drop-newest policy).",
		}),
		removed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "snapshots_removed_total",
			Help: "Snapshots removed by a consumer.",
		}),
		dumped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "lines_dumped_total",
			Help: "Snapshot lines written to the sink.",
		}),
		packets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "packets_total",
			Help: "Decoded sensor packets by sensor id.",
		}, []string{"sensor"}),
		decodeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "decode_errors_total",
			Help: "Advertisements that could not be decoded.",
		}),
		occupied: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "buffer_occupied",
			Help: "Occupied buffer slots.",
		}),
		capacity: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "buffer_capacity",
			Help: "Total buffer slots.",
		}),
	}
	m.registry.MustRegister(
		m.captured, m.evicted, m.rejected, m.removed, m.dumped,
		m.packets, m.decodeErrors, m.occupied, m.capacity,
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) Captured() {
	if m != nil {
		m.captured.Inc()
	}
}

func (m *Metrics) Evicted() {
	if m != nil {
		m.evicted.Inc()
	}
}

func (m *Metrics) Rejected() {
	if m != nil {
		m.rejected.Inc()
	}
}

func (m *Metrics) Removed() {
	if m != nil {
		m.removed.Inc()
	}
}

func (m *Metrics) Dumped(n int) {
	if m != nil {
		m.dumped.Add(float64(n))
	}
}

func (m *Metrics) Packet(sensor string) {
	if m != nil {
		m.packets.WithLabelValues(sensor).Inc()
	}
}

func (m *Metrics) DecodeError() {
	if m != nil {
		m.decodeErrors.Inc()
	}
}

// Occupancy records the buffer fill level.
func (m *Metrics) Occupancy(occupied, capacity int) {
	if m != nil {
		m.occupied.Set(float64(occupied))
		m.capacity.Set(float64(capacity))
	}
}
