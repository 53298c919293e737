// Package telemetry carries the pipeline's observability: Prometheus
// counters for the item flow, a heap sampler, and the per-role timeline
// files used to compare runs.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics holds the pipeline counters. All fields are registered on the
// registry returned by NewRegistry and safe for concurrent use.
type Metrics struct {
	ItemsSent     prometheus.Counter
	ItemsReceived prometheus.Counter
	ItemsAppended prometheus.Counter
	BytesSent     prometheus.Counter
	CorruptFrames prometheus.Counter
	HeapBytes     prometheus.Gauge
}

// NewMetrics creates unregistered pipeline metrics labelled with the role.
func NewMetrics(role string) *Metrics {
	labels := prometheus.Labels{"role": role}
	return &Metrics{
		ItemsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "transpipe",
			Name:        "items_sent_total",
			Help:        "Items published to the message fabric.",
			ConstLabels: labels,
		}),
		ItemsReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "transpipe",
			Name:        "items_received_total",
			Help:        "Data items taken off the message fabric.",
			ConstLabels: labels,
		}),
		ItemsAppended: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "transpipe",
			Name:        "items_appended_total",
			Help:        "Frames appended to durable queue files.",
			ConstLabels: labels,
		}),
		BytesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "transpipe",
			Name:        "bytes_sent_total",
			Help:        "Payload bytes published, markers excluded.",
			ConstLabels: labels,
		}),
		CorruptFrames: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "transpipe",
			Name:        "corrupt_frames_total",
			Help:        "Frames rejected while reading queue files.",
			ConstLabels: labels,
		}),
		HeapBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "transpipe",
			Name:        "heap_alloc_bytes",
			Help:        "Heap bytes in use, sampled periodically.",
			ConstLabels: labels,
		}),
	}
}

// NewRegistry builds a registry with the pipeline metrics plus the Go
// runtime and process collectors.
func NewRegistry(m *Metrics) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		m.ItemsSent,
		m.ItemsReceived,
		m.ItemsAppended,
		m.BytesSent,
		m.CorruptFrames,
		m.HeapBytes,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}
