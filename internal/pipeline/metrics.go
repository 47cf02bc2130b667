package pipeline

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the process-wide run counters. Updates are independent
// atomic adds; totals are exact once the run has finished but no consistency
// between counters is implied while it is running.
type Metrics struct {
	lines    atomic.Uint64
	variants atomic.Uint64
	invalid  atomic.Uint64
	bytes    atomic.Uint64
}

// MetricsSnapshot is a point-in-time copy of Metrics
type MetricsSnapshot struct {
	Lines    uint64 `json:"lines"`
	Variants uint64 `json:"variants"`
	Invalid  uint64 `json:"invalid"`
	Bytes    uint64 `json:"bytes_written"`
}

// NewMetrics creates zeroed counters
func NewMetrics() *Metrics {
	return &Metrics{}
}

// RecordLine counts a processed input line
func (m *Metrics) RecordLine() { m.lines.Add(1) }

// RecordVariant counts an emitted output string
func (m *Metrics) RecordVariant() { m.variants.Add(1) }

// RecordInvalid counts a line skipped for invalid UTF-8
func (m *Metrics) RecordInvalid() { m.invalid.Add(1) }

// RecordBytes counts bytes written to the sink
func (m *Metrics) RecordBytes(n uint64) { m.bytes.Add(n) }

// Snapshot returns the current counter values
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		Lines:    m.lines.Load(),
		Variants: m.variants.Load(),
		Invalid:  m.invalid.Load(),
		Bytes:    m.bytes.Load(),
	}
}

// Register exposes the counters on reg as Prometheus counters read at
// scrape time.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: "wordsmith",
			Name:      "lines_total",
			Help:      "Input lines processed",
		}, func() float64 { return float64(m.lines.Load()) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: "wordsmith",
			Name:      "variants_total",
			Help:      "Output strings produced",
		}, func() float64 { return float64(m.variants.Load()) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: "wordsmith",
			Name:      "invalid_lines_total",
			Help:      "Input lines skipped for invalid UTF-8",
		}, func() float64 { return float64(m.invalid.Load()) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: "wordsmith",
			Name:      "bytes_written_total",
			Help:      "Bytes written to the output sink",
		}, func() float64 { return float64(m.bytes.Load()) }),
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}
