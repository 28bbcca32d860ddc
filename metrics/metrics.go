// Package metrics exposes Prometheus instrumentation for concatenation
// cycles. A Collector plugs into a pipeline as both its progress hook and an
// error reporter.
package metrics

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mrjoshuak/go-chancat/concat"
	"github.com/mrjoshuak/go-chancat/raster"
)

const namespace = "chancat"

// Collector counts copied pixels per worker, input errors by kind and cycle
// durations.
type Collector struct {
	pixels *prometheus.CounterVec
	errors *prometheus.CounterVec
	cycles prometheus.Histogram
}

// NewCollector creates a collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		pixels: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pixels_copied_total",
			Help:      "Pixels copied from one input into the output, by worker.",
		}, []string{"worker"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "input_errors_total",
			Help:      "Inputs skipped for a tile, by reason.",
		}, []string{"reason"}),
		cycles: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cycle_duration_seconds",
			Help:      "Wall time of complete update cycles.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
	}

	for _, col := range []prometheus.Collector{c.pixels, c.errors, c.cycles} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Advance implements concat.Progress.
func (c *Collector) Advance(workerID, pixels int) {
	c.pixels.WithLabelValues(strconv.Itoa(workerID)).Add(float64(pixels))
}

// Report counts err under its reason label.
func (c *Collector) Report(_ raster.Extent, _ int, err error) {
	c.errors.WithLabelValues(Reason(err)).Inc()
}

// ObserveCycle records the duration of one update cycle.
func (c *Collector) ObserveCycle(d time.Duration) {
	c.cycles.Observe(d.Seconds())
}

// Reason classifies a tile error for the reason label.
func Reason(err error) string {
	switch {
	case errors.Is(err, concat.ErrTypeMismatch):
		return "type_mismatch"
	case errors.Is(err, concat.ErrUnsupportedType):
		return "unsupported_type"
	case errors.Is(err, concat.ErrShapeMismatch):
		return "shape_mismatch"
	default:
		return "other"
	}
}

var _ concat.Progress = (*Collector)(nil)
