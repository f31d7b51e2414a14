package metrics

import "sort"

// Provider constructs instruments used to record metrics.
// Implementations must be safe for concurrent use.
//
// Keep this interface minimal and stable. If you need new capabilities later,
// introduce separate optional interfaces rather than expanding this surface.
type Provider interface {
	Counter(name string, opts ...InstrumentOption) Counter
	UpDownCounter(name string, opts ...InstrumentOption) UpDownCounter
	Histogram(name string, opts ...InstrumentOption) Histogram
}

// Counter records monotonic counts.
// Methods must be safe for concurrent use.
type Counter interface {
	Add(n int64)
}

// UpDownCounter records values that can move up or down (e.g., current in-flight).
// Methods must be safe for concurrent use.
type UpDownCounter interface {
	Add(n int64)
	// Reset zeroes the gauge. A store closing its write path calls this
	// on its buffered-values gauge so the metric does not keep
	// reporting a stale in-flight count once no flush will ever happen
	// again.
	Reset()
}

// Histogram records distribution of float64 measurements (e.g., durations in seconds).
// Methods must be safe for concurrent use.
type Histogram interface {
	Record(v float64)
}

// InstrumentConfig carries optional instrument metadata.
// Description, Unit, and Attributes are advisory only. Buckets is not:
// an implementation that honors it (BasicHistogram does) counts
// observations per bucket, which Beam's reactor/store duration
// instruments read back to report SLO-style latency breakdowns rather
// than just a mean.
type InstrumentConfig struct {
	Description string
	Unit        string
	// Attributes are static key-value pairs associated with the instrument itself.
	// Keep cardinality bounded. Implementations may ignore attributes.
	Attributes map[string]string
	// Buckets are upper bounds, in ascending order, for a Histogram's
	// counting buckets. A final, implicit +Inf bucket always catches
	// anything above the last bound.
	Buckets []float64
}

// InstrumentOption mutates InstrumentConfig.
type InstrumentOption func(*InstrumentConfig)

// WithDescription sets an advisory description for the instrument.
func WithDescription(desc string) InstrumentOption {
	return func(c *InstrumentConfig) { c.Description = desc }
}

// WithUnit sets an advisory unit for the instrument (e.g., "1", "seconds").
func WithUnit(unit string) InstrumentOption {
	return func(c *InstrumentConfig) { c.Unit = unit }
}

// WithAttributes attaches static attributes to the instrument (bounded cardinality only).
func WithAttributes(attrs map[string]string) InstrumentOption {
	return func(c *InstrumentConfig) {
		if len(attrs) == 0 {
			return
		}
		// copy to avoid external mutation
		if c.Attributes == nil {
			c.Attributes = make(map[string]string, len(attrs))
		}
		for k, v := range attrs {
			c.Attributes[k] = v
		}
	}
}

// WithBuckets sets the upper bounds a Histogram counts observations
// into, e.g. latency SLO thresholds in seconds for a commit- or
// flush-duration instrument. Bounds need not be pre-sorted.
func WithBuckets(bounds ...float64) InstrumentOption {
	return func(c *InstrumentConfig) {
		c.Buckets = append([]float64(nil), bounds...)
		sort.Float64s(c.Buckets)
	}
}
