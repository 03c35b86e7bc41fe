package dynarray

import (
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// Len returns the number of occupied slots.
func (a *Array[T]) Len() int {
	if a == nil {
		return 0
	}
	return a.count
}

// Cap returns the number of allocated slots.
func (a *Array[T]) Cap() int {
	if a == nil {
		return 0
	}
	return a.capacity
}

// ElementSize returns the declared element size in bytes.
func (a *Array[T]) ElementSize() uintptr {
	if a == nil {
		return 0
	}
	return a.elemSize
}

// Data returns the occupied slots [0, Len()). The slice aliases the array's
// buffer and is only valid until the next mutating call. Ownership of the
// elements stays with the array.
func (a *Array[T]) Data() []*T {
	if a == nil || a.data == nil {
		return nil
	}
	return a.data[:a.count:a.count]
}

// Destroyed reports whether Destroy has been called.
func (a *Array[T]) Destroyed() bool {
	return a != nil && a.destroyed
}

// Utilization returns the ratio of occupied to allocated slots (0.0 to 1.0).
// Returns 0.0 if nothing is allocated.
func (a *Array[T]) Utilization() float64 {
	if a.Cap() == 0 {
		return 0
	}
	return float64(a.count) / float64(a.capacity)
}

// Metrics returns a snapshot of array statistics.
func (a *Array[T]) Metrics() ArrayMetrics {
	m := ArrayMetrics{
		Len:         a.Len(),
		Cap:         a.Cap(),
		ElementSize: a.ElementSize(),
		Utilization: a.Utilization(),
	}
	if a != nil {
		m.Grows = a.grows
		m.Released = a.released
	}
	return m
}

// ArrayMetrics contains statistical information about an array.
type ArrayMetrics struct {
	Len         int     // Occupied slots
	Cap         int     // Allocated slots
	ElementSize uintptr // Declared element size
	Grows       int     // Successful reallocations
	Released    int     // Elements released by the array
	Utilization float64 // Ratio of occupied to allocated slots (0.0-1.0)
}

type metrics struct {
	grows              prometheus.Counter
	allocationFailures prometheus.Counter
	released           prometheus.Counter
	slots              prometheus.Gauge
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		grows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dynarray",
			Name:      "grow_total",
			Help:      "Total number of slot buffer reallocations.",
		}),
		allocationFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dynarray",
			Name:      "allocation_failures_total",
			Help:      "Total number of slot buffer requests refused by the allocator.",
		}),
		released: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dynarray",
			Name:      "elements_released_total",
			Help:      "Total number of owned elements released.",
		}),
		slots: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "dynarray",
			Name:      "slots",
			Help:      "Number of slots currently allocated.",
		}),
	}
	if reg != nil {
		m.grows = registerOrGet(reg, m.grows)
		m.allocationFailures = registerOrGet(reg, m.allocationFailures)
		m.released = registerOrGet(reg, m.released)
		m.slots = registerOrGet(reg, m.slots)
	}
	return m
}

// registerOrGet registers c, or returns the collector already registered
// under the same descriptor so several arrays can share one registry.
func registerOrGet[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	err := reg.Register(c)
	if err == nil {
		return c
	}
	var already prometheus.AlreadyRegisteredError
	if errors.As(err, &already) {
		if existing, ok := already.ExistingCollector.(C); ok {
			return existing
		}
	}
	panic(err)
}
