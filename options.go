package dynarray

import (
	"github.com/go-kit/log"
	"github.com/prometheus/client_golang/prometheus"
)

// DefaultGrowthFloor is the capacity Resize grows an empty buffer to.
const DefaultGrowthFloor = 1

// Option configures an Array at construction time.
type Option func(*options)

type options struct {
	logger      log.Logger
	alloc       Allocator
	releaser    any
	growthFloor int
	reg         prometheus.Registerer
}

func defaultOptions() options {
	return options{
		logger:      log.NewNopLogger(),
		alloc:       HeapAllocator{},
		growthFloor: DefaultGrowthFloor,
	}
}

// WithLogger sets the logger used to report capacity changes and failed
// operations. Logging never changes the outcome of an operation.
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithAllocator sets the allocator consulted before every slot buffer
// allocation.
func WithAllocator(alloc Allocator) Option {
	return func(o *options) {
		if alloc != nil {
			o.alloc = alloc
		}
	}
}

// WithReleaser sets the function called exactly once for every owned element
// the array gives up: on Remove, Clear, Destroy and Reset, but never on Pop.
// The element type must match the array's; New fails otherwise.
func WithReleaser[T any](release func(*T)) Option {
	return func(o *options) {
		if release != nil {
			o.releaser = release
		}
	}
}

// WithGrowthFloor sets the capacity Resize grows to when nothing is
// allocated yet. Values below 1 are ignored.
func WithGrowthFloor(n int) Option {
	return func(o *options) {
		if n >= 1 {
			o.growthFloor = n
		}
	}
}

// WithRegisterer registers the array's Prometheus collectors on reg.
// Arrays sharing a registerer share the collectors.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) {
		o.reg = reg
	}
}

// releaseOwned calls Release on elements that provide it.
func releaseOwned[T any](elem *T) {
	if r, ok := any(elem).(interface{ Release() }); ok {
		r.Release()
	}
}
