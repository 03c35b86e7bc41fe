// Package dynarray implements a growable ordered container of owned element
// references. The array takes ownership of each element it stores and
// releases it exactly once when the element is removed, cleared or destroyed.
package dynarray

import (
	"math"
	"unsafe"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
)

// Array is a growable buffer of owned element references.
// Not goroutine-safe.
type Array[T any] struct {
	data      []*T // len(data) == capacity; slots [count, capacity) are nil
	capacity  int
	count     int
	elemSize  uintptr
	destroyed bool

	// owned indexes the live references to reject aliasing in O(1).
	owned map[*T]struct{}

	growthFloor int
	alloc       Allocator
	release     func(*T)
	logger      log.Logger
	metrics     *metrics

	grows    int
	released int
}

// New creates an array for elements of elemSize bytes with room for capacity
// elements. A zero capacity defers allocation to the first growth.
func New[T any](capacity int, elemSize uintptr, opts ...Option) (*Array[T], error) {
	if elemSize == 0 {
		return nil, invalidf("element size must be non-zero")
	}
	if capacity < 0 {
		return nil, invalidf("negative capacity %d", capacity)
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	release := releaseOwned[T]
	if o.releaser != nil {
		fn, ok := o.releaser.(func(*T))
		if !ok {
			return nil, invalidf("releaser %T does not match element type", o.releaser)
		}
		release = fn
	}

	a := &Array[T]{
		elemSize:    elemSize,
		growthFloor: o.growthFloor,
		alloc:       o.alloc,
		release:     release,
		logger:      log.With(o.logger, "component", "dynarray"),
		metrics:     newMetrics(o.reg),
	}
	if capacity > 0 {
		data, err := a.allocBuffer(capacity)
		if err != nil {
			return nil, a.fail("init", err)
		}
		a.data = data
		a.capacity = capacity
	}
	return a, nil
}

// NewOf is New with the element size taken from T.
// Zero-sized types are rejected.
func NewOf[T any](capacity int, opts ...Option) (*Array[T], error) {
	var zero T
	return New[T](capacity, unsafe.Sizeof(zero), opts...)
}

// Resize doubles the capacity. An array with no slots grows to the growth
// floor instead. On failure the buffer and its contents are left untouched.
func (a *Array[T]) Resize() error {
	if err := a.checkHandle("resize"); err != nil {
		return err
	}
	newCap := a.growthFloor
	if a.capacity > 0 {
		if a.capacity > math.MaxInt/2 {
			return a.fail("resize", errors.Wrapf(ErrAllocation, "doubling capacity %d overflows", a.capacity))
		}
		newCap = a.capacity * 2
	}
	if err := a.realloc(newCap); err != nil {
		return a.fail("resize", err)
	}
	return nil
}

// Grow adds additional slots to the buffer without changing Len.
func (a *Array[T]) Grow(additional int) error {
	if err := a.checkHandle("grow"); err != nil {
		return err
	}
	if additional <= 0 {
		return a.fail("grow", invalidf("additional slots must be positive, got %d", additional))
	}
	if additional > math.MaxInt-a.capacity {
		return a.fail("grow", errors.Wrapf(ErrAllocation, "capacity %d + %d overflows", a.capacity, additional))
	}
	if err := a.realloc(a.capacity + additional); err != nil {
		return a.fail("grow", err)
	}
	return nil
}

// EnsureCapacity grows the buffer so that Cap() >= minCapacity.
func (a *Array[T]) EnsureCapacity(minCapacity int) error {
	if err := a.checkHandle("ensure_capacity"); err != nil {
		return err
	}
	if a.elemSize == 0 {
		return a.fail("ensure_capacity", invalidf("cannot ensure capacity with zero element size"))
	}
	if a.capacity >= minCapacity {
		level.Debug(a.logger).Log("msg", "array already has sufficient capacity", "capacity", a.capacity, "min", minCapacity)
		return nil
	}

	oldCapacity := a.capacity
	if err := a.Grow(minCapacity - a.capacity); err != nil {
		level.Error(a.logger).Log("msg", "failed to ensure minimum capacity", "min", minCapacity, "err", err)
		return err
	}
	level.Info(a.logger).Log("msg", "array capacity increased", "old", oldCapacity, "new", a.capacity, "min", minCapacity)
	return nil
}

// Clear releases every owned element and the buffer. The array stays usable:
// it can be grown again or re-seeded with Reset. Clearing an empty array is a
// no-op.
func (a *Array[T]) Clear() error {
	if err := a.checkHandle("clear"); err != nil {
		return err
	}
	a.releaseAll()
	a.freeBuffer()
	a.elemSize = 0
	return nil
}

// Destroy releases every owned element and the buffer, and invalidates the
// array. Every later call fails with ErrInvalidArgument.
func (a *Array[T]) Destroy() error {
	if err := a.checkHandle("destroy"); err != nil {
		return err
	}
	a.releaseAll()
	a.freeBuffer()
	a.elemSize = 0
	a.owned = nil
	a.destroyed = true
	return nil
}

// Reset re-initializes the array as New would, releasing whatever it holds.
// The new buffer is allocated first; if that fails the array is unchanged.
func (a *Array[T]) Reset(capacity int, elemSize uintptr) error {
	if err := a.checkHandle("reset"); err != nil {
		return err
	}
	if elemSize == 0 {
		return a.fail("reset", invalidf("element size must be non-zero"))
	}
	if capacity < 0 {
		return a.fail("reset", invalidf("negative capacity %d", capacity))
	}

	var data []*T
	if capacity > 0 {
		var err error
		if data, err = a.allocBuffer(capacity); err != nil {
			return a.fail("reset", err)
		}
	}
	a.releaseAll()
	a.freeBuffer()
	a.data = data
	a.capacity = capacity
	a.elemSize = elemSize
	return nil
}

// realloc moves the occupied slots into a fresh buffer of newCap slots.
// The old buffer is only dropped once the new one exists.
func (a *Array[T]) realloc(newCap int) error {
	data, err := a.allocBuffer(newCap)
	if err != nil {
		return err
	}
	copy(data, a.data[:a.count])
	a.freeBuffer()
	a.data = data
	a.capacity = newCap
	a.grows++
	a.metrics.grows.Inc()
	return nil
}

func (a *Array[T]) allocBuffer(slots int) ([]*T, error) {
	if err := a.alloc.Alloc(slots, SlotSize); err != nil {
		a.metrics.allocationFailures.Inc()
		if !errors.Is(err, ErrAllocation) {
			err = errors.Wrapf(ErrAllocation, "%d slots: %v", slots, err)
		}
		return nil, err
	}
	a.metrics.slots.Add(float64(slots))
	return make([]*T, slots), nil
}

func (a *Array[T]) freeBuffer() {
	if a.capacity > 0 {
		a.alloc.Free(a.capacity, SlotSize)
		a.metrics.slots.Sub(float64(a.capacity))
	}
	a.data = nil
	a.capacity = 0
}

// releaseAll releases the occupied slots from the front and empties them.
func (a *Array[T]) releaseAll() {
	for i := 0; i < a.count; i++ {
		a.releaseElem(a.data[i])
		a.data[i] = nil
	}
	a.count = 0
	clear(a.owned)
}

func (a *Array[T]) releaseElem(elem *T) {
	a.release(elem)
	a.released++
	a.metrics.released.Inc()
}

func (a *Array[T]) checkHandle(op string) error {
	if a == nil {
		return invalidf("%s on nil array", op)
	}
	if a.destroyed {
		return a.fail(op, invalidf("use after Destroy()"))
	}
	return nil
}

// fail logs err at error level and returns it unchanged.
func (a *Array[T]) fail(op string, err error) error {
	level.Error(a.logger).Log("msg", "dynamic array operation failed", "op", op, "err", err)
	return err
}
