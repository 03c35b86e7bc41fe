package dynarray

import (
	"math"
	"unsafe"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
)

// SlotSize is the size of one slot: a single element reference.
const SlotSize = unsafe.Sizeof(uintptr(0))

// maxBufferBytes stays below the runtime's largest allocatable slice so that
// oversized requests surface as ErrAllocation instead of a makeslice panic.
const maxBufferBytes uint64 = 1 << 47

// Allocator decides whether a slot buffer may be allocated.
// Alloc must not record anything when it returns an error.
type Allocator interface {
	Alloc(slots int, slotSize uintptr) error
	Free(slots int, slotSize uintptr)
}

// HeapAllocator is the default allocation strategy. It only refuses
// requests whose byte size cannot be represented.
type HeapAllocator struct{}

func (HeapAllocator) Alloc(slots int, slotSize uintptr) error {
	_, err := bufferBytes(slots, slotSize)
	return err
}

func (HeapAllocator) Free(int, uintptr) {}

// BudgetAllocator caps the total number of bytes held by slot buffers.
// Not goroutine-safe.
type BudgetAllocator struct {
	budget    uint64
	inUse     uint64
	numAllocs int
}

// NewBudgetAllocator returns an allocator that refuses to hold more than
// maxBytes bytes of slot buffers at once.
func NewBudgetAllocator(maxBytes uint64) *BudgetAllocator {
	return &BudgetAllocator{budget: maxBytes}
}

func (b *BudgetAllocator) Alloc(slots int, slotSize uintptr) error {
	n, err := bufferBytes(slots, slotSize)
	if err != nil || n == 0 {
		return err
	}
	if n > b.budget-b.inUse {
		return errors.Wrapf(ErrAllocation, "requested %s with %s of %s in use",
			humanize.IBytes(n), humanize.IBytes(b.inUse), humanize.IBytes(b.budget))
	}
	b.inUse += n
	b.numAllocs++
	return nil
}

func (b *BudgetAllocator) Free(slots int, slotSize uintptr) {
	n, err := bufferBytes(slots, slotSize)
	if err != nil || n == 0 {
		return
	}
	if n > b.inUse {
		n = b.inUse
	}
	b.inUse -= n
	b.numAllocs--
}

// SizeInUse returns the number of bytes currently reserved.
func (b *BudgetAllocator) SizeInUse() uint64 {
	return b.inUse
}

// Budget returns the maximum number of bytes the allocator will hand out.
func (b *BudgetAllocator) Budget() uint64 {
	return b.budget
}

// NumAllocs returns the number of live slot buffers.
func (b *BudgetAllocator) NumAllocs() int {
	return b.numAllocs
}

// Utilization returns the ratio of bytes in use to the budget (0.0 to 1.0).
// Returns 0.0 if the budget is zero.
func (b *BudgetAllocator) Utilization() float64 {
	if b.budget == 0 {
		return 0
	}
	return float64(b.inUse) / float64(b.budget)
}

// Metrics returns a snapshot of allocator statistics.
func (b *BudgetAllocator) Metrics() AllocatorMetrics {
	return AllocatorMetrics{
		SizeInUse:   b.inUse,
		Budget:      b.budget,
		NumAllocs:   b.numAllocs,
		Utilization: b.Utilization(),
	}
}

// AllocatorMetrics contains statistical information about a BudgetAllocator.
type AllocatorMetrics struct {
	SizeInUse   uint64  // Bytes currently reserved
	Budget      uint64  // Maximum bytes
	NumAllocs   int     // Live slot buffers
	Utilization float64 // Ratio of used to budget (0.0-1.0)
}

// bufferBytes returns slots*slotSize, refusing sizes make could not satisfy.
func bufferBytes(slots int, slotSize uintptr) (uint64, error) {
	if slots < 0 {
		return 0, errors.Wrapf(ErrAllocation, "negative slot count %d", slots)
	}
	if slots == 0 || slotSize == 0 {
		return 0, nil
	}
	limit := min(uint64(math.MaxInt), maxBufferBytes)
	if uint64(slots) > limit/uint64(slotSize) {
		return 0, errors.Wrapf(ErrAllocation, "%d slots of %d bytes overflow", slots, slotSize)
	}
	return uint64(slots) * uint64(slotSize), nil
}
