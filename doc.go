// Package dynarray implements a growable ordered container ("dynamic array")
// of owned element references.
//
// # Overview
//
// An Array stores one *T per slot in a contiguous buffer and grows that
// buffer on demand. Once an element has been appended or inserted the array
// owns it: the array releases it exactly once when it is removed, cleared or
// destroyed. Pop hands ownership back to the caller instead.
//
// # Basic Usage
//
//	a, err := dynarray.NewOf[Record](16) // 16 slots, element size from Record
//	if err != nil {
//		return err
//	}
//	defer a.Destroy() // releases every element still owned
//
//	_ = a.Append(&Record{ID: 1})
//	_ = a.Insert(&Record{ID: 0}, 0)
//
//	first := a.Get(0)   // read-only, ownership stays with the array
//	last := a.Pop()     // ownership moves back to the caller
//	_ = a.Remove(0)     // released by the array
//
// # Ownership
//
// Releasing an element calls the function given to WithReleaser, or the
// element's Release method when it has one. A pointer can be owned by an
// array only once; storing it a second time fails with ErrInvalidArgument.
//
// # Growth
//
//   - Append and Insert double the capacity when the buffer is full
//   - An empty buffer grows to the growth floor (1 unless WithGrowthFloor is set)
//   - Grow and EnsureCapacity grow by an exact amount
//   - The buffer never shrinks; Clear and Destroy drop it entirely
//
// Every reallocation is staged: the allocator is consulted and the new buffer
// filled before the old one is dropped, so a refused allocation returns
// ErrAllocation and leaves the array exactly as it was.
//
// # Thread Safety
//
// Array is not goroutine-safe. Callers must serialize access to a given array.
//
// # Performance Characteristics
//
//   - Append, Pop: O(1) amortized
//   - Insert, Remove: O(n) due to shifting
//   - Get: O(1)
//   - Clear, Destroy: O(n) to release the owned elements
//
// # Metrics and Monitoring
//
//	m := a.Metrics()
//	fmt.Printf("Utilization: %.2f%%\n", m.Utilization*100)
//	fmt.Printf("Reallocations: %d\n", m.Grows)
//
// Prometheus collectors are registered with WithRegisterer.
package dynarray
