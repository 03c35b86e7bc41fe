package dynarray

import "github.com/go-kit/log/level"

// Append stores elem after the last occupied slot, doubling the buffer if it
// is full. On success the array owns elem.
func (a *Array[T]) Append(elem *T) error {
	if err := a.checkStore("append", elem); err != nil {
		return err
	}
	if a.count == a.capacity {
		if err := a.Resize(); err != nil {
			return err
		}
	}
	a.data[a.count] = elem
	a.count++
	a.own(elem)
	return nil
}

// Get returns the element at index without transferring ownership, or nil
// if index is outside [0, Len()).
func (a *Array[T]) Get(index int) *T {
	if a == nil || a.destroyed || index < 0 || index >= a.count {
		return nil
	}
	return a.data[index]
}

// At is Get with an error describing why no element was returned.
func (a *Array[T]) At(index int) (*T, error) {
	if err := a.checkHandle("at"); err != nil {
		return nil, err
	}
	if index < 0 || index >= a.count {
		return nil, outOfRangef("index %d with count %d", index, a.count)
	}
	return a.data[index], nil
}

// Pop removes the last element and hands its ownership back to the caller.
// Returns nil if the array is empty.
func (a *Array[T]) Pop() *T {
	elem, _ := a.TryPop()
	return elem
}

// TryPop is Pop with an error for an invalid or empty array.
func (a *Array[T]) TryPop() (*T, error) {
	if err := a.checkHandle("pop"); err != nil {
		return nil, err
	}
	if a.count == 0 {
		return nil, outOfRangef("pop from empty array")
	}
	a.count--
	elem := a.data[a.count]
	a.data[a.count] = nil
	delete(a.owned, elem)
	return elem, nil
}

// Insert stores elem at index, shifting the elements at [index, Len()) one
// slot to the right. index == Len() appends. On success the array owns elem.
func (a *Array[T]) Insert(elem *T, index int) error {
	if err := a.checkStore("insert", elem); err != nil {
		return err
	}
	if index < 0 || index > a.count {
		return a.fail("insert", outOfRangef("insert at index %d beyond count %d", index, a.count))
	}
	if a.count == a.capacity {
		level.Debug(a.logger).Log("msg", "array full, resizing before insert", "capacity", a.capacity, "index", index)
		if err := a.Resize(); err != nil {
			level.Error(a.logger).Log("msg", "failed to grow array for insert", "index", index, "err", err)
			return err
		}
	}
	// Shift from the high end so no slot is overwritten before it is moved.
	for i := a.count; i > index; i-- {
		a.data[i] = a.data[i-1]
	}
	a.data[index] = elem
	a.count++
	a.own(elem)
	return nil
}

// Remove releases the element at index and closes the gap by shifting
// (index, Len()) one slot to the left.
func (a *Array[T]) Remove(index int) error {
	if err := a.checkHandle("remove"); err != nil {
		return err
	}
	if index < 0 || index >= a.count {
		return a.fail("remove", outOfRangef("remove at index %d beyond count %d", index, a.count))
	}
	elem := a.data[index]
	copy(a.data[index:a.count-1], a.data[index+1:a.count])
	a.count--
	a.data[a.count] = nil
	delete(a.owned, elem)
	a.releaseElem(elem)
	level.Debug(a.logger).Log("msg", "element removed", "index", index, "count", a.count)
	return nil
}

// checkStore validates an element about to be taken into ownership.
func (a *Array[T]) checkStore(op string, elem *T) error {
	if err := a.checkHandle(op); err != nil {
		return err
	}
	if elem == nil {
		return a.fail(op, invalidf("nil element"))
	}
	if a.elemSize == 0 {
		return a.fail(op, invalidf("zero element size"))
	}
	if _, ok := a.owned[elem]; ok {
		return a.fail(op, invalidf("element %p is already owned by the array", elem))
	}
	return nil
}

func (a *Array[T]) own(elem *T) {
	if a.owned == nil {
		a.owned = make(map[*T]struct{}, a.capacity)
	}
	a.owned[elem] = struct{}{}
}
