package dynarray

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/go-kit/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendPreservesOrder(t *testing.T) {
	for _, capacity := range []int{0, 1, 3, 64} {
		t.Run(fmt.Sprintf("capacity-%d", capacity), func(t *testing.T) {
			a, err := New[int](capacity, 8)
			require.NoError(t, err)

			want := make([]int, 50)
			for i := range want {
				want[i] = i * 3
				require.NoError(t, a.Append(ptr(want[i])))
				assert.GreaterOrEqual(t, a.Cap(), a.Len())
			}
			for i, v := range want {
				require.NotNil(t, a.Get(i))
				assert.Equal(t, v, *a.Get(i))
			}
			assert.Equal(t, want, values(a))
		})
	}
}

func TestAppendInvalid(t *testing.T) {
	a, err := New[int](1, 8)
	require.NoError(t, err)

	require.ErrorIs(t, a.Append(nil), ErrInvalidArgument)

	p := ptr(1)
	require.NoError(t, a.Append(p))
	require.ErrorIs(t, a.Append(p), ErrInvalidArgument, "aliasing an owned element")
	require.ErrorIs(t, a.Insert(p, 0), ErrInvalidArgument, "aliasing an owned element")
	assert.Equal(t, 1, a.Len())

	// Once popped the pointer belongs to the caller again and can be stored.
	require.Same(t, p, a.Pop())
	require.NoError(t, a.Append(p))
}

func TestGet(t *testing.T) {
	a, err := New[int](4, 8)
	require.NoError(t, err)
	vals := ints(10, 20)
	for _, v := range vals {
		require.NoError(t, a.Append(v))
	}

	assert.Same(t, vals[0], a.Get(0))
	assert.Same(t, vals[1], a.Get(1))
	for _, i := range []int{-1, -100, 2, 3, 4} {
		assert.Nil(t, a.Get(i), "index %d", i)
		_, err := a.At(i)
		assert.ErrorIs(t, err, ErrOutOfRange, "index %d", i)
	}

	p, err := a.At(1)
	require.NoError(t, err)
	assert.Same(t, vals[1], p)
	assert.Equal(t, 2, a.Len(), "Get does not transfer ownership")
}

func TestPopIsLIFO(t *testing.T) {
	a, err := New[int](0, 8)
	require.NoError(t, err)
	vals := ints(1, 2, 3, 4, 5)
	for _, v := range vals {
		require.NoError(t, a.Append(v))
	}

	for i := len(vals) - 1; i >= 0; i-- {
		p := a.Pop()
		require.Same(t, vals[i], p)
		assert.Equal(t, i, a.Len())
		assert.Nil(t, a.data[i], "popped slot is cleared")
	}
	assert.Nil(t, a.Pop())

	_, err = a.TryPop()
	require.ErrorIs(t, err, ErrOutOfRange)
}

func TestPopDoesNotRelease(t *testing.T) {
	released := map[*int]int{}
	a, err := New[int](2, 8, WithReleaser(countReleases(released)))
	require.NoError(t, err)
	require.NoError(t, a.Append(ptr(1)))

	p := a.Pop()
	require.NotNil(t, p)
	require.NoError(t, a.Destroy())
	assert.Empty(t, released)
}

func TestInsertPreservesOrder(t *testing.T) {
	tests := []struct {
		name  string
		index int
	}{
		{"front", 0},
		{"middle", 3},
		{"last occupied", 5},
		{"end", 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Capacity equal to count forces a resize on insert.
			a, err := New[int](6, 8)
			require.NoError(t, err)
			orig := []int{0, 1, 2, 3, 4, 5}
			for _, v := range orig {
				require.NoError(t, a.Append(ptr(v)))
			}

			x := ptr(99)
			require.NoError(t, a.Insert(x, tt.index))
			require.Equal(t, 7, a.Len())
			assert.GreaterOrEqual(t, a.Cap(), 7)

			got := values(a)
			assert.Equal(t, orig[:tt.index], got[:tt.index])
			assert.Same(t, x, a.Get(tt.index))
			assert.Equal(t, orig[tt.index:], got[tt.index+1:])
		})
	}
}

func TestInsertInvalid(t *testing.T) {
	var buf bytes.Buffer
	a, err := New[int](4, 8, WithLogger(log.NewLogfmtLogger(&buf)))
	require.NoError(t, err)
	require.NoError(t, a.Append(ptr(1)))

	require.ErrorIs(t, a.Insert(nil, 0), ErrInvalidArgument)
	require.ErrorIs(t, a.Insert(ptr(2), 2), ErrOutOfRange)
	require.ErrorIs(t, a.Insert(ptr(2), -1), ErrOutOfRange)
	assert.Equal(t, []int{1}, values(a))
	assert.Contains(t, buf.String(), "level=error")
	assert.Contains(t, buf.String(), "op=insert")
}

func TestInsertIntoEmpty(t *testing.T) {
	a, err := New[int](0, 8)
	require.NoError(t, err)

	require.NoError(t, a.Insert(ptr(3), 0))
	require.NoError(t, a.Insert(ptr(1), 0))
	require.NoError(t, a.Insert(ptr(2), 1))
	assert.Equal(t, []int{1, 2, 3}, values(a))
}

func TestRemovePreservesOrder(t *testing.T) {
	orig := []int{0, 1, 2, 3, 4, 5}
	for k := range orig {
		t.Run(fmt.Sprintf("index-%d", k), func(t *testing.T) {
			released := map[*int]int{}
			a, err := New[int](len(orig), 8, WithReleaser(countReleases(released)))
			require.NoError(t, err)
			ptrs := make([]*int, len(orig))
			for i, v := range orig {
				ptrs[i] = ptr(v)
				require.NoError(t, a.Append(ptrs[i]))
			}

			require.NoError(t, a.Remove(k))
			require.Equal(t, len(orig)-1, a.Len())

			got := values(a)
			assert.Equal(t, orig[:k], got[:k])
			assert.Equal(t, orig[k+1:], got[k:])
			assert.Nil(t, a.data[a.Len()], "vacated slot is cleared")
			assert.Equal(t, map[*int]int{ptrs[k]: 1}, released)
		})
	}
}

func TestRemoveInvalid(t *testing.T) {
	var buf bytes.Buffer
	a, err := New[int](4, 8, WithLogger(log.NewLogfmtLogger(&buf)))
	require.NoError(t, err)

	require.ErrorIs(t, a.Remove(0), ErrOutOfRange)
	require.NoError(t, a.Append(ptr(1)))
	require.ErrorIs(t, a.Remove(1), ErrOutOfRange)
	require.ErrorIs(t, a.Remove(-1), ErrOutOfRange)
	assert.Equal(t, 1, a.Len())
	assert.Contains(t, buf.String(), "op=remove")
}

func TestNoDoubleRelease(t *testing.T) {
	released := map[*int]int{}
	a, err := New[int](0, 8, WithReleaser(countReleases(released)))
	require.NoError(t, err)

	var all []*int
	var popped []*int
	for i := 0; i < 40; i++ {
		p := ptr(i)
		all = append(all, p)
		if i%3 == 0 {
			require.NoError(t, a.Insert(p, a.Len()/2))
		} else {
			require.NoError(t, a.Append(p))
		}
		if i%7 == 6 {
			require.NoError(t, a.Remove(0))
		}
		if i%11 == 10 {
			popped = append(popped, a.Pop())
		}
	}
	require.NoError(t, a.EnsureCapacity(200))
	require.NoError(t, a.Destroy())

	isPopped := map[*int]bool{}
	for _, p := range popped {
		isPopped[p] = true
	}
	for _, p := range all {
		if isPopped[p] {
			assert.Zero(t, released[p])
			continue
		}
		assert.Equal(t, 1, released[p], "element %d", *p)
	}
}

type resource struct {
	id       int
	released int
}

func (r *resource) Release() { r.released++ }

func TestDefaultReleaserCallsRelease(t *testing.T) {
	a, err := NewOf[resource](2)
	require.NoError(t, err)
	r1, r2, r3 := &resource{id: 1}, &resource{id: 2}, &resource{id: 3}
	require.NoError(t, a.Append(r1))
	require.NoError(t, a.Append(r2))
	require.NoError(t, a.Append(r3))

	require.NoError(t, a.Remove(1))
	assert.Equal(t, 1, r2.released)

	require.Same(t, r3, a.Pop())
	require.NoError(t, a.Clear())
	assert.Equal(t, 1, r1.released)
	assert.Equal(t, 1, r2.released)
	assert.Zero(t, r3.released)
}

func TestConcreteScenario(t *testing.T) {
	a, err := New[int](10, 4)
	require.NoError(t, err)
	for _, v := range []int{5, 3, 9, 1, 7, 2, 8, 0, 6, 4} {
		require.NoError(t, a.Append(ptr(v)))
	}
	assert.Equal(t, 10, a.Cap())

	require.Equal(t, 1, *a.Get(3))
	require.NoError(t, a.Remove(3))
	assert.Equal(t, 9, a.Len())
	assert.Equal(t, 7, *a.Get(3))

	p := a.Pop()
	require.NotNil(t, p)
	assert.Equal(t, 4, *p)
	assert.Equal(t, 8, a.Len())
}

func TestResizeScenario(t *testing.T) {
	a, err := New[int](2, 4)
	require.NoError(t, err)
	for _, v := range []int{1, 2, 3} {
		require.NoError(t, a.Append(ptr(v)))
	}
	assert.GreaterOrEqual(t, a.Cap(), 3)
	assert.Equal(t, []int{1, 2, 3}, values(a))
}

func TestAppendAllocationFailure(t *testing.T) {
	// Room for 2 slots, then 4 while the 2 are still held, but not 8 after that.
	b := NewBudgetAllocator(8 * uint64(SlotSize))
	a, err := New[int](2, 8, WithAllocator(b))
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		require.NoError(t, a.Append(ptr(i)))
	}
	require.Equal(t, 4, a.Cap())

	err = a.Append(ptr(4))
	require.ErrorIs(t, err, ErrAllocation)
	err = a.Insert(ptr(4), 0)
	require.ErrorIs(t, err, ErrAllocation)

	assert.Equal(t, 4, a.Cap())
	assert.Equal(t, []int{0, 1, 2, 3}, values(a))
	assert.Equal(t, 4*uint64(SlotSize), b.SizeInUse())

	// The array stays usable after the failure.
	require.Equal(t, 3, *a.Pop())
	require.NoError(t, a.Append(ptr(9)))
	assert.Equal(t, []int{0, 1, 2, 9}, values(a))
}
