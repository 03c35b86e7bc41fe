package dynarray

import "github.com/pkg/errors"

var (
	// ErrInvalidArgument is returned for a nil or destroyed array, a nil or
	// already stored element, a zero element size or a non-positive growth amount.
	ErrInvalidArgument = errors.New("dynarray: invalid argument")

	// ErrOutOfRange is returned when an index falls outside the occupied slots.
	ErrOutOfRange = errors.New("dynarray: index out of range")

	// ErrAllocation is returned when the allocator refuses a slot buffer.
	// The array is left exactly as it was before the failed call.
	ErrAllocation = errors.New("dynarray: allocation failed")
)

func invalidf(format string, args ...any) error {
	return errors.Wrapf(ErrInvalidArgument, format, args...)
}

func outOfRangef(format string, args ...any) error {
	return errors.Wrapf(ErrOutOfRange, format, args...)
}
