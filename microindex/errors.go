package microindex

import (
	"errors"
	"fmt"
)

// ErrCapacityExceeded is returned when inserting a new id into a full index.
var ErrCapacityExceeded = fmt.Errorf("microindex: capacity of %d nodes exceeded", MaxNodes)

// DimensionMismatchError is returned for vectors of the wrong length.
type DimensionMismatchError struct {
	Expected int
	Actual   int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("microindex: dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// NotFoundError is returned when deleting an unknown id.
type NotFoundError struct {
	ID uint32
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("microindex: node %d not found", e.ID)
}

// ErrNotFound is matched by every *NotFoundError.
var ErrNotFound = errors.New("microindex: not found")

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }
