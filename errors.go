package vecmem

import (
	"errors"
	"fmt"

	"github.com/weave-logic-ai/vecmem/segment"
	"github.com/weave-logic-ai/vecmem/witness"
)

var (
	// ErrNotFound is returned when a memory id is unknown.
	ErrNotFound = errors.New("vecmem: not found")

	// ErrClosed is returned by operations on a closed Store.
	ErrClosed = errors.New("vecmem: store closed")

	// ErrInvalidK is returned when k is not positive.
	ErrInvalidK = errors.New("vecmem: k must be positive")

	// ErrTampered is returned when a witness chain fails verification.
	ErrTampered = errors.New("vecmem: witness chain tampered")
)

// ErrDimensionMismatch indicates an embedding whose length differs from the
// store's dimension.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("vecmem: dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// ErrUnsupportedVersion indicates a segment file written by a newer format.
//
// The original underlying error can be accessed via errors.Unwrap.
type ErrUnsupportedVersion struct {
	Version uint32
	cause   error
}

func (e *ErrUnsupportedVersion) Error() string {
	return fmt.Sprintf("vecmem: unsupported segment file version %d", e.Version)
}

func (e *ErrUnsupportedVersion) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, witness.ErrTampered) {
		return fmt.Errorf("%w: %w", ErrTampered, err)
	}
	var uv *segment.UnsupportedVersionError
	if errors.As(err, &uv) {
		return &ErrUnsupportedVersion{Version: uv.Version, cause: err}
	}

	return err
}
