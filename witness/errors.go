package witness

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrTampered is matched by every verification failure.
var ErrTampered = errors.New("witness: chain verification failed")

// LinkBrokenError reports a segment whose previous hash does not match the
// hash of the segment before it.
type LinkBrokenError struct {
	Index     int
	SegmentID uuid.UUID
}

func (e *LinkBrokenError) Error() string {
	return fmt.Sprintf("witness: link broken at segment %d (%s)", e.Index, e.SegmentID)
}

func (e *LinkBrokenError) Unwrap() error { return ErrTampered }

// ChainCorruptedError reports a segment whose recorded hash does not match
// the hash recomputed from its contents.
type ChainCorruptedError struct {
	Index     int
	SegmentID uuid.UUID
}

func (e *ChainCorruptedError) Error() string {
	return fmt.Sprintf("witness: segment %d (%s) hash mismatch", e.Index, e.SegmentID)
}

func (e *ChainCorruptedError) Unwrap() error { return ErrTampered }

// IOError wraps a file system failure while persisting a chain.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string { return fmt.Sprintf("witness: io %s: %v", e.Path, e.Err) }
func (e *IOError) Unwrap() error { return e.Err }

// DecodeError wraps a failure to decode a persisted chain.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string { return fmt.Sprintf("witness: decode %s: %v", e.Path, e.Err) }
func (e *DecodeError) Unwrap() error { return e.Err }
