package segment

import "fmt"

// IOError wraps a file system failure.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string { return fmt.Sprintf("segment: io %s: %v", e.Path, e.Err) }
func (e *IOError) Unwrap() error { return e.Err }

// DecodeError wraps a failure to serialize or deserialize a segment file.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string { return fmt.Sprintf("segment: decode %s: %v", e.Path, e.Err) }
func (e *DecodeError) Unwrap() error { return e.Err }

// UnsupportedVersionError is returned for files written by a newer format.
type UnsupportedVersionError struct {
	Path      string
	Version   uint32
	Supported uint32
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("segment: %s has format version %d, newest supported is %d", e.Path, e.Version, e.Supported)
}

// WitnessInvalidError is returned when an embedded witness chain fails
// verification. Err is the witness verification error.
type WitnessInvalidError struct {
	Path string
	Err  error
}

func (e *WitnessInvalidError) Error() string {
	return fmt.Sprintf("segment: %s witness chain invalid: %v", e.Path, e.Err)
}

func (e *WitnessInvalidError) Unwrap() error { return e.Err }
