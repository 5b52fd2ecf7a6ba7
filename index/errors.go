package index

import "fmt"

// IOError wraps a file system failure during Save or Load.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string { return fmt.Sprintf("index: io %s: %v", e.Path, e.Err) }
func (e *IOError) Unwrap() error { return e.Err }

// DecodeError wraps a serialization failure during Save or Load.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string { return fmt.Sprintf("index: decode %s: %v", e.Path, e.Err) }
func (e *DecodeError) Unwrap() error { return e.Err }
