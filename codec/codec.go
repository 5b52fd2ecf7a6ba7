// Package codec centralizes the serialization of persisted memory files.
//
// Plain files (index snapshots, witness chains, segment files) are always
// JSON. A non-JSON codec can only be used inside the compressed envelope,
// which records the codec name so a reader can select the same codec again.
package codec

import "fmt"

// Codec encodes/decodes values.
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// ByName returns a built-in codec by its stable name.
func ByName(name string) (Codec, bool) {
	switch name {
	case "json":
		return JSON{}, true
	case "go-json":
		return GoJSON{}, true
	case "msgpack":
		return Msgpack{}, true
	default:
		return nil, false
	}
}

// IsJSON reports whether c produces plain JSON text.
func IsJSON(c Codec) bool {
	switch c.(type) {
	case JSON, GoJSON:
		return true
	default:
		return false
	}
}

// MustMarshal is a helper for tests.
func MustMarshal(c Codec, v any) []byte {
	if c == nil {
		c = Default
	}
	b, err := c.Marshal(v)
	if err != nil {
		panic(fmt.Errorf("codec %s marshal failed: %w", c.Name(), err))
	}
	return b
}
