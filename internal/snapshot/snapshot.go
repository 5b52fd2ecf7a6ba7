// Package snapshot encodes and decodes persisted memory files.
//
// Without compression and with a JSON codec the output is plain JSON, which
// is the documented on-disk format. Any other combination is written inside
// an envelope that records the codec name. Decode accepts both forms.
package snapshot

import (
	"fmt"

	"github.com/weave-logic-ai/vecmem/codec"
	"github.com/weave-logic-ai/vecmem/internal/envelope"
)

// Options controls how a file is encoded.
type Options struct {
	Codec       codec.Codec
	Compression envelope.Compression
}

// Encode serializes v according to opts.
func Encode(v any, opts Options) ([]byte, error) {
	c := opts.Codec
	if c == nil {
		c = codec.Default
	}
	payload, err := c.Marshal(v)
	if err != nil {
		return nil, err
	}
	if opts.Compression == envelope.CompressionNone && codec.IsJSON(c) {
		return payload, nil
	}
	return envelope.Wrap(payload, c.Name(), opts.Compression)
}

// Decode deserializes data produced by Encode (or any plain JSON document)
// into v.
func Decode(data []byte, v any) error {
	if !envelope.IsWrapped(data) {
		return codec.Default.Unmarshal(data, v)
	}
	payload, name, err := envelope.Unwrap(data)
	if err != nil {
		return err
	}
	c, ok := codec.ByName(name)
	if !ok {
		return fmt.Errorf("snapshot: unknown codec %q", name)
	}
	return c.Unmarshal(payload, v)
}
