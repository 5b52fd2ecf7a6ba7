package quantization

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync/atomic"

	"github.com/weave-logic-ai/vecmem/internal/f16"
)

var logger atomic.Pointer[slog.Logger]

func init() {
	logger.Store(slog.New(slog.DiscardHandler))
}

// SetLogger sets the logger used to report lossy decompression.
// A nil logger restores the discard logger.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	logger.Store(l)
}

// Vector is a compressed storage representation.
// The concrete types are HotVector, WarmVector and ColdVector.
type Vector interface {
	// Tier reports the representation's temperature.
	Tier() Temperature
	// Dimension returns the number of components of the original vector.
	Dimension() int
	// Decompress reconstructs a full-precision vector.
	Decompress(cb *Codebook) []float32
	// Bytes returns the payload size in bytes.
	Bytes() int

	json.Marshaler
	sealed()
}

var (
	_ Vector = HotVector{}
	_ Vector = WarmVector{}
	_ Vector = ColdVector{}
)

// HotVector holds the vector verbatim.
type HotVector struct {
	Values []float32
}

func (HotVector) sealed()           {}
func (HotVector) Tier() Temperature { return Hot }
func (v HotVector) Dimension() int  { return len(v.Values) }
func (v HotVector) Bytes() int      { return 4 * len(v.Values) }

func (v HotVector) Decompress(*Codebook) []float32 {
	return slices.Clone(v.Values)
}

// WarmVector holds binary16 components.
type WarmVector struct {
	Values []f16.Bits
}

func (WarmVector) sealed()           {}
func (WarmVector) Tier() Temperature { return Warm }
func (v WarmVector) Dimension() int  { return len(v.Values) }
func (v WarmVector) Bytes() int      { return 2 * len(v.Values) }

func (v WarmVector) Decompress(*Codebook) []float32 {
	out := make([]float32, len(v.Values))
	f16.Decode(out, v.Values)
	return out
}

// ColdVector holds product-quantization codes and the original dimension.
type ColdVector struct {
	Codes []byte
	Dim   int

	// codebook is the dictionary the codes were produced with. It is not
	// serialized; a decoded ColdVector needs the codebook passed explicitly.
	codebook *Codebook
}

func (ColdVector) sealed()           {}
func (ColdVector) Tier() Temperature { return Cold }
func (v ColdVector) Dimension() int  { return v.Dim }
func (v ColdVector) Bytes() int      { return len(v.Codes) }

// Codebook returns the codebook the vector was encoded with, if known.
func (v ColdVector) Codebook() *Codebook { return v.codebook }

// Decompress decodes with cb, falling back to the encoding codebook. With
// neither available it returns a zero vector of the original dimension and
// logs a warning.
func (v ColdVector) Decompress(cb *Codebook) []float32 {
	if cb == nil {
		cb = v.codebook
	}
	if cb == nil {
		logger.Load().Warn("cold vector decompressed without codebook, returning zero vector",
			"dimension", v.Dim)
		return make([]float32, v.Dim)
	}
	return cb.Decode(v.Codes, v.Dim)
}

// Compress converts v into the representation for tier.
// Cold without a codebook degrades to Warm.
func Compress(v []float32, tier Temperature, cb *Codebook) Vector {
	switch tier {
	case Warm:
		return compressWarm(v)
	case Cold:
		if cb == nil {
			return compressWarm(v)
		}
		return ColdVector{Codes: cb.Encode(v), Dim: len(v), codebook: cb}
	default:
		return HotVector{Values: slices.Clone(v)}
	}
}

func compressWarm(v []float32) WarmVector {
	bits := make([]f16.Bits, len(v))
	f16.Encode(bits, v)
	return WarmVector{Values: bits}
}

type hotJSON struct {
	Tier   Temperature `json:"tier"`
	Values []float32   `json:"values"`
}

type warmJSON struct {
	Tier   Temperature `json:"tier"`
	Values []f16.Bits  `json:"values"`
}

type coldJSON struct {
	Tier      Temperature `json:"tier"`
	Codes     []uint16    `json:"codes"`
	Dimension int         `json:"dimension"`
}

// MarshalJSON encodes the vector as {"tier":"hot","values":[...]}.
func (v HotVector) MarshalJSON() ([]byte, error) {
	return json.Marshal(hotJSON{Tier: Hot, Values: nonNil(v.Values)})
}

// MarshalJSON encodes the vector as {"tier":"warm","values":[...]} with the
// raw binary16 bit patterns.
func (v WarmVector) MarshalJSON() ([]byte, error) {
	return json.Marshal(warmJSON{Tier: Warm, Values: nonNil(v.Values)})
}

// MarshalJSON encodes the vector as {"tier":"cold","codes":[...],"dimension":n}.
func (v ColdVector) MarshalJSON() ([]byte, error) {
	codes := make([]uint16, len(v.Codes))
	for i, c := range v.Codes {
		codes[i] = uint16(c)
	}
	return json.Marshal(coldJSON{Tier: Cold, Codes: codes, Dimension: v.Dim})
}

// UnmarshalVector decodes a vector produced by MarshalJSON.
func UnmarshalVector(data []byte) (Vector, error) {
	var probe struct {
		Tier *Temperature `json:"tier"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, err
	}
	if probe.Tier == nil {
		return nil, errors.New("quantization: vector has no tier")
	}
	switch *probe.Tier {
	case Hot:
		var h hotJSON
		if err := json.Unmarshal(data, &h); err != nil {
			return nil, err
		}
		return HotVector{Values: h.Values}, nil
	case Warm:
		var w warmJSON
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, err
		}
		return WarmVector{Values: w.Values}, nil
	case Cold:
		var c coldJSON
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, err
		}
		codes := make([]byte, len(c.Codes))
		for i, code := range c.Codes {
			if code >= NumCentroids {
				return nil, fmt.Errorf("quantization: code %d out of range", code)
			}
			codes[i] = byte(code)
		}
		return ColdVector{Codes: codes, Dim: c.Dimension}, nil
	default:
		return nil, fmt.Errorf("quantization: invalid tier %d", *probe.Tier)
	}
}

// Stored wraps a Vector so it can be embedded in JSON documents.
type Stored struct {
	Vector
}

// MarshalJSON implements json.Marshaler.
func (s Stored) MarshalJSON() ([]byte, error) {
	if s.Vector == nil {
		return []byte("null"), nil
	}
	return s.Vector.MarshalJSON()
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Stored) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		s.Vector = nil
		return nil
	}
	v, err := UnmarshalVector(data)
	if err != nil {
		return err
	}
	s.Vector = v
	return nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
