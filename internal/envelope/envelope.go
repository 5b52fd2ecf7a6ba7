// Package envelope wraps persisted memory files in an optional compressed
// container.
//
// Layout (little-endian):
//
//	magic            4 bytes  "VMEM"
//	version          1 byte
//	compression      1 byte   (Compression)
//	codec name len   1 byte
//	codec name       n bytes
//	uncompressed len 4 bytes
//	compressed len   4 bytes  (0 means the block is stored raw)
//	data
//
// Files that do not start with the magic are plain codec output (JSON).
package envelope

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression defines the compression algorithm used.
type Compression uint8

const (
	// CompressionNone indicates no compression.
	CompressionNone Compression = 0
	// CompressionLZ4 indicates LZ4 block compression (fast, good for hot data).
	CompressionLZ4 Compression = 1
	// CompressionZSTD indicates ZSTD block compression (better ratio, good for cold data).
	CompressionZSTD Compression = 2
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(c))
	}
}

const (
	version         = 1
	blockHeaderSize = 8
)

var magic = []byte("VMEM")

var (
	// ErrCorrupt is returned when an envelope cannot be parsed.
	ErrCorrupt = errors.New("envelope: corrupt data")

	// ErrUnsupportedVersion is returned for envelopes written by a newer build.
	ErrUnsupportedVersion = errors.New("envelope: unsupported version")
)

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

// IsWrapped reports whether data starts with the envelope magic.
func IsWrapped(data []byte) bool {
	return bytes.HasPrefix(data, magic)
}

// Wrap encloses payload in an envelope recording codecName and compressing
// with c. Compression that does not shrink the payload below 90% of its size
// is skipped and the block is stored raw.
func Wrap(payload []byte, codecName string, c Compression) ([]byte, error) {
	if len(codecName) > 255 {
		return nil, fmt.Errorf("envelope: codec name too long: %d", len(codecName))
	}

	var compressed []byte
	switch c {
	case CompressionNone:
	case CompressionLZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(payload)))
		n, err := lz4.CompressBlock(payload, buf, nil)
		if err != nil {
			return nil, fmt.Errorf("envelope: lz4: %w", err)
		}
		compressed = buf[:n]
	case CompressionZSTD:
		enc := getZstdEncoder()
		compressed = enc.EncodeAll(payload, nil)
		zstdEncoderPool.Put(enc)
	default:
		return nil, fmt.Errorf("envelope: unknown compression %d", uint8(c))
	}

	raw := len(compressed) == 0 || float64(len(compressed)) > float64(len(payload))*0.9
	data := compressed
	if raw {
		data = payload
	}

	out := make([]byte, 0, len(magic)+3+len(codecName)+blockHeaderSize+len(data))
	out = append(out, magic...)
	out = append(out, version, byte(c), byte(len(codecName)))
	out = append(out, codecName...)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(payload)))
	if raw {
		out = binary.LittleEndian.AppendUint32(out, 0)
	} else {
		out = binary.LittleEndian.AppendUint32(out, uint32(len(compressed)))
	}
	return append(out, data...), nil
}

// Unwrap parses an envelope produced by Wrap and returns the decompressed
// payload together with the recorded codec name.
func Unwrap(data []byte) ([]byte, string, error) {
	if !IsWrapped(data) {
		return nil, "", ErrCorrupt
	}
	p := data[len(magic):]
	if len(p) < 3 {
		return nil, "", ErrCorrupt
	}
	if p[0] > version {
		return nil, "", fmt.Errorf("%w: %d", ErrUnsupportedVersion, p[0])
	}
	c := Compression(p[1])
	nameLen := int(p[2])
	p = p[3:]
	if len(p) < nameLen+blockHeaderSize {
		return nil, "", ErrCorrupt
	}
	codecName := string(p[:nameLen])
	p = p[nameLen:]

	uncompressedSize := binary.LittleEndian.Uint32(p[0:])
	compressedSize := binary.LittleEndian.Uint32(p[4:])
	p = p[blockHeaderSize:]

	if compressedSize == 0 {
		if uint32(len(p)) < uncompressedSize {
			return nil, "", ErrCorrupt
		}
		return p[:uncompressedSize], codecName, nil
	}
	if uint32(len(p)) < compressedSize {
		return nil, "", ErrCorrupt
	}
	block := p[:compressedSize]

	switch c {
	case CompressionLZ4:
		result := make([]byte, uncompressedSize)
		n, err := lz4.UncompressBlock(block, result)
		if err != nil {
			return nil, "", fmt.Errorf("envelope: lz4: %w", err)
		}
		if uint32(n) != uncompressedSize {
			return nil, "", fmt.Errorf("%w: decompressed size mismatch", ErrCorrupt)
		}
		return result, codecName, nil
	case CompressionZSTD:
		dec := getZstdDecoder()
		defer zstdDecoderPool.Put(dec)
		decoded, err := dec.DecodeAll(block, make([]byte, 0, uncompressedSize))
		if err != nil {
			return nil, "", fmt.Errorf("envelope: zstd: %w", err)
		}
		if uint32(len(decoded)) != uncompressedSize {
			return nil, "", fmt.Errorf("%w: decompressed size mismatch", ErrCorrupt)
		}
		return decoded, codecName, nil
	default:
		return nil, "", fmt.Errorf("%w: compression %d", ErrCorrupt, uint8(c))
	}
}
