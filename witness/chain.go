package witness

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/weave-logic-ai/vecmem/codec"
	"github.com/weave-logic-ai/vecmem/internal/envelope"
	vfs "github.com/weave-logic-ai/vecmem/internal/fs"
	"github.com/weave-logic-ai/vecmem/internal/snapshot"
)

// Chain is an append-only sequence of witness segments.
//
// A Chain is not safe for concurrent use.
type Chain struct {
	segments []Segment
	now      func() time.Time
}

// Option configures a Chain or its persistence.
type Option func(*options)

type options struct {
	now         func() time.Time
	fs          vfs.FileSystem
	codec       codec.Codec
	compression envelope.Compression
}

func defaultOptions() options {
	return options{
		now:   time.Now,
		fs:    vfs.Default,
		codec: codec.Default,
	}
}

// WithClock sets the time source used to stamp appended segments.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithFileSystem sets the file system used by Save and Load.
func WithFileSystem(fsys vfs.FileSystem) Option {
	return func(o *options) { o.fs = fsys }
}

// WithCodec sets the codec used by Save.
func WithCodec(c codec.Codec) Option {
	return func(o *options) { o.codec = c }
}

// WithCompression sets the envelope compression used by Save.
func WithCompression(c envelope.Compression) Option {
	return func(o *options) { o.compression = c }
}

func applyOptions(opts []Option) options {
	o := defaultOptions()
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// New returns an empty chain.
func New(opts ...Option) *Chain {
	o := applyOptions(opts)
	return &Chain{now: o.now}
}

// Append records op over data and returns the new segment.
func (c *Chain) Append(op Operation, data []byte) Segment {
	now := time.Now
	if c.now != nil {
		now = c.now
	}
	seg := Segment{
		SegmentID:    uuid.New(),
		Timestamp:    now().UTC().Truncate(time.Second),
		Operation:    op,
		DataHash:     HashData(data),
		PreviousHash: c.Tip(),
	}
	seg.SegmentHash = seg.ExpectedHash()
	c.segments = append(c.segments, seg)
	return seg
}

// Tip returns the hash of the last segment, or Genesis for an empty chain.
func (c *Chain) Tip() Hash {
	if len(c.segments) == 0 {
		return Genesis
	}
	return c.segments[len(c.segments)-1].SegmentHash
}

// Len returns the number of segments.
func (c *Chain) Len() int { return len(c.segments) }

// At returns the i-th segment.
func (c *Chain) At(i int) (Segment, bool) {
	if i < 0 || i >= len(c.segments) {
		return Segment{}, false
	}
	return c.segments[i], true
}

// Segments returns a copy of all segments in order.
func (c *Chain) Segments() []Segment { return slices.Clone(c.segments) }

// Clone returns an independent copy of the chain.
func (c *Chain) Clone() *Chain {
	if c == nil {
		return nil
	}
	return &Chain{segments: slices.Clone(c.segments), now: c.now}
}

// Verify reports whether the chain is intact.
func (c *Chain) Verify() bool { return c.VerifyDetailed() == nil }

// VerifyDetailed walks the chain from Genesis and returns a
// *LinkBrokenError or *ChainCorruptedError for the first bad segment.
func (c *Chain) VerifyDetailed() error {
	expected := Genesis
	for i, seg := range c.segments {
		if seg.PreviousHash != expected {
			return &LinkBrokenError{Index: i, SegmentID: seg.SegmentID}
		}
		if seg.ExpectedHash() != seg.SegmentHash {
			return &ChainCorruptedError{Index: i, SegmentID: seg.SegmentID}
		}
		expected = seg.SegmentHash
	}
	return nil
}

// MarshalJSON encodes the chain as a JSON array of segments.
func (c *Chain) MarshalJSON() ([]byte, error) {
	if c.segments == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(c.segments)
}

// UnmarshalJSON decodes a JSON array of segments. The result is not verified.
func (c *Chain) UnmarshalJSON(data []byte) error {
	var segs []Segment
	if err := json.Unmarshal(data, &segs); err != nil {
		return err
	}
	c.segments = segs
	return nil
}

// FromSegments builds a chain from previously persisted segments without
// verifying it. The slice is copied.
func FromSegments(segs []Segment, opts ...Option) *Chain {
	c := New(opts...)
	c.segments = slices.Clone(segs)
	return c
}

// Unmarshal decodes a persisted chain without verifying it.
func Unmarshal(data []byte, opts ...Option) (*Chain, error) {
	var segs []Segment
	if err := snapshot.Decode(data, &segs); err != nil {
		return nil, err
	}
	c := New(opts...)
	c.segments = segs
	return c, nil
}

// Save writes the chain to path atomically.
func (c *Chain) Save(path string, opts ...Option) error {
	o := applyOptions(opts)
	segs := c.segments
	if segs == nil {
		segs = []Segment{}
	}
	data, err := snapshot.Encode(segs, snapshot.Options{Codec: o.codec, Compression: o.compression})
	if err != nil {
		return fmt.Errorf("witness: encode %s: %w", path, err)
	}
	if err := vfs.WriteFileAtomic(o.fs, path, data, 0o644); err != nil {
		return &IOError{Path: path, Err: err}
	}
	return nil
}

// Load reads a chain from path. A missing file yields an empty chain. The
// chain is not verified.
func Load(path string, opts ...Option) (*Chain, error) {
	o := applyOptions(opts)
	data, err := vfs.ReadFile(o.fs, path)
	if errors.Is(err, fs.ErrNotExist) {
		return New(opts...), nil
	}
	if err != nil {
		return nil, &IOError{Path: path, Err: err}
	}
	c, err := Unmarshal(data, opts...)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	return c, nil
}

// LoadVerified is Load followed by VerifyDetailed.
func LoadVerified(path string, opts ...Option) (*Chain, error) {
	c, err := Load(path, opts...)
	if err != nil {
		return nil, err
	}
	if err := c.VerifyDetailed(); err != nil {
		return nil, err
	}
	return c, nil
}
