package vecmem

import (
	"time"

	"github.com/weave-logic-ai/vecmem/codec"
	"github.com/weave-logic-ai/vecmem/index"
	"github.com/weave-logic-ai/vecmem/internal/envelope"
	vfs "github.com/weave-logic-ai/vecmem/internal/fs"
	"github.com/weave-logic-ai/vecmem/metrics"
	"github.com/weave-logic-ai/vecmem/segment"
)

// Compression selects the envelope compression of segment files.
type Compression = envelope.Compression

const (
	CompressionNone = envelope.CompressionNone
	CompressionLZ4  = envelope.CompressionLZ4
	CompressionZSTD = envelope.CompressionZSTD
)

type options struct {
	logger           *Logger
	metricsCollector metrics.Collector
	embedderName     string
	codec            codec.Codec
	compression      Compression
	fs               vfs.FileSystem
	indexOptions     []index.Option
	now              func() time.Time
}

func defaultOptions() options {
	return options{
		logger:           NoopLogger(),
		metricsCollector: metrics.NoopCollector{},
		codec:            codec.Default,
		fs:               vfs.Default,
		now:              time.Now,
	}
}

// Option configures Open.
type Option func(*options)

// WithLogger sets the logger. Nil keeps the no-op logger.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetricsCollector sets the collector passed to the index.
func WithMetricsCollector(c MetricsCollector) Option {
	return func(o *options) {
		if c != nil {
			o.metricsCollector = c
		}
	}
}

// WithEmbedderName records the embedder that produced the embeddings.
func WithEmbedderName(name string) Option {
	return func(o *options) {
		o.embedderName = name
	}
}

// WithCodec configures the codec used for enveloped segment files.
//
// If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithCompression wraps the segment file in a compressed envelope.
// Compression None with a JSON codec writes the plain JSON format.
func WithCompression(c Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithFileSystem replaces the file system used for segment files.
func WithFileSystem(fsys vfs.FileSystem) Option {
	return func(o *options) {
		if fsys != nil {
			o.fs = fsys
		}
	}
}

// WithIndexOptions passes options through to the similarity index.
func WithIndexOptions(opts ...index.Option) Option {
	return func(o *options) {
		o.indexOptions = append(o.indexOptions, opts...)
	}
}

// WithClock sets the time source for witness timestamps and segment times.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func (o options) segmentOptions() []segment.Option {
	return []segment.Option{
		segment.WithFileSystem(o.fs),
		segment.WithCodec(o.codec),
		segment.WithCompression(o.compression),
	}
}
