package index

import (
	"log/slog"

	"github.com/weave-logic-ai/vecmem/codec"
	"github.com/weave-logic-ai/vecmem/internal/envelope"
	vfs "github.com/weave-logic-ai/vecmem/internal/fs"
	"github.com/weave-logic-ai/vecmem/internal/hnsw"
	"github.com/weave-logic-ai/vecmem/metrics"
)

const (
	// DefaultEFSearch is the default search queue size.
	DefaultEFSearch = 100
	// DefaultEFConstruction is the default graph construction queue size.
	DefaultEFConstruction = hnsw.DefaultEFConstruction
	// DefaultM is the default graph fan-out.
	DefaultM = hnsw.DefaultM
)

type options struct {
	efSearch       int
	efConstruction int
	m              int
	seed           uint64
	logger         *slog.Logger
	metrics        metrics.Collector
	codec          codec.Codec
	compression    envelope.Compression
	fs             vfs.FileSystem
}

func defaultOptions() options {
	return options{
		efSearch:       DefaultEFSearch,
		efConstruction: DefaultEFConstruction,
		m:              DefaultM,
		seed:           hnsw.DefaultSeed,
		logger:         slog.New(slog.DiscardHandler),
		metrics:        metrics.NoopCollector{},
		codec:          codec.Default,
		fs:             vfs.Default,
	}
}

// Option configures an Index.
type Option func(*options)

// WithEFSearch sets the search queue size. Values below 1 are ignored.
func WithEFSearch(ef int) Option {
	return func(o *options) {
		if ef > 0 {
			o.efSearch = ef
		}
	}
}

// WithEFConstruction sets the graph construction queue size. Values below 1
// are ignored.
func WithEFConstruction(ef int) Option {
	return func(o *options) {
		if ef > 0 {
			o.efConstruction = ef
		}
	}
}

// WithM sets the graph fan-out.
func WithM(m int) Option {
	return func(o *options) { o.m = m }
}

// WithSeed sets the seed of graph level assignment.
func WithSeed(seed uint64) Option {
	return func(o *options) { o.seed = seed }
}

// WithLogger sets the logger. A nil logger disables logging.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l == nil {
			l = slog.New(slog.DiscardHandler)
		}
		o.logger = l
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(c metrics.Collector) Option {
	return func(o *options) {
		if c == nil {
			c = metrics.NoopCollector{}
		}
		o.metrics = c
	}
}

// WithCodec sets the codec used by Save.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithCompression sets the envelope compression used by Save.
func WithCompression(c envelope.Compression) Option {
	return func(o *options) { o.compression = c }
}

// WithFileSystem sets the file system used by Save and Load.
func WithFileSystem(fsys vfs.FileSystem) Option {
	return func(o *options) { o.fs = fsys }
}
