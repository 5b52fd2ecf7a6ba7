// Package tiering stores vectors at the temperature their access pattern
// calls for.
//
// A Store keeps each vector in its compressed form together with an
// AccessTracker. Get records the access and serves full-precision values
// through a bounded cache. Rebalance applies the trackers' recommendations by
// recompressing entries whose tier differs from the recommended one.
package tiering

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/dgraph-io/ristretto"

	"github.com/weave-logic-ai/vecmem/metrics"
	"github.com/weave-logic-ai/vecmem/quantization"
)

// DefaultCacheBytes bounds the decompressed-vector cache.
const DefaultCacheBytes = 64 << 20

type options struct {
	logger     *slog.Logger
	metrics    metrics.Collector
	cacheBytes int64
	now        func() time.Time
}

// Option configures a Store.
type Option func(*options)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics sets the collector that receives tier moves.
func WithMetrics(c metrics.Collector) Option {
	return func(o *options) {
		if c != nil {
			o.metrics = c
		}
	}
}

// WithCacheBytes bounds the decompressed-vector cache. Zero or negative
// values keep the default.
func WithCacheBytes(n int64) Option {
	return func(o *options) {
		if n > 0 {
			o.cacheBytes = n
		}
	}
}

// WithClock sets the time source used by Put and Get.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

type entry struct {
	vector  quantization.Vector
	tracker *quantization.AccessTracker
}

// Move records one entry changing tier during Rebalance.
type Move struct {
	ID   string
	From quantization.Temperature
	To   quantization.Temperature
}

// TierStats summarises the entries held at one tier.
type TierStats struct {
	Count int
	Bytes int
}

// Stats maps each tier to its usage.
type Stats map[quantization.Temperature]TierStats

// Store is a tiered vector store. It is not safe for concurrent use; Rebalance
// parallelises internally and returns once all work is done.
type Store struct {
	codebook *quantization.Codebook
	entries  map[string]*entry
	cache    *ristretto.Cache
	opts     options
}

// New creates a Store. cb is used for Cold entries; with a nil codebook Cold
// recommendations are stored as Warm.
func New(cb *quantization.Codebook, optFns ...Option) (*Store, error) {
	o := options{
		logger:     slog.New(slog.DiscardHandler),
		metrics:    metrics.NoopCollector{},
		cacheBytes: DefaultCacheBytes,
		now:        time.Now,
	}
	for _, fn := range optFns {
		fn(&o)
	}

	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: max(1024, o.cacheBytes/64),
		MaxCost:     o.cacheBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("tiering: cache: %w", err)
	}

	return &Store{
		codebook: cb,
		entries:  make(map[string]*entry),
		cache:    cache,
		opts:     o,
	}, nil
}

// Codebook returns the codebook used for Cold entries.
func (s *Store) Codebook() *quantization.Codebook { return s.codebook }

// Len returns the number of entries.
func (s *Store) Len() int { return len(s.entries) }

// Put stores v as a Hot entry with a fresh tracker, replacing any entry with
// the same id.
func (s *Store) Put(id string, v []float32) {
	s.cache.Del(id)
	s.entries[id] = &entry{
		vector:  quantization.Compress(v, quantization.Hot, nil),
		tracker: quantization.NewAccessTracker(s.opts.now()),
	}
}

// PutCompressed stores an already compressed vector with its tracker.
func (s *Store) PutCompressed(id string, v quantization.Vector, tracker quantization.AccessTracker) {
	s.cache.Del(id)
	tracker.Tier = v.Tier()
	s.entries[id] = &entry{vector: v, tracker: &tracker}
}

// Get returns the full-precision values of id and records the access.
func (s *Store) Get(id string) ([]float32, bool) {
	e, ok := s.entries[id]
	if !ok {
		return nil, false
	}
	e.tracker.Touch(s.opts.now())

	if cached, ok := s.cache.Get(id); ok {
		return slices.Clone(cached.([]float32)), true
	}
	values := e.vector.Decompress(s.codebook)
	s.cache.Set(id, values, int64(4*len(values)))
	return slices.Clone(values), true
}

// Lookup returns the stored form of id and a copy of its tracker without
// recording an access.
func (s *Store) Lookup(id string) (quantization.Vector, quantization.AccessTracker, bool) {
	e, ok := s.entries[id]
	if !ok {
		return nil, quantization.AccessTracker{}, false
	}
	return e.vector, *e.tracker, true
}

// Delete removes id and reports whether it was present.
func (s *Store) Delete(id string) bool {
	if _, ok := s.entries[id]; !ok {
		return false
	}
	delete(s.entries, id)
	s.cache.Del(id)
	return true
}

// Rebalance recompresses every entry whose recommended tier at now differs
// from its current tier. Moves are returned ordered by id. On context
// cancellation no entry is changed.
func (s *Store) Rebalance(ctx context.Context, now time.Time) ([]Move, error) {
	start := time.Now()
	byTier := make(map[quantization.Temperature][]string)
	for id, e := range s.entries {
		to := e.tracker.RecommendedTier(now)
		if to == quantization.Cold && s.codebook == nil {
			to = quantization.Warm
		}
		if to != e.vector.Tier() {
			byTier[to] = append(byTier[to], id)
		}
	}

	type result struct {
		ids     []string
		vectors []quantization.Vector
	}
	var results []result
	for _, to := range quantization.Temperatures {
		ids := byTier[to]
		if len(ids) == 0 {
			continue
		}
		raw := make([][]float32, len(ids))
		for i, id := range ids {
			raw[i] = s.entries[id].vector.Decompress(s.codebook)
		}
		vectors, err := quantization.CompressBatch(ctx, raw, to, s.codebook)
		if err != nil {
			return nil, fmt.Errorf("tiering: rebalance: %w", err)
		}
		results = append(results, result{ids: ids, vectors: vectors})
	}

	var moves []Move
	for _, r := range results {
		for i, id := range r.ids {
			e := s.entries[id]
			from, to := e.vector.Tier(), r.vectors[i].Tier()
			e.vector = r.vectors[i]
			e.tracker.Tier = to
			s.cache.Del(id)
			s.opts.metrics.RecordTierMove(from.String(), to.String())
			moves = append(moves, Move{ID: id, From: from, To: to})
		}
	}
	slices.SortFunc(moves, func(a, b Move) int { return strings.Compare(a.ID, b.ID) })

	s.opts.logger.Info("tiering: rebalanced",
		"entries", len(s.entries),
		"moves", len(moves),
		"duration", time.Since(start))
	return moves, nil
}

// Stats reports the count and stored bytes for every tier.
func (s *Store) Stats() Stats {
	st := make(Stats, len(quantization.Temperatures))
	for _, t := range quantization.Temperatures {
		st[t] = TierStats{}
	}
	for _, e := range s.entries {
		ts := st[e.vector.Tier()]
		ts.Count++
		ts.Bytes += e.vector.Bytes()
		st[e.vector.Tier()] = ts
	}
	return st
}

// Close releases the cache.
func (s *Store) Close() {
	s.cache.Close()
}

// wait blocks until pending cache writes are applied.
func (s *Store) wait() { s.cache.Wait() }
