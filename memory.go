package vecmem

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/weave-logic-ai/vecmem/codec"
	"github.com/weave-logic-ai/vecmem/index"
	"github.com/weave-logic-ai/vecmem/segment"
	"github.com/weave-logic-ai/vecmem/witness"
)

// Memory is a recalled memory.
type Memory struct {
	ID       string
	Score    float32
	Text     string
	Metadata any
	Tags     []string
}

// Store is the memory of one agent namespace.
type Store struct {
	mu sync.Mutex

	path      string
	agentID   string
	namespace string
	dimension int
	createdAt time.Time

	ix       *index.Index
	segments map[string]segment.MemorySegment
	chain    *witness.Chain

	opts   options
	logger *Logger
	dirty  bool
	closed bool
}

// Open opens the namespace stored under dir, creating an empty store when no
// segment file exists yet. An existing file must carry a valid witness chain.
func Open(ctx context.Context, dir, agentID, namespace string, optFns ...Option) (*Store, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	o := defaultOptions()
	for _, fn := range optFns {
		fn(&o)
	}

	s := &Store{
		path:      filepath.Join(dir, segment.FileName(namespace)),
		agentID:   agentID,
		namespace: namespace,
		createdAt: o.now().UTC(),
		segments:  make(map[string]segment.MemorySegment),
		chain:     witness.New(witness.WithClock(o.now)),
		opts:      o,
		logger:    o.logger.WithNamespace(agentID, namespace),
	}
	idxOpts := append([]index.Option{
		index.WithLogger(s.logger.Logger),
		index.WithMetrics(o.metricsCollector),
	}, o.indexOptions...)
	s.ix = index.New(idxOpts...)

	f, err := segment.ReadVerified(s.path, o.segmentOptions()...)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		s.logger.LogOpen(ctx, s.path, 0, err)
		return nil, translateError(err)
	default:
		s.load(f)
	}

	s.logger.LogOpen(ctx, s.path, len(s.segments), nil)
	return s, nil
}

func (s *Store) load(f *segment.File) {
	s.createdAt = f.Header.CreatedAt
	s.dimension = f.Header.Dimension
	if f.Header.EmbedderName != "" && s.opts.embedderName == "" {
		s.opts.embedderName = f.Header.EmbedderName
	}
	if f.WitnessChain != nil {
		s.chain = witness.FromSegments(f.WitnessChain.Segments(), witness.WithClock(s.opts.now))
	}
	for _, seg := range f.Segments {
		s.segments[seg.ID] = seg
		if len(seg.Embedding) > 0 {
			s.ix.Insert(seg.ID, seg.Embedding, seg.Metadata)
			if s.dimension == 0 {
				s.dimension = len(seg.Embedding)
			}
		}
	}
}

// Path returns the segment file path.
func (s *Store) Path() string { return s.path }

// Namespace returns the namespace.
func (s *Store) Namespace() string { return s.namespace }

// Dimension returns the embedding dimension, or 0 before the first embedding.
func (s *Store) Dimension() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dimension
}

// Len returns the number of memories.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.segments)
}

// Remember stores a new memory and returns its id. A nil or empty embedding
// stores a text-only memory that Recall never returns.
func (s *Store) Remember(ctx context.Context, text string, embedding []float32, metadata any, tags []string) (string, error) {
	id := segment.NewID()
	if err := s.Put(ctx, id, text, embedding, metadata, tags); err != nil {
		return "", err
	}
	return id, nil
}

// Put stores a memory under id, replacing an existing one. Replacement is
// recorded as an update in the witness chain.
func (s *Store) Put(ctx context.Context, id, text string, embedding []float32, metadata any, tags []string) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, updated := s.segments[id]
	defer func() { s.logger.LogRemember(ctx, id, updated, err) }()

	if err := s.check(ctx); err != nil {
		return err
	}
	if n := len(embedding); n > 0 && s.dimension > 0 && n != s.dimension {
		return &ErrDimensionMismatch{Expected: s.dimension, Actual: n}
	}

	seg := segment.MakeSegment(id, s.namespace, embedding, text, metadata, tags, s.opts.embedderName)
	now := s.opts.now().UTC()
	seg.CreatedAt, seg.UpdatedAt = now, now
	if updated {
		seg.CreatedAt = prev.CreatedAt
	}

	data, err := codec.Default.Marshal(seg)
	if err != nil {
		return err
	}

	op := witness.Store
	if updated {
		op = witness.Update
	}
	s.chain.Append(op, data)

	s.segments[id] = seg
	if len(embedding) > 0 {
		s.ix.Insert(id, embedding, metadata)
		if s.dimension == 0 {
			s.dimension = len(embedding)
		}
	} else if updated {
		s.ix.Delete(id)
	}
	s.dirty = true
	return nil
}

// Get returns the memory stored under id.
func (s *Store) Get(ctx context.Context, id string) (segment.MemorySegment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.check(ctx); err != nil {
		return segment.MemorySegment{}, err
	}
	seg, ok := s.segments[id]
	if !ok {
		return segment.MemorySegment{}, ErrNotFound
	}
	return seg.Clone(), nil
}

// Forget removes the memory stored under id.
func (s *Store) Forget(ctx context.Context, id string) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer func() { s.logger.LogForget(ctx, id, err) }()

	if err := s.check(ctx); err != nil {
		return err
	}
	if _, ok := s.segments[id]; !ok {
		return ErrNotFound
	}

	s.chain.Append(witness.Delete, []byte(id))
	delete(s.segments, id)
	s.ix.Delete(id)
	s.dirty = true
	return nil
}

// Recall returns up to k memories most similar to embedding, best first.
func (s *Store) Recall(ctx context.Context, embedding []float32, k int) (_ []Memory, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Memory
	defer func() { s.logger.LogRecall(ctx, k, len(out), err) }()

	if err := s.check(ctx); err != nil {
		return nil, err
	}
	if k <= 0 {
		return nil, ErrInvalidK
	}
	if s.dimension > 0 && len(embedding) != s.dimension {
		return nil, &ErrDimensionMismatch{Expected: s.dimension, Actual: len(embedding)}
	}

	for _, r := range s.ix.Query(embedding, k) {
		seg := s.segments[r.ID]
		out = append(out, Memory{
			ID:       r.ID,
			Score:    r.Score,
			Text:     seg.Text,
			Metadata: seg.Metadata,
			Tags:     slices.Clone(seg.Tags),
		})
	}
	return out, nil
}

// WitnessChain returns a copy of the audit chain.
func (s *Store) WitnessChain() *witness.Chain {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chain.Clone()
}

// Verify checks the audit chain and returns the first failure, matching
// ErrTampered.
func (s *Store) Verify() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return translateError(s.chain.VerifyDetailed())
}

// Flush writes the segment file if anything changed since the last flush.
func (s *Store) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.check(ctx); err != nil {
		return err
	}
	return s.flush(ctx)
}

func (s *Store) flush(ctx context.Context) (err error) {
	if !s.dirty {
		return nil
	}
	start := time.Now()
	var size int
	defer func() {
		s.opts.metricsCollector.RecordPersist("segment_write", size, time.Since(start), err)
		s.logger.LogFlush(ctx, s.path, len(s.segments), s.chain.Len(), err)
	}()

	segs := make([]segment.MemorySegment, 0, len(s.segments))
	for _, seg := range s.segments {
		segs = append(segs, seg)
	}
	slices.SortFunc(segs, func(a, b segment.MemorySegment) int { return strings.Compare(a.ID, b.ID) })

	f := segment.NewBuilder(s.agentID, s.namespace).
		Dimension(s.dimension).
		EmbedderName(s.opts.embedderName).
		AddAll(segs).
		WitnessChain(s.chain).
		Build()
	f.Header.CreatedAt = s.createdAt

	if err := segment.Write(s.path, f, s.opts.segmentOptions()...); err != nil {
		return err
	}
	if fi, err := s.opts.fs.Stat(s.path); err == nil {
		size = int(fi.Size())
	}
	s.dirty = false
	return nil
}

// Close flushes pending changes and closes the store. Further calls return
// ErrClosed; Close itself is idempotent.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	err := s.flush(context.Background())
	s.closed = true
	return err
}

func (s *Store) check(ctx context.Context) error {
	if s.closed {
		return ErrClosed
	}
	return ctx.Err()
}

// ListNamespaces returns the namespaces with a readable segment file in dir.
// Unreadable files are reported in the error alongside the readable ones.
func ListNamespaces(dir string, optFns ...Option) ([]string, error) {
	o := defaultOptions()
	for _, fn := range optFns {
		fn(&o)
	}
	files, err := segment.ScanDir(dir, o.segmentOptions()...)
	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, f.Header.Namespace)
	}
	return names, err
}
