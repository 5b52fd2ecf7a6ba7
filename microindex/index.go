package microindex

import (
	"cmp"
	"log/slog"
	"slices"
	"time"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/weave-logic-ai/vecmem/distance"
	"github.com/weave-logic-ai/vecmem/internal/visited"
	"github.com/weave-logic-ai/vecmem/metrics"
)

const (
	// MaxNodes is the hard capacity of an index.
	MaxNodes = 1024
	// MaxNeighbors is the maximum number of links per node.
	MaxNeighbors = 16
	// BruteForceThreshold is the live node count up to which queries scan
	// every node.
	BruteForceThreshold = 64
)

// Hit is a query result.
type Hit struct {
	ID    uint32  `json:"id"`
	Score float32 `json:"score"`
}

type node struct {
	id        uint32
	embedding []float32
	neighbors []uint32 // outgoing links, at most MaxNeighbors
	inbound   []uint32 // slots linking to this node
}

// Option configures an Index.
type Option func(*Index)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(ix *Index) {
		if l != nil {
			ix.logger = l
		}
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(c metrics.Collector) Option {
	return func(ix *Index) {
		if c != nil {
			ix.metrics = c
		}
	}
}

// Index is a micro similarity index. It is not safe for concurrent use.
type Index struct {
	dim     int
	slots   []node
	free    []uint32
	byID    map[uint32]uint32 // id -> slot
	live    *roaring.Bitmap   // occupied slots
	visited *visited.Set

	logger  *slog.Logger
	metrics metrics.Collector
}

// New creates an empty index for vectors of the given dimension.
func New(dimension int, opts ...Option) *Index {
	ix := &Index{
		dim:     dimension,
		byID:    make(map[uint32]uint32),
		live:    roaring.New(),
		visited: visited.New(MaxNodes),
		logger:  slog.New(slog.DiscardHandler),
		metrics: metrics.NoopCollector{},
	}
	for _, fn := range opts {
		fn(ix)
	}
	return ix
}

// Dimension returns the configured vector length.
func (ix *Index) Dimension() int { return ix.dim }

// Count returns the number of stored vectors.
func (ix *Index) Count() int { return int(ix.live.GetCardinality()) }

// Contains reports whether id is stored.
func (ix *Index) Contains(id uint32) bool {
	_, ok := ix.byID[id]
	return ok
}

// Insert stores embedding under id, replacing an existing node with the same
// id. It fails without mutating the index when the dimension is wrong or the
// index already holds MaxNodes nodes, including for an existing id.
func (ix *Index) Insert(id uint32, embedding []float32) (err error) {
	start := time.Now()
	defer func() { ix.metrics.RecordInsert(time.Since(start), err) }()

	if len(embedding) != ix.dim {
		return &DimensionMismatchError{Expected: ix.dim, Actual: len(embedding)}
	}
	if ix.Count() >= MaxNodes {
		return ErrCapacityExceeded
	}

	if slot, exists := ix.byID[id]; exists {
		ix.unlink(slot)
	}

	nearest := ix.nearest(embedding, MaxNeighbors)
	slot := ix.allocate()
	ix.slots[slot] = node{
		id:        id,
		embedding: slices.Clone(embedding),
	}
	ix.byID[id] = slot
	ix.live.Add(slot)

	for _, nb := range nearest {
		ix.link(slot, nb)
		if len(ix.slots[nb].neighbors) < MaxNeighbors {
			ix.link(nb, slot)
		}
	}

	ix.logger.Debug("microindex insert", "id", id, "slot", slot, "neighbors", len(nearest))
	return nil
}

// Delete removes the node with id.
func (ix *Index) Delete(id uint32) error {
	start := time.Now()
	slot, ok := ix.byID[id]
	if ok {
		ix.unlink(slot)
	}
	ix.metrics.RecordDelete(time.Since(start), ok)
	if !ok {
		return &NotFoundError{ID: id}
	}
	ix.logger.Debug("microindex delete", "id", id, "slot", slot)
	return nil
}

// Query returns up to k nodes ranked by cosine similarity, best first.
func (ix *Index) Query(embedding []float32, k int) []Hit {
	start := time.Now()
	var hits []Hit
	if k > 0 && !ix.live.IsEmpty() {
		if ix.Count() <= BruteForceThreshold {
			hits = ix.bruteForce(embedding)
		} else {
			hits = ix.traverse(embedding)
		}
		slices.SortStableFunc(hits, func(a, b Hit) int { return cmp.Compare(b.Score, a.Score) })
		if len(hits) > k {
			hits = hits[:k]
		}
	}
	ix.metrics.RecordQuery(k, len(hits), time.Since(start))
	return hits
}

func (ix *Index) bruteForce(q []float32) []Hit {
	hits := make([]Hit, 0, ix.Count())
	it := ix.live.Iterator()
	for it.HasNext() {
		n := &ix.slots[it.Next()]
		hits = append(hits, Hit{ID: n.id, Score: distance.CosineSimilarity(q, n.embedding)})
	}
	return hits
}

// traverse walks the component reachable from the entry node, the lowest
// live slot, scoring every node it visits once. Links are followed in both
// directions so a node whose back-links were dropped stays reachable.
func (ix *Index) traverse(q []float32) []Hit {
	ix.visited.Reset()
	entry := ix.live.Minimum()
	ix.visited.Visit(entry)

	stack := []uint32{entry}
	var hits []Hit
	for len(stack) > 0 {
		slot := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n := &ix.slots[slot]
		hits = append(hits, Hit{ID: n.id, Score: distance.CosineSimilarity(q, n.embedding)})
		for _, nb := range n.neighbors {
			if ix.visited.Visit(nb) {
				stack = append(stack, nb)
			}
		}
		for _, nb := range n.inbound {
			if ix.visited.Visit(nb) {
				stack = append(stack, nb)
			}
		}
	}
	return hits
}

// nearest returns the slots of the k live nodes most similar to v.
func (ix *Index) nearest(v []float32, k int) []uint32 {
	type scored struct {
		slot  uint32
		score float32
	}
	all := make([]scored, 0, ix.Count())
	it := ix.live.Iterator()
	for it.HasNext() {
		s := it.Next()
		all = append(all, scored{slot: s, score: distance.CosineSimilarity(v, ix.slots[s].embedding)})
	}
	slices.SortStableFunc(all, func(a, b scored) int { return cmp.Compare(b.score, a.score) })

	out := make([]uint32, 0, min(k, len(all)))
	for _, s := range all[:min(k, len(all))] {
		out = append(out, s.slot)
	}
	return out
}

func (ix *Index) allocate() uint32 {
	if n := len(ix.free); n > 0 {
		slot := ix.free[n-1]
		ix.free = ix.free[:n-1]
		return slot
	}
	ix.slots = append(ix.slots, node{})
	return uint32(len(ix.slots) - 1)
}

func (ix *Index) link(from, to uint32) {
	ix.slots[from].neighbors = append(ix.slots[from].neighbors, to)
	ix.slots[to].inbound = append(ix.slots[to].inbound, from)
}

// unlink frees slot and removes every link to or from it.
func (ix *Index) unlink(slot uint32) {
	n := &ix.slots[slot]
	is := func(s uint32) bool { return s == slot }
	for _, src := range n.inbound {
		ix.slots[src].neighbors = slices.DeleteFunc(ix.slots[src].neighbors, is)
	}
	for _, dst := range n.neighbors {
		ix.slots[dst].inbound = slices.DeleteFunc(ix.slots[dst].inbound, is)
	}

	ix.live.Remove(slot)
	delete(ix.byID, n.id)
	ix.slots[slot] = node{}
	ix.free = append(ix.free, slot)
}

// Neighbors returns the ids linked from id, or nil when id is unknown.
func (ix *Index) Neighbors(id uint32) []uint32 {
	slot, ok := ix.byID[id]
	if !ok {
		return nil
	}
	out := make([]uint32, len(ix.slots[slot].neighbors))
	for i, s := range ix.slots[slot].neighbors {
		out[i] = ix.slots[s].id
	}
	return out
}

// slotOf reports the arena slot holding id.
func (ix *Index) slotOf(id uint32) (uint32, bool) {
	s, ok := ix.byID[id]
	return s, ok
}
