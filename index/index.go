package index

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/weave-logic-ai/vecmem/distance"
	"github.com/weave-logic-ai/vecmem/internal/hnsw"
)

// SmallThreshold is the entry count below which queries use brute force.
const SmallThreshold = 32

// Entry is one stored item.
type Entry struct {
	ID        string    `json:"id"`
	Embedding []float32 `json:"embedding"`
	Metadata  any       `json:"metadata"`
}

// Result is a query hit. Score is the cosine similarity to the query.
type Result struct {
	ID       string
	Score    float32
	Metadata any
}

// Index is an approximate nearest-neighbor index over string-keyed entries.
type Index struct {
	opts    options
	entries []Entry

	graph *hnsw.Graph
	dirty bool
}

// New creates an empty index.
func New(opts ...Option) *Index {
	o := defaultOptions()
	for _, fn := range opts {
		fn(&o)
	}
	return &Index{opts: o}
}

// Len returns the number of entries.
func (ix *Index) Len() int { return len(ix.entries) }

// EFSearch returns the search queue size.
func (ix *Index) EFSearch() int { return ix.opts.efSearch }

// EFConstruction returns the graph construction queue size.
func (ix *Index) EFConstruction() int { return ix.opts.efConstruction }

// GraphBuilt reports whether a current graph is available without a rebuild.
func (ix *Index) GraphBuilt() bool { return ix.graph != nil && !ix.dirty }

// Insert stores the entry, replacing any entry with the same id.
// The embedding is copied.
func (ix *Index) Insert(id string, embedding []float32, metadata any) {
	start := time.Now()

	replaced := ix.remove(id)
	ix.entries = append(ix.entries, Entry{ID: id, Embedding: slices.Clone(embedding), Metadata: metadata})
	ix.dirty = true

	ix.opts.metrics.RecordInsert(time.Since(start), nil)
	ix.opts.logger.Debug("index insert", "id", id, "replaced", replaced, "entries", len(ix.entries))
}

// Delete removes the entry with id and reports whether it existed.
func (ix *Index) Delete(id string) bool {
	start := time.Now()

	found := ix.remove(id)
	if found {
		ix.dirty = true
	}

	ix.opts.metrics.RecordDelete(time.Since(start), found)
	ix.opts.logger.Debug("index delete", "id", id, "found", found)
	return found
}

func (ix *Index) remove(id string) bool {
	i := slices.IndexFunc(ix.entries, func(e Entry) bool { return e.ID == id })
	if i < 0 {
		return false
	}
	ix.entries = slices.Delete(ix.entries, i, i+1)
	return true
}

// Get returns the entry with id.
func (ix *Index) Get(id string) (Entry, bool) {
	for _, e := range ix.entries {
		if e.ID == id {
			return e, true
		}
	}
	return Entry{}, false
}

// Entries returns a copy of all entries in insertion order.
func (ix *Index) Entries() []Entry { return slices.Clone(ix.entries) }

// Query returns up to k entries ranked by cosine similarity to embedding,
// best first.
func (ix *Index) Query(embedding []float32, k int) []Result {
	start := time.Now()
	if len(ix.entries) == 0 || k <= 0 {
		ix.opts.metrics.RecordQuery(k, 0, time.Since(start))
		return nil
	}

	var (
		results []Result
		mode    string
	)
	if len(ix.entries) < SmallThreshold {
		mode = "brute"
		results = ix.bruteForce(embedding, k)
	} else {
		mode = "graph"
		results = ix.graphSearch(embedding, k)
	}

	ix.opts.metrics.RecordQuery(k, len(results), time.Since(start))
	ix.opts.logger.Debug("index query", "k", k, "mode", mode, "results", len(results))
	return results
}

func (ix *Index) bruteForce(q []float32, k int) []Result {
	results := make([]Result, len(ix.entries))
	for i, e := range ix.entries {
		results[i] = Result{ID: e.ID, Score: distance.CosineSimilarity(q, e.Embedding), Metadata: e.Metadata}
	}
	return topK(results, k)
}

func (ix *Index) graphSearch(q []float32, k int) []Result {
	if ix.graph == nil || ix.dirty {
		ix.rebuild()
	}

	ef := max(ix.opts.efSearch, k)
	candidates := ix.graph.Search(q, ef, ef)

	results := make([]Result, len(candidates))
	for i, c := range candidates {
		e := ix.entries[c.Node]
		results[i] = Result{ID: e.ID, Score: distance.CosineSimilarity(q, e.Embedding), Metadata: e.Metadata}
	}
	return topK(results, k)
}

// rebuild recreates the graph from the current entries.
func (ix *Index) rebuild() {
	start := time.Now()

	vectors := make([][]float32, len(ix.entries))
	for i, e := range ix.entries {
		vectors[i] = e.Embedding
	}
	ix.graph = hnsw.Build(vectors, func(o *hnsw.Options) {
		o.M = ix.opts.m
		o.EFConstruction = ix.opts.efConstruction
		o.Seed = ix.opts.seed
	})
	ix.dirty = false

	d := time.Since(start)
	ix.opts.metrics.RecordRebuild(len(vectors), d)
	if ix.opts.logger.Enabled(context.Background(), slog.LevelDebug) {
		ix.logGraph(d)
	}
}

// logGraph logs the shape of the current graph, one group per level.
func (ix *Index) logGraph(d time.Duration) {
	st := ix.graph.Stats()
	levels := make([]any, 0, len(st.Levels))
	for _, l := range st.Levels {
		levels = append(levels, slog.Group(fmt.Sprintf("l%d", l.Level),
			"nodes", l.Nodes,
			"avg_connections", l.AvgConnections))
	}
	ix.opts.logger.Debug("index graph rebuilt",
		"nodes", st.Nodes,
		"max_level", st.MaxLevel,
		"m", st.M,
		"m0", st.M0,
		"duration", d,
		slog.Group("levels", levels...))
}

// topK sorts by descending score, keeping insertion order among ties.
func topK(results []Result, k int) []Result {
	slices.SortStableFunc(results, func(a, b Result) int { return cmp.Compare(b.Score, a.Score) })
	if len(results) > k {
		results = results[:k]
	}
	return results
}
