package hnsw

import (
	"cmp"
	"math"
	"slices"

	"github.com/weave-logic-ai/vecmem/distance"
	"github.com/weave-logic-ai/vecmem/internal/queue"
	"github.com/weave-logic-ai/vecmem/internal/visited"
)

const (
	// DefaultM is the default number of links per node on upper layers.
	DefaultM = 16

	// DefaultEFConstruction is the default construction queue size.
	DefaultEFConstruction = 100

	// DefaultSeed seeds level assignment when no seed is given.
	DefaultSeed = 0x5DEECE66D

	mmax0Multiplier = 2
	minimumM        = 2
)

// Options configures a Graph.
type Options struct {
	M              int
	EFConstruction int
	Seed           uint64
	Heuristic      bool
	Distance       distance.Func
}

// DefaultOptions contains the default options.
var DefaultOptions = Options{
	M:              DefaultM,
	EFConstruction: DefaultEFConstruction,
	Seed:           DefaultSeed,
	Heuristic:      true,
	Distance:       distance.CosineDistance,
}

// Result is a search hit: the node id (insertion order) and its distance.
type Result = queue.Item

// Graph is a multi-layer proximity graph. It is not safe for concurrent use.
type Graph struct {
	opts     Options
	maxM     int
	maxM0    int
	levelMul float64
	rng      uint64

	vectors  [][]float32
	links    [][][]uint32 // [node][level] -> neighbors
	entry    uint32
	maxLevel int

	visited *visited.Set
}

// New creates an empty graph.
func New(optFns ...func(o *Options)) *Graph {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.M < minimumM {
		opts.M = minimumM
	}
	if opts.EFConstruction < opts.M {
		opts.EFConstruction = opts.M
	}
	if opts.Distance == nil {
		opts.Distance = distance.CosineDistance
	}
	if opts.Seed == 0 {
		opts.Seed = DefaultSeed
	}

	return &Graph{
		opts:     opts,
		maxM:     opts.M,
		maxM0:    mmax0Multiplier * opts.M,
		levelMul: 1 / math.Log(float64(opts.M)),
		rng:      opts.Seed,
		maxLevel: -1,
		visited:  visited.New(0),
	}
}

// Build creates a graph over vectors, inserting them in order.
func Build(vectors [][]float32, optFns ...func(o *Options)) *Graph {
	g := New(optFns...)
	g.vectors = make([][]float32, 0, len(vectors))
	g.links = make([][][]uint32, 0, len(vectors))
	for _, v := range vectors {
		g.Insert(v)
	}
	return g
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.vectors) }

// MaxLevel returns the top layer, or -1 for an empty graph.
func (g *Graph) MaxLevel() int { return g.maxLevel }

// Neighbors returns the links of node id on level, or nil.
func (g *Graph) Neighbors(id uint32, level int) []uint32 {
	if int(id) >= len(g.links) || level >= len(g.links[id]) {
		return nil
	}
	return g.links[id][level]
}

// randomLevel draws a layer from the exponential distribution using
// xorshift64*.
func (g *Graph) randomLevel() int {
	g.rng ^= g.rng >> 12
	g.rng ^= g.rng << 25
	g.rng ^= g.rng >> 27
	r := float64(g.rng*0x2545F4914F6CDD1D>>11) / float64(1<<53)
	if r == 0 {
		r = math.SmallestNonzeroFloat64
	}
	return int(math.Floor(-math.Log(r) * g.levelMul))
}

func (g *Graph) dist(q []float32, id uint32) float32 {
	return g.opts.Distance(q, g.vectors[id])
}

// Insert adds v and returns its node id. The graph keeps a reference to v.
func (g *Graph) Insert(v []float32) uint32 {
	id := uint32(len(g.vectors))
	level := g.randomLevel()

	g.vectors = append(g.vectors, v)
	g.links = append(g.links, make([][]uint32, level+1))

	if g.maxLevel < 0 {
		g.entry = id
		g.maxLevel = level
		return id
	}

	curr := g.entry
	currDist := g.dist(v, curr)

	// 1. Greedy descent through the layers above the new node.
	for l := g.maxLevel; l > level; l-- {
		curr, currDist = g.greedy(v, curr, currDist, l)
	}

	// 2. Search and link from min(level, maxLevel) down to 0.
	for l := min(level, g.maxLevel); l >= 0; l-- {
		results := g.searchLayer(v, curr, currDist, l, g.opts.EFConstruction)
		candidates := results.Sorted()
		if len(candidates) > 0 {
			curr, currDist = candidates[0].Node, candidates[0].Distance
		}

		maxConns := g.maxM
		if l == 0 {
			maxConns = g.maxM0
		}
		neighbors := g.selectNeighbors(candidates, maxConns)

		conns := make([]uint32, len(neighbors))
		for i, n := range neighbors {
			conns[i] = n.Node
		}
		g.links[id][l] = conns

		for _, n := range neighbors {
			g.addConnection(n.Node, id, l, n.Distance, maxConns)
		}
	}

	if level > g.maxLevel {
		g.maxLevel = level
		g.entry = id
	}
	return id
}

// addConnection links source -> target on level, pruning source's list with
// the neighbor selection rule when it overflows.
func (g *Graph) addConnection(source, target uint32, level int, dist float32, maxConns int) {
	conns := g.links[source][level]
	if len(conns) < maxConns {
		g.links[source][level] = append(conns, target)
		return
	}

	src := g.vectors[source]
	candidates := make([]Result, 0, len(conns)+1)
	for _, c := range conns {
		candidates = append(candidates, Result{Node: c, Distance: g.dist(src, c)})
	}
	candidates = append(candidates, Result{Node: target, Distance: dist})
	sortByDistance(candidates)

	selected := g.selectNeighbors(candidates, maxConns)
	pruned := conns[:0]
	for _, s := range selected {
		pruned = append(pruned, s.Node)
	}
	g.links[source][level] = pruned
}

// selectNeighbors picks up to m neighbors from candidates sorted nearest
// first.
func (g *Graph) selectNeighbors(candidates []Result, m int) []Result {
	if len(candidates) <= m || !g.opts.Heuristic {
		return candidates[:min(m, len(candidates))]
	}

	// Keep a candidate only if it is closer to the source than to every
	// neighbor already selected.
	result := make([]Result, 0, m)
	skipped := make([]Result, 0, len(candidates))
	for _, cand := range candidates {
		if len(result) >= m {
			break
		}
		good := true
		for _, r := range result {
			if g.opts.Distance(g.vectors[cand.Node], g.vectors[r.Node]) < cand.Distance {
				good = false
				break
			}
		}
		if good {
			result = append(result, cand)
		} else {
			skipped = append(skipped, cand)
		}
	}

	for _, cand := range skipped {
		if len(result) >= m {
			break
		}
		result = append(result, cand)
	}
	return result
}

// greedy walks level from curr to a local minimum.
func (g *Graph) greedy(q []float32, curr uint32, currDist float32, level int) (uint32, float32) {
	for changed := true; changed; {
		changed = false
		for _, next := range g.Neighbors(curr, level) {
			if d := g.dist(q, next); d < currDist {
				curr, currDist = next, d
				changed = true
			}
		}
	}
	return curr, currDist
}

// searchLayer runs a best-first search of level from ep and returns a
// max-heap holding the ef nearest nodes found.
func (g *Graph) searchLayer(q []float32, ep uint32, epDist float32, level, ef int) *queue.Queue {
	g.visited.Reset()
	g.visited.Visit(ep)

	candidates := queue.NewMin(ef)
	results := queue.NewMax(ef + 1)
	candidates.Push(Result{Node: ep, Distance: epDist})
	results.Push(Result{Node: ep, Distance: epDist})

	for candidates.Len() > 0 {
		curr, _ := candidates.Pop()
		if worst, _ := results.Top(); curr.Distance > worst.Distance && results.Len() >= ef {
			break
		}

		for _, next := range g.Neighbors(curr.Node, level) {
			if !g.visited.Visit(next) {
				continue
			}
			d := g.dist(q, next)
			if worst, _ := results.Top(); results.Len() >= ef && d > worst.Distance {
				continue
			}
			candidates.Push(Result{Node: next, Distance: d})
			results.PushBounded(Result{Node: next, Distance: d}, ef)
		}
	}
	return results
}

// Search returns up to k nodes nearest to q, nearest first. ef is raised to
// k when smaller.
func (g *Graph) Search(q []float32, k, ef int) []Result {
	if len(g.vectors) == 0 || k <= 0 {
		return nil
	}
	ef = max(ef, k)

	curr := g.entry
	currDist := g.dist(q, curr)
	for l := g.maxLevel; l > 0; l-- {
		curr, currDist = g.greedy(q, curr, currDist, l)
	}

	out := g.searchLayer(q, curr, currDist, 0, ef).Sorted()
	if len(out) > k {
		out = out[:k]
	}
	return out
}

func sortByDistance(items []Result) {
	slices.SortStableFunc(items, func(a, b Result) int { return cmp.Compare(a.Distance, b.Distance) })
}
