package quantization

import (
	"math"

	"github.com/weave-logic-ai/vecmem/distance"
)

const (
	// NumCentroids is the number of centroids per subvector (one code byte).
	NumCentroids = 256

	// MaxSubvectors is the maximum number of subvectors a vector is split into.
	MaxSubvectors = 8
)

// Codebook is a product-quantization dictionary built by uniform binning.
//
// A Codebook is shared by every Cold vector it encodes and must not be
// modified after construction.
type Codebook struct {
	Dimension  int `json:"dimension"`
	Subvectors int `json:"subvectors"`
	// Widths holds the number of components of each subvector.
	Widths []int `json:"widths"`
	// Centroids is indexed [subvector][centroid][component].
	Centroids [][][]float32 `json:"centroids"`
}

// BuildCodebook derives a codebook for dim-dimensional vectors from a sample.
//
// The vector is split into min(dim, MaxSubvectors) contiguous subvectors; the
// first dim%m subvectors get one extra component. For every dimension the
// sample's min and max are computed and NumCentroids values are spread
// evenly across that range. Missing components of short sample vectors
// count as zero.
func BuildCodebook(vectors [][]float32, dim int) *Codebook {
	if dim < 0 {
		dim = 0
	}
	m := min(dim, MaxSubvectors)

	cb := &Codebook{
		Dimension:  dim,
		Subvectors: m,
		Widths:     make([]int, m),
		Centroids:  make([][][]float32, m),
	}
	if m == 0 {
		return cb
	}

	lo := make([]float32, dim)
	hi := make([]float32, dim)
	for j := range dim {
		lo[j] = float32(math.Inf(1))
		hi[j] = float32(math.Inf(-1))
	}
	for _, v := range vectors {
		for j := range dim {
			var x float32
			if j < len(v) {
				x = v[j]
			}
			lo[j] = min(lo[j], x)
			hi[j] = max(hi[j], x)
		}
	}
	if len(vectors) == 0 {
		clear(lo)
		clear(hi)
	}

	base, extra := dim/m, dim%m
	offset := 0
	for s := range m {
		w := base
		if s < extra {
			w++
		}
		cb.Widths[s] = w

		centroids := make([][]float32, NumCentroids)
		for c := range NumCentroids {
			t := float32(c) / float32(NumCentroids-1)
			centroid := make([]float32, w)
			for k := range w {
				j := offset + k
				centroid[k] = lo[j] + (hi[j]-lo[j])*t
			}
			centroids[c] = centroid
		}
		cb.Centroids[s] = centroids
		offset += w
	}
	return cb
}

// Encode returns one code byte per subvector: the index of the nearest
// centroid by squared Euclidean distance. Components beyond len(v) count as
// zero.
func (cb *Codebook) Encode(v []float32) []byte {
	codes := make([]byte, cb.Subvectors)
	sub := make([]float32, 0, cb.Dimension/max(cb.Subvectors, 1)+1)

	offset := 0
	for s, w := range cb.Widths {
		sub = sub[:0]
		for k := range w {
			var x float32
			if j := offset + k; j < len(v) {
				x = v[j]
			}
			sub = append(sub, x)
		}

		best, bestDist := 0, float32(math.MaxFloat32)
		for c, centroid := range cb.Centroids[s] {
			if d := distance.SquaredL2(sub, centroid); d < bestDist {
				best, bestDist = c, d
			}
		}
		codes[s] = byte(best)
		offset += w
	}
	return codes
}

// Decode concatenates the centroids selected by codes and truncates (or
// zero-pads) the result to dim components.
func (cb *Codebook) Decode(codes []byte, dim int) []float32 {
	out := make([]float32, 0, max(dim, cb.Dimension))
	for s, code := range codes {
		if s >= cb.Subvectors {
			break
		}
		out = append(out, cb.Centroids[s][code]...)
	}
	if len(out) >= dim {
		return out[:dim]
	}
	return append(out, make([]float32, dim-len(out))...)
}
