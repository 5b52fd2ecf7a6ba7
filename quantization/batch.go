package quantization

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// CompressBatch compresses vectors in parallel. The result has the same order
// as the input. It returns the context error if ctx is cancelled before all
// work completes.
func CompressBatch(ctx context.Context, vectors [][]float32, tier Temperature, cb *Codebook) ([]Vector, error) {
	out := make([]Vector, len(vectors))
	if len(vectors) == 0 {
		return out, nil
	}

	workers := runtime.GOMAXPROCS(0)
	chunk := (len(vectors) + workers - 1) / workers

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for start := 0; start < len(vectors); start += chunk {
		end := min(start+chunk, len(vectors))
		g.Go(func() error {
			for i := start; i < end; i++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				out[i] = Compress(vectors[i], tier, cb)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
