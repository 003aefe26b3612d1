package gridbuild

import (
	"context"
	"math"

	"github.com/paulmach/orb"
	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/terranav/navgrid"
)

// chunk is an inclusive rectangle of coordinates processed by one worker.
type chunk struct {
	index    int
	min, max navgrid.IntVector2
}

// chunking partitions the coordinates of a scan area.
type chunking struct {
	origin navgrid.IntVector2
	size   int
	nx, ny int
	chunks []chunk
}

// coordRange returns the inclusive range of coordinates whose centres lie
// in [lo, hi].
func coordRange(lo, hi, cellSize float64) (int, int) {
	return int(math.Ceil(lo/cellSize - 1e-9)), int(math.Floor(hi/cellSize + 1e-9))
}

// partition splits area into size×size chunks in row-major order.
func partition(area orb.Bound, cellSize float64, size int) chunking {
	x0, x1 := coordRange(area.Min[0], area.Max[0], cellSize)
	y0, y1 := coordRange(area.Min[1], area.Max[1], cellSize)
	p := chunking{
		origin: navgrid.IntVector2{X: x0, Y: y0},
		size:   size,
		nx:     (x1-x0)/size + 1,
		ny:     (y1-y0)/size + 1,
	}
	for cy := 0; cy < p.ny; cy++ {
		for cx := 0; cx < p.nx; cx++ {
			lo := navgrid.IntVector2{X: x0 + cx*size, Y: y0 + cy*size}
			p.chunks = append(p.chunks, chunk{
				index: len(p.chunks),
				min:   lo,
				max:   navgrid.IntVector2{X: min(lo.X+size-1, x1), Y: min(lo.Y+size-1, y1)},
			})
		}
	}
	return p
}

// indexOf returns the chunk holding v, or -1.
func (p chunking) indexOf(v navgrid.IntVector2) int {
	d := v.Sub(p.origin)
	if d.X < 0 || d.Y < 0 {
		return -1
	}
	cx, cy := d.X/p.size, d.Y/p.size
	if cx >= p.nx || cy >= p.ny {
		return -1
	}
	return cy*p.nx + cx
}

// group buckets cells by chunk, preserving their order.
func (p chunking) group(cells []*navgrid.Cell) [][]*navgrid.Cell {
	out := make([][]*navgrid.Cell, len(p.chunks))
	for _, c := range cells {
		if i := p.indexOf(c.Coordinate()); i >= 0 {
			out[i] = append(out[i], c)
		}
	}
	return out
}

// runChunks calls fn for every chunk on at most workers goroutines and
// waits for all of them. The first error cancels the rest.
func runChunks(ctx context.Context, workers int, chunks []chunk, fn func(context.Context, chunk) error) error {
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for _, c := range chunks {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return fn(ctx, c)
		})
	}
	return eg.Wait()
}
