package navgrid_test

import (
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/terranav/navgrid"
)

// agent is a minimal navgrid.Occupant.
type agent struct {
	id      uuid.UUID
	version atomic.Uint64
}

func newAgent() *agent { return &agent{id: uuid.New()} }

func (a *agent) OccupantID() uuid.UUID    { return a.id }
func (a *agent) TransformVersion() uint64 { return a.version.Load() }
func (a *agent) move()                    { a.version.Add(1) }

// flatGrid returns a w×h grid of level cells at height 0.
func flatGrid(tb testing.TB, w, h int, opts ...navgrid.Option) *navgrid.Grid {
	tb.Helper()
	g, err := navgrid.NewGrid(navgrid.DefaultParams(), opts...)
	require.NoError(tb, err)
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			addCell(tb, g, x, y, [4]float64{})
		}
	}
	return g
}

func addCell(tb testing.TB, g *navgrid.Grid, x, y int, corners [4]float64, tags ...string) *navgrid.Cell {
	tb.Helper()
	c, err := g.NewCell(navgrid.IntVector2{X: x, Y: y}, corners, tags...)
	require.NoError(tb, err)
	require.NoError(tb, g.AddCell(c))
	return c
}

func level(h float64) [4]float64 { return [4]float64{h, h, h, h} }

func coords(cells []*navgrid.Cell) []navgrid.IntVector2 {
	out := make([]navgrid.IntVector2, len(cells))
	for i, c := range cells {
		out[i] = c.Coordinate()
	}
	return out
}
