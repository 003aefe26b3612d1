package pathfind_test

import (
	"math/rand"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/katalvlaran/terranav/navgrid"
	"github.com/katalvlaran/terranav/pathfind"
)

type agent struct {
	id      uuid.UUID
	version atomic.Uint64
}

func newAgent() *agent { return &agent{id: uuid.New()} }

func (a *agent) OccupantID() uuid.UUID    { return a.id }
func (a *agent) TransformVersion() uint64 { return a.version.Load() }
func (a *agent) move()                    { a.version.Add(1) }

func newGrid(tb testing.TB) *navgrid.Grid {
	tb.Helper()
	g, err := navgrid.NewGrid(navgrid.DefaultParams())
	require.NoError(tb, err)
	return g
}

// flatGrid returns a w×h grid of level cells at height 0.
func flatGrid(tb testing.TB, w, h int) *navgrid.Grid {
	tb.Helper()
	g := newGrid(tb)
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			addCell(tb, g, x, y, 0)
		}
	}
	return g
}

func addCell(tb testing.TB, g *navgrid.Grid, x, y int, h float64, tags ...string) *navgrid.Cell {
	tb.Helper()
	c, err := g.NewCell(navgrid.IntVector2{X: x, Y: y}, [4]float64{h, h, h, h}, tags...)
	require.NoError(tb, err)
	require.NoError(tb, g.AddCell(c))
	return c
}

func at(tb testing.TB, g *navgrid.Grid, x, y int, h float64) *navgrid.Cell {
	tb.Helper()
	c := g.CellAt(navgrid.IntVector2{X: x, Y: y}, h)
	require.NotNil(tb, c, "no cell at (%d,%d)@%v", x, y, h)
	return c
}

func coords(wps []pathfind.Waypoint) []navgrid.IntVector2 {
	out := make([]navgrid.IntVector2, len(wps))
	for i, w := range wps {
		out[i] = w.Cell.Coordinate()
	}
	return out
}

// ledges returns two 3×3 platforms: x 0..2 at height 3 and x 3..5 at height 0,
// joined by a single one-way drop from (2,1) to (3,1).
func ledges(tb testing.TB) *navgrid.Grid {
	tb.Helper()
	g := newGrid(tb)
	for x := 0; x < 6; x++ {
		h := 0.0
		if x < 3 {
			h = 3
		}
		for y := 0; y < 3; y++ {
			addCell(tb, g, x, y, h)
		}
	}
	require.NoError(tb, g.Connect(at(tb, g, 2, 1, 3), at(tb, g, 3, 1, 0), "drop"))
	return g
}

// holeyGrid returns an n×n flat grid with roughly a quarter of the cells
// removed, seeded for reproducibility.
func holeyGrid(tb testing.TB, n int, seed int64) *navgrid.Grid {
	tb.Helper()
	g := flatGrid(tb, n, n)
	rng := rand.New(rand.NewSource(seed))
	for _, c := range g.Cells() {
		if rng.Intn(4) == 0 {
			require.NoError(tb, g.RemoveCell(c))
		}
	}
	return g
}

// requireValidPath checks that consecutive waypoints are neighbours or
// joined by a connection carrying the waypoint's tag.
func requireValidPath(tb testing.TB, res pathfind.Result, start, end *navgrid.Cell) {
	tb.Helper()
	require.NotEmpty(tb, res.Waypoints)
	require.Same(tb, start, res.Waypoints[0].Cell)
	require.Same(tb, end, res.Waypoints[len(res.Waypoints)-1].Cell)
	for i := 1; i < len(res.Waypoints); i++ {
		from, to := res.Waypoints[i-1].Cell, res.Waypoints[i].Cell
		if res.Waypoints[i].Tag == "" && from.IsNeighbour(to) {
			continue
		}
		linked := false
		for _, conn := range from.Connections() {
			if conn.To == to && conn.Tag == res.Waypoints[i].Tag {
				linked = true
			}
		}
		require.True(tb, linked, "step %d: %v -> %v is neither a neighbour nor a connection", i, from, to)
	}
}

// losFunc adapts a function to pathfind.LineOfSight.
type losFunc func(from, to r3.Vec) bool

func (f losFunc) Clear(from, to r3.Vec) bool { return f(from, to) }
