package navgrid_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/terranav/navgrid"
)

//----------------------------------------------------------------------------//
// Construction
//----------------------------------------------------------------------------//

func TestParams_Validate(t *testing.T) {
	cases := []struct {
		name string
		mut  func(*navgrid.Params)
		ok   bool
	}{
		{"Default", func(*navgrid.Params) {}, true},
		{"ZeroCell", func(p *navgrid.Params) { p.CellSize = 0 }, false},
		{"SteepAngle", func(p *navgrid.Params) { p.StandableAngle = 90 }, false},
		{"NegativeStep", func(p *navgrid.Params) { p.StepSize = -1 }, false},
		{"NegativeClearance", func(p *navgrid.Params) { p.HeightClearance = -1 }, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := navgrid.DefaultParams()
			tc.mut(&p)
			err := p.Validate()
			if tc.ok {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, navgrid.ErrInvalidParams)
			_, err = navgrid.NewGrid(p)
			require.ErrorIs(t, err, navgrid.ErrInvalidParams)
		})
	}
}

// TestNewCell_Malformed checks the corner-spread invariant.
func TestNewCell_Malformed(t *testing.T) {
	g, err := navgrid.NewGrid(navgrid.DefaultParams())
	require.NoError(t, err)
	tol := g.Params().MaxHeightTolerance()

	_, err = g.NewCell(navgrid.IntVector2{}, [4]float64{0, 0, tol, 0})
	require.NoError(t, err)

	_, err = g.NewCell(navgrid.IntVector2{}, [4]float64{0, 0, tol + 0.01, 0})
	require.ErrorIs(t, err, navgrid.ErrMalformedCell)
}

func TestCell_Attributes(t *testing.T) {
	g := flatGrid(t, 1, 1)
	c, err := g.NewCell(navgrid.IntVector2{X: 2, Y: 3}, [4]float64{1, 2, 1, 2}, "water", navgrid.TagOccupied)
	require.NoError(t, err)
	assert.Equal(t, -1, c.ID())
	require.NoError(t, g.AddCell(c))

	assert.Equal(t, 1, c.ID())
	assert.InDelta(t, 1.5, c.Height(), 1e-12)
	assert.Equal(t, 1.0, c.MinHeight())
	assert.Equal(t, 2.0, c.MaxHeight())
	assert.Equal(t, []string{"water"}, c.Tags(), "occupied is never stored")
	assert.False(t, c.HasTag(navgrid.TagOccupied))
	assert.InDelta(t, 2.0, c.Position().X, 1e-12)
	assert.InDelta(t, 3.0, c.Position().Z, 1e-12)
	assert.InDelta(t, 2.5, c.CornerPosition(1).X, 1e-12)
	assert.InDelta(t, 2.5, c.CornerPosition(1).Z, 1e-12)
	assert.True(t, c.Equal(g.CellAt(c.Coordinate(), 1.5)))
}

//----------------------------------------------------------------------------//
// Adjacency
//----------------------------------------------------------------------------//

func TestNeighbours_Flat(t *testing.T) {
	g := flatGrid(t, 3, 3)
	centre := g.CellAt(navgrid.IntVector2{X: 1, Y: 1}, 0)
	corner := g.CellAt(navgrid.IntVector2{X: 0, Y: 0}, 0)
	require.NotNil(t, centre)
	require.NotNil(t, corner)

	assert.Len(t, centre.Neighbours(), 8)
	assert.ElementsMatch(t,
		[]navgrid.IntVector2{{X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}},
		coords(corner.Neighbours()))
}

// TestNeighbours_Wall checks that a height discontinuity splits adjacency
// while a shared sloped edge keeps it.
func TestNeighbours_Wall(t *testing.T) {
	g, err := navgrid.NewGrid(navgrid.DefaultParams())
	require.NoError(t, err)
	low := addCell(t, g, 0, 0, level(0))
	high := addCell(t, g, 1, 0, level(0.3))
	assert.False(t, low.IsNeighbour(high))
	assert.False(t, high.IsNeighbour(low))

	// a ramp cell whose +x corners meet the high cell's -x corners
	ramp := addCell(t, g, 1, 1, [4]float64{0, 0.3, 0.3, 0})
	up := addCell(t, g, 2, 1, level(0.3))
	assert.True(t, ramp.IsNeighbour(up))
	assert.True(t, up.IsNeighbour(ramp))
	// diagonal (0,0)->(1,1) shares only corner 0 of ramp, which is at 0
	assert.True(t, low.IsNeighbour(ramp))
	assert.False(t, ramp.IsNeighbour(ramp), "a cell is not its own neighbour")
}

// TestIsNeighbour_Symmetric checks symmetry over a noisy terrain.
func TestIsNeighbour_Symmetric(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	g, err := navgrid.NewGrid(navgrid.DefaultParams())
	require.NoError(t, err)

	const n = 12
	var cells []*navgrid.Cell
	for x := 0; x < n; x++ {
		for y := 0; y < n; y++ {
			var corners [4]float64
			for i := range corners {
				corners[i] = r.Float64() * 0.3
			}
			cells = append(cells, addCell(t, g, x, y, corners))
		}
	}
	for _, a := range cells {
		for _, b := range cells {
			require.Equal(t, a.IsNeighbour(b), b.IsNeighbour(a), "%s vs %s", a, b)
		}
		for _, b := range a.Neighbours() {
			require.Contains(t, b.Neighbours(), a)
		}
	}
}

func TestVerticalNeighbours(t *testing.T) {
	p := navgrid.DefaultParams()
	p.VerticalNeighbours = true
	g, err := navgrid.NewGrid(p)
	require.NoError(t, err)
	tol := p.MaxHeightTolerance()
	link := p.VerticalLinkHeight()
	require.Greater(t, link, tol)

	a := addCell(t, g, 0, 0, level(0))
	dup, err := g.NewCell(navgrid.IntVector2{}, level(0.99*tol))
	require.NoError(t, err)
	require.ErrorIs(t, g.AddCell(dup), navgrid.ErrDuplicateCell)

	b := addCell(t, g, 0, 0, level(1.01*tol))
	c := addCell(t, g, 0, 0, level(1.01*tol+link+0.01))
	assert.True(t, a.IsNeighbour(b))
	assert.True(t, b.IsNeighbour(a))
	assert.False(t, b.IsNeighbour(c), "gap just above the link height")
	assert.False(t, a.IsNeighbour(c))
	assert.Contains(t, a.Neighbours(), b)
	assert.Contains(t, b.Neighbours(), a)
	assert.Len(t, g.Islands(), 2)

	p.VerticalNeighbours = false
	g2, err := navgrid.NewGrid(p)
	require.NoError(t, err)
	d := addCell(t, g2, 0, 0, level(0))
	e := addCell(t, g2, 0, 0, level(1.01*tol))
	assert.False(t, d.IsNeighbour(e))
}

func TestVerticalLinkHeight(t *testing.T) {
	p := navgrid.DefaultParams()
	assert.InDelta(t, p.HeightClearance+p.MaxHeightTolerance(), p.VerticalLinkHeight(), 1e-12)

	p.HeightClearance = 0
	assert.InDelta(t, 2*p.MaxHeightTolerance(), p.VerticalLinkHeight(), 1e-12)
}

//----------------------------------------------------------------------------//
// Connections
//----------------------------------------------------------------------------//

func TestConnections_DirectedAndDangling(t *testing.T) {
	g, err := navgrid.NewGrid(navgrid.DefaultParams())
	require.NoError(t, err)
	top := addCell(t, g, 0, 0, level(3))
	bottom := addCell(t, g, 5, 0, level(0))
	require.NoError(t, g.Connect(top, bottom, "drop"))

	edges := top.NeighboursAndConnections()
	require.Len(t, edges, 1)
	assert.Equal(t, bottom, edges[0].To)
	assert.Equal(t, "drop", edges[0].Tag)
	assert.True(t, edges[0].Connection)
	assert.Empty(t, bottom.NeighboursAndConnections(), "no reverse edge")
	assert.Empty(t, top.AppendEdges(nil, false))

	require.NoError(t, g.RemoveCell(bottom))
	assert.Empty(t, top.NeighboursAndConnections(), "dangling connection skipped")
	assert.Len(t, top.Connections(), 1, "connection itself is retained")
	require.ErrorIs(t, g.Connect(top, bottom, "drop"), navgrid.ErrCellRemoved)
}

//----------------------------------------------------------------------------//
// Occupancy
//----------------------------------------------------------------------------//

func TestOccupancy(t *testing.T) {
	g := flatGrid(t, 1, 1)
	c := g.CellAt(navgrid.IntVector2{}, 0)
	a, b := newAgent(), newAgent()

	c.Occupy(a)
	assert.True(t, c.Occupied())
	assert.True(t, c.HasTag(navgrid.TagOccupied))
	assert.True(t, c.HasAnyTag([]string{"x", navgrid.TagOccupied}))
	assert.True(t, c.OccupiedBy(a))
	assert.False(t, c.OccupiedBy(b))

	a.move()
	assert.True(t, c.Occupied(), "flag survives a stale record")
	assert.False(t, c.OccupiedBy(a), "record invalid once the occupant moved")
	_, ok := c.Occupant()
	assert.False(t, ok)

	c.Vacate()
	assert.False(t, c.Occupied())

	require.NoError(t, g.TagCell(c, navgrid.TagOccupied))
	assert.True(t, c.Occupied())
	_, ok = c.Occupant()
	assert.False(t, ok, "anonymous occupancy")
	require.NoError(t, g.UntagCell(c, navgrid.TagOccupied))
	assert.False(t, c.Occupied())
}
