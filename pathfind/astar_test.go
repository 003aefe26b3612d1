package pathfind_test

import (
	"context"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/katalvlaran/terranav/navgrid"
	"github.com/katalvlaran/terranav/pathfind"
)

//----------------------------------------------------------------------------//
// Scenarios
//----------------------------------------------------------------------------//

func TestRun_StraightLine(t *testing.T) {
	g := flatGrid(t, 5, 5)
	res := pathfind.Run(context.Background(), at(t, g, 0, 2, 0), at(t, g, 4, 2, 0))

	require.Equal(t, pathfind.StatusFound, res.Status)
	require.True(t, res.Found())
	assert.Len(t, res.Waypoints, 5)
	assert.InDelta(t, 4.0, res.Length(), 1e-9)
	for i, w := range res.Waypoints {
		assert.Equal(t, navgrid.IntVector2{X: i, Y: 2}, w.Cell.Coordinate())
		assert.Equal(t, r3.Vec{X: float64(i), Z: 2}, w.Position)
		assert.Empty(t, w.Tag)
	}
	assert.Positive(t, res.Expanded)
}

func TestRun_OccupiedCellDetour(t *testing.T) {
	g := flatGrid(t, 5, 5)
	start, target, middle := at(t, g, 0, 2, 0), at(t, g, 4, 2, 0), at(t, g, 2, 2, 0)
	middle.SetOccupied(true)

	through := pathfind.Run(context.Background(), start, target)
	require.Equal(t, pathfind.StatusFound, through.Status)
	assert.Contains(t, through.Cells(), middle, "occupancy is ignored unless excluded")

	res := pathfind.Run(context.Background(), start, target, pathfind.WithExcludeOccupied())
	require.Equal(t, pathfind.StatusFound, res.Status)
	requireValidPath(t, res, start, target)
	assert.NotContains(t, res.Cells(), middle)
	assert.InDelta(t, 2+2*math.Sqrt2, res.Length(), 1e-9)
}

func TestRun_CreatorExemption(t *testing.T) {
	g := flatGrid(t, 5, 5)
	start, target, middle := at(t, g, 0, 2, 0), at(t, g, 4, 2, 0), at(t, g, 2, 2, 0)
	self, other := newAgent(), newAgent()
	middle.Occupy(self)

	mine := pathfind.Run(context.Background(), start, target,
		pathfind.WithExcludeOccupied(), pathfind.WithCreator(self))
	require.Equal(t, pathfind.StatusFound, mine.Status)
	assert.Contains(t, mine.Cells(), middle)
	assert.InDelta(t, 4.0, mine.Length(), 1e-9)

	theirs := pathfind.Run(context.Background(), start, target,
		pathfind.WithExcludeOccupied(), pathfind.WithCreator(other))
	require.Equal(t, pathfind.StatusFound, theirs.Status)
	assert.NotContains(t, theirs.Cells(), middle)

	// a stale record no longer identifies the creator
	self.move()
	stale := pathfind.Run(context.Background(), start, target,
		pathfind.WithExcludeOccupied(), pathfind.WithCreator(self))
	require.Equal(t, pathfind.StatusFound, stale.Status)
	assert.NotContains(t, stale.Cells(), middle)
}

func TestRun_TagFilters(t *testing.T) {
	g := newGrid(t)
	for x := 0; x < 5; x++ {
		for y := 0; y < 3; y++ {
			tags := []string{"road"}
			if y == 1 && x == 2 {
				tags = []string{"road", "mud"}
			}
			if y == 0 {
				tags = nil
			}
			addCell(t, g, x, y, 0, tags...)
		}
	}
	start, target := at(t, g, 0, 1, 0), at(t, g, 4, 1, 0)

	noMud := pathfind.Run(context.Background(), start, target, pathfind.WithExcludeTags("mud"))
	require.Equal(t, pathfind.StatusFound, noMud.Status)
	assert.NotContains(t, noMud.Cells(), at(t, g, 2, 1, 0))

	roadOnly := pathfind.Run(context.Background(), start, target,
		pathfind.WithIncludeTags("road"), pathfind.WithExcludeTags("mud"))
	require.Equal(t, pathfind.StatusFound, roadOnly.Status)
	for _, c := range roadOnly.Cells() {
		assert.True(t, c.HasTag("road"), "%v", c)
		assert.False(t, c.HasTag("mud"), "%v", c)
	}
	assert.Equal(t, 2, roadOnly.Waypoints[2].Cell.Coordinate().Y)
}

func TestRun_MaxDistance(t *testing.T) {
	g := flatGrid(t, 7, 7)
	// wall across x=3 except at the far edge
	for y := 0; y < 6; y++ {
		require.NoError(t, g.RemoveCell(at(t, g, 3, y, 0)))
	}
	start, target := at(t, g, 2, 0, 0), at(t, g, 4, 0, 0)

	bounded := pathfind.Run(context.Background(), start, target, pathfind.WithMaxDistance(1))
	assert.Equal(t, pathfind.StatusNotFound, bounded.Status)

	free := pathfind.Run(context.Background(), start, target)
	require.Equal(t, pathfind.StatusFound, free.Status)
	requireValidPath(t, free, start, target)
}

//----------------------------------------------------------------------------//
// Connections
//----------------------------------------------------------------------------//

func TestRun_OneWayDrop(t *testing.T) {
	g := ledges(t)
	top, bottom := at(t, g, 0, 1, 3), at(t, g, 5, 1, 0)

	down := pathfind.Run(context.Background(), top, bottom)
	require.Equal(t, pathfind.StatusFound, down.Status)
	requireValidPath(t, down, top, bottom)
	assert.Equal(t, []navgrid.IntVector2{{X: 0, Y: 1}, {X: 1, Y: 1}, {X: 2, Y: 1}, {X: 3, Y: 1}, {X: 4, Y: 1}, {X: 5, Y: 1}}, coords(down.Waypoints))
	assert.Equal(t, "drop", down.Waypoints[3].Tag)
	assert.InDelta(t, 4+math.Sqrt(10), down.Length(), 1e-9)

	up := pathfind.Run(context.Background(), bottom, top)
	assert.Equal(t, pathfind.StatusNotFound, up.Status)
	assert.Empty(t, up.Waypoints)

	assert.Equal(t, pathfind.StatusNotFound,
		pathfind.Run(context.Background(), top, bottom, pathfind.WithoutConnections()).Status)
	assert.Equal(t, pathfind.StatusNotFound,
		pathfind.Run(context.Background(), top, bottom, pathfind.WithMaxDropHeight(2)).Status)
	assert.Equal(t, pathfind.StatusFound,
		pathfind.Run(context.Background(), top, bottom, pathfind.WithMaxDropHeight(3)).Status)
}

func TestRun_DanglingConnectionSkipped(t *testing.T) {
	g := ledges(t)
	require.NoError(t, g.RemoveCell(at(t, g, 3, 1, 0)))
	res := pathfind.Run(context.Background(), at(t, g, 0, 1, 3), at(t, g, 5, 1, 0))
	assert.Equal(t, pathfind.StatusNotFound, res.Status)
}

//----------------------------------------------------------------------------//
// Partial results
//----------------------------------------------------------------------------//

func TestRun_Partial(t *testing.T) {
	g := flatGrid(t, 5, 5)
	g.RemoveArea(orb.Bound{Min: orb.Point{3, 0}, Max: orb.Point{3, 4}})
	start, target := at(t, g, 0, 2, 0), at(t, g, 4, 2, 0)

	none := pathfind.Run(context.Background(), start, target)
	assert.Equal(t, pathfind.StatusNotFound, none.Status)
	assert.Empty(t, none.Waypoints)

	part := pathfind.Run(context.Background(), start, target, pathfind.WithPartial())
	require.Equal(t, pathfind.StatusPartial, part.Status)
	require.NotEmpty(t, part.Waypoints)
	last := part.Waypoints[len(part.Waypoints)-1].Cell
	assert.Equal(t, navgrid.IntVector2{X: 2, Y: 2}, last.Coordinate())
	requireValidPath(t, part, start, last)
}

func TestRun_PartialNeverWorseThanStart(t *testing.T) {
	g := flatGrid(t, 5, 5)
	g.RemoveArea(orb.Bound{Min: orb.Point{3, 0}, Max: orb.Point{3, 4}})
	start, target := at(t, g, 2, 2, 0), at(t, g, 4, 2, 0)

	res := pathfind.Run(context.Background(), start, target, pathfind.WithPartial())
	assert.Equal(t, pathfind.StatusNotFound, res.Status)
	assert.Empty(t, res.Waypoints)

	same := pathfind.Run(context.Background(), start, start, pathfind.WithPartial())
	assert.Equal(t, pathfind.StatusInvalid, same.Status)
	assert.Empty(t, same.Waypoints)
}

func TestRun_PartialMonotone(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		g := holeyGrid(t, 9, seed)
		cells := g.Cells()
		start, target := cells[0], cells[len(cells)-1]
		res := pathfind.Run(context.Background(), start, target, pathfind.WithPartial())
		switch res.Status {
		case pathfind.StatusFound:
			requireValidPath(t, res, start, target)
		case pathfind.StatusPartial:
			end := res.Waypoints[len(res.Waypoints)-1].Cell
			requireValidPath(t, res, start, end)
			assert.Less(t,
				r3.Norm(r3.Sub(end.LocalPosition(), target.LocalPosition())),
				r3.Norm(r3.Sub(start.LocalPosition(), target.LocalPosition())),
				"seed %d", seed)
		case pathfind.StatusNotFound:
			assert.Empty(t, res.Waypoints)
		default:
			t.Fatalf("seed %d: unexpected status %v", seed, res.Status)
		}
	}
}

//----------------------------------------------------------------------------//
// Properties
//----------------------------------------------------------------------------//

func TestRun_ValidAndDeterministic(t *testing.T) {
	for seed := int64(1); seed <= 25; seed++ {
		g := holeyGrid(t, 12, seed)
		cells := g.Cells()
		start, target := cells[0], cells[len(cells)-1]

		first := pathfind.Run(context.Background(), start, target)
		second := pathfind.Run(context.Background(), start, target)
		require.Equal(t, first.Status, second.Status, "seed %d", seed)
		if diff := cmp.Diff(coords(first.Waypoints), coords(second.Waypoints)); diff != "" {
			t.Fatalf("seed %d: paths differ (-first +second):\n%s", seed, diff)
		}
		if first.Status == pathfind.StatusFound {
			requireValidPath(t, first, start, target)
		}
	}
}

func TestRun_Invalid(t *testing.T) {
	g := flatGrid(t, 3, 3)
	other := flatGrid(t, 3, 3)
	a, b := at(t, g, 0, 0, 0), at(t, g, 2, 2, 0)

	assert.Equal(t, pathfind.StatusInvalid, pathfind.Run(context.Background(), nil, b).Status)
	assert.Equal(t, pathfind.StatusInvalid, pathfind.Run(context.Background(), a, nil).Status)
	assert.Equal(t, pathfind.StatusInvalid, pathfind.Run(context.Background(), a, a).Status)
	assert.Equal(t, pathfind.StatusInvalid,
		pathfind.Run(context.Background(), a, at(t, other, 2, 2, 0)).Status)

	require.NoError(t, g.RemoveCell(b))
	assert.Equal(t, pathfind.StatusInvalid, pathfind.Run(context.Background(), a, b).Status)
}

func TestRun_Cancelled(t *testing.T) {
	g := flatGrid(t, 20, 20)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := pathfind.Run(ctx, at(t, g, 0, 0, 0), at(t, g, 19, 19, 0))
	assert.Equal(t, pathfind.StatusCancelled, res.Status)
	assert.Empty(t, res.Waypoints)
}

func TestRun_ClosedGrid(t *testing.T) {
	g := flatGrid(t, 3, 3)
	a, b := at(t, g, 0, 0, 0), at(t, g, 2, 2, 0)
	g.Close()
	assert.Equal(t, pathfind.StatusInvalid, pathfind.Run(context.Background(), a, b).Status)
}

//----------------------------------------------------------------------------//
// FindPath
//----------------------------------------------------------------------------//

func TestFindPath(t *testing.T) {
	_, err := pathfind.FindPath(context.Background(), nil, r3.Vec{}, r3.Vec{X: 1})
	require.ErrorIs(t, err, pathfind.ErrNilGrid)

	g := flatGrid(t, 5, 5)
	res, err := pathfind.FindPath(context.Background(), g, r3.Vec{X: 0.2, Y: 0.4, Z: 2.1}, r3.Vec{X: 9, Z: 2})
	require.NoError(t, err)
	require.Equal(t, pathfind.StatusFound, res.Status)
	assert.Equal(t, navgrid.IntVector2{X: 0, Y: 2}, res.Waypoints[0].Cell.Coordinate())
	assert.Equal(t, navgrid.IntVector2{X: 4, Y: 2}, res.Waypoints[len(res.Waypoints)-1].Cell.Coordinate())

	empty := newGrid(t)
	res, err = pathfind.FindPath(context.Background(), empty, r3.Vec{}, r3.Vec{X: 1})
	require.NoError(t, err)
	assert.Equal(t, pathfind.StatusInvalid, res.Status)
}
