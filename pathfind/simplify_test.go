package pathfind_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/katalvlaran/terranav/geom"
	"github.com/katalvlaran/terranav/navgrid"
	"github.com/katalvlaran/terranav/pathfind"
)

func clearAll(_, _ r3.Vec) bool { return true }

func TestSimplify_StraightLine(t *testing.T) {
	g := flatGrid(t, 5, 5)
	res := pathfind.Run(context.Background(), at(t, g, 0, 2, 0), at(t, g, 4, 2, 0))
	require.Len(t, res.Waypoints, 5)
	_ = res.Length()

	removed := res.Simplify(pathfind.NewGridLineOfSight(g))
	assert.Equal(t, 3, removed)
	assert.Equal(t, []navgrid.IntVector2{{X: 0, Y: 2}, {X: 4, Y: 2}}, coords(res.Waypoints))
	assert.InDelta(t, 4.0, res.Length(), 1e-9)
}

func TestSimplify_WindowAndIterations(t *testing.T) {
	g := flatGrid(t, 5, 5)
	start, target := at(t, g, 0, 2, 0), at(t, g, 4, 2, 0)

	one := pathfind.Run(context.Background(), start, target)
	assert.Equal(t, 2, one.Simplify(losFunc(clearAll), pathfind.WithWindow(2), pathfind.WithIterations(1)))
	assert.Equal(t, []navgrid.IntVector2{{X: 0, Y: 2}, {X: 2, Y: 2}, {X: 4, Y: 2}}, coords(one.Waypoints))

	three := pathfind.Run(context.Background(), start, target)
	assert.Equal(t, 3, three.Simplify(losFunc(clearAll), pathfind.WithWindow(2)))
	assert.Len(t, three.Waypoints, 2)
}

func TestSimplify_KeepsTaggedWaypoints(t *testing.T) {
	g := ledges(t)
	res := pathfind.Run(context.Background(), at(t, g, 0, 1, 3), at(t, g, 5, 1, 0))
	require.Len(t, res.Waypoints, 6)

	assert.Equal(t, 2, res.Simplify(losFunc(clearAll)))
	assert.Equal(t, []navgrid.IntVector2{{X: 0, Y: 1}, {X: 2, Y: 1}, {X: 3, Y: 1}, {X: 5, Y: 1}}, coords(res.Waypoints))
	assert.Equal(t, "drop", res.Waypoints[2].Tag)
}

func TestSimplify_BlockedKeepsEverything(t *testing.T) {
	g := flatGrid(t, 5, 5)
	res := pathfind.Run(context.Background(), at(t, g, 0, 0, 0), at(t, g, 4, 0, 0))
	before := coords(res.Waypoints)

	assert.Zero(t, res.Simplify(losFunc(func(_, _ r3.Vec) bool { return false })))
	assert.Equal(t, before, coords(res.Waypoints))
	assert.Zero(t, res.Simplify(nil))
}

func TestSimplify_GeometryLineOfSight(t *testing.T) {
	g := flatGrid(t, 5, 5)
	middle := at(t, g, 2, 2, 0)
	middle.SetOccupied(true)
	start, target := at(t, g, 0, 2, 0), at(t, g, 4, 2, 0)
	res := pathfind.Run(context.Background(), start, target, pathfind.WithExcludeOccupied())
	require.Equal(t, pathfind.StatusFound, res.Status)

	pillar := geom.Solid{Box: r3.Box{Min: r3.Vec{X: 1.7, Y: 0, Z: 1.7}, Max: r3.Vec{X: 2.3, Y: 2, Z: 2.3}}}
	los := geom.LineOfSight{Query: geom.NewBoxWorld(pillar), Lift: 0.5}

	res.Simplify(los)
	require.GreaterOrEqual(t, len(res.Waypoints), 3, "the pillar blocks the direct line")
	assert.Same(t, start, res.Waypoints[0].Cell)
	assert.Same(t, target, res.Waypoints[len(res.Waypoints)-1].Cell)
	for i := 1; i < len(res.Waypoints); i++ {
		assert.True(t, los.Clear(res.Waypoints[i-1].Position, res.Waypoints[i].Position), "segment %d", i)
	}
}

func TestGridLineOfSight(t *testing.T) {
	g := flatGrid(t, 5, 5)
	los := pathfind.NewGridLineOfSight(g, pathfind.WithExcludeOccupied())

	assert.True(t, los.Clear(r3.Vec{X: 0, Z: 0}, r3.Vec{X: 4, Z: 3}))
	assert.False(t, los.Clear(r3.Vec{X: 0, Z: 0}, r3.Vec{X: 6, Z: 0}), "leaves the grid")

	at(t, g, 2, 0, 0).SetOccupied(true)
	assert.False(t, los.Clear(r3.Vec{X: 0, Z: 0}, r3.Vec{X: 4, Z: 0}))
	assert.True(t, los.Clear(r3.Vec{X: 0, Z: 1}, r3.Vec{X: 4, Z: 1}))

	require.NoError(t, g.RemoveCell(at(t, g, 2, 1, 0)))
	assert.False(t, los.Clear(r3.Vec{X: 0, Z: 1}, r3.Vec{X: 4, Z: 1}), "hole")

	assert.False(t, pathfind.GridLineOfSight{}.Clear(r3.Vec{}, r3.Vec{X: 1}))
}

func TestGridLineOfSight_StepBreaksSight(t *testing.T) {
	g := ledges(t)
	los := pathfind.NewGridLineOfSight(g)
	assert.True(t, los.Clear(r3.Vec{X: 0, Y: 3, Z: 1}, r3.Vec{X: 2, Y: 3, Z: 1}))
	assert.False(t, los.Clear(r3.Vec{X: 0, Y: 3, Z: 1}, r3.Vec{X: 5, Y: 0, Z: 1}), "the drop is not walkable")
}

func TestSimplifyOptions_Panics(t *testing.T) {
	assert.Panics(t, func() { pathfind.WithWindow(1) })
	assert.Panics(t, func() { pathfind.WithIterations(0) })
}
