package pathfind

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/katalvlaran/terranav/geom"
	"github.com/katalvlaran/terranav/navgrid"
)

// GridLineOfSight answers line-of-sight queries from the grid alone: a
// segment is clear when the cells under it form a walkable chain. Options
// apply the same tag and occupancy filter as the search.
type GridLineOfSight struct {
	Grid    *navgrid.Grid
	Options Options
}

var _ LineOfSight = GridLineOfSight{}

// NewGridLineOfSight returns a GridLineOfSight filtering cells like a search
// run with opts.
func NewGridLineOfSight(g *navgrid.Grid, opts ...Option) GridLineOfSight {
	return GridLineOfSight{Grid: g, Options: resolve(opts)}
}

// Clear samples the segment every quarter cell. Each sample must land on a
// cell that passes the filter and is the previous sample's cell or one of
// its neighbours.
//
// Complexity: O(d / CellSize) lookups for a segment of length d.
func (l GridLineOfSight) Clear(from, to r3.Vec) bool {
	if l.Grid == nil {
		return false
	}
	f := newFilter(l.Options)
	step := l.Grid.Params().CellSize / 4
	samples := int(math.Ceil(geom.Distance(from, to)/step)) + 1

	var prev *navgrid.Cell
	for i := 0; i < samples; i++ {
		t := 1.0
		if samples > 1 {
			t = float64(i) / float64(samples-1)
		}
		c := l.Grid.CellAtPosition(geom.Lerp(from, to, t), false, navgrid.LookupBelow)
		if c == nil {
			return false
		}
		if c == prev {
			continue
		}
		if prev != nil && !prev.IsNeighbour(c) {
			return false
		}
		if prev != nil && !f.passable(c) {
			return false
		}
		prev = c
	}
	return true
}
