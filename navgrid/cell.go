package navgrid

import (
	"fmt"
	"math"
	"sort"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/zyedidia/generic/mapset"
	"gonum.org/v1/gonum/spatial/r3"
)

// Connection is a directed edge that does not follow plain adjacency:
// a drop off a ledge, a jump across a gap, a ladder.
//
// Connections are created by Grid.Connect and never imply the reverse
// direction. A connection whose To cell was removed stays on From but is
// skipped by traversal.
type Connection struct {
	// From is the cell the connection leaves; it owns the connection.
	From *Cell
	// To is the destination, possibly removed since Connect.
	To *Cell
	// Tag names the kind of move ("drop", "jump") and is copied onto the
	// waypoint a search reaches through it.
	Tag string
}

// Edge is one traversable step out of a cell, as yielded by
// NeighboursAndConnections and AppendEdges. To is always a live cell.
type Edge struct {
	// To is the cell the step reaches.
	To *Cell
	// Tag is empty for walking steps and the connection tag otherwise.
	Tag string
	// Connection is true for edges taken from Cell.Connections and false
	// for walking neighbours. Searches apply their drop limit only to
	// connection edges.
	Connection bool
}

// occupancy is the occupant record captured by Cell.Occupy. It is valid
// while the occupant still reports the captured transform version.
type occupancy struct {
	occupant Occupant
	id       uuid.UUID
	version  uint64
}

// Cell is one walkable tile of a grid.
//
// Corner heights are in grid-local space, indexed
// [0]=(-x,-y) [1]=(+x,-y) [2]=(+x,+y) [3]=(-x,+y).
type Cell struct {
	grid    *Grid
	id      int
	coord   IntVector2
	corners [4]float64
	height  float64
	minH    float64
	maxH    float64

	// guarded by grid.mu
	tags  mapset.Set[string]
	conns []Connection

	occupied atomic.Bool
	occupant atomic.Pointer[occupancy]
	removed  atomic.Bool
}

// cornerSigns maps a corner index to its (x,y) half-cell offsets.
var cornerSigns = [4][2]int{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}

func cornerIndex(sx, sy int) int {
	for i, s := range cornerSigns {
		if s[0] == sx && s[1] == sy {
			return i
		}
	}
	return -1
}

// Grid returns the owning grid.
func (c *Cell) Grid() *Grid { return c.grid }

// ID returns the dense index of c within its grid, or -1 before AddCell.
func (c *Cell) ID() int { return c.id }

// Coordinate returns the grid coordinate.
func (c *Cell) Coordinate() IntVector2 { return c.coord }

// Corners returns the four corner heights.
func (c *Cell) Corners() [4]float64 { return c.corners }

// Height returns the mean corner height.
func (c *Cell) Height() float64 { return c.height }

// MinHeight returns the lowest corner height.
func (c *Cell) MinHeight() float64 { return c.minH }

// MaxHeight returns the highest corner height.
func (c *Cell) MaxHeight() float64 { return c.maxH }

// LocalPosition returns the cell centre in grid-local space.
func (c *Cell) LocalPosition() r3.Vec {
	s := c.grid.params.CellSize
	return r3.Vec{X: float64(c.coord.X) * s, Y: c.height, Z: float64(c.coord.Y) * s}
}

// Position returns the cell centre in world space.
func (c *Cell) Position() r3.Vec { return c.grid.ToWorld(c.LocalPosition()) }

// CornerPosition returns corner i in world space.
func (c *Cell) CornerPosition(i int) r3.Vec {
	return c.grid.ToWorld(c.grid.cornerLocal(c.coord, i, c.corners[i]))
}

// Removed reports whether c was removed from its grid.
func (c *Cell) Removed() bool { return c.removed.Load() }

// Equal reports whether c and o are the same place on the same grid.
func (c *Cell) Equal(o *Cell) bool {
	if c == o {
		return true
	}
	if c == nil || o == nil {
		return false
	}
	return c.grid == o.grid && c.coord == o.coord && math.Abs(c.height-o.height) < 1e-6
}

// String formats c as "cell(x,y)@height".
func (c *Cell) String() string {
	return fmt.Sprintf("cell%s@%.3f", c.coord, c.height)
}

// Tags returns the stored tags in sorted order. TagOccupied is not included.
func (c *Cell) Tags() []string {
	c.grid.mu.RLock()
	defer c.grid.mu.RUnlock()
	return c.tagsLocked()
}

func (c *Cell) tagsLocked() []string {
	out := make([]string, 0, c.tags.Size())
	c.tags.Each(func(t string) { out = append(out, t) })
	sort.Strings(out)
	return out
}

// HasTag reports whether c carries tag. TagOccupied reflects the
// occupancy flag.
func (c *Cell) HasTag(tag string) bool {
	if tag == TagOccupied {
		return c.Occupied()
	}
	c.grid.mu.RLock()
	defer c.grid.mu.RUnlock()
	return c.tags.Has(tag)
}

// HasAnyTag reports whether c carries at least one of tags.
func (c *Cell) HasAnyTag(tags []string) bool {
	if len(tags) == 0 {
		return false
	}
	c.grid.mu.RLock()
	defer c.grid.mu.RUnlock()
	for _, t := range tags {
		if t == TagOccupied {
			if c.Occupied() {
				return true
			}
			continue
		}
		if c.tags.Has(t) {
			return true
		}
	}
	return false
}

// Occupied reports the occupancy flag.
func (c *Cell) Occupied() bool { return c.occupied.Load() }

// SetOccupied sets the occupancy flag without recording an occupant.
// Clearing the flag also drops any occupant record.
func (c *Cell) SetOccupied(v bool) {
	if !v {
		c.occupant.Store(nil)
	}
	c.occupied.Store(v)
}

// Occupy marks c occupied by o, capturing o's current transform version.
func (c *Cell) Occupy(o Occupant) {
	if o == nil {
		c.SetOccupied(true)
		return
	}
	c.occupant.Store(&occupancy{occupant: o, id: o.OccupantID(), version: o.TransformVersion()})
	c.occupied.Store(true)
}

// Vacate clears occupancy.
func (c *Cell) Vacate() { c.SetOccupied(false) }

// Occupant returns the recorded occupant while the record is still valid,
// that is while the occupant has not moved since Occupy.
func (c *Cell) Occupant() (Occupant, bool) {
	if !c.occupied.Load() {
		return nil, false
	}
	rec := c.occupant.Load()
	if rec == nil || rec.occupant.TransformVersion() != rec.version {
		return nil, false
	}
	return rec.occupant, true
}

// OccupiedBy reports whether o is the valid recorded occupant of c.
func (c *Cell) OccupiedBy(o Occupant) bool {
	if o == nil {
		return false
	}
	cur, ok := c.Occupant()
	return ok && cur.OccupantID() == o.OccupantID()
}

// Connections returns a copy of the outgoing connections, including any
// that point at removed cells.
func (c *Cell) Connections() []Connection {
	c.grid.mu.RLock()
	defer c.grid.mu.RUnlock()
	return append([]Connection(nil), c.conns...)
}

// IsNeighbour reports whether c and o are adjacent and continuous.
//
// Cells on 8-adjacent coordinates must agree within NeighbourHeightTolerance
// on every corner they share. Cells on the same coordinate are neighbours
// only when the grid enables VerticalNeighbours and their heights are within
// Params.VerticalLinkHeight.
//
// Complexity: O(1).
func (c *Cell) IsNeighbour(o *Cell) bool {
	if c == nil || o == nil || c == o || c.grid != o.grid {
		return false
	}
	d := o.coord.Sub(c.coord)
	switch d.ChebyshevDistance(IntVector2{}) {
	case 0:
		p := c.grid.params
		return p.VerticalNeighbours && math.Abs(c.height-o.height) <= p.VerticalLinkHeight()
	case 1:
	default:
		return false
	}
	shared := 0
	for k, s := range cornerSigns {
		m := cornerIndex(s[0]-2*d.X, s[1]-2*d.Y)
		if m < 0 {
			continue
		}
		shared++
		if math.Abs(c.corners[k]-o.corners[m]) > NeighbourHeightTolerance {
			return false
		}
	}
	return shared > 0
}

// Neighbours returns the adjacent cells reachable by walking, in Offsets8
// order followed by stacked cells when VerticalNeighbours is set.
//
// Complexity: O(8·k) for buckets of k stacked cells.
func (c *Cell) Neighbours() []*Cell {
	c.grid.mu.RLock()
	defer c.grid.mu.RUnlock()
	return c.neighboursLocked(nil)
}

func (c *Cell) neighboursLocked(dst []*Cell) []*Cell {
	if c.removed.Load() {
		return dst
	}
	for _, coord := range c.coord.Neighbours8() {
		if n := c.grid.cellAtLocked(coord, c.height); n != nil && c.IsNeighbour(n) {
			dst = append(dst, n)
		}
	}
	if c.grid.params.VerticalNeighbours {
		for _, n := range c.grid.buckets[c.coord] {
			if c.IsNeighbour(n) {
				dst = append(dst, n)
			}
		}
	}
	return dst
}

// NeighboursAndConnections returns walking neighbours followed by the
// connections whose destination is still part of the grid.
func (c *Cell) NeighboursAndConnections() []Edge {
	c.grid.mu.RLock()
	defer c.grid.mu.RUnlock()
	return c.edgesLocked(nil, true)
}

// AppendEdges appends c's edges to dst, skipping connections when
// withConnections is false. It lets hot loops reuse a buffer.
func (c *Cell) AppendEdges(dst []Edge, withConnections bool) []Edge {
	c.grid.mu.RLock()
	defer c.grid.mu.RUnlock()
	return c.edgesLocked(dst, withConnections)
}

func (c *Cell) edgesLocked(dst []Edge, withConnections bool) []Edge {
	if c.removed.Load() {
		return dst
	}
	var buf [9]*Cell
	for _, n := range c.neighboursLocked(buf[:0]) {
		dst = append(dst, Edge{To: n})
	}
	if !withConnections {
		return dst
	}
	for _, conn := range c.conns {
		if conn.To == nil || conn.To.removed.Load() {
			continue
		}
		dst = append(dst, Edge{To: conn.To, Tag: conn.Tag, Connection: true})
	}
	return dst
}
