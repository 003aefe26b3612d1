package gridbuild

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/katalvlaran/terranav/geom"
	"github.com/katalvlaran/terranav/navgrid"
)

// openSides returns the orthogonal offsets in which c has no neighbour.
func openSides(c *navgrid.Cell) []navgrid.IntVector2 {
	ns := c.Neighbours()
	var open []navgrid.IntVector2
	for _, off := range navgrid.Offsets4 {
		want := c.Coordinate().Add(off)
		found := false
		for _, n := range ns {
			if n.Coordinate() == want {
				found = true
				break
			}
		}
		if !found {
			open = append(open, off)
		}
	}
	return open
}

// edgeCells returns the cells with at least one open side.
func edgeCells(cells []*navgrid.Cell) []*navgrid.Cell {
	var out []*navgrid.Cell
	for _, c := range cells {
		if len(openSides(c)) > 0 {
			out = append(out, c)
		}
	}
	return out
}

// drops appends a drop link from c over each open side whose adjacent
// column holds a lower cell within the drop height. The highest such cell is
// the landing.
func (b *Builder) drops(g *navgrid.Grid, c *navgrid.Cell, dst []link) []link {
	def := b.cfg.Drop
	p := b.cfg.Params
	for _, off := range openSides(c) {
		coord := c.Coordinate().Add(off)
		var land *navgrid.Cell
		for _, t := range g.CellsAt(coord) {
			fall := c.Height() - t.Height()
			if fall > p.StepSize && fall <= def.MaxHeightDown {
				land = t
			}
		}
		if land == nil || c.IsNeighbour(land) {
			continue
		}
		// the fall column must be free down to the landing surface
		top := c.MaxHeight() + p.StepSize
		hit := b.query.Raycast(geom.Ray{
			Origin:      g.CellCenter(coord, top),
			Direction:   geom.Down,
			MaxDistance: top - land.MinHeight() + p.StepSize,
		}, b.cfg.Filter)
		if !hit.Hit || hit.StartedInside {
			continue
		}
		if h := g.ToLocal(hit.Position).Y; h > land.MaxHeight()+p.StepSize {
			continue
		}
		dst = append(dst, link{from: c, to: land, tag: def.Tag})
	}
	return dst
}

// jumps appends a jump link from c across each open side to the nearest
// cell within the jump limits. Landing candidates start two cells out; a
// cell at jump level in between means there is no gap to jump.
func (b *Builder) jumps(g *navgrid.Grid, c *navgrid.Cell, dst []link) []link {
	def := b.cfg.Jump
	p := b.cfg.Params
	maxK := int(math.Floor(def.MaxDistance/p.CellSize + 1e-9))
	from := c.LocalPosition()
	los := geom.LineOfSight{Query: b.query, Filter: b.cfg.Filter, Lift: jumpLift(p)}

	for _, off := range openSides(c) {
	scan:
		for k := 1; k <= maxK; k++ {
			coord := c.Coordinate().Add(off.Scale(k))
			if k == 1 {
				if g.CellAt(coord, c.Height()) != nil {
					break scan
				}
				continue
			}
			var land *navgrid.Cell
			for _, t := range g.CellsAt(coord) {
				dh := t.Height() - c.Height()
				if dh > def.MaxHeightUp || -dh > def.MaxHeightDown {
					continue
				}
				if land == nil || math.Abs(dh) < math.Abs(land.Height()-c.Height()) {
					land = t
				}
			}
			if land == nil {
				if g.CellAt(coord, c.Height()) != nil {
					break scan
				}
				continue
			}
			to := land.LocalPosition()
			if planar.Distance(orb.Point{from.X, from.Z}, orb.Point{to.X, to.Z}) > def.MaxDistance+1e-9 {
				break scan
			}
			if los.Clear(c.Position(), land.Position()) {
				dst = append(dst, link{from: c, to: land, tag: def.Tag})
			}
			break scan
		}
	}
	return dst
}

// jumpLift is the height above the surface at which a jump arc is checked.
func jumpLift(p navgrid.Params) float64 {
	if p.HeightClearance > 0 {
		return p.HeightClearance / 2
	}
	return p.StepSize
}
