package gridbuild

import (
	"context"
	"math"
	"slices"

	"github.com/katalvlaran/terranav/geom"
	"github.com/katalvlaran/terranav/navgrid"
)

const (
	// maxColumnSteps bounds the raycasts spent on one coordinate column.
	maxColumnSteps = 4096
	// surfaceSkip moves the scan origin just under a surface already found.
	surfaceSkip = 1e-3
	// clearanceLift raises the clearance box off the cell's highest corner.
	clearanceLift = 0.05
)

// terrain creates the candidate cells of one chunk. Cells are not added to g.
func (b *Builder) terrain(ctx context.Context, g *navgrid.Grid, c chunk) ([]*navgrid.Cell, error) {
	var out []*navgrid.Cell
	for x := c.min.X; x <= c.max.X; x++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for y := c.min.Y; y <= c.max.Y; y++ {
			out = b.column(g, navgrid.IntVector2{X: x, Y: y}, out)
		}
	}
	return out, nil
}

// column scans one coordinate from MaxHeight down to MinHeight and appends
// a cell for every standable surface, highest first.
func (b *Builder) column(g *navgrid.Grid, coord navgrid.IntVector2, dst []*navgrid.Cell) []*navgrid.Cell {
	cfg := &b.cfg
	y := cfg.MaxHeight
	for i := 0; i < maxColumnSteps && y > cfg.MinHeight; i++ {
		hit := b.query.Raycast(geom.Ray{
			Origin:      g.CellCenter(coord, y),
			Direction:   geom.Down,
			MaxDistance: y - cfg.MinHeight,
		}, cfg.Filter)
		if !hit.Hit {
			break
		}
		if hit.StartedInside {
			y -= cfg.ProbeStep
			continue
		}
		h := g.ToLocal(hit.Position).Y
		if cell := b.candidate(g, coord, h, hit); cell != nil {
			dst = append(dst, cell)
		}
		y = h - surfaceSkip
	}
	return dst
}

// candidate validates the surface struck at height h and returns its cell,
// or nil when an agent cannot stand there.
func (b *Builder) candidate(g *navgrid.Grid, coord navgrid.IntVector2, h float64, hit geom.Hit) *navgrid.Cell {
	cfg := &b.cfg
	p := cfg.Params

	if hit.Normal.Y < math.Cos(p.StandableAngle*math.Pi/180)-1e-9 {
		return nil
	}
	if anyTag(hit.Tags, cfg.BlockTags) {
		return nil
	}

	// Corners are sampled from one step above the surface so that a step up
	// at the cell border is found, and a wall taller than a step is not.
	var corners [4]float64
	top := h + p.StepSize
	reach := p.StepSize + p.MaxHeightTolerance()
	for i := range corners {
		ch := b.query.Raycast(geom.Ray{
			Origin:      g.CornerPosition(coord, i, top),
			Direction:   geom.Down,
			MaxDistance: reach,
		}, cfg.Filter)
		switch {
		case ch.StartedInside:
			return nil
		case !ch.Hit:
			corners[i] = h
		default:
			corners[i] = g.ToLocal(ch.Position).Y
		}
	}

	cell, err := g.NewCell(coord, corners, b.cellTags(hit.Tags)...)
	if err != nil {
		return nil
	}
	if p.HeightClearance > 0 {
		box := geom.BoxAround(g.CellCenter(coord, cell.MaxHeight()), p.WidthClearance/2, clearanceLift, p.HeightClearance)
		if b.query.Overlaps(box, cfg.Filter) {
			return nil
		}
	}
	return cell
}

// cellTags filters the struck surface tags through the include and exclude
// lists.
func (b *Builder) cellTags(tags []string) []string {
	var out []string
	for _, t := range tags {
		if len(b.cfg.CellTagInclude) > 0 && !slices.Contains(b.cfg.CellTagInclude, t) {
			continue
		}
		if slices.Contains(b.cfg.CellTagExclude, t) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func anyTag(tags, set []string) bool {
	for _, t := range tags {
		if slices.Contains(set, t) {
			return true
		}
	}
	return false
}
