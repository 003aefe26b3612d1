package navstore

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/katalvlaran/terranav/navgrid"
)

type gridRecord struct {
	_msgpack struct{} `msgpack:",as_array"`

	ID          string
	Params      paramsRecord
	Origin      [3]float64
	Yaw         float64
	Cells       []cellRecord
	Connections []connRecord
}

type paramsRecord struct {
	_msgpack struct{} `msgpack:",as_array"`

	CellSize           float64
	StandableAngle     float64
	StepSize           float64
	WidthClearance     float64
	HeightClearance    float64
	VerticalNeighbours bool
}

type cellRecord struct {
	_msgpack struct{} `msgpack:",as_array"`

	X, Y    int
	Corners [4]float64
	Tags    []string
}

type connRecord struct {
	_msgpack struct{} `msgpack:",as_array"`

	From, To int
	Tag      string
}

// snapshot captures g as a record. Cells are listed by ascending ID, so
// restore hands out IDs in the same relative order and searches break ties
// the same way on the restored grid.
func snapshot(g *navgrid.Grid) gridRecord {
	p := g.Params()
	o := g.Origin()
	rec := gridRecord{
		ID: g.ID(),
		Params: paramsRecord{
			CellSize:           p.CellSize,
			StandableAngle:     p.StandableAngle,
			StepSize:           p.StepSize,
			WidthClearance:     p.WidthClearance,
			HeightClearance:    p.HeightClearance,
			VerticalNeighbours: p.VerticalNeighbours,
		},
		Origin: [3]float64{o.X, o.Y, o.Z},
		Yaw:    g.Yaw(),
	}

	cells := g.Cells()
	sort.Slice(cells, func(i, j int) bool { return cells[i].ID() < cells[j].ID() })
	index := make(map[*navgrid.Cell]int, len(cells))
	rec.Cells = make([]cellRecord, len(cells))
	for i, c := range cells {
		index[c] = i
		coord := c.Coordinate()
		rec.Cells[i] = cellRecord{X: coord.X, Y: coord.Y, Corners: c.Corners(), Tags: c.Tags()}
	}
	for _, c := range cells {
		for _, conn := range c.Connections() {
			to, ok := index[conn.To]
			if !ok {
				continue
			}
			rec.Connections = append(rec.Connections, connRecord{From: index[c], To: to, Tag: conn.Tag})
		}
	}
	return rec
}

// restore rebuilds a grid from rec.
func restore(rec gridRecord) (*navgrid.Grid, error) {
	params := navgrid.Params{
		CellSize:           rec.Params.CellSize,
		StandableAngle:     rec.Params.StandableAngle,
		StepSize:           rec.Params.StepSize,
		WidthClearance:     rec.Params.WidthClearance,
		HeightClearance:    rec.Params.HeightClearance,
		VerticalNeighbours: rec.Params.VerticalNeighbours,
	}
	if rec.ID == "" {
		return nil, fmt.Errorf("%w: empty grid id", ErrCorrupt)
	}
	if !finite(rec.Yaw) || !finite(rec.Origin[0]) || !finite(rec.Origin[1]) || !finite(rec.Origin[2]) {
		return nil, fmt.Errorf("%w: non-finite transform", ErrCorrupt)
	}
	g, err := navgrid.NewGrid(params,
		navgrid.WithID(rec.ID),
		navgrid.WithOrigin(vec(rec.Origin)),
		navgrid.WithYaw(rec.Yaw))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}

	cells := make([]*navgrid.Cell, len(rec.Cells))
	for i, cr := range rec.Cells {
		c, err := g.NewCell(navgrid.IntVector2{X: cr.X, Y: cr.Y}, cr.Corners, cr.Tags...)
		if err != nil {
			return nil, fmt.Errorf("%w: cell %d: %w", ErrCorrupt, i, err)
		}
		if err := g.AddCell(c); err != nil {
			return nil, fmt.Errorf("%w: cell %d: %w", ErrCorrupt, i, err)
		}
		cells[i] = c
	}
	for i, cr := range rec.Connections {
		if cr.From < 0 || cr.From >= len(cells) || cr.To < 0 || cr.To >= len(cells) {
			return nil, fmt.Errorf("%w: connection %d: cell index out of range", ErrCorrupt, i)
		}
		if err := g.Connect(cells[cr.From], cells[cr.To], cr.Tag); err != nil {
			return nil, fmt.Errorf("%w: connection %d: %w", ErrCorrupt, i, err)
		}
	}
	return g, nil
}

func vec(v [3]float64) r3.Vec { return r3.Vec{X: v[0], Y: v[1], Z: v[2]} }

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }
