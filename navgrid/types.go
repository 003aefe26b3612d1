package navgrid

import (
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
)

// Sentinel errors for navgrid operations.
var (
	// ErrInvalidParams indicates grid parameters that cannot describe a grid.
	ErrInvalidParams = errors.New("navgrid: invalid grid parameters")

	// ErrMalformedCell indicates corner heights that violate the grid's
	// standability and step tolerances.
	ErrMalformedCell = errors.New("navgrid: malformed cell corners")

	// ErrDuplicateCell indicates a cell whose height collides with an existing
	// cell on the same coordinate.
	ErrDuplicateCell = errors.New("navgrid: duplicate cell")

	// ErrForeignCell indicates a cell that belongs to a different grid.
	ErrForeignCell = errors.New("navgrid: cell belongs to another grid")

	// ErrCellRemoved indicates an operation on a cell already removed.
	ErrCellRemoved = errors.New("navgrid: cell removed")

	// ErrGridClosed indicates an edit on a grid that was torn down.
	ErrGridClosed = errors.New("navgrid: grid closed")

	// ErrGridExists indicates a registry already holds a grid with that ID.
	ErrGridExists = errors.New("navgrid: grid already registered")

	// ErrGridNotFound indicates a registry has no grid with that ID.
	ErrGridNotFound = errors.New("navgrid: grid not found")
)

// Well-known cell tags.
const (
	// TagOccupied is reported by Cell.HasTag while the cell is occupied.
	// It is never stored in the tag set.
	TagOccupied = "occupied"
	// TagEdge marks cells missing at least one orthogonal neighbour.
	TagEdge = "edge"
)

// NeighbourHeightTolerance is the largest corner height difference along a
// shared edge for two adjacent cells to count as neighbours.
const NeighbourHeightTolerance = 0.1

// IntVector2 is an integer grid coordinate.
type IntVector2 struct {
	X, Y int
}

// Add returns v+o.
func (v IntVector2) Add(o IntVector2) IntVector2 { return IntVector2{v.X + o.X, v.Y + o.Y} }

// Sub returns v-o.
func (v IntVector2) Sub(o IntVector2) IntVector2 { return IntVector2{v.X - o.X, v.Y - o.Y} }

// Scale returns v*k.
func (v IntVector2) Scale(k int) IntVector2 { return IntVector2{v.X * k, v.Y * k} }

// ChebyshevDistance returns max(|dx|,|dy|).
func (v IntVector2) ChebyshevDistance(o IntVector2) int {
	dx, dy := v.X-o.X, v.Y-o.Y
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}
	return max(dx, dy)
}

// String formats v as "(x,y)".
func (v IntVector2) String() string { return fmt.Sprintf("(%d,%d)", v.X, v.Y) }

// Less orders coordinates by X then Y.
func (v IntVector2) Less(o IntVector2) bool {
	return v.X < o.X || (v.X == o.X && v.Y < o.Y)
}

// Offsets8 lists the eight neighbour offsets, clockwise from north.
var Offsets8 = [8]IntVector2{{0, -1}, {1, -1}, {1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}}

// Neighbours8 returns the eight coordinates adjacent to v, in Offsets8 order.
func (v IntVector2) Neighbours8() [8]IntVector2 {
	var out [8]IntVector2
	for i, off := range Offsets8 {
		out[i] = v.Add(off)
	}
	return out
}

// Offsets4 lists the four orthogonal neighbour offsets, clockwise from north.
var Offsets4 = [4]IntVector2{{0, -1}, {1, 0}, {0, 1}, {-1, 0}}

// LookupMode selects a cell within a stacked coordinate bucket.
type LookupMode int

const (
	// LookupBelow selects the highest cell at or below the query height
	// (allowing StepSize of slack), as an agent standing there would.
	LookupBelow LookupMode = iota
	// LookupNearest selects the cell nearest the query in 3D.
	LookupNearest
)

// Occupant is an agent that can occupy cells.
//
// TransformVersion must change whenever the agent moves; a cell's occupant
// record is only trusted while the version it captured is current.
type Occupant interface {
	OccupantID() uuid.UUID
	TransformVersion() uint64
}

// Params are the generation parameters a grid keeps so cell validity can be
// re-derived (on load, on edit) exactly as it was at build time.
type Params struct {
	// CellSize is the edge length of a cell in world units.
	CellSize float64
	// StandableAngle is the steepest walkable slope, in degrees.
	StandableAngle float64
	// StepSize is the largest height step an agent climbs without jumping.
	StepSize float64
	// WidthClearance is the free width an agent needs above a cell.
	WidthClearance float64
	// HeightClearance is the free height an agent needs above a cell.
	HeightClearance float64
	// VerticalNeighbours links stacked cells on one coordinate when their
	// heights are within VerticalLinkHeight.
	VerticalNeighbours bool
}

// DefaultParams returns parameters for a human-sized agent on a unit grid.
func DefaultParams() Params {
	return Params{
		CellSize:        1,
		StandableAngle:  40,
		StepSize:        0.5,
		WidthClearance:  0.6,
		HeightClearance: 1.8,
	}
}

// Validate reports whether p can describe a grid.
func (p Params) Validate() error {
	switch {
	case !(p.CellSize > 0) || math.IsInf(p.CellSize, 0):
		return fmt.Errorf("%w: CellSize must be positive, got %v", ErrInvalidParams, p.CellSize)
	case p.StandableAngle < 0 || p.StandableAngle >= 90:
		return fmt.Errorf("%w: StandableAngle must be in [0,90), got %v", ErrInvalidParams, p.StandableAngle)
	case p.StepSize < 0:
		return fmt.Errorf("%w: StepSize must be non-negative, got %v", ErrInvalidParams, p.StepSize)
	case p.WidthClearance < 0 || p.HeightClearance < 0:
		return fmt.Errorf("%w: clearances must be non-negative", ErrInvalidParams)
	}
	return nil
}

// SlopeAllowance is the height change a standable slope covers over one cell.
func (p Params) SlopeAllowance() float64 {
	return p.CellSize * math.Tan(p.StandableAngle*math.Pi/180)
}

// MaxHeightTolerance is the largest height difference between a query and a
// cell, or between two cells, still treated as the same walking level.
func (p Params) MaxHeightTolerance() float64 {
	return p.StepSize + p.SlopeAllowance()
}

// VerticalLinkHeight is the largest gap between two cells stacked on one
// coordinate that VerticalNeighbours still links. Stacked cells are always
// more than MaxHeightTolerance apart, so the link height is an agent's
// clearance on top of that, and never less than twice the tolerance.
func (p Params) VerticalLinkHeight() float64 {
	tol := p.MaxHeightTolerance()
	return max(p.HeightClearance+tol, 2*tol)
}
