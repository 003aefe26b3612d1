package navgrid

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/zyedidia/generic/mapset"
	"gonum.org/v1/gonum/spatial/r3"
)

// Options configure a Grid at construction.
type Options struct {
	// ID names the grid in a Registry. Empty means a random UUID.
	ID string
	// Origin is the world position of grid-local (0,0,0).
	Origin r3.Vec
	// Yaw rotates the grid about the world up axis, in radians.
	Yaw float64
}

// Option mutates Options.
type Option func(*Options)

// WithID sets the grid identifier.
func WithID(id string) Option {
	return func(o *Options) { o.ID = id }
}

// WithOrigin places grid-local (0,0,0) at origin.
func WithOrigin(origin r3.Vec) Option {
	return func(o *Options) { o.Origin = origin }
}

// WithYaw rotates the grid by yaw radians about the world up axis.
// Panics on a non-finite angle.
func WithYaw(yaw float64) Option {
	if math.IsNaN(yaw) || math.IsInf(yaw, 0) {
		panic("navgrid: WithYaw requires a finite angle")
	}
	return func(o *Options) { o.Yaw = yaw }
}

// Grid is a sparse set of cells keyed by coordinate.
//
// All methods are safe for concurrent use.
type Grid struct {
	mu sync.RWMutex

	id       string
	params   Params
	origin   r3.Vec
	yaw      float64
	cos, sin float64

	buckets map[IntVector2][]*Cell // each bucket sorted by ascending height
	byID    []*Cell                // dense by Cell.ID; nil once removed
	count   int
	index   *spatialIndex

	bounds    orb.Bound
	minHeight float64
	maxHeight float64
	hasBounds bool

	closed bool
}

// NewGrid returns an empty grid.
// Returns ErrInvalidParams if params fail Validate.
func NewGrid(params Params, opts ...Option) (*Grid, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	o := Options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return &Grid{
		id:      o.ID,
		params:  params,
		origin:  o.Origin,
		yaw:     o.Yaw,
		cos:     math.Cos(o.Yaw),
		sin:     math.Sin(o.Yaw),
		buckets: make(map[IntVector2][]*Cell),
		index:   newSpatialIndex(),
	}, nil
}

// ID returns the grid identifier.
func (g *Grid) ID() string { return g.id }

// Params returns the generation parameters.
func (g *Grid) Params() Params { return g.params }

// Origin returns the world position of grid-local (0,0,0).
func (g *Grid) Origin() r3.Vec { return g.origin }

// Yaw returns the grid rotation about the world up axis.
func (g *Grid) Yaw() float64 { return g.yaw }

// ToLocal converts a world position into grid-local space.
func (g *Grid) ToLocal(p r3.Vec) r3.Vec {
	d := r3.Sub(p, g.origin)
	return r3.Vec{
		X: g.cos*d.X + g.sin*d.Z,
		Y: d.Y,
		Z: -g.sin*d.X + g.cos*d.Z,
	}
}

// ToWorld converts a grid-local position into world space.
func (g *Grid) ToWorld(l r3.Vec) r3.Vec {
	return r3.Add(g.origin, r3.Vec{
		X: g.cos*l.X - g.sin*l.Z,
		Y: l.Y,
		Z: g.sin*l.X + g.cos*l.Z,
	})
}

// Coordinate returns the coordinate whose cell footprint contains p.
func (g *Grid) Coordinate(p r3.Vec) IntVector2 {
	l := g.ToLocal(p)
	s := g.params.CellSize
	return IntVector2{X: int(math.Round(l.X / s)), Y: int(math.Round(l.Z / s))}
}

// CellCenter returns the world position of coord's centre at local height h.
func (g *Grid) CellCenter(coord IntVector2, h float64) r3.Vec {
	s := g.params.CellSize
	return g.ToWorld(r3.Vec{X: float64(coord.X) * s, Y: h, Z: float64(coord.Y) * s})
}

// CornerPosition returns the world position of corner i of coord at local
// height h. Adjacent coordinates produce bit-identical positions for the
// corners they share.
func (g *Grid) CornerPosition(coord IntVector2, i int, h float64) r3.Vec {
	return g.ToWorld(g.cornerLocal(coord, i, h))
}

func (g *Grid) cornerLocal(coord IntVector2, i int, h float64) r3.Vec {
	half := g.params.CellSize / 2
	s := cornerSigns[i]
	return r3.Vec{
		X: float64(2*coord.X+s[0]) * half,
		Y: h,
		Z: float64(2*coord.Y+s[1]) * half,
	}
}

// NewCell validates corners and returns a cell bound to g but not yet added.
// Cells may be created concurrently; AddCell attaches them.
// Returns ErrMalformedCell when a corner is not finite or the corner spread
// exceeds MaxHeightTolerance.
func (g *Grid) NewCell(coord IntVector2, corners [4]float64, tags ...string) (*Cell, error) {
	lo, hi, sum := math.Inf(1), math.Inf(-1), 0.0
	for _, h := range corners {
		if math.IsNaN(h) || math.IsInf(h, 0) {
			return nil, fmt.Errorf("%w: non-finite corner at %s", ErrMalformedCell, coord)
		}
		lo, hi, sum = math.Min(lo, h), math.Max(hi, h), sum+h
	}
	if tol := g.params.MaxHeightTolerance(); hi-lo > tol+1e-9 {
		return nil, fmt.Errorf("%w: corner spread %.3f exceeds %.3f at %s", ErrMalformedCell, hi-lo, tol, coord)
	}
	c := &Cell{
		grid:    g,
		id:      -1,
		coord:   coord,
		corners: corners,
		height:  sum / 4,
		minH:    lo,
		maxH:    hi,
		tags:    mapset.New[string](),
	}
	for _, t := range tags {
		if t != "" && t != TagOccupied {
			c.tags.Put(t)
		}
	}
	return c, nil
}

// AddCell attaches c to g and assigns its ID.
// Returns ErrGridClosed, ErrForeignCell, ErrCellRemoved, or ErrDuplicateCell
// when another cell on the coordinate lies within MaxHeightTolerance.
// Complexity: O(k + log n) for a bucket of k cells.
func (g *Grid) AddCell(c *Cell) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return ErrGridClosed
	}
	if c == nil || c.grid != g {
		return ErrForeignCell
	}
	if c.removed.Load() {
		return ErrCellRemoved
	}
	if c.id >= 0 {
		return fmt.Errorf("%w: %s already added", ErrDuplicateCell, c)
	}

	bucket := g.buckets[c.coord]
	tol := g.params.MaxHeightTolerance()
	for _, other := range bucket {
		if math.Abs(other.height-c.height) < tol {
			return fmt.Errorf("%w: %s collides with %s", ErrDuplicateCell, c, other)
		}
	}
	pos := sort.Search(len(bucket), func(i int) bool { return bucket[i].height > c.height })
	bucket = append(bucket, nil)
	copy(bucket[pos+1:], bucket[pos:])
	bucket[pos] = c
	if len(bucket) == 1 {
		g.index.insert(c.coord)
	}
	g.buckets[c.coord] = bucket

	c.id = len(g.byID)
	g.byID = append(g.byID, c)
	g.count++
	g.extendBounds(c)

	return nil
}

func (g *Grid) extendBounds(c *Cell) {
	half := g.params.CellSize / 2
	x, z := float64(c.coord.X)*g.params.CellSize, float64(c.coord.Y)*g.params.CellSize
	b := orb.Bound{Min: orb.Point{x - half, z - half}, Max: orb.Point{x + half, z + half}}
	if !g.hasBounds {
		g.bounds, g.minHeight, g.maxHeight, g.hasBounds = b, c.minH, c.maxH, true
		return
	}
	g.bounds = g.bounds.Union(b)
	g.minHeight = math.Min(g.minHeight, c.minH)
	g.maxHeight = math.Max(g.maxHeight, c.maxH)
}

// RemoveCell detaches c from g. Connections from other cells to c stay in
// place and are skipped by traversal from now on.
func (g *Grid) RemoveCell(c *Cell) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.checkLiveLocked(c); err != nil {
		return err
	}
	g.removeLocked(c)
	return nil
}

// RemoveArea removes every cell whose centre lies inside area, given in
// grid-local XZ. It returns the number of cells removed.
func (g *Grid) RemoveArea(area orb.Bound) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return 0
	}
	s := g.params.CellSize
	var doomed []*Cell
	for coord, bucket := range g.buckets {
		if area.Contains(orb.Point{float64(coord.X) * s, float64(coord.Y) * s}) {
			doomed = append(doomed, bucket...)
		}
	}
	for _, c := range doomed {
		g.removeLocked(c)
	}
	return len(doomed)
}

func (g *Grid) removeLocked(c *Cell) {
	bucket := g.buckets[c.coord]
	for i, other := range bucket {
		if other == c {
			bucket = append(bucket[:i:i], bucket[i+1:]...)
			break
		}
	}
	if len(bucket) == 0 {
		delete(g.buckets, c.coord)
		g.index.remove(c.coord)
	} else {
		g.buckets[c.coord] = bucket
	}
	g.byID[c.id] = nil
	g.count--
	c.removed.Store(true)
	c.SetOccupied(false)
}

func (g *Grid) checkLiveLocked(c *Cell) error {
	switch {
	case g.closed:
		return ErrGridClosed
	case c == nil || c.grid != g:
		return ErrForeignCell
	case c.removed.Load():
		return ErrCellRemoved
	case c.id < 0:
		return fmt.Errorf("%w: %s was never added", ErrForeignCell, c)
	}
	return nil
}

// Connect adds a directed connection from → to carrying tag.
// No reverse connection is created.
func (g *Grid) Connect(from, to *Cell, tag string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.checkLiveLocked(from); err != nil {
		return err
	}
	if err := g.checkLiveLocked(to); err != nil {
		return err
	}
	from.conns = append(from.conns, Connection{From: from, To: to, Tag: tag})
	return nil
}

// TagCell adds tag to c. Tagging with TagOccupied sets the occupancy flag.
func (g *Grid) TagCell(c *Cell, tag string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.checkLiveLocked(c); err != nil {
		return err
	}
	if tag == TagOccupied {
		c.SetOccupied(true)
		return nil
	}
	c.tags.Put(tag)
	return nil
}

// UntagCell removes tag from c. Untagging TagOccupied clears occupancy.
func (g *Grid) UntagCell(c *Cell, tag string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.checkLiveLocked(c); err != nil {
		return err
	}
	if tag == TagOccupied {
		c.SetOccupied(false)
		return nil
	}
	c.tags.Remove(tag)
	return nil
}

// CellAt returns the cell on coord whose mean height is closest to h,
// provided it lies within MaxHeightTolerance. Returns nil otherwise.
func (g *Grid) CellAt(coord IntVector2, h float64) *Cell {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.cellAtLocked(coord, h)
}

func (g *Grid) cellAtLocked(coord IntVector2, h float64) *Cell {
	tol := g.params.MaxHeightTolerance()
	var best *Cell
	bestD := math.Inf(1)
	for _, c := range g.buckets[coord] {
		if d := math.Abs(c.height - h); d <= tol && d < bestD {
			best, bestD = c, d
		}
	}
	return best
}

// CellsAt returns every cell on coord, lowest first.
func (g *Grid) CellsAt(coord IntVector2) []*Cell {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]*Cell(nil), g.buckets[coord]...)
}

// CellAtPosition returns the cell an agent at world position p stands on.
//
// When p's coordinate holds no cells, nil is returned unless findNearest is
// set, in which case the nearest non-empty coordinate (2D, by the spatial
// index) is used instead. mode picks among stacked cells.
// Complexity: O(k) on a hit, O(log n + k) on the nearest fallback.
func (g *Grid) CellAtPosition(p r3.Vec, findNearest bool, mode LookupMode) *Cell {
	g.mu.RLock()
	defer g.mu.RUnlock()

	local := g.ToLocal(p)
	s := g.params.CellSize
	coord := IntVector2{X: int(math.Round(local.X / s)), Y: int(math.Round(local.Z / s))}
	bucket := g.buckets[coord]
	if len(bucket) == 0 {
		if !findNearest {
			return nil
		}
		nc, ok := g.index.nearest(local.X/s, local.Z/s)
		if !ok {
			return nil
		}
		bucket = g.buckets[nc]
	}
	return g.pickLocked(bucket, local, mode)
}

// NearestCellLinear is CellAtPosition(p, true, mode) computed by scanning
// every coordinate. It is O(n) and kept as a reference for the indexed
// lookup.
func (g *Grid) NearestCellLinear(p r3.Vec, mode LookupMode) *Cell {
	g.mu.RLock()
	defer g.mu.RUnlock()

	local := g.ToLocal(p)
	s := g.params.CellSize
	qx, qy := local.X/s, local.Z/s
	var (
		best  IntVector2
		bestD = math.Inf(1)
		found bool
	)
	for coord := range g.buckets {
		d := math.Hypot(float64(coord.X)-qx, float64(coord.Y)-qy)
		if !found || d < bestD || (d == bestD && coord.Less(best)) {
			best, bestD, found = coord, d, true
		}
	}
	if !found {
		return nil
	}
	return g.pickLocked(g.buckets[best], local, mode)
}

func (g *Grid) pickLocked(bucket []*Cell, local r3.Vec, mode LookupMode) *Cell {
	if len(bucket) == 0 {
		return nil
	}
	if mode == LookupBelow {
		limit := local.Y + g.params.StepSize
		// buckets are sorted ascending, so the last match is the highest
		for i := len(bucket) - 1; i >= 0; i-- {
			if bucket[i].minH <= limit {
				return bucket[i]
			}
		}
	}
	var best *Cell
	bestD := math.Inf(1)
	for _, c := range bucket {
		if d := r3.Norm(r3.Sub(c.LocalPosition(), local)); d < bestD {
			best, bestD = c, d
		}
	}
	return best
}

// CellByID returns the live cell with the given ID, or nil.
func (g *Grid) CellByID(id int) *Cell {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if id < 0 || id >= len(g.byID) {
		return nil
	}
	return g.byID[id]
}

// Cells returns every live cell ordered by coordinate, then height.
func (g *Grid) Cells() []*Cell {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.cellsLocked()
}

func (g *Grid) cellsLocked() []*Cell {
	coords := make([]IntVector2, 0, len(g.buckets))
	for coord := range g.buckets {
		coords = append(coords, coord)
	}
	sort.Slice(coords, func(i, j int) bool { return coords[i].Less(coords[j]) })
	out := make([]*Cell, 0, g.count)
	for _, coord := range coords {
		out = append(out, g.buckets[coord]...)
	}
	return out
}

// CellCount returns the number of live cells.
func (g *Grid) CellCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.count
}

// CellCapacity returns one past the largest cell ID ever assigned.
// Removed cells keep their IDs, so capacity never shrinks.
func (g *Grid) CellCapacity() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.byID)
}

// Bounds returns the grid-local XZ footprint of every cell ever added and
// the corner height range. ok is false for a grid that never held a cell.
// Removals do not shrink the bounds.
func (g *Grid) Bounds() (area orb.Bound, minHeight, maxHeight float64, ok bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.bounds, g.minHeight, g.maxHeight, g.hasBounds
}

// Close removes every cell and rejects further edits. Searches holding
// cells of a closed grid see them as removed.
func (g *Grid) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return
	}
	for _, c := range g.byID {
		if c != nil {
			c.removed.Store(true)
			c.SetOccupied(false)
		}
	}
	g.buckets = make(map[IntVector2][]*Cell)
	g.index = newSpatialIndex()
	for i := range g.byID {
		g.byID[i] = nil
	}
	g.count = 0
	g.closed = true
}

// Closed reports whether Close was called.
func (g *Grid) Closed() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.closed
}
