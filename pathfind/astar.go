package pathfind

import (
	"context"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/katalvlaran/terranav/geom"
	"github.com/katalvlaran/terranav/navgrid"
	"github.com/katalvlaran/terranav/pqueue"
)

// Run searches for a path from start to target.
//
// The result status is StatusInvalid when either cell is nil or removed,
// when they belong to different grids or when they are the same cell.
// StatusCancelled is returned as soon as ctx is done. Otherwise the search
// ends with StatusFound, StatusPartial (only with Options.AcceptPartial) or
// StatusNotFound.
//
// Complexity:
//
//   - Time:  O(E log V) over the explored region.
//   - Space: O(V), bounded by the grid's cell capacity.
func Run(ctx context.Context, start, target *navgrid.Cell, opts ...Option) Result {
	began := time.Now()
	res := search(ctx, start, target, resolve(opts))
	observe(res, time.Since(began))
	return res
}

// FindPath resolves from and to (world positions) to cells of g and runs a
// search between them. Positions over empty coordinates snap to the nearest
// cell. It fails only with ErrNilGrid; an empty grid yields StatusInvalid.
func FindPath(ctx context.Context, g *navgrid.Grid, from, to r3.Vec, opts ...Option) (Result, error) {
	if g == nil {
		return Result{}, ErrNilGrid
	}
	start := g.CellAtPosition(from, true, navgrid.LookupBelow)
	target := g.CellAtPosition(to, true, navgrid.LookupBelow)
	return Run(ctx, start, target, opts...), nil
}

// search validates the request and drives a runner without recording
// metrics.
func search(ctx context.Context, start, target *navgrid.Cell, o Options) Result {
	res := Result{Status: StatusInvalid, Options: o}
	if start == nil || target == nil || start == target {
		return res
	}
	if start.Grid() != target.Grid() || start.Removed() || target.Removed() {
		return res
	}
	if ctx.Err() != nil {
		res.Status = StatusCancelled
		return res
	}

	capacity := start.Grid().CellCapacity()
	r := &runner{
		ctx:    ctx,
		opts:   o,
		filter: newFilter(o),
		target: target,
		nodes:  newArena(capacity),
		open:   pqueue.New[*node](capacity),
		best:   -1,
	}
	r.init(start)
	res.Status, res.Waypoints = r.process()
	res.Expanded = r.expanded
	return res
}

// runner holds the mutable state of one search.
type runner struct {
	ctx      context.Context
	opts     Options
	filter   filter
	target   *navgrid.Cell
	nodes    *arena
	open     *pqueue.Heap[*node]
	edges    []navgrid.Edge
	limit    float64 // h beyond which cells are not explored
	best     int32   // closed non-start node with the smallest h
	expanded int
}

// init seeds the open set with start.
func (r *runner) init(start *navgrid.Cell) {
	n, _ := r.nodes.get(start)
	n.h = r.heuristic(start)
	r.limit = n.h + r.opts.MaxDistance
	r.open.Add(n)
}

func (r *runner) heuristic(c *navgrid.Cell) float64 {
	return geom.Distance(c.LocalPosition(), r.target.LocalPosition())
}

// process is the main loop:
//  1. pop the node with the lowest f and close it;
//  2. stop at the target;
//  3. relax every passable, unclosed edge target within the distance bound.
func (r *runner) process() (Status, []Waypoint) {
	for r.open.Count() > 0 {
		if r.ctx.Err() != nil {
			return StatusCancelled, nil
		}
		cur := r.open.RemoveFirst()
		cur.closed = true
		r.expanded++
		if cur.cell == r.target {
			return StatusFound, r.retrace(cur)
		}
		if cur.parent >= 0 && (r.best < 0 || cur.h < r.nodes.at(r.best).h) {
			r.best = cur.self
		}
		r.expand(cur)
	}

	if r.opts.AcceptPartial && r.best >= 0 {
		b := r.nodes.at(r.best)
		if b.h < r.nodes.at(0).h {
			return StatusPartial, r.retrace(b)
		}
	}
	return StatusNotFound, nil
}

func (r *runner) expand(cur *node) {
	r.edges = cur.cell.AppendEdges(r.edges[:0], r.opts.UseConnections)
	for _, e := range r.edges {
		if e.Connection && cur.cell.Height()-e.To.Height() > r.opts.MaxDropHeight {
			continue
		}
		if !r.filter.passable(e.To) {
			continue
		}
		n, seen := r.nodes.get(e.To)
		if n == nil || n.closed {
			continue
		}
		if !seen {
			n.h = r.heuristic(e.To)
		}
		if n.h > r.limit {
			continue
		}
		g := cur.g + geom.Distance(cur.cell.LocalPosition(), e.To.LocalPosition())
		if seen && g >= n.g {
			continue
		}
		n.g = g
		n.parent = cur.self
		n.tag = e.Tag
		if r.open.Contains(n) {
			r.open.Update(n)
		} else {
			r.open.Add(n)
		}
	}
}

// retrace walks parent indices back from end and returns the waypoints in
// travel order.
func (r *runner) retrace(end *node) []Waypoint {
	depth := 0
	for n := end; ; n = r.nodes.at(n.parent) {
		depth++
		if n.parent < 0 {
			break
		}
	}
	out := make([]Waypoint, depth)
	n := end
	for i := depth - 1; i >= 0; i-- {
		out[i] = Waypoint{Cell: n.cell, Position: n.cell.Position(), Tag: n.tag}
		if n.parent >= 0 {
			n = r.nodes.at(n.parent)
		}
	}
	return out
}

