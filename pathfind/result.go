package pathfind

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/katalvlaran/terranav/geom"
	"github.com/katalvlaran/terranav/navgrid"
)

// Waypoint is one step of a path. Tag names the connection used to reach
// the cell ("" for a plain walk).
type Waypoint struct {
	Cell     *navgrid.Cell
	Position r3.Vec // world space
	Tag      string
}

// Result is the outcome of one search.
type Result struct {
	Status    Status
	Waypoints []Waypoint
	// Options are the options the search ran with.
	Options Options
	// Expanded counts the nodes taken off the open set.
	Expanded int

	length    float64
	hasLength bool
}

// Found reports whether the path reaches the target.
func (r *Result) Found() bool { return r.Status == StatusFound }

// Cells returns the waypoint cells in travel order.
func (r *Result) Cells() []*navgrid.Cell {
	out := make([]*navgrid.Cell, len(r.Waypoints))
	for i, w := range r.Waypoints {
		out[i] = w.Cell
	}
	return out
}

// Length returns the summed 3D distance between consecutive waypoint
// positions. The value is cached until Simplify changes the waypoints.
func (r *Result) Length() float64 {
	if r.hasLength {
		return r.length
	}
	var sum float64
	for i := 1; i < len(r.Waypoints); i++ {
		sum += geom.Distance(r.Waypoints[i-1].Position, r.Waypoints[i].Position)
	}
	r.length, r.hasLength = sum, true
	return sum
}

// LineOfSight reports whether an agent can move straight from one world
// position to another. geom.LineOfSight and GridLineOfSight implement it.
type LineOfSight interface {
	Clear(from, to r3.Vec) bool
}

var _ LineOfSight = geom.LineOfSight{}

// SimplifyOption configures Simplify.
type SimplifyOption func(*simplifyConfig)

type simplifyConfig struct {
	window     int
	iterations int
}

// WithWindow sets how many waypoints ahead of an anchor Simplify tries to
// reach directly. Panics if n < 2.
func WithWindow(n int) SimplifyOption {
	if n < 2 {
		panic("pathfind: WithWindow requires n ≥ 2")
	}
	return func(c *simplifyConfig) { c.window = n }
}

// WithIterations sets the maximum number of passes. Panics if k < 1.
func WithIterations(k int) SimplifyOption {
	if k < 1 {
		panic("pathfind: WithIterations requires k ≥ 1")
	}
	return func(c *simplifyConfig) { c.iterations = k }
}

// Simplify removes waypoints that los can skip and returns how many were
// removed. Endpoints and tagged waypoints are kept, and so is the waypoint
// from which a tagged connection starts.
//
// Each pass walks anchors from the start; from anchor i it picks the
// farthest j within the window that is in sight and has no protected
// waypoint in between, then drops everything between i and j.
//
// Complexity: O(iterations · n · window) line-of-sight checks.
func (r *Result) Simplify(los LineOfSight, opts ...SimplifyOption) int {
	cfg := simplifyConfig{window: 8, iterations: 3}
	for _, opt := range opts {
		opt(&cfg)
	}
	if los == nil || len(r.Waypoints) < 3 {
		return 0
	}

	removed := 0
	for pass := 0; pass < cfg.iterations; pass++ {
		n := r.simplifyPass(los, cfg.window)
		if n == 0 {
			break
		}
		removed += n
	}
	if removed > 0 {
		r.hasLength = false
	}
	return removed
}

func (r *Result) simplifyPass(los LineOfSight, window int) int {
	wps := r.Waypoints
	out := make([]Waypoint, 0, len(wps))
	i := 0
	for i < len(wps)-1 {
		out = append(out, wps[i])
		next := i + 1
		limit := min(i+window, len(wps)-1)
		// the first protected waypoint caps the reach
		for k := i + 1; k < limit; k++ {
			if r.protected(k) {
				limit = k
				break
			}
		}
		for j := limit; j > i+1; j-- {
			if los.Clear(wps[i].Position, wps[j].Position) {
				next = j
				break
			}
		}
		i = next
	}
	out = append(out, wps[len(wps)-1])
	removed := len(wps) - len(out)
	r.Waypoints = out
	return removed
}

// protected reports whether waypoint k must survive simplification.
func (r *Result) protected(k int) bool {
	if k == 0 || k == len(r.Waypoints)-1 || r.Waypoints[k].Tag != "" {
		return true
	}
	return r.Waypoints[k+1].Tag != ""
}

// reversed returns a copy of r walking the waypoints backwards. Tags are
// dropped because a connection is only valid in its own direction.
func (r Result) reversed() Result {
	out := r
	out.Waypoints = make([]Waypoint, len(r.Waypoints))
	for i, w := range r.Waypoints {
		w.Tag = ""
		out.Waypoints[len(r.Waypoints)-1-i] = w
	}
	out.hasLength = false
	return out
}
