package navfollow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/katalvlaran/terranav/geom"
	"github.com/katalvlaran/terranav/navgrid"
	"github.com/katalvlaran/terranav/navlog"
	"github.com/katalvlaran/terranav/pathfind"
)

// Sentinel errors.
var (
	// ErrNilGrid indicates New was given no grid.
	ErrNilGrid = errors.New("navfollow: grid is nil")
	// ErrNilPool indicates New was given no planner.
	ErrNilPool = errors.New("navfollow: planner is nil")
	// ErrInvalidConfig indicates unusable Config values.
	ErrInvalidConfig = errors.New("navfollow: invalid configuration")
)

// Planner queues searches without blocking. *pathfind.Pool implements it.
//
// Both methods return pathfind.ErrPoolBusy when no search can be queued
// right now; the Follower keeps its current plan and asks again on the next
// Update.
type Planner interface {
	TrySubmit(ctx context.Context, start, target *navgrid.Cell, opts ...pathfind.Option) (*pathfind.Task, error)
	TrySubmitRace(ctx context.Context, start, target *navgrid.Cell, opts ...pathfind.Option) (*pathfind.Task, error)
}

// Locatable is anything with a world position, such as a followed agent.
type Locatable interface {
	Position() r3.Vec
}

// State is what a Follower is doing.
type State int

const (
	// StateIdle means there is no destination.
	StateIdle State = iota
	// StatePlanning means a search is in flight and there is no path yet.
	StatePlanning
	// StateFollowing means the returned waypoint is on a path.
	StateFollowing
	// StateArrived means the agent reached the destination.
	StateArrived
	// StateBlocked means the last search found no path.
	StateBlocked
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePlanning:
		return "planning"
	case StateFollowing:
		return "following"
	case StateArrived:
		return "arrived"
	case StateBlocked:
		return "blocked"
	default:
		return "unknown"
	}
}

// Config tunes a Follower.
type Config struct {
	// RetraceInterval is the minimum time between replanning checks.
	RetraceInterval time.Duration
	// WaypointTolerance is how close, in world units, the agent must get to
	// a waypoint before moving on to the next.
	WaypointTolerance float64
	// StrayFactor scales half a cell into the distance from the path that
	// triggers a replan.
	StrayFactor float64
	// Race plans with pathfind.Race instead of pathfind.Run.
	Race bool
	// Search are the options of every search.
	Search []pathfind.Option
}

// DefaultConfig returns a half-second retrace, a 0.25 unit tolerance and a
// stray factor of 1.42.
func DefaultConfig() Config {
	return Config{
		RetraceInterval:   500 * time.Millisecond,
		WaypointTolerance: 0.25,
		StrayFactor:       1.42,
	}
}

// Validate reports whether c can drive a Follower.
func (c Config) Validate() error {
	switch {
	case c.RetraceInterval < 0:
		return fmt.Errorf("%w: negative retrace interval %s", ErrInvalidConfig, c.RetraceInterval)
	case !(c.WaypointTolerance > 0):
		return fmt.Errorf("%w: waypoint tolerance %v", ErrInvalidConfig, c.WaypointTolerance)
	case !(c.StrayFactor > 0):
		return fmt.Errorf("%w: stray factor %v", ErrInvalidConfig, c.StrayFactor)
	}
	return nil
}

// Follower tracks one agent's path. Its methods are safe for concurrent use,
// but Update is meant to be driven by a single loop.
type Follower struct {
	grid *navgrid.Grid
	pool Planner
	cfg  Config

	mu          sync.Mutex
	dest        r3.Vec
	target      Locatable
	active      bool
	goal        *navgrid.Cell // destination cell of the current path or search
	path        []pathfind.Waypoint
	index       int
	task        *pathfind.Task
	blocked     bool
	retry       bool // last request found the planner busy
	lastRetrace time.Time
	replans     int
}

// New returns an idle Follower searching g on pool, usually a
// *pathfind.Pool.
func New(g *navgrid.Grid, pool Planner, cfg Config) (*Follower, error) {
	if g == nil {
		return nil, ErrNilGrid
	}
	if pool == nil {
		return nil, ErrNilPool
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.Search = append([]pathfind.Option(nil), cfg.Search...)
	return &Follower{grid: g, pool: pool, cfg: cfg}, nil
}

// SetDestination heads for a fixed world position.
func (f *Follower) SetDestination(pos r3.Vec) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reset()
	f.dest, f.target, f.active = pos, nil, true
}

// Follow heads for target, tracking it as it moves.
func (f *Follower) Follow(target Locatable) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reset()
	f.target, f.active = target, target != nil
}

// Stop drops the destination and cancels any search in flight.
func (f *Follower) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reset()
	f.active = false
}

func (f *Follower) reset() {
	if f.task != nil {
		f.task.Cancel()
	}
	f.task, f.goal, f.path, f.index, f.blocked, f.retry = nil, nil, nil, 0, false, false
	f.lastRetrace = time.Time{}
}

// Path returns a copy of the current path.
func (f *Follower) Path() []pathfind.Waypoint {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]pathfind.Waypoint(nil), f.path...)
}

// Replans returns how many searches the Follower has requested.
func (f *Follower) Replans() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.replans
}

// Wait blocks until the search in flight, if any, completes. The result is
// picked up by the next Update.
func (f *Follower) Wait(ctx context.Context) error {
	f.mu.Lock()
	t := f.task
	f.mu.Unlock()
	if t == nil {
		return nil
	}
	_, err := t.Wait(ctx)
	return err
}

// Update advances the follower to time now with the agent at position and
// returns the waypoint to steer toward. It never waits for a search: when
// the planner is busy the current path is kept and the request is retried
// on the next call.
func (f *Follower) Update(now time.Time, position r3.Vec) (pathfind.Waypoint, State) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.active {
		return pathfind.Waypoint{}, StateIdle
	}
	f.collect()

	destPos := f.dest
	if f.target != nil {
		destPos = f.target.Position()
	}
	cur := f.grid.CellAtPosition(position, true, navgrid.LookupBelow)
	goal := f.grid.CellAtPosition(destPos, true, navgrid.LookupBelow)
	if cur == nil || goal == nil {
		return pathfind.Waypoint{}, StateBlocked
	}
	if cur == goal {
		f.finish()
		return pathfind.Waypoint{Cell: goal, Position: destPos}, StateArrived
	}

	if f.retry || f.lastRetrace.IsZero() || now.Sub(f.lastRetrace) >= f.cfg.RetraceInterval {
		f.lastRetrace = now
		if reason := f.replanReason(goal, position); reason != "" {
			f.request(cur, goal, reason)
		} else {
			f.retry = false
		}
	}

	if f.path == nil {
		if f.task != nil || f.retry {
			return pathfind.Waypoint{}, StatePlanning
		}
		return pathfind.Waypoint{}, StateBlocked
	}
	for f.index < len(f.path) && geom.Distance(position, f.path[f.index].Position) <= f.cfg.WaypointTolerance {
		f.index++
	}
	if f.index >= len(f.path) {
		last := f.path[len(f.path)-1]
		f.finish()
		return last, StateArrived
	}
	return f.path[f.index], StateFollowing
}

// finish ends the trip; the destination stays set so a moving target is
// chased again once it leaves the agent's cell.
func (f *Follower) finish() {
	if f.task != nil {
		f.task.Cancel()
		f.task = nil
	}
	f.path, f.index, f.goal, f.blocked, f.retry = nil, 0, nil, false, false
}

// collect adopts the result of a finished search.
func (f *Follower) collect() {
	if f.task == nil {
		return
	}
	res, ok := f.task.Result()
	if !ok {
		return
	}
	f.task = nil
	switch res.Status {
	case pathfind.StatusFound, pathfind.StatusPartial:
		f.path, f.index, f.blocked = res.Waypoints, 0, false
	case pathfind.StatusCancelled:
	default:
		f.path, f.index, f.blocked = nil, 0, true
	}
}

func (f *Follower) replanReason(goal *navgrid.Cell, position r3.Vec) string {
	switch {
	case goal != f.goal:
		return "destination moved"
	case f.path == nil && f.task == nil && !f.blocked:
		return "no path"
	case f.path != nil && f.strayed(position):
		return "strayed"
	}
	return ""
}

// strayed reports whether position is too far from the segment between the
// previous and the current waypoint.
func (f *Follower) strayed(position r3.Vec) bool {
	limit := f.cfg.StrayFactor * f.grid.Params().CellSize / 2
	to := f.path[min(f.index, len(f.path)-1)].Position
	from := to
	if f.index > 0 {
		from = f.path[f.index-1].Position
	}
	return segmentDistance(position, from, to) > limit
}

// request queues a search from cur to goal. The search in flight, if any,
// is only cancelled once the new one is queued.
func (f *Follower) request(cur, goal *navgrid.Cell, reason string) {
	submit := f.pool.TrySubmit
	if f.cfg.Race {
		submit = f.pool.TrySubmitRace
	}
	task, err := submit(context.Background(), cur, goal, f.cfg.Search...)
	switch {
	case errors.Is(err, pathfind.ErrPoolBusy):
		if !f.retry {
			navlog.Logf("navfollow: replan %v -> %v deferred: %v", cur, goal, err)
		}
		f.retry = true
		return
	case err != nil:
		navlog.Logf("navfollow: replan %v -> %v failed: %v", cur, goal, err)
		if f.task != nil {
			f.task.Cancel()
		}
		f.task, f.blocked, f.retry = nil, true, false
		return
	}
	if f.task != nil {
		f.task.Cancel()
	}
	f.retry = false
	f.task, f.goal = task, goal
	f.replans++
	navlog.Logf("navfollow: replan %v -> %v (%s)", cur, goal, reason)
}

// segmentDistance is the distance from p to the segment ab.
func segmentDistance(p, a, b r3.Vec) float64 {
	ab := r3.Sub(b, a)
	l2 := r3.Dot(ab, ab)
	if l2 == 0 {
		return geom.Distance(p, a)
	}
	t := r3.Dot(r3.Sub(p, a), ab) / l2
	t = max(0, min(1, t))
	return geom.Distance(p, r3.Add(a, r3.Scale(t, ab)))
}
