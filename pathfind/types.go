package pathfind

import (
	"errors"
	"math"
	"sort"

	"github.com/zyedidia/generic/mapset"

	"github.com/katalvlaran/terranav/navgrid"
)

// Sentinel errors.
var (
	// ErrNilGrid indicates that a position lookup was given no grid.
	ErrNilGrid = errors.New("pathfind: grid is nil")

	// ErrPoolClosed indicates a submission to a closed Pool.
	ErrPoolClosed = errors.New("pathfind: pool closed")

	// ErrPoolBusy indicates a non-blocking submission to a full Pool queue.
	ErrPoolBusy = errors.New("pathfind: pool queue full")
)

// Status is the outcome of a search.
type Status int

const (
	// StatusInvalid means the request was unusable: a nil or foreign cell,
	// or start equal to target. No search ran.
	StatusInvalid Status = iota
	// StatusFound means the waypoints end at the target.
	StatusFound
	// StatusPartial means the target was unreachable and the waypoints end
	// at the reachable cell closest to it.
	StatusPartial
	// StatusNotFound means the target was unreachable.
	StatusNotFound
	// StatusCancelled means the context ended the search early.
	StatusCancelled
)

// String returns the lower-case status name.
func (s Status) String() string {
	switch s {
	case StatusInvalid:
		return "invalid"
	case StatusFound:
		return "found"
	case StatusPartial:
		return "partial"
	case StatusNotFound:
		return "not_found"
	case StatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Options configure one search. The zero value is not the default; start
// from DefaultOptions.
type Options struct {
	// IncludeTags, when non-empty, restricts the search to cells carrying at
	// least one of these tags.
	IncludeTags []string
	// ExcludeTags removes cells carrying any of these tags.
	ExcludeTags []string
	// MaxDistance is how much farther than the start-target distance a cell
	// may lie from the target. +Inf disables the bound.
	MaxDistance float64
	// MaxDropHeight is the largest fall accepted along a connection.
	MaxDropHeight float64
	// AcceptPartial returns a partial path when the target is unreachable.
	AcceptPartial bool
	// Creator is exempt from the occupancy exclusion on cells it occupies.
	Creator navgrid.Occupant
	// UseConnections follows Cell connections in addition to neighbours.
	UseConnections bool
}

// Option mutates Options.
type Option func(*Options)

// DefaultOptions returns unbounded options that follow connections.
//
// Defaults:
//   - IncludeTags / ExcludeTags: none.
//   - MaxDistance, MaxDropHeight: +Inf.
//   - AcceptPartial: false; Creator: nil; UseConnections: true.
func DefaultOptions() Options {
	return Options{
		MaxDistance:    math.Inf(1),
		MaxDropHeight:  math.Inf(1),
		UseConnections: true,
	}
}

// Clone returns a copy of o that shares no slices with it.
func (o Options) Clone() Options {
	c := o
	c.IncludeTags = append([]string(nil), o.IncludeTags...)
	c.ExcludeTags = append([]string(nil), o.ExcludeTags...)
	return c
}

func resolve(opts []Option) Options {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithIncludeTags adds tags to the include set.
func WithIncludeTags(tags ...string) Option {
	return func(o *Options) { o.IncludeTags = mergeTags(o.IncludeTags, tags) }
}

// WithExcludeTags adds tags to the exclude set.
func WithExcludeTags(tags ...string) Option {
	return func(o *Options) { o.ExcludeTags = mergeTags(o.ExcludeTags, tags) }
}

// WithExcludeOccupied skips occupied cells.
func WithExcludeOccupied() Option {
	return WithExcludeTags(navgrid.TagOccupied)
}

// WithMaxDistance bounds the detour. Panics on a negative or NaN distance.
func WithMaxDistance(d float64) Option {
	if d < 0 || math.IsNaN(d) {
		panic("pathfind: WithMaxDistance requires d ≥ 0")
	}
	return func(o *Options) { o.MaxDistance = d }
}

// WithMaxDropHeight bounds the fall along connections. Panics on a negative
// or NaN height.
func WithMaxDropHeight(h float64) Option {
	if h < 0 || math.IsNaN(h) {
		panic("pathfind: WithMaxDropHeight requires h ≥ 0")
	}
	return func(o *Options) { o.MaxDropHeight = h }
}

// WithPartial accepts partial paths.
func WithPartial() Option {
	return func(o *Options) { o.AcceptPartial = true }
}

// WithCreator exempts occupant from the occupancy exclusion on cells it
// occupies. Panics on nil.
func WithCreator(occupant navgrid.Occupant) Option {
	if occupant == nil {
		panic("pathfind: WithCreator(nil)")
	}
	return func(o *Options) { o.Creator = occupant }
}

// WithoutConnections restricts the search to plain neighbours.
func WithoutConnections() Option {
	return func(o *Options) { o.UseConnections = false }
}

// WithOptions replaces the options wholesale, for callers holding a
// resolved Options value.
func WithOptions(src Options) Option {
	return func(o *Options) { *o = src.Clone() }
}

// mergeTags returns the sorted union of a and b without empty tags.
func mergeTags(a, b []string) []string {
	set := mapset.New[string]()
	for _, t := range a {
		set.Put(t)
	}
	for _, t := range b {
		if t != "" {
			set.Put(t)
		}
	}
	out := make([]string, 0, set.Size())
	set.Each(func(t string) { out = append(out, t) })
	sort.Strings(out)
	return out
}

// filter is the compiled cell filter of one search.
type filter struct {
	include         []string
	exclude         []string
	excludeOccupied bool
	creator         navgrid.Occupant
}

func newFilter(o Options) filter {
	f := filter{include: o.IncludeTags, creator: o.Creator}
	for _, t := range o.ExcludeTags {
		if t == navgrid.TagOccupied {
			f.excludeOccupied = true
			continue
		}
		f.exclude = append(f.exclude, t)
	}
	return f
}

// passable reports whether a search may enter c.
func (f filter) passable(c *navgrid.Cell) bool {
	if f.excludeOccupied && c.Occupied() && !(f.creator != nil && c.OccupiedBy(f.creator)) {
		return false
	}
	if len(f.exclude) > 0 && c.HasAnyTag(f.exclude) {
		return false
	}
	if len(f.include) > 0 && !c.HasAnyTag(f.include) {
		return false
	}
	return true
}
