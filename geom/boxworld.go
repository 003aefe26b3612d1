package geom

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/spatial/r3"
)

// insideEpsilon is how deep an origin must sit inside a solid before a ray
// counts as StartedInside. Origins on a face hit that face at distance 0.
const insideEpsilon = 1e-9

// Solid is an axis-aligned block of world geometry.
type Solid struct {
	Box     r3.Box
	Tags    []string
	Dynamic bool
}

// BoxWorld is a Query over a set of axis-aligned solids. It is safe for
// concurrent use; Set and Add may run while queries are in flight.
type BoxWorld struct {
	mu     sync.RWMutex
	solids []Solid
}

// NewBoxWorld returns a world containing solids.
func NewBoxWorld(solids ...Solid) *BoxWorld {
	w := &BoxWorld{solids: make([]Solid, 0, len(solids))}
	for _, s := range solids {
		w.solids = append(w.solids, canon(s))
	}
	return w
}

// Add appends a solid and returns its index.
func (w *BoxWorld) Add(s Solid) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.solids = append(w.solids, canon(s))
	return len(w.solids) - 1
}

// Set replaces the solid at index i, typically to move a dynamic object.
func (w *BoxWorld) Set(i int, s Solid) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.solids[i] = canon(s)
}

// Len returns the number of solids.
func (w *BoxWorld) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.solids)
}

// Raycast implements Query. Ties between solids at the same distance resolve
// to the solid added first.
func (w *BoxWorld) Raycast(ray Ray, filter Filter) Hit {
	dirLen := r3.Norm(ray.Direction)
	if dirLen == 0 {
		return Hit{}
	}
	dir := r3.Scale(1/dirLen, ray.Direction)
	maxDist := ray.MaxDistance
	if maxDist <= 0 {
		maxDist = math.Inf(1)
	}

	w.mu.RLock()
	defer w.mu.RUnlock()

	best := Hit{Distance: math.Inf(1)}
	for _, s := range w.solids {
		if !filter.accepts(s.Tags, s.Dynamic) {
			continue
		}
		if containsStrict(s.Box, ray.Origin) {
			return Hit{Hit: true, Position: ray.Origin, StartedInside: true, Tags: s.Tags}
		}
		t, n, ok := intersect(s.Box, ray.Origin, dir)
		if !ok || t > maxDist || t >= best.Distance {
			continue
		}
		best = Hit{
			Hit:      true,
			Position: r3.Add(ray.Origin, r3.Scale(t, dir)),
			Normal:   n,
			Distance: t,
			Tags:     s.Tags,
		}
	}
	if !best.Hit {
		return Hit{}
	}
	return best
}

// Overlaps implements Query.
func (w *BoxWorld) Overlaps(box r3.Box, filter Filter) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	for _, s := range w.solids {
		if !filter.accepts(s.Tags, s.Dynamic) {
			continue
		}
		if s.Box.Min.X < box.Max.X && s.Box.Max.X > box.Min.X &&
			s.Box.Min.Y < box.Max.Y && s.Box.Max.Y > box.Min.Y &&
			s.Box.Min.Z < box.Max.Z && s.Box.Max.Z > box.Min.Z {
			return true
		}
	}
	return false
}

// intersect runs the slab test of a ray against b. It returns the entry
// distance and the entry face normal. Entry distances below zero mean the
// origin is inside or behind the box and are rejected.
func intersect(b r3.Box, o, d r3.Vec) (float64, r3.Vec, bool) {
	tmin, tmax := math.Inf(-1), math.Inf(1)
	var normal r3.Vec
	origin := [3]float64{o.X, o.Y, o.Z}
	dir := [3]float64{d.X, d.Y, d.Z}
	lo := [3]float64{b.Min.X, b.Min.Y, b.Min.Z}
	hi := [3]float64{b.Max.X, b.Max.Y, b.Max.Z}

	for axis := 0; axis < 3; axis++ {
		if math.Abs(dir[axis]) < 1e-12 {
			if origin[axis] < lo[axis] || origin[axis] > hi[axis] {
				return 0, r3.Vec{}, false
			}
			continue
		}
		inv := 1 / dir[axis]
		t1 := (lo[axis] - origin[axis]) * inv
		t2 := (hi[axis] - origin[axis]) * inv
		n1, n2 := axisNormal(axis, -1), axisNormal(axis, 1)
		if t1 > t2 {
			t1, t2 = t2, t1
			n1, n2 = n2, n1
		}
		if t1 > tmin {
			tmin = t1
			normal = n1
		}
		if t2 < tmax {
			tmax = t2
		}
		if tmin > tmax {
			return 0, r3.Vec{}, false
		}
	}
	if tmax < 0 || tmin < 0 {
		return 0, r3.Vec{}, false
	}
	return tmin, normal, true
}

func axisNormal(axis int, sign float64) r3.Vec {
	switch axis {
	case 0:
		return r3.Vec{X: sign}
	case 1:
		return r3.Vec{Y: sign}
	default:
		return r3.Vec{Z: sign}
	}
}

func containsStrict(b r3.Box, p r3.Vec) bool {
	return p.X > b.Min.X+insideEpsilon && p.X < b.Max.X-insideEpsilon &&
		p.Y > b.Min.Y+insideEpsilon && p.Y < b.Max.Y-insideEpsilon &&
		p.Z > b.Min.Z+insideEpsilon && p.Z < b.Max.Z-insideEpsilon
}

// canon orders Min/Max component-wise.
func canon(s Solid) Solid {
	lo, hi := s.Box.Min, s.Box.Max
	s.Box = r3.Box{
		Min: r3.Vec{X: math.Min(lo.X, hi.X), Y: math.Min(lo.Y, hi.Y), Z: math.Min(lo.Z, hi.Z)},
		Max: r3.Vec{X: math.Max(lo.X, hi.X), Y: math.Max(lo.Y, hi.Y), Z: math.Max(lo.Z, hi.Z)},
	}
	return s
}
