package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Up is the world up axis.
var Up = r3.Vec{Y: 1}

// Down is the world down axis.
var Down = r3.Vec{Y: -1}

// Mode selects which solids a query considers.
type Mode int

const (
	// WorldOnly considers static world geometry only.
	WorldOnly Mode = iota
	// WorldAndDynamic also considers dynamic objects (crates, doors, agents).
	WorldAndDynamic
)

// Filter restricts a query.
//
// A solid carrying any ExcludeTags entry is ignored. When IncludeTags is
// non-empty, only solids carrying at least one of them are considered.
type Filter struct {
	Mode        Mode
	IncludeTags []string
	ExcludeTags []string
}

// Ray is a half-line from Origin along Direction, limited to MaxDistance.
// Direction need not be normalised; Raycast normalises it.
type Ray struct {
	Origin      r3.Vec
	Direction   r3.Vec
	MaxDistance float64
}

// Hit is the result of a raycast.
type Hit struct {
	// Hit reports whether anything was struck within MaxDistance.
	Hit bool
	// Position is the first contact point (the origin when StartedInside).
	Position r3.Vec
	// Normal is the outward surface normal at Position (zero when StartedInside).
	Normal r3.Vec
	// Distance along the ray to Position.
	Distance float64
	// StartedInside reports that the ray origin was already inside a solid.
	StartedInside bool
	// Tags of the struck solid.
	Tags []string
}

// Query is the geometry collaborator used during grid generation and path
// smoothing. Implementations must be safe for concurrent use.
type Query interface {
	// Raycast returns the nearest hit along ray among solids passing filter.
	Raycast(ray Ray, filter Filter) Hit
	// Overlaps reports whether box intersects any solid passing filter.
	// Touching faces do not count as overlap.
	Overlaps(box r3.Box, filter Filter) bool
}

// Distance returns the Euclidean distance between a and b.
func Distance(a, b r3.Vec) float64 {
	return r3.Norm(r3.Sub(a, b))
}

// HorizontalDistance returns the distance between a and b ignoring height.
func HorizontalDistance(a, b r3.Vec) float64 {
	return math.Hypot(a.X-b.X, a.Z-b.Z)
}

// Lerp interpolates between a and b by t.
func Lerp(a, b r3.Vec, t float64) r3.Vec {
	return r3.Add(a, r3.Scale(t, r3.Sub(b, a)))
}

// BoxAround returns a box centred horizontally on base, halfWidth wide on X
// and Z, spanning heights [base.Y+bottom, base.Y+top].
func BoxAround(base r3.Vec, halfWidth, bottom, top float64) r3.Box {
	return r3.Box{
		Min: r3.Vec{X: base.X - halfWidth, Y: base.Y + bottom, Z: base.Z - halfWidth},
		Max: r3.Vec{X: base.X + halfWidth, Y: base.Y + top, Z: base.Z + halfWidth},
	}
}

// accepts reports whether a solid with the given tags and dynamic flag passes f.
func (f Filter) accepts(tags []string, dynamic bool) bool {
	if dynamic && f.Mode == WorldOnly {
		return false
	}
	for _, ex := range f.ExcludeTags {
		if hasTag(tags, ex) {
			return false
		}
	}
	if len(f.IncludeTags) == 0 {
		return true
	}
	for _, in := range f.IncludeTags {
		if hasTag(tags, in) {
			return true
		}
	}
	return false
}

func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}
