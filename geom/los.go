package geom

import "gonum.org/v1/gonum/spatial/r3"

// LineOfSight checks straight segments against a Query. The segment is
// raised by Lift so that it skims above the walkable surface instead of
// grazing it. It satisfies pathfind.LineOfSight.
type LineOfSight struct {
	Query  Query
	Filter Filter
	Lift   float64
}

// Clear reports whether nothing blocks the segment from → to.
func (l LineOfSight) Clear(from, to r3.Vec) bool {
	lift := r3.Scale(l.Lift, Up)
	a, b := r3.Add(from, lift), r3.Add(to, lift)
	length := Distance(a, b)
	if length == 0 {
		return true
	}
	hit := l.Query.Raycast(Ray{Origin: a, Direction: r3.Sub(b, a), MaxDistance: length}, l.Filter)
	return !hit.Hit
}
