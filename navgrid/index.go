package navgrid

import (
	"math"

	"github.com/dhconnelly/rtreego"
)

// indexTol is the side of the degenerate rectangle stored per coordinate.
const indexTol = 1e-6

// bucketEntry stores one non-empty coordinate in the R-tree.
type bucketEntry struct {
	coord IntVector2
	rect  rtreego.Rect
}

// Bounds implements rtreego.Spatial.
func (b *bucketEntry) Bounds() rtreego.Rect { return b.rect }

// spatialIndex answers nearest-coordinate queries over non-empty buckets.
// It is guarded by the owning grid's lock.
type spatialIndex struct {
	tree    *rtreego.Rtree
	entries map[IntVector2]*bucketEntry
}

func newSpatialIndex() *spatialIndex {
	return &spatialIndex{
		tree:    rtreego.NewTree(2, 25, 50),
		entries: make(map[IntVector2]*bucketEntry),
	}
}

func (s *spatialIndex) insert(c IntVector2) {
	if _, ok := s.entries[c]; ok {
		return
	}
	rect, err := rtreego.NewRect(
		rtreego.Point{float64(c.X) - indexTol/2, float64(c.Y) - indexTol/2},
		[]float64{indexTol, indexTol},
	)
	if err != nil {
		return
	}
	e := &bucketEntry{coord: c, rect: rect}
	s.entries[c] = e
	s.tree.Insert(e)
}

func (s *spatialIndex) remove(c IntVector2) {
	e, ok := s.entries[c]
	if !ok {
		return
	}
	delete(s.entries, c)
	s.tree.Delete(e)
}

// nearest returns the indexed coordinate closest to (x,y), breaking ties
// towards the smaller coordinate. The R-tree yields one nearest entry, which
// bounds a box search that collects every candidate at the same distance.
func (s *spatialIndex) nearest(x, y float64) (IntVector2, bool) {
	if len(s.entries) == 0 {
		return IntVector2{}, false
	}
	var seed *bucketEntry
	for _, sp := range s.tree.NearestNeighbors(1, rtreego.Point{x, y}) {
		if e, ok := sp.(*bucketEntry); ok {
			seed = e
		}
	}
	if seed == nil {
		return IntVector2{}, false
	}
	r := math.Hypot(float64(seed.coord.X)-x, float64(seed.coord.Y)-y) + 2*indexTol
	box, err := rtreego.NewRect(rtreego.Point{x - r, y - r}, []float64{2 * r, 2 * r})
	if err != nil {
		return seed.coord, true
	}

	best, bestD := seed.coord, math.Inf(1)
	for _, sp := range s.tree.SearchIntersect(box) {
		e, ok := sp.(*bucketEntry)
		if !ok {
			continue
		}
		d := math.Hypot(float64(e.coord.X)-x, float64(e.coord.Y)-y)
		if d < bestD || (d == bestD && e.coord.Less(best)) {
			best, bestD = e.coord, d
		}
	}
	return best, true
}
