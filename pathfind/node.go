package pathfind

import "github.com/katalvlaran/terranav/navgrid"

const blockSize = 256

// node is the search state of one cell. parent and self are arena indices.
type node struct {
	cell      *navgrid.Cell
	g, h      float64
	parent    int32
	self      int32
	heapIndex int
	tag       string
	closed    bool
}

func (n *node) f() float64 { return n.g + n.h }

// CompareTo ranks lower f first, then lower h, then lower cell ID.
func (n *node) CompareTo(o *node) int {
	switch nf, of := n.f(), o.f(); {
	case nf < of:
		return 1
	case nf > of:
		return -1
	}
	switch {
	case n.h < o.h:
		return 1
	case n.h > o.h:
		return -1
	}
	switch ni, oi := n.cell.ID(), o.cell.ID(); {
	case ni < oi:
		return 1
	case ni > oi:
		return -1
	}
	return 0
}

func (n *node) HeapIndex() int     { return n.heapIndex }
func (n *node) SetHeapIndex(i int) { n.heapIndex = i }

// arena hands out nodes from fixed-size blocks so that pointers stay valid
// while it grows. It never holds more than limit nodes.
type arena struct {
	blocks [][]node
	n      int
	limit  int
	byCell map[*navgrid.Cell]int32
}

func newArena(limit int) *arena {
	return &arena{limit: limit, byCell: make(map[*navgrid.Cell]int32)}
}

// get returns the node of cell c and whether it already existed. It returns
// nil when the arena is full.
func (a *arena) get(c *navgrid.Cell) (*node, bool) {
	if i, ok := a.byCell[c]; ok {
		return a.at(i), true
	}
	if a.n >= a.limit {
		return nil, false
	}
	if a.n%blockSize == 0 {
		a.blocks = append(a.blocks, make([]node, blockSize))
	}
	i := int32(a.n)
	a.n++
	n := a.at(i)
	*n = node{cell: c, parent: -1, self: i, heapIndex: -1}
	a.byCell[c] = i
	return n, false
}

func (a *arena) at(i int32) *node {
	return &a.blocks[int(i)/blockSize][int(i)%blockSize]
}
