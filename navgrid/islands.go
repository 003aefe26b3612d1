package navgrid

import "sort"

// Islands partitions the live cells into connected components of the plain
// neighbour relation. Connections are ignored, so a ledge reachable only by
// a one-way drop forms its own island.
//
// Components are ordered by their first cell, and cells within a component
// follow Cells order.
//
// Time:   O(n·d) with d ≤ 8 (+ stacked cells with VerticalNeighbours).
// Memory: O(n) for visited flags and output.
func (g *Grid) Islands() [][]*Cell {
	g.mu.RLock()
	defer g.mu.RUnlock()

	cells := g.cellsLocked()
	rank := make(map[*Cell]int, len(cells))
	for i, c := range cells {
		rank[c] = i
	}
	seen := make([]bool, len(g.byID))
	var (
		comps [][]*Cell
		buf   []*Cell
	)
	for _, c0 := range cells {
		if seen[c0.id] {
			continue
		}
		// BFS to collect component
		queue := []*Cell{c0}
		seen[c0.id] = true
		for qi := 0; qi < len(queue); qi++ {
			buf = queue[qi].neighboursLocked(buf[:0])
			for _, n := range buf {
				if !seen[n.id] {
					seen[n.id] = true
					queue = append(queue, n)
				}
			}
		}
		sortByRank(queue, rank)
		comps = append(comps, queue)
	}
	return comps
}

// IslandOf returns the component containing c, or nil if c is not live.
func (g *Grid) IslandOf(c *Cell) []*Cell {
	for _, island := range g.Islands() {
		for _, m := range island {
			if m == c {
				return island
			}
		}
	}
	return nil
}

func sortByRank(cells []*Cell, rank map[*Cell]int) {
	sort.Slice(cells, func(i, j int) bool { return rank[cells[i]] < rank[cells[j]] })
}
