// Package navgrid models walkable terrain as a sparse grid of cells and
// answers the lookups a path search needs.
//
// What:
//
//   - IntVector2 is the integer grid coordinate used as map key.
//   - Cell is one walkable tile: four corner heights, a tag set, an atomic
//     occupancy flag with an optional occupant record, and directed
//     connections (jumps, drops, links) to other cells.
//   - Grid owns cells keyed by coordinate. Several cells may share a
//     coordinate when floors overlap (bridges, balconies, caves).
//   - Registry keeps named grids alive and tears them down explicitly.
//
// Adjacency:
//
//   - Two cells are neighbours when their coordinates are 8-adjacent and the
//     corner heights along their shared edge (or shared corner, for
//     diagonals) agree within NeighbourHeightTolerance. Cells that touch in
//     2D but are split by a wall or cliff are therefore not neighbours.
//   - Params.VerticalNeighbours additionally links cells stacked on the same
//     coordinate whose heights fall within Params.VerticalLinkHeight.
//   - Connections are one-way. A drop from A to B never implies a climb from
//     B to A.
//
// Lookups:
//
//   - CellAt(coord, height) picks the height-compatible cell in one bucket.
//   - CellAtPosition converts a world position and optionally falls back to
//     the nearest occupied coordinate through an R-tree index, avoiding a
//     scan over every cell. NearestCellLinear keeps the O(n) scan.
//
// Concurrency:
//
//   - The coordinate map, tags and connections are guarded by a grid-wide
//     sync.RWMutex; any number of searches may read concurrently.
//   - Occupancy is atomic and may change at any time. Readers tolerate stale
//     values; the worst case is one search seeing a cell one update late.
//
// Errors:
//
//   - ErrInvalidParams, ErrMalformedCell, ErrDuplicateCell, ErrForeignCell,
//     ErrCellRemoved, ErrGridClosed, ErrGridExists, ErrGridNotFound.
package navgrid
