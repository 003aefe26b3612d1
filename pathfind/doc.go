// Package pathfind runs A* searches over a navgrid.Grid.
//
// Overview:
//
//   - Run searches synchronously from a start cell to a target cell. The
//     search walks Cell.NeighboursAndConnections, so one-way drops and jumps
//     are honoured, and scores edges by 3D distance with a straight-line
//     heuristic.
//   - FindPath resolves world positions to cells first.
//   - RunAsync offloads a search to a goroutine and returns a Task; Pool runs
//     tasks on a fixed set of workers.
//   - Race runs a forward search and a reverse search concurrently and keeps
//     the first complete path. The reverse search only walks plain
//     neighbours, because connections are not reversible.
//   - Result.Simplify string-pulls the waypoint list against a LineOfSight:
//     geom.LineOfSight for geometry-backed checks, GridLineOfSight for
//     grid-only checks.
//
// Filtering (Options):
//
//   - ExcludeTags removes cells carrying any listed tag. navgrid.TagOccupied
//     there means "skip occupied cells", except cells occupied by
//     Options.Creator itself.
//   - IncludeTags, when non-empty, keeps only cells carrying one of them.
//   - MaxDistance bounds how far beyond the straight-line start-target
//     distance the heuristic may stray.
//   - MaxDropHeight bounds the fall along connection edges.
//   - AcceptPartial returns the closest reachable cell when the target is
//     unreachable, provided it is closer than the start.
//
// Outcomes (Status):
//
//   - StatusFound, StatusPartial, StatusNotFound, StatusCancelled and
//     StatusInvalid. No-path outcomes are statuses, never errors.
//
// Complexity:
//
//   - Time:   O(E log V) over the explored region.
//   - Memory: O(V) nodes in a per-search arena, bounded by the grid's cell
//     capacity.
//
// Concurrency:
//
//   - Each search owns its nodes, heap and sets. Any number of searches may
//     share a grid. Occupancy may change mid-search; a search sees each flag
//     as it is when the cell is expanded.
//   - Cancellation is cooperative: ctx is polled once per expanded node.
//
// Metrics:
//
//   - terranav_path_search_total{status}, terranav_path_search_duration_seconds,
//     terranav_path_nodes_expanded and terranav_path_race_winner_total{direction}
//     are registered with the default Prometheus registry.
package pathfind
