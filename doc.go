// Package terranav is a navigation layer for 3D terrain: it turns world
// geometry into a walkable cell grid and finds paths across it.
//
// 🚀 What is terranav?
//
//	A concurrent library for agents that walk, drop and jump:
//		• Grids: sparse walkable cells with corner heights, tags and occupancy
//		• Generation: chunked raycast scanning with edge, drop and jump phases
//		• Search: A* with tag filters, partial paths and cancellation
//		• Racing: forward and reverse searches, first complete path wins
//		• Smoothing: line-of-sight string pulling that keeps drops and jumps
//		• Following: per-agent replanning on a shared worker pool
//		• Persistence: msgpack snapshots with optional zstd compression
//
// Everything is organised in subpackages:
//
//	geom/        vectors, rays and the geometry query contract (+ BoxWorld)
//	navgrid/     Grid, Cell, adjacency, connections, lookups, Registry
//	gridbuild/   Builder generating a Grid from a geom.Query
//	pqueue/      fixed-capacity binary heap used by the search
//	pathfind/    Run, Race, Task, Pool, Result.Simplify, GridLineOfSight
//	navfollow/   Follower steering one agent along planned paths
//	navstore/    Encode / Decode of grids
//	navconfig/   hjson configuration for all of the above
//	navlog/      replaceable diagnostic logger
//
// Quick ASCII example (two ledges, one drop):
//
//	    A───B           (height 3)
//	        ╲ drop
//	         C───D      (height 0)
//
//	pathfind.Run(ctx, A, D) → A, B, C(drop), D
//	pathfind.Run(ctx, D, A) → StatusNotFound: connections are one-way.
//
// Metrics are exported through the default Prometheus registry by pathfind.
package terranav
