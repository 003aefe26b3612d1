// Package geom describes the geometry queries the navigation grid depends on.
//
// What:
//
//   - Ray, Filter and Hit describe a world-space raycast and its outcome.
//   - Query is the collaborator contract: raycasts plus box-overlap tests,
//     optionally restricted to static world geometry or filtered by tag.
//   - BoxWorld is a reference Query made of axis-aligned solids. It backs the
//     package tests, the grid builder tests and small tools; production callers
//     adapt their own physics scene to Query instead.
//   - LineOfSight turns a Query into the segment check used by path smoothing.
//
// Conventions:
//
//   - World space is right-handed with +Y up. Grid coordinates map world X to
//     grid X and world Z to grid Y.
//   - Vectors are gonum r3.Vec values; boxes are r3.Box with Min ≤ Max.
//
// Complexity:
//
//   - BoxWorld.Raycast and BoxWorld.Overlaps: O(S) for S solids.
package geom
