// Package gridbuild generates a navgrid.Grid from geometry queries.
//
// A Builder is an immutable generation recipe: grid parameters (cell size,
// clearances, standable angle, step size), the area and height range to
// scan, query filters, cell tag filters, and the drop/jump connection
// definitions. Build runs four phases separated by completion barriers:
//
//  1. Terrain: every coordinate column is raycast downwards, top to bottom,
//     so stacked floors each yield a candidate. A candidate becomes a cell
//     when its surface normal is standable, its four corners (sampled at the
//     exact points shared with neighbouring columns) stay within the step
//     and slope tolerance, and a clearance box above it is free.
//  2. Edge: cells missing an orthogonal neighbour get navgrid.TagEdge.
//  3. Drop: edge cells connect one-way to the highest lower cell in the
//     open direction when the fall is within the drop height.
//  4. Jump: edge cells connect to the nearest cell across a gap, within the
//     jump distance and height limits, when the arc is unobstructed.
//
// Work is split into square chunks of coordinates and spread over a bounded
// errgroup. Phase 1 creates cells concurrently; later phases read the
// finished grid concurrently and apply their tags and connections serially
// in chunk order, so a chunked build equals a single-chunk build.
//
// Errors:
//
//   - ErrNilQuery      if New receives no geometry query.
//   - ErrEmptyArea     if the scan area is unset or contains no coordinate.
//   - ErrInvalidConfig if parameters or height range are unusable.
//
// Build also returns the context error when cancelled.
package gridbuild
