// Package navfollow steers an agent along paths from the pathfind engine.
//
// A Follower owns one agent's navigation state. The game loop calls Update
// every tick with the agent's position; Update returns the waypoint to move
// toward and a State. Searches run on a shared pathfind.Pool and are queued
// with TrySubmit, so Update never blocks on a search or on a full queue.
// When the pool is busy the current path is kept and the request is made
// again on the next Update.
//
// Replanning happens at most once per Config.RetraceInterval, when:
//
//   - the destination resolves to a different cell than the current path
//     was planned for (a followed target moved), or
//   - the agent strayed farther than StrayFactor·CellSize/2 from the path
//     segment it is walking, or
//   - there is no path and no search in flight.
//
// The waypoint index advances while the agent is within WaypointTolerance of
// the current waypoint. The agent has arrived once its cell is the
// destination cell or the index runs past the last waypoint.
//
// Movement itself stays with the caller.
package navfollow
