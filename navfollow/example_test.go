package navfollow_test

import (
	"context"
	"fmt"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/katalvlaran/terranav/navfollow"
	"github.com/katalvlaran/terranav/navgrid"
	"github.com/katalvlaran/terranav/navlog"
	"github.com/katalvlaran/terranav/pathfind"
)

// ExampleFollower drives an agent that teleports onto each waypoint it is
// given until it arrives.
func ExampleFollower() {
	navlog.SetLogger(nil)
	g, _ := navgrid.NewGrid(navgrid.DefaultParams())
	for x := 0; x < 4; x++ {
		c, _ := g.NewCell(navgrid.IntVector2{X: x}, [4]float64{})
		_ = g.AddCell(c)
	}
	pool := pathfind.NewPool(1)
	defer pool.Close()
	f, _ := navfollow.New(g, pool, navfollow.DefaultConfig())

	f.SetDestination(r3.Vec{X: 3})
	pos, now := r3.Vec{}, time.Unix(0, 0)
	for i := 0; i < 10; i++ {
		wp, state := f.Update(now, pos)
		fmt.Println(state, wp.Cell)
		if state == navfollow.StateArrived {
			break
		}
		if state == navfollow.StatePlanning {
			_ = f.Wait(context.Background())
			continue
		}
		pos = wp.Position
	}
	// Output:
	// planning <nil>
	// following cell(1,0)@0.000
	// following cell(2,0)@0.000
	// following cell(3,0)@0.000
	// arrived cell(3,0)@0.000
}
