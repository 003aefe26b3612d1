package pathfind

import (
	"context"
	"time"

	"github.com/katalvlaran/terranav/navgrid"
)

// Race searches from both ends at once and returns the first path found.
//
// The forward search uses the given options. The reverse search walks from
// target to start over plain neighbours only, since connections cannot be
// followed backwards, and never accepts a partial path. Whichever finds the
// path first cancels the other. A reverse path is returned in travel order
// with no waypoint tags. When neither finds a path the forward result is
// returned, so AcceptPartial still applies.
//
// When the target itself fails the filter, no reverse search is started.
func Race(ctx context.Context, start, target *navgrid.Cell, opts ...Option) Result {
	began := time.Now()
	o := resolve(opts)
	res := race(ctx, start, target, o)
	observe(res, time.Since(began))
	return res
}

func race(ctx context.Context, start, target *navgrid.Cell, o Options) Result {
	if start == nil || target == nil || !newFilter(o).passable(target) {
		return search(ctx, start, target, o)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	rev := o.Clone()
	rev.AcceptPartial = false
	rev.UseConnections = false

	fwdCh := make(chan Result, 1)
	revCh := make(chan Result, 1)
	go func() { fwdCh <- search(ctx, start, target, o.Clone()) }()
	go func() { revCh <- search(ctx, target, start, rev) }()

	var fwd Result
	for fwdCh != nil || revCh != nil {
		select {
		case r := <-fwdCh:
			fwdCh = nil
			if r.Status == StatusFound {
				cancel()
				raceWinner.WithLabelValues("forward").Inc()
				return r
			}
			fwd = r
		case r := <-revCh:
			revCh = nil
			if r.Status == StatusFound {
				cancel()
				raceWinner.WithLabelValues("reverse").Inc()
				out := r.reversed()
				out.Options = o
				return out
			}
		}
	}
	return fwd
}
