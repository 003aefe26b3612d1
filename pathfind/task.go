package pathfind

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/terranav/navgrid"
	"github.com/katalvlaran/terranav/navlog"
)

// Task is a search running in the background.
type Task struct {
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	res    Result
}

func newTask(ctx context.Context) *Task {
	ctx, cancel := context.WithCancel(ctx)
	return &Task{ctx: ctx, cancel: cancel, done: make(chan struct{})}
}

func (t *Task) complete(res Result) {
	t.res = res
	t.cancel()
	close(t.done)
}

// Done is closed once the result is available.
func (t *Task) Done() <-chan struct{} { return t.done }

// Cancel asks the search to stop. The task still completes, with
// StatusCancelled unless the search had already finished.
func (t *Task) Cancel() { t.cancel() }

// Wait blocks until the task completes or ctx is done.
func (t *Task) Wait(ctx context.Context) (Result, error) {
	select {
	case <-t.done:
		return t.res, nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// Result returns the result without blocking. ok is false while the search
// is still running.
func (t *Task) Result() (res Result, ok bool) {
	select {
	case <-t.done:
		return t.res, true
	default:
		return Result{}, false
	}
}

// RunAsync starts Run on its own goroutine.
func RunAsync(ctx context.Context, start, target *navgrid.Cell, opts ...Option) *Task {
	t := newTask(ctx)
	go func() { t.complete(Run(t.ctx, start, target, opts...)) }()
	return t
}

type job struct {
	task *Task
	run  func(ctx context.Context) Result
	name string
}

// Pool runs searches on a fixed number of worker goroutines.
type Pool struct {
	mu     sync.RWMutex
	jobs   chan job
	closed bool
	eg     *errgroup.Group
}

// NewPool starts workers goroutines. Panics if workers < 1.
func NewPool(workers int) *Pool {
	if workers < 1 {
		panic("pathfind: NewPool requires workers ≥ 1")
	}
	p := &Pool{jobs: make(chan job, workers*4), eg: new(errgroup.Group)}
	for i := 0; i < workers; i++ {
		p.eg.Go(func() error {
			for j := range p.jobs {
				p.exec(j)
			}
			return nil
		})
	}
	return p
}

// exec runs one job. A panicking search completes its task with
// StatusInvalid instead of taking the worker down.
func (p *Pool) exec(j job) {
	defer func() {
		if v := recover(); v != nil {
			navlog.Logf("pathfind: %s task failed: %v", j.name, v)
			j.task.complete(Result{Status: StatusInvalid})
		}
	}()
	j.task.complete(j.run(j.task.ctx))
}

// Submit queues a Run and returns its task. It blocks while the queue is
// full and fails with ErrPoolClosed after Close.
func (p *Pool) Submit(ctx context.Context, start, target *navgrid.Cell, opts ...Option) (*Task, error) {
	return p.submit(ctx, "search", searchJob(start, target, opts), true)
}

// SubmitRace queues a Race and returns its task.
func (p *Pool) SubmitRace(ctx context.Context, start, target *navgrid.Cell, opts ...Option) (*Task, error) {
	return p.submit(ctx, "race", raceJob(start, target, opts), true)
}

// TrySubmit is Submit without waiting: it fails with ErrPoolBusy when the
// queue is full and never blocks.
func (p *Pool) TrySubmit(ctx context.Context, start, target *navgrid.Cell, opts ...Option) (*Task, error) {
	return p.submit(ctx, "search", searchJob(start, target, opts), false)
}

// TrySubmitRace is SubmitRace without waiting.
func (p *Pool) TrySubmitRace(ctx context.Context, start, target *navgrid.Cell, opts ...Option) (*Task, error) {
	return p.submit(ctx, "race", raceJob(start, target, opts), false)
}

func searchJob(start, target *navgrid.Cell, opts []Option) func(context.Context) Result {
	return func(ctx context.Context) Result { return Run(ctx, start, target, opts...) }
}

func raceJob(start, target *navgrid.Cell, opts []Option) func(context.Context) Result {
	return func(ctx context.Context) Result { return Race(ctx, start, target, opts...) }
}

// submit queues run. With wait unset a full queue fails at once.
func (p *Pool) submit(ctx context.Context, name string, run func(context.Context) Result, wait bool) (*Task, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return nil, ErrPoolClosed
	}
	t := newTask(ctx)
	j := job{task: t, run: run, name: name}
	if !wait {
		select {
		case p.jobs <- j:
			return t, nil
		default:
			t.cancel()
			return nil, ErrPoolBusy
		}
	}
	select {
	case p.jobs <- j:
		return t, nil
	case <-ctx.Done():
		t.cancel()
		return nil, fmt.Errorf("pathfind: submit %s: %w", name, ctx.Err())
	}
}

// Close stops accepting work, lets queued searches finish and waits for the
// workers to exit. Calling Close more than once is a no-op.
func (p *Pool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.jobs)
	p.mu.Unlock()

	began := time.Now()
	err := p.eg.Wait()
	navlog.Logf("pathfind: pool drained in %s", time.Since(began))
	return err
}
