package pathfind

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/terranav/navlog"
)

// TestPool_TrySubmitFullQueue fills the worker and the whole queue with
// held jobs, then checks that TrySubmit fails at once while Submit would wait.
func TestPool_TrySubmitFullQueue(t *testing.T) {
	navlog.SetLogger(nil)
	p := NewPool(1)
	t.Cleanup(func() { _ = p.Close() })

	started := make(chan struct{})
	release := make(chan struct{})
	held := func(ctx context.Context) Result {
		select {
		case started <- struct{}{}:
		default:
		}
		<-release
		return Result{Status: StatusNotFound}
	}

	first, err := p.submit(context.Background(), "held", held, true)
	require.NoError(t, err)
	<-started

	var queued []*Task
	for i := 0; i < cap(p.jobs); i++ {
		task, err := p.submit(context.Background(), "held", held, false)
		require.NoError(t, err, "queue slot %d", i)
		queued = append(queued, task)
	}

	began := time.Now()
	task, err := p.TrySubmit(context.Background(), nil, nil)
	require.ErrorIs(t, err, ErrPoolBusy)
	assert.Nil(t, task)
	_, err = p.TrySubmitRace(context.Background(), nil, nil)
	require.ErrorIs(t, err, ErrPoolBusy)
	assert.Less(t, time.Since(began), time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = p.Submit(ctx, nil, nil)
	require.ErrorIs(t, err, context.DeadlineExceeded, "blocking submit waits for a slot")

	close(release)
	for _, tk := range append(queued, first) {
		res, err := tk.Wait(context.Background())
		require.NoError(t, err)
		assert.Equal(t, StatusNotFound, res.Status)
	}

	task, err = p.TrySubmit(context.Background(), nil, nil)
	require.NoError(t, err)
	res, err := task.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusInvalid, res.Status)

	require.NoError(t, p.Close())
	_, err = p.TrySubmit(context.Background(), nil, nil)
	require.ErrorIs(t, err, ErrPoolClosed)
}
