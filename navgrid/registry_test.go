package navgrid_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/terranav/navgrid"
	"github.com/katalvlaran/terranav/navlog"
)

func TestRegistry_Lifecycle(t *testing.T) {
	var logged []string
	navlog.SetLogger(func(format string, _ ...interface{}) { logged = append(logged, format) })
	t.Cleanup(func() { navlog.SetLogger(nil) })

	r := navgrid.NewRegistry()
	a, err := r.Create(navgrid.DefaultParams(), navgrid.WithID("a"))
	require.NoError(t, err)
	b, err := r.Create(navgrid.DefaultParams())
	require.NoError(t, err)
	assert.NotEmpty(t, b.ID(), "random ID when none given")

	_, err = r.Create(navgrid.DefaultParams(), navgrid.WithID("a"))
	require.ErrorIs(t, err, navgrid.ErrGridExists)

	got, ok := r.Get("a")
	require.True(t, ok)
	assert.Same(t, a, got)
	assert.Equal(t, 2, r.Len())
	assert.Contains(t, r.IDs(), "a")

	require.NoError(t, r.Delete("a"))
	assert.True(t, a.Closed())
	_, ok = r.Get("a")
	assert.False(t, ok)
	require.ErrorIs(t, r.Delete("a"), navgrid.ErrGridNotFound)
	require.ErrorIs(t, r.Register(a), navgrid.ErrGridClosed)

	r.Close()
	assert.Zero(t, r.Len())
	assert.True(t, b.Closed())
	assert.Len(t, logged, 4, "two registrations and two deletions")
}
