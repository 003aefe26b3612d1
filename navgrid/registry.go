package navgrid

import (
	"fmt"
	"sort"
	"sync"

	"github.com/katalvlaran/terranav/navlog"
)

// Registry keeps named grids alive until they are deleted.
// The zero value is not usable; call NewRegistry.
type Registry struct {
	mu    sync.RWMutex
	grids map[string]*Grid
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{grids: make(map[string]*Grid)}
}

// Create builds an empty grid and registers it.
func (r *Registry) Create(params Params, opts ...Option) (*Grid, error) {
	g, err := NewGrid(params, opts...)
	if err != nil {
		return nil, err
	}
	if err := r.Register(g); err != nil {
		return nil, err
	}
	return g, nil
}

// Register adds an existing grid under its ID.
// Returns ErrGridExists if the ID is taken and ErrGridClosed for a closed grid.
func (r *Registry) Register(g *Grid) error {
	if g == nil {
		return fmt.Errorf("%w: nil grid", ErrGridNotFound)
	}
	if g.Closed() {
		return ErrGridClosed
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.grids[g.id]; ok {
		return fmt.Errorf("%w: %q", ErrGridExists, g.id)
	}
	r.grids[g.id] = g
	navlog.Logf("navgrid: registered grid %s (%d cells)", g.id, g.CellCount())
	return nil
}

// Get returns the grid registered under id.
func (r *Registry) Get(id string) (*Grid, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.grids[id]
	return g, ok
}

// Delete unregisters and closes the grid registered under id.
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	g, ok := r.grids[id]
	delete(r.grids, id)
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %q", ErrGridNotFound, id)
	}
	g.Close()
	navlog.Logf("navgrid: deleted grid %s", id)
	return nil
}

// IDs returns the registered IDs in sorted order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.grids))
	for id := range r.grids {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of registered grids.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.grids)
}

// Close deletes every registered grid.
func (r *Registry) Close() {
	for _, id := range r.IDs() {
		_ = r.Delete(id)
	}
}
