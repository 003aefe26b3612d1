package navconfig

import (
	"fmt"
	"math"
	"time"

	"github.com/paulmach/orb"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/katalvlaran/terranav/gridbuild"
	"github.com/katalvlaran/terranav/navfollow"
	"github.com/katalvlaran/terranav/navgrid"
	"github.com/katalvlaran/terranav/pathfind"
)

// Validate checks every set field. Unset fields are never an error.
func (c *Config) Validate() error {
	if err := c.Params().Validate(); err != nil {
		return fmt.Errorf("%w: grid: %w", ErrInvalidConfig, err)
	}
	if o := c.Grid.Origin; o != nil && (len(o) != 3 || !finite(o...)) {
		return fmt.Errorf("%w: grid.origin must be three finite numbers, got %v", ErrInvalidConfig, o)
	}
	if c.Grid.Yaw != nil && !finite(*c.Grid.Yaw) {
		return fmt.Errorf("%w: grid.yaw must be finite", ErrInvalidConfig)
	}
	if err := c.Build.validate(); err != nil {
		return err
	}
	if err := c.Search.validate(); err != nil {
		return err
	}
	if _, err := c.Follow.parse(); err != nil {
		return err
	}
	return nil
}

func (b *BuildConfig) validate() error {
	if a := b.Area; a != nil {
		if len(a) != 4 || !finite(a...) || a[0] > a[2] || a[1] > a[3] {
			return fmt.Errorf("%w: build.area must be [minX, minZ, maxX, maxZ], got %v", ErrInvalidConfig, a)
		}
	}
	if lo, hi := b.GetHeightRange(); !(hi > lo) {
		return fmt.Errorf("%w: build height range [%v,%v]", ErrInvalidConfig, lo, hi)
	}
	if b.ChunkSize != nil && *b.ChunkSize < 1 {
		return fmt.Errorf("%w: build.chunk_size must be ≥ 1, got %d", ErrInvalidConfig, *b.ChunkSize)
	}
	if b.Workers != nil && *b.Workers < 1 {
		return fmt.Errorf("%w: build.workers must be ≥ 1, got %d", ErrInvalidConfig, *b.Workers)
	}
	if b.ProbeStep != nil && !(*b.ProbeStep > 0) {
		return fmt.Errorf("%w: build.probe_step must be positive, got %v", ErrInvalidConfig, *b.ProbeStep)
	}
	for name, cc := range map[string]*ConnectionCfg{"drop": b.Drop, "jump": b.Jump} {
		if cc == nil {
			continue
		}
		for _, v := range []*float64{cc.MaxDistance, cc.MaxHeightUp, cc.MaxHeightDown} {
			if v != nil && (*v < 0 || math.IsNaN(*v)) {
				return fmt.Errorf("%w: build.%s limits must be non-negative", ErrInvalidConfig, name)
			}
		}
	}
	return nil
}

func (s *SearchConfig) validate() error {
	if s.MaxDistance != nil && (*s.MaxDistance < 0 || math.IsNaN(*s.MaxDistance)) {
		return fmt.Errorf("%w: search.max_distance must be non-negative", ErrInvalidConfig)
	}
	if s.MaxDropHeight != nil && (*s.MaxDropHeight < 0 || math.IsNaN(*s.MaxDropHeight)) {
		return fmt.Errorf("%w: search.max_drop_height must be non-negative", ErrInvalidConfig)
	}
	return nil
}

//----------------------------------------------------------------------------//
// Grid
//----------------------------------------------------------------------------//

// Params returns the grid parameters, defaulting to navgrid.DefaultParams.
func (c *Config) Params() navgrid.Params {
	p := navgrid.DefaultParams()
	g := c.Grid
	if g.CellSize != nil {
		p.CellSize = *g.CellSize
	}
	if g.StandableAngle != nil {
		p.StandableAngle = *g.StandableAngle
	}
	if g.StepSize != nil {
		p.StepSize = *g.StepSize
	}
	if g.WidthClearance != nil {
		p.WidthClearance = *g.WidthClearance
	}
	if g.HeightClearance != nil {
		p.HeightClearance = *g.HeightClearance
	}
	if g.VerticalNeighbours != nil {
		p.VerticalNeighbours = *g.VerticalNeighbours
	}
	return p
}

// GridOptions returns the navgrid options for ID, origin and yaw.
func (c *Config) GridOptions() []navgrid.Option {
	var opts []navgrid.Option
	if c.Grid.ID != nil && *c.Grid.ID != "" {
		opts = append(opts, navgrid.WithID(*c.Grid.ID))
	}
	if o := c.Grid.Origin; len(o) == 3 {
		opts = append(opts, navgrid.WithOrigin(r3.Vec{X: o[0], Y: o[1], Z: o[2]}))
	}
	if c.Grid.Yaw != nil {
		opts = append(opts, navgrid.WithYaw(*c.Grid.Yaw))
	}
	return opts
}

// NewGrid returns an empty grid with the configured parameters.
func (c *Config) NewGrid() (*navgrid.Grid, error) {
	return navgrid.NewGrid(c.Params(), c.GridOptions()...)
}

//----------------------------------------------------------------------------//
// Build
//----------------------------------------------------------------------------//

// GetArea returns the scan area and whether one is set.
func (b *BuildConfig) GetArea() (orb.Bound, bool) {
	if len(b.Area) != 4 {
		return orb.Bound{}, false
	}
	return orb.Bound{Min: orb.Point{b.Area[0], b.Area[1]}, Max: orb.Point{b.Area[2], b.Area[3]}}, true
}

// GetHeightRange returns the vertical scan range, defaulting to gridbuild's.
func (b *BuildConfig) GetHeightRange() (lo, hi float64) {
	d := gridbuild.DefaultConfig()
	lo, hi = d.MinHeight, d.MaxHeight
	if b.MinHeight != nil {
		lo = *b.MinHeight
	}
	if b.MaxHeight != nil {
		hi = *b.MaxHeight
	}
	return lo, hi
}

// GetEdgeTags reports whether the edge phase runs. Default true.
func (b *BuildConfig) GetEdgeTags() bool {
	if b.EdgeTags == nil {
		return true
	}
	return *b.EdgeTags
}

// BuildOptions returns gridbuild options for every configured setting.
// Call Validate first; the option constructors panic on invalid values.
func (c *Config) BuildOptions() []gridbuild.Option {
	b := c.Build
	opts := []gridbuild.Option{gridbuild.WithParams(c.Params())}
	if gopts := c.GridOptions(); len(gopts) > 0 {
		opts = append(opts, gridbuild.WithGridOptions(gopts...))
	}
	if area, ok := b.GetArea(); ok {
		opts = append(opts, gridbuild.WithArea(area))
	}
	lo, hi := b.GetHeightRange()
	opts = append(opts, gridbuild.WithHeightRange(lo, hi))
	if b.ChunkSize != nil {
		opts = append(opts, gridbuild.WithChunkSize(*b.ChunkSize))
	}
	if b.Workers != nil {
		opts = append(opts, gridbuild.WithWorkers(*b.Workers))
	}
	if b.ProbeStep != nil {
		opts = append(opts, gridbuild.WithProbeStep(*b.ProbeStep))
	}
	if !b.GetEdgeTags() {
		opts = append(opts, gridbuild.WithoutEdgeTags())
	}
	if len(b.BlockTags) > 0 {
		opts = append(opts, gridbuild.WithBlockTags(b.BlockTags...))
	}
	if len(b.CellTagsInclude) > 0 || len(b.CellTagsExclude) > 0 {
		opts = append(opts, gridbuild.WithCellTags(b.CellTagsInclude, b.CellTagsExclude))
	}

	d := gridbuild.DefaultConfig()
	if b.Drop != nil {
		if b.Drop.Disabled {
			opts = append(opts, gridbuild.WithoutDrops())
		} else {
			opts = append(opts, gridbuild.WithDrop(b.Drop.merge(*d.Drop)))
		}
	}
	if b.Jump != nil {
		if b.Jump.Disabled {
			opts = append(opts, gridbuild.WithoutJumps())
		} else {
			opts = append(opts, gridbuild.WithJump(b.Jump.merge(*d.Jump)))
		}
	}
	return opts
}

// merge overlays the set fields of cc on def.
func (cc *ConnectionCfg) merge(def gridbuild.ConnectionDef) gridbuild.ConnectionDef {
	if cc.Tag != nil {
		def.Tag = *cc.Tag
	}
	if cc.MaxDistance != nil {
		def.MaxDistance = *cc.MaxDistance
	}
	if cc.MaxHeightUp != nil {
		def.MaxHeightUp = *cc.MaxHeightUp
	}
	if cc.MaxHeightDown != nil {
		def.MaxHeightDown = *cc.MaxHeightDown
	}
	return def
}

//----------------------------------------------------------------------------//
// Search and follow
//----------------------------------------------------------------------------//

// SearchOptions returns pathfind options for every configured setting.
func (c *Config) SearchOptions() []pathfind.Option {
	s := c.Search
	var opts []pathfind.Option
	if len(s.IncludeTags) > 0 {
		opts = append(opts, pathfind.WithIncludeTags(s.IncludeTags...))
	}
	if len(s.ExcludeTags) > 0 {
		opts = append(opts, pathfind.WithExcludeTags(s.ExcludeTags...))
	}
	if s.ExcludeOccupied != nil && *s.ExcludeOccupied {
		opts = append(opts, pathfind.WithExcludeOccupied())
	}
	if s.MaxDistance != nil {
		opts = append(opts, pathfind.WithMaxDistance(*s.MaxDistance))
	}
	if s.MaxDropHeight != nil {
		opts = append(opts, pathfind.WithMaxDropHeight(*s.MaxDropHeight))
	}
	if s.AcceptPartial != nil && *s.AcceptPartial {
		opts = append(opts, pathfind.WithPartial())
	}
	if s.UseConnections != nil && !*s.UseConnections {
		opts = append(opts, pathfind.WithoutConnections())
	}
	return opts
}

// FollowConfig returns the navfollow configuration with SearchOptions
// attached. Invalid durations fall back to the default.
func (c *Config) FollowConfig() navfollow.Config {
	fc, err := c.Follow.parse()
	if err != nil {
		fc = navfollow.DefaultConfig()
	}
	fc.Search = c.SearchOptions()
	return fc
}

// GetRetraceInterval returns the retrace interval or the default.
func (f *FollowConfig) GetRetraceInterval() time.Duration {
	d := navfollow.DefaultConfig().RetraceInterval
	if f.RetraceInterval == nil || *f.RetraceInterval == "" {
		return d
	}
	v, err := time.ParseDuration(*f.RetraceInterval)
	if err != nil {
		return d
	}
	return v
}

func (f *FollowConfig) parse() (navfollow.Config, error) {
	fc := navfollow.DefaultConfig()
	if f.RetraceInterval != nil && *f.RetraceInterval != "" {
		if _, err := time.ParseDuration(*f.RetraceInterval); err != nil {
			return fc, fmt.Errorf("%w: invalid follow.retrace_interval %q: %w", ErrInvalidConfig, *f.RetraceInterval, err)
		}
	}
	fc.RetraceInterval = f.GetRetraceInterval()
	if f.WaypointTolerance != nil {
		fc.WaypointTolerance = *f.WaypointTolerance
	}
	if f.StrayFactor != nil {
		fc.StrayFactor = *f.StrayFactor
	}
	if f.Race != nil {
		fc.Race = *f.Race
	}
	if err := fc.Validate(); err != nil {
		return fc, fmt.Errorf("%w: follow: %w", ErrInvalidConfig, err)
	}
	return fc, nil
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
