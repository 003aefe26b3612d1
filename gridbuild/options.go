// SPDX-License-Identifier: MIT
// Package: terranav/gridbuild
//
// options.go — functional options for the gridbuild package.
//
// Contract:
//   • Options are functional (type Option func(*Config)).
//   • Option constructors validate and panic on meaningless inputs.
//     Build itself never panics.
//   • DefaultConfig is the single source of defaults.

package gridbuild

import (
	"fmt"
	"math"
	"runtime"

	"github.com/paulmach/orb"

	"github.com/katalvlaran/terranav/geom"
	"github.com/katalvlaran/terranav/navgrid"
)

// Default connection tags.
const (
	TagDrop = "drop"
	TagJump = "jump"
)

// ConnectionDef describes one kind of generated connection.
type ConnectionDef struct {
	// Tag is carried by every generated connection.
	Tag string
	// MaxDistance is the largest horizontal distance, in world units.
	MaxDistance float64
	// MaxHeightUp is the largest rise from source to destination.
	MaxHeightUp float64
	// MaxHeightDown is the largest fall from source to destination.
	MaxHeightDown float64
}

// Config is the resolved build recipe.
type Config struct {
	Params navgrid.Params
	// Area is the grid-local XZ rectangle whose cell centres are scanned.
	Area orb.Bound
	// MinHeight and MaxHeight bound the downward scan, in grid-local Y.
	MinHeight, MaxHeight float64
	// GridOptions are forwarded to navgrid.NewGrid.
	GridOptions []navgrid.Option

	// Filter selects the solids every query considers.
	Filter geom.Filter
	// CellTagInclude limits which tags of the struck solid are copied to the
	// cell. Empty copies every tag.
	CellTagInclude []string
	// CellTagExclude tags are never copied.
	CellTagExclude []string
	// BlockTags mark surfaces that never produce a cell (lava, spikes).
	BlockTags []string

	// Drop configures drop connections; nil disables the phase.
	Drop *ConnectionDef
	// Jump configures jump connections; nil disables the phase.
	Jump *ConnectionDef
	// EdgeTags enables the edge phase. Drops and jumps start from edge
	// cells and are skipped without it.
	EdgeTags bool

	// ChunkSize is the side of a work chunk, in coordinates.
	ChunkSize int
	// Workers bounds concurrent chunk workers.
	Workers int
	// ProbeStep is how far the terrain scan steps down when it starts
	// inside a solid.
	ProbeStep float64
}

// Option mutates Config.
type Option func(*Config)

// DefaultConfig returns the defaults. Area is unset and must be provided.
//
// Defaults:
//   - Params:     navgrid.DefaultParams().
//   - Heights:    [-100, 100].
//   - Drop:       tag "drop", fall up to 3.
//   - Jump:       tag "jump", 3 units across, 0.5 up, 1 down.
//   - EdgeTags:   true.
//   - ChunkSize:  32; Workers: GOMAXPROCS; ProbeStep: 0.25.
func DefaultConfig() Config {
	return Config{
		Params:    navgrid.DefaultParams(),
		MinHeight: -100,
		MaxHeight: 100,
		Drop:      &ConnectionDef{Tag: TagDrop, MaxHeightDown: 3},
		Jump:      &ConnectionDef{Tag: TagJump, MaxDistance: 3, MaxHeightUp: 0.5, MaxHeightDown: 1},
		EdgeTags:  true,
		ChunkSize: 32,
		Workers:   runtime.GOMAXPROCS(0),
		ProbeStep: 0.25,
	}
}

// Validate reports whether c can drive a build.
func (c Config) Validate() error {
	if err := c.Params.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.Area == (orb.Bound{}) || c.Area.IsEmpty() {
		return ErrEmptyArea
	}
	if lo, hi := coordRange(c.Area.Min[0], c.Area.Max[0], c.Params.CellSize); lo > hi {
		return fmt.Errorf("%w: no cell centre along X in %v", ErrEmptyArea, c.Area)
	}
	if lo, hi := coordRange(c.Area.Min[1], c.Area.Max[1], c.Params.CellSize); lo > hi {
		return fmt.Errorf("%w: no cell centre along Z in %v", ErrEmptyArea, c.Area)
	}
	switch {
	case !(c.MaxHeight > c.MinHeight):
		return fmt.Errorf("%w: height range [%v,%v]", ErrInvalidConfig, c.MinHeight, c.MaxHeight)
	case c.ChunkSize < 1 || c.Workers < 1:
		return fmt.Errorf("%w: chunk size %d, workers %d", ErrInvalidConfig, c.ChunkSize, c.Workers)
	case !(c.ProbeStep > 0):
		return fmt.Errorf("%w: probe step %v", ErrInvalidConfig, c.ProbeStep)
	}
	return nil
}

// WithParams replaces the grid parameters.
func WithParams(p navgrid.Params) Option {
	if err := p.Validate(); err != nil {
		panic(err.Error())
	}
	return func(c *Config) { c.Params = p }
}

// WithCellSize sets the cell edge length. Panics unless size > 0.
func WithCellSize(size float64) Option {
	if !(size > 0) || math.IsInf(size, 0) {
		panic("gridbuild: WithCellSize requires a positive size")
	}
	return func(c *Config) { c.Params.CellSize = size }
}

// WithClearance sets the free width and height required above a cell.
func WithClearance(width, height float64) Option {
	if width < 0 || height < 0 {
		panic("gridbuild: WithClearance requires non-negative values")
	}
	return func(c *Config) {
		c.Params.WidthClearance = width
		c.Params.HeightClearance = height
	}
}

// WithSlope sets the standable angle (degrees) and step size.
func WithSlope(angle, step float64) Option {
	if angle < 0 || angle >= 90 || step < 0 {
		panic("gridbuild: WithSlope requires angle in [0,90) and step ≥ 0")
	}
	return func(c *Config) {
		c.Params.StandableAngle = angle
		c.Params.StepSize = step
	}
}

// WithVerticalNeighbours links stacked cells of similar height.
func WithVerticalNeighbours() Option {
	return func(c *Config) { c.Params.VerticalNeighbours = true }
}

// WithArea sets the grid-local XZ scan area.
func WithArea(area orb.Bound) Option {
	if area.IsEmpty() {
		panic("gridbuild: WithArea requires Min ≤ Max")
	}
	return func(c *Config) { c.Area = area }
}

// WithHeightRange bounds the vertical scan. Panics unless lo < hi.
func WithHeightRange(lo, hi float64) Option {
	if !(hi > lo) {
		panic("gridbuild: WithHeightRange requires lo < hi")
	}
	return func(c *Config) { c.MinHeight, c.MaxHeight = lo, hi }
}

// WithGridOptions forwards options to navgrid.NewGrid.
func WithGridOptions(opts ...navgrid.Option) Option {
	return func(c *Config) { c.GridOptions = append(c.GridOptions, opts...) }
}

// WithFilter sets the query filter.
func WithFilter(f geom.Filter) Option {
	return func(c *Config) { c.Filter = f }
}

// WithCellTags sets which struck-surface tags are copied to cells.
func WithCellTags(include, exclude []string) Option {
	return func(c *Config) {
		c.CellTagInclude = append([]string(nil), include...)
		c.CellTagExclude = append([]string(nil), exclude...)
	}
}

// WithBlockTags marks surface tags that never produce cells.
func WithBlockTags(tags ...string) Option {
	return func(c *Config) { c.BlockTags = append(c.BlockTags, tags...) }
}

// WithDrop enables drop connections. Panics on negative limits.
func WithDrop(def ConnectionDef) Option {
	checkDef("WithDrop", def)
	return func(c *Config) { c.Drop = &def }
}

// WithoutDrops disables the drop phase.
func WithoutDrops() Option {
	return func(c *Config) { c.Drop = nil }
}

// WithJump enables jump connections. Panics on negative limits.
func WithJump(def ConnectionDef) Option {
	checkDef("WithJump", def)
	return func(c *Config) { c.Jump = &def }
}

// WithoutJumps disables the jump phase.
func WithoutJumps() Option {
	return func(c *Config) { c.Jump = nil }
}

// WithoutEdgeTags disables the edge phase, and with it drops and jumps.
func WithoutEdgeTags() Option {
	return func(c *Config) { c.EdgeTags = false }
}

// WithChunkSize sets the chunk side in coordinates. Panics unless n ≥ 1.
func WithChunkSize(n int) Option {
	if n < 1 {
		panic("gridbuild: WithChunkSize requires n ≥ 1")
	}
	return func(c *Config) { c.ChunkSize = n }
}

// WithWorkers bounds concurrent chunk workers. Panics unless n ≥ 1.
func WithWorkers(n int) Option {
	if n < 1 {
		panic("gridbuild: WithWorkers requires n ≥ 1")
	}
	return func(c *Config) { c.Workers = n }
}

// WithProbeStep sets the terrain scan step. Panics unless step > 0.
func WithProbeStep(step float64) Option {
	if !(step > 0) {
		panic("gridbuild: WithProbeStep requires step > 0")
	}
	return func(c *Config) { c.ProbeStep = step }
}

func checkDef(name string, def ConnectionDef) {
	if def.MaxDistance < 0 || def.MaxHeightUp < 0 || def.MaxHeightDown < 0 {
		panic("gridbuild: " + name + " requires non-negative limits")
	}
}
