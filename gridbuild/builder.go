package gridbuild

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/katalvlaran/terranav/geom"
	"github.com/katalvlaran/terranav/navgrid"
	"github.com/katalvlaran/terranav/navlog"
)

// Builder generates grids. It is immutable and safe for concurrent use;
// one Builder may run several Builds at once.
type Builder struct {
	cfg   Config
	query geom.Query
}

// New resolves opts over DefaultConfig and validates the result.
func New(q geom.Query, opts ...Option) (*Builder, error) {
	if q == nil {
		return nil, ErrNilQuery
	}
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Builder{cfg: cfg, query: q}, nil
}

// Config returns a copy of the resolved configuration.
func (b *Builder) Config() Config {
	cfg := b.cfg
	cfg.GridOptions = append([]navgrid.Option(nil), cfg.GridOptions...)
	if cfg.Drop != nil {
		d := *cfg.Drop
		cfg.Drop = &d
	}
	if cfg.Jump != nil {
		j := *cfg.Jump
		cfg.Jump = &j
	}
	return cfg
}

// link is a connection computed by a worker and applied after the barrier.
type link struct {
	from, to *navgrid.Cell
	tag      string
}

// Build scans the configured area and returns the finished grid.
//
// Steps:
//  1. Partition the area into chunks.
//  2. Terrain: create cells per chunk concurrently, then add them in chunk
//     order. Height collisions inside a column keep the higher cell.
//  3. Edge, drop and jump phases, each computed per chunk concurrently and
//     applied serially.
//
// Returns the context error if ctx is cancelled between or during phases.
func (b *Builder) Build(ctx context.Context) (*navgrid.Grid, error) {
	cfg := &b.cfg
	started := time.Now()

	g, err := navgrid.NewGrid(cfg.Params, cfg.GridOptions...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	parts := partition(cfg.Area, cfg.Params.CellSize, cfg.ChunkSize)

	// 1) terrain
	perChunk := make([][]*navgrid.Cell, len(parts.chunks))
	err = runChunks(ctx, cfg.Workers, parts.chunks, func(ctx context.Context, c chunk) error {
		cells, err := b.terrain(ctx, g, c)
		perChunk[c.index] = cells
		return err
	})
	if err != nil {
		return nil, err
	}
	dups := 0
	for _, cells := range perChunk {
		for _, c := range cells {
			if err := g.AddCell(c); err != nil {
				if errors.Is(err, navgrid.ErrDuplicateCell) {
					dups++
					continue
				}
				return nil, err
			}
		}
	}
	navlog.Logf("gridbuild: terrain: %d cells, %d collisions, %d chunks (%s)",
		g.CellCount(), dups, len(parts.chunks), time.Since(started))

	if !cfg.EdgeTags {
		return g, nil
	}

	// 2) edges
	byChunk := parts.group(g.Cells())
	edges := make([][]*navgrid.Cell, len(parts.chunks))
	err = runChunks(ctx, cfg.Workers, parts.chunks, func(_ context.Context, c chunk) error {
		edges[c.index] = edgeCells(byChunk[c.index])
		return nil
	})
	if err != nil {
		return nil, err
	}
	tagged := 0
	for _, cells := range edges {
		for _, c := range cells {
			if err := g.TagCell(c, navgrid.TagEdge); err != nil {
				return nil, err
			}
			tagged++
		}
	}
	navlog.Logf("gridbuild: edges: %d cells tagged", tagged)

	// 3) drops, 4) jumps
	if cfg.Drop != nil {
		n, err := b.connect(ctx, g, parts, edges, b.drops)
		if err != nil {
			return nil, err
		}
		navlog.Logf("gridbuild: drops: %d connections", n)
	}
	if cfg.Jump != nil {
		n, err := b.connect(ctx, g, parts, edges, b.jumps)
		if err != nil {
			return nil, err
		}
		navlog.Logf("gridbuild: jumps: %d connections", n)
	}
	navlog.Logf("gridbuild: grid %s built in %s", g.ID(), time.Since(started))
	return g, nil
}

// connect runs one connection phase over the edge cells of every chunk.
func (b *Builder) connect(
	ctx context.Context,
	g *navgrid.Grid,
	parts chunking,
	edges [][]*navgrid.Cell,
	phase func(*navgrid.Grid, *navgrid.Cell, []link) []link,
) (int, error) {
	links := make([][]link, len(parts.chunks))
	err := runChunks(ctx, b.cfg.Workers, parts.chunks, func(ctx context.Context, c chunk) error {
		var out []link
		for _, cell := range edges[c.index] {
			if err := ctx.Err(); err != nil {
				return err
			}
			out = phase(g, cell, out)
		}
		links[c.index] = out
		return nil
	})
	if err != nil {
		return 0, err
	}
	n := 0
	for _, ls := range links {
		for _, l := range ls {
			if err := g.Connect(l.from, l.to, l.tag); err != nil {
				return n, err
			}
			n++
		}
	}
	return n, nil
}
