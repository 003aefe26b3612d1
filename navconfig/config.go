// Package navconfig loads terranav settings from hjson or JSON files.
//
// Every field is optional. Omitted fields fall back to the package defaults
// through the Get* accessors, so partial files are safe. Conversions turn a
// loaded Config into navgrid parameters, gridbuild and pathfind options and a
// navfollow.Config.
package navconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hjson/hjson-go/v4"
)

// MaxFileSize is the largest configuration file Load accepts.
const MaxFileSize = 1 << 20

var (
	// ErrConfigExtension indicates a file that is neither .hjson nor .json.
	ErrConfigExtension = errors.New("navconfig: config file must have .hjson or .json extension")
	// ErrConfigTooLarge indicates a file above MaxFileSize.
	ErrConfigTooLarge = errors.New("navconfig: config file too large")
	// ErrInvalidConfig indicates values that fail Validate.
	ErrInvalidConfig = errors.New("navconfig: invalid configuration")
)

// Config is the root of a configuration file.
type Config struct {
	Grid   GridConfig   `json:"grid"`
	Build  BuildConfig  `json:"build"`
	Search SearchConfig `json:"search"`
	Follow FollowConfig `json:"follow"`
}

// GridConfig holds navgrid parameters and placement.
type GridConfig struct {
	ID                 *string   `json:"id,omitempty"`
	CellSize           *float64  `json:"cell_size,omitempty"`
	StandableAngle     *float64  `json:"standable_angle,omitempty"` // degrees
	StepSize           *float64  `json:"step_size,omitempty"`
	WidthClearance     *float64  `json:"width_clearance,omitempty"`
	HeightClearance    *float64  `json:"height_clearance,omitempty"`
	VerticalNeighbours *bool     `json:"vertical_neighbours,omitempty"`
	Origin             []float64 `json:"origin,omitempty"` // [x, y, z]
	Yaw                *float64  `json:"yaw,omitempty"`    // radians
}

// BuildConfig holds gridbuild settings.
type BuildConfig struct {
	Area            []float64      `json:"area,omitempty"` // [minX, minZ, maxX, maxZ], grid-local
	MinHeight       *float64       `json:"min_height,omitempty"`
	MaxHeight       *float64       `json:"max_height,omitempty"`
	ChunkSize       *int           `json:"chunk_size,omitempty"`
	Workers         *int           `json:"workers,omitempty"`
	ProbeStep       *float64       `json:"probe_step,omitempty"`
	EdgeTags        *bool          `json:"edge_tags,omitempty"`
	BlockTags       []string       `json:"block_tags,omitempty"`
	CellTagsInclude []string       `json:"cell_tags_include,omitempty"`
	CellTagsExclude []string       `json:"cell_tags_exclude,omitempty"`
	Drop            *ConnectionCfg `json:"drop,omitempty"`
	Jump            *ConnectionCfg `json:"jump,omitempty"`
}

// ConnectionCfg overrides one generated connection kind. Disabled turns the
// phase off.
type ConnectionCfg struct {
	Disabled      bool     `json:"disabled,omitempty"`
	Tag           *string  `json:"tag,omitempty"`
	MaxDistance   *float64 `json:"max_distance,omitempty"`
	MaxHeightUp   *float64 `json:"max_height_up,omitempty"`
	MaxHeightDown *float64 `json:"max_height_down,omitempty"`
}

// SearchConfig holds pathfind options.
type SearchConfig struct {
	IncludeTags     []string `json:"include_tags,omitempty"`
	ExcludeTags     []string `json:"exclude_tags,omitempty"`
	ExcludeOccupied *bool    `json:"exclude_occupied,omitempty"`
	MaxDistance     *float64 `json:"max_distance,omitempty"`
	MaxDropHeight   *float64 `json:"max_drop_height,omitempty"`
	AcceptPartial   *bool    `json:"accept_partial,omitempty"`
	UseConnections  *bool    `json:"use_connections,omitempty"`
}

// FollowConfig holds navfollow settings.
type FollowConfig struct {
	RetraceInterval   *string  `json:"retrace_interval,omitempty"` // duration string like "500ms"
	WaypointTolerance *float64 `json:"waypoint_tolerance,omitempty"`
	StrayFactor       *float64 `json:"stray_factor,omitempty"`
	Race              *bool    `json:"race,omitempty"`
}

// Load reads and validates the configuration at path. hjson is a superset
// of JSON, so both extensions share one parser.
func Load(path string) (*Config, error) {
	clean := filepath.Clean(path)
	if ext := filepath.Ext(clean); ext != ".hjson" && ext != ".json" {
		return nil, fmt.Errorf("%w: got %q", ErrConfigExtension, ext)
	}

	info, err := os.Stat(clean)
	if err != nil {
		return nil, fmt.Errorf("navconfig: stat config file: %w", err)
	}
	if info.Size() > MaxFileSize {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrConfigTooLarge, info.Size(), MaxFileSize)
	}

	data, err := os.ReadFile(clean)
	if err != nil {
		return nil, fmt.Errorf("navconfig: read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates hjson or JSON data.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := hjson.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("navconfig: parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
