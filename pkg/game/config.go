// Package game owns one play session: the current maze, the player and the
// per-frame update that ties generation, integration and collision
// together.
package game

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/taigrr/labyrinth/pkg/maze"
	"github.com/taigrr/labyrinth/pkg/physics"
)

// Collision strategies accepted in CollisionConfig.Strategy.
const (
	StrategyGrid    = "grid"
	StrategyRaycast = "raycast"
)

// ErrInvalidConfig is wrapped by every Config.Validate failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config is the full session configuration. It is usually loaded from YAML
// on top of DefaultConfig, then adjusted by command-line flags.
type Config struct {
	Maze      MazeConfig      `yaml:"maze"`
	Physics   physics.Params  `yaml:"physics"`
	Collision CollisionConfig `yaml:"collision"`
	View      ViewConfig      `yaml:"view"`
}

// MazeConfig controls generation and world scale.
type MazeConfig struct {
	Size       int     `yaml:"size"`
	Seed       *uint64 `yaml:"seed,omitempty"`
	CellSize   float64 `yaml:"cell_size"`
	WallHeight float64 `yaml:"wall_height"`

	// File, when set, is loaded instead of generating a maze.
	File string `yaml:"file,omitempty"`
}

// CollisionConfig selects and tunes the wall resolver.
type CollisionConfig struct {
	Enabled   bool    `yaml:"enabled"`
	Strategy  string  `yaml:"strategy"`
	Diagonals bool    `yaml:"diagonals"`
	Distance  float64 `yaml:"distance"` // raycast probe length
}

// ViewConfig is read by the terminal front end only.
type ViewConfig struct {
	FOV         float64 `yaml:"fov"` // vertical, degrees
	FPS         int     `yaml:"fps"`
	LookSpeed   float64 `yaml:"look_speed"` // radians per second
	Minimap     bool    `yaml:"minimap"`
	WallTexture string  `yaml:"wall_texture,omitempty"`
}

// DefaultConfig returns a 21x21 maze with grid collision enabled.
func DefaultConfig() Config {
	return Config{
		Maze: MazeConfig{
			Size:       20,
			CellSize:   maze.DefaultCellSize,
			WallHeight: 5,
		},
		Physics: physics.DefaultParams(),
		Collision: CollisionConfig{
			Enabled:   true,
			Strategy:  StrategyGrid,
			Diagonals: true,
			Distance:  physics.DefaultCollisionDistance,
		},
		View: ViewConfig{
			FOV:       75,
			FPS:       30,
			LookSpeed: 2.5,
			Minimap:   true,
		},
	}
}

// LoadConfig reads a YAML file over DefaultConfig. Keys missing from the
// file keep their default values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports the first setting that cannot produce a playable
// session.
func (c Config) Validate() error {
	switch {
	case c.Maze.File == "" && c.Maze.Size < maze.MinSize:
		return fmt.Errorf("%w: maze size %d is below %d", ErrInvalidConfig, c.Maze.Size, maze.MinSize)
	case c.Maze.CellSize <= 0:
		return fmt.Errorf("%w: cell size must be positive", ErrInvalidConfig)
	case c.Physics.PlayerRadius < 0:
		return fmt.Errorf("%w: player radius must not be negative", ErrInvalidConfig)
	case c.Physics.PlayerHeight <= 0:
		return fmt.Errorf("%w: player height must be positive", ErrInvalidConfig)
	case c.Physics.MaxDT <= 0:
		return fmt.Errorf("%w: max_dt must be positive", ErrInvalidConfig)
	case 2*(c.Physics.PlayerRadius+c.Physics.CollisionMargin) >= c.Maze.CellSize:
		return fmt.Errorf("%w: player footprint does not fit in a cell", ErrInvalidConfig)
	case c.View.FPS <= 0:
		return fmt.Errorf("%w: fps must be positive", ErrInvalidConfig)
	}
	switch c.Collision.Strategy {
	case StrategyGrid, StrategyRaycast:
	default:
		return fmt.Errorf("%w: unknown collision strategy %q", ErrInvalidConfig, c.Collision.Strategy)
	}
	return nil
}

// Resolver builds the collision resolver named by the config.
func (c Config) Resolver() physics.Resolver {
	if c.Collision.Strategy == StrategyRaycast {
		return physics.NewRaycastResolver(c.Collision.Distance)
	}
	r := physics.NewGridResolver(c.Physics)
	r.Diagonals = c.Collision.Diagonals
	return r
}
