// Package config loads the game's tuning file. Every field has a default, so
// a missing file or a partial one is fine.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"chosenoffset.com/lumen/internal/actor"
	"chosenoffset.com/lumen/internal/block"
	"chosenoffset.com/lumen/internal/light"
)

// Environment variables consulted when the file leaves a value unset
const (
	EnvConfig    = "LUMEN_CONFIG"
	EnvLevelsDir = "LUMEN_LEVELS_DIR"
	EnvStart     = "LUMEN_START_LEVEL"

	defaultLevelsDir = "levels"
)

// Config is the root of the tuning file
type Config struct {
	Window WindowConfig `yaml:"window"`
	Grid   GridConfig   `yaml:"grid"`
	Light  LightConfig  `yaml:"light"`
	Timing TimingConfig `yaml:"timing"`
	Motion MotionConfig `yaml:"motion"`
	Levels LevelsConfig `yaml:"levels"`
	Audio  AudioConfig  `yaml:"audio"`
}

// WindowConfig sizes the game window
type WindowConfig struct {
	Width     int    `yaml:"width"`
	Height    int    `yaml:"height"`
	Title     string `yaml:"title"`
	Resizable bool   `yaml:"resizable"`
}

// GridConfig holds grid defaults for level files that leave them out
type GridConfig struct {
	CellSize float64 `yaml:"cell_size"` // world units per cell
}

// LightConfig shapes the flashlight beam. Distances are in cells.
type LightConfig struct {
	MaxDistance       float64 `yaml:"max_distance"`
	SpotlightDistance float64 `yaml:"spotlight_distance"`
	ReflectionLimit   int     `yaml:"reflection_limit"`
	TotalDegree       float64 `yaml:"total_degree"`
	IntervalDegree    float64 `yaml:"interval_degree"`
	RingRays          int     `yaml:"ring_rays"`
	MirrorOffset      float64 `yaml:"mirror_offset"`
	StackScan         float64 `yaml:"stack_scan"`
}

// TimingConfig holds cooldowns and delays
type TimingConfig struct {
	MoveCooldown    time.Duration `yaml:"move_cooldown"`
	SwitchCooldown  time.Duration `yaml:"switch_cooldown"`
	ReserveCooldown time.Duration `yaml:"reserve_cooldown"`
	RestartDelay    time.Duration `yaml:"restart_delay"`
	TextSpeed       float64       `yaml:"text_speed"` // dialogue characters per second
}

// MotionConfig holds the fraction of the remaining distance covered per frame
type MotionConfig struct {
	PlayerLerp float64 `yaml:"player_lerp"`
	EnemyLerp  float64 `yaml:"enemy_lerp"`
	BlockLerp  float64 `yaml:"block_lerp"`
}

// LevelsConfig locates the level files
type LevelsConfig struct {
	Dir   string `yaml:"dir"`
	Start int    `yaml:"start"`
}

// AudioConfig switches the synthesized sound on or off
type AudioConfig struct {
	Enabled bool `yaml:"enabled"`
}

// DefaultConfig returns the stock tuning
func DefaultConfig() *Config {
	lc := light.DefaultConfig()
	bc := block.DefaultConfig()
	ac := actor.DefaultConfig()
	return &Config{
		Window: WindowConfig{
			Width:  960,
			Height: 640,
			Title:  "Lumen",
		},
		Grid: GridConfig{CellSize: 32},
		Light: LightConfig{
			MaxDistance:       lc.MaxDistance,
			SpotlightDistance: lc.SpotlightDistance,
			ReflectionLimit:   lc.ReflectionLimit,
			TotalDegree:       lc.TotalDegree,
			IntervalDegree:    lc.IntervalDegree,
			RingRays:          lc.RingRays,
			MirrorOffset:      lc.MirrorOffset,
			StackScan:         lc.StackScan,
		},
		Timing: TimingConfig{
			MoveCooldown:    ac.MoveCooldown,
			SwitchCooldown:  bc.SwitchCooldown,
			ReserveCooldown: bc.ReserveCooldown,
			RestartDelay:    ac.RestartDelay,
			TextSpeed:       20,
		},
		Motion: MotionConfig{
			PlayerLerp: ac.PlayerLerp,
			EnemyLerp:  ac.EnemyLerp,
			BlockLerp:  bc.Lerp,
		},
		Audio: AudioConfig{Enabled: true},
	}
}

// Load reads a YAML tuning file over the defaults. An empty path falls back
// to LUMEN_CONFIG; with neither set, or no file at the path, the defaults
// are returned.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		path = os.Getenv(EnvConfig)
		if path == "" {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("invalid window size: %dx%d", c.Window.Width, c.Window.Height)
	}
	if c.Grid.CellSize <= 0 {
		return fmt.Errorf("invalid cell size: %v", c.Grid.CellSize)
	}
	if c.Light.ReflectionLimit < 1 {
		return fmt.Errorf("reflection limit must be at least 1, got %d", c.Light.ReflectionLimit)
	}
	if c.Light.IntervalDegree <= 0 {
		return fmt.Errorf("interval degree must be positive, got %v", c.Light.IntervalDegree)
	}
	if c.Light.RingRays < 0 {
		return fmt.Errorf("ring rays must not be negative, got %d", c.Light.RingRays)
	}
	for name, lerp := range map[string]float64{
		"player_lerp": c.Motion.PlayerLerp,
		"enemy_lerp":  c.Motion.EnemyLerp,
		"block_lerp":  c.Motion.BlockLerp,
	} {
		if lerp <= 0 || lerp > 1 {
			return fmt.Errorf("%s must be in (0, 1], got %v", name, lerp)
		}
	}
	if c.Levels.Start < 0 {
		return fmt.Errorf("start level must not be negative, got %d", c.Levels.Start)
	}
	return nil
}

// LevelsDir returns the level directory with priority config -> env -> default
func (c *Config) LevelsDir() string {
	if c.Levels.Dir != "" {
		return c.Levels.Dir
	}
	if dir := os.Getenv(EnvLevelsDir); dir != "" {
		return dir
	}
	return defaultLevelsDir
}

// StartLevel returns the first level index with priority config -> env -> default
func (c *Config) StartLevel() int {
	if c.Levels.Start > 0 {
		return c.Levels.Start
	}
	if v := os.Getenv(EnvStart); v != "" {
		if i, err := strconv.Atoi(v); err == nil && i >= 0 {
			return i
		}
	}
	return 0
}

// BlockConfig returns the block registry tuning
func (c *Config) BlockConfig() block.Config {
	return block.Config{
		SwitchCooldown:  c.Timing.SwitchCooldown,
		ReserveCooldown: c.Timing.ReserveCooldown,
		Lerp:            c.Motion.BlockLerp,
	}
}

// ActorConfig returns the player and enemy tuning
func (c *Config) ActorConfig() actor.Config {
	return actor.Config{
		MoveCooldown: c.Timing.MoveCooldown,
		RestartDelay: c.Timing.RestartDelay,
		PlayerLerp:   c.Motion.PlayerLerp,
		EnemyLerp:    c.Motion.EnemyLerp,
	}
}

// LightConfig returns the flashlight tuning
func (c *Config) LightConfig() light.Config {
	return light.Config{
		MaxDistance:       c.Light.MaxDistance,
		SpotlightDistance: c.Light.SpotlightDistance,
		ReflectionLimit:   c.Light.ReflectionLimit,
		TotalDegree:       c.Light.TotalDegree,
		IntervalDegree:    c.Light.IntervalDegree,
		RingRays:          c.Light.RingRays,
		MirrorOffset:      c.Light.MirrorOffset,
		StackScan:         c.Light.StackScan,
	}
}
