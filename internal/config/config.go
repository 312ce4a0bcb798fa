// Package config provides YAML-based configuration loading for the dodger
// game, its fair-play monitor and the terminal host.
package config

import "time"

// DodgerConfig contains all configuration for Reflex Dodger.
type DodgerConfig struct {
	Canvas    CanvasConfig   `yaml:"canvas"`
	Player    PlayerConfig   `yaml:"player"`
	Obstacles ObstacleConfig `yaml:"obstacles"`
	Scoring   ScoringConfig  `yaml:"scoring"`
	Input     InputConfig    `yaml:"input"`
	Sentinel  SentinelConfig `yaml:"sentinel"`
	Storage   StorageConfig  `yaml:"storage"`
}

// CanvasConfig maps the pixel canvas onto terminal cells.
type CanvasConfig struct {
	CellWidth  float64 `yaml:"cell_width"`  // Canvas pixels per terminal column
	CellHeight float64 `yaml:"cell_height"` // Canvas pixels per terminal row
	HUDRows    int     `yaml:"hud_rows"`    // Rows reserved for score and status lines
}

// PlayerConfig defines the player rectangle.
type PlayerConfig struct {
	Width        float64 `yaml:"width"`
	Height       float64 `yaml:"height"`
	Speed        float64 `yaml:"speed"`         // Pixels per second per held direction
	BottomOffset float64 `yaml:"bottom_offset"` // Start position above the bottom edge
}

// ObstacleConfig defines the falling obstacle pool. Each randomized value
// is Min + rand*Range.
type ObstacleConfig struct {
	Count         int     `yaml:"count"`
	MinWidth      float64 `yaml:"min_width"`
	WidthRange    float64 `yaml:"width_range"`
	MinHeight     float64 `yaml:"min_height"`
	HeightRange   float64 `yaml:"height_range"`
	MinSpeed      float64 `yaml:"min_speed"`
	SpeedRange    float64 `yaml:"speed_range"`
	MinHue        float64 `yaml:"min_hue"`
	HueRange      float64 `yaml:"hue_range"`
	SpawnSpacing  float64 `yaml:"spawn_spacing"`  // Vertical stagger between initial spawns
	SpawnJitter   float64 `yaml:"spawn_jitter"`   // Random extra offset on initial spawn
	RecycleMargin float64 `yaml:"recycle_margin"` // Distance past the bottom edge before recycling
	RespawnOffset float64 `yaml:"respawn_offset"` // Recycled obstacles restart this far above the top
	RespawnJitter float64 `yaml:"respawn_jitter"`
}

// ScoringConfig defines how fast the score grows.
type ScoringConfig struct {
	PointsPerSecond float64 `yaml:"points_per_second"`
}

// InputConfig tunes held-key emulation.
type InputConfig struct {
	HoldWindow time.Duration `yaml:"hold_window"`
}

// SentinelConfig selects the fair-play probe set.
type SentinelConfig struct {
	Extended   bool   `yaml:"extended"`    // Arm injectors, scripts and evaluators probes
	MaskLog    bool   `yaml:"mask_log"`    // Record opaque markers instead of reasons
	ScriptsDir string `yaml:"scripts_dir"` // Watched for inserted scripts in extended mode
}

// StorageConfig locates the SQLite database.
type StorageConfig struct {
	Path string `yaml:"path"`
}
