package config

import (
	_ "embed"
	"time"
)

//go:embed defaults/dodger.yaml
var defaultDodgerYAML []byte

// DefaultDodgerConfig returns the default configuration.
func DefaultDodgerConfig() DodgerConfig {
	return DodgerConfig{
		Canvas: CanvasConfig{
			CellWidth:  8,
			CellHeight: 16,
			HUDRows:    3,
		},
		Player: PlayerConfig{
			Width:        36,
			Height:       36,
			Speed:        280,
			BottomOffset: 80,
		},
		Obstacles: ObstacleConfig{
			Count:         8,
			MinWidth:      24,
			WidthRange:    60,
			MinHeight:     24,
			HeightRange:   36,
			MinSpeed:      140,
			SpeedRange:    160,
			MinHue:        180,
			HueRange:      120,
			SpawnSpacing:  90,
			SpawnJitter:   200,
			RecycleMargin: 40,
			RespawnOffset: 120,
			RespawnJitter: 160,
		},
		Scoring: ScoringConfig{
			PointsPerSecond: 12,
		},
		Input: InputConfig{
			HoldWindow: 180 * time.Millisecond,
		},
		Sentinel: SentinelConfig{
			ScriptsDir: "~/.dodger/scripts",
		},
		Storage: StorageConfig{
			Path: "~/.dodger/dodger.db",
		},
	}
}

// DefaultYAML returns the embedded default configuration file.
func DefaultYAML() []byte {
	return defaultDodgerYAML
}
