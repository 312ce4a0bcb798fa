package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadDodger loads the game configuration.
// Search order: customPath -> ~/.dodger/configs/dodger.yaml -> ./configs/dodger.yaml -> embedded default
// Files are layered over the defaults, so partial files are fine.
func LoadDodger(customPath string) (DodgerConfig, error) {
	cfg := DefaultDodgerConfig()

	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(ExpandHome(customPath))
		if err != nil {
			return cfg, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return cfg.normalized(), nil
	}

	// Try user config directory
	if userCfgPath := userConfigPath("dodger.yaml"); userCfgPath != "" {
		if data, err := os.ReadFile(userCfgPath); err == nil {
			if err := yaml.Unmarshal(data, &cfg); err == nil {
				return cfg.normalized(), nil
			}
			cfg = DefaultDodgerConfig()
		}
	}

	// Try local configs directory
	if data, err := os.ReadFile("configs/dodger.yaml"); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err == nil {
			return cfg.normalized(), nil
		}
		cfg = DefaultDodgerConfig()
	}

	// Use embedded default YAML
	if err := yaml.Unmarshal(defaultDodgerYAML, &cfg); err != nil {
		return DefaultDodgerConfig(), nil // Fallback to hardcoded if embed fails
	}
	return cfg.normalized(), nil
}

// normalized replaces values that would break the simulation with defaults.
func (c DodgerConfig) normalized() DodgerConfig {
	def := DefaultDodgerConfig()
	if c.Canvas.CellWidth <= 0 {
		c.Canvas.CellWidth = def.Canvas.CellWidth
	}
	if c.Canvas.CellHeight <= 0 {
		c.Canvas.CellHeight = def.Canvas.CellHeight
	}
	if c.Canvas.HUDRows < 0 {
		c.Canvas.HUDRows = def.Canvas.HUDRows
	}
	if c.Player.Width <= 0 || c.Player.Height <= 0 {
		c.Player.Width, c.Player.Height = def.Player.Width, def.Player.Height
	}
	if c.Obstacles.Count <= 0 {
		c.Obstacles.Count = def.Obstacles.Count
	}
	if c.Input.HoldWindow <= 0 {
		c.Input.HoldWindow = def.Input.HoldWindow
	}
	return c
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".dodger", "configs", filename)
}

// DataDir returns ~/.dodger, or .dodger when home is unavailable.
func DataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".dodger"
	}
	return filepath.Join(home, ".dodger")
}
