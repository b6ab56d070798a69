package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the per-user config file looked up in the home directory.
const FileName = ".giftytask.yml"

// Config models ~/.giftytask.yml. Every field is optional; zero values
// fall back to the built-in defaults at service construction.
type Config struct {
	DBPath            string `yaml:"db_path"`
	DailyGoal         int    `yaml:"daily_goal"`
	ActiveDaysWindow  int    `yaml:"active_days_window"`
	HeatmapWindowDays int    `yaml:"heatmap_window_days"`
	DefaultRewardURL  string `yaml:"default_reward_url"`
}

// Path returns the config file location under the user's home directory.
func Path() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, FileName), nil
}

// Load reads the user config. A missing file is not an error; it yields
// an empty config so the defaults apply.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// LoadFile reads and validates a config from an explicit path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return FromYAML(data)
}

// FromYAML parses and validates raw config bytes.
func FromYAML(data []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate rejects values the engine cannot work with. Zero means unset
// and is always fine.
func (c *Config) Validate() error {
	if c.DailyGoal < 0 {
		return fmt.Errorf("config.daily_goal must not be negative")
	}
	if c.ActiveDaysWindow < 0 {
		return fmt.Errorf("config.active_days_window must not be negative")
	}
	if c.HeatmapWindowDays < 0 {
		return fmt.Errorf("config.heatmap_window_days must not be negative")
	}
	return nil
}
