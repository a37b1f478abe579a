package environment

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/kvch/myshell/internal/logging"
)

// Config holds the shell's non-scripting preferences, loaded from
// config.yaml inside the config directory.
type Config struct {
	Theme          string `yaml:"theme"`
	HistorySize    int    `yaml:"history_size"`
	MaxSuggestions int    `yaml:"max_suggestions"`
}

// DefaultConfig returns the preferences used when no config.yaml exists
// or it fails to parse.
func DefaultConfig() Config {
	return Config{
		Theme:          "auto",
		HistorySize:    1000,
		MaxSuggestions: 20,
	}
}

// loadConfig reads configDir/config.yaml. Neither a missing nor a
// malformed file is fatal: a missing one silently yields the defaults,
// an unreadable or malformed one logs a warning and falls back to them.
func loadConfig(configDir string) Config {
	cfg := DefaultConfig()
	path := filepath.Join(configDir, "config.yaml")

	f, err := os.Open(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logging.Warn("open config %s: %v", path, err)
		}
		return cfg
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		logging.Warn("parse config %s: %v", path, err)
		return DefaultConfig()
	}
	return cfg
}

func (c Config) String() string {
	return fmt.Sprintf("theme=%s history_size=%d max_suggestions=%d", c.Theme, c.HistorySize, c.MaxSuggestions)
}
