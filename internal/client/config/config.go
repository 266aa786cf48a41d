// Package config loads runtime configuration for the identity CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c or -config.
//  3. Command-line flags, which override earlier values.
package config

import (
	"os"
	"path/filepath"
)

// Config holds runtime settings for the CLI.
//
// Fields:
//   - ServerBaseURL: base URL of the identity server's HTTP API.
//   - TokenFile: path of the JSON file the token pair is stored in.
type Config struct {
	ServerBaseURL string
	TokenFile     string
}

// LoadDefaults populates c with sensible defaults. The token file lives
// under the user's home directory.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = "http://localhost:8080"

	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	c.TokenFile = filepath.Join(home, ".isaidso", "session.json")
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
