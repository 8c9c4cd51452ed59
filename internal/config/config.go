// Package config holds the runtime settings of the imagedata MCP server.
//
// Settings come from three layers, later ones overriding earlier ones:
// built-in defaults, an optional JSON file, and environment variables.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ironsheep/imagedata-mcp/internal/imagedata"
)

// Environment variables read by FromEnv.
const (
	EnvLogLevel  = "IMAGEDATA_MCP_LOG_LEVEL"
	EnvColormap  = "IMAGEDATA_MCP_COLORMAP"
	EnvMaxCached = "IMAGEDATA_MCP_MAX_CACHED"
)

// Config holds the server configuration
type Config struct {
	// LogLevel is "info" or "debug". Debug logs every change event on cached data.
	LogLevel string `json:"log_level"`

	// Colormap is the built-in colormap used by imagedata_render when the caller
	// does not name one.
	Colormap string `json:"colormap"`

	// MaxCached caps the number of loaded images kept in memory. Zero means unbounded.
	MaxCached int `json:"max_cached"`
}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		LogLevel:  "info",
		Colormap:  "viridis",
		MaxCached: 64,
	}
}

// Debug reports whether debug logging is enabled.
func (c *Config) Debug() bool {
	return c.LogLevel == "debug"
}

// LoadFromFile loads configuration from a JSON file on top of the defaults
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// ApplyEnv overrides fields from environment variables that are set.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv(EnvLogLevel); v != "" {
		c.LogLevel = strings.ToLower(v)
	}
	if v := getenv(EnvColormap); v != "" {
		c.Colormap = v
	}
	if v := getenv(EnvMaxCached); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvMaxCached, v, err)
		}
		c.MaxCached = n
	}
	return nil
}

// FromEnv returns the defaults overridden by the process environment.
func FromEnv() (*Config, error) {
	cfg := Default()
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "info", "debug":
	default:
		return fmt.Errorf("log_level must be \"info\" or \"debug\", got %q", c.LogLevel)
	}

	if _, err := imagedata.LookupColormap(c.Colormap); err != nil {
		return fmt.Errorf("colormap: %w", err)
	}

	if c.MaxCached < 0 {
		return fmt.Errorf("max_cached must not be negative")
	}

	return nil
}
