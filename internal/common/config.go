// Package common provides shared utilities for fundmix
package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Color policy kinds accepted in the [colors] section.
const (
	ColorKindLookup  = "lookup"
	ColorKindPalette = "palette"
)

// Config holds all configuration for fundmix
type Config struct {
	Environment string        `toml:"environment"`
	Server      ServerConfig  `toml:"server"`
	Ingest      IngestConfig  `toml:"ingest"`
	Logging     LoggingConfig `toml:"logging"`
	Colors      ColorsConfig  `toml:"colors"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// IngestConfig bounds CSV uploads accepted by the HTTP API.
type IngestConfig struct {
	MaxUploadMB int     `toml:"max_upload_mb"`
	RateLimit   float64 `toml:"rate_limit"` // uploads per second, 0 disables limiting
	RateBurst   int     `toml:"rate_burst"`
	SeedFile    string  `toml:"seed_file"` // optional CSV ingested at startup
}

// MaxUploadBytes returns the upload limit in bytes.
func (c *IngestConfig) MaxUploadBytes() int64 {
	if c.MaxUploadMB <= 0 {
		return 10 << 20
	}
	return int64(c.MaxUploadMB) << 20
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "console" or "json"
}

// ColorsConfig maps a chart type to its color policy.
// Entries override the built-in policy for the same chart type.
type ColorsConfig map[string]ColorPolicyConfig

// ColorPolicyConfig describes one chart type's color policy.
//
//	[colors."Asset classes"]
//	kind = "lookup"
//	names = { Bonds = "#007BC4", Equity = "#de6106" }
//
//	[colors.Sectors]
//	kind = "palette"
//	palette = ["#006698", "#00456e"]
type ColorPolicyConfig struct {
	Kind    string            `toml:"kind"`
	Names   map[string]string `toml:"names"`
	Palette []string          `toml:"palette"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Ingest: IngestConfig{
			MaxUploadMB: 10,
			RateLimit:   2,
			RateBurst:   4,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Later files override earlier ones
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("FUNDMIX_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("FUNDMIX_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("FUNDMIX_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("FUNDMIX_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if format := os.Getenv("FUNDMIX_LOG_FORMAT"); format != "" {
		config.Logging.Format = format
	}

	if mb := os.Getenv("FUNDMIX_MAX_UPLOAD_MB"); mb != "" {
		if v, err := strconv.Atoi(mb); err == nil {
			config.Ingest.MaxUploadMB = v
		}
	}

	if rl := os.Getenv("FUNDMIX_INGEST_RATE_LIMIT"); rl != "" {
		if v, err := strconv.ParseFloat(rl, 64); err == nil {
			config.Ingest.RateLimit = v
		}
	}

	if seed := os.Getenv("FUNDMIX_SEED_FILE"); seed != "" {
		config.Ingest.SeedFile = seed
	}
}

// Validate checks the config for values that cannot be defaulted.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.Ingest.RateLimit < 0 {
		return fmt.Errorf("ingest.rate_limit must not be negative")
	}
	for chartType, policy := range c.Colors {
		if err := policy.validate(); err != nil {
			return fmt.Errorf("colors.%q: %w", chartType, err)
		}
	}
	return nil
}

func (p ColorPolicyConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(p.Kind)) {
	case ColorKindLookup:
		for name, color := range p.Names {
			if !IsHexColor(color) {
				return fmt.Errorf("names.%q: invalid color %q", name, color)
			}
		}
	case ColorKindPalette:
		for i, color := range p.Palette {
			if !IsHexColor(color) {
				return fmt.Errorf("palette[%d]: invalid color %q", i, color)
			}
		}
	default:
		return fmt.Errorf("unknown kind %q (want %q or %q)", p.Kind, ColorKindLookup, ColorKindPalette)
	}
	return nil
}

// IsHexColor reports whether s is a #rgb or #rrggbb color token.
func IsHexColor(s string) bool {
	if len(s) != 4 && len(s) != 7 {
		return false
	}
	if s[0] != '#' {
		return false
	}
	for _, r := range s[1:] {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
