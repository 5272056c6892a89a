// Package config loads server configuration from a YAML file, falling back
// to defaults when no file is present.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/talgya/guardian-sim/internal/scale"
)

// MaxBatchRuns caps one batch request regardless of configuration.
const MaxBatchRuns = 100

// Config holds everything the server needs at startup.
type Config struct {
	Port  int    `yaml:"port"`
	Scale string `yaml:"scale"`

	// Seed fixes the entropy source for reproducible runs; 0 seeds from
	// the system.
	Seed            int64 `yaml:"seed"`
	RandomPositions bool  `yaml:"random_positions"`

	// AdminKey is the bearer token for mutating endpoints. Empty disables
	// them.
	AdminKey    string   `yaml:"admin_key"`
	CORSOrigins []string `yaml:"cors_origins"`

	// BatchLimit bounds one batch request; clamped to MaxBatchRuns.
	BatchLimit int `yaml:"batch_limit"`

	LogLevel string `yaml:"log_level"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Port:            8080,
		Scale:           scale.DefaultKey,
		RandomPositions: true,
		BatchLimit:      MaxBatchRuns,
		LogLevel:        "info",
	}
}

// Load reads the file at path over the defaults. A missing file is not an
// error: the defaults are returned as-is.
func Load(path string) (Config, error) {
	cfg := Default()

	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if !scale.Known(c.Scale) {
		return fmt.Errorf("unknown scale %q", c.Scale)
	}
	if c.BatchLimit < 1 || c.BatchLimit > MaxBatchRuns {
		c.BatchLimit = MaxBatchRuns
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	return nil
}
