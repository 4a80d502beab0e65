package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Paintersrp/oneinstance/internal/logging"
)

const (
	EnvConfig          = "ONE_INSTANCE_CONFIG"
	EnvLogTimestamp    = "ONE_INSTANCE_LOG_TIMESTAMP"
	EnvSignal          = "ONE_INSTANCE_SIGNAL"
	EnvMetricsTextfile = "ONE_INSTANCE_METRICS_TEXTFILE"
)

// Load reads the settings file at path on top of the defaults. An empty
// path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	absPath, err := filepath.Abs(os.ExpandEnv(path))
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}

	f, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("open config file: %w", err)
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%s: decode: %w", absPath, err)
	}

	cfg.Metrics.Textfile = expandPath(filepath.Dir(absPath), cfg.Metrics.Textfile)
	return cfg, nil
}

// LoadFromEnv loads the file named by ONE_INSTANCE_CONFIG, or explicit when
// set, and applies environment overrides.
func LoadFromEnv(explicit string) (*Config, error) {
	path := explicit
	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overlays environment variables on the settings.
func (c *Config) ApplyEnv() error {
	if value := strings.TrimSpace(os.Getenv(logging.EnvLogLevel)); value != "" {
		c.Log.Level = value
	}
	if value := strings.TrimSpace(os.Getenv(logging.EnvLogStyle)); value != "" {
		c.Log.Style = value
	}
	if value := strings.TrimSpace(os.Getenv(EnvLogTimestamp)); value != "" {
		enabled, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvLogTimestamp, err)
		}
		c.Log.Timestamp = &enabled
	}
	if value := strings.TrimSpace(os.Getenv(EnvSignal)); value != "" {
		c.Preempt.Signal = value
	}
	if value := strings.TrimSpace(os.Getenv(EnvMetricsTextfile)); value != "" {
		c.Metrics.Textfile = value
	}
	return nil
}

func expandPath(baseDir, path string) string {
	if path == "" {
		return ""
	}
	expanded := os.ExpandEnv(path)
	if filepath.IsAbs(expanded) {
		return filepath.Clean(expanded)
	}
	return filepath.Clean(filepath.Join(baseDir, expanded))
}
