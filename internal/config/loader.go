package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultConfigPaths returns paths to check for a config file,
// lowest priority first.
func DefaultConfigPaths() []string {
	home, _ := os.UserHomeDir()
	return []string{
		filepath.Join(home, PatrolDir, "config.yaml"), // Global user config
		filepath.Join(PatrolDir, "config.yaml"),       // Project directory
	}
}

// Load reads configuration from the default paths, later paths overriding
// earlier ones, then applies environment overrides.
func Load() (*Config, error) {
	cfg := NewDefault()

	for _, path := range DefaultConfigPaths() {
		if err := mergeFile(cfg, path); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFile reads configuration from a single YAML file over defaults.
func LoadFile(path string) (*Config, error) {
	cfg := NewDefault()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// mergeFile overlays one YAML file onto cfg; a missing file is not an error.
func mergeFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// applyEnvOverrides lets credentials come from the environment so they
// stay out of config files.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PATROL_API_URL"); v != "" {
		cfg.Site.APIURL = v
	}
	if v := os.Getenv("PATROL_ROLLBACK_TOKEN"); v != "" {
		cfg.Site.RollbackToken = v
	}
	if v := os.Getenv("PATROL_EDIT_TOKEN"); v != "" {
		cfg.Site.EditToken = v
	}
	if v := os.Getenv("PATROL_OAUTH_TOKEN"); v != "" {
		cfg.Site.OAuthToken = v
	}
	if v := os.Getenv("PATROL_SITE"); v != "" {
		cfg.Site.Name = v
	}
}
