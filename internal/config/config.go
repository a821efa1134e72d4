// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/dotandev/gopahole/internal/errors"
)

// Config holds the CLI's persisted settings: logging, the on-disk caches,
// and the producer-version baseline used by internal/updater. There are
// no RPC/network fields, since this tool has no RPC surface.
type Config struct {
	LogLevel             string `json:"log_level,omitempty"`
	CachePath            string `json:"cache_path,omitempty"`
	NoCache              bool   `json:"no_cache,omitempty"`
	MinProducerVersion   string `json:"min_producer_version,omitempty"`
	TelemetryEndpoint    string `json:"telemetry_endpoint,omitempty"`
	TelemetryEnabled     bool   `json:"telemetry_enabled,omitempty"`
}

var defaultConfig = &Config{
	LogLevel:           "info",
	CachePath:          filepath.Join(os.ExpandEnv("$HOME"), ".godwat", "cache"),
	MinProducerVersion: "7.0.0",
}

// DefaultConfig returns a copy of the built-in defaults.
func DefaultConfig() *Config {
	cfg := *defaultConfig
	return &cfg
}

// GetConfigDir returns the OS-appropriate config directory for godwat,
// creating it if necessary.
func GetConfigDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		home, herr := os.UserHomeDir()
		if herr != nil {
			return "", errors.WrapConfigError("resolving config directory", err)
		}
		dir = filepath.Join(home, ".config")
	}
	dir = filepath.Join(dir, "godwat")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.WrapConfigError("creating config directory", err)
	}
	return dir, nil
}

// GetGeneralConfigPath returns the path to godwat's config.json.
func GetGeneralConfigPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// LoadConfig loads the config from disk, falling back to defaults (merged
// with GODWAT_* environment overrides) when no file exists yet.
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()
	cfg.applyEnv()

	path, err := GetGeneralConfigPath()
	if err != nil {
		return cfg, nil // config dir unavailable: defaults + env still usable
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, errors.WrapConfigError("reading config file", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.WrapConfigError("parsing config file", err)
	}
	cfg.applyEnv()
	if err := RunValidators(cfg, DefaultValidators()); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv lets GODWAT_NO_CACHE and GODWAT_LOG_LEVEL override whatever was
// loaded from disk.
func (c *Config) applyEnv() {
	if v := os.Getenv("GODWAT_NO_CACHE"); v != "" {
		c.NoCache = true
	}
	if v := os.Getenv("GODWAT_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}

// SaveConfig persists cfg to disk as indented JSON.
func SaveConfig(cfg *Config) error {
	path, err := GetGeneralConfigPath()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return errors.WrapConfigError("marshaling config", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return errors.WrapConfigError("writing config file", err)
	}
	return nil
}
