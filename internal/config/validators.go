// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"path/filepath"
	"strings"

	"github.com/dotandev/gopahole/internal/errors"
)

// Validator validates a specific aspect of the configuration.
type Validator interface {
	Validate(cfg *Config) error
}

// LogLevelValidator checks that the log level is a known value.
type LogLevelValidator struct{}

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

func (v LogLevelValidator) Validate(cfg *Config) error {
	if cfg.LogLevel == "" {
		return nil
	}
	if !validLogLevels[strings.ToLower(cfg.LogLevel)] {
		return errors.WrapValidationError("log_level must be one of: debug, info, warn, error")
	}
	return nil
}

// CachePathValidator checks that, when set, cache_path is an absolute path.
type CachePathValidator struct{}

func (v CachePathValidator) Validate(cfg *Config) error {
	if cfg.CachePath == "" {
		return nil
	}
	if !filepath.IsAbs(cfg.CachePath) {
		return errors.WrapValidationError("cache_path must be an absolute path")
	}
	return nil
}

// ProducerVersionValidator checks that min_producer_version, when set,
// looks like a dotted version number (e.g. "7.0.0").
type ProducerVersionValidator struct{}

func (v ProducerVersionValidator) Validate(cfg *Config) error {
	if cfg.MinProducerVersion == "" {
		return nil
	}
	parts := strings.Split(cfg.MinProducerVersion, ".")
	if len(parts) < 2 || len(parts) > 3 {
		return errors.WrapValidationError("min_producer_version must look like MAJOR.MINOR[.PATCH]")
	}
	for _, p := range parts {
		if p == "" {
			return errors.WrapValidationError("min_producer_version must look like MAJOR.MINOR[.PATCH]")
		}
		for _, r := range p {
			if r < '0' || r > '9' {
				return errors.WrapValidationError("min_producer_version must look like MAJOR.MINOR[.PATCH]")
			}
		}
	}
	return nil
}

// TelemetryValidator checks that an enabled telemetry endpoint looks like a URL.
type TelemetryValidator struct{}

func (v TelemetryValidator) Validate(cfg *Config) error {
	if !cfg.TelemetryEnabled {
		return nil
	}
	if cfg.TelemetryEndpoint == "" {
		return errors.WrapValidationError("telemetry_endpoint must be set when telemetry_enabled is true")
	}
	if !strings.HasPrefix(cfg.TelemetryEndpoint, "http://") && !strings.HasPrefix(cfg.TelemetryEndpoint, "https://") {
		return errors.WrapValidationError("telemetry_endpoint must use http or https scheme")
	}
	return nil
}

// DefaultValidators returns the standard set of validators.
func DefaultValidators() []Validator {
	return []Validator{
		LogLevelValidator{},
		CachePathValidator{},
		ProducerVersionValidator{},
		TelemetryValidator{},
	}
}

// RunValidators executes each validator against the config, returning the
// first error encountered.
func RunValidators(cfg *Config, validators []Validator) error {
	for _, v := range validators {
		if err := v.Validate(cfg); err != nil {
			return err
		}
	}
	return nil
}
