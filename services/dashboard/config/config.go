// Copyright (C) 2026 Icinga GmbH (info@icinga.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 2 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package config loads the dashboard service configuration: a YAML
// file with environment-variable overrides on top. Every value has a
// working default so the service starts with no configuration at all.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the dashboard service configuration.
type Config struct {
	// Listen is the HTTP bind address.
	Listen string `yaml:"listen"`

	// Database is the sqlite database file.
	Database string `yaml:"database"`

	// ModulesDir holds per-module dashboard manifests. Empty disables
	// system panes.
	ModulesDir string `yaml:"modules_dir"`

	// LegacyDir holds per-user legacy INI dashboard files. Empty
	// disables the migration.
	LegacyDir string `yaml:"legacy_dir"`

	// WatchModules enables invalidating the system-pane cache when
	// manifests change on disk.
	WatchModules bool `yaml:"watch_modules"`

	Log LogConfig `yaml:"log"`
}

// LogConfig configures the service logger.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`

	// Dir enables file logging to the given directory; stderr always
	// gets a copy of the stream.
	Dir string `yaml:"dir"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Listen:     ":8080",
		Database:   "/var/lib/icingaweb2/dashboards.db",
		ModulesDir: "/etc/icingaweb2/modules",
		LegacyDir:  "/etc/icingaweb2/dashboards",
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads the configuration file and applies environment
// overrides. A missing file is not an error; the defaults and the
// environment decide everything then.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return Config{}, fmt.Errorf("read config %q: %w", path, err)
			}
		} else if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %q: %w", path, err)
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

// applyEnv overlays ICINGAWEB_*-prefixed environment variables.
func applyEnv(cfg *Config) {
	overlay(&cfg.Listen, "ICINGAWEB_LISTEN")
	overlay(&cfg.Database, "ICINGAWEB_DATABASE")
	overlay(&cfg.ModulesDir, "ICINGAWEB_MODULES_DIR")
	overlay(&cfg.LegacyDir, "ICINGAWEB_LEGACY_DIR")
	overlay(&cfg.Log.Level, "ICINGAWEB_LOG_LEVEL")
	overlay(&cfg.Log.Dir, "ICINGAWEB_LOG_DIR")
	if v := os.Getenv("ICINGAWEB_WATCH_MODULES"); v != "" {
		cfg.WatchModules = v == "1" || v == "true"
	}
}

func overlay(target *string, key string) {
	if v := os.Getenv(key); v != "" {
		*target = v
	}
}
