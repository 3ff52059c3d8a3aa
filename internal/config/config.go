// Copyright 2026 The Better Auto Moderator Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package config provides configuration management for the moderation
// service. It handles loading and parsing the YAML configuration file, and
// provides structured access to application settings including polling
// cadence, the rule source, and logging behavior.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Rule source selection values for Config.RulesSource.
const (
	SourceWiki = "wiki"
	SourceFile = "file"
)

// Config represents the application's configuration, loaded from a YAML file.
type Config struct {
	// PollInterval is the pause between supervisor rounds, in seconds.
	PollInterval float64 `yaml:"poll-interval"`

	// ReloadRounds is how many rounds pass between rule-source freshness
	// checks. Set to 1 to check every round.
	ReloadRounds int `yaml:"reload-rounds"`

	// RulesSource selects where rules load from: "wiki" or "file".
	RulesSource string `yaml:"rules-source"`

	// RulesFile is the local rules path when RulesSource is "file". The file
	// is watched and hot-reloaded on change.
	RulesFile string `yaml:"rules-file"`

	// OverwriteAutoModerator pushes rules that need no extended capability
	// back to the subreddit's AutoModerator wiki page, so the site's native
	// engine handles them at full speed.
	OverwriteAutoModerator bool `yaml:"overwrite-automoderator"`

	// Debug enables or disables debug-level logging.
	Debug bool `yaml:"debug"`

	// LoggingToFile controls whether application logs are written to
	// rotating files or stdout.
	LoggingToFile bool `yaml:"logging-to-file"`

	// LogsDir is the directory for rotating log files when LoggingToFile is
	// set.
	LogsDir string `yaml:"logs-dir"`
}

// LoadConfig reads YAML from configFile.
func LoadConfig(configFile string) (*Config, error) {
	return LoadConfigOptional(configFile, false)
}

// LoadConfigOptional reads YAML from configFile.
// If optional is true and the file is missing or empty, it returns the
// defaults.
func LoadConfigOptional(configFile string, optional bool) (*Config, error) {
	cfg := defaults()

	data, err := os.ReadFile(configFile)
	if err != nil {
		if optional && os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if optional && len(data) == 0 {
		return cfg, nil
	}

	if err = yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 2.5
	}
	if cfg.ReloadRounds <= 0 {
		cfg.ReloadRounds = 5
	}
	switch cfg.RulesSource {
	case SourceWiki, SourceFile:
	case "":
		cfg.RulesSource = SourceWiki
	default:
		return nil, fmt.Errorf("unknown rules-source %q (want %q or %q)", cfg.RulesSource, SourceWiki, SourceFile)
	}
	if cfg.RulesSource == SourceFile && cfg.RulesFile == "" {
		return nil, fmt.Errorf("rules-source is %q but rules-file is not set", SourceFile)
	}

	return cfg, nil
}

// defaults returns the configuration used when keys are absent.
func defaults() *Config {
	return &Config{
		PollInterval:           2.5,
		ReloadRounds:           5,
		RulesSource:            SourceWiki,
		OverwriteAutoModerator: true,
		LogsDir:                "logs",
	}
}

// PollPause converts PollInterval to a duration.
func (c *Config) PollPause() time.Duration {
	return time.Duration(c.PollInterval * float64(time.Second))
}
