package config

import (
	"errors"
	"fmt"

	"github.com/kilianp07/rulecheck/core/model"
)

// DataConfig locates the dataset: either one JSON/YAML file or a directory
// of CSV sheets in Path, or one CSV file per collection.
type DataConfig struct {
	Path    string `json:"path" koanf:"path"`
	Clients string `json:"clients" koanf:"clients"`
	Workers string `json:"workers" koanf:"workers"`
	Tasks   string `json:"tasks" koanf:"tasks"`
}

// Files returns the per collection CSV paths, or nil when Path is used.
func (c DataConfig) Files() map[model.Entity]string {
	if c.Path != "" {
		return nil
	}
	return map[model.Entity]string{
		model.EntityClients: c.Clients,
		model.EntityWorkers: c.Workers,
		model.EntityTasks:   c.Tasks,
	}
}

// Configured reports whether any dataset location is set.
func (c DataConfig) Configured() bool {
	return c.Path != "" || c.Clients != "" || c.Workers != "" || c.Tasks != ""
}

// Validate rejects a partial set of per collection files.
func (c DataConfig) Validate() error {
	if c.Path != "" && (c.Clients != "" || c.Workers != "" || c.Tasks != "") {
		return errors.New("data: path and per collection files are exclusive")
	}
	if c.Path == "" && c.Configured() && (c.Clients == "" || c.Workers == "" || c.Tasks == "") {
		return errors.New("data: clients, workers and tasks files are all required")
	}
	return nil
}

// RulesConfig locates the rules file.
type RulesConfig struct {
	Path string `json:"path" koanf:"path"`
}

// RecommendConfig bounds the recommendations reported.
type RecommendConfig struct {
	MinConfidence int `json:"min_confidence" koanf:"min_confidence" validate:"gte=0,lte=100"`
	Limit         int `json:"limit" koanf:"limit" validate:"gte=0"`
}

// SetDefaults is a no-op: zero values mean no threshold and no limit.
func (c *RecommendConfig) SetDefaults() {}

// WatchConfig tunes watch mode.
type WatchConfig struct {
	DebounceMS int `json:"debounce_ms" koanf:"debounce_ms" validate:"gte=0"`
}

// SetDefaults applies a 300ms debounce.
func (c *WatchConfig) SetDefaults() {
	if c.DebounceMS == 0 {
		c.DebounceMS = 300
	}
}

// LoggingConfig sets the log level and format used when LOG_LEVEL and
// APP_ENV are not set, and an optional rotating log file.
type LoggingConfig struct {
	// Level is one of debug, info, warn or error.
	Level string `json:"level" koanf:"level"`
	// Format is "json" or "console".
	Format string `json:"format" koanf:"format"`
	// File receives a JSON copy of every log line when set.
	File       string `json:"file" koanf:"file"`
	MaxSizeMB  int    `json:"max_size_mb" koanf:"max_size_mb" validate:"gte=0"`
	MaxBackups int    `json:"max_backups" koanf:"max_backups" validate:"gte=0"`
	MaxAgeDays int    `json:"max_age_days" koanf:"max_age_days" validate:"gte=0"`
}

// SetDefaults applies info level JSON logs and 10MB log files.
func (c *LoggingConfig) SetDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = "json"
	}
	if c.MaxSizeMB == 0 {
		c.MaxSizeMB = 10
	}
}

// Validate checks the level and format names.
func (c LoggingConfig) Validate() error {
	switch c.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging: unknown level %s", c.Level)
	}
	if c.Format != "json" && c.Format != "console" {
		return fmt.Errorf("logging: unknown format %s", c.Format)
	}
	return nil
}
