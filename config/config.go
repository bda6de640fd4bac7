package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/rulecheck/core/factory"
	"github.com/kilianp07/rulecheck/core/metrics"
	"github.com/kilianp07/rulecheck/infra/mqtt"
)

// DefaultPath is read when no configuration file is given. It may be
// absent.
const DefaultPath = "rulecheck.yaml"

// EnvPrefix prefixes environment overrides. Nested keys are separated by
// a double underscore: RULECHECK_DATA__PATH sets data.path.
const EnvPrefix = "RULECHECK_"

type Config struct {
	Data      DataConfig            `json:"data" koanf:"data"`
	Rules     RulesConfig           `json:"rules" koanf:"rules"`
	Recommend RecommendConfig       `json:"recommend" koanf:"recommend"`
	Filter    *factory.ModuleConfig `json:"filter" koanf:"filter" validate:"omitempty"`
	Metrics   metrics.Config        `json:"metrics" koanf:"metrics"`
	MQTT      *mqtt.Config          `json:"mqtt" koanf:"mqtt" validate:"omitempty"`
	Watch     WatchConfig           `json:"watch" koanf:"watch"`
	Logging   LoggingConfig         `json:"logging" koanf:"logging"`
}

// Load reads the configuration from path and applies environment
// overrides. An empty path falls back to DefaultPath, which is optional.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path == "" {
		if _, err := os.Stat(DefaultPath); err == nil {
			path = DefaultPath
		}
	}
	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		var parser koanf.Parser
		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// SetDefaults fills zero values of every section.
func (c *Config) SetDefaults() {
	c.Recommend.SetDefaults()
	c.Watch.SetDefaults()
	c.Logging.SetDefaults()
	if c.MQTT != nil && c.MQTT.Topic == "" {
		c.MQTT.Topic = mqtt.DefaultTopic
	}
}

// Validate checks struct tags and cross field constraints.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return errors.Join(c.Data.Validate(), c.Logging.Validate())
}
