package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

//nolint:gocyclo
func TestLoad(t *testing.T) {
	path := writeConfig(t, "config.yaml", `data:
  path: "data/dataset.yaml"
rules:
  path: "rules.json"
recommend:
  min_confidence: 60
  limit: 5
filter:
  type: "completion"
  conf:
    url: "https://api.example.com/v1/chat/completions"
    model: "m"
metrics:
  prometheus_port: 9102
  sinks:
    - type: "nop"
mqtt:
  broker: "tcp://localhost:1883"
  client_id: "cli"
watch:
  debounce_ms: 100
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"data.path", cfg.Data.Path, "data/dataset.yaml"},
		{"rules.path", cfg.Rules.Path, "rules.json"},
		{"recommend.min_confidence", cfg.Recommend.MinConfidence, 60},
		{"recommend.limit", cfg.Recommend.Limit, 5},
		{"filter.type", cfg.Filter.Type, "completion"},
		{"filter.conf.model", cfg.Filter.Conf["model"], "m"},
		{"metrics.prometheus_port", cfg.Metrics.PrometheusPort, 9102},
		{"metrics_sink", len(cfg.Metrics.Sinks) == 1 && cfg.Metrics.Sinks[0].Type == "nop", true},
		{"mqtt.broker", cfg.MQTT.Broker, "tcp://localhost:1883"},
		{"mqtt.topic", cfg.MQTT.Topic, "rulecheck"},
		{"watch.debounce_ms", cfg.Watch.DebounceMS, 100},
		{"logging.level", cfg.Logging.Level, "info"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s mismatch: %v", c.name, c.got)
		}
	}
}

func TestLoadJSONWithEnvOverride(t *testing.T) {
	path := writeConfig(t, "config.json", `{"data": {"path": "a.json"}, "recommend": {"limit": 2}}`)
	t.Setenv("RULECHECK_DATA__PATH", "b.yaml")
	t.Setenv("RULECHECK_RECOMMEND__MIN_CONFIDENCE", "75")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "b.yaml", cfg.Data.Path)
	assert.Equal(t, 75, cfg.Recommend.MinConfidence)
	assert.Equal(t, 2, cfg.Recommend.Limit)
	assert.Nil(t, cfg.MQTT)
	assert.Nil(t, cfg.Filter)
	assert.Equal(t, 300, cfg.Watch.DebounceMS)
}

func TestLoadLoggingFile(t *testing.T) {
	path := writeConfig(t, "config.yaml", "logging:\n  file: logs/rulecheck.log\n  max_backups: 4\n")
	t.Setenv("RULECHECK_LOGGING__MAX_AGE_DAYS", "14")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "logs/rulecheck.log", cfg.Logging.File)
	assert.Equal(t, 10, cfg.Logging.MaxSizeMB)
	assert.Equal(t, 4, cfg.Logging.MaxBackups)
	assert.Equal(t, 14, cfg.Logging.MaxAgeDays)
}

func TestLoadWithoutFile(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.False(t, cfg.Data.Configured())
}

func TestLoadExplicitMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"confidence": "recommend:\n  min_confidence: 150\n",
		"sink type":  "metrics:\n  sinks:\n    - conf: {}\n",
		"filter":     "filter:\n  conf:\n    url: x\n",
		"partial":    "data:\n  clients: c.csv\n",
		"exclusive":  "data:\n  path: d.json\n  tasks: t.csv\n",
		"level":      "logging:\n  level: loud\n",
		"backups":    "logging:\n  max_backups: -1\n",
	}
	for name, data := range cases {
		_, err := Load(writeConfig(t, "config.yaml", data))
		assert.Error(t, err, name)
	}
	_, err := Load(writeConfig(t, "config.toml", ""))
	assert.Error(t, err)
}

func TestDataFiles(t *testing.T) {
	d := DataConfig{Clients: "c.csv", Workers: "w.csv", Tasks: "t.csv"}
	require.NoError(t, d.Validate())
	assert.Len(t, d.Files(), 3)
	assert.Nil(t, DataConfig{Path: "x.json"}.Files())
}
