package metrics

import "github.com/kilianp07/rulecheck/core/factory"

// Config defines settings for metrics sinks.
type Config struct {
	Sinks          []factory.ModuleConfig `json:"sinks" koanf:"sinks" validate:"dive"`
	PrometheusPort int                    `json:"prometheus_port" koanf:"prometheus_port" validate:"gte=0,lte=65535"`
}
