// Package infra holds the adapters around the rule engine: file ingestion,
// the zerolog logger, MQTT publishing and the Prometheus/InfluxDB report sinks.
// Core packages never import from here.
package infra
