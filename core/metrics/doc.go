// Package metrics defines the sinks receiving validation pass outcomes.
// Sinks like PromSink and InfluxSink (see infra/metrics) record report
// summaries and natural language filter outcomes and can be combined with
// NewMultiSink. NewReportSink returns a MultiSink automatically when
// multiple sinks are configured.
package metrics
