package metrics

import (
	"time"

	"github.com/kilianp07/rulecheck/core/model"
	"github.com/kilianp07/rulecheck/core/report"
)

// ReportSink records the summary of each validation pass.
type ReportSink interface {
	RecordReport(s report.Summary) error
}

// FilterEvent describes one natural language filter call.
type FilterEvent struct {
	Entity   model.Entity
	Mode     string
	Before   int
	After    int
	Accepted bool
	Duration time.Duration
	Time     time.Time
}

// FilterRecorder is implemented by sinks able to record filter calls.
type FilterRecorder interface {
	RecordFilter(ev FilterEvent) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordReport(report.Summary) error { return nil }
func (NopSink) RecordFilter(FilterEvent) error    { return nil }
