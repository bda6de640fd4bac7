package metrics

import "github.com/kilianp07/rulecheck/core/report"

// MultiSink fans records out to multiple sinks.
type MultiSink struct {
	Sinks []ReportSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...ReportSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordReport forwards the summary to all sinks, returning the first error encountered.
func (m *MultiSink) RecordReport(s report.Summary) error {
	for _, sink := range m.Sinks {
		if err := sink.RecordReport(s); err != nil {
			return err
		}
	}
	return nil
}

// RecordFilter forwards filter events when supported by the sink.
func (m *MultiSink) RecordFilter(ev FilterEvent) error {
	for _, sink := range m.Sinks {
		if fr, ok := sink.(FilterRecorder); ok {
			if err := fr.RecordFilter(ev); err != nil {
				return err
			}
		}
	}
	return nil
}
