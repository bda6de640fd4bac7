package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/rulecheck/core/factory"
	coremetrics "github.com/kilianp07/rulecheck/core/metrics"
)

// init registers built-in report sinks.
func init() {
	_ = coremetrics.RegisterReportSink("nop", func(map[string]any) (coremetrics.ReportSink, error) {
		return coremetrics.NopSink{}, nil
	})

	_ = coremetrics.RegisterReportSink("prometheus", func(map[string]any) (coremetrics.ReportSink, error) {
		// The /metrics endpoint is served by StartPromServer; the sink only owns collectors.
		return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
	})

	_ = coremetrics.RegisterReportSink("influx", func(conf map[string]any) (coremetrics.ReportSink, error) {
		var c struct {
			URL    string `json:"url"`
			Token  string `json:"token"`
			Org    string `json:"org"`
			Bucket string `json:"bucket"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewInfluxSinkWithFallback(c.URL, c.Token, c.Org, c.Bucket), nil
	})
}
